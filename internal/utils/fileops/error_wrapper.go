package fileops

import (
	"github.com/toyz/apigen/internal/errors"
)

// ErrorWrapper provides consistent error wrapping for file operations
type ErrorWrapper struct{}

// NewErrorWrapper creates a new ErrorWrapper instance
func NewErrorWrapper() *ErrorWrapper {
	return &ErrorWrapper{}
}

// WrapFileReadError wraps file reading errors with context
func (ew *ErrorWrapper) WrapFileReadError(filePath string, err error) error {
	return errors.WrapFileSystemError("read", filePath, err)
}

// WrapFileWriteError wraps file writing errors with context
func (ew *ErrorWrapper) WrapFileWriteError(filePath string, err error) error {
	return errors.WrapFileSystemError("write", filePath, err)
}

// WrapDirectoryCreateError wraps directory creation errors with context
func (ew *ErrorWrapper) WrapDirectoryCreateError(dirPath string, err error) error {
	return errors.WrapFileSystemError("create directory", dirPath, err)
}

// WrapDirectoryCleanError wraps directory cleaning errors with context
func (ew *ErrorWrapper) WrapDirectoryCleanError(dirPath string, err error) error {
	return errors.WrapFileSystemError("clean directory", dirPath, err)
}

// WrapPathError wraps artifact path validation errors with context
func (ew *ErrorWrapper) WrapPathError(artifactPath string, err error) error {
	return errors.WrapFileSystemError("validate path", artifactPath, err)
}
