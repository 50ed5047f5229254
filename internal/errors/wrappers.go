package errors

import "fmt"

// Common error constructors used throughout the pipeline

// LoadFailure creates the fatal error raised when a declaration module cannot be loaded
func LoadFailure(path, reason string) *BaseError {
	return New(LoadFailureCode, fmt.Sprintf("failed to load endpoints from '%s': %s", path, reason)).
		WithLocation(SourceLocation{File: path}).
		WithContext("declaration_path", path)
}

// WrapLoadFailure wraps an underlying read or parse error as a load failure
func WrapLoadFailure(path string, cause error) *BaseError {
	return Wrap(LoadFailureCode, fmt.Sprintf("failed to load endpoints from '%s'", path), cause).
		WithContext("declaration_path", path)
}

// UnresolvedType creates the warning emitted when a referenced type has no declaration file
func UnresolvedType(typeName string, roots []string) *BaseError {
	return New(UnresolvedTypeCode, fmt.Sprintf("type '%s' could not be resolved", typeName)).
		WithContext("type_name", typeName).
		WithContext("search_roots", roots).
		WithSuggestion(fmt.Sprintf("Declare %s in one of the search roots, or add its directory to searchRoots", typeName))
}

// InvalidStoreConfig creates a validation error for a store-backed endpoint
func InvalidStoreConfig(endpoint, field, reason string) *BaseError {
	return New(InvalidStoreConfigCode, fmt.Sprintf("endpoint '%s': invalid %s: %s", endpoint, field, reason)).
		WithContext("endpoint", endpoint).
		WithContext("field", field)
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapGenerateError wraps an error raised while producing an artifact
func WrapGenerateError(artifact, item string, cause error) *BaseError {
	return Wrap(GenerationErrorCode, fmt.Sprintf("failed to generate %s for %s", artifact, item), cause).
		WithContext("artifact", artifact)
}

// WrapTemplateError wraps template processing errors
func WrapTemplateError(templateName, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s template '%s'", operation, templateName)
	return Wrap(TemplateErrorCode, message, cause).
		WithContext("template", templateName)
}

// ConfigurationError creates a configuration error
func ConfigurationError(source, message string) *BaseError {
	return New(ConfigurationErrorCode, fmt.Sprintf("configuration error in '%s': %s", source, message)).
		WithContext("config_source", source)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(source string, cause error) *BaseError {
	return Wrap(ConfigurationErrorCode, fmt.Sprintf("failed to read configuration '%s'", source), cause).
		WithContext("config_source", source)
}

// OptionalPhase wraps a failure inside an optional phase. The run continues.
func OptionalPhase(phase string, cause error) *BaseError {
	return Wrap(OptionalPhaseCode, fmt.Sprintf("%s phase failed", phase), cause).
		WithContext("phase", phase)
}

// AddToMultiple adds an error to a MultipleErrors, creating it if nil
func AddToMultiple(multiple **MultipleErrors, err AppError) {
	if *multiple == nil {
		*multiple = NewMultipleErrors()
	}
	(*multiple).Add(err)
}
