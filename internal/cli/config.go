package cli

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/toyz/apigen/internal/errors"
)

// ConfigFile is looked up beside the declaration module
const ConfigFile = "apigen.yaml"

// DefaultOutputDir is used when neither the command line nor the config file
// names an output directory
const DefaultOutputDir = "generated"

// Phases selects the optional pipeline phases
type Phases struct {
	Mocks         bool
	ContractTests bool
	Templates     bool
}

// AllPhases enables every optional phase
func AllPhases() Phases {
	return Phases{Mocks: true, ContractTests: true, Templates: true}
}

// PipelineConfig is everything a generation run needs
type PipelineConfig struct {
	// ProjectName names the generated client and its package
	ProjectName string

	// DeclPath is the Go file declaring the Endpoints variable
	DeclPath string

	// OutputDir is cleared and filled by the run
	OutputDir string

	// Module overrides the import path of the generated module. By default it
	// is derived from the project's go.mod.
	Module string

	// SearchRoots are searched for type declarations after the defaults.
	// Relative roots are taken from the declaration module's directory.
	SearchRoots []string

	// DefaultLimit replaces the page size of Query endpoints that declare none
	DefaultLimit int

	Phases Phases
}

// FileConfig is the shape of apigen.yaml. Unset fields leave the command
// line or default value in place.
type FileConfig struct {
	Output       string   `yaml:"output"`
	Module       string   `yaml:"module"`
	SearchRoots  []string `yaml:"searchRoots"`
	DefaultLimit int      `yaml:"defaultLimit"`
	Phases       struct {
		Mocks         *bool `yaml:"mocks"`
		ContractTests *bool `yaml:"contractTests"`
		Templates     *bool `yaml:"templates"`
	} `yaml:"phases"`
}

// LoadFileConfig reads path. A missing file yields nil without error.
func LoadFileConfig(path string) (*FileConfig, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapConfigurationError(path, err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, errors.WrapConfigurationError(path, err)
	}
	if cfg.DefaultLimit < 0 {
		return nil, errors.ConfigurationError(path, "defaultLimit must not be negative")
	}
	return &cfg, nil
}

// FindFileConfig returns the config file beside the declaration module, or
// an empty string
func FindFileConfig(declPath string) string {
	candidate := filepath.Join(filepath.Dir(declPath), ConfigFile)
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate
	}
	return ""
}

// Apply copies the values set in file onto cfg. Relative output and search
// root paths in the file are taken from the file's directory.
func (cfg *PipelineConfig) Apply(file *FileConfig, fileDir string) {
	if file == nil {
		return
	}
	if file.Output != "" {
		cfg.OutputDir = resolveFrom(fileDir, file.Output)
	}
	if file.Module != "" {
		cfg.Module = file.Module
	}
	for _, root := range file.SearchRoots {
		cfg.SearchRoots = append(cfg.SearchRoots, resolveFrom(fileDir, root))
	}
	if file.DefaultLimit > 0 {
		cfg.DefaultLimit = file.DefaultLimit
	}
	if file.Phases.Mocks != nil {
		cfg.Phases.Mocks = *file.Phases.Mocks
	}
	if file.Phases.ContractTests != nil {
		cfg.Phases.ContractTests = *file.Phases.ContractTests
	}
	if file.Phases.Templates != nil {
		cfg.Phases.Templates = *file.Phases.Templates
	}
}

// Validate checks the fields a run cannot do without
func (cfg *PipelineConfig) Validate() error {
	if cfg.ProjectName == "" {
		return errors.ConfigurationError("command line", "a project name is required")
	}
	if cfg.DeclPath == "" {
		return errors.ConfigurationError("command line", "an endpoints declaration path is required")
	}
	if cfg.DefaultLimit < 0 {
		return errors.ConfigurationError("command line", "default limit must not be negative")
	}
	return nil
}

func resolveFrom(dir, path string) string {
	if filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}
