package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/toyz/apigen/internal/errors"
	"github.com/toyz/apigen/internal/generator"
	"github.com/toyz/apigen/internal/models"
	"github.com/toyz/apigen/internal/parser"
	"github.com/toyz/apigen/internal/resolver"
	"github.com/toyz/apigen/internal/utils"
	"github.com/toyz/apigen/internal/utils/fileops"
	"github.com/toyz/apigen/internal/vtl"
)

// GenerationSummary describes the outcome of a run
type GenerationSummary struct {
	RunID           string
	Endpoints       int
	StoreBacked     int
	ComputeBacked   int
	ResolvedTypes   int
	UnresolvedTypes []string
	Files           []string
	Bytes           uint64
	Warnings        int
	FailedPhases    []string
}

// Generator coordinates the generation pipeline
type Generator struct {
	diagnostics    *utils.DiagnosticSystem
	reporter       *DiagnosticReporter
	loader         *parser.EndpointLoader
	moduleResolver *ModuleResolver
	summary        GenerationSummary
}

// NewGenerator creates a pipeline reporting through diagnostics
func NewGenerator(diagnostics *utils.DiagnosticSystem) *Generator {
	return &Generator{
		diagnostics:    diagnostics,
		reporter:       NewDiagnosticReporter(diagnostics.Level() >= utils.DiagnosticVerbose),
		loader:         parser.NewEndpointLoader(),
		moduleResolver: NewModuleResolver(),
	}
}

// Reporter returns the reporter used for warnings and fatal errors
func (g *Generator) Reporter() *DiagnosticReporter {
	return g.reporter
}

// Summary returns the summary of the last run
func (g *Generator) Summary() GenerationSummary {
	return g.summary
}

// run holds the state shared by the phases of one Run
type run struct {
	cfg      PipelineConfig
	set      *models.EndpointSet
	module   *ProjectModule
	tree     *fileops.OutputTree
	roots    []string
	resolved *resolver.ResolvedSet
	decls    map[string]*models.TypeDeclaration
	mocks    bool
}

// Run executes a complete generation. Fatal problems are returned before
// the output directory is touched whenever they can be detected up front;
// failures inside optional phases are reported and do not fail the run.
func (g *Generator) Run(cfg PipelineConfig) error {
	startTime := time.Now()
	g.summary = GenerationSummary{RunID: uuid.NewString()}

	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	g.diagnostics.Verbose("Run %s started at %s", g.summary.RunID, startTime.Format("15:04:05"))
	g.diagnostics.Header(fmt.Sprintf("Generating %s from %s", cfg.ProjectName, cfg.DeclPath))

	r := &run{cfg: cfg}
	steps := []struct {
		phase string
		fn    func(*run) error
	}{
		{"Loading endpoints", g.load},
		{"Validating store configuration", g.validate},
		{"Preparing output", g.prepare},
		{"Resolving types", g.resolveTypes},
		{"Generating client", g.generateClient},
	}
	for _, step := range steps {
		g.diagnostics.PhaseHeader(step.phase)
		if err := step.fn(r); err != nil {
			return err
		}
	}

	if cfg.Phases.Mocks {
		r.mocks = g.optional(r, "mocks", g.generateMocks)
	} else {
		g.diagnostics.Verbose("Mock generation disabled")
	}
	if cfg.Phases.Templates {
		g.optional(r, "mapping templates", g.generateTemplates)
	} else {
		g.diagnostics.Verbose("Mapping template generation disabled")
	}
	if cfg.Phases.ContractTests {
		g.optional(r, "contract tests", g.generateContractTests)
	} else {
		g.diagnostics.Verbose("Contract test generation disabled")
	}

	g.summary.Files = r.tree.Written()
	g.summary.Bytes = r.tree.Bytes()
	g.printSummary(r, time.Since(startTime))
	return nil
}

// optional runs a phase whose failure is reported but never fatal
func (g *Generator) optional(r *run, phase string, fn func(*run) error) bool {
	g.diagnostics.PhaseHeader("Generating " + phase)
	if err := fn(r); err != nil {
		g.summary.FailedPhases = append(g.summary.FailedPhases, phase)
		g.warn(errors.OptionalPhase(phase, err))
		return false
	}
	return true
}

func (g *Generator) warn(err error) {
	g.summary.Warnings++
	if g.diagnostics.Level() >= utils.DiagnosticWarn {
		g.reporter.ReportWarning(err)
	}
}

func (g *Generator) load(r *run) error {
	set, err := g.loader.Load(r.cfg.DeclPath)
	if err != nil {
		return err
	}

	for _, record := range set.All() {
		if store, ok := record.Store(); ok {
			g.summary.StoreBacked++
			if r.cfg.DefaultLimit > 0 && store.Action == models.ActionQuery && store.DefaultLimit == 0 {
				store.DefaultLimit = r.cfg.DefaultLimit
			}
		} else {
			g.summary.ComputeBacked++
		}
	}
	g.summary.Endpoints = set.Len()
	g.diagnostics.PhaseItem(fmt.Sprintf("Loaded %d endpoints (%d store-backed, %d compute-backed)",
		set.Len(), g.summary.StoreBacked, g.summary.ComputeBacked))
	r.set = set
	return nil
}

func (g *Generator) validate(r *run) error {
	if err := vtl.Validate(r.set); err != nil {
		return err
	}
	g.diagnostics.PhaseItem("Store configuration is valid")
	return nil
}

func (g *Generator) prepare(r *run) error {
	tree, err := fileops.NewOutputTree(r.cfg.OutputDir)
	if err != nil {
		return errors.WrapFileSystemError("prepare output directory", r.cfg.OutputDir, err)
	}

	module, err := g.moduleResolver.Resolve(r.cfg.ProjectName, r.cfg.DeclPath, tree.Root(), r.cfg.Module)
	if err != nil {
		return err
	}
	g.diagnostics.Info("Generating package %s as %s", module.Project.PackageName, module.Project.ModulePath)
	if module.Module == nil && r.cfg.Module == "" {
		g.diagnostics.Warn("%s is not inside a Go module; the generated module is named %s",
			r.cfg.DeclPath, module.Project.ModulePath)
	}

	roots := append(DefaultSearchRoots(r.cfg.DeclPath, module.Module), r.cfg.SearchRoots...)
	if err := protectSources(tree.Root(), r.cfg.DeclPath, module.Module, roots); err != nil {
		return err
	}

	if err := tree.Clear(); err != nil {
		return errors.WrapFileSystemError("clear output directory", tree.Root(), err)
	}
	g.diagnostics.PhaseItem("Cleared " + tree.Root())

	r.tree = tree
	r.module = module
	r.roots = roots
	return nil
}

// protectSources refuses an output directory whose clearing would delete
// the declaration file, the module root or a type search root
func protectSources(outputDir, declPath string, gm *utils.GoModule, roots []string) error {
	protected := []string{declPath}
	if gm != nil {
		protected = append(protected, gm.Dir)
	}
	protected = append(protected, roots...)

	overlap, ok := fileops.NewPathValidator().Overlap(outputDir, protected...)
	if !ok {
		return nil
	}
	return errors.ConfigurationError("output",
		fmt.Sprintf("output directory %s would overwrite sources at %s", outputDir, overlap)).
		WithContext("output_dir", outputDir).
		WithContext("protected_path", overlap).
		WithSuggestion("Choose a dedicated directory for generated code, e.g. " + filepath.Join(filepath.Dir(declPath), DefaultOutputDir))
}

func (g *Generator) resolveTypes(r *run) error {
	res := resolver.New(r.roots)

	names := r.set.TypeNames()
	resolved := res.ResolveAll(names)

	unresolved := make([]string, 0, len(resolved.Unresolved))
	for name := range resolved.Unresolved {
		unresolved = append(unresolved, name)
	}
	sort.Strings(unresolved)
	for _, name := range unresolved {
		g.warn(errors.UnresolvedType(name, res.Roots()).WithContext("reason", resolved.Unresolved[name]))
	}
	g.summary.ResolvedTypes = len(resolved.Types)
	g.summary.UnresolvedTypes = unresolved

	artifacts, err := res.CopyAll(resolved.Files)
	if err != nil {
		return errors.WrapGenerateError("interfaces", r.cfg.ProjectName, err)
	}
	if err := g.write(r, artifacts...); err != nil {
		return err
	}

	decls := make(map[string]*models.TypeDeclaration)
	for _, name := range names {
		path, ok := resolved.Types[name]
		if !ok {
			continue
		}
		decl, err := parser.ReadTypeDeclaration(path, name)
		if err != nil {
			g.diagnostics.Verbose("No field layout for %s: %v", name, err)
			continue
		}
		decls[name] = decl
	}

	g.diagnostics.PhaseItem(fmt.Sprintf("Resolved %d types from %d files", len(resolved.Types), len(resolved.Files)))
	r.resolved = resolved
	r.decls = decls
	return nil
}

func (g *Generator) generateClient(r *run) error {
	project := r.module.Project
	clients := generator.NewClientGenerator(r.resolved)

	client, err := clients.Generate(r.set, project)
	if err != nil {
		return err
	}
	index, err := clients.GenerateIndex(r.set, project)
	if err != nil {
		return err
	}

	runtimeVersion, _ := r.module.Module.RequiredVersion(generator.RuntimeModule)
	manifest, err := generator.Manifest(project, generator.ManifestOptions{
		GoVersion:      r.module.GoVersion,
		RuntimeVersion: runtimeVersion,
		ContractTests:  r.cfg.Phases.ContractTests,
	})
	if err != nil {
		return err
	}
	readme, err := generator.Readme(r.set, project, generator.ReadmeOptions{
		Mocks:     r.cfg.Phases.Mocks,
		Templates: r.cfg.Phases.Templates,
		Tests:     r.cfg.Phases.ContractTests,
	})
	if err != nil {
		return err
	}
	ignore, err := generator.IgnoreFile()
	if err != nil {
		return err
	}

	if err := g.write(r, client, index, manifest, readme, ignore); err != nil {
		return err
	}
	g.diagnostics.PhaseItem(fmt.Sprintf("Generated %s with %d methods", project.ClientTypeName(), r.set.Len()))
	return nil
}

func (g *Generator) generateMocks(r *run) error {
	project := r.module.Project
	client, err := r.tree.Read(generator.ClientFile)
	if err != nil {
		return err
	}
	mock, err := generator.NewMockGenerator().Generate(client, project)
	if err != nil {
		return err
	}
	if err := g.write(r, mock); err != nil {
		return err
	}
	if err := r.tree.Amend(generator.IndexFile, func(content string) (string, error) {
		return generator.AmendIndex(content, project), nil
	}); err != nil {
		return err
	}
	g.diagnostics.PhaseItem("Generated " + project.MockTypeName())
	return nil
}

func (g *Generator) generateTemplates(r *run) error {
	artifacts, err := vtl.NewGenerator().Generate(r.set, r.decls)
	if err != nil {
		return err
	}
	if err := g.write(r, artifacts...); err != nil {
		return err
	}
	g.diagnostics.PhaseItem(fmt.Sprintf("Generated %d mapping templates", len(artifacts)))
	return nil
}

func (g *Generator) generateContractTests(r *run) error {
	contracts := generator.NewContractGenerator(filepath.Dir(r.cfg.DeclPath), r.resolved, r.decls).
		WithMocks(r.mocks)
	artifacts, skipped, err := contracts.Generate(r.set, r.module.Project)
	for _, skip := range skipped {
		g.warn(skip)
	}
	if err != nil {
		return err
	}
	if err := g.write(r, artifacts...); err != nil {
		return err
	}
	g.diagnostics.PhaseItem(fmt.Sprintf("Generated %d contract tests", len(artifacts)))
	return nil
}

func (g *Generator) write(r *run, artifacts ...*models.GeneratedArtifact) error {
	for _, artifact := range artifacts {
		if err := r.tree.Write(artifact); err != nil {
			return errors.WrapFileSystemError("write", artifact.Path, err)
		}
		g.diagnostics.Debug("Writing %s", artifact.Path)
	}
	return nil
}

func (g *Generator) printSummary(r *run, elapsed time.Duration) {
	stats := map[string]interface{}{
		"Endpoints":      g.summary.Endpoints,
		"Resolved types": g.summary.ResolvedTypes,
		"Files written":  len(g.summary.Files),
		"Output size":    humanize.Bytes(g.summary.Bytes),
		"Output":         r.tree.Root(),
	}
	if len(g.summary.UnresolvedTypes) > 0 {
		stats["Unresolved types"] = len(g.summary.UnresolvedTypes)
	}
	if len(g.summary.FailedPhases) > 0 {
		stats["Failed phases"] = len(g.summary.FailedPhases)
	}
	if g.diagnostics.Level() >= utils.DiagnosticVerbose {
		stats["Run ID"] = g.summary.RunID
		stats["Duration"] = elapsed.Round(time.Millisecond)
	}
	g.diagnostics.Summary("Summary", stats)
	g.listNames("Unresolved types", g.summary.UnresolvedTypes)
	g.listNames("Failed phases", g.summary.FailedPhases)
	g.diagnostics.GenerationComplete()
}

func (g *Generator) listNames(title string, names []string) {
	if len(names) == 0 {
		return
	}
	g.diagnostics.Subsection(title)
	g.diagnostics.Indent()
	for _, name := range names {
		g.diagnostics.List("%s", name)
	}
	g.diagnostics.Unindent()
}
