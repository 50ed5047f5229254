package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	apigen "github.com/toyz/apigen/internal/cli"
	"github.com/toyz/apigen/internal/errors"
	"github.com/toyz/apigen/internal/utils"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	app := newApp(stdout, stderr)
	if err := app.Run(hoistFlags(args)); err != nil {
		if exitErr, ok := err.(cli.ExitCoder); ok {
			if msg := exitErr.Error(); msg != "" {
				fmt.Fprintf(stderr, "Error: %s\n", msg)
			}
			return exitErr.ExitCode()
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "apigen",
		Usage:     "generates a typed API client, mocks, mapping templates and contract tests from endpoint declarations",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		ExitErrHandler: func(*cli.Context, error) {
			// run reports errors and picks the exit code
		},
		Commands: []*cli.Command{
			{
				Name:      "generate",
				Usage:     "generate the client package for a declaration module",
				ArgsUsage: "<projectName> <endpointsDeclarationPath> [outputDir]",
				Flags:     generateFlags(),
				Action: func(ctx *cli.Context) error {
					return generate(ctx, stdout, stderr)
				},
			},
		},
	}
}

func generateFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "no-mocks",
			Usage: "skip the mock client",
		},
		&cli.BoolFlag{
			Name:  "no-tests",
			Usage: "skip the contract tests",
		},
		&cli.BoolFlag{
			Name:  "no-vtl",
			Usage: "skip the request and response mapping templates",
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "configuration file",
			DefaultText: apigen.ConfigFile + " beside the declaration module",
		},
		&cli.StringFlag{
			Name:  "module",
			Usage: "import path of the generated module (defaults to the path inside the project's go.mod)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "enable verbose output and detailed error reporting",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "only show errors",
		},
	}
}

func generate(ctx *cli.Context, stdout, stderr io.Writer) error {
	if ctx.NArg() < 2 {
		cli.ShowSubcommandHelp(ctx)
		return cli.Exit("a project name and an endpoints declaration path are required", 1)
	}
	if ctx.NArg() > 3 {
		return cli.Exit(fmt.Sprintf("unexpected arguments: %s", strings.Join(ctx.Args().Slice()[3:], " ")), 1)
	}

	var diagnostics *utils.DiagnosticSystem
	switch {
	case ctx.Bool("quiet"):
		diagnostics = utils.NewQuietDiagnostics()
	case ctx.Bool("verbose"):
		diagnostics = utils.NewVerboseDiagnostics()
	default:
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	if stdout != os.Stdout || stderr != os.Stderr {
		diagnostics.SetOutput(stdout, stderr)
	}

	generator := apigen.NewGenerator(diagnostics)
	if stderr != os.Stderr {
		generator.Reporter().SetOutput(stderr)
	}

	cfg, err := pipelineConfig(ctx)
	if err != nil {
		return exitFor(generator.Reporter(), err)
	}

	diagnostics.Debug("Configuration: %+v", cfg)
	if err := generator.Run(cfg); err != nil {
		return exitFor(generator.Reporter(), err)
	}
	return nil
}

// exitFor reports err and decides the exit status. Only fatal errors fail
// the command; recoverable ones are reported as warnings.
func exitFor(reporter *apigen.DiagnosticReporter, err error) error {
	if !errors.IsFatal(err) {
		reporter.ReportWarning(err)
		return nil
	}
	reporter.ReportError(err)
	return cli.Exit("", 1)
}

// pipelineConfig layers the config file and then the command line over the
// defaults
func pipelineConfig(ctx *cli.Context) (apigen.PipelineConfig, error) {
	cfg := apigen.PipelineConfig{
		ProjectName: ctx.Args().Get(0),
		DeclPath:    ctx.Args().Get(1),
		Phases:      apigen.AllPhases(),
	}

	configPath := ctx.String("config")
	if configPath == "" {
		configPath = apigen.FindFileConfig(cfg.DeclPath)
	}
	if configPath != "" {
		file, err := apigen.LoadFileConfig(configPath)
		if err != nil {
			return cfg, err
		}
		if file == nil && ctx.IsSet("config") {
			return cfg, errors.ConfigurationError(configPath, "file does not exist")
		}
		cfg.Apply(file, filepath.Dir(configPath))
	}

	if out := ctx.Args().Get(2); out != "" {
		cfg.OutputDir = out
	}
	if module := ctx.String("module"); module != "" {
		cfg.Module = module
	}
	if ctx.Bool("no-mocks") {
		cfg.Phases.Mocks = false
	}
	if ctx.Bool("no-tests") {
		cfg.Phases.ContractTests = false
	}
	if ctx.Bool("no-vtl") {
		cfg.Phases.Templates = false
	}
	return cfg, cfg.Validate()
}

// hoistFlags moves flags given after the positional arguments of a command
// in front of them so they are parsed as flags
func hoistFlags(args []string) []string {
	if len(args) < 2 || args[1] != "generate" {
		return args
	}

	valued := make(map[string]bool)
	for _, flag := range generateFlags() {
		if _, isBool := flag.(*cli.BoolFlag); isBool {
			continue
		}
		for _, name := range flag.Names() {
			valued[name] = true
		}
	}

	out := []string{args[0], args[1]}
	var flags, positionals []string
	rest := args[2:]
	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		if arg == "--" {
			positionals = append(positionals, rest[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			positionals = append(positionals, arg)
			continue
		}
		flags = append(flags, arg)
		name := strings.TrimLeft(arg, "-")
		if valued[name] && i+1 < len(rest) {
			i++
			flags = append(flags, rest[i])
		}
	}

	out = append(out, flags...)
	if len(positionals) > 0 {
		out = append(out, "--")
		out = append(out, positionals...)
	}
	return out
}
