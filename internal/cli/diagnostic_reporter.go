package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/apigen/internal/errors"
)

// DiagnosticReporter renders errors and warnings with their context and
// suggestions
type DiagnosticReporter struct {
	verbose   bool
	out       io.Writer
	useColors bool
}

// NewDiagnosticReporter creates a reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose:   verbose,
		out:       os.Stderr,
		useColors: os.Getenv("NO_COLOR") == "",
	}
}

// SetOutput redirects the reporter and turns colors off
func (r *DiagnosticReporter) SetOutput(out io.Writer) {
	r.out = out
	r.useColors = false
}

// ReportWarning prints a one-line warning, plus suggestions in verbose mode
func (r *DiagnosticReporter) ReportWarning(err error) {
	r.colored(color.FgYellow, color.Bold).Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", err.Error())

	if r.verbose {
		var appErr errors.AppError
		if stderrors.As(err, &appErr) {
			for _, suggestion := range appErr.Suggestions() {
				fmt.Fprintf(r.out, "   - %s\n", suggestion)
			}
		}
	}
}

// ReportError provides comprehensive error reporting with user-friendly output
func (r *DiagnosticReporter) ReportError(err error) {
	fmt.Fprintf(r.out, "\nERROR: Code Generation Failed\n")
	fmt.Fprintf(r.out, "=============================\n\n")

	var multiple *errors.MultipleErrors
	var appErr errors.AppError
	switch {
	case stderrors.As(err, &multiple):
		r.printErrorHeader(multiple.ErrorCode())
		for i, e := range multiple.Errors {
			fmt.Fprintf(r.out, "%d. %s\n", i+1, e.Error())
		}
		fmt.Fprintln(r.out)
		if suggestions := multiple.Suggestions(); len(suggestions) > 0 {
			r.printSuggestions(suggestions)
		}
		r.printAdditionalHelp(multiple.ErrorCode())
	case stderrors.As(err, &appErr):
		r.reportAppError(appErr)
	default:
		fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())
	}

	fmt.Fprintf(r.out, "\n")
}

func (r *DiagnosticReporter) reportAppError(appErr errors.AppError) {
	r.printErrorHeader(appErr.ErrorCode())

	fmt.Fprintf(r.out, "Message: %s\n\n", appErr.Error())

	if loc := appErr.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.out, "Location: %s\n\n", loc.String())
	}
	if ctx := appErr.Context(); len(ctx) > 0 {
		r.printContext(ctx)
	}
	if suggestions := appErr.Suggestions(); len(suggestions) > 0 {
		r.printSuggestions(suggestions)
	}
	r.printAdditionalHelp(appErr.ErrorCode())

	if r.verbose {
		r.printErrorChain(appErr)
	}
}

// printErrorHeader prints a formatted error header based on error code
func (r *DiagnosticReporter) printErrorHeader(code errors.ErrorCode) {
	title := code.String()
	r.colored(color.FgRed, color.Bold).Fprintf(r.out, "Type: %s\n", title)
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("-", len(title)+6))
}

// printContext prints context information in a readable format
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	fmt.Fprintf(r.out, "Context:\n")

	keys := make([]string, 0, len(context))
	for key := range context {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Fprintf(r.out, "   %s: %v\n", formatContextKey(key), context[key])
	}
	fmt.Fprintf(r.out, "\n")
}

// formatContextKey converts snake_case keys to Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

// printSuggestions prints actionable suggestions
func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "Suggestions:\n")
	for i, suggestion := range suggestions {
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, suggestion)
	}
	fmt.Fprintf(r.out, "\n")
}

// printAdditionalHelp prints additional help based on error code
func (r *DiagnosticReporter) printAdditionalHelp(code errors.ErrorCode) {
	switch code {
	case errors.LoadFailureCode:
		fmt.Fprintf(r.out, "Declaration Requirements:\n")
		fmt.Fprintf(r.out, "  - Declare a package-level variable named Endpoints\n")
		fmt.Fprintf(r.out, "  - Use apidecl.Endpoint[Method, In, Out]{...} literals as its values\n")
		fmt.Fprintf(r.out, "  - Path and Method must be string literals or constants\n\n")

	case errors.InvalidStoreConfigCode:
		fmt.Fprintf(r.out, "Store Configuration Rules:\n")
		fmt.Fprintf(r.out, "  - GetItem needs a PartitionKey and cannot use an IndexName\n")
		fmt.Fprintf(r.out, "  - Query needs a KeyConditionExpression\n")
		fmt.Fprintf(r.out, "  - Every #name and :value placeholder must be declared and used\n\n")
	}

	if !r.verbose {
		fmt.Fprintf(r.out, "Run with --verbose for more detailed output\n")
	}
}

func (r *DiagnosticReporter) printErrorChain(err error) {
	fmt.Fprintf(r.out, "Error Chain:\n")
	level := 1
	for err != nil {
		fmt.Fprintf(r.out, "    %d. %s\n", level, err.Error())
		err = stderrors.Unwrap(err)
		level++
	}
	fmt.Fprintf(r.out, "\n")
}

func (r *DiagnosticReporter) colored(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if r.useColors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}
