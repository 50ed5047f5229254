package utils

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
)

// DiagnosticLevel represents the level of diagnostic output
type DiagnosticLevel int

const (
	DiagnosticSilent DiagnosticLevel = iota
	DiagnosticError
	DiagnosticWarn
	DiagnosticInfo
	DiagnosticVerbose
	DiagnosticDebug
)

// DiagnosticSystem provides structured, user-friendly output
type DiagnosticSystem struct {
	level     DiagnosticLevel
	useColors bool
	showTime  bool
	output    io.Writer
	errorOut  io.Writer
	indent    int
}

// NewDiagnosticSystem creates a new diagnostic system
func NewDiagnosticSystem(level DiagnosticLevel) *DiagnosticSystem {
	return &DiagnosticSystem{
		level:     level,
		useColors: shouldUseColors(),
		showTime:  level >= DiagnosticVerbose,
		output:    os.Stdout,
		errorOut:  os.Stderr,
		indent:    0,
	}
}

// NewQuietDiagnostics creates a diagnostic system that only shows errors
func NewQuietDiagnostics() *DiagnosticSystem {
	return NewDiagnosticSystem(DiagnosticError)
}

// NewVerboseDiagnostics creates a diagnostic system with full output
func NewVerboseDiagnostics() *DiagnosticSystem {
	return NewDiagnosticSystem(DiagnosticVerbose)
}

// SetOutput redirects normal and error output. Colors and timestamps are
// turned off so captured output is stable.
func (d *DiagnosticSystem) SetOutput(output, errorOut io.Writer) {
	d.output = output
	d.errorOut = errorOut
	d.useColors = false
	d.showTime = false
}

// Level returns the configured level
func (d *DiagnosticSystem) Level() DiagnosticLevel {
	return d.level
}

// Error outputs error messages (always shown unless silent)
func (d *DiagnosticSystem) Error(format string, args ...interface{}) {
	if d.level >= DiagnosticError {
		d.writeMessage(d.errorOut, "ERROR", color.FgRed, format, args...)
	}
}

// Warn outputs warning messages
func (d *DiagnosticSystem) Warn(format string, args ...interface{}) {
	if d.level >= DiagnosticWarn {
		d.writeMessage(d.output, "WARN", color.FgYellow, format, args...)
	}
}

// Info outputs informational messages
func (d *DiagnosticSystem) Info(format string, args ...interface{}) {
	if d.level >= DiagnosticInfo {
		d.writeMessage(d.output, "INFO", color.FgBlue, format, args...)
	}
}

// Verbose outputs detailed messages (verbose mode only)
func (d *DiagnosticSystem) Verbose(format string, args ...interface{}) {
	if d.level >= DiagnosticVerbose {
		d.writeMessage(d.output, "VERBOSE", color.FgHiBlack, format, args...)
	}
}

// Debug outputs debug messages (highest verbosity)
func (d *DiagnosticSystem) Debug(format string, args ...interface{}) {
	if d.level >= DiagnosticDebug {
		d.writeMessage(d.output, "DEBUG", color.FgMagenta, format, args...)
	}
}

// Subsection creates a subsection header
func (d *DiagnosticSystem) Subsection(title string) {
	if d.level >= DiagnosticInfo {
		fmt.Fprintf(d.output, "\n%s:\n", title)
	}
}

// List outputs a bulleted list item
func (d *DiagnosticSystem) List(format string, args ...interface{}) {
	if d.level >= DiagnosticInfo {
		message := fmt.Sprintf(format, args...)
		fmt.Fprintf(d.output, "%s- %s\n", d.getIndent(), message)
	}
}

// Indent increases the indentation level
func (d *DiagnosticSystem) Indent() {
	d.indent++
}

// Unindent decreases the indentation level
func (d *DiagnosticSystem) Unindent() {
	if d.indent > 0 {
		d.indent--
	}
}

// Summary outputs a final summary with statistics, keys in sorted order
func (d *DiagnosticSystem) Summary(title string, stats map[string]interface{}) {
	if d.level >= DiagnosticInfo {
		fmt.Fprintf(d.output, "\n%s\n", title)

		keys := make([]string, 0, len(stats))
		for key := range stats {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(d.output, "   %s: %v\n", key, stats[key])
		}
		fmt.Fprintln(d.output)
	}
}

// Header outputs the main apigen header
func (d *DiagnosticSystem) Header(message string) {
	if d.level >= DiagnosticInfo {
		d.colored(color.FgCyan).Fprintf(d.output, "apigen: %s\n", message)
	}
}

// PhaseHeader outputs a phase header
func (d *DiagnosticSystem) PhaseHeader(phase string) {
	if d.level >= DiagnosticInfo {
		d.colored(color.FgBlue).Fprintf(d.output, "%s:\n", phase)
	}
}

// PhaseItem outputs a phase item with checkmark
func (d *DiagnosticSystem) PhaseItem(message string) {
	if d.level >= DiagnosticInfo {
		d.colored(color.FgGreen).Fprint(d.output, "✓ ")
		fmt.Fprintf(d.output, "%s\n", message)
	}
}

// GenerationComplete outputs the completion message
func (d *DiagnosticSystem) GenerationComplete() {
	if d.level >= DiagnosticInfo {
		fmt.Fprintln(d.output)
		d.colored(color.FgGreen).Fprintln(d.output, "apigen: Generation complete!")
	}
}

func (d *DiagnosticSystem) colored(attr color.Attribute) *color.Color {
	c := color.New(attr)
	if d.useColors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// writeMessage is the internal message writing function
func (d *DiagnosticSystem) writeMessage(writer io.Writer, level string, attr color.Attribute, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	var output strings.Builder
	output.WriteString(d.getIndent())

	if d.showTime {
		output.WriteString(time.Now().Format("15:04:05 "))
	}

	output.WriteString(d.colored(attr).Sprintf("[%s]", level))
	output.WriteString(" ")
	output.WriteString(message)
	output.WriteString("\n")

	fmt.Fprint(writer, output.String())
}

// getIndent returns the current indentation string
func (d *DiagnosticSystem) getIndent() string {
	return strings.Repeat("  ", d.indent)
}

// shouldUseColors determines if colors should be used
func shouldUseColors() bool {
	// Check if NO_COLOR is set (standard)
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	// Check if FORCE_COLOR is set
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}

	// Check if we have a terminal
	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}
