package ui

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/nebula-cli/nebula/internal/entity/dsl"
	enterrors "github.com/nebula-cli/nebula/internal/entity/errors"
)

// ErrorLevel represents the severity of an error message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Consequence  string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError creates a standardized error message with suggestions and help commands
//
// Example output:
//
//	❌ UNKNOWN VALIDATION RULE [ENT101]: unknown validation rule "requird"
//	   unknown validation rule "requird"
//
//	   Known rules are: required, unique, email, url, min, max, minLength, maxLength, pattern
//
//	   Did you mean: required?
//
//	   → Field syntax: nebula generate entity --help
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	var headerColor, bodyColor *color.Color
	var symbol string

	switch opts.Level {
	case ErrorLevelWarning:
		headerColor = color.New(color.FgYellow, color.Bold)
		bodyColor = color.New(color.FgYellow)
		symbol = "⚠️"
	case ErrorLevelInfo:
		headerColor = color.New(color.FgCyan, color.Bold)
		bodyColor = color.New(color.FgCyan)
		symbol = "ℹ️"
	default:
		headerColor = color.New(color.FgRed, color.Bold)
		bodyColor = color.New(color.FgRed)
		symbol = "❌"
	}

	if opts.NoColor {
		headerColor.DisableColor()
		bodyColor.DisableColor()
	}

	if opts.Context != "" {
		headerColor.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
	} else {
		headerColor.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Problem != "" && opts.Context != "" {
		bodyColor.Fprintf(&b, "   %s\n", opts.Problem)
	}

	if opts.Consequence != "" {
		b.WriteString("\n")
		bodyColor.Fprintf(&b, "   %s\n", opts.Consequence)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		yellow := color.New(color.FgYellow)
		if opts.NoColor {
			yellow.DisableColor()
		}
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := color.New(color.FgCyan)
		if opts.NoColor {
			cyan.DisableColor()
		}
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// EntityError formats an entity definition failure. Typos in rule names and
// scalar types get close-match suggestions drawn from the known rules and
// from types. Errors that are not entity errors are formatted generically.
func EntityError(err error, types []string, noColor bool) string {
	var entErr *enterrors.Error
	if !stderrors.As(err, &entErr) {
		return FormatError(ErrorOptions{
			Level:   ErrorLevelError,
			Context: "GENERATION FAILED",
			Problem: err.Error(),
			NoColor: noColor,
		})
	}

	problem := entErr.Message
	// keep the batch entry prefix added by wrapping
	if full := err.Error(); full != entErr.Error() && strings.HasSuffix(full, entErr.Error()) {
		problem = strings.TrimSuffix(full, entErr.Error()) + entErr.Message
	}

	opts := ErrorOptions{
		Level:       ErrorLevelError,
		Context:     fmt.Sprintf("%s [%s]", strings.ReplaceAll(string(entErr.Kind), "-", " "), entErr.Code()),
		Problem:     problem,
		Consequence: entErr.Suggestion,
		NoColor:     noColor,
	}

	opts.HelpCommands = []string{"Field syntax: nebula generate entity --help"}
	switch entErr.Kind {
	case enterrors.KindUnknownRule:
		opts.Suggestions = FindSimilar(entErr.Input, dsl.KnownRules, nil)
	case enterrors.KindInvalidType:
		opts.Suggestions = FindSimilar(entErr.Input, types, &FuzzyMatchOptions{CaseSensitive: true, MaxDistance: 2})
	case enterrors.KindFilesystem:
		if entErr.Err != nil {
			opts.Consequence = entErr.Err.Error()
		}
		opts.HelpCommands = []string{"Check that the project directory is writable"}
	}

	return FormatError(opts)
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, suggestions []string, noColor bool) string {
	opts := ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "CONFIGURATION ERROR",
		Problem:     message,
		Suggestions: suggestions,
		HelpCommands: []string{
			"View config: cat nebula.config.toml",
			"Create a project: nebula new <name>",
		},
		NoColor: noColor,
	}
	return FormatError(opts)
}

// Warning creates a standardized warning message
func Warning(message string, suggestions []string, noColor bool) string {
	opts := ErrorOptions{
		Level:       ErrorLevelWarning,
		Problem:     message,
		Suggestions: suggestions,
		NoColor:     noColor,
	}
	return FormatError(opts)
}

// Info creates a standardized info message
func Info(message string, noColor bool) string {
	opts := ErrorOptions{
		Level:   ErrorLevelInfo,
		Problem: message,
		NoColor: noColor,
	}
	return FormatError(opts)
}
