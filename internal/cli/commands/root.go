package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nebula-cli/nebula/internal/cli/config"
	"github.com/nebula-cli/nebula/internal/cli/ui"
	enterrors "github.com/nebula-cli/nebula/internal/entity/errors"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// NewRootCommand creates the root command on the OS filesystem
func NewRootCommand() *cobra.Command {
	return newRootCommand(DefaultEnv())
}

func newRootCommand(env *Env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nebula",
		Short: "Scaffold Rust axum projects and entities",
		Long: color.CyanString(`Nebula - Rust web project generator

Nebula creates axum server projects and generates entity structs,
SQL migrations and handler stubs from a compact field syntax:

  nebula generate entity User --fields "name:String|required,email:String|email unique"`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if env.NoColor {
				color.NoColor = true
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&env.Verbose, "verbose", "v", false, "Log each generation step")
	rootCmd.PersistentFlags().BoolVar(&env.NoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&env.JSON, "json", false, "Output errors in JSON format")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(newNewCommand(env))
	rootCmd.AddCommand(newGenerateCommand(env))
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the Nebula version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			out := cmd.OutOrStdout()
			titleColor := color.New(color.FgCyan, color.Bold)

			titleColor.Fprint(out, "Nebula version: ")
			fmt.Fprintln(out, Version)

			titleColor.Fprint(out, "Git commit: ")
			fmt.Fprintln(out, GitCommit)

			titleColor.Fprint(out, "Build date: ")
			fmt.Fprintln(out, BuildDate)

			titleColor.Fprint(out, "Go version: ")
			fmt.Fprintln(out, goVer)
		},
	}
}

// Execute runs the root command
func Execute() error {
	env := DefaultEnv()
	rootCmd := newRootCommand(env)
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprint(rootCmd.ErrOrStderr(), formatError(env, err))
	}
	_ = env.Logger().Sync()
	return err
}

// formatError renders err for the terminal. Entity errors get their
// suggestion and close matches, configuration errors point at the config file.
func formatError(env *Env, err error) string {
	if env.JSON {
		return jsonError(err)
	}
	switch {
	case enterrors.KindOf(err) != "":
		return ui.EntityError(err, env.TypeNames(), env.NoColor)
	case errors.Is(err, config.ErrNotProject), errors.Is(err, config.ErrInvalid):
		return ui.ConfigError(err.Error(), nil, env.NoColor)
	default:
		errorColor := color.New(color.FgRed, color.Bold)
		if env.NoColor {
			errorColor.DisableColor()
		}
		return errorColor.Sprintf("Error: %v\n", err)
	}
}

// jsonError encodes entity errors with their code, anything else as a bare message
func jsonError(err error) string {
	var entErr *enterrors.Error
	if errors.As(err, &entErr) {
		if out, jerr := entErr.ToJSON(); jerr == nil {
			return out + "\n"
		}
	}
	out, _ := json.MarshalIndent(struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	}{"error", err.Error()}, "", "  ")
	return string(out) + "\n"
}
