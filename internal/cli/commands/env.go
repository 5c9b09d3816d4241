package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/nebula-cli/nebula/internal/cli/config"
	"github.com/nebula-cli/nebula/internal/entity/dsl"
	"github.com/nebula-cli/nebula/internal/generator"
)

// Prompter asks the user for missing values in interactive mode
type Prompter interface {
	Input(message, defaultValue string, required bool) (string, error)
	Select(message string, options []string, defaultValue string) (string, error)
}

// surveyPrompter prompts on the terminal
type surveyPrompter struct{}

func (surveyPrompter) Input(message, defaultValue string, required bool) (string, error) {
	var answer string
	prompt := &survey.Input{Message: message, Default: defaultValue}
	var opts []survey.AskOpt
	if required {
		opts = append(opts, survey.WithValidator(survey.Required))
	}
	if err := survey.AskOne(prompt, &answer, opts...); err != nil {
		return "", err
	}
	return answer, nil
}

func (surveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	var answer string
	prompt := &survey.Select{Message: message, Options: options}
	if defaultValue != "" {
		prompt.Default = defaultValue
	}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return "", err
	}
	return answer, nil
}

// Env holds what commands read from and write to
type Env struct {
	FS       afero.Fs
	WorkDir  func() (string, error)
	Prompter Prompter
	// Now stamps generated migrations
	Now func() time.Time

	Verbose bool
	NoColor bool
	// JSON prints failures as JSON objects on stderr
	JSON bool

	logger *zap.Logger
	// types is the scalar allow-list of the last loaded project, used for
	// error suggestions
	types *dsl.TypeSet
}

// DefaultEnv works on the OS filesystem and prompts on the terminal
func DefaultEnv() *Env {
	return &Env{
		FS:       afero.NewOsFs(),
		WorkDir:  os.Getwd,
		Prompter: surveyPrompter{},
		Now:      time.Now,
	}
}

// Logger returns the command logger: a development logger with --verbose,
// a no-op logger otherwise
func (e *Env) Logger() *zap.Logger {
	if e.logger != nil {
		return e.logger
	}
	e.logger = zap.NewNop()
	if e.Verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			e.logger = l
		}
	}
	return e.logger
}

// TypeNames returns the scalar types known to the current project
func (e *Env) TypeNames() []string {
	if e.types == nil {
		return dsl.DefaultTypes().Names()
	}
	return e.types.Names()
}

// Project locates and loads the enclosing project
func (e *Env) Project() (string, *config.Config, error) {
	wd, err := e.WorkDir()
	if err != nil {
		return "", nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	root, err := config.FindProjectRoot(e.FS, wd)
	if err != nil {
		return "", nil, err
	}

	cfg, err := config.Load(e.FS, root)
	if err != nil {
		return "", nil, err
	}

	e.Logger().Debug("loaded project config",
		zap.String("root", root),
		zap.String("database", cfg.Project.Database),
	)
	return root, cfg, nil
}

// Generator builds a generator for the enclosing project
func (e *Env) Generator() (*generator.Generator, error) {
	root, cfg, err := e.Project()
	if err != nil {
		return nil, err
	}

	opts := generator.OptionsFromConfig(root, cfg)
	opts.Now = e.Now
	g := generator.New(e.FS, opts, e.Logger().Named("generator"))
	e.types = g.Types()
	return g, nil
}
