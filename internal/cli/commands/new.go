package commands

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nebula-cli/nebula/internal/cli/config"
	"github.com/nebula-cli/nebula/internal/cli/ui"
	"github.com/nebula-cli/nebula/internal/templates"
)

var projectNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// validateProjectName validates project name with security checks
func validateProjectName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) == 0 || len(name) > 100 {
		return fmt.Errorf("project name must be 1-100 characters")
	}

	if filepath.IsAbs(name) {
		return fmt.Errorf("project name cannot be an absolute path")
	}

	// also rules out "." and ".."
	if !projectNamePattern.MatchString(name) {
		return fmt.Errorf("project name can only contain letters, numbers, dashes, and underscores")
	}

	return nil
}

type newOptions struct {
	projectType string
	database    string
	serverType  string
	interactive bool
}

// NewNewCommand creates the new command on the OS filesystem
func NewNewCommand() *cobra.Command {
	return newNewCommand(DefaultEnv())
}

func newNewCommand(env *Env) *cobra.Command {
	var opts newOptions

	cmd := &cobra.Command{
		Use:   "new [project-name]",
		Short: "Create a new Nebula project",
		Long: `Create a new project directory from a built-in template and write
its nebula.config.toml.

Project types:
  server - Rust axum API server with entities, handlers and migrations
  client - Static web client
  full   - API server under api/ and web client under web/

Missing options are prompted for with --interactive, otherwise the
defaults apply.

Examples:
  nebula new blog
  nebula new blog --database sqlite --server graphql
  nebula new shop --type full
  nebula new --interactive`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			}
			return runNew(cmd, env, name, opts, cmd.Flags().Changed)
		},
	}

	cmd.Flags().StringVarP(&opts.projectType, "type", "t", "server", "Project type (server, client, full)")
	cmd.Flags().StringVar(&opts.database, "database", "postgresql", "Database (postgresql, mysql, mariadb, sqlite, mongodb)")
	cmd.Flags().StringVar(&opts.serverType, "server", "rest", "Server type (rest, graphql)")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Interactive project setup with prompts")

	_ = cmd.RegisterFlagCompletionFunc("type", cobra.FixedCompletions(
		[]string{"server", "client", "full"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func runNew(cmd *cobra.Command, env *Env, name string, opts newOptions, changed func(string) bool) error {
	registry, err := templates.Builtin()
	if err != nil {
		return err
	}

	if opts.interactive {
		if err := promptNew(env.Prompter, registry, &name, &opts, changed); err != nil {
			return err
		}
	}
	if name == "" {
		return fmt.Errorf("project name required\n\nUsage: nebula new <project-name>")
	}
	if err := validateProjectName(name); err != nil {
		return err
	}

	if !registry.Exists(opts.projectType) {
		return unknownProjectType(registry, opts.projectType)
	}
	tmpl, err := registry.Get(opts.projectType)
	if err != nil {
		return err
	}

	cfg := projectConfig(name, tmpl, opts)
	if err := config.Validate(cfg); err != nil {
		return err
	}

	wd, err := env.WorkDir()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	projectDir := filepath.Join(wd, name)
	if exists, err := afero.Exists(env.FS, projectDir); err != nil {
		return fmt.Errorf("failed to check %s: %w", projectDir, err)
	} else if exists {
		return fmt.Errorf("directory %s already exists", name)
	}

	vars := tmpl.Defaults()
	if len(tmpl.Variables) > 0 {
		vars[templates.VarDatabase] = opts.database
		vars[templates.VarServerType] = opts.serverType
	}

	logger := env.Logger()
	written, err := templates.NewEngine(env.FS).Execute(tmpl,
		&templates.TemplateContext{ProjectName: name, Variables: vars}, projectDir)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	for _, f := range written {
		logger.Info("wrote file", zap.String("path", f))
	}

	if err := config.Write(env.FS, projectDir, cfg); err != nil {
		return err
	}
	logger.Info("wrote file", zap.String("path", config.FileName))

	out := cmd.OutOrStdout()
	ui.WriteSuccess(out, "Created project: "+name, env.NoColor)
	fmt.Fprintln(out)

	summary := ui.NewKeyValueTable(out, env.NoColor)
	summary.AddRow("type", cfg.Project.Type)
	if tmpl.Name != "client" {
		summary.AddRow("database", cfg.Project.Database)
		summary.AddRow("server", cfg.Project.ServerType)
		summary.AddRow("entities", cfg.Paths.Entities)
	}
	summary.Render()

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Get started:")
	fmt.Fprintf(out, "  cd %s\n", name)
	if tmpl.Name != "client" {
		fmt.Fprintln(out, `  nebula generate entity User --fields "name:String|required,email:String|email unique"`)
	}

	return nil
}

func unknownProjectType(registry *templates.Registry, projectType string) error {
	names := registry.Names()
	msg := fmt.Sprintf("unknown project type %q, expected one of: %s", projectType, strings.Join(names, ", "))
	if best := ui.FindBestMatch(projectType, names, nil); best != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", best)
	}
	return errors.New(msg)
}

// projectConfig builds the config written into a new project. Generator
// paths are rooted at the template's crate directory.
func projectConfig(name string, tmpl *templates.Template, opts newOptions) *config.Config {
	cfg := config.Default(name)
	cfg.Project.Type = tmpl.Name
	cfg.Project.Database = opts.database
	cfg.Project.ServerType = opts.serverType

	if tmpl.SourceRoot != "" {
		cfg.Paths.Entities = path.Join(tmpl.SourceRoot, cfg.Paths.Entities)
		cfg.Paths.Handlers = path.Join(tmpl.SourceRoot, cfg.Paths.Handlers)
		cfg.Paths.Resolvers = path.Join(tmpl.SourceRoot, cfg.Paths.Resolvers)
		cfg.Paths.Migrations = path.Join(tmpl.SourceRoot, cfg.Paths.Migrations)
		cfg.Paths.Routes = path.Join(tmpl.SourceRoot, cfg.Paths.Routes)
		cfg.Paths.Schema = path.Join(tmpl.SourceRoot, cfg.Paths.Schema)
	}
	return cfg
}

// promptNew asks for the name and every option not set on the command line
func promptNew(p Prompter, registry *templates.Registry, name *string, opts *newOptions, changed func(string) bool) error {
	var err error
	if *name == "" {
		if *name, err = p.Input("Project name:", "", true); err != nil {
			return err
		}
	}

	if !changed("type") {
		if opts.projectType, err = p.Select("Project type:", registry.Names(), opts.projectType); err != nil {
			return err
		}
	}
	if opts.projectType == "client" {
		return nil
	}

	for _, v := range templates.NewServerTemplate().Variables {
		var target *string
		var flag string
		switch v.Name {
		case templates.VarDatabase:
			target, flag = &opts.database, "database"
		case templates.VarServerType:
			target, flag = &opts.serverType, "server"
		default:
			continue
		}
		if changed(flag) {
			continue
		}
		if *target, err = p.Select(v.Prompt+":", v.Options, *target); err != nil {
			return err
		}
	}
	return nil
}
