package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nebula-cli/nebula/internal/cli/ui"
	"github.com/nebula-cli/nebula/internal/generator"
)

const fieldSyntaxHelp = `Field syntax:
  name:Type|rule1 rule2=value,other:Type

  Types:     String, i32, i64, f32, f64, bool, DateTime, Vec<String>,
             Option<String>, u32, u64, usize (plus [generator] extra_types)
  Rules:     required, unique, email, url, min=N, max=N,
             minLength=N, maxLength=N, pattern=REGEX

Relation syntax (in --relations, or inline in --fields):
  author->belongsTo:User    alias->hasOne|hasMany|belongsTo:Target
  hasMany->Comment          keyword->Target, alias defaults to "comment"
  author:belongs_to:User    embedded in the fields list`

// NewGenerateCommand creates the generate command on the OS filesystem
func NewGenerateCommand() *cobra.Command {
	return newGenerateCommand(DefaultEnv())
}

func newGenerateCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"g"},
		Short:   "Code generation commands",
		Long: `Generate entities, migrations and handlers inside a Nebula project.

Available generators:
  entity     - Generate a Rust entity struct and register it in mod.rs
  migration  - Generate the SQL create migration for an entity
  handler    - Generate an axum CRUD handler stub
  resolver   - Generate an async-graphql resolver stub (graphql servers)
  routes     - Rebuild route.rs from the registered handlers
  batch      - Generate every entity listed in a YAML file

Examples:
  nebula generate entity User --fields "name:String|required,email:String|email unique"
  nebula generate entity Post -f "title:String" -r "author->belongsTo:User" --migration
  nebula g handler Post
  nebula g routes`,
	}

	cmd.AddCommand(newGenerateEntityCommand(env))
	cmd.AddCommand(newGenerateMigrationCommand(env))
	cmd.AddCommand(newGenerateHandlerCommand(env))
	cmd.AddCommand(newGenerateResolverCommand(env))
	cmd.AddCommand(newGenerateRoutesCommand(env))
	cmd.AddCommand(newGenerateBatchCommand(env))

	return cmd
}

func newGenerateEntityCommand(env *Env) *cobra.Command {
	var (
		spec          generator.EntitySpec
		withMigration bool
		dryRun        bool
		interactive   bool
	)

	cmd := &cobra.Command{
		Use:   "entity [name]",
		Short: "Generate a Rust entity",
		Long: `Generate src/entities/<name>.rs with the entity, its Input and its
Update input structs, and register the module in src/entities/mod.rs.

` + fieldSyntaxHelp + `

Examples:
  nebula generate entity User --fields "name:String|required,email:String|email unique"
  nebula generate entity Post -f "title:String|maxLength=120" -r "author->belongsTo:User"
  nebula generate entity --interactive`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				spec.Name = args[0]
			}
			if interactive {
				if err := promptEntity(env.Prompter, &spec); err != nil {
					return err
				}
			}
			if spec.Name == "" {
				return fmt.Errorf("entity name required\n\nUsage: nebula generate entity <Name> --fields \"...\"")
			}

			g, err := env.Generator()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				entity, err := g.Compile(spec)
				if err != nil {
					return err
				}
				ui.EntitySummary(out, entity, env.NoColor)
				fmt.Fprint(out, ui.Info("Dry run: no files written", env.NoColor))
				return nil
			}

			result, err := g.GenerateEntity(spec, withMigration)
			if err != nil {
				return err
			}
			ui.EntitySummary(out, result.Entity, env.NoColor)
			fmt.Fprintln(out)
			if result.Entity.IsEmpty() {
				fmt.Fprint(out, ui.Warning(result.Entity.Name+" has no fields, its structs hold a placeholder",
					[]string{"--fields \"name:String|required\""}, env.NoColor))
			}
			printResult(out, result, env.NoColor)
			return nil
		},
	}

	cmd.Flags().StringVarP(&spec.Fields, "fields", "f", "", "Comma separated field definitions")
	cmd.Flags().StringVarP(&spec.Relations, "relations", "r", "", "Comma separated relation definitions")
	cmd.Flags().BoolVarP(&withMigration, "migration", "m", false, "Also generate the create migration")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and print the entity without writing files")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Prompt for the name, fields and relations")

	return cmd
}

func promptEntity(p Prompter, spec *generator.EntitySpec) error {
	var err error
	if spec.Name == "" {
		if spec.Name, err = p.Input("Entity name (CamelCase):", "", true); err != nil {
			return err
		}
	}
	if spec.Fields, err = p.Input("Fields (name:Type|rules, ...):", spec.Fields, false); err != nil {
		return err
	}
	if spec.Relations, err = p.Input("Relations (alias->belongsTo:Target, ...):", spec.Relations, false); err != nil {
		return err
	}
	return nil
}

func newGenerateMigrationCommand(env *Env) *cobra.Command {
	var spec generator.EntitySpec

	cmd := &cobra.Command{
		Use:   "migration <entity>",
		Short: "Generate the create migration for an entity",
		Long: `Generate <timestamp>_create_<table>.up.sql and .down.sql in the
migrations directory. Column types follow [project] database.

` + fieldSyntaxHelp + `

Examples:
  nebula generate migration User --fields "name:String|required,email:String|unique"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec.Name = args[0]

			g, err := env.Generator()
			if err != nil {
				return err
			}

			result, err := g.GenerateMigration(spec)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), result, env.NoColor)
			return nil
		},
	}

	cmd.Flags().StringVarP(&spec.Fields, "fields", "f", "", "Comma separated field definitions")
	cmd.Flags().StringVarP(&spec.Relations, "relations", "r", "", "Comma separated relation definitions")

	return cmd
}

func newGenerateHandlerCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "handler <entity>",
		Short: "Generate an axum CRUD handler stub",
		Long: `Generate src/handlers/<name>.rs with list, get, create, update and
delete handlers for an entity and register it in src/handlers/mod.rs.

Examples:
  nebula generate handler User`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := env.Generator()
			if err != nil {
				return err
			}

			result, err := g.GenerateHandler(args[0])
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), result, env.NoColor)
			return nil
		},
	}
}

func newGenerateResolverCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "resolver <entity>",
		Short: "Generate an async-graphql resolver stub",
		Long: `Generate src/resolvers/<name>.rs with the Query and Mutation objects
of an entity and register it in src/resolvers/mod.rs. Requires
[project] server_type = "graphql". Run "nebula generate routes" afterwards
to merge it into the schema.

Examples:
  nebula generate resolver User`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := env.Generator()
			if err != nil {
				return err
			}

			result, err := g.GenerateResolver(args[0])
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), result, env.NoColor)
			return nil
		},
	}
}

func newGenerateRoutesCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Rebuild the router from the registered handlers",
		Long: `Rewrite src/route.rs so it merges the routes of every module in
src/handlers/mod.rs under /api/v1. GraphQL servers also get the /graphql
endpoint, and src/graphql.rs is rebuilt from src/resolvers/mod.rs.

Examples:
  nebula generate routes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := env.Generator()
			if err != nil {
				return err
			}

			result, err := g.GenerateRoutes()
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), result, env.NoColor)
			return nil
		},
	}
}

func newGenerateBatchCommand(env *Env) *cobra.Command {
	var withMigration bool

	cmd := &cobra.Command{
		Use:   "batch <file.yaml>",
		Short: "Generate every entity listed in a YAML file",
		Long: `Generate entities in file order. The first failing entry stops the
batch; entities generated before it stay written.

File format:
  entities:
    - name: User
      fields: "name:String|required,email:String|email unique"
    - name: Post
      fields: "title:String"
      relations: "author->belongsTo:User"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !filepath.IsAbs(path) {
				wd, err := env.WorkDir()
				if err != nil {
					return fmt.Errorf("failed to get working directory: %w", err)
				}
				path = filepath.Join(wd, path)
			}

			specs, err := generator.LoadBatch(env.FS, path)
			if err != nil {
				return err
			}

			g, err := env.Generator()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var results []*generator.Result
			err = ui.WithProgress(out, fmt.Sprintf("Generated %d entities", len(specs)), len(specs), env.NoColor,
				func(bar *ui.ProgressBar) error {
					var err error
					results, err = g.GenerateBatch(specs, withMigration, func(_ int, spec generator.EntitySpec) {
						bar.Step(spec.Name)
					})
					return err
				})

			for _, result := range results {
				printResult(out, result, env.NoColor)
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&withMigration, "migration", "m", false, "Also generate create migrations")

	return cmd
}

func printResult(w io.Writer, result *generator.Result, noColor bool) {
	for _, f := range result.Files {
		ui.WriteSuccess(w, "Created "+f, noColor)
	}
	if result.Registered {
		ui.WriteSuccess(w, fmt.Sprintf("Registered %s in %s", result.Entity.ModuleName(), generator.IndexFile), noColor)
	}
}
