// Package generator writes compiled entities into a project. It is the only
// part of entity generation that touches the filesystem: every file for an
// entity is rendered and its module index read and merged in memory before
// the first write, so a compile, render or index read failure leaves the
// project untouched. The index is written last.
package generator

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/nebula-cli/nebula/internal/cli/config"
	"github.com/nebula-cli/nebula/internal/entity/codegen"
	"github.com/nebula-cli/nebula/internal/entity/dsl"
	enterrors "github.com/nebula-cli/nebula/internal/entity/errors"
	"github.com/nebula-cli/nebula/internal/entity/modindex"
)

// IndexFile is the module index name inside generated directories
const IndexFile = "mod.rs"

// EntitySpec is the raw command line description of one entity
type EntitySpec struct {
	Name      string `yaml:"name"`
	Fields    string `yaml:"fields"`
	Relations string `yaml:"relations"`
}

// Options configures a Generator
type Options struct {
	// Root is the project root all paths are relative to
	Root          string
	EntitiesDir   string
	HandlersDir   string
	ResolversDir  string
	MigrationsDir string
	RoutesFile    string
	SchemaFile    string
	Database      string
	// ServerType is rest or graphql
	ServerType string
	Types      *dsl.TypeSet
	// Now stamps migration file names; defaults to time.Now
	Now func() time.Time
}

// OptionsFromConfig maps a loaded project configuration to generator options
func OptionsFromConfig(root string, cfg *config.Config) Options {
	return Options{
		Root:          root,
		EntitiesDir:   cfg.Paths.Entities,
		HandlersDir:   cfg.Paths.Handlers,
		ResolversDir:  cfg.Paths.Resolvers,
		MigrationsDir: cfg.Paths.Migrations,
		RoutesFile:    cfg.Paths.Routes,
		SchemaFile:    cfg.Paths.Schema,
		Database:      cfg.Project.Database,
		ServerType:    cfg.Project.ServerType,
		Types:         dsl.DefaultTypes().With(cfg.Generator.ExtraTypes...),
	}
}

// Result lists what one generation step produced
type Result struct {
	Entity *dsl.Entity
	// Files are the written paths, relative to the project root
	Files []string
	// Registered is true when a module index gained a new entry
	Registered bool
}

// Generator renders and writes entity files into one project
type Generator struct {
	fs       afero.Fs
	opts     Options
	compiler *dsl.Compiler
	logger   *zap.Logger
}

// New creates a Generator. A nil logger is replaced by a no-op logger.
func New(fs afero.Fs, opts Options, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.EntitiesDir == "" {
		opts.EntitiesDir = "src/entities"
	}
	if opts.HandlersDir == "" {
		opts.HandlersDir = "src/handlers"
	}
	if opts.ResolversDir == "" {
		opts.ResolversDir = "src/resolvers"
	}
	if opts.MigrationsDir == "" {
		opts.MigrationsDir = "migrations"
	}
	if opts.RoutesFile == "" {
		opts.RoutesFile = "src/route.rs"
	}
	if opts.SchemaFile == "" {
		opts.SchemaFile = "src/graphql.rs"
	}
	return &Generator{
		fs:       fs,
		opts:     opts,
		compiler: dsl.NewCompiler(opts.Types),
		logger:   logger,
	}
}

// Compile parses spec without writing anything
func (g *Generator) Compile(spec EntitySpec) (*dsl.Entity, error) {
	entity, err := g.compiler.Compile(spec.Name, spec.Fields, spec.Relations)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("compiled entity",
		zap.String("entity", entity.Name),
		zap.Int("fields", len(entity.Fields)),
		zap.Int("relations", len(entity.Relations)),
	)
	return entity, nil
}

// Types returns the scalar type allow-list in use
func (g *Generator) Types() *dsl.TypeSet {
	return g.compiler.Types()
}

// pendingFile is a rendered file waiting to be written
type pendingFile struct {
	path    string
	content string
}

// GenerateEntity writes the entity module and registers it in the entities
// index. With withMigration set the create migration is written as well.
// An existing entity file is overwritten.
func (g *Generator) GenerateEntity(spec EntitySpec, withMigration bool) (*Result, error) {
	entity, err := g.Compile(spec)
	if err != nil {
		return nil, err
	}

	source, err := codegen.RenderEntity(entity)
	if err != nil {
		return nil, err
	}
	files := []pendingFile{{
		path:    filepath.Join(g.opts.EntitiesDir, entity.ModuleName()+".rs"),
		content: source,
	}}

	if withMigration {
		migration, err := g.renderMigration(entity)
		if err != nil {
			return nil, err
		}
		files = append(files, migration...)
	}

	index, err := g.planIndex(g.opts.EntitiesDir, modindex.Registration{
		Module: entity.ModuleName(),
		Export: entity.Name,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{Entity: entity}
	if err := g.writeAll(files, result); err != nil {
		return nil, err
	}
	if err := g.commitIndex(index, result); err != nil {
		return nil, err
	}
	return result, nil
}

// GenerateMigration writes the up/down create migration for the entity
func (g *Generator) GenerateMigration(spec EntitySpec) (*Result, error) {
	entity, err := g.Compile(spec)
	if err != nil {
		return nil, err
	}

	files, err := g.renderMigration(entity)
	if err != nil {
		return nil, err
	}

	result := &Result{Entity: entity}
	if err := g.writeAll(files, result); err != nil {
		return nil, err
	}
	return result, nil
}

// GenerateHandler writes the axum handler stub for an entity name and
// registers it in the handlers index
func (g *Generator) GenerateHandler(name string) (*Result, error) {
	if err := dsl.ValidateEntityName(name); err != nil {
		return nil, err
	}
	entity := &dsl.Entity{Name: name}

	source, err := codegen.RenderHandler(entity.Name, entity.ModuleName())
	if err != nil {
		return nil, err
	}

	index, err := g.planIndex(g.opts.HandlersDir, modindex.Registration{Module: entity.ModuleName()})
	if err != nil {
		return nil, err
	}

	result := &Result{Entity: entity}
	files := []pendingFile{{
		path:    filepath.Join(g.opts.HandlersDir, entity.ModuleName()+".rs"),
		content: source,
	}}
	if err := g.writeAll(files, result); err != nil {
		return nil, err
	}
	if err := g.commitIndex(index, result); err != nil {
		return nil, err
	}
	return result, nil
}

// GenerateResolver writes the GraphQL resolver stub for an entity name and
// registers it in the resolvers index. Only graphql servers have resolvers.
func (g *Generator) GenerateResolver(name string) (*Result, error) {
	if !g.isGraphQL() {
		return nil, fmt.Errorf("resolvers need server_type \"graphql\", project uses %q", g.opts.ServerType)
	}
	if err := dsl.ValidateEntityName(name); err != nil {
		return nil, err
	}
	entity := &dsl.Entity{Name: name}

	source, err := codegen.RenderResolver(entity.Name, entity.ModuleName())
	if err != nil {
		return nil, err
	}

	index, err := g.planIndex(g.opts.ResolversDir, modindex.Registration{Module: entity.ModuleName()})
	if err != nil {
		return nil, err
	}

	result := &Result{Entity: entity}
	files := []pendingFile{{
		path:    filepath.Join(g.opts.ResolversDir, entity.ModuleName()+".rs"),
		content: source,
	}}
	if err := g.writeAll(files, result); err != nil {
		return nil, err
	}
	if err := g.commitIndex(index, result); err != nil {
		return nil, err
	}
	return result, nil
}

// GenerateRoutes rebuilds the router from the modules registered in the
// handlers index. On graphql servers the schema file is rebuilt from the
// resolvers index as well once a resolver exists. The returned Result has
// no Entity.
func (g *Generator) GenerateRoutes() (*Result, error) {
	handlers, err := g.modules(g.opts.HandlersDir)
	if err != nil {
		return nil, err
	}

	source, err := codegen.RenderRoutes(handlers, g.isGraphQL())
	if err != nil {
		return nil, err
	}
	files := []pendingFile{{path: g.opts.RoutesFile, content: source}}

	if g.isGraphQL() {
		resolvers, err := g.modules(g.opts.ResolversDir)
		if err != nil {
			return nil, err
		}
		if len(resolvers) > 0 {
			schema, err := codegen.RenderSchema(resolvers)
			if err != nil {
				return nil, err
			}
			files = append(files, pendingFile{path: g.opts.SchemaFile, content: schema})
		}
	}

	g.logger.Debug("collected route modules", zap.Strings("handlers", handlers))

	result := &Result{}
	if err := g.writeAll(files, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (g *Generator) isGraphQL() bool {
	return g.opts.ServerType == "graphql"
}

func (g *Generator) modules(dir string) ([]string, error) {
	return modindex.Open(g.fs, filepath.Join(g.opts.Root, dir, IndexFile)).Modules()
}

// GenerateBatch generates each spec in order and stops at the first
// failure. Entities generated before the failure stay written and their
// results are returned alongside the error. A non-nil onStart is called
// before each entry.
func (g *Generator) GenerateBatch(specs []EntitySpec, withMigration bool, onStart func(i int, spec EntitySpec)) ([]*Result, error) {
	results := make([]*Result, 0, len(specs))
	for i, spec := range specs {
		if onStart != nil {
			onStart(i, spec)
		}
		result, err := g.GenerateEntity(spec, withMigration)
		if err != nil {
			return results, fmt.Errorf("entry %d (%s): %w", i+1, spec.Name, err)
		}
		results = append(results, result)
	}
	return results, nil
}

func (g *Generator) renderMigration(entity *dsl.Entity) ([]pendingFile, error) {
	dialect, err := codegen.ParseDialect(g.opts.Database)
	if err != nil {
		return nil, err
	}

	m, err := codegen.NewDDLGenerator(dialect).GenerateMigration(entity)
	if err != nil {
		return nil, err
	}

	version := g.opts.Now().UTC().Format("20060102150405")
	base := filepath.Join(g.opts.MigrationsDir, version+"_"+m.Name)
	return []pendingFile{
		{path: base + ".up.sql", content: m.Up},
		{path: base + ".down.sql", content: m.Down},
	}, nil
}

func (g *Generator) writeAll(files []pendingFile, result *Result) error {
	for _, f := range files {
		full := filepath.Join(g.opts.Root, f.path)
		if err := g.fs.MkdirAll(filepath.Dir(full), 0755); err != nil {
			return enterrors.NewFilesystem("create directory", filepath.Dir(full), err)
		}
		if err := afero.WriteFile(g.fs, full, []byte(f.content), 0644); err != nil {
			return enterrors.NewFilesystem("write", full, err)
		}
		g.logger.Info("wrote file", zap.String("path", f.path), zap.Int("bytes", len(f.content)))
		result.Files = append(result.Files, f.path)
	}
	return nil
}

// pendingIndex is a module index merged in memory
type pendingIndex struct {
	index   *modindex.Index
	module  string
	content string
	changed bool
}

// planIndex reads the index in dir and merges reg without writing
func (g *Generator) planIndex(dir string, reg modindex.Registration) (*pendingIndex, error) {
	idx := modindex.Open(g.fs, filepath.Join(g.opts.Root, dir, IndexFile))
	merged, changed, err := idx.Plan(reg)
	if err != nil {
		return nil, err
	}
	return &pendingIndex{index: idx, module: reg.Module, content: merged, changed: changed}, nil
}

func (g *Generator) commitIndex(p *pendingIndex, result *Result) error {
	if !p.changed {
		return nil
	}
	if err := g.fs.MkdirAll(filepath.Dir(p.index.Path()), 0755); err != nil {
		return enterrors.NewFilesystem("create directory", filepath.Dir(p.index.Path()), err)
	}
	if err := p.index.Write(p.content); err != nil {
		return err
	}
	g.logger.Info("registered module", zap.String("index", p.index.Path()), zap.String("module", p.module))
	result.Registered = true
	return nil
}
