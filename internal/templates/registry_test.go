package templates

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTemplate(name string) *Template {
	return &Template{
		Name:    name,
		Version: "1.0.0",
		Files:   []*TemplateFile{{TargetPath: "test.txt", Content: "test"}},
	}
}

func TestRegistryRegister(t *testing.T) {
	registry := NewRegistry()

	require.NoError(t, registry.Register(testTemplate("test-template")))
	assert.Error(t, registry.Register(testTemplate("test-template")), "duplicate template")
	assert.Error(t, registry.Register(&Template{Name: "invalid"}), "invalid template")
}

func TestRegistryGet(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(testTemplate("test-template")))

	got, err := registry.Get("test-template")
	require.NoError(t, err)
	assert.Equal(t, "test-template", got.Name)
	assert.True(t, registry.Exists("test-template"))

	_, err = registry.Get("non-existent")
	assert.Error(t, err)
	assert.False(t, registry.Exists("non-existent"))
}

func TestRegistryListSorted(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"template3", "template1", "template2"} {
		require.NoError(t, registry.Register(testTemplate(name)))
	}

	assert.Equal(t, []string{"template1", "template2", "template3"}, registry.Names())
}

func TestBuiltin(t *testing.T) {
	registry, err := Builtin()
	require.NoError(t, err)
	assert.Equal(t, []string{"client", "full", "server"}, registry.Names())
}

func executeBuiltin(t *testing.T, name string, vars map[string]string) (afero.Fs, []string) {
	t.Helper()
	registry, err := Builtin()
	require.NoError(t, err)
	tmpl, err := registry.Get(name)
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	written, err := NewEngine(fs).Execute(tmpl, &TemplateContext{ProjectName: "BlogApi", Variables: vars}, "/blog")
	require.NoError(t, err)
	return fs, written
}

func read(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func TestServerTemplate(t *testing.T) {
	fs, written := executeBuiltin(t, "server", NewServerTemplate().Defaults())

	assert.ElementsMatch(t, []string{
		"Cargo.toml",
		".env",
		"src/main.rs",
		"src/server.rs",
		"src/route.rs",
		"src/entities/mod.rs",
		"src/handlers/mod.rs",
		"migrations/.gitkeep",
		".gitignore",
		"README.md",
	}, written)

	assert.Contains(t, read(t, fs, "/blog/Cargo.toml"), `name = "blog_api"`)
	env := read(t, fs, "/blog/.env")
	assert.Contains(t, env, "DB_PORT=5432")
	assert.Contains(t, env, "DB_NAME=blog_api")

	main := read(t, fs, "/blog/src/main.rs")
	assert.Contains(t, main, "mod entities;")
	assert.NotContains(t, main, "mod graphql;")
}

func TestServerTemplateGraphQLSqlite(t *testing.T) {
	fs, written := executeBuiltin(t, "server", map[string]string{
		VarDatabase:   "sqlite",
		VarServerType: "graphql",
	})

	assert.Contains(t, written, "src/graphql.rs")
	assert.Contains(t, written, "src/resolvers/mod.rs")
	main := read(t, fs, "/blog/src/main.rs")
	assert.Contains(t, main, "mod graphql;")
	assert.Contains(t, main, "mod resolvers;")

	env := read(t, fs, "/blog/.env")
	assert.Contains(t, env, "DATABASE_URL=sqlite://blog_api.db")
	assert.NotContains(t, env, "DB_HOST")
}

func TestFullTemplate(t *testing.T) {
	fs, written := executeBuiltin(t, "full", NewFullTemplate().Defaults())

	assert.Contains(t, written, "api/Cargo.toml")
	assert.Contains(t, written, "api/src/entities/mod.rs")
	assert.Contains(t, written, "web/package.json")
	assert.Contains(t, written, "README.md")
	assert.NotContains(t, written, "api/README.md")
	assert.Contains(t, read(t, fs, "/blog/web/public/index.html"), "<title>BlogApi</title>")
	assert.Equal(t, "api", NewFullTemplate().SourceRoot)
}

func TestClientTemplate(t *testing.T) {
	fs, written := executeBuiltin(t, "client", nil)

	assert.ElementsMatch(t, []string{
		"package.json",
		"public/index.html",
		"src/main.js",
		".gitignore",
		"README.md",
	}, written)
	assert.Contains(t, read(t, fs, "/blog/package.json"), `"name": "blog_api-web"`)
}
