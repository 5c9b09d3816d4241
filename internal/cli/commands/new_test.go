package commands

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nebula-cli/nebula/internal/cli/config"
)

func TestValidateProjectName(t *testing.T) {
	testCases := []struct {
		name        string
		projectName string
		errorMsg    string
	}{
		{name: "valid name", projectName: "my-project"},
		{name: "valid name with underscores", projectName: "my_project"},
		{name: "valid name alphanumeric", projectName: "myproject123"},
		{name: "empty string", projectName: "", errorMsg: "must be 1-100 characters"},
		{name: "whitespace only", projectName: "   ", errorMsg: "must be 1-100 characters"},
		{name: "too long", projectName: strings.Repeat("a", 101), errorMsg: "must be 1-100 characters"},
		{name: "contains slash", projectName: "my/project", errorMsg: "can only contain"},
		{name: "contains dot", projectName: "my.project", errorMsg: "can only contain"},
		{name: "path traversal attempt", projectName: "../malicious", errorMsg: "can only contain"},
		{name: "absolute path", projectName: "/usr/bin/malware", errorMsg: "cannot be an absolute path"},
		{name: "contains special chars", projectName: "my@project!", errorMsg: "can only contain"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateProjectName(tc.projectName)
			if tc.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errorMsg)
		})
	}
}

func TestNewNewCommand(t *testing.T) {
	cmd := NewNewCommand()

	assert.Equal(t, "new [project-name]", cmd.Use)
	for _, flag := range []string{"type", "database", "server", "interactive"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), flag)
	}
}

func TestNewServerProject(t *testing.T) {
	env, fs := testEnv(t, "/work")

	out, err := run(t, env, "new", "blog", "--database", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Created project: blog")
	assert.Contains(t, out, "database: sqlite")

	for _, f := range []string{
		"nebula.config.toml", "Cargo.toml", ".env", ".gitignore",
		"src/main.rs", "src/server.rs", "src/route.rs",
		"src/entities/mod.rs", "src/handlers/mod.rs",
	} {
		exists, err := afero.Exists(fs, "/work/blog/"+f)
		require.NoError(t, err)
		assert.True(t, exists, f)
	}

	cfg, err := config.Load(fs, "/work/blog")
	require.NoError(t, err)
	assert.Equal(t, "blog", cfg.Project.Name)
	assert.Equal(t, "server", cfg.Project.Type)
	assert.Equal(t, "sqlite", cfg.Project.Database)
	assert.Equal(t, "rest", cfg.Project.ServerType)
}

func TestNewThenGenerate(t *testing.T) {
	env, fs := testEnv(t, "/work")
	_, err := run(t, env, "new", "blog")
	require.NoError(t, err)

	env.WorkDir = func() (string, error) { return "/work/blog", nil }
	_, err = run(t, env, "generate", "entity", "User", "--fields", "name:String|required")
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, "/work/blog/src/entities/mod.rs")
	require.NoError(t, err)
	assert.Equal(t,
		"// Entity modules are registered here by `nebula generate entity`.\npub mod user;\npub use user::User;\n",
		string(data))
}

func TestNewFullProjectPaths(t *testing.T) {
	env, fs := testEnv(t, "/work")

	_, err := run(t, env, "new", "shop", "--type", "full", "--server", "graphql")
	require.NoError(t, err)

	cfg, err := config.Load(fs, "/work/shop")
	require.NoError(t, err)
	assert.Equal(t, "api/src/entities", cfg.Paths.Entities)
	assert.Equal(t, "api/migrations", cfg.Paths.Migrations)
	assert.Equal(t, "api/src/resolvers", cfg.Paths.Resolvers)
	assert.Equal(t, "api/src/route.rs", cfg.Paths.Routes)
	assert.Equal(t, "api/src/graphql.rs", cfg.Paths.Schema)

	exists, err := afero.Exists(fs, "/work/shop/api/src/resolvers/mod.rs")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = afero.Exists(fs, "/work/shop/api/src/graphql.rs")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestNewInteractive(t *testing.T) {
	env, fs := testEnv(t, "/work")
	prompter := &fakePrompter{answers: map[string]string{
		"Project name:": "notes",
		"Project type:": "server",
		"Database:":     "mysql",
		"Server type:":  "graphql",
	}}
	env.Prompter = prompter

	_, err := run(t, env, "new", "-i", "--server", "rest")
	require.NoError(t, err)
	assert.Equal(t, []string{"Project name:", "Project type:", "Database:"}, prompter.asked)

	cfg, err := config.Load(fs, "/work/notes")
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Project.Database)
	assert.Equal(t, "rest", cfg.Project.ServerType)

	env2, _ := testEnv(t, "/work")
	clientPrompter := &fakePrompter{answers: map[string]string{"Project type:": "client"}}
	env2.Prompter = clientPrompter
	_, err = run(t, env2, "new", "site", "-i")
	require.NoError(t, err)
	assert.Equal(t, []string{"Project type:"}, clientPrompter.asked)
}

func TestNewErrors(t *testing.T) {
	env, fs := testEnv(t, "/work")
	require.NoError(t, fs.MkdirAll("/work/taken", 0755))

	_, err := run(t, env, "new", "taken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory taken already exists")

	_, err = run(t, env, "new", "../escape")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can only contain")

	_, err = run(t, env, "new", "app", "--type", "desktop")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected one of: client, full, server")
	assert.NotContains(t, err.Error(), "did you mean")

	_, err = run(t, env, "new", "app", "--type", "sever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `(did you mean "server"?)`)

	_, err = run(t, env, "new", "app", "--database", "oracle")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, err = run(t, env, "new")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project name required")

	exists, err := afero.Exists(fs, "/work/app")
	require.NoError(t, err)
	assert.False(t, exists)
}
