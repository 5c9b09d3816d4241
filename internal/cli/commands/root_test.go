package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nebula-cli/nebula/internal/cli/config"
	enterrors "github.com/nebula-cli/nebula/internal/entity/errors"
)

// fakePrompter answers prompts from queues keyed by message
type fakePrompter struct {
	answers map[string]string
	asked   []string
}

func (p *fakePrompter) Input(message, defaultValue string, required bool) (string, error) {
	return p.answer(message, defaultValue)
}

func (p *fakePrompter) Select(message string, options []string, defaultValue string) (string, error) {
	return p.answer(message, defaultValue)
}

func (p *fakePrompter) answer(message, defaultValue string) (string, error) {
	p.asked = append(p.asked, message)
	if a, ok := p.answers[message]; ok {
		return a, nil
	}
	return defaultValue, nil
}

func testEnv(t *testing.T, wd string) (*Env, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(wd, 0755))
	return &Env{
		FS:       fs,
		WorkDir:  func() (string, error) { return wd, nil },
		Prompter: &fakePrompter{},
		Now:      func() time.Time { return time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC) },
		NoColor:  true,
	}, fs
}

func run(t *testing.T, env *Env, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(env)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--no-color"))
	err := cmd.Execute()
	return out.String(), err
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "nebula", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("no-color"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("json"))

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, expected := range []string{"version", "new", "generate", "completion"} {
		assert.True(t, names[expected], expected)
	}
}

func TestVersionCommand(t *testing.T) {
	Version = "1.0.0-test"
	GitCommit = "abc123"
	defer func() { Version, GitCommit = "dev", "unknown" }()

	env, _ := testEnv(t, "/work")
	out, err := run(t, env, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Nebula version: 1.0.0-test")
	assert.Contains(t, out, "Git commit: abc123")
	assert.Contains(t, out, "Go version: go")
}

func TestCompletionCommand(t *testing.T) {
	env, _ := testEnv(t, "/work")
	out, err := run(t, env, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "nebula")

	_, err = run(t, env, "completion", "tcsh")
	assert.Error(t, err)
}

func TestFormatError(t *testing.T) {
	env, _ := testEnv(t, "/work")

	out := formatError(env, enterrors.NewUnknownRule("requird", nil))
	assert.Contains(t, out, "Did you mean: required?")

	out = formatError(env, config.ErrNotProject)
	assert.Contains(t, out, "CONFIGURATION ERROR")

	out = formatError(env, errors.New("boom"))
	assert.Equal(t, "Error: boom\n", out)
}

func TestFormatErrorJSON(t *testing.T) {
	env, _ := testEnv(t, "/work")
	env.JSON = true

	out := formatError(env, enterrors.NewUnknownRule("requird", nil))
	var entity map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &entity))
	assert.Equal(t, string(enterrors.KindUnknownRule), entity["kind"])
	assert.Equal(t, "requird", entity["input"])
	assert.NotEmpty(t, entity["code"])

	out = formatError(env, fmt.Errorf("loading: %w", config.ErrNotProject))
	var plain map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &plain))
	assert.Equal(t, "error", plain["kind"])
	assert.Contains(t, plain["message"], "loading:")
}

func TestVerboseLogger(t *testing.T) {
	env, _ := testEnv(t, "/work")
	assert.NotNil(t, env.Logger())

	env = &Env{Verbose: true}
	assert.True(t, env.Logger().Core().Enabled(zap.DebugLevel))
}
