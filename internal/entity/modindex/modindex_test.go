package modindex

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enterrors "github.com/nebula-cli/nebula/internal/entity/errors"
)

func TestMerge(t *testing.T) {
	reg := Registration{Module: "user", Export: "User"}

	tests := []struct {
		name    string
		content string
		want    string
		changed bool
	}{
		{"empty index", "", "pub mod user;\npub use user::User;\n", true},
		{"appends after newline", "pub mod post;\n", "pub mod post;\npub mod user;\npub use user::User;\n", true},
		{"adds separator", "pub mod post;", "pub mod post;\npub mod user;\npub use user::User;\n", true},
		{"already present", "pub mod user;\npub use user::User;\n", "pub mod user;\npub use user::User;\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := Merge(tt.content, reg)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.changed, changed)
		})
	}
}

func TestRegistrationWithoutExport(t *testing.T) {
	assert.Equal(t, "pub mod post;\n", Registration{Module: "post"}.Lines())
}

func register(t *testing.T, idx *Index, reg Registration) bool {
	t.Helper()
	merged, changed, err := idx.Plan(reg)
	require.NoError(t, err)
	if changed {
		require.NoError(t, idx.Write(merged))
	}
	return changed
}

func TestIndexPlanIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("src/entities", 0755))
	idx := Open(fs, "src/entities/mod.rs")

	assert.True(t, register(t, idx, Registration{Module: "user", Export: "User"}))
	assert.False(t, register(t, idx, Registration{Module: "user", Export: "User"}))
	assert.True(t, register(t, idx, Registration{Module: "post", Export: "Post"}))

	content, err := idx.Read()
	require.NoError(t, err)
	assert.Equal(t, "pub mod user;\npub use user::User;\npub mod post;\npub use post::Post;\n", content)

	modules, err := idx.Modules()
	require.NoError(t, err)
	assert.Equal(t, []string{"user", "post"}, modules)
}

func TestIndexPlanDoesNotWrite(t *testing.T) {
	fs := afero.NewMemMapFs()
	idx := Open(fs, "mod.rs")

	merged, changed, err := idx.Plan(Registration{Module: "tag"})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "pub mod tag;\n", merged)

	exists, err := afero.Exists(fs, "mod.rs")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestIndexModulesSkipsComments(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "mod.rs",
		[]byte("// Handler modules are registered here.\npub mod user;\n  pub mod post ;\npub use user::User;\n"), 0644))

	modules, err := Open(fs, "mod.rs").Modules()
	require.NoError(t, err)
	assert.Equal(t, []string{"user", "post"}, modules)
}

func TestIndexReadMissing(t *testing.T) {
	content, err := Open(afero.NewMemMapFs(), "nope/mod.rs").Read()
	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestIndexWriteFailure(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())

	err := Open(fs, "src/entities/mod.rs").Write("pub mod user;\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, enterrors.ErrFilesystem)
}
