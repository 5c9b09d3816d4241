package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nebula-cli/nebula/internal/entity/dsl"
)

func compile(t *testing.T, name, fields, relations string) *dsl.Entity {
	t.Helper()
	entity, err := dsl.NewCompiler(nil).Compile(name, fields, relations)
	require.NoError(t, err)
	return entity
}

func TestRenderEntityGolden(t *testing.T) {
	got, err := RenderEntity(compile(t, "Tag", "label:String|unique", ""))
	require.NoError(t, err)

	want := `use serde::{Deserialize, Serialize};
use async_graphql::{SimpleObject, InputObject};
use validator::Validate;
use chrono::{DateTime, Utc};

#[derive(Debug, Clone, Serialize, Deserialize, SimpleObject, Validate)]
pub struct Tag {
    #[serde(default)]
    pub id: i32,
    #[validate(custom(function = "validate_unique"))]
    pub label: String,
    pub created_at: Option<DateTime<Utc>>,
    pub updated_at: Option<DateTime<Utc>>,
}

#[derive(Debug, Clone, Deserialize, InputObject, Validate)]
pub struct TagInput {
    #[validate(custom(function = "validate_unique"))]
    pub label: String,
}

#[derive(Debug, Clone, Default, Deserialize, InputObject)]
pub struct UpdateTagInput {
    pub label: Option<String>,
}
`
	assert.Equal(t, want, got)
}

func TestRenderEntityFieldOrder(t *testing.T) {
	got, err := RenderEntity(compile(t, "Thing", "a:String,b:i32,c:bool", ""))
	require.NoError(t, err)

	a := strings.Index(got, "pub a: String,")
	b := strings.Index(got, "pub b: i32,")
	c := strings.Index(got, "pub c: bool,")
	require.True(t, a >= 0 && b >= 0 && c >= 0)
	assert.Less(t, a, b)
	assert.Less(t, b, c)
}

func TestRenderRulesCanonicalOrder(t *testing.T) {
	entity := compile(t, "User", "email:String|unique|email|required", "")

	attrs := RenderRules(entity.Fields[0].Rules)
	assert.Equal(t, []string{
		"#[validate(required)]",
		`#[validate(custom(function = "validate_unique"))]`,
		"#[validate(email)]",
	}, attrs)

	got, err := RenderEntity(entity)
	require.NoError(t, err)
	// once in the entity, once in the input variant
	assert.Equal(t, 2, strings.Count(got, "#[validate(email)]"))
	assert.Equal(t, 2, strings.Count(got, "#[validate(required)]"))
}

func TestRenderRulesAll(t *testing.T) {
	entity := compile(t, "Account",
		`site:String|pattern=^https?:// url max=100 min=1 maxLength=50 minLength=2 required unique email`, "")

	assert.Equal(t, []string{
		"#[validate(required)]",
		`#[validate(custom(function = "validate_unique"))]`,
		"#[validate(email)]",
		"#[validate(url)]",
		"#[validate(range(min = 1))]",
		"#[validate(range(max = 100))]",
		"#[validate(length(min = 2))]",
		"#[validate(length(max = 50))]",
		`#[validate(regex(path = "^https?://"))]`,
	}, RenderRules(entity.Fields[0].Rules))
}

func TestRenderEntityRelations(t *testing.T) {
	got, err := RenderEntity(compile(t, "Post", "title:String,published_at:DateTime",
		"author->belongsTo:User,hasOne->Cover,hasMany->Comment"))
	require.NoError(t, err)

	assert.Contains(t, got, "    pub published_at: DateTime<Utc>,\n")
	assert.Contains(t, got, "    pub author_id: i32,\n    pub author: Option<User>,\n")
	assert.Contains(t, got, "    pub cover: Option<Cover>,\n")
	assert.Contains(t, got, "    pub comment: Vec<Comment>,\n")
	assert.Contains(t, got, "    pub author_id: Option<i32>,\n")

	// relations follow the scalar fields
	assert.Less(t, strings.Index(got, "pub title"), strings.Index(got, "pub author_id"))
	// only the foreign key reaches the input variant
	input := got[strings.Index(got, "pub struct PostInput"):strings.Index(got, "pub struct UpdatePostInput")]
	assert.NotContains(t, input, "Option<User>")
	assert.NotContains(t, input, "Vec<Comment>")
	assert.Contains(t, input, "pub author_id: i32,")
}

func TestRenderEntityRelationNormalization(t *testing.T) {
	shorthand, err := RenderEntity(compile(t, "Post", "", "author->belongsTo:User"))
	require.NoError(t, err)
	embedded, err := RenderEntity(compile(t, "Post", "author:belongs_to:User", ""))
	require.NoError(t, err)

	assert.Equal(t, shorthand, embedded)
	assert.Contains(t, shorthand, "pub author_id: i32,")
	assert.Contains(t, shorthand, "pub author: Option<User>,")
}

func TestRenderEntityDeterministic(t *testing.T) {
	entity := compile(t, "User", "name:String|required min_length=3,tags:Vec<String>", "hasMany->Post")

	first, err := RenderEntity(entity)
	require.NoError(t, err)
	second, err := RenderEntity(compile(t, "User", "name:String|required min_length=3,tags:Vec<String>", "hasMany->Post"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderEntityEmpty(t *testing.T) {
	got, err := RenderEntity(compile(t, "Marker", "", ""))
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(got, "// No fields defined"))
	assert.Contains(t, got, "pub struct Marker {")
}

func TestRenderEntityUpdateKeepsOptional(t *testing.T) {
	got, err := RenderEntity(compile(t, "Profile", "bio:Option<String>", ""))
	require.NoError(t, err)

	update := got[strings.Index(got, "pub struct UpdateProfileInput"):]
	assert.Contains(t, update, "pub bio: Option<String>,")
	assert.NotContains(t, update, "Option<Option<String>>")
}
