package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderResolver(t *testing.T) {
	got, err := RenderResolver("BlogPost", "blogpost")
	require.NoError(t, err)

	assert.Contains(t, got, "use crate::entities::blogpost::{BlogPost, BlogPostInput, UpdateBlogPostInput};")
	assert.Contains(t, got, "async fn blog_posts(&self) -> Vec<BlogPost> {")
	assert.Contains(t, got, "async fn blog_post(&self, id: i32) -> Option<BlogPost> {")
	assert.Contains(t, got, "async fn create_blog_post(&self, input: BlogPostInput) -> Result<bool> {")
	assert.Contains(t, got, "async fn update_blog_post(&self, id: i32, input: UpdateBlogPostInput) -> bool {")
}
