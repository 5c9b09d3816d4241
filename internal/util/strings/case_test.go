package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"User":         "user",
		"BlogPost":     "blog_post",
		"HTTPRequest":  "http_request",
		"Post2Comment": "post2_comment",
		"already_done": "already_done",
		"":             "",
	}

	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, want, ToSnakeCase(input))
		})
	}
}
