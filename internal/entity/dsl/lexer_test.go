package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enterrors "github.com/nebula-cli/nebula/internal/entity/errors"
)

func TestLex(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Fragment
	}{
		{
			name:  "empty list",
			input: "",
			want:  nil,
		},
		{
			name:  "blank list",
			input: "   ",
			want:  nil,
		},
		{
			name:  "fields keep order",
			input: "a:String, b:i32 ,c:bool",
			want: []Fragment{
				{Kind: FragmentField, Text: "a:String"},
				{Kind: FragmentField, Text: "b:i32"},
				{Kind: FragmentField, Text: "c:bool"},
			},
		},
		{
			name:  "relation classified",
			input: "name:String,author->belongsTo:User",
			want: []Fragment{
				{Kind: FragmentField, Text: "name:String"},
				{Kind: FragmentRelation, Text: "author->belongsTo:User"},
			},
		},
		{
			name:  "arrow inside a rule value is not a relation",
			input: "name:String|pattern=a->b",
			want: []Fragment{
				{Kind: FragmentField, Text: "name:String|pattern=a->b"},
			},
		},
		{
			name:  "nested commas do not split",
			input: "code:String|pattern=^[A-Z]{2,3}$,n:i32",
			want: []Fragment{
				{Kind: FragmentField, Text: "code:String|pattern=^[A-Z]{2,3}$"},
				{Kind: FragmentField, Text: "n:i32"},
			},
		},
		{
			name:  "empty fragment kept",
			input: "a:String,,b:i32",
			want: []Fragment{
				{Kind: FragmentField, Text: "a:String"},
				{Kind: FragmentField, Text: ""},
				{Kind: FragmentField, Text: "b:i32"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Lex(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLexUnclosedBracket(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		opener  string
		holding string
	}{
		{"pattern swallowing later fields", "code:String|pattern=<[a-z],age:i32", "'<'", "code:String|pattern=<[a-z],age:i32"},
		{"unclosed generic in last field", "a:String,tags:Vec<String", "'<'", "tags:Vec<String"},
		{"unclosed group", "slug:String|pattern=(a|b", "'('", "slug:String|pattern=(a|b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fragments, err := Lex(tt.input)
			require.Error(t, err)
			assert.Nil(t, fragments)

			var e *enterrors.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, enterrors.KindMalformedField, e.Kind)
			assert.Equal(t, tt.holding, e.Input)
			assert.Contains(t, e.Message, "unclosed "+tt.opener)
		})
	}
}

func TestLexIgnoresUnmatchedCloser(t *testing.T) {
	got, err := Lex("a:String|pattern=x>y,b:i32")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSplitRule(t *testing.T) {
	tests := []struct {
		token    string
		name     string
		value    string
		hasValue bool
	}{
		{"required", "required", "", false},
		{"min_length=3", "min_length", "3", true},
		{" max = 10 ", "max", "10", true},
		{"pattern=a=b", "pattern", "a=b", true},
		{"min=", "min", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			name, value, hasValue := SplitRule(tt.token)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.value, value)
			assert.Equal(t, tt.hasValue, hasValue)
		})
	}
}

func TestRuleTokens(t *testing.T) {
	tests := []struct {
		segment string
		want    []string
	}{
		{"required|email|unique", []string{"required", "email", "unique"}},
		{"required  minLength=3", []string{"required", "minLength=3"}},
		{"required | pattern=^[a|b]$", []string{"required", "pattern=^[a|b]$"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.segment, func(t *testing.T) {
			got, open := ruleTokens(tt.segment)
			assert.Nil(t, open)
			assert.Equal(t, tt.want, got)
		})
	}

	_, open := ruleTokens("pattern=[a-z")
	require.NotNil(t, open)
	assert.Equal(t, "pattern=[a-z", open.piece)
}
