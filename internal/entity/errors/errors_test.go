package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodeUniqueness(t *testing.T) {
	seen := make(map[ErrorCode]Kind)
	for kind, code := range kindCodes {
		if prev, exists := seen[code]; exists {
			t.Errorf("duplicate error code %s for %s and %s", code, prev, kind)
		}
		seen[code] = kind
	}
}

func TestErrorsIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("generate User: %w", NewMalformedField("name", "missing ':'"))

	assert.ErrorIs(t, err, ErrMalformedField)
	assert.NotErrorIs(t, err, ErrMalformedRelation)
	assert.Equal(t, KindMalformedField, KindOf(err))
	assert.Equal(t, Kind(""), KindOf(stderrors.New("plain")))
}

func TestErrorMessageEmbedsInput(t *testing.T) {
	err := NewMissingRuleValue("minLength")
	assert.Equal(t, "missing-rule-value: minLength requires a value", err.Error())

	err = NewInvalidNumber("minLength", "abc")
	assert.Contains(t, err.Error(), "abc")
	assert.Equal(t, ErrorCode("ENT103"), err.Code())
}

func TestFilesystemUnwrap(t *testing.T) {
	err := NewFilesystem("write", "src/entities/user.rs", os.ErrPermission)

	assert.ErrorIs(t, err, os.ErrPermission)
	assert.ErrorIs(t, err, ErrFilesystem)
	assert.Contains(t, err.Error(), "src/entities/user.rs")
}

func TestToJSON(t *testing.T) {
	out, err := NewInvalidType("Nope", []string{"String", "i32"}).ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "ENT201", decoded["code"])
	assert.Equal(t, "invalid-scalar-type", decoded["kind"])
	assert.Equal(t, "Nope", decoded["input"])
}
