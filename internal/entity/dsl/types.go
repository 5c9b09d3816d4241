package dsl

import (
	enterrors "github.com/nebula-cli/nebula/internal/entity/errors"
)

// defaultTypeNames is the built-in scalar allow-list
var defaultTypeNames = []string{
	"String",
	"i32",
	"i64",
	"f32",
	"f64",
	"bool",
	"DateTime",
	"Vec<String>",
	"Option<String>",
	"u32",
	"u64",
	"usize",
}

// TypeSet is an ordered allow-list of scalar field types
type TypeSet struct {
	names []string
	index map[string]struct{}
}

// NewTypeSet creates a TypeSet from names, dropping duplicates
func NewTypeSet(names ...string) *TypeSet {
	s := &TypeSet{index: make(map[string]struct{}, len(names))}
	s.add(names...)
	return s
}

// DefaultTypes returns a fresh copy of the built-in allow-list
func DefaultTypes() *TypeSet {
	return NewTypeSet(defaultTypeNames...)
}

// With returns a copy of s extended with extra type names
func (s *TypeSet) With(extra ...string) *TypeSet {
	out := NewTypeSet(s.names...)
	out.add(extra...)
	return out
}

func (s *TypeSet) add(names ...string) {
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := s.index[n]; ok {
			continue
		}
		s.index[n] = struct{}{}
		s.names = append(s.names, n)
	}
}

// Contains reports whether typ is allowed
func (s *TypeSet) Contains(typ string) bool {
	_, ok := s.index[typ]
	return ok
}

// Names returns the allowed type names in declaration order
func (s *TypeSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Validate returns an invalid-scalar-type error enumerating the allow-list
// when typ is not allowed
func (s *TypeSet) Validate(typ string) error {
	if s.Contains(typ) {
		return nil
	}
	return enterrors.NewInvalidType(typ, s.names)
}
