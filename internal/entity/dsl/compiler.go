package dsl

import (
	"fmt"
	"strings"

	enterrors "github.com/nebula-cli/nebula/internal/entity/errors"
)

// Compiler assembles entity descriptions against a scalar type allow-list
type Compiler struct {
	types *TypeSet
}

// NewCompiler creates a Compiler. A nil types uses DefaultTypes.
func NewCompiler(types *TypeSet) *Compiler {
	if types == nil {
		types = DefaultTypes()
	}
	return &Compiler{types: types}
}

// Types returns the compiler's allow-list
func (c *Compiler) Types() *TypeSet {
	return c.types
}

// Compile validates name, then parses the fields and relations lists into an
// Entity. The first failing fragment aborts compilation and no partial
// entity is returned.
//
// Relation fragments may appear in either list. Relations from the fields
// list come first in Entity.Relations, followed by the relations list, each
// in input order.
//
// Every generated struct member must be unique: field names, relation
// aliases, belongs-to foreign keys and the id and timestamp members.
func (c *Compiler) Compile(name, fields, relations string) (*Entity, error) {
	if err := ValidateEntityName(name); err != nil {
		return nil, err
	}

	fieldFrags, err := Lex(fields)
	if err != nil {
		return nil, err
	}
	relationFrags, err := Lex(relations)
	if err != nil {
		return nil, err
	}

	entity := &Entity{Name: name}
	members := newMemberSet()

	for _, frag := range fieldFrags {
		if frag.Kind == FragmentRelation {
			rel, err := ParseRelation(frag.Text)
			if err != nil {
				return nil, err
			}
			if reason := members.claimRelation(rel, frag.Text); reason != "" {
				return nil, enterrors.NewMalformedField(frag.Text, reason)
			}
			entity.Relations = append(entity.Relations, rel)
			continue
		}

		field, err := ParseField(frag.Text, c.types)
		if err != nil {
			return nil, err
		}
		if field.IsRelation() {
			if reason := members.claimRelation(*field.Relation, frag.Text); reason != "" {
				return nil, enterrors.NewMalformedField(frag.Text, reason)
			}
			entity.Relations = append(entity.Relations, *field.Relation)
			continue
		}
		if reason := members.claim(field.Name, frag.Text); reason != "" {
			return nil, enterrors.NewMalformedField(frag.Text, reason)
		}
		entity.Fields = append(entity.Fields, field)
	}

	for _, frag := range relationFrags {
		rel, err := c.parseRelationFragment(frag)
		if err != nil {
			return nil, err
		}
		if reason := members.claimRelation(rel, frag.Text); reason != "" {
			return nil, enterrors.NewMalformedRelation(frag.Text, reason)
		}
		entity.Relations = append(entity.Relations, rel)
	}

	return entity, nil
}

// parseRelationFragment accepts both relation spellings in the relations list
func (c *Compiler) parseRelationFragment(frag Fragment) (Relation, error) {
	if frag.Kind == FragmentRelation {
		return ParseRelation(frag.Text)
	}
	if frag.Text == "" {
		return Relation{}, enterrors.NewMalformedRelation(frag.Text, "empty fragment")
	}

	field, err := ParseField(frag.Text, c.types)
	if err != nil {
		return Relation{}, err
	}
	if !field.IsRelation() {
		return Relation{}, enterrors.NewMalformedRelation(frag.Text, "expected a relation, got scalar field")
	}
	return *field.Relation, nil
}

// generatedMembers are rendered into every entity struct and table
var generatedMembers = []string{"id", "created_at", "updated_at"}

// memberSet maps a lower-cased member name to the fragment declaring it.
// Generated members map to the empty string.
type memberSet map[string]string

func newMemberSet() memberSet {
	m := make(memberSet)
	for _, name := range generatedMembers {
		m[name] = ""
	}
	return m
}

// claim records name for fragment and returns a reason when it is taken.
// Column names compare case-insensitively.
func (m memberSet) claim(name, fragment string) string {
	key := strings.ToLower(name)
	owner, taken := m[key]
	if !taken {
		m[key] = fragment
		return ""
	}
	if owner == "" {
		return fmt.Sprintf("%s is generated for every entity", quote(name))
	}
	return fmt.Sprintf("%s is already declared by %s", quote(name), quote(owner))
}

func (m memberSet) claimRelation(rel Relation, fragment string) string {
	if reason := m.claim(rel.Alias, fragment); reason != "" {
		return reason
	}
	if rel.Kind == BelongsTo {
		return m.claim(rel.ForeignKey(), fragment)
	}
	return ""
}
