// Package dsl compiles the one-line entity description language typed on the
// command line into an Entity model.
//
// A fields string is a comma separated list of fragments:
//
//	name:String|required minLength=3,email:String|unique|email,author:belongs_to:User
//
// A relations string uses the arrow shorthand:
//
//	author->belongsTo:User,hasMany->Comment
//
// Both relation spellings produce the same Relation value. Parsing is pure;
// nothing in this package touches the filesystem.
package dsl

import "strings"

// RelationKind is the structural kind of a relation
type RelationKind int

const (
	// HasOne renders as an optional reference to the target
	HasOne RelationKind = iota + 1
	// HasMany renders as an ordered collection of the target
	HasMany
	// BelongsTo renders as a target reference plus a foreign key column
	BelongsTo
)

// String returns the camelCase keyword for the kind
func (k RelationKind) String() string {
	switch k {
	case HasOne:
		return "hasOne"
	case HasMany:
		return "hasMany"
	case BelongsTo:
		return "belongsTo"
	default:
		return "unknown"
	}
}

// Relation is a link from the entity to another entity
type Relation struct {
	Kind   RelationKind
	Target string
	// Alias is the field name the relation is rendered under
	Alias string
	// Rules holds validation rules attached to an embedded relation field
	Rules Rules
}

// ForeignKey returns the companion key column name for belongs-to relations
func (r Relation) ForeignKey() string {
	return r.Alias + "_id"
}

// Field is one parsed field fragment. Exactly one of Type or Relation is set.
type Field struct {
	Name     string
	Type     string
	Rules    Rules
	Relation *Relation
}

// IsRelation reports whether the field's type slot held a relation
func (f Field) IsRelation() bool {
	return f.Relation != nil
}

// Rules is the compiled validation rule set of a field
type Rules struct {
	Required  bool
	Unique    bool
	Email     bool
	URL       bool
	Min       *string
	Max       *string
	MinLength *int
	MaxLength *int
	Pattern   *string
}

// IsZero reports whether no rule is set
func (r Rules) IsZero() bool {
	return !r.Required && !r.Unique && !r.Email && !r.URL &&
		r.Min == nil && r.Max == nil &&
		r.MinLength == nil && r.MaxLength == nil && r.Pattern == nil
}

// Entity is the assembled description of one entity
type Entity struct {
	Name string
	// Fields holds scalar fields in input order
	Fields []Field
	// Relations holds every relation in input order, embedded ones first
	Relations []Relation
}

// ModuleName returns the lowercase module name the entity is registered under
func (e *Entity) ModuleName() string {
	return strings.ToLower(e.Name)
}

// IsEmpty reports whether the entity has neither fields nor relations
func (e *Entity) IsEmpty() bool {
	return len(e.Fields) == 0 && len(e.Relations) == 0
}
