package dsl

import (
	"strings"

	enterrors "github.com/nebula-cli/nebula/internal/entity/errors"
)

// typeSlotKeywords are the relation prefixes accepted in a field's type slot
var typeSlotKeywords = map[string]RelationKind{
	"has_one":    HasOne,
	"has_many":   HasMany,
	"belongs_to": BelongsTo,
}

// relationKeywords are accepted on the left of `->` and before the target
// in the alias form. Underscore spellings are accepted too so that both
// syntaxes share one keyword set.
var relationKeywords = map[string]RelationKind{
	"hasOne":     HasOne,
	"hasMany":    HasMany,
	"belongsTo":  BelongsTo,
	"has_one":    HasOne,
	"has_many":   HasMany,
	"belongs_to": BelongsTo,
}

// ParseField parses one `name:Type|rules` fragment. A type slot starting with
// has_one:, has_many: or belongs_to: yields a relation field whose type is
// not checked against types.
func ParseField(fragment string, types *TypeSet) (Field, error) {
	raw := strings.TrimSpace(fragment)
	if raw == "" {
		return Field{}, enterrors.NewMalformedField(fragment, "empty fragment")
	}

	head, ruleSegment, _ := strings.Cut(raw, ruleSeparator)
	name, typ, ok := strings.Cut(head, ":")
	if !ok {
		return Field{}, enterrors.NewMalformedField(raw, "missing ':' between name and type")
	}
	name = strings.TrimSpace(name)
	typ = strings.TrimSpace(typ)

	if !isIdentifier(name) {
		return Field{}, enterrors.NewMalformedField(raw, "field name must be a non-empty identifier")
	}
	if typ == "" {
		return Field{}, enterrors.NewMalformedField(raw, "missing type")
	}

	tokens, open := ruleTokens(ruleSegment)
	if open != nil {
		return Field{}, enterrors.NewMalformedField(raw, open.reason())
	}
	rules, err := CompileRules(tokens)
	if err != nil {
		return Field{}, err
	}

	if kind, target, isRel := typeSlotRelation(typ); isRel {
		if err := validateTarget(raw, target); err != nil {
			return Field{}, err
		}
		return Field{
			Name:     name,
			Rules:    rules,
			Relation: &Relation{Kind: kind, Target: target, Alias: name, Rules: rules},
		}, nil
	}

	if err := types.Validate(typ); err != nil {
		return Field{}, err
	}

	return Field{Name: name, Type: typ, Rules: rules}, nil
}

// typeSlotRelation recognises `belongs_to:User` style type slots. A bare
// keyword with no target is still reported as a relation so the caller
// rejects it as malformed instead of as an unknown type.
func typeSlotRelation(typ string) (RelationKind, string, bool) {
	keyword, target, _ := strings.Cut(typ, ":")
	kind, ok := typeSlotKeywords[strings.TrimSpace(keyword)]
	if !ok {
		return 0, "", false
	}
	return kind, strings.TrimSpace(target), true
}

// ParseRelation parses an arrow shorthand fragment. Two layouts are accepted:
//
//	author->belongsTo:User   alias on the left, keyword:Target on the right
//	hasMany->Comment         keyword on the left, target on the right
//
// Without an explicit alias the lower-cased target is used.
func ParseRelation(fragment string) (Relation, error) {
	raw := strings.TrimSpace(fragment)

	left, right, ok := strings.Cut(raw, arrow)
	if !ok {
		return Relation{}, enterrors.NewMalformedRelation(raw, "missing '->'")
	}
	if strings.Contains(right, arrow) {
		return Relation{}, enterrors.NewMalformedRelation(raw, "expected exactly one '->'")
	}
	left = strings.TrimSpace(left)
	right = strings.TrimSpace(right)

	var alias, keyword, target string
	if kw, t, hasAlias := strings.Cut(right, ":"); hasAlias {
		alias, keyword, target = left, strings.TrimSpace(kw), strings.TrimSpace(t)
	} else {
		keyword, target = left, right
	}

	kind, ok := relationKeywords[keyword]
	if !ok {
		return Relation{}, enterrors.NewMalformedRelation(raw, "unknown relation type "+quote(keyword))
	}
	if err := validateTarget(raw, target); err != nil {
		return Relation{}, err
	}

	if alias == "" {
		alias = strings.ToLower(target)
	} else if !isIdentifier(alias) {
		return Relation{}, enterrors.NewMalformedRelation(raw, "alias must be an identifier")
	}

	return Relation{Kind: kind, Target: target, Alias: alias}, nil
}

func validateTarget(fragment, target string) error {
	if target == "" {
		return enterrors.NewMalformedRelation(fragment, "missing target entity")
	}
	if !isAlphanumeric(target) {
		return enterrors.NewMalformedRelation(fragment, "target entity must be alphanumeric")
	}
	return nil
}

// ValidateEntityName checks that name is non-empty ASCII alphanumeric
func ValidateEntityName(name string) error {
	if name == "" {
		return enterrors.NewInvalidEntityName(name, "name cannot be empty")
	}
	if !isAlphanumeric(name) {
		return enterrors.NewInvalidEntityName(name, "only ASCII letters and digits are allowed")
	}
	return nil
}

func isAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isASCIILetter(c) && !isASCIIDigit(c) {
			return false
		}
	}
	return true
}

// isIdentifier accepts [A-Za-z_][A-Za-z0-9_]*
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isASCIILetter(c), c == '_':
		case isASCIIDigit(c) && i > 0:
		default:
			return false
		}
	}
	return true
}

func isASCIILetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isASCIIDigit(c byte) bool  { return c >= '0' && c <= '9' }

func quote(s string) string { return "'" + s + "'" }
