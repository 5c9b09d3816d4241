package dsl

import (
	"strings"
	"unicode"

	enterrors "github.com/nebula-cli/nebula/internal/entity/errors"
)

// FragmentKind tags a top-level list fragment
type FragmentKind int

const (
	// FragmentField is a `name:Type|rules` fragment
	FragmentField FragmentKind = iota
	// FragmentRelation is an `alias->keyword:Target` fragment
	FragmentRelation
)

const (
	arrow         = "->"
	ruleSeparator = "|"
)

// Fragment is one trimmed, classified unit of a definition list
type Fragment struct {
	Kind FragmentKind
	Text string
}

// Lex splits a comma separated definition list into classified fragments.
// Commas nested in (), [], {} or <> do not split, so regex patterns such
// as `pattern=^a{2,3}$` survive. A bracket left open is a malformed-field
// error carrying the fragment it was opened in. An empty or blank list yields
// no fragments; an empty fragment inside a non-empty list is kept as-is so
// the parser can reject it.
func Lex(list string) ([]Fragment, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}

	parts, open := splitTopLevel(list, func(r rune) bool { return r == ',' }, true)
	if open != nil {
		return nil, enterrors.NewMalformedField(open.piece, open.reason())
	}
	fragments := make([]Fragment, 0, len(parts))
	for _, p := range parts {
		kind := FragmentField
		head, _, _ := strings.Cut(p, ruleSeparator)
		if strings.Contains(head, arrow) {
			kind = FragmentRelation
		}
		fragments = append(fragments, Fragment{Kind: kind, Text: p})
	}
	return fragments, nil
}

// SplitRule splits a validator token such as `min_length=3` into its rule
// name and value. hasValue is false when the token carries no `=`.
func SplitRule(token string) (name, value string, hasValue bool) {
	name, value, hasValue = strings.Cut(strings.TrimSpace(token), "=")
	return strings.TrimSpace(name), strings.TrimSpace(value), hasValue
}

// ruleTokens splits the validator segment of a field on `|` and whitespace
func ruleTokens(segment string) ([]string, *unclosedBracket) {
	return splitTopLevel(segment, func(r rune) bool {
		return r == '|' || unicode.IsSpace(r)
	}, false)
}

// unclosedBracket records a bracket left open at the end of a split
type unclosedBracket struct {
	piece  string
	opener rune
}

func (u *unclosedBracket) reason() string {
	return "unclosed '" + string(u.opener) + "'"
}

// splitTopLevel splits s on runes matching sep that are not nested inside
// brackets. Pieces are trimmed. With keepEmpty unset, empty pieces are dropped.
// Unmatched closers are ignored; an opener still unmatched at the end of s is
// reported with the piece it was opened in.
func splitTopLevel(s string, sep func(rune) bool, keepEmpty bool) ([]string, *unclosedBracket) {
	var out []string
	var buf strings.Builder
	depth := 0
	var opener rune

	flush := func() {
		piece := strings.TrimSpace(buf.String())
		buf.Reset()
		if piece != "" || keepEmpty {
			out = append(out, piece)
		}
	}

	for _, r := range s {
		switch r {
		case '(', '[', '{', '<':
			if depth == 0 {
				opener = r
			}
			depth++
		case ')', ']', '}', '>':
			if depth > 0 {
				depth--
			}
		}
		if depth == 0 && sep(r) {
			flush()
			continue
		}
		buf.WriteRune(r)
	}
	if depth > 0 {
		return nil, &unclosedBracket{piece: strings.TrimSpace(buf.String()), opener: opener}
	}
	flush()
	return out, nil
}
