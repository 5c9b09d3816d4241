package dsl

import (
	"strconv"
	"strings"

	enterrors "github.com/nebula-cli/nebula/internal/entity/errors"
)

type ruleSetter func(r *Rules, name, value string) error

// ruleTable maps every accepted rule spelling to its setter
var ruleTable = map[string]ruleSetter{
	"required":   flagRule(func(r *Rules) { r.Required = true }),
	"unique":     flagRule(func(r *Rules) { r.Unique = true }),
	"email":      flagRule(func(r *Rules) { r.Email = true }),
	"url":        flagRule(func(r *Rules) { r.URL = true }),
	"min":        boundRule(func(r *Rules, v string) { r.Min = &v }),
	"max":        boundRule(func(r *Rules, v string) { r.Max = &v }),
	"pattern":    boundRule(func(r *Rules, v string) { r.Pattern = &v }),
	"minLength":  lengthRule(func(r *Rules, n int) { r.MinLength = &n }),
	"min_length": lengthRule(func(r *Rules, n int) { r.MinLength = &n }),
	"maxLength":  lengthRule(func(r *Rules, n int) { r.MaxLength = &n }),
	"max_length": lengthRule(func(r *Rules, n int) { r.MaxLength = &n }),
}

// KnownRules lists the accepted rule names in canonical order
var KnownRules = []string{
	"required", "unique", "email", "url",
	"min", "max", "minLength", "maxLength", "pattern",
}

// flag rules ignore any attached value
func flagRule(set func(*Rules)) ruleSetter {
	return func(r *Rules, _, _ string) error {
		set(r)
		return nil
	}
}

func boundRule(set func(*Rules, string)) ruleSetter {
	return func(r *Rules, _, value string) error {
		set(r, value)
		return nil
	}
}

func lengthRule(set func(*Rules, int)) ruleSetter {
	return func(r *Rules, name, value string) error {
		n, err := strconv.ParseUint(value, 10, 31)
		if err != nil {
			return enterrors.NewInvalidNumber(name, value).WithCause(err)
		}
		set(r, int(n))
		return nil
	}
}

// CompileRules turns raw validator tokens into a rule set. Unknown and empty
// rule names are rejected. Later tokens overwrite earlier values of the same
// rule.
func CompileRules(tokens []string) (Rules, error) {
	var rules Rules
	for _, token := range tokens {
		name, value, hasValue := SplitRule(token)
		if name == "" {
			return Rules{}, enterrors.NewUnknownRule(strings.TrimSpace(token), KnownRules).
				WithSuggestion("Rule names go before '=', as in minLength=3")
		}

		set, ok := ruleTable[name]
		if !ok {
			return Rules{}, enterrors.NewUnknownRule(name, KnownRules)
		}
		if needsValue(name) && (!hasValue || value == "") {
			return Rules{}, enterrors.NewMissingRuleValue(name)
		}
		if err := set(&rules, name, value); err != nil {
			return Rules{}, err
		}
	}
	return rules, nil
}

func needsValue(name string) bool {
	switch name {
	case "required", "unique", "email", "url":
		return false
	}
	return true
}
