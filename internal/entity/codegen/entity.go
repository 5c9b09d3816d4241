// Package codegen renders compiled entities into generated source files:
// the Rust entity module, its axum handler stub and SQL migrations.
package codegen

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/nebula-cli/nebula/internal/entity/dsl"
)

const (
	indent          = "    "
	idType          = "i32"
	noFieldsComment = indent + "// No fields defined"
)

var entityTemplate = template.Must(template.New("entity").Parse(`use serde::{Deserialize, Serialize};
use async_graphql::{SimpleObject, InputObject};
use validator::Validate;
use chrono::{DateTime, Utc};

#[derive(Debug, Clone, Serialize, Deserialize, SimpleObject, Validate)]
pub struct {{.Name}} {
    #[serde(default)]
    pub id: i32,
{{.Entity}}
    pub created_at: Option<DateTime<Utc>>,
    pub updated_at: Option<DateTime<Utc>>,
}

#[derive(Debug, Clone, Deserialize, InputObject, Validate)]
pub struct {{.Name}}Input {
{{.Input}}
}

#[derive(Debug, Clone, Default, Deserialize, InputObject)]
pub struct Update{{.Name}}Input {
{{.Update}}
}
`))

type entityBlocks struct {
	Name   string
	Entity string
	Input  string
	Update string
}

// RenderEntity renders the Rust module for e. Output depends only on e, so
// identical input renders byte-identical source.
func RenderEntity(e *dsl.Entity) (string, error) {
	blocks := entityBlocks{
		Name:   e.Name,
		Entity: orPlaceholder(entityLines(e)),
		Input:  orPlaceholder(inputLines(e)),
		Update: orPlaceholder(updateLines(e)),
	}

	var buf bytes.Buffer
	if err := entityTemplate.Execute(&buf, blocks); err != nil {
		return "", fmt.Errorf("render entity %s: %w", e.Name, err)
	}
	return buf.String(), nil
}

// RenderRules renders validation attributes in canonical order: required,
// unique, email, url, range min, range max, length min, length max, pattern.
func RenderRules(r dsl.Rules) []string {
	var attrs []string
	if r.Required {
		attrs = append(attrs, "#[validate(required)]")
	}
	if r.Unique {
		attrs = append(attrs, `#[validate(custom(function = "validate_unique"))]`)
	}
	if r.Email {
		attrs = append(attrs, "#[validate(email)]")
	}
	if r.URL {
		attrs = append(attrs, "#[validate(url)]")
	}
	if r.Min != nil {
		attrs = append(attrs, fmt.Sprintf("#[validate(range(min = %s))]", *r.Min))
	}
	if r.Max != nil {
		attrs = append(attrs, fmt.Sprintf("#[validate(range(max = %s))]", *r.Max))
	}
	if r.MinLength != nil {
		attrs = append(attrs, fmt.Sprintf("#[validate(length(min = %d))]", *r.MinLength))
	}
	if r.MaxLength != nil {
		attrs = append(attrs, fmt.Sprintf("#[validate(length(max = %d))]", *r.MaxLength))
	}
	if r.Pattern != nil {
		attrs = append(attrs, fmt.Sprintf("#[validate(regex(path = %s))]", strconv.Quote(*r.Pattern)))
	}
	return attrs
}

// RustType maps a declared scalar type to the type written in the struct
func RustType(declared string) string {
	if declared == "DateTime" {
		return "DateTime<Utc>"
	}
	return declared
}

// entityLines renders fields then relations for the main struct
func entityLines(e *dsl.Entity) []string {
	var lines []string
	for _, f := range e.Fields {
		lines = append(lines, annotated(f.Rules, declaration(f.Name, RustType(f.Type)))...)
	}
	for _, r := range e.Relations {
		lines = append(lines, relationLines(r)...)
	}
	return lines
}

func relationLines(r dsl.Relation) []string {
	switch r.Kind {
	case dsl.HasOne:
		return annotated(r.Rules, declaration(r.Alias, "Option<"+r.Target+">"))
	case dsl.HasMany:
		return annotated(r.Rules, declaration(r.Alias, "Vec<"+r.Target+">"))
	case dsl.BelongsTo:
		lines := annotated(r.Rules, declaration(r.ForeignKey(), idType))
		return append(lines, declaration(r.Alias, "Option<"+r.Target+">"))
	}
	return nil
}

// inputLines renders the create payload: scalar fields with their rules and
// the foreign keys of belongs-to relations
func inputLines(e *dsl.Entity) []string {
	var lines []string
	for _, f := range e.Fields {
		lines = append(lines, annotated(f.Rules, declaration(f.Name, RustType(f.Type)))...)
	}
	for _, r := range e.Relations {
		if r.Kind == dsl.BelongsTo {
			lines = append(lines, annotated(r.Rules, declaration(r.ForeignKey(), idType))...)
		}
	}
	return lines
}

// updateLines renders the partial update payload without validation
func updateLines(e *dsl.Entity) []string {
	var lines []string
	for _, f := range e.Fields {
		lines = append(lines, declaration(f.Name, optional(RustType(f.Type))))
	}
	for _, r := range e.Relations {
		if r.Kind == dsl.BelongsTo {
			lines = append(lines, declaration(r.ForeignKey(), optional(idType)))
		}
	}
	return lines
}

func annotated(rules dsl.Rules, decl string) []string {
	attrs := RenderRules(rules)
	lines := make([]string, 0, len(attrs)+1)
	for _, a := range attrs {
		lines = append(lines, indent+a)
	}
	return append(lines, decl)
}

func declaration(name, typ string) string {
	return fmt.Sprintf("%spub %s: %s,", indent, name, typ)
}

func optional(typ string) string {
	if strings.HasPrefix(typ, "Option<") {
		return typ
	}
	return "Option<" + typ + ">"
}

func orPlaceholder(lines []string) string {
	if len(lines) == 0 {
		return noFieldsComment
	}
	return strings.Join(lines, "\n")
}
