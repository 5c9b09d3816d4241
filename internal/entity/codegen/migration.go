package codegen

import (
	"fmt"
	"strings"

	"github.com/nebula-cli/nebula/internal/entity/dsl"
)

// Migration is the rendered up/down pair for one entity
type Migration struct {
	// Name is the migration name used in file names, e.g. create_posts
	Name string
	Up   string
	Down string
}

// DDLGenerator renders CREATE/DROP TABLE migrations from compiled entities
type DDLGenerator struct {
	typeMapper *TypeMapper
}

// NewDDLGenerator creates a DDL generator for dialect
func NewDDLGenerator(dialect Dialect) *DDLGenerator {
	return &DDLGenerator{typeMapper: NewTypeMapper(dialect)}
}

// GenerateMigration renders the create/drop migration pair for e
func (g *DDLGenerator) GenerateMigration(e *dsl.Entity) (*Migration, error) {
	if e == nil {
		return nil, fmt.Errorf("entity cannot be nil")
	}

	table := TableName(e.Name)
	name := "create_" + table

	var up strings.Builder
	fmt.Fprintf(&up, "-- Migration: %s\n\n", name)
	up.WriteString(g.GenerateCreateTable(e))
	up.WriteString("\n")

	var down strings.Builder
	fmt.Fprintf(&down, "-- Rollback migration: %s\n\n", name)
	down.WriteString(g.GenerateDropTable(e))
	down.WriteString("\n")

	return &Migration{Name: name, Up: up.String(), Down: down.String()}, nil
}

// GenerateCreateTable renders the CREATE TABLE statement. Columns keep the
// entity's field order: id, scalar fields, belongs-to keys, timestamps.
func (g *DDLGenerator) GenerateCreateTable(e *dsl.Entity) string {
	tm := g.typeMapper

	columns := []string{tm.PrimaryKey()}
	for _, f := range e.Fields {
		columns = append(columns, g.columnDefinition(f))
	}
	for _, r := range e.Relations {
		if r.Kind != dsl.BelongsTo {
			continue
		}
		columns = append(columns, g.foreignKeyDefinition(r))
	}
	timestamp := tm.timestamp() + " DEFAULT CURRENT_TIMESTAMP"
	columns = append(columns,
		tm.QuoteIdentifier("created_at")+" "+timestamp,
		tm.QuoteIdentifier("updated_at")+" "+timestamp,
	)

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", tm.QuoteIdentifier(TableName(e.Name)))
	for i, col := range columns {
		b.WriteString("  ")
		b.WriteString(col)
		if i < len(columns)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(");")
	return b.String()
}

// GenerateDropTable renders the DROP TABLE statement
func (g *DDLGenerator) GenerateDropTable(e *dsl.Entity) string {
	stmt := "DROP TABLE IF EXISTS " + g.typeMapper.QuoteIdentifier(TableName(e.Name))
	if g.typeMapper.dialect == DialectPostgres {
		stmt += " CASCADE"
	}
	return stmt + ";"
}

func (g *DDLGenerator) columnDefinition(f dsl.Field) string {
	tm := g.typeMapper
	parts := []string{tm.QuoteIdentifier(f.Name), tm.MapType(f.Type, f.Rules.MaxLength)}
	if f.Rules.Required && !tm.IsNullableType(f.Type) {
		parts = append(parts, "NOT NULL")
	}
	if f.Rules.Unique {
		parts = append(parts, "UNIQUE")
	}
	return strings.Join(parts, " ")
}

func (g *DDLGenerator) foreignKeyDefinition(r dsl.Relation) string {
	tm := g.typeMapper
	parts := []string{tm.QuoteIdentifier(r.ForeignKey()), tm.ForeignKeyType()}
	if r.Rules.Required {
		parts = append(parts, "NOT NULL")
	}
	parts = append(parts, fmt.Sprintf("REFERENCES %s(%s)",
		tm.QuoteIdentifier(TableName(r.Target)), tm.QuoteIdentifier("id")))
	return strings.Join(parts, " ")
}
