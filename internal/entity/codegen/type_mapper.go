package codegen

import (
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"

	utilstrings "github.com/nebula-cli/nebula/internal/util/strings"
)

// Dialect is a SQL flavour migrations can be rendered for
type Dialect string

const (
	DialectPostgres Dialect = "postgresql"
	DialectMySQL    Dialect = "mysql"
	DialectSQLite   Dialect = "sqlite"
)

// ParseDialect maps a configured database name to a Dialect
func ParseDialect(database string) (Dialect, error) {
	switch strings.ToLower(database) {
	case "postgresql", "postgres", "":
		return DialectPostgres, nil
	case "mysql", "mariadb":
		return DialectMySQL, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("SQL migrations are not supported for database %q", database)
	}
}

// TypeMapper maps declared field types to column types for one dialect
type TypeMapper struct {
	dialect Dialect
}

// NewTypeMapper creates a TypeMapper for dialect
func NewTypeMapper(dialect Dialect) *TypeMapper {
	return &TypeMapper{dialect: dialect}
}

// MapType returns the column type for a declared scalar type. maxLength
// sizes text columns where the dialect has a bounded string type. Types
// added through configuration fall back to a text column.
func (tm *TypeMapper) MapType(declared string, maxLength *int) string {
	switch declared {
	case "String", "Option<String>":
		return tm.varchar(maxLength)
	case "i32":
		return "INTEGER"
	case "i64":
		return "BIGINT"
	case "u32":
		return tm.pick("BIGINT", "INT UNSIGNED", "INTEGER")
	case "u64", "usize":
		return tm.pick("NUMERIC(20)", "BIGINT UNSIGNED", "INTEGER")
	case "f32":
		return tm.pick("REAL", "FLOAT", "REAL")
	case "f64":
		return tm.pick("DOUBLE PRECISION", "DOUBLE", "REAL")
	case "bool":
		return tm.pick("BOOLEAN", "TINYINT(1)", "INTEGER")
	case "DateTime":
		return tm.timestamp()
	case "Vec<String>":
		return tm.pick("TEXT[]", "JSON", "TEXT")
	}
	return "TEXT"
}

// IsNullableType reports whether the declared type is optional by itself
func (tm *TypeMapper) IsNullableType(declared string) bool {
	return strings.HasPrefix(declared, "Option<")
}

// PrimaryKey returns the auto-increment id column definition
func (tm *TypeMapper) PrimaryKey() string {
	return tm.QuoteIdentifier("id") + " " + tm.pick(
		"SERIAL PRIMARY KEY",
		"INT AUTO_INCREMENT PRIMARY KEY",
		"INTEGER PRIMARY KEY AUTOINCREMENT",
	)
}

// ForeignKeyType returns the column type matching PrimaryKey
func (tm *TypeMapper) ForeignKeyType() string {
	return "INTEGER"
}

func (tm *TypeMapper) timestamp() string {
	return tm.pick("TIMESTAMPTZ", "DATETIME", "TEXT")
}

func (tm *TypeMapper) varchar(maxLength *int) string {
	if tm.dialect == DialectSQLite {
		return "TEXT"
	}
	n := 255
	if maxLength != nil && *maxLength > 0 {
		n = *maxLength
	}
	return fmt.Sprintf("VARCHAR(%d)", n)
}

func (tm *TypeMapper) pick(postgres, mysql, sqlite string) string {
	switch tm.dialect {
	case DialectMySQL:
		return mysql
	case DialectSQLite:
		return sqlite
	default:
		return postgres
	}
}

// QuoteIdentifier quotes a table or column name for the dialect
func (tm *TypeMapper) QuoteIdentifier(identifier string) string {
	if tm.dialect == DialectMySQL {
		return "`" + strings.ReplaceAll(identifier, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

// TableName returns the pluralised snake_case table name for an entity
func TableName(entity string) string {
	return inflection.Plural(utilstrings.ToSnakeCase(entity))
}
