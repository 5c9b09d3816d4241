package codegen

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMigrationPostgres(t *testing.T) {
	entity := compile(t, "BlogPost",
		"title:String|required max_length=120,slug:String|unique,views:i64,summary:Option<String>|required",
		"author->belongsTo:User,hasMany->Comment")

	m, err := NewDDLGenerator(DialectPostgres).GenerateMigration(entity)
	require.NoError(t, err)

	assert.Equal(t, "create_blog_posts", m.Name)
	assert.Equal(t, `-- Migration: create_blog_posts

CREATE TABLE IF NOT EXISTS "blog_posts" (
  "id" SERIAL PRIMARY KEY,
  "title" VARCHAR(120) NOT NULL,
  "slug" VARCHAR(255) UNIQUE,
  "views" BIGINT,
  "summary" VARCHAR(255),
  "author_id" INTEGER REFERENCES "users"("id"),
  "created_at" TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
  "updated_at" TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
);
`, m.Up)
	assert.Equal(t, "-- Rollback migration: create_blog_posts\n\nDROP TABLE IF EXISTS \"blog_posts\" CASCADE;\n", m.Down)
}

func TestGenerateMigrationMySQL(t *testing.T) {
	entity := compile(t, "User", "active:bool|required,score:f64", "")

	m, err := NewDDLGenerator(DialectMySQL).GenerateMigration(entity)
	require.NoError(t, err)

	assert.Contains(t, m.Up, "CREATE TABLE IF NOT EXISTS `users` (")
	assert.Contains(t, m.Up, "`id` INT AUTO_INCREMENT PRIMARY KEY,")
	assert.Contains(t, m.Up, "`active` TINYINT(1) NOT NULL,")
	assert.Contains(t, m.Up, "`score` DOUBLE,")
	assert.Contains(t, m.Up, "`created_at` DATETIME DEFAULT CURRENT_TIMESTAMP")
	assert.Contains(t, m.Down, "DROP TABLE IF EXISTS `users`;")
}

func TestGenerateMigrationSQLiteExecutes(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	gen := NewDDLGenerator(DialectSQLite)

	user, err := gen.GenerateMigration(compile(t, "User",
		"email:String|required unique email,age:u32,tags:Vec<String>,joined:DateTime", ""))
	require.NoError(t, err)
	post, err := gen.GenerateMigration(compile(t, "Post",
		"title:String|required,rating:f32,draft:bool", "author->belongsTo:User"))
	require.NoError(t, err)

	_, err = db.Exec(user.Up)
	require.NoError(t, err)
	_, err = db.Exec(post.Up)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO "users" ("email") VALUES ('a@example.com')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO "users" ("email") VALUES ('a@example.com')`)
	assert.Error(t, err, "unique constraint should reject duplicates")

	_, err = db.Exec(`INSERT INTO "posts" ("title", "author_id") VALUES ('hello', 1)`)
	require.NoError(t, err)

	var title string
	require.NoError(t, db.QueryRow(`SELECT "title" FROM "posts" WHERE "id" = 1`).Scan(&title))
	assert.Equal(t, "hello", title)

	_, err = db.Exec(post.Down)
	require.NoError(t, err)
	_, err = db.Exec(user.Down)
	require.NoError(t, err)
}
