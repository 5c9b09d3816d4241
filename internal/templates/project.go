package templates

import "path"

// Project template variable names
const (
	VarDatabase   = "database"
	VarServerType = "server_type"
)

func serverVariables() []*TemplateVariable {
	return []*TemplateVariable{
		{
			Name:     VarDatabase,
			Prompt:   "Database",
			Default:  "postgresql",
			Required: true,
			Options:  []string{"postgresql", "mysql", "mariadb", "sqlite", "mongodb"},
		},
		{
			Name:     VarServerType,
			Prompt:   "Server type",
			Default:  "rest",
			Required: true,
			Options:  []string{"rest", "graphql"},
		},
	}
}

// NewServerTemplate creates the axum server template
func NewServerTemplate() *Template {
	return &Template{
		Name:        "server",
		Description: "Rust axum API server with entities, handlers and migrations",
		Version:     "1.0.0",
		Variables:   serverVariables(),
		Directories: serverDirectories(""),
		Files:       serverFiles(""),
	}
}

// NewClientTemplate creates the static web client template
func NewClientTemplate() *Template {
	return &Template{
		Name:        "client",
		Description: "Static web client",
		Version:     "1.0.0",
		Directories: []string{"src", "public"},
		Files:       clientFiles(""),
	}
}

// NewFullTemplate creates a server under api/ and a client under web/
func NewFullTemplate() *Template {
	return &Template{
		Name:        "full",
		Description: "API server and web client in one repository",
		Version:     "1.0.0",
		SourceRoot:  "api",
		Variables:   serverVariables(),
		Directories: append(serverDirectories("api"), "web/src", "web/public"),
		Files: append(
			append(serverFiles("api"), clientFiles("web")...),
			&TemplateFile{TargetPath: ".gitignore", Content: gitignoreContent},
			&TemplateFile{TargetPath: "README.md", Template: true, Content: readmeContent},
		),
	}
}

func serverDirectories(prefix string) []string {
	return []string{
		path.Join(prefix, "src/entities"),
		path.Join(prefix, "src/handlers"),
		path.Join(prefix, "migrations"),
	}
}

func serverFiles(prefix string) []*TemplateFile {
	files := []*TemplateFile{
		{TargetPath: "Cargo.toml", Template: true, Content: cargoContent},
		{TargetPath: ".env", Template: true, Content: envContent},
		{TargetPath: "src/main.rs", Template: true, Content: mainContent},
		{TargetPath: "src/server.rs", Content: serverContent},
		{TargetPath: "src/route.rs", Content: routeContent},
		{
			TargetPath: "src/graphql.rs",
			Content:    graphqlContent,
			Condition:  `{{if eq .Variables.server_type "graphql"}}true{{end}}`,
		},
		{TargetPath: "src/entities/mod.rs", Content: "// Entity modules are registered here by `nebula generate entity`.\n"},
		{TargetPath: "src/handlers/mod.rs", Content: "// Handler modules are registered here by `nebula generate handler`.\n"},
		{
			TargetPath: "src/resolvers/mod.rs",
			Content:    "// Resolver modules are registered here by `nebula generate resolver`.\n",
			Condition:  `{{if eq .Variables.server_type "graphql"}}true{{end}}`,
		},
		{TargetPath: "migrations/.gitkeep", Content: "\n"},
	}
	if prefix == "" {
		files = append(files,
			&TemplateFile{TargetPath: ".gitignore", Content: gitignoreContent},
			&TemplateFile{TargetPath: "README.md", Template: true, Content: readmeContent},
		)
	}
	return prefixed(prefix, files)
}

func clientFiles(prefix string) []*TemplateFile {
	files := []*TemplateFile{
		{TargetPath: "package.json", Template: true, Content: packageJSONContent},
		{TargetPath: "public/index.html", Template: true, Content: indexHTMLContent},
		{TargetPath: "src/main.js", Content: mainJSContent},
	}
	if prefix == "" {
		files = append(files,
			&TemplateFile{TargetPath: ".gitignore", Content: gitignoreContent},
			&TemplateFile{TargetPath: "README.md", Template: true, Content: readmeContent},
		)
	}
	return prefixed(prefix, files)
}

func prefixed(prefix string, files []*TemplateFile) []*TemplateFile {
	if prefix == "" {
		return files
	}
	for _, f := range files {
		f.TargetPath = path.Join(prefix, f.TargetPath)
	}
	return files
}

const cargoContent = `[package]
name = "{{snake .ProjectName}}"
version = "0.1.0"
edition = "2021"

[dependencies]
tokio = { version = "1.0", features = ["full"] }
axum = { version = "0.8.0", features = ["macros"] }
serde = { version = "1.0", features = ["derive"] }
serde_json = "1.0"
tower = "0.5.2"
tower-http = { version = "0.6.2", features = ["cors"] }
dotenvy = "0.15"
tracing = "0.1"
tracing-subscriber = { version = "0.3", features = ["env-filter"] }
thiserror = "2.0.10"
chrono = { version = "0.4", features = ["serde"] }
validator = { version = "0.20.0", features = ["derive"] }
async-graphql = { version = "5.0.7", features = ["chrono"] }
`

const envContent = `# Database Configuration
{{- if eq .Variables.database "sqlite"}}
DATABASE_URL=sqlite://{{snake .ProjectName}}.db
{{- else}}
DB_HOST=127.0.0.1
DB_PORT={{if or (eq .Variables.database "mysql") (eq .Variables.database "mariadb")}}3306{{else if eq .Variables.database "mongodb"}}27017{{else}}5432{{end}}
DB_USER={{if or (eq .Variables.database "mysql") (eq .Variables.database "mariadb")}}root{{else}}postgres{{end}}
DB_PASSWORD=postgres
DB_NAME={{snake .ProjectName}}
{{- end}}

# Api Configuration
SERVER_HOST=127.0.0.1
SERVER_PORT=8080
API_VERSION=v1
LOG_LEVEL=debug
`

const mainContent = `mod entities;
mod handlers;
mod route;
mod server;
{{- if eq .Variables.server_type "graphql"}}
mod graphql;
mod resolvers;
{{- end}}

use dotenvy::dotenv;

#[tokio::main]
async fn main() -> Result<(), Box<dyn std::error::Error>> {
    tracing_subscriber::fmt::init();
    dotenv().ok();

    server::Server::run().await?;

    Ok(())
}
`

const serverContent = `use std::env;
use std::net::SocketAddr;

use axum::Router;
use tokio::net::TcpListener;
use tower_http::cors::CorsLayer;

use crate::route;

#[derive(Debug)]
pub struct Server;

impl Server {
    pub async fn run() -> Result<(), Box<dyn std::error::Error>> {
        let host = env::var("SERVER_HOST").unwrap_or_else(|_| "127.0.0.1".to_string());
        let port: u16 = env::var("SERVER_PORT")
            .unwrap_or_else(|_| "8080".to_string())
            .parse()
            .expect("SERVER_PORT must be a valid integer");

        let addr: SocketAddr = format!("{}:{}", host, port)
            .parse()
            .expect("Failed to parse socket address");

        let app = Router::new()
            .merge(route::configure())
            .layer(CorsLayer::permissive());

        let listener = TcpListener::bind(addr).await?;
        tracing::info!("server started on http://{}", addr);

        axum::serve(listener, app).await?;
        Ok(())
    }
}
`

const routeContent = `use axum::{response::Json, routing::get, Router};
use serde_json::json;

pub fn configure() -> Router {
    Router::new()
        .route("/", get(health_check))
        .route("/api/v1/hello", get(hello_world))
}

async fn health_check() -> Json<serde_json::Value> {
    Json(json!({
        "status": "ok",
        "version": env!("CARGO_PKG_VERSION"),
        "name": env!("CARGO_PKG_NAME")
    }))
}

async fn hello_world() -> Json<serde_json::Value> {
    Json(json!({
        "message": "Hello, World!"
    }))
}
`

const graphqlContent = `use async_graphql::{EmptySubscription, Object, Schema};

#[derive(Default)]
pub struct QueryRoot;

#[Object]
impl QueryRoot {
    async fn version(&self) -> &'static str {
        env!("CARGO_PKG_VERSION")
    }
}

#[derive(Default)]
pub struct MutationRoot;

#[Object]
impl MutationRoot {
    async fn noop(&self) -> bool {
        true
    }
}

pub type AppSchema = Schema<QueryRoot, MutationRoot, EmptySubscription>;

pub fn schema() -> AppSchema {
    Schema::new(QueryRoot, MutationRoot, EmptySubscription)
}
`

const gitignoreContent = `# Dependencies
/node_modules

# Build
/target
/dist
debug/
**/*.rs.bk
Cargo.lock

# Environment Variables
.env
.env.*
!.env.example

# IDE
.vscode/*
.idea/
*.swp

# Logs
*.log

# OS
.DS_Store
Thumbs.db

# Database
*.sqlite
*.sqlite3
*.db
`

const readmeContent = `# {{.ProjectName}}

## Quick Start

` + "```bash" + `
cargo build
cargo run
` + "```" + `

Generate an entity:

` + "```bash" + `
nebula generate entity User --fields "name:String|required,email:String|email unique" --migration
` + "```" + `
`

const packageJSONContent = `{
  "name": "{{snake .ProjectName}}-web",
  "version": "0.1.0",
  "private": true,
  "scripts": {
    "start": "npx serve public"
  }
}
`

const indexHTMLContent = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.ProjectName}}</title>
</head>
<body>
  <div id="app"></div>
  <script src="../src/main.js"></script>
</body>
</html>
`

const mainJSContent = `const app = document.getElementById("app");

fetch("/api/v1/hello")
  .then((res) => res.json())
  .then((data) => {
    app.textContent = data.message;
  })
  .catch(() => {
    app.textContent = "API unavailable";
  });
`
