package codegen

import (
	"bytes"
	"fmt"
	"text/template"
)

var routesTemplate = template.Must(template.New("routes").Parse(`use axum::{response::Json, routing::get, Router};
use serde_json::json;
{{- if .GraphQL}}
use async_graphql::http::GraphiQLSource;
use async_graphql_axum::GraphQL;
use axum::response::{Html, IntoResponse};

use crate::graphql;
{{- end}}
{{- if .Handlers}}

use crate::handlers;
{{- end}}

pub fn configure() -> Router {
    let api = Router::new()
        .route("/hello", get(hello_world))
{{- range .Handlers}}
        .merge(handlers::{{.}}::routes())
{{- end}};

    Router::new()
        .route("/", get(health_check))
{{- if .GraphQL}}
        .route("/graphql", get(graphiql).post_service(GraphQL::new(graphql::schema())))
{{- end}}
        .nest("/api/v1", api)
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
{{- if .GraphQL}}

async fn graphiql() -> impl IntoResponse {
    Html(GraphiQLSource::build().endpoint("/graphql").finish())
}
{{- end}}
`))

var schemaTemplate = template.Must(template.New("schema").Parse(`use async_graphql::{EmptySubscription, MergedObject, Schema};

use crate::resolvers;

#[derive(MergedObject, Default)]
pub struct QueryRoot(
{{- range $i, $m := .}}{{if $i}}, {{end}}resolvers::{{$m}}::Query{{end -}}
);

#[derive(MergedObject, Default)]
pub struct MutationRoot(
{{- range $i, $m := .}}{{if $i}}, {{end}}resolvers::{{$m}}::Mutation{{end -}}
);

pub type AppSchema = Schema<QueryRoot, MutationRoot, EmptySubscription>;

pub fn schema() -> AppSchema {
    Schema::new(QueryRoot::default(), MutationRoot::default(), EmptySubscription)
}
`))

type routesData struct {
	Handlers []string
	GraphQL  bool
}

// RenderRoutes renders the router merging the routes() of every handler
// module in order. With graphql set the /graphql endpoint is mounted too.
func RenderRoutes(handlers []string, graphql bool) (string, error) {
	var buf bytes.Buffer
	if err := routesTemplate.Execute(&buf, routesData{Handlers: handlers, GraphQL: graphql}); err != nil {
		return "", fmt.Errorf("render routes: %w", err)
	}
	return buf.String(), nil
}

// RenderSchema renders the GraphQL schema merging the Query and Mutation
// objects of every resolver module in order
func RenderSchema(resolvers []string) (string, error) {
	if len(resolvers) == 0 {
		return "", fmt.Errorf("render schema: no resolver modules")
	}
	var buf bytes.Buffer
	if err := schemaTemplate.Execute(&buf, resolvers); err != nil {
		return "", fmt.Errorf("render schema: %w", err)
	}
	return buf.String(), nil
}
