package codegen

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/jinzhu/inflection"

	utilstrings "github.com/nebula-cli/nebula/internal/util/strings"
)

var handlerTemplate = template.Must(template.New("handler").Parse(`use axum::{
    extract::Path,
    http::StatusCode,
    routing::get,
    Json, Router,
};
use validator::Validate;

use crate::entities::{{.Module}}::{ {{- .Name}}, {{.Name}}Input, Update{{.Name}}Input};

pub fn routes() -> Router {
    Router::new()
        .route("/{{.Route}}", get(list_{{.Plural}}).post(create_{{.Singular}}))
        .route(
            "/{{.Route}}/{id}",
            get(get_{{.Singular}}).put(update_{{.Singular}}).delete(delete_{{.Singular}}),
        )
}

pub async fn list_{{.Plural}}() -> Json<Vec<{{.Name}}>> {
    Json(Vec::new())
}

pub async fn create_{{.Singular}}(
    Json(input): Json<{{.Name}}Input>,
) -> Result<StatusCode, (StatusCode, String)> {
    input
        .validate()
        .map_err(|e| (StatusCode::UNPROCESSABLE_ENTITY, e.to_string()))?;
    Ok(StatusCode::CREATED)
}

pub async fn get_{{.Singular}}(Path(id): Path<i32>) -> Result<Json<{{.Name}}>, StatusCode> {
    let _ = id;
    Err(StatusCode::NOT_FOUND)
}

pub async fn update_{{.Singular}}(
    Path(id): Path<i32>,
    Json(input): Json<Update{{.Name}}Input>,
) -> StatusCode {
    let _ = (id, input);
    StatusCode::NOT_IMPLEMENTED
}

pub async fn delete_{{.Singular}}(Path(id): Path<i32>) -> StatusCode {
    let _ = id;
    StatusCode::NO_CONTENT
}
`))

// crudNames are the identifiers a CRUD stub is rendered with
type crudNames struct {
	Name     string
	Module   string
	Singular string
	Plural   string
	Route    string
}

func namesFor(name, module string) crudNames {
	singular := utilstrings.ToSnakeCase(name)
	plural := inflection.Plural(singular)
	return crudNames{
		Name:     name,
		Module:   module,
		Singular: singular,
		Plural:   plural,
		Route:    plural,
	}
}

// RenderHandler renders the axum CRUD handler stub for the entity name.
// module is the entity's registered module name.
func RenderHandler(name, module string) (string, error) {
	var buf bytes.Buffer
	if err := handlerTemplate.Execute(&buf, namesFor(name, module)); err != nil {
		return "", fmt.Errorf("render handler %s: %w", name, err)
	}
	return buf.String(), nil
}
