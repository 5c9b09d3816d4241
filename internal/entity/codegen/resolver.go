package codegen

import (
	"bytes"
	"fmt"
	"text/template"
)

var resolverTemplate = template.Must(template.New("resolver").Parse(`use async_graphql::{Object, Result};
use validator::Validate;

use crate::entities::{{.Module}}::{ {{- .Name}}, {{.Name}}Input, Update{{.Name}}Input};

#[derive(Default)]
pub struct Query;

#[Object]
impl Query {
    async fn {{.Plural}}(&self) -> Vec<{{.Name}}> {
        Vec::new()
    }

    async fn {{.Singular}}(&self, id: i32) -> Option<{{.Name}}> {
        let _ = id;
        None
    }
}

#[derive(Default)]
pub struct Mutation;

#[Object]
impl Mutation {
    async fn create_{{.Singular}}(&self, input: {{.Name}}Input) -> Result<bool> {
        input.validate()?;
        Ok(true)
    }

    async fn update_{{.Singular}}(&self, id: i32, input: Update{{.Name}}Input) -> bool {
        let _ = (id, input);
        false
    }

    async fn delete_{{.Singular}}(&self, id: i32) -> bool {
        let _ = id;
        false
    }
}
`))

// RenderResolver renders the async-graphql Query and Mutation stub for the
// entity name. module is the entity's registered module name.
func RenderResolver(name, module string) (string, error) {
	var buf bytes.Buffer
	if err := resolverTemplate.Execute(&buf, namesFor(name, module)); err != nil {
		return "", fmt.Errorf("render resolver %s: %w", name, err)
	}
	return buf.String(), nil
}
