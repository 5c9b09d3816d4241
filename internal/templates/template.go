// Package templates creates new projects from built-in file templates.
package templates

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/spf13/afero"

	strutil "github.com/nebula-cli/nebula/internal/util/strings"
)

// Template represents a project template
type Template struct {
	Name        string
	Description string
	Version     string
	// SourceRoot is the directory holding the generated crate, relative to
	// the project root
	SourceRoot  string
	Variables   []*TemplateVariable
	Files       []*TemplateFile
	Directories []string
}

// TemplateVariable represents a configurable variable in a template
type TemplateVariable struct {
	Name     string
	Prompt   string
	Default  string
	Required bool
	Options  []string
}

// TemplateFile represents a file in a template
type TemplateFile struct {
	TargetPath string
	Content    string
	Template   bool   // render Content with text/template
	Condition  string // rendered; the file is skipped unless it yields "true"
}

// TemplateContext contains all data for template execution
type TemplateContext struct {
	ProjectName string
	Variables   map[string]string
}

// Engine is the template rendering engine
type Engine struct {
	fs    afero.Fs
	funcs template.FuncMap
}

// NewEngine creates a new template engine writing to fs
func NewEngine(fs afero.Fs) *Engine {
	return &Engine{
		fs: fs,
		funcs: template.FuncMap{
			"upper": strings.ToUpper,
			"lower": strings.ToLower,
			"snake": strutil.ToSnakeCase,
		},
	}
}

// Execute renders tmpl into targetDir and returns the written file paths
// relative to targetDir
func (e *Engine) Execute(tmpl *Template, ctx *TemplateContext, targetDir string) ([]string, error) {
	if err := e.validateContext(tmpl, ctx); err != nil {
		return nil, fmt.Errorf("invalid template context: %w", err)
	}

	if err := e.fs.MkdirAll(targetDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create target directory: %w", err)
	}

	for _, dir := range tmpl.Directories {
		fullPath, err := e.resolve(targetDir, dir, ctx)
		if err != nil {
			return nil, fmt.Errorf("invalid directory path %s: %w", dir, err)
		}
		if err := e.fs.MkdirAll(fullPath, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", fullPath, err)
		}
	}

	var written []string
	for _, file := range tmpl.Files {
		if file.Condition != "" {
			ok, err := e.evaluateCondition(file.Condition, ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to evaluate condition for %s: %w", file.TargetPath, err)
			}
			if !ok {
				continue
			}
		}

		fullPath, err := e.resolve(targetDir, file.TargetPath, ctx)
		if err != nil {
			return nil, fmt.Errorf("invalid target path %s: %w", file.TargetPath, err)
		}

		content := file.Content
		if file.Template {
			content, err = e.renderString(file.Content, ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to render template %s: %w", file.TargetPath, err)
			}
		}

		if err := e.fs.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create parent directory for %s: %w", fullPath, err)
		}
		if err := afero.WriteFile(e.fs, fullPath, []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("failed to write file %s: %w", fullPath, err)
		}

		rel, _ := filepath.Rel(targetDir, fullPath)
		written = append(written, rel)
	}

	return written, nil
}

// resolve renders a template path and ensures it stays inside targetDir
func (e *Engine) resolve(targetDir, path string, ctx *TemplateContext) (string, error) {
	rendered, err := e.renderString(path, ctx)
	if err != nil {
		return "", err
	}

	rendered = filepath.Clean(rendered)
	if filepath.IsAbs(rendered) {
		return "", fmt.Errorf("attempts to write outside project directory")
	}

	fullPath := filepath.Join(targetDir, rendered)
	cleanTarget := filepath.Clean(targetDir) + string(filepath.Separator)
	if !strings.HasPrefix(filepath.Clean(fullPath)+string(filepath.Separator), cleanTarget) {
		return "", fmt.Errorf("attempts to write outside project directory")
	}
	return fullPath, nil
}

// renderString renders a template string with the given context
func (e *Engine) renderString(tmplStr string, ctx *TemplateContext) (string, error) {
	tmpl, err := template.New("").Funcs(e.funcs).Option("missingkey=error").Parse(tmplStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// validateContext validates that all required variables are provided and
// that select variables hold one of their options
func (e *Engine) validateContext(tmpl *Template, ctx *TemplateContext) error {
	if ctx == nil {
		return fmt.Errorf("context is required")
	}
	for _, v := range tmpl.Variables {
		value, ok := ctx.Variables[v.Name]
		if v.Required && (!ok || value == "") {
			return fmt.Errorf("required variable %s not provided", v.Name)
		}
		if ok && len(v.Options) > 0 && !contains(v.Options, value) {
			return fmt.Errorf("variable %s must be one of %s, got %q", v.Name, strings.Join(v.Options, ", "), value)
		}
	}
	return nil
}

func (e *Engine) evaluateCondition(condition string, ctx *TemplateContext) (bool, error) {
	result, err := e.renderString(condition, ctx)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(result) == "true", nil
}

// Validate validates a template structure
func (t *Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if t.Version == "" {
		return fmt.Errorf("template version is required")
	}
	if len(t.Files) == 0 {
		return fmt.Errorf("template must have at least one file")
	}

	varNames := make(map[string]bool)
	for _, v := range t.Variables {
		if v.Name == "" {
			return fmt.Errorf("variable name is required")
		}
		if varNames[v.Name] {
			return fmt.Errorf("duplicate variable name: %s", v.Name)
		}
		varNames[v.Name] = true

		if v.Default != "" && len(v.Options) > 0 && !contains(v.Options, v.Default) {
			return fmt.Errorf("variable %s default %q is not one of its options", v.Name, v.Default)
		}
	}

	for _, f := range t.Files {
		if f.TargetPath == "" {
			return fmt.Errorf("file target path is required")
		}
		if f.Content == "" {
			return fmt.Errorf("file content is required for %s", f.TargetPath)
		}
	}

	return nil
}

// Defaults returns the template's variables populated with their defaults
func (t *Template) Defaults() map[string]string {
	vars := make(map[string]string, len(t.Variables))
	for _, v := range t.Variables {
		if v.Default != "" {
			vars[v.Name] = v.Default
		}
	}
	return vars
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
