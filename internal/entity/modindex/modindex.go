// Package modindex maintains Rust module index files (mod.rs): the
// `pub mod <name>;` lines that pull generated modules into the build.
//
// An index is treated as a set keyed by module name. Merging appends only
// when the declaration line is absent, so registering twice leaves the file
// unchanged.
package modindex

import (
	"bufio"
	"os"
	"strings"

	"github.com/spf13/afero"

	enterrors "github.com/nebula-cli/nebula/internal/entity/errors"
)

// Registration is one module entry in an index
type Registration struct {
	// Module is the lowercase module name
	Module string
	// Export is an optional type re-exported with `pub use <module>::<Export>;`
	Export string
}

// Declaration returns the `pub mod` line that identifies the registration
func (r Registration) Declaration() string {
	return "pub mod " + r.Module + ";"
}

// Lines returns every line the registration adds, newline terminated
func (r Registration) Lines() string {
	var b strings.Builder
	b.WriteString(r.Declaration())
	b.WriteString("\n")
	if r.Export != "" {
		b.WriteString("pub use " + r.Module + "::" + r.Export + ";\n")
	}
	return b.String()
}

// Merge returns content with reg appended, or content unchanged when its
// declaration is already present. changed reports whether anything was added.
func Merge(content string, reg Registration) (merged string, changed bool) {
	if strings.Contains(content, reg.Declaration()) {
		return content, false
	}
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + reg.Lines(), true
}

// Index is a module index file on a filesystem
type Index struct {
	fs   afero.Fs
	path string
}

// Open returns the index at path. The file need not exist.
func Open(fs afero.Fs, path string) *Index {
	return &Index{fs: fs, path: path}
}

// Path returns the index file path
func (i *Index) Path() string {
	return i.path
}

// Read returns the index content, or "" if the file does not exist
func (i *Index) Read() (string, error) {
	data, err := afero.ReadFile(i.fs, i.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", enterrors.NewFilesystem("read", i.path, err)
	}
	return string(data), nil
}

// Plan reads the index and returns its content with reg merged in. Nothing
// is written; changed reports whether Write is needed.
func (i *Index) Plan(reg Registration) (merged string, changed bool, err error) {
	content, err := i.Read()
	if err != nil {
		return "", false, err
	}
	merged, changed = Merge(content, reg)
	return merged, changed, nil
}

// Write replaces the index content
func (i *Index) Write(content string) error {
	if err := afero.WriteFile(i.fs, i.path, []byte(content), 0644); err != nil {
		return enterrors.NewFilesystem("write", i.path, err)
	}
	return nil
}

// Modules returns the module names declared in the index in file order
func (i *Index) Modules() ([]string, error) {
	content, err := i.Read()
	if err != nil {
		return nil, err
	}

	var modules []string
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "pub mod ") || !strings.HasSuffix(line, ";") {
			continue
		}
		name := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(line, "pub mod "), ";"))
		if name != "" {
			modules = append(modules, name)
		}
	}
	return modules, nil
}
