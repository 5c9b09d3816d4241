package generator

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// batchFile is the YAML layout accepted by LoadBatch:
//
//	entities:
//	  - name: User
//	    fields: "name:String|required,email:String|email unique"
//	  - name: Post
//	    fields: "title:String"
//	    relations: "author->belongsTo:User"
type batchFile struct {
	Entities []EntitySpec `yaml:"entities"`
}

// LoadBatch reads a batch file of entity specs. Order is preserved.
func LoadBatch(fs afero.Fs, path string) ([]EntitySpec, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return ParseBatch(data)
}

// ParseBatch decodes batch YAML. Unknown keys are rejected so that a typo
// such as `field:` does not silently generate an empty entity.
func ParseBatch(data []byte) ([]EntitySpec, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file batchFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("batch file is empty")
		}
		return nil, fmt.Errorf("failed to parse batch file: %w", err)
	}
	if len(file.Entities) == 0 {
		return nil, fmt.Errorf("batch file declares no entities")
	}
	return file.Entities, nil
}
