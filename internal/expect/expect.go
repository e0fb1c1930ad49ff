// Package expect loads the optional expectations document used by the verify
// step to check table presence and minimum row counts after a seed load.
package expect

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// TableExpectation names a table that must exist after the seed load, with an
// optional minimum row count.
type TableExpectation struct {
	Name    string `json:"name"`
	MinRows int    `json:"min_rows,omitempty"`
}

// Expectations is the parsed expectations document.
type Expectations struct {
	Tables []TableExpectation `json:"tables"`
}

const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["tables"],
  "additionalProperties": false,
  "properties": {
    "tables": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name"],
        "additionalProperties": false,
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "min_rows": {"type": "integer", "minimum": 0}
        }
      }
    }
  }
}`

// Load reads and validates an expectations file.
func Load(path string) (*Expectations, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read expectations file %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse validates the document against the embedded JSON Schema before
// decoding it, so malformed files are rejected with field-level messages.
func Parse(path string, data []byte) (*Expectations, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(documentSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to validate expectations file %s: %w", path, err)
	}
	if !result.Valid() {
		var msgs []string
		for _, issue := range result.Errors() {
			msgs = append(msgs, issue.String())
		}
		return nil, fmt.Errorf("invalid expectations file %s: %s", path, strings.Join(msgs, "; "))
	}

	var exp Expectations
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("failed to decode expectations file %s: %w", path, err)
	}
	return &exp, nil
}
