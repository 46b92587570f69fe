package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	abacErrors "osprey-hq/talon/pkg/abac/errors"
)

// decodeDocument parses raw bytes into a generic document tree. The format
// is chosen by file extension: .yaml/.yml parse as YAML, .jsonc as JSON
// with comments, anything else as plain JSON. JSON numbers are preserved
// as json.Number so integer checks can happen during AST construction.
func decodeDocument(data []byte, sourcePath string) (interface{}, *abacErrors.Error) {
	switch strings.ToLower(filepath.Ext(sourcePath)) {
	case ".yaml", ".yml":
		return decodeYAML(data, sourcePath)
	case ".jsonc":
		// jsonc.ToJSON replaces comments and trailing commas with
		// whitespace, so byte offsets in error locations stay accurate.
		return decodeJSON(jsonc.ToJSON(data), sourcePath)
	default:
		return decodeJSON(data, sourcePath)
	}
}

func decodeJSON(data []byte, sourcePath string) (interface{}, *abacErrors.Error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		loc := abacErrors.Location{File: sourcePath, Line: 1, Column: 1}
		if syntaxErr, ok := err.(*json.SyntaxError); ok {
			loc = offsetLocation(data, syntaxErr.Offset, sourcePath)
		}
		return nil, &abacErrors.Error{
			Type:       abacErrors.ErrorTypeSyntax,
			Message:    fmt.Sprintf("JSON parsing failed: %v", err),
			Location:   loc,
			Suggestion: "Check JSON syntax (commas, brackets, quotes)",
		}
	}

	if dec.More() {
		return nil, &abacErrors.Error{
			Type:     abacErrors.ErrorTypeSyntax,
			Message:  "Unexpected content after top-level JSON value",
			Location: abacErrors.Location{File: sourcePath, Line: 1, Column: 1},
		}
	}

	return doc, nil
}

func decodeYAML(data []byte, sourcePath string) (interface{}, *abacErrors.Error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &abacErrors.Error{
			Type:       abacErrors.ErrorTypeSyntax,
			Message:    fmt.Sprintf("YAML parsing failed: %v", err),
			Location:   abacErrors.Location{File: sourcePath, Line: 1, Column: 1},
			Suggestion: "Check YAML syntax (indentation, colons, quotes)",
		}
	}
	return doc, nil
}

// scalarInt64 normalizes a decoded scalar number to int64. JSON numbers
// arrive as json.Number, YAML integers as int, int64, or uint64. Floats
// and non-integral numbers are rejected: the value domain is signed
// 64-bit integers only.
func scalarInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("number %s is not an integer", n.String())
		}
		return i, nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("number %d overflows a signed 64-bit integer", n)
		}
		return int64(n), nil
	case float64:
		return 0, fmt.Errorf("number %v is not an integer", n)
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}

// offsetLocation converts a byte offset reported by the JSON decoder into
// a line and column pair.
func offsetLocation(data []byte, offset int64, sourcePath string) abacErrors.Location {
	if offset < 0 {
		offset = 0
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}

	line := 1
	column := 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}

	return abacErrors.Location{File: sourcePath, Line: line, Column: column}
}
