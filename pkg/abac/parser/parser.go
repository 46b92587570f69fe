package parser

import (
	"fmt"
	"os"

	"osprey-hq/talon/pkg/abac/ast"
	abacErrors "osprey-hq/talon/pkg/abac/errors"
)

// Parser parses policy documents into abstract syntax trees.
// It accepts JSON, JSONC, and YAML input and performs structural checks
// during AST construction.
type Parser struct {
	// Configuration
	maxFileSize int64 // Maximum file size in bytes (default: 10MB)
	maxDepth    int   // Maximum condition nesting depth (default: 10)
	strictMode  bool  // Strict mode rejects unknown document fields
}

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxFileSize: 10 * 1024 * 1024, // 10MB
		maxDepth:    10,
		strictMode:  false,
	}
}

// WithMaxFileSize sets the maximum file size limit.
func (p *Parser) WithMaxFileSize(size int64) *Parser {
	p.maxFileSize = size
	return p
}

// WithMaxDepth sets the maximum condition nesting depth.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	p.maxDepth = depth
	return p
}

// WithStrictMode enables strict parsing (unknown document fields become errors).
func (p *Parser) WithStrictMode(strict bool) *Parser {
	p.strictMode = strict
	return p
}

// Parse parses a policy file at the given path and returns the AST.
// It returns an error if the file cannot be read, has invalid syntax,
// or contains structural errors.
func (p *Parser) Parse(path string) (*ast.Policy, error) {
	data, err := p.readFile(path)
	if err != nil {
		return nil, err
	}
	return p.buildPolicyDocument(data, path)
}

// ParseBytes parses a policy document from a byte slice. The sourcePath
// selects the input format by extension and names the source in errors.
// This is useful for testing or parsing policies from memory.
func (p *Parser) ParseBytes(data []byte, sourcePath string) (*ast.Policy, error) {
	if int64(len(data)) > p.maxFileSize {
		return nil, &abacErrors.Error{
			Type:    abacErrors.ErrorTypeIO,
			Message: fmt.Sprintf("Data size %d exceeds maximum %d bytes", len(data), p.maxFileSize),
			Location: abacErrors.Location{
				File: sourcePath,
			},
		}
	}
	return p.buildPolicyDocument(data, sourcePath)
}

// ParseMulti parses multiple policy files, one policy per file, preserving
// file order. Order matters downstream: rule filtering and direct
// evaluation walk policies in the order given here.
func (p *Parser) ParseMulti(paths []string) ([]*ast.Policy, error) {
	if len(paths) == 0 {
		return nil, &abacErrors.Error{
			Type:    abacErrors.ErrorTypeIO,
			Message: "No policy files provided",
		}
	}

	policies := make([]*ast.Policy, 0, len(paths))
	for _, path := range paths {
		policy, err := p.Parse(path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		policies = append(policies, policy)
	}
	return policies, nil
}

// readFile loads a file after checking it against the size limit.
func (p *Parser) readFile(path string) ([]byte, *abacErrors.Error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, &abacErrors.Error{
			Type:    abacErrors.ErrorTypeIO,
			Message: fmt.Sprintf("Failed to access file: %v", err),
			Location: abacErrors.Location{
				File: path,
			},
		}
	}

	if fileInfo.Size() > p.maxFileSize {
		return nil, &abacErrors.Error{
			Type:    abacErrors.ErrorTypeIO,
			Message: fmt.Sprintf("File size %d exceeds maximum %d bytes", fileInfo.Size(), p.maxFileSize),
			Location: abacErrors.Location{
				File: path,
			},
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &abacErrors.Error{
			Type:    abacErrors.ErrorTypeIO,
			Message: fmt.Sprintf("Failed to read file: %v", err),
			Location: abacErrors.Location{
				File: path,
			},
		}
	}

	return data, nil
}

// buildPolicyDocument decodes raw bytes and constructs the policy AST.
func (p *Parser) buildPolicyDocument(data []byte, sourcePath string) (*ast.Policy, error) {
	doc, perr := decodeDocument(data, sourcePath)
	if perr != nil {
		return nil, perr
	}

	builder := newBuilder(sourcePath, p.maxDepth, p.strictMode)
	policy, err := builder.buildPolicy(doc)
	if err != nil {
		// Add context to errors
		if errList, ok := err.(*abacErrors.ErrorList); ok {
			for i, e := range errList.Errors {
				errList.Errors[i] = abacErrors.AddContextToError(e)
			}
		}
		return nil, err
	}

	return policy, nil
}
