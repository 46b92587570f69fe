package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"osprey-hq/talon/pkg/abac"
	"osprey-hq/talon/pkg/abac/ast"
	"osprey-hq/talon/pkg/abac/entity"
	"osprey-hq/talon/pkg/abac/schema"
)

// PolicySource loads the policy set for a compile run.
type PolicySource interface {
	LoadPolicies(ctx context.Context) ([]*ast.Policy, error)
}

// EntitySource loads the entity inventory for a compile run. The
// schema map may be nil; schema value checks are then skipped.
type EntitySource interface {
	LoadEntities(ctx context.Context, schemaMap *schema.Map) (*entity.Inventory, error)
}

// SchemaSource loads the attribute identifier schema for a compile
// run.
type SchemaSource interface {
	LoadSchema(ctx context.Context) (*schema.Map, error)
}

// policyExtensions are the file extensions a FileSource treats as
// policy documents.
var policyExtensions = map[string]bool{
	".json":  true,
	".jsonc": true,
	".yaml":  true,
	".yml":   true,
}

// FileSource loads policies, entities, and the schema from disk. The
// policies path can be a single file or a directory; directories are
// walked recursively and files load in lexical path order.
type FileSource struct {
	policiesPath string
	entitiesFile string
	schemaFile   string
	logger       *slog.Logger
}

// NewFileSource creates a file-backed source for all three inputs.
func NewFileSource(policiesPath, entitiesFile, schemaFile string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		policiesPath: policiesPath,
		entitiesFile: entitiesFile,
		schemaFile:   schemaFile,
		logger:       logger,
	}
}

// LoadPolicies loads all policies from the configured path.
func (s *FileSource) LoadPolicies(ctx context.Context) ([]*ast.Policy, error) {
	info, err := os.Stat(s.policiesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path %q: %w", s.policiesPath, err)
	}

	paths := []string{s.policiesPath}
	if info.IsDir() {
		paths, err = s.collectPolicyFiles()
		if err != nil {
			return nil, err
		}
	}

	policies, err := abac.LoadPolicies(paths)
	if err != nil {
		return nil, err
	}

	s.logger.Info("loaded policies from source",
		"path", s.policiesPath,
		"policy_count", len(policies),
	)

	return policies, nil
}

// collectPolicyFiles walks the policies directory and returns every
// recognized policy file in lexical order. Hidden files are skipped;
// unrecognized extensions are ignored rather than rejected so editor
// droppings next to policy files do not break a compile.
func (s *FileSource) collectPolicyFiles() ([]string, error) {
	var paths []string

	err := filepath.Walk(s.policiesPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(filepath.Base(path), ".") && path != s.policiesPath {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(filepath.Base(path), ".") {
			return nil
		}
		if !policyExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %q: %w", s.policiesPath, err)
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no policy files found under %q", s.policiesPath)
	}

	sort.Strings(paths)
	return paths, nil
}

// LoadEntities loads the entity inventory file.
func (s *FileSource) LoadEntities(ctx context.Context, schemaMap *schema.Map) (*entity.Inventory, error) {
	set, err := abac.LoadEntities(s.entitiesFile, schemaMap)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("loaded entities from source",
		"path", s.entitiesFile,
		"source_count", len(set.Sources),
		"destination_count", len(set.Destinations),
	)

	return set, nil
}

// LoadSchema loads the attribute identifier schema file.
func (s *FileSource) LoadSchema(ctx context.Context) (*schema.Map, error) {
	schemaMap, err := abac.LoadSchema(s.schemaFile)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("loaded schema from source",
		"path", s.schemaFile,
		"attr_count", schemaMap.Len(),
	)

	return schemaMap, nil
}

// MemorySource holds a fixed policy set, entity inventory, and schema
// in memory. Used in tests and for programmatic compiles.
type MemorySource struct {
	policies  []*ast.Policy
	entities  *entity.Inventory
	schemaMap *schema.Map
}

// NewMemorySource creates an in-memory source.
func NewMemorySource(policies []*ast.Policy, entities *entity.Inventory, schemaMap *schema.Map) *MemorySource {
	return &MemorySource{
		policies:  policies,
		entities:  entities,
		schemaMap: schemaMap,
	}
}

// LoadPolicies returns the policies stored in memory.
func (s *MemorySource) LoadPolicies(ctx context.Context) ([]*ast.Policy, error) {
	policies := make([]*ast.Policy, len(s.policies))
	copy(policies, s.policies)
	return policies, nil
}

// LoadEntities returns the entity set stored in memory.
func (s *MemorySource) LoadEntities(ctx context.Context, schemaMap *schema.Map) (*entity.Inventory, error) {
	return s.entities, nil
}

// LoadSchema returns the schema stored in memory.
func (s *MemorySource) LoadSchema(ctx context.Context) (*schema.Map, error) {
	return s.schemaMap, nil
}

// SetPolicies replaces the in-memory policy set.
func (s *MemorySource) SetPolicies(policies []*ast.Policy) {
	s.policies = policies
}
