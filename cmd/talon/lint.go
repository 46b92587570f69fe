package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"osprey-hq/talon/pkg/abac/errors"
	"osprey-hq/talon/pkg/abac/parser"
	"osprey-hq/talon/pkg/abac/validator"
	"osprey-hq/talon/pkg/cli"
)

var lintFlags struct {
	file   string
	dir    string
	strict bool
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate policy files",
	Long: `Validate policy files for syntax and semantic errors.

The lint command parses policy documents (JSON, JSONC, or YAML) and
performs comprehensive validation:
  - Document syntax and structure
  - Rule identifiers (presence, uniqueness)
  - Condition shape (nesting depth, operand counts)
  - Attribute and environment references
  - Comparisons that can never hold at runtime

Examples:
  # Lint a single file
  talon lint --file policy.json

  # Lint a directory
  talon lint --dir policies/

  # Strict parsing (unknown document fields become errors)
  talon lint --dir policies/ --strict

  # JSON output for CI/CD
  talon lint --dir policies/ --format json`,
	RunE: lintPolicies,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "policy file to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of policy files")
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "reject unknown document fields")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

var policyFileExtensions = []string{".json", ".jsonc", ".yaml", ".yml"}

func lintPolicies(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" && lintFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	var files []string
	if lintFlags.file != "" {
		files = append(files, lintFlags.file)
	}
	if lintFlags.dir != "" {
		entries, err := os.ReadDir(lintFlags.dir)
		if err != nil {
			return fmt.Errorf("failed to list policy files: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			for _, valid := range policyFileExtensions {
				if ext == valid {
					files = append(files, filepath.Join(lintFlags.dir, entry.Name()))
					break
				}
			}
		}
		sort.Strings(files)
	}

	if len(files) == 0 {
		return fmt.Errorf("no policy files found")
	}

	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validatePolicyFile(file))
	}

	if lintFlags.format == "json" {
		return outputJSON(results)
	}
	return outputText(results)
}

// ValidationResult represents the validation result for a single policy file.
type ValidationResult struct {
	File   string            `json:"file"`
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error.
type ValidationError struct {
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
	Message    string `json:"message"`
	Type       string `json:"type,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func validatePolicyFile(path string) ValidationResult {
	result := ValidationResult{File: path, Valid: true}

	p := parser.NewParser().WithStrictMode(lintFlags.strict)
	policy, err := p.Parse(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, collectErrors(err)...)
		return result
	}

	if err := validator.NewValidator().Validate(policy); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, collectErrors(err)...)
	}

	return result
}

func collectErrors(err error) []ValidationError {
	if errList, ok := err.(*errors.ErrorList); ok {
		out := make([]ValidationError, 0, len(errList.Errors))
		for _, e := range errList.Errors {
			out = append(out, toValidationError(e))
		}
		return out
	}
	if abacErr, ok := err.(*errors.Error); ok {
		return []ValidationError{toValidationError(abacErr)}
	}
	return []ValidationError{{Message: err.Error()}}
}

func toValidationError(e *errors.Error) ValidationError {
	return ValidationError{
		Line:       e.Location.Line,
		Column:     e.Location.Column,
		Message:    e.Message,
		Type:       string(e.Type),
		Suggestion: e.Suggestion,
	}
}

func outputText(results []ValidationResult) error {
	totalErrors := 0

	for _, result := range results {
		fmt.Printf("Validating %s...\n", result.File)

		if result.Valid {
			fmt.Println("✓ Syntax valid")
			fmt.Println("✓ All rules have valid conditions")
		}

		for _, err := range result.Errors {
			fmt.Printf("✗ Error: %s", err.Message)
			if err.Line > 0 {
				fmt.Printf(" (line %d", err.Line)
				if err.Column > 0 {
					fmt.Printf(", col %d", err.Column)
				}
				fmt.Print(")")
			}
			if err.Type != "" {
				fmt.Printf(" [%s]", err.Type)
			}
			fmt.Println()
			if err.Suggestion != "" {
				fmt.Printf("  suggestion: %s\n", err.Suggestion)
			}
			totalErrors++
		}

		fmt.Println()
	}

	fmt.Println("Summary:")
	fmt.Printf("  %d file(s), %d error(s)\n", len(results), totalErrors)

	if totalErrors > 0 {
		return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
	}
	return nil
}

func outputJSON(results []ValidationResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		return err
	}
	for _, r := range results {
		if !r.Valid {
			return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
		}
	}
	return nil
}
