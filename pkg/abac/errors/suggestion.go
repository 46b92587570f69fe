package errors

import (
	"fmt"
	"strings"
)

// SuggestAttributeKey suggests possible attribute keys when an unknown
// attribute is referenced. It uses Levenshtein distance to find similar
// key names.
func SuggestAttributeKey(unknown string, validKeys []string) string {
	if len(validKeys) == 0 {
		return ""
	}

	// Find the closest match
	minDistance := 1000
	var bestMatch string

	for _, key := range validKeys {
		dist := levenshteinDistance(unknown, key)
		if dist < minDistance {
			minDistance = dist
			bestMatch = key
		}
	}

	// Only suggest if the distance is reasonable (< 5 edits)
	if minDistance < 5 {
		return fmt.Sprintf("Did you mean '%s'?", bestMatch)
	}

	// If no close match, suggest a few known keys
	if len(validKeys) > 5 {
		return fmt.Sprintf("Valid attributes include: %s, ...", strings.Join(validKeys[:5], ", "))
	}
	return fmt.Sprintf("Valid attributes: %s", strings.Join(validKeys, ", "))
}

// SuggestOperator suggests valid operator tags when an unknown operator
// is specified.
func SuggestOperator(unknown string, validOperators []string) string {
	if len(validOperators) == 0 {
		return ""
	}

	// Find the closest match
	minDistance := 1000
	var bestMatch string

	for _, op := range validOperators {
		dist := levenshteinDistance(unknown, op)
		if dist < minDistance {
			minDistance = dist
			bestMatch = op
		}
	}

	if minDistance < 5 {
		return fmt.Sprintf("Did you mean '%s'?", bestMatch)
	}

	return fmt.Sprintf("Valid operators: %s", strings.Join(validOperators, ", "))
}

// SuggestValue suggests valid schema values when a value is not found in
// an attribute's id table.
func SuggestValue(unknown string, validValues []string) string {
	if len(validValues) == 0 {
		return ""
	}

	minDistance := 1000
	var bestMatch string

	for _, value := range validValues {
		dist := levenshteinDistance(unknown, value)
		if dist < minDistance {
			minDistance = dist
			bestMatch = value
		}
	}

	if minDistance < 5 {
		return fmt.Sprintf("Did you mean '%s'?", bestMatch)
	}

	if len(validValues) > 5 {
		return fmt.Sprintf("Valid values include: %s, ...", strings.Join(validValues[:5], ", "))
	}
	return fmt.Sprintf("Valid values: %s", strings.Join(validValues, ", "))
}

// SuggestMissingField suggests adding a required field.
func SuggestMissingField(fieldName string, exampleValue string) string {
	if exampleValue != "" {
		return fmt.Sprintf("Add '%s: %s' to the document", fieldName, exampleValue)
	}
	return fmt.Sprintf("Add '%s' field to the document", fieldName)
}

// levenshteinDistance computes the Levenshtein distance between two strings.
// This is used for finding similar attribute/operator names for suggestions.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	len1 := len(s1)
	len2 := len(s2)

	matrix := make([][]int, len1+1)
	for i := range matrix {
		matrix[i] = make([]int, len2+1)
	}

	for i := 0; i <= len1; i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len2; j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len1; i++ {
		for j := 1; j <= len2; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			matrix[i][j] = min3(
				matrix[i-1][j]+1,      // Deletion
				matrix[i][j-1]+1,      // Insertion
				matrix[i-1][j-1]+cost, // Substitution
			)
		}
	}

	return matrix[len1][len2]
}

// min3 returns the minimum of three integers.
func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
