// Package dataset parses the textual lab corpus format used to study
// attribute distributions: userAttrib and resourceAttrib records with
// closed key vocabularies, plus verbatim rule lines. Parsed records
// feed the analysis package.
package dataset
