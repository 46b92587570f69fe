// Package analysis measures attribute distributions over entity and
// lab populations: Shannon entropy, information gain, and ID3
// decision tree induction. Policy authors use it to find which
// attributes actually discriminate between decisions before encoding
// them into match keys.
package analysis
