// Package metadata classifies filesystem entries for disk usage analysis.
//
// A Provider answers, for a single path, whether it is a directory, how many
// bytes it accounts for and which volume it lives on. Symbolic links are never
// followed: a link is reported as a file of its own size.
package metadata
