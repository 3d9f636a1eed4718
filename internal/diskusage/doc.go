// Package diskusage aggregates the disk usage of a directory tree.
//
// It walks the tree in parallel, stays on the filesystem of the root
// directory, and returns an immutable Item tree in which every directory
// carries the sum of its children, sorted from largest to smallest.
// Entries that cannot be read are dropped instead of failing the analysis.
package diskusage
