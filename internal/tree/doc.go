// Package tree walks an analyzed disk usage tree and decides what to display.
//
// Render yields, in pre-order, every node whose share of its parent is above
// the configured threshold and that lies within the configured depth, paired
// with the DisplayInfo a sink needs to draw tree branches.
package tree
