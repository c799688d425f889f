// Package archive keeps timestamped copies of files before they are
// overwritten.
package archive
