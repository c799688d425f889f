// Package batch reads word lists for bulk import into the pronunciation
// dictionary.
package batch
