// Package cli defines the bookshelf command tree.
//
// The root command opens the browser. list and lookups mount the same
// catalog core headlessly, wait for it to settle and print the result as
// text, JSON or YAML. serve runs the SQLite-backed development API and logs
// tails the browser's log file.
package cli
