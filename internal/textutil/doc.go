// Package textutil provides filename sanitization and small text helpers
// shared by the reporting layer and the CLI.
package textutil
