package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Anything outside [A-Za-z0-9_-] is replaced, one underscore per character
var unsafeCaseNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// SafeCaseFilename turns a case number into a filesystem-safe stem.
// "G.R. No. 1" becomes "G_R__No__1".
func SafeCaseFilename(caseNumber string) string {
	return unsafeCaseNameChars.ReplaceAllString(caseNumber, "_")
}

// FileStem returns the base name of path without its extension
func FileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
