// Package idgen provides short, URL-safe unique ids for batch runs and
// annotation submissions, backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for the ids chemnet generates.
const (
	RunPrefix        = "run-"
	SubmissionPrefix = "sub-"
)

// DefaultPrefix is prepended by Generate.
var DefaultPrefix = RunPrefix

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 10

// Generate returns a new unique ID using the default prefix.
func Generate() (string, error) {
	return GenerateWithPrefix(DefaultPrefix)
}

// GenerateWithPrefix returns a new unique ID with the given prefix.
func GenerateWithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}

// MustRun returns a run id, or "run-unknown" if the random source fails.
// Run ids only label log lines and results, so a failure is not fatal.
func MustRun() string {
	id, err := GenerateWithPrefix(RunPrefix)
	if err != nil {
		return RunPrefix + "unknown"
	}
	return id
}
