// Package testutil provides shared test helpers.
package testutil

import (
	"testing"

	"github.com/rs/zerolog"
)

// Logger returns a logger that writes through the test's log output, so
// composition narration shows up only for failing tests run with -v.
func Logger(t *testing.T) zerolog.Logger {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
}
