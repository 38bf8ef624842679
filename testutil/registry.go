package testutil

import (
	"time"

	"github.com/skosovsky/modelfn"
)

// NewTestRegistry returns a Registry with long timeout and panic recovery enabled,
// suitable for tests.
func NewTestRegistry(tools ...modelfn.Tool) *modelfn.Registry {
	reg := modelfn.NewRegistry(
		modelfn.WithDefaultTimeout(30*time.Second),
		modelfn.WithRecoverPanics(true),
	)
	for _, t := range tools {
		reg.Register(t)
	}
	return reg
}
