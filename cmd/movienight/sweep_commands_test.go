package main

import (
	"errors"
	"testing"

	"movienight/internal/services"
)

func TestSweepCommandsRequireOMDbKey(t *testing.T) {
	env := setupCLITestEnv(t)

	for _, args := range [][]string{
		{"enrich"},
		{"enrich", "--id", "1"},
		{"trailers"},
		{"trends"},
		{"discover"},
		{"refresh"},
	} {
		_, _, err := runCLI(t, args, env.configPath)
		if err == nil {
			t.Fatalf("%v: expected configuration error without an OMDb key", args)
		}
		if !errors.Is(err, services.ErrConfiguration) {
			t.Fatalf("%v: expected ErrConfiguration, got %v", args, err)
		}
		requireContains(t, err.Error(), "omdb.api_key is required")
	}
}
