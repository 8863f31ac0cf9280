package deps

import (
	"os"
	"strings"
)

func readFileQuiet(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// containsGem reports whether a Gemfile.lock's GEM/specs block names gem.
// Gemfile.lock lists specs as "    gemname (version)" lines; a simple
// substring match on "\n    gemname " is adequate without parsing the full
// lockfile grammar.
func containsGem(lockfile, gem string) bool {
	return strings.Contains(lockfile, "\n    "+gem+" (") || strings.Contains(lockfile, "\n    "+gem+"\n")
}
