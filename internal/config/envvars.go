// ABOUTME: ${VAR} and ${VAR:-default} expansion for string settings
// ABOUTME: Applied after merging so project files can reference secrets kept in the environment

package config

import (
	"os"
	"regexp"
)

// envRef matches ${NAME} and ${NAME:-fallback}. A bare $NAME is left alone
// so URLs and glob patterns containing '$' survive.
var envRef = regexp.MustCompile(`\$\{(\w+)(?::-([^}]*))?\}`)

// ResolveEnvVars expands environment references in the string settings,
// including workspace globs and the env map.
func ResolveEnvVars(s *Settings) {
	for _, p := range []*string{&s.Model, &s.BaseURL, &s.RequestTimeout, &s.LogLevel} {
		*p = expandEnv(*p)
	}
	expandAll(s.Models)
	expandAll(s.Workspace.Include)
	expandAll(s.Workspace.Exclude)
	for k, v := range s.Env {
		s.Env[k] = expandEnv(v)
	}
}

func expandAll(values []string) {
	for i, v := range values {
		values[i] = expandEnv(v)
	}
}

// expandEnv substitutes each reference. Unset or empty variables become
// the fallback, or "" without one.
func expandEnv(s string) string {
	if s == "" {
		return s
	}
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		m := envRef.FindStringSubmatch(ref)
		if v := os.Getenv(m[1]); v != "" {
			return v
		}
		return m[2]
	})
}
