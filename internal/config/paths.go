// ABOUTME: Standard filesystem paths for api-tryit configuration
// ABOUTME: Resolves ~/.api-tryit/ for global and <project>/.api-tryit/ for project-local files

package config

import (
	"os"
	"path/filepath"
)

const dirName = ".api-tryit"

// EnvHome relocates the user-global directory, e.g. for CI or tests.
const EnvHome = "API_TRYIT_HOME"

// GlobalDir returns the user-global config directory: $API_TRYIT_HOME when
// set, else ~/.api-tryit/.
func GlobalDir() string {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", dirName)
	}
	return filepath.Join(home, dirName)
}

// ProjectDir returns the project-local config directory.
func ProjectDir(projectRoot string) string {
	return filepath.Join(projectRoot, dirName)
}

// AuthFile returns the path to the auth credentials file.
func AuthFile() string {
	return filepath.Join(GlobalDir(), "auth.json")
}

// GlobalConfigFile returns the path to the global config file.
func GlobalConfigFile() string {
	return filepath.Join(GlobalDir(), "config.json")
}

// ProjectConfigFile returns the path to the project-local config file.
func ProjectConfigFile(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), "config.json")
}

// PromptsFile returns the project-local prompt catalog override.
func PromptsFile(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), "prompts.yaml")
}

// WatchedFiles lists the files whose changes affect the available chat models.
func WatchedFiles(projectRoot string) []string {
	return []string{GlobalConfigFile(), ProjectConfigFile(projectRoot), AuthFile()}
}

// EnsureDir creates a directory and all parents if they don't exist.
// Uses 0o700 since the directory holds credentials.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o700)
}
