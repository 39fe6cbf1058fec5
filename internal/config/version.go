package config

import (
	"os"
	"strings"
)

// GetVersion returns the component version from the environment (set by
// CI/CD) or from the VERSION file for local development.
func GetVersion() string {
	if envVersion := os.Getenv("APP_VERSION"); envVersion != "" {
		return envVersion
	}

	if content, err := os.ReadFile("VERSION"); err == nil {
		if v := strings.TrimSpace(string(content)); v != "" {
			return v
		}
	}

	return "0.1.0"
}
