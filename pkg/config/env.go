package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads a .env file from the working directory into the process
// environment. A missing file is fine; explicit environment variables win
// over .env entries.
func LoadEnv() {
	_ = godotenv.Load()
}

// GitHubToken returns the GitHub API token, empty when none is configured.
func GitHubToken() string {
	return os.Getenv("GITHUB_TOKEN")
}
