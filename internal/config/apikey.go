package config

import (
	"fmt"
	"os"
)

// ResolveAPIKey returns the credential named by source: "config" takes the
// inline value from the config file, "env" (the default) reads envVar from
// the environment. The provider API key and repository access tokens share
// this lookup.
func ResolveAPIKey(source, inline, envVar string) (string, error) {
	switch source {
	case "config":
		if inline == "" {
			return "", fmt.Errorf("api_key_source is %q but api_key is empty", source)
		}
		return inline, nil
	case "env", "":
		if envVar == "" {
			return "", fmt.Errorf("no environment variable name for api_key_source %q", source)
		}
		v := os.Getenv(envVar)
		if v == "" {
			return "", fmt.Errorf("environment variable %s is empty", envVar)
		}
		return v, nil
	default:
		return "", fmt.Errorf("unsupported api_key_source %q", source)
	}
}

// RepoTokenEnvVar names the conventional environment variable holding an
// access token for the given repository host. Empty when the host has no
// convention.
func RepoTokenEnvVar(repoType string) string {
	switch repoType {
	case "github":
		return "GITHUB_TOKEN"
	case "gitlab":
		return "GITLAB_TOKEN"
	case "bitbucket":
		return "BITBUCKET_TOKEN"
	default:
		return ""
	}
}
