package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAPIKeyFromEnv(t *testing.T) {
	t.Setenv("REPOWIKI_TEST_KEY", "sk-12345")

	key, err := ResolveAPIKey("env", "", "REPOWIKI_TEST_KEY")
	require.NoError(t, err)
	assert.Equal(t, "sk-12345", key)
}

func TestResolveAPIKeyEmptySourceDefaultsToEnv(t *testing.T) {
	t.Setenv("REPOWIKI_TEST_KEY", "sk-67890")

	key, err := ResolveAPIKey("", "", "REPOWIKI_TEST_KEY")
	require.NoError(t, err)
	assert.Equal(t, "sk-67890", key)
}

func TestResolveAPIKeyFromConfig(t *testing.T) {
	key, err := ResolveAPIKey("config", "sk-inline", "")
	require.NoError(t, err)
	assert.Equal(t, "sk-inline", key)
}

func TestResolveAPIKeyErrors(t *testing.T) {
	_, err := ResolveAPIKey("env", "", "REPOWIKI_TEST_UNSET_VAR")
	assert.Error(t, err)

	_, err = ResolveAPIKey("env", "", "")
	assert.Error(t, err)

	_, err = ResolveAPIKey("config", "", "")
	assert.Error(t, err)

	_, err = ResolveAPIKey("vault", "", "")
	assert.Error(t, err)
}

func TestRepoTokenEnvVar(t *testing.T) {
	assert.Equal(t, "GITHUB_TOKEN", RepoTokenEnvVar("github"))
	assert.Equal(t, "GITLAB_TOKEN", RepoTokenEnvVar("gitlab"))
	assert.Equal(t, "BITBUCKET_TOKEN", RepoTokenEnvVar("bitbucket"))
	assert.Empty(t, RepoTokenEnvVar("local"))
}
