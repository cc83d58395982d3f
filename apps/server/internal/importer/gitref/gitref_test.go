package gitref_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilsley/bindle/apps/server/internal/importer/gitref"
)

func TestParse_BareOwnerRepo_DefaultsToMain(t *testing.T) {
	for _, raw := range []string{
		"github.com/acme/billing-api",
		"http://github.com/acme/billing-api",
		"https://github.com/acme/billing-api",
		"https://github.com/acme/billing-api/",
	} {
		ref, err := gitref.Parse(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, "acme", ref.Owner, raw)
		assert.Equal(t, "billing-api", ref.Repo, raw)
		assert.Equal(t, "main", ref.Branch, raw)
		assert.False(t, ref.BranchExplicit, raw)
	}
}

func TestParse_GitSuffixStripped(t *testing.T) {
	ref, err := gitref.Parse("https://github.com/acme/billing-api.git")
	require.NoError(t, err)
	assert.Equal(t, "billing-api", ref.Repo)
}

func TestParse_TreeSelectsBranch(t *testing.T) {
	ref, err := gitref.Parse("github.com/acme/billing-api/tree/develop")
	require.NoError(t, err)
	assert.Equal(t, "develop", ref.Branch)
	assert.True(t, ref.BranchExplicit)
}

func TestParse_BranchWithSlashes(t *testing.T) {
	ref, err := gitref.Parse("github.com/acme/billing-api/tree/feature/rate-limits/v2")
	require.NoError(t, err)
	assert.Equal(t, "feature/rate-limits/v2", ref.Branch)
	assert.True(t, ref.BranchExplicit)
}

func TestParse_TreeWithoutBranch_DefaultsToMain(t *testing.T) {
	// "tree" with nothing after it is not a branch selector.
	ref, err := gitref.Parse("github.com/acme/billing-api/tree")
	require.NoError(t, err)
	assert.Equal(t, "main", ref.Branch)
	assert.False(t, ref.BranchExplicit)
}

func TestParse_NonTreeThirdSegment_Ignored(t *testing.T) {
	ref, err := gitref.Parse("github.com/acme/billing-api/pulls/42")
	require.NoError(t, err)
	assert.Equal(t, "main", ref.Branch)
}

func TestParse_NotGitHub_Fails(t *testing.T) {
	for _, raw := range []string{
		"gitlab.com/acme/billing-api",
		"https://bitbucket.org/acme/billing-api",
		"",
	} {
		_, err := gitref.Parse(raw)
		var hostErr gitref.NotGitHubHostError
		require.ErrorAs(t, err, &hostErr, raw)
	}
}

func TestParse_MissingRepoSegment_Fails(t *testing.T) {
	for _, raw := range []string{
		"github.com",
		"github.com/",
		"github.com/acme",
		"https://github.com/acme/",
	} {
		_, err := gitref.Parse(raw)
		var missingErr gitref.MissingRepoSegmentError
		require.ErrorAs(t, err, &missingErr, raw)
	}
}

func TestParse_InvalidIdentifier_Fails(t *testing.T) {
	for _, raw := range []string{
		"github.com/ac me/billing-api",
		"github.com/acme/billing%20api",
		"github.com/acme/billing$api",
	} {
		_, err := gitref.Parse(raw)
		var invalidErr gitref.InvalidIdentifierError
		require.ErrorAs(t, err, &invalidErr, raw)
	}
}

func TestParse_DotsAndUnderscoresAllowed(t *testing.T) {
	ref, err := gitref.Parse("github.com/some_user/dotted.repo-name")
	require.NoError(t, err)
	assert.Equal(t, "some_user", ref.Owner)
	assert.Equal(t, "dotted.repo-name", ref.Repo)
}
