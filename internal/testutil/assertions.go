package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/dom/tour-of-heroes/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes JSON response into v and verifies success
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// AssertErrorResponse verifies error response with expected status and message
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	// Error responses are plain text in this API
	assert.Contains(t, string(body), expectedMessage, "error message mismatch")
}

// AssertContainsHero verifies a hero id exists in a list
func AssertContainsHero(t *testing.T, heroes []domain.Hero, heroID int) {
	t.Helper()
	assert.Contains(t, HeroIDs(heroes), heroID, "hero %d not found", heroID)
}

// AssertNotContainsHero verifies a hero id does not exist in a list
func AssertNotContainsHero(t *testing.T, heroes []domain.Hero, heroID int) {
	t.Helper()
	assert.NotContains(t, HeroIDs(heroes), heroID, "hero %d should not be present", heroID)
}

// HeroIDs returns the ids of heroes in order
func HeroIDs(heroes []domain.Hero) []int {
	ids := make([]int, len(heroes))
	for i, h := range heroes {
		ids[i] = h.ID
	}
	return ids
}

// HeroNames returns the names of heroes in order
func HeroNames(heroes []domain.Hero) []string {
	names := make([]string, len(heroes))
	for i, h := range heroes {
		names[i] = h.Name
	}
	return names
}
