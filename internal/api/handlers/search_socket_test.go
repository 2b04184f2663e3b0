package handlers_test

import (
	"testing"
	"time"

	"github.com/dom/tour-of-heroes/internal/testutil"
	"github.com/dom/tour-of-heroes/internal/websocket"
	"github.com/stretchr/testify/assert"
)

const wsTimeout = 2 * time.Second

func TestSearchSocket_DebouncedResults(t *testing.T) {
	ts := testutil.NewTestServer(t)
	client := testutil.NewWSClient(t, ts.SearchSocketURL())

	// One burst of keystrokes settles on "magm".
	for _, term := range []string{"m", "ma", "mag", "magm"} {
		client.Search(term)
	}

	heroes := client.WaitForResults(wsTimeout)
	assert.Equal(t, []string{"Magma"}, testutil.HeroNames(heroes))
	client.ExpectNoMessage(5 * ts.Config.SearchDebounce)
}

func TestSearchSocket_RepeatedTermIsDropped(t *testing.T) {
	ts := testutil.NewTestServer(t)
	client := testutil.NewWSClient(t, ts.SearchSocketURL())

	client.Search("dr")
	heroes := client.WaitForResults(wsTimeout)
	assert.Equal(t, []string{"Dr. Nice", "Dr. IQ"}, testutil.HeroNames(heroes))

	client.Search("dr")
	client.ExpectNoMessage(5 * ts.Config.SearchDebounce)
}

func TestSearchSocket_BlankTermYieldsEmptyList(t *testing.T) {
	ts := testutil.NewTestServer(t)
	client := testutil.NewWSClient(t, ts.SearchSocketURL())

	client.Search("   ")
	heroes := client.WaitForResults(wsTimeout)
	assert.Empty(t, heroes)
}

func TestSearchSocket_InvalidFrames(t *testing.T) {
	ts := testutil.NewTestServer(t)
	client := testutil.NewWSClient(t, ts.SearchSocketURL())

	client.Send([]byte("not json"))
	client.WaitForMessage(websocket.MessageTypeError, wsTimeout)

	client.Send([]byte(`{"type":"DANCE","payload":{}}`))
	client.WaitForMessage(websocket.MessageTypeError, wsTimeout)

	// The session survives bad frames.
	client.Search("tor")
	heroes := client.WaitForResults(wsTimeout)
	assert.Equal(t, []string{"Tornado"}, testutil.HeroNames(heroes))
}

func TestSearchSocket_SessionsAreTracked(t *testing.T) {
	ts := testutil.NewTestServer(t)
	client := testutil.NewWSClient(t, ts.SearchSocketURL())

	client.Search("cel")
	client.WaitForResults(wsTimeout)
	assert.Equal(t, 1, ts.Hub.ClientCount())

	client.Close()
	assert.Eventually(t, func() bool {
		return ts.Hub.ClientCount() == 0
	}, wsTimeout, 10*time.Millisecond)
}
