package cmd

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	key, err := parseKey("9161", "session key")
	require.NoError(t, err)
	assert.Equal(t, 9161, key)

	_, err = parseKey("monza", "session key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session key")
	assert.Contains(t, err.Error(), "monza")
}

func TestSessionsCmdRejectsBadKey(t *testing.T) {
	cmd := newSessionsCmd()
	cmd.SetArgs([]string{"not-a-key"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "meeting key")
}

func TestCalendarCmdPrintsTable(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"meeting_key":1219,"meeting_name":"Singapore Grand Prix",
			 "meeting_official_name":"Formula 1 Singapore Airlines Singapore Grand Prix 2023",
			 "circuit_short_name":"Singapore","year":2023}
		]`))
	}))
	defer upstream.Close()
	t.Setenv("OPENF1_BASE_URL", upstream.URL)

	out := captureStdout(t, func() {
		cmd := newCalendarCmd()
		cmd.SetArgs([]string{"--year", "2023"})
		require.NoError(t, cmd.Execute())
	})

	assert.Contains(t, out, "Singapore")
	assert.Contains(t, out, "1219")
}

func TestCalendarCmdUnknownYear(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[]"))
	}))
	defer upstream.Close()
	t.Setenv("OPENF1_BASE_URL", upstream.URL)

	cmd := newCalendarCmd()
	cmd.SetArgs([]string{"--year", "1949"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	assert.Error(t, cmd.Execute())
}

// captureStdout swaps os.Stdout for a pipe while fn runs. The command
// table output and the zerolog output both go to stdout.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	orig := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	require.NoError(t, w.Close())
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}
