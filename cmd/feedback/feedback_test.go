package feedback

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

type testResult struct {
	Status string `json:"status"`
}

func (r testResult) String() string { return "status: " + r.Status }
func (r testResult) Data() any      { return r }

func TestPrintResult(t *testing.T) {
	testCases := []struct {
		format   OutputFormat
		expected string
	}{
		{Text, "status: idle\n"},
		{JSON, "{\n  \"status\": \"idle\"\n}\n"},
		{MinifiedJSON, "{\"status\":\"idle\"}\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.format.String(), func(t *testing.T) {
			reset()
			t.Cleanup(reset)
			var out bytes.Buffer
			SetOut(&out)
			SetFormat(tc.format)

			PrintResult(testResult{Status: "idle"})
			require.Equal(t, tc.expected, out.String())
		})
	}
}

func TestWarningsAreAttachedToJSON(t *testing.T) {
	reset()
	t.Cleanup(reset)
	var out bytes.Buffer
	SetOut(&out)
	SetFormat(MinifiedJSON)

	Warnf("daemon not reachable on port %d", 8800)
	PrintResult(testResult{Status: "idle"})
	require.JSONEq(t, `{"status":"idle","warnings":["daemon not reachable on port 8800"]}`, out.String())
}

func TestDirectStreams(t *testing.T) {
	reset()
	t.Cleanup(reset)
	SetFormat(JSON)
	_, _, err := DirectStreams()
	require.Error(t, err)

	reset()
	var out bytes.Buffer
	SetOut(&out)
	SetFormat(Text)
	stdout, _, err := DirectStreams()
	require.NoError(t, err)
	_, _ = stdout.Write([]byte("raw"))
	require.Equal(t, "raw", out.String())
}

func TestParseOutputFormat(t *testing.T) {
	f, ok := ParseOutputFormat("jsonmini")
	require.True(t, ok)
	require.Equal(t, MinifiedJSON, f)

	_, ok = ParseOutputFormat("yaml")
	require.False(t, ok)
}
