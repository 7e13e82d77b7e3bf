package completion

import (
	"bytes"
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/arduino/arduino-app-updater/cmd/feedback"
)

func TestCompletionCommand(t *testing.T) {
	var out bytes.Buffer
	feedback.SetOut(&out)
	feedback.SetFormat(feedback.Text)

	testCases := []struct {
		args    []string
		want    string
		wantErr bool
	}{
		{args: []string{"completion", "bash"}, want: "bash completion V2 for arduino-app-updater"},
		{args: []string{"completion", "zsh"}, want: "#compdef arduino-app-updater"},
		{args: []string{"completion", "fish", "--no-descriptions"}, want: "fish completion for arduino-app-updater"},
		{args: []string{"completion", "powershell"}, want: "powershell completion for arduino-app-updater"},
		{args: []string{"completion", "tcsh"}, wantErr: true},
		{args: []string{"completion"}, wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.args[len(tc.args)-1], func(t *testing.T) {
			out.Reset()
			root := &cobra.Command{Use: "arduino-app-updater"}
			root.AddCommand(NewCompletionCommand())
			root.SetArgs(tc.args)
			root.SetOut(io.Discard)
			root.SetErr(io.Discard)

			err := root.Execute()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Contains(t, out.String(), tc.want)
		})
	}
}
