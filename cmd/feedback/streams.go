package feedback

import (
	"errors"
	"io"

	"github.com/arduino/arduino-app-updater/cmd/i18n"
)

// OutputStreamsResult holds what was printed while a JSON format was
// selected, so it can be attached to errors.
type OutputStreamsResult struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}

func (r *OutputStreamsResult) Empty() bool {
	return r.Stdout == "" && r.Stderr == ""
}

func getOutputStreamResult() *OutputStreamsResult {
	return &OutputStreamsResult{
		Stdout: bufferOut.String(),
		Stderr: bufferErr.String(),
	}
}

// DirectStreams returns the raw output streams. It is only available in
// text mode, where writing outside of a Result cannot corrupt the output.
func DirectStreams() (io.Writer, io.Writer, error) {
	if !formatSelected {
		panic("output format not yet selected")
	}
	if format != Text {
		return nil, nil, errors.New(i18n.Tr("available only in text format"))
	}
	return feedbackOut, feedbackErr, nil
}
