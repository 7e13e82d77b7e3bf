package update

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProgressTracker(t *testing.T) {
	testCases := []struct {
		name     string
		events   []ProgressEvent
		expected []int
	}{
		{
			name:     "rounds to nearest percent",
			events:   []ProgressEvent{{Kind: Started, TotalBytes: 3}, {Kind: Progress, ChunkBytes: 1}, {Kind: Progress, ChunkBytes: 1}},
			expected: []int{33, 67},
		},
		{
			name:     "small chunks do not repeat the same percent",
			events:   []ProgressEvent{{Kind: Started, TotalBytes: 1000}, {Kind: Progress, ChunkBytes: 1}, {Kind: Progress, ChunkBytes: 1}, {Kind: Progress, ChunkBytes: 10}},
			expected: []int{1},
		},
		{
			name:     "overflow is clamped",
			events:   []ProgressEvent{{Kind: Started, TotalBytes: 10}, {Kind: Progress, ChunkBytes: 20}},
			expected: []int{100},
		},
		{
			name:     "unknown total waits for finished",
			events:   []ProgressEvent{{Kind: Started}, {Kind: Progress, ChunkBytes: 20}, {Kind: Finished}},
			expected: []int{100},
		},
		{
			name:     "finished forces 100",
			events:   []ProgressEvent{{Kind: Started, TotalBytes: 1000}, {Kind: Progress, ChunkBytes: 994}, {Kind: Finished}},
			expected: []int{99, 100},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var p progressTracker
			var got []int
			for _, e := range tc.events {
				if p.apply(e) {
					got = append(got, p.percent)
				}
			}
			require.Equal(t, tc.expected, got)
		})
	}
}
