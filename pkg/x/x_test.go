package x

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToHumanMiB(t *testing.T) {
	require.Equal(t, "0.00MiB", ToHumanMiB(0))
	require.Equal(t, "1.50MiB", ToHumanMiB(3*512*1024))
}

func TestBar(t *testing.T) {
	require.Equal(t, "[..........]", Bar(0, 10))
	require.Equal(t, "[#####.....]", Bar(50, 10))
	require.Equal(t, "[##########]", Bar(100, 10))
	require.Equal(t, "[##########]", Bar(140, 10))
	require.Equal(t, "[..........]", Bar(-3, 10))
}
