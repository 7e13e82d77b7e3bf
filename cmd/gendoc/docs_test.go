package main

import (
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arduino/go-paths-helper"
	"github.com/stretchr/testify/require"
)

func TestGenerateOperations(t *testing.T) {
	g := NewOpenApiGenerator("1.0.0")
	g.InitOperations()
	spec := g.GetDocs()

	for path, methods := range map[string][]string{
		"/v1/update":               {http.MethodGet},
		"/v1/update/check":         {http.MethodPost},
		"/v1/update/install":       {http.MethodPost},
		"/v1/update/restart":       {http.MethodPost},
		"/v1/update/events":        {http.MethodGet},
		"/v1/settings":             {http.MethodGet},
		"/v1/settings/auto-update": {http.MethodPut},
		"/v1/version":              {http.MethodGet},
	} {
		item, found := spec.Paths.MapOfPathItemValues[path]
		require.True(t, found, path)
		for _, method := range methods {
			_, found := item.MapOfOperationValues[strings.ToLower(method)]
			require.True(t, found, "%s %s", method, path)
		}
	}
	require.Len(t, spec.Tags, len(validTags))
}

func TestGenerateFile(t *testing.T) {
	out := paths.New(filepath.Join(t.TempDir(), "docs", "openapi.yaml"))
	require.NoError(t, generate(out, "1.2.3"))

	content, err := out.ReadFile()
	require.NoError(t, err)
	require.Contains(t, string(content), "openapi:")
	require.Contains(t, string(content), "title: Arduino-App-Updater")
	require.Contains(t, string(content), "/v1/update/install:")
}
