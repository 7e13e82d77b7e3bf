package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/arduino/go-paths-helper"
	"github.com/goccy/go-yaml"
)

func main() {
	version := flag.String("version", "0.0.0-dev", "API version written in the document")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: gendoc [-version v] <output.yaml>")
		os.Exit(2)
	}

	if err := generate(paths.New(flag.Arg(0)), *version); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func generate(out *paths.Path, version string) error {
	g := NewOpenApiGenerator(version)
	g.InitOperations()

	data, err := g.GetDocs().MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding OpenAPI document: %w", err)
	}
	data, err = yaml.JSONToYAML(data)
	if err != nil {
		return fmt.Errorf("converting OpenAPI document to YAML: %w", err)
	}
	if err := out.Parent().MkdirAll(); err != nil {
		return err
	}
	return out.WriteFile(data)
}
