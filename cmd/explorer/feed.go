package main

import (
	"errors"
	"fmt"
	"os"

	"property-explorer/internal/property"

	"gopkg.in/yaml.v3"
)

// Feed is the demo input file: the properties to show and optional attribute weights.
// Without weights the feed's match scores are used.
type Feed struct {
	Weights    property.Weights    `yaml:"weights,omitempty"`
	Properties []property.Property `yaml:"properties"`
}

var errNoFeed = errors.New("no feed given (use --feed)")

// loadFeed reads and checks the feed at path. Properties without an ID are an error
// here so that a typo in the file is reported instead of silently dropped.
func loadFeed(path string) (Feed, error) {
	if path == "" {
		return Feed{}, errNoFeed
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Feed{}, fmt.Errorf("feed: %w", err)
	}
	var f Feed
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Feed{}, fmt.Errorf("feed: %s: %w", path, err)
	}
	seen := make(map[string]int, len(f.Properties))
	for i, p := range f.Properties {
		if p.ID == "" {
			return Feed{}, fmt.Errorf("feed: %s: property %d has no id", path, i)
		}
		if j, dup := seen[p.ID]; dup {
			return Feed{}, fmt.Errorf("feed: %s: property %d repeats id %q from property %d", path, i, p.ID, j)
		}
		seen[p.ID] = i
	}
	return f, nil
}

// weightsFor picks the feed's weights, falling back to the config's.
func weightsFor(f Feed, configured property.Weights) property.Weights {
	if f.Weights != nil {
		return f.Weights
	}
	return configured
}
