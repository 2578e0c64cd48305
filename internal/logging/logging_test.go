package logging

import "testing"

func TestLevelFor(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		verbosity int
		expected  string
	}{
		{name: "default", level: "", verbosity: 0, expected: "info"},
		{name: "configured debug", level: "debug", verbosity: 0, expected: "debug"},
		{name: "single v overrides config", level: "info", verbosity: 1, expected: "debug"},
		{name: "double v is trace", level: "info", verbosity: 2, expected: "trace"},
		{name: "extra v stays trace", level: "", verbosity: 5, expected: "trace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevelFor(tt.level, tt.verbosity); got != tt.expected {
				t.Errorf("LevelFor(%q, %d) = %q, want %q", tt.level, tt.verbosity, got, tt.expected)
			}
		})
	}
}
