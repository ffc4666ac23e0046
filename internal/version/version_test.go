package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		commit   string
		expected string
	}{
		{name: "development build", version: "development", commit: "unknown", expected: "development"},
		{name: "release with commit", version: "1.2.0", commit: "abc1234", expected: "1.2.0+abc1234"},
		{name: "empty commit", version: "1.2.0", commit: "", expected: "1.2.0"},
		{name: "unknown commit", version: "2.0.0", commit: "unknown", expected: "2.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origVersion, origCommit := Version, Commit
			t.Cleanup(func() {
				Version = origVersion
				Commit = origCommit
			})

			Version = tt.version
			Commit = tt.commit

			assert.Equal(t, tt.expected, String())
		})
	}
}
