package build_test

import (
	"testing"

	"github.com/rohmanhakim/coffee-indicators/internal/build"
	"github.com/stretchr/testify/assert"
)

func restoreBuildVars(t *testing.T) {
	t.Helper()
	version, commit, buildTime := build.Version, build.Commit, build.BuildTime
	t.Cleanup(func() {
		build.Version, build.Commit, build.BuildTime = version, commit, buildTime
	})
}

func TestFullVersion(t *testing.T) {
	restoreBuildVars(t)

	tests := []struct {
		name    string
		version string
		commit  string
		want    string
	}{
		{"default values", "dev", "none", "dev+none"},
		{"version with commit", "1.0.0", "abc123", "1.0.0+abc123"},
		{"version with empty commit", "1.0.0", "", "1.0.0+"},
		{"semver with long commit hash", "2.1.0-beta", "89dece58db957dbc4a9d03962b0411d05f9e37a5", "2.1.0-beta+89dece58db957dbc4a9d03962b0411d05f9e37a5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			build.Version = tt.version
			build.Commit = tt.commit

			assert.Equal(t, tt.want, build.FullVersion())
		})
	}
}

func TestUserAgent(t *testing.T) {
	restoreBuildVars(t)
	build.Version = "1.2.0"

	assert.Equal(t, "coffee-indicators/1.2.0 (+https://github.com/rohmanhakim/coffee-indicators)", build.UserAgent())
}

func TestCurrent(t *testing.T) {
	restoreBuildVars(t)
	build.Version, build.Commit, build.BuildTime = "1.2.0", "abc123", "2025-01-10T00:00:00Z"

	assert.Equal(t, build.Info{Version: "1.2.0", Commit: "abc123", BuildTime: "2025-01-10T00:00:00Z"}, build.Current())
}
