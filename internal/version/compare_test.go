package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

func TestCheckConfigCompatibility(t *testing.T) {
	tests := []struct {
		name          string
		binaryVersion string
		configVersion string
		expectError   bool
		errorContains string
	}{
		{
			name:          "exact match",
			binaryVersion: "1.2.0",
			configVersion: "1.2.0",
		},
		{
			name:          "config patch higher",
			binaryVersion: "1.2.0",
			configVersion: "1.2.5",
		},
		{
			name:          "older config minor",
			binaryVersion: "1.3.0",
			configVersion: "1.2.0",
		},
		{
			name:          "newer config minor",
			binaryVersion: "1.2.0",
			configVersion: "1.3.0",
			expectError:   true,
			errorContains: "config requires 1.3.x",
		},
		{
			name:          "major version differs",
			binaryVersion: "2.0.0",
			configVersion: "1.2.0",
			expectError:   true,
			errorContains: "major version mismatch",
		},
		{
			name:          "binary is main",
			binaryVersion: "main",
			configVersion: "9.0.0",
		},
		{
			name:          "config is main",
			binaryVersion: "1.2.0",
			configVersion: "main",
		},
		{
			name:          "v prefix on both",
			binaryVersion: "v1.2.0",
			configVersion: "v1.2.0",
		},
		{
			name:          "prerelease version",
			binaryVersion: "1.2.0-alpha",
			configVersion: "1.2.0",
		},
		{
			name:          "invalid binary version",
			binaryVersion: "not-a-version",
			configVersion: "1.2.0",
			expectError:   true,
			errorContains: "invalid binary version",
		},
		{
			name:          "invalid config version",
			binaryVersion: "1.2.0",
			configVersion: "not-a-version",
			expectError:   true,
			errorContains: "invalid config version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckConfigCompatibility(tt.binaryVersion, tt.configVersion)

			if tt.expectError {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodeInvalidConfiguration, errors.GetCode(err))
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, Version, GetVersion())
}
