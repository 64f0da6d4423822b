package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// CheckConfigCompatibility reports whether a configuration file written for
// configVersion can be read by a binary at binaryVersion.
//
// Compatibility Rules:
//   - If either version is "main" (development build), the check is skipped
//   - Major versions must match exactly
//   - Minor versions of the file must not be newer than the binary
//
// Examples:
//   - Binary 1.2.0, config 1.2.5 -> OK (patch differs)
//   - Binary 1.3.0, config 1.2.0 -> OK (older file)
//   - Binary 1.2.0, config 1.3.0 -> ERROR (file is newer)
//   - Binary 2.0.0, config 1.2.0 -> ERROR (major differs)
func CheckConfigCompatibility(binaryVersion, configVersion string) error {
	binaryVersion = strings.TrimPrefix(binaryVersion, "v")
	configVersion = strings.TrimPrefix(configVersion, "v")

	if binaryVersion == "main" || configVersion == "main" {
		return nil
	}

	binary, err := semver.NewVersion(binaryVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid binary version '%s'", binaryVersion)
	}

	config, err := semver.NewVersion(configVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid config version '%s'", configVersion)
	}

	if binary.Major() != config.Major() {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "major version mismatch: binary is %d.x.x but config requires %d.x.x",
			binary.Major(), config.Major())
	}

	if config.Minor() > binary.Minor() {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "config requires %d.%d.x but binary is %d.%d.x",
			config.Major(), config.Minor(), binary.Major(), binary.Minor())
	}

	return nil
}
