// Package steam locates the Steam installation and the lighthouse
// calibration file that SteamVR keeps for each headset.
package steam

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kevmo314/go-vrcapture/pkg/logger"
)

// DefaultInstallPath is used when the registry has no Steam entry.
const DefaultInstallPath = `C:\Program Files (x86)\Steam`

// NotAvailable stands in for calibration text that could not be read.
const NotAvailable = "N/A"

// swapped out in tests
var lookupInstallPath = registryInstallPath

// InstallPath returns the Steam root from the registry, or
// DefaultInstallPath with a warning when it cannot be found.
func InstallPath() string {
	path, err := lookupInstallPath()
	if err != nil || path == "" {
		logger.WithComponent("steam").Warn().
			Err(err).
			Str("fallback", DefaultInstallPath).
			Msg("steam install path not found in registry")
		return DefaultInstallPath
	}
	return path
}

// LighthouseConfigPath is the calibration file for the headset with the
// given serial number.
func LighthouseConfigPath(root, serial string) string {
	return filepath.Join(root, "config", "lighthouse", strings.ToLower(serial), "config.json")
}

func ReadCalibration(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading calibration: %w", err)
	}
	return string(b), nil
}

type Calibration struct {
	Path  string
	Text  string
	Found bool
}

// LoadCalibration resolves and reads the calibration for serial under root.
// A missing or unreadable file is not an error: Text becomes NotAvailable.
func LoadCalibration(root, serial string) Calibration {
	c := Calibration{Path: LighthouseConfigPath(root, serial), Text: NotAvailable}
	text, err := ReadCalibration(c.Path)
	if err != nil {
		ev := logger.WithComponent("steam").Warn().Err(err).Str("path", c.Path)
		if errors.Is(err, fs.ErrNotExist) {
			ev.Msg("no lighthouse calibration for headset")
		} else {
			ev.Msg("lighthouse calibration unreadable")
		}
		return c
	}
	c.Text = text
	c.Found = true
	return c
}
