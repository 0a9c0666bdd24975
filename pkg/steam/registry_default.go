//go:build !windows

package steam

import "errors"

func registryInstallPath() (string, error) {
	return "", errors.New("the registry is only available on windows")
}
