//go:build windows

package steam

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

var registryKeys = []string{
	`SOFTWARE\Valve\Steam`,
	`SOFTWARE\Wow6432Node\Valve\Steam`,
}

func registryInstallPath() (string, error) {
	var errs []error
	for _, path := range registryKeys {
		k, err := registry.OpenKey(registry.LOCAL_MACHINE, path, registry.QUERY_VALUE)
		if err != nil {
			errs = append(errs, fmt.Errorf(`HKLM\%s: %w`, path, err))
			continue
		}
		value, _, err := k.GetStringValue("InstallPath")
		k.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf(`HKLM\%s\InstallPath: %w`, path, err))
			continue
		}
		if value != "" {
			return value, nil
		}
	}
	return "", errors.Join(errs...)
}
