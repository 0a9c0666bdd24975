//go:build !windows

package gpu

// CreateHardwareDevice always fails outside Windows.
func CreateHardwareDevice() (Device, Context, error) {
	return nil, nil, ErrUnsupported
}
