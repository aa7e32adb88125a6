//go:build !linux && !windows

package platform

// NewDefaultBackend reports that no window backend exists for this OS.
func NewDefaultBackend(display string) (Backend, error) {
	return nil, ErrUnsupportedPlatform
}
