//go:build !linux && !windows

package platform

import "fmt"

// nativeBackend has no implementation here; auto falls through to an error.
const nativeBackend Backend = "native"

func openNative(NativeOptions) (Surface, error) {
	return nil, fmt.Errorf("%w: no native desktop surface", ErrBackendUnsupported)
}
