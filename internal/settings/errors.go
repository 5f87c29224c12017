package settings

import (
	"errors"
	"fmt"
)

// Error classes returned by the resolver. Use errors.Is to test for a class.
var (
	// ErrConnectivity marks a mirror that could not be reached at all.
	// The resolver recovers from it with the fallback download URL.
	ErrConnectivity = errors.New("mirror unreachable")
	// ErrProtocol marks a mirror that answered with an error status or an
	// unparsable document.
	ErrProtocol = errors.New("mirror protocol error")
	// ErrAllocation marks a failure to obtain a free port from the OS.
	ErrAllocation = errors.New("port allocation failed")
	// ErrDirectoryCreation marks a failure to create a directory on disk.
	ErrDirectoryCreation = errors.New("directory creation failed")
)

// ConnectivityError wraps a network failure that prevented talking to the mirror.
type ConnectivityError struct {
	URL string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("connecting to mirror %q: %v", e.URL, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

func (e *ConnectivityError) Is(target error) bool { return target == ErrConnectivity }

// ProtocolError reports a mirror response that could not be used.
// StatusCode is zero when the status was fine but the body was not.
type ProtocolError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *ProtocolError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("mirror %q returned status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("parsing mirror response from %q: %v", e.URL, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

func (e *ProtocolError) Is(target error) bool { return target == ErrProtocol }

// AllocationError reports that no ephemeral port could be bound.
type AllocationError struct {
	Err error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("allocating free port: %v", e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }

func (e *AllocationError) Is(target error) bool { return target == ErrAllocation }

// DirectoryCreationError reports a directory that could not be created.
type DirectoryCreationError struct {
	Path string
	Err  error
}

func (e *DirectoryCreationError) Error() string {
	return fmt.Sprintf("creating directory %s: %v", e.Path, e.Err)
}

func (e *DirectoryCreationError) Unwrap() error { return e.Err }

func (e *DirectoryCreationError) Is(target error) bool { return target == ErrDirectoryCreation }
