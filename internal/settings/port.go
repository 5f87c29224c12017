package settings

import (
	"fmt"
	"net"
)

// AllocatePort asks the OS for a free TCP port on the loopback interface.
//
// The listener is closed before returning, so the port is only free at the
// moment of the call. Another process can claim it before the managed
// service binds it; the service needs the port unbound, so it is not held.
func AllocatePort() (int, error) {
	ln, err := net.Listen("tcp", net.JoinHostPort(Host, "0"))
	if err != nil {
		return 0, &AllocationError{Err: err}
	}
	defer ln.Close()

	addr, ok := ln.Addr().(*net.TCPAddr)
	if !ok {
		return 0, &AllocationError{Err: fmt.Errorf("unexpected listener address %T", ln.Addr())}
	}
	return addr.Port, nil
}
