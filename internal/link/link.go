// Package link defines the transport interface to the panel microcontroller.
package link

// Channel is a bidirectional line-oriented transport to the hardware peer.
// Implementations are not required to be safe for concurrent use; the
// session worker is the sole reader and writer while a run is active.
type Channel interface {
	// WriteLine sends one command line. The newline is appended by the
	// implementation.
	WriteLine(line string) error

	// ReadLine returns the next complete inbound line without its
	// terminator. ok is false when no full line is pending; that is not an
	// error. A non-nil error means the transport has failed and the session
	// cannot continue.
	ReadLine() (line string, ok bool, err error)

	// Close releases the transport.
	Close() error
}
