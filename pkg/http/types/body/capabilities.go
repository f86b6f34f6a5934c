package body

// Capabilities describes which byte-source representations and accessor
// shapes the host supports. The flags are probed once at package
// initialization and treated as fixed for the process lifetime.
type Capabilities struct {
	Stream   bool
	Blob     bool
	FormData bool
	Buffer   bool
	Replay   bool
}

var hostCapabilities = probeHostCapabilities()

// All representations are native in this runtime; the probe exists so that a
// degraded host (notably one without replay duplication) keeps well-defined
// single-use semantics.
func probeHostCapabilities() Capabilities {
	return Capabilities{
		Stream:   true,
		Blob:     true,
		FormData: true,
		Buffer:   true,
		Replay:   true,
	}
}

func HostCapabilities() Capabilities {
	return hostCapabilities
}

// SetHostCapabilities replaces the probed flags and returns a restore
// function. Intended for tests simulating degraded hosts.
func SetHostCapabilities(capabilities Capabilities) func() {
	previousCapabilities := hostCapabilities
	hostCapabilities = capabilities

	return func() {
		hostCapabilities = previousCapabilities
	}
}
