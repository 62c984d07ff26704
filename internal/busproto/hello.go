package busproto

// The conventional bus-daemon path and interface every peer connection
// answers regardless of what higher-level vtables it also carries —
// the D-Bus-derived "org.freedesktop.DBus.Hello" convention spec.md
// §4.8 calls out so generic inspection tools that probe this path
// before speaking an application interface still get a reply.
const (
	HelloPath   = "/org/freedesktop/DBus"
	HelloIface  = "org.freedesktop.DBus"
	HelloMethod = "Hello"
)

// fakeUniqueName is the fixed identifier handed back from Hello. This
// transport has no bus daemon assigning real per-connection unique
// names, so a constant stand-in is all the stub needs to return.
const fakeUniqueName = ":1.0"

// InstallHello attaches the standard Hello stub to peer (spec.md
// §4.8). Call it once per accepted connection, alongside whatever
// application-specific vtables the caller installs.
func InstallHello(peer *Peer) {
	peer.Handle(HelloPath, HelloIface, HelloMethod, func(msg Message) (any, error) {
		return fakeUniqueName, nil
	})
}
