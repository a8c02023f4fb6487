// Package link owns the controller connection: the rendezvous discovery
// handshake, the dealer/subscriber socket lifecycle, the telemetry receive
// loop, and the named command dispatcher.
//
// One Client owns its three sockets exclusively. The receive loop is the
// only blocking waiter; lifecycle and dispatcher calls return promptly.
// Collaborators observe the link through the Event stream.
package link
