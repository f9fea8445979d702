// Package handshake establishes one tunnel session between a ground control
// station (the server) and a drone (the client) over any io.ReadWriter.
//
// The exchange is two messages:
//
//  1. Server hello: negotiated algorithm names, a fresh session ID and
//     challenge, an ephemeral KEM public key, and a signature over the
//     transcript by the station's long-term key.
//  2. Client reply: the KEM ciphertext plus an HMAC-SHA256 tag over the
//     exact hello bytes, keyed with the fleet pre-shared key.
//
// The server proves its identity by signature; the drone proves fleet
// membership by PSK. Both sides then expand the KEM shared secret into the
// two directional transport keys. Key lifecycle (where the signer key and
// PSK come from, when to re-handshake) belongs to the caller, as do I/O
// deadlines on the connection.
package handshake
