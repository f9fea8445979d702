// Package tunnel glues an established handshake to the frame layer and
// keeps running totals of traffic and drops.
//
// An Endpoint owns one direction pair of a session: a sender keyed for
// outbound frames and a receiver keyed for inbound ones. Seal and Open are
// the whole data path; everything else (sockets, retries, FEC grouping,
// scheduling) belongs to the caller. The subpackages do the real work:
//
//   - tunnel/suite:     cipher suite registry, AEAD construction, KDF
//   - tunnel/ascon:     the Ascon AEAD family used on constrained airframes
//   - tunnel/frame:     authenticated datagram framing with replay defense
//   - tunnel/handshake: PQ key agreement bootstrapping a session
//   - tunnel/payload:   optional LZ4 payload compression
//   - tunnel/fec:       Reed-Solomon shard protection for lossy links
package tunnel
