// Package fec adds Reed-Solomon erasure protection to sealed frames sent
// over lossy datagram links.
//
// Protect splits one sealed frame into data+parity shard datagrams, each
// carrying a small header that names its group, position, and geometry.
// Recover rebuilds the frame from any DataShards of them, in any order.
//
// The division of labor with the frame layer is strict: FEC repairs LOSS,
// never corruption. Shard headers are unauthenticated plaintext; a forged
// or bit-flipped shard can at worst make recovery fail or produce a frame
// that the receiver's AEAD check then rejects. Nothing an attacker does to
// shards yields accepted plaintext.
package fec
