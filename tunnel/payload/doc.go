// Package payload implements the optional compression step applied to
// application payloads before they are sealed into frames.
//
// Every encoded payload starts with a one-byte flag: 0x00 for raw, 0x01 for
// an LZ4-framed body. Encode compresses only when it actually shrinks the
// payload, so incompressible data (already-compressed video, ciphertext)
// costs one byte and no CPU on the decode side. LZ4 is used at its fastest
// level; on the radios this link runs over, ratio is worth far less than
// latency.
package payload
