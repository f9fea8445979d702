// Package frame seals application payloads into the tunnel's wire format
// and opens them on the far side.
//
// Each frame is:
//
//	header (22) || ciphertext+tag
//
// The header is authenticated as associated data but never encrypted, so
// middleboxes and the receiver can route on it before paying for a
// decryption. The AEAD nonce is never transmitted: both sides derive it
// deterministically from the epoch and sequence number, saving 12 bytes per
// frame on the radio link.
//
// A Sender owns the outbound sequence counter and refuses to pass the rekey
// threshold. A Receiver validates headers, enforces a sliding anti-replay
// window, and authenticates before any replay state is committed, so forged
// traffic cannot evict sequence numbers that legitimate frames still need.
package frame
