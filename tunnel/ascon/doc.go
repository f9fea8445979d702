// Package ascon implements the Ascon v1.2 authenticated ciphers carried on
// the drone data plane: Ascon-AEAD128 and Ascon-AEAD128a.
//
// Design goals:
//   - Software-friendly on small companion computers (no AES-NI required)
//   - One rate-parameterized construction shared by both variants
//   - 128-bit keys and tags, 128-bit nonces (longer nonces are truncated)
//   - Constant-time tag verification
//
// The package exposes two surfaces: Encrypt and Decrypt resolve a variant by
// name per call, matching the suite negotiation layer; Cipher binds a key and
// variant once and implements crypto/cipher.AEAD for use alongside AES-GCM
// and ChaCha20-Poly1305.
package ascon
