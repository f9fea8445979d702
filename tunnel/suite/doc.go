// Package suite is the negotiation catalog for the tunnel: the key
// encapsulation mechanisms, signature schemes, and AEAD ciphers a peer may
// offer, and the rules for composing them.
//
// A suite is written cs-<kem>-<aead>-<sig>, for example
// cs-mlkem768-aesgcm-mldsa65. Component names are matched after alias
// normalization (lowercase, alphanumerics only), so ML-KEM-768, mlkem768 and
// the legacy kyber768 all resolve to the same entry. Composition requires the
// KEM and the signature scheme to sit at the same NIST security level.
//
// The package also owns the mapping from AEAD tokens to cipher.AEAD
// instances and the HKDF expansion of a KEM shared secret into the two
// directional transport keys.
package suite
