package suite

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultSuiteID is the bootstrap suite used when callers do not pick one.
const DefaultSuiteID = "cs-mlkem768-aesgcm-mldsa65"

// AEAD tokens understood by NewAEAD.
const (
	TokenAESGCM           = "aesgcm"
	TokenChaCha20Poly1305 = "chacha20poly1305"
	TokenAscon128a        = "ascon128a"
)

var (
	ErrUnknownKEM       = errors.New("suite: unknown KEM")
	ErrUnknownSignature = errors.New("suite: unknown signature scheme")
	ErrUnknownAEAD      = errors.New("suite: unknown AEAD token")
	ErrRetiredAEAD      = errors.New("suite: retired AEAD token")
	ErrMalformedID      = errors.New("suite: malformed suite ID")
	ErrLevelMismatch    = errors.New("suite: KEM and signature NIST levels differ")
)

// KEM describes one key encapsulation mechanism entry.
type KEM struct {
	Name    string // canonical display name, e.g. "ML-KEM-768"
	Token   string // suite ID token, e.g. "mlkem768"
	Level   int    // NIST security level: 1, 3 or 5
	ID      byte   // frame header kem_id
	ParamID byte   // frame header kem_param_id
}

// Signature describes one signature scheme entry.
type Signature struct {
	Name    string
	Token   string
	Level   int
	ID      byte
	ParamID byte
}

// AEAD describes one authenticated cipher entry.
type AEAD struct {
	Name      string
	Token     string
	KeySize   int
	NonceSize int
}

// Suite is a validated {KEM, AEAD, signature} combination.
type Suite struct {
	ID        string
	KEM       KEM
	AEAD      AEAD
	Signature Signature
}

// Level returns the suite's NIST security level (that of its KEM and
// signature scheme, which always agree).
func (s Suite) Level() int { return s.KEM.Level }

// HeaderIDs returns the four algorithm ID bytes carried in every frame
// header: kem_id, kem_param_id, sig_id, sig_param_id.
func (s Suite) HeaderIDs() [4]byte {
	return [4]byte{s.KEM.ID, s.KEM.ParamID, s.Signature.ID, s.Signature.ParamID}
}

// ML-DSA-44 is claimed at level 2 by FIPS 204; it is listed at level 1 here
// so it pairs with the level 1 KEMs, matching deployed GCS configurations.
var kems = []KEM{
	{Name: "ML-KEM-512", Token: "mlkem512", Level: 1, ID: 1, ParamID: 1},
	{Name: "ML-KEM-768", Token: "mlkem768", Level: 3, ID: 1, ParamID: 2},
	{Name: "ML-KEM-1024", Token: "mlkem1024", Level: 5, ID: 1, ParamID: 3},
	{Name: "Classic-McEliece-348864", Token: "classicmceliece348864", Level: 1, ID: 3, ParamID: 1},
	{Name: "Classic-McEliece-460896", Token: "classicmceliece460896", Level: 3, ID: 3, ParamID: 2},
	{Name: "Classic-McEliece-8192128", Token: "classicmceliece8192128", Level: 5, ID: 3, ParamID: 3},
	{Name: "HQC-128", Token: "hqc128", Level: 1, ID: 5, ParamID: 1},
	{Name: "HQC-192", Token: "hqc192", Level: 3, ID: 5, ParamID: 2},
	{Name: "HQC-256", Token: "hqc256", Level: 5, ID: 5, ParamID: 3},
}

var signatures = []Signature{
	{Name: "ML-DSA-44", Token: "mldsa44", Level: 1, ID: 1, ParamID: 1},
	{Name: "ML-DSA-65", Token: "mldsa65", Level: 3, ID: 1, ParamID: 2},
	{Name: "ML-DSA-87", Token: "mldsa87", Level: 5, ID: 1, ParamID: 3},
	{Name: "Falcon-512", Token: "falcon512", Level: 1, ID: 2, ParamID: 1},
	{Name: "Falcon-1024", Token: "falcon1024", Level: 5, ID: 2, ParamID: 2},
	{Name: "SPHINCS+-SHA2-128s-simple", Token: "sphincs128s", Level: 1, ID: 3, ParamID: 1},
	{Name: "SPHINCS+-SHA2-192s-simple", Token: "sphincs192s", Level: 3, ID: 3, ParamID: 2},
	{Name: "SPHINCS+-SHA2-256s-simple", Token: "sphincs256s", Level: 5, ID: 3, ParamID: 3},
}

var aeads = []AEAD{
	{Name: "AES-256-GCM", Token: TokenAESGCM, KeySize: 32, NonceSize: 12},
	{Name: "ChaCha20-Poly1305", Token: TokenChaCha20Poly1305, KeySize: 32, NonceSize: 12},
	{Name: "Ascon-128a", Token: TokenAscon128a, KeySize: 16, NonceSize: 16},
}

// Extra aliases beyond each entry's name and token, pre-normalized. The
// Kyber and Dilithium names are the pre-standardization spellings still used
// in fleet configuration files; the SPHINCS+ fast variants map onto the
// small ones we actually ship.
var kemAliases = map[string]string{
	"kyber512":        "mlkem512",
	"kyber768":        "mlkem768",
	"kyber1024":       "mlkem1024",
	"mceliece348864":  "classicmceliece348864",
	"mceliece460896":  "classicmceliece460896",
	"mceliece8192128": "classicmceliece8192128",
}

var sigAliases = map[string]string{
	"dilithium2":      "mldsa44",
	"dilithium3":      "mldsa65",
	"dilithium5":      "mldsa87",
	"slhdsasha2128s":  "sphincs128s",
	"slhdsasha2192s":  "sphincs192s",
	"slhdsasha2256s":  "sphincs256s",
	"sphincs128f":     "sphincs128s",
	"sphincs128fsha2": "sphincs128s",
	"sphincs192f":     "sphincs192s",
	"sphincs192fsha2": "sphincs192s",
	"sphincs256f":     "sphincs256s",
	"sphincs256fsha2": "sphincs256s",
}

var aeadAliases = map[string]string{
	"aes256gcm": TokenAESGCM,
	"chacha20":  TokenChaCha20Poly1305,
	"ascona":    TokenAscon128a,
}

// Tokens that were shipped in early field trials and must not come back.
var retiredAEADs = map[string]string{
	"aes128gcm": "use aesgcm (AES-256-GCM)",
	"ascon128":  "use ascon128a",
}

var (
	kemIndex  = map[string]int{}
	sigIndex  = map[string]int{}
	aeadIndex = map[string]int{}
)

func init() {
	for i, k := range kems {
		kemIndex[normalize(k.Name)] = i
		kemIndex[k.Token] = i
	}
	for alias, token := range kemAliases {
		kemIndex[alias] = kemIndex[token]
	}
	for i, s := range signatures {
		sigIndex[normalize(s.Name)] = i
		sigIndex[s.Token] = i
	}
	for alias, token := range sigAliases {
		sigIndex[alias] = sigIndex[token]
	}
	for i, a := range aeads {
		aeadIndex[normalize(a.Name)] = i
		aeadIndex[a.Token] = i
	}
	for alias, token := range aeadAliases {
		aeadIndex[alias] = aeadIndex[token]
	}
}

// normalize folds a component name for matching: lowercase, alphanumerics
// only.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ResolveKEM matches a KEM by name, token, or alias.
func ResolveKEM(name string) (KEM, error) {
	if i, ok := kemIndex[normalize(name)]; ok {
		return kems[i], nil
	}
	return KEM{}, fmt.Errorf("%w: %q", ErrUnknownKEM, name)
}

// ResolveSignature matches a signature scheme by name, token, or alias.
func ResolveSignature(name string) (Signature, error) {
	if i, ok := sigIndex[normalize(name)]; ok {
		return signatures[i], nil
	}
	return Signature{}, fmt.Errorf("%w: %q", ErrUnknownSignature, name)
}

// ResolveAEAD matches an AEAD by name, token, or alias. Retired tokens are
// rejected with replacement guidance rather than treated as unknown.
func ResolveAEAD(name string) (AEAD, error) {
	n := normalize(name)
	if i, ok := aeadIndex[n]; ok {
		return aeads[i], nil
	}
	if why, ok := retiredAEADs[n]; ok {
		return AEAD{}, fmt.Errorf("%w: %q (%s)", ErrRetiredAEAD, name, why)
	}
	return AEAD{}, fmt.Errorf("%w: %q", ErrUnknownAEAD, name)
}

// Compose builds a suite from component names, enforcing that the KEM and
// signature scheme share a NIST level.
func Compose(kem, aead, sig string) (Suite, error) {
	k, err := ResolveKEM(kem)
	if err != nil {
		return Suite{}, err
	}
	a, err := ResolveAEAD(aead)
	if err != nil {
		return Suite{}, err
	}
	g, err := ResolveSignature(sig)
	if err != nil {
		return Suite{}, err
	}
	if k.Level != g.Level {
		return Suite{}, fmt.Errorf("%w: %s is L%d, %s is L%d", ErrLevelMismatch, k.Name, k.Level, g.Name, g.Level)
	}
	return Suite{
		ID:        "cs-" + k.Token + "-" + a.Token + "-" + g.Token,
		KEM:       k,
		AEAD:      a,
		Signature: g,
	}, nil
}

// Resolve parses a cs-<kem>-<aead>-<sig> suite ID. Component aliases are
// accepted, so legacy IDs such as cs-kyber768-aesgcm-dilithium3 resolve to
// their canonical form.
func Resolve(id string) (Suite, error) {
	parts := strings.Split(strings.TrimSpace(id), "-")
	if len(parts) != 4 || parts[0] != "cs" {
		return Suite{}, fmt.Errorf("%w: %q", ErrMalformedID, id)
	}
	return Compose(parts[1], parts[2], parts[3])
}

// Default returns the bootstrap suite.
func Default() Suite {
	s, err := Resolve(DefaultSuiteID)
	if err != nil {
		panic("suite: default suite does not resolve: " + err.Error())
	}
	return s
}
