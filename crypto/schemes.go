// Package crypto implements the PLUME nullifier signature scheme: a
// Schnorr-style proof of knowledge of a secret key fused with a
// Chaum-Pedersen proof that the same key produced both the public key and a
// deterministic per-(key, message) nullifier point.
package crypto

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"os"

	"golang.org/x/crypto/blake2b"

	"github.com/drand/kyber"
	bls "github.com/drand/kyber-bls12381"
)

// Scheme represents a concrete instantiation of PLUME over a prime-order
// group. The group provides the point and scalar arithmetic, and its points
// must support hashing a message to the curve for the nullifier derivation
// to be available. The transcript version (V1 or V2) is not part of the
// scheme: it is agreed upon out-of-band and passed to each sign/verify call.
//
// Note: Scheme is not meant to be marshaled directly. Instead use SchemeFromName.
type Scheme struct {
	// The name of the scheme
	Name string
	// Group is the prime-order group keys, nullifiers and commitments live in.
	Group kyber.Group
	// ChallengeHash is the hash used to derive the Fiat-Shamir challenge
	// from the serialized transcript.
	ChallengeHash func() hash.Hash `toml:"-"`
	// IdentityHash is the hash used to bind an identity's public key before
	// self-signing it.
	IdentityHash func() hash.Hash `toml:"-"`
}

func (s *Scheme) String() string {
	if s != nil {
		return s.Name
	}
	return ""
}

// DefaultSchemeID is the default scheme ID.
const DefaultSchemeID = "plume-bls12381-g1"

// NewPlumeBLS12381G1 instantiates a scheme of type "plume-bls12381-g1", with
// keys, nullifiers and commitments on G1 of BLS12-381, so 48 bytes per point.
// Hash-to-curve follows RFC 9380 (SSWU) under a PLUME-specific domain
// separation tag, and the Fiat-Shamir challenge is a SHA-256 digest of the
// transcript reduced into the scalar field.
func NewPlumeBLS12381G1() (cs *Scheme) {
	pairing := bls.NewBLS12381SuiteWithDST(
		[]byte("PLUME_SIG_BLS12381G1_XMD:SHA-256_SSWU_RO_NUL_"),
		[]byte("PLUME_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_"),
	)
	identityHashFunc := func() hash.Hash { h, _ := blake2b.New256(nil); return h }

	return &Scheme{
		Name:          DefaultSchemeID,
		Group:         pairing.G1(),
		ChallengeHash: sha256.New,
		IdentityHash:  identityHashFunc,
	}
}

// LongPointSchemeID is the scheme id of the G2 variant.
const LongPointSchemeID = "plume-bls12381-g2"

// NewPlumeBLS12381G2 instantiates a scheme of type "plume-bls12381-g2". It is
// identical to the G1 variant except that everything lives on G2, so 96 bytes
// per point. Transcripts are therefore twice as large; use it when the rest
// of the system already keeps its keys on G2.
func NewPlumeBLS12381G2() (cs *Scheme) {
	pairing := bls.NewBLS12381SuiteWithDST(
		[]byte("PLUME_SIG_BLS12381G1_XMD:SHA-256_SSWU_RO_NUL_"),
		[]byte("PLUME_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_"),
	)
	identityHashFunc := func() hash.Hash { h, _ := blake2b.New256(nil); return h }

	return &Scheme{
		Name:          LongPointSchemeID,
		Group:         pairing.G2(),
		ChallengeHash: sha256.New,
		IdentityHash:  identityHashFunc,
	}
}

func SchemeFromName(schemeName string) (*Scheme, error) {
	switch schemeName {
	case DefaultSchemeID:
		return NewPlumeBLS12381G1(), nil
	case LongPointSchemeID:
		return NewPlumeBLS12381G2(), nil
	default:
		return nil, fmt.Errorf("invalid scheme name '%s'", schemeName)
	}
}

var schemeIDs = []string{DefaultSchemeID, LongPointSchemeID}

// ListSchemes will return a slice of valid scheme ids
func ListSchemes() []string {
	return schemeIDs
}

// GetSchemeByIDWithDefault allows the user to retrieve the scheme configuration looking by its ID.
// If the received ID is an empty string, it will return the default defined scheme.
func GetSchemeByIDWithDefault(id string) (*Scheme, error) {
	if id == "" {
		id = DefaultSchemeID
	}

	return SchemeFromName(id)
}

// GetSchemeFromEnv allows the user to retrieve the scheme configuration looking by the ID set on an
// environmental variable.
func GetSchemeFromEnv() (*Scheme, error) {
	id := os.Getenv("PLUME_SCHEME")

	return GetSchemeByIDWithDefault(id)
}
