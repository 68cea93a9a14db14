package crypto

import (
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/drand/kyber"
)

// ErrHashToCurve is returned when the (message, public key) pair cannot be
// mapped to a group point, either because the scheme's group does not support
// hashing to the curve or because the public key encoding is malformed. It is
// terminal: the inputs are caller-controlled bytes, retrying cannot help.
var ErrHashToCurve = errors.New("plume: unable to hash to curve")

// Version selects which transcript is hashed to derive the Fiat-Shamir
// challenge. Signer and verifier must agree on it out-of-band: a signature
// produced under one version does not verify under the other.
type Version uint8

const (
	// V1 hashes the full transcript g, pk, h, nullifier, g^r, h^r, binding
	// the complete public context into the challenge.
	V1 Version = iota + 1
	// V2 hashes the compact transcript nullifier, g^r, h^r only, relying on
	// the context being fixed elsewhere.
	V2
)

func (v Version) String() string {
	switch v {
	case V1:
		return "v1"
	case V2:
		return "v2"
	default:
		return fmt.Sprintf("invalid-version-%d", uint8(v))
	}
}

// VersionFromString parses the string representation of a transcript version.
func VersionFromString(s string) (Version, error) {
	switch s {
	case "v1", "V1":
		return V1, nil
	case "v2", "V2":
		return V2, nil
	default:
		return 0, fmt.Errorf("invalid version name '%s'", s)
	}
}

// Parameters holds the canonical generator every signer and verifier of a
// scheme shares. It is created once and never mutated.
type Parameters struct {
	G kyber.Point
}

// Parameters returns the parameters of this scheme, i.e. the group's
// canonical base point.
func (s *Scheme) Parameters() *Parameters {
	return &Parameters{G: s.Group.Point().Base()}
}

// PlumeSignature is the proof emitted by signing. It is an immutable value:
// verification never mutates it and it contains no secret material.
type PlumeSignature struct {
	// HashedToCurveR is z = h^r, the commitment on the hashed-to-curve point.
	HashedToCurveR kyber.Point
	// RPoint is g^r, the usual Schnorr commitment on the generator.
	RPoint kyber.Point
	// S is the response scalar r + sk*c in the scalar field.
	S kyber.Scalar
	// C is the Fiat-Shamir challenge, the hashed transcript reduced into the
	// scalar field.
	C kyber.Scalar
	// Nullifier is nul = h^sk, the deterministic per-(key, message) output.
	Nullifier kyber.Point
}

// Keygen draws a fresh secret scalar from the given randomness stream and
// returns the matching public key g^sk along with it.
func (s *Scheme) Keygen(pp *Parameters, rng cipher.Stream) (kyber.Point, kyber.Scalar) {
	secret := s.Group.Scalar().Pick(rng)
	public := s.Group.Point().Mul(secret, pp.G)
	return public, secret
}

// computeH maps the pair (message, public key) to a point of the group. The
// input to the hash-to-curve suite is the message immediately followed by the
// canonical encoding of the public key, with no separator.
func (s *Scheme) computeH(public kyber.Point, msg []byte) (kyber.Point, error) {
	hasher, ok := s.Group.Point().(kyber.HashablePoint)
	if !ok {
		return nil, fmt.Errorf("%w: group %s does not support it", ErrHashToCurve, s.Group.String())
	}
	pkBuff, err := public.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("%w: malformed public key: %v", ErrHashToCurve, err)
	}
	input := make([]byte, 0, len(msg)+len(pkBuff))
	input = append(input, msg...)
	input = append(input, pkBuff...)
	return hasher.Hash(input), nil
}

// challenge derives the Fiat-Shamir challenge scalar for the given transcript
// version. The transcript is the concatenation of the canonical fixed-length
// encodings of the points below, in this exact order, with no separators or
// length prefixes. Both versions end the same way: hash the bytes, reduce the
// digest into the scalar field.
func (s *Scheme) challenge(v Version, g, public, hashedToCurve, nullifier, rPoint, hashedToCurveR kyber.Point) (kyber.Scalar, error) {
	var transcript []kyber.Point
	switch v {
	case V1:
		transcript = []kyber.Point{g, public, hashedToCurve, nullifier, rPoint, hashedToCurveR}
	case V2:
		transcript = []kyber.Point{nullifier, rPoint, hashedToCurveR}
	default:
		return nil, fmt.Errorf("plume: unknown version %s", v)
	}

	digest := s.ChallengeHash()
	for _, p := range transcript {
		if _, err := p.MarshalTo(digest); err != nil {
			return nil, fmt.Errorf("plume: writing transcript: %w", err)
		}
	}
	return s.Group.Scalar().SetBytes(digest.Sum(nil)), nil
}

// SignWithNonce signs msg with an explicit nonce scalar r. Callers should
// normally use Sign; fixing r is only meant for reproducing known-answer
// vectors. The whole response is computed with the scalar field's own
// modular arithmetic, there is no big-integer detour.
func (s *Scheme) SignWithNonce(pp *Parameters, public kyber.Point, secret kyber.Scalar,
	msg []byte, r kyber.Scalar, v Version) (*PlumeSignature, error) {
	rPoint := s.Group.Point().Mul(r, pp.G)

	hashedToCurve, err := s.computeH(public, msg)
	if err != nil {
		return nil, err
	}

	// z = h^r and nul = h^sk
	hashedToCurveR := s.Group.Point().Mul(r, hashedToCurve)
	nullifier := s.Group.Point().Mul(secret, hashedToCurve)

	c, err := s.challenge(v, pp.G, public, hashedToCurve, nullifier, rPoint, hashedToCurveR)
	if err != nil {
		return nil, err
	}

	// response = r + sk*c
	skC := s.Group.Scalar().Mul(secret, c)
	response := s.Group.Scalar().Add(r, skC)

	return &PlumeSignature{
		HashedToCurveR: hashedToCurveR,
		RPoint:         rPoint,
		S:              response,
		C:              c,
		Nullifier:      nullifier,
	}, nil
}

// Sign signs msg under the given key pair, drawing the nonce from the given
// randomness stream. The nonce is the only randomized part of the signature:
// the nullifier depends solely on the secret key and the message, so signing
// the same message twice yields the same nullifier with otherwise different
// signatures.
func (s *Scheme) Sign(pp *Parameters, rng cipher.Stream, public kyber.Point, secret kyber.Scalar,
	msg []byte, v Version) (*PlumeSignature, error) {
	r := s.Group.Scalar().Pick(rng)
	return s.SignWithNonce(pp, public, secret, msg, r, v)
}

// Verify checks sig against the given public key and message. A failed
// cryptographic check is a normal outcome reported as (false, nil); an error
// is returned only when the hash-to-curve step fails. The commitments and
// nullifier carried by the signature are trusted as-is and constrained by the
// two group equations, never re-derived.
func (s *Scheme) Verify(pp *Parameters, sig *PlumeSignature, public kyber.Point,
	msg []byte, v Version) (bool, error) {
	hashedToCurve, err := s.computeH(public, msg)
	if err != nil {
		return false, err
	}

	c, err := s.challenge(v, pp.G, public, hashedToCurve, sig.Nullifier, sig.RPoint, sig.HashedToCurveR)
	if err != nil {
		return false, err
	}

	// Reject if g^s * pk^-c != g^r
	gS := s.Group.Point().Mul(sig.S, pp.G)
	pkC := s.Group.Point().Mul(sig.C, public)
	if !s.Group.Point().Sub(gS, pkC).Equal(sig.RPoint) {
		return false, nil
	}

	// Reject if h^s * nul^-c != z
	hS := s.Group.Point().Mul(sig.S, hashedToCurve)
	nulC := s.Group.Point().Mul(sig.C, sig.Nullifier)
	if !s.Group.Point().Sub(hS, nulC).Equal(sig.HashedToCurveR) {
		return false, nil
	}

	// Reject if c != c'
	return c.Equal(sig.C), nil
}
