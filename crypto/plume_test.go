package crypto

import (
	"crypto/sha256"
	"hash"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/drand/kyber/group/edwards25519"
	"github.com/drand/kyber/util/random"
	"github.com/drand/kyber/xof/blake2xb"
)

func allSchemes(t *testing.T) []*Scheme {
	t.Helper()
	var schemes []*Scheme
	for _, id := range ListSchemes() {
		sch, err := SchemeFromName(id)
		require.NoError(t, err)
		schemes = append(schemes, sch)
	}
	return schemes
}

func TestCompleteness(t *testing.T) {
	msg := []byte("pass the signature")
	for _, sch := range allSchemes(t) {
		for _, v := range []Version{V1, V2} {
			t.Run(sch.Name+"/"+v.String(), func(t *testing.T) {
				pp := sch.Parameters()
				public, secret := sch.Keygen(pp, random.New())

				sig, err := sch.Sign(pp, random.New(), public, secret, msg, v)
				require.NoError(t, err)

				ok, err := sch.Verify(pp, sig, public, msg, v)
				require.NoError(t, err)
				require.True(t, ok)
			})
		}
	}
}

func TestNullifierDeterminism(t *testing.T) {
	sch := NewPlumeBLS12381G1()
	pp := sch.Parameters()
	public, secret := sch.Keygen(pp, random.New())
	msg := []byte("one person, one vote")

	sig1, err := sch.Sign(pp, random.New(), public, secret, msg, V2)
	require.NoError(t, err)
	sig2, err := sch.Sign(pp, random.New(), public, secret, msg, V2)
	require.NoError(t, err)

	// same key, same message: identical nullifier no matter the nonce
	require.True(t, sig1.Nullifier.Equal(sig2.Nullifier))
	// while the rest of the signature is randomized
	require.False(t, sig1.S.Equal(sig2.S))
	require.False(t, sig1.C.Equal(sig2.C))
	require.False(t, sig1.RPoint.Equal(sig2.RPoint))
}

func TestNullifierUniqueAcrossKeys(t *testing.T) {
	sch := NewPlumeBLS12381G1()
	pp := sch.Parameters()
	msg := []byte("one person, one vote")

	pub1, sec1 := sch.Keygen(pp, random.New())
	pub2, sec2 := sch.Keygen(pp, random.New())

	sig1, err := sch.Sign(pp, random.New(), pub1, sec1, msg, V2)
	require.NoError(t, err)
	sig2, err := sch.Sign(pp, random.New(), pub2, sec2, msg, V2)
	require.NoError(t, err)

	require.False(t, sig1.Nullifier.Equal(sig2.Nullifier))
}

func TestVersionsDoNotInteroperate(t *testing.T) {
	sch := NewPlumeBLS12381G1()
	pp := sch.Parameters()
	public, secret := sch.Keygen(pp, random.New())
	msg := []byte("pass the signature")

	sigV1, err := sch.Sign(pp, random.New(), public, secret, msg, V1)
	require.NoError(t, err)
	sigV2, err := sch.Sign(pp, random.New(), public, secret, msg, V2)
	require.NoError(t, err)

	ok, err := sch.Verify(pp, sigV1, public, msg, V2)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = sch.Verify(pp, sigV2, public, msg, V1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTamperedSignatureRejected(t *testing.T) {
	sch := NewPlumeBLS12381G1()
	pp := sch.Parameters()
	public, secret := sch.Keygen(pp, random.New())
	msg := []byte("pass the signature")

	valid, err := sch.Sign(pp, random.New(), public, secret, msg, V2)
	require.NoError(t, err)

	one := sch.Group.Scalar().One()
	tampered := map[string]*PlumeSignature{
		"s": {
			HashedToCurveR: valid.HashedToCurveR,
			RPoint:         valid.RPoint,
			S:              sch.Group.Scalar().Add(valid.S, one),
			C:              valid.C,
			Nullifier:      valid.Nullifier,
		},
		"c": {
			HashedToCurveR: valid.HashedToCurveR,
			RPoint:         valid.RPoint,
			S:              valid.S,
			C:              sch.Group.Scalar().Add(valid.C, one),
			Nullifier:      valid.Nullifier,
		},
		"r_point": {
			HashedToCurveR: valid.HashedToCurveR,
			RPoint:         sch.Group.Point().Add(valid.RPoint, pp.G),
			S:              valid.S,
			C:              valid.C,
			Nullifier:      valid.Nullifier,
		},
		"hashed_to_curve_r": {
			HashedToCurveR: sch.Group.Point().Add(valid.HashedToCurveR, pp.G),
			RPoint:         valid.RPoint,
			S:              valid.S,
			C:              valid.C,
			Nullifier:      valid.Nullifier,
		},
		"nullifier": {
			HashedToCurveR: valid.HashedToCurveR,
			RPoint:         valid.RPoint,
			S:              valid.S,
			C:              valid.C,
			Nullifier:      sch.Group.Point().Add(valid.Nullifier, pp.G),
		},
	}

	for field, sig := range tampered {
		ok, err := sch.Verify(pp, sig, public, msg, V2)
		require.NoError(t, err, field)
		require.False(t, ok, "tampered %s still verifies", field)
	}
}

func TestWrongMessageOrKeyRejected(t *testing.T) {
	sch := NewPlumeBLS12381G1()
	pp := sch.Parameters()
	public, secret := sch.Keygen(pp, random.New())
	otherPublic, _ := sch.Keygen(pp, random.New())
	msg := []byte("hello")

	sig, err := sch.Sign(pp, random.New(), public, secret, msg, V2)
	require.NoError(t, err)

	ok, err := sch.Verify(pp, sig, public, msg, V2)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = sch.Verify(pp, sig, public, []byte("hello!"), V2)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = sch.Verify(pp, sig, public, msg, V1)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = sch.Verify(pp, sig, otherPublic, msg, V2)
	require.NoError(t, err)
	require.False(t, ok)
}

// unhashableScheme builds a scheme over a group whose points cannot be hashed
// to the curve, to exercise the failure path of computeH.
func unhashableScheme() *Scheme {
	return &Scheme{
		Name:          "plume-ed25519-nohash",
		Group:         edwards25519.NewBlakeSHA256Ed25519(),
		ChallengeHash: sha256.New,
		IdentityHash:  func() hash.Hash { return sha256.New() },
	}
}

func TestHashToCurveFailurePropagates(t *testing.T) {
	sch := unhashableScheme()
	pp := sch.Parameters()
	public, secret := sch.Keygen(pp, random.New())
	msg := []byte("hello")

	_, err := sch.Sign(pp, random.New(), public, secret, msg, V2)
	require.ErrorIs(t, err, ErrHashToCurve)

	// build a structurally complete signature so only computeH can fail
	other := NewPlumeBLS12381G1()
	otherPP := other.Parameters()
	otherPub, otherSec := other.Keygen(otherPP, random.New())
	sig, err := other.Sign(otherPP, random.New(), otherPub, otherSec, msg, V2)
	require.NoError(t, err)

	_, err = sch.Verify(pp, &PlumeSignature{
		HashedToCurveR: pp.G,
		RPoint:         pp.G,
		S:              secret,
		C:              secret,
		Nullifier:      pp.G,
	}, public, msg, V2)
	require.ErrorIs(t, err, ErrHashToCurve)

	// the valid scheme still accepts its own signature
	ok, err := other.Verify(otherPP, sig, otherPub, msg, V2)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSignWithNonceDeterministic(t *testing.T) {
	sch := NewPlumeBLS12381G1()
	pp := sch.Parameters()
	msg := []byte("known answer")

	seed := []byte("deterministic seed for plume tests")
	public, secret := sch.Keygen(pp, blake2xb.New(seed))
	r := sch.Group.Scalar().Pick(blake2xb.New([]byte("nonce seed")))

	sig1, err := sch.SignWithNonce(pp, public, secret, msg, r, V1)
	require.NoError(t, err)
	sig2, err := sch.SignWithNonce(pp, public, secret, msg, r, V1)
	require.NoError(t, err)
	require.True(t, sig1.Equal(sig2))

	// Sign with a seeded stream reproduces SignWithNonce exactly
	sig3, err := sch.Sign(pp, blake2xb.New([]byte("nonce seed")), public, secret, msg, V1)
	require.NoError(t, err)
	require.True(t, sig1.Equal(sig3))
}

func TestSignatureEncodingRoundTrip(t *testing.T) {
	for _, sch := range allSchemes(t) {
		pp := sch.Parameters()
		public, secret := sch.Keygen(pp, random.New())
		msg := []byte("round trip")

		sig, err := sch.Sign(pp, random.New(), public, secret, msg, V1)
		require.NoError(t, err)

		buff, err := sig.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, buff, sch.SignatureLen())

		decoded, err := sch.UnmarshalSignature(buff)
		require.NoError(t, err)
		require.True(t, sig.Equal(decoded))

		ok, err := sch.Verify(pp, decoded, public, msg, V1)
		require.NoError(t, err)
		require.True(t, ok)

		_, err = sch.UnmarshalSignature(buff[:len(buff)-1])
		require.Error(t, err)
	}
}

func TestChallengeTranscriptsDiffer(t *testing.T) {
	sch := NewPlumeBLS12381G1()
	pp := sch.Parameters()
	public, secret := sch.Keygen(pp, random.New())
	msg := []byte("transcripts")

	h, err := sch.computeH(public, msg)
	require.NoError(t, err)
	nul := sch.Group.Point().Mul(secret, h)
	r := sch.Group.Scalar().Pick(random.New())
	rPoint := sch.Group.Point().Mul(r, pp.G)
	z := sch.Group.Point().Mul(r, h)

	c1, err := sch.challenge(V1, pp.G, public, h, nul, rPoint, z)
	require.NoError(t, err)
	c2, err := sch.challenge(V2, pp.G, public, h, nul, rPoint, z)
	require.NoError(t, err)
	require.False(t, c1.Equal(c2))

	_, err = sch.challenge(Version(42), pp.G, public, h, nul, rPoint, z)
	require.Error(t, err)
}
