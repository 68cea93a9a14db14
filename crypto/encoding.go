package crypto

import (
	"bytes"
	"fmt"

	"github.com/drand/kyber"
)

// MarshalBinary encodes the signature as the ordered tuple
// (hashed_to_curve_r, r_point, s, c, nullifier), each field in its canonical
// fixed-length encoding, concatenated without framing.
func (p *PlumeSignature) MarshalBinary() ([]byte, error) {
	var buff bytes.Buffer
	for _, m := range []kyber.Marshaling{p.HashedToCurveR, p.RPoint, p.S, p.C, p.Nullifier} {
		if _, err := m.MarshalTo(&buff); err != nil {
			return nil, err
		}
	}
	return buff.Bytes(), nil
}

// SignatureLen returns the size in bytes of an encoded signature under this
// scheme: three points and two scalars.
func (s *Scheme) SignatureLen() int {
	return 3*s.Group.PointLen() + 2*s.Group.ScalarLen()
}

// UnmarshalSignature decodes a signature previously encoded with
// MarshalBinary. The scheme is needed to know the field lengths of its group.
func (s *Scheme) UnmarshalSignature(buff []byte) (*PlumeSignature, error) {
	if len(buff) != s.SignatureLen() {
		return nil, fmt.Errorf("plume: invalid signature length %d, expected %d", len(buff), s.SignatureLen())
	}
	sig := &PlumeSignature{
		HashedToCurveR: s.Group.Point(),
		RPoint:         s.Group.Point(),
		S:              s.Group.Scalar(),
		C:              s.Group.Scalar(),
		Nullifier:      s.Group.Point(),
	}
	reader := bytes.NewReader(buff)
	for _, m := range []kyber.Marshaling{sig.HashedToCurveR, sig.RPoint, sig.S, sig.C, sig.Nullifier} {
		if _, err := m.UnmarshalFrom(reader); err != nil {
			return nil, err
		}
	}
	return sig, nil
}

// Equal returns true if both signatures hold the same values field by field.
func (p *PlumeSignature) Equal(p2 *PlumeSignature) bool {
	if p == nil || p2 == nil {
		return p == p2
	}
	return p.HashedToCurveR.Equal(p2.HashedToCurveR) &&
		p.RPoint.Equal(p2.RPoint) &&
		p.S.Equal(p2.S) &&
		p.C.Equal(p2.C) &&
		p.Nullifier.Equal(p2.Nullifier)
}
