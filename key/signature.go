package key

import (
	"errors"

	"github.com/leopardracer/zk-nullifier-sig/crypto"
)

// Signature ties a PLUME signature to the scheme and transcript version it
// was produced under, which is the amount of context needed to store it and
// later verify it.
type Signature struct {
	Sig     *crypto.PlumeSignature
	Version crypto.Version
	Scheme  *crypto.Scheme
}

// SignatureTOML is the TOML representation of a stored signature, one
// hex-encoded canonical field encoding per proof element.
type SignatureTOML struct {
	HashedToCurveR string
	RPoint         string
	S              string
	C              string
	Nullifier      string
	Version        string
	SchemeName     string
}

// TOML returns a TOML-compatible version of this signature
func (s *Signature) TOML() interface{} {
	return &SignatureTOML{
		HashedToCurveR: PointToString(s.Sig.HashedToCurveR),
		RPoint:         PointToString(s.Sig.RPoint),
		S:              ScalarToString(s.Sig.S),
		C:              ScalarToString(s.Sig.C),
		Nullifier:      PointToString(s.Sig.Nullifier),
		Version:        s.Version.String(),
		SchemeName:     s.Scheme.Name,
	}
}

// FromTOML initializes the signature from its TOML representation
func (s *Signature) FromTOML(i interface{}) error {
	stoml, ok := i.(*SignatureTOML)
	if !ok {
		return errors.New("key: signature can't decode from non SignatureTOML struct")
	}

	sch, err := crypto.SchemeFromName(stoml.SchemeName)
	if err != nil {
		return err
	}
	s.Scheme = sch

	s.Version, err = crypto.VersionFromString(stoml.Version)
	if err != nil {
		return err
	}

	sig := &crypto.PlumeSignature{}
	if sig.HashedToCurveR, err = StringToPoint(sch.Group, stoml.HashedToCurveR); err != nil {
		return err
	}
	if sig.RPoint, err = StringToPoint(sch.Group, stoml.RPoint); err != nil {
		return err
	}
	if sig.S, err = StringToScalar(sch.Group, stoml.S); err != nil {
		return err
	}
	if sig.C, err = StringToScalar(sch.Group, stoml.C); err != nil {
		return err
	}
	if sig.Nullifier, err = StringToPoint(sch.Group, stoml.Nullifier); err != nil {
		return err
	}
	s.Sig = sig
	return nil
}

// TOMLValue returns an empty TOML-compatible version of a signature
func (s *Signature) TOMLValue() interface{} {
	return &SignatureTOML{}
}
