// Package key holds the key pair model of the module and its file
// representations.
package key

import (
	"crypto/cipher"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/drand/kyber"
	"github.com/drand/kyber/util/random"

	"github.com/leopardracer/zk-nullifier-sig/crypto"
)

// Pair is a wrapper around a random scalar and the corresponding public
// identity.
type Pair struct {
	Key    kyber.Scalar
	Public *Identity
}

// Identity holds the public key matching a Pair's secret scalar, the scheme
// it belongs to, and a self-signature binding the key to the scheme.
type Identity struct {
	Key       kyber.Point
	Scheme    *crypto.Scheme
	Signature *crypto.PlumeSignature
}

func (i *Identity) String() string {
	return fmt.Sprintf("{%s - %s}", i.Scheme.Name, i.Key.String())
}

// Hash returns the hash of the public key. It is the message the identity
// self-signature is computed over.
func (i *Identity) Hash() []byte {
	h := i.Scheme.IdentityHash()
	_, _ = i.Key.MarshalTo(h)
	return h.Sum(nil)
}

// ValidSignature returns nil if the self-signature included in this identity
// verifies under its own key.
func (i *Identity) ValidSignature() error {
	if i.Signature == nil {
		return errors.New("key: identity is not self-signed")
	}
	msg := []byte(i.Scheme.Name)
	// we prepend the scheme name to avoid scheme confusion
	msg = append(msg, i.Hash()...)
	ok, err := i.Scheme.Verify(i.Scheme.Parameters(), i.Signature, i.Key, msg, crypto.V2)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("key: invalid identity self-signature")
	}
	return nil
}

// Equal indicates if two identities hold the same public key
func (i *Identity) Equal(i2 *Identity) bool {
	return i.Key.Equal(i2.Key)
}

// SelfSign signs the public key with the key pair. The identity keeps the
// resulting signature, whose nullifier also serves as a stable tag for this
// key under this scheme.
func (p *Pair) SelfSign(rng cipher.Stream) error {
	msg := []byte(p.Public.Scheme.Name)
	// we prepend the scheme name to avoid scheme confusion
	msg = append(msg, p.Public.Hash()...)
	sch := p.Public.Scheme
	signature, err := sch.Sign(sch.Parameters(), rng, p.Public.Key, p.Key, msg, crypto.V2)
	if err != nil {
		return err
	}
	p.Public.Signature = signature
	return nil
}

// Scheme returns the key's crypto Scheme
func (p *Pair) Scheme() *crypto.Scheme {
	return p.Public.Scheme
}

// NewKeyPair returns a freshly created private / public key pair drawn from
// the operating system randomness.
func NewKeyPair(targetScheme *crypto.Scheme) (*Pair, error) {
	return NewKeyPairWithRand(targetScheme, random.New())
}

// NewKeyPairWithRand returns a freshly created private / public key pair
// drawn from the given randomness stream.
func NewKeyPairWithRand(targetScheme *crypto.Scheme, rng cipher.Stream) (*Pair, error) {
	if targetScheme == nil {
		var err error
		targetScheme, err = crypto.GetSchemeFromEnv()
		if err != nil {
			return nil, err
		}
	}
	pp := targetScheme.Parameters()
	pubKey, key := targetScheme.Keygen(pp, rng)

	p := &Pair{
		Key: key,
		Public: &Identity{
			Key:    pubKey,
			Scheme: targetScheme,
		},
	}

	err := p.SelfSign(rng)
	return p, err
}

// PairTOML is the TOML-able version of a private key
type PairTOML struct {
	Key        string
	SchemeName string
}

// PublicTOML is the TOML-able version of a public key
type PublicTOML struct {
	Key        string
	Signature  string
	SchemeName string
}

// TOML returns a struct that can be marshaled using a TOML-encoding library
func (p *Pair) TOML() interface{} {
	hexKey := ScalarToString(p.Key)
	return &PairTOML{hexKey, p.Public.Scheme.Name}
}

// FromTOML constructs the private key from an unmarshalled structure from TOML
func (p *Pair) FromTOML(i interface{}) error {
	ptoml, ok := i.(*PairTOML)
	if !ok {
		return errors.New("key: private can't decode toml from non PairTOML struct")
	}

	sch, err := crypto.SchemeFromName(ptoml.SchemeName)
	if err != nil {
		return err
	}

	p.Key, err = StringToScalar(sch.Group, ptoml.Key)
	if err != nil {
		return err
	}
	p.Public = &Identity{Scheme: sch}
	return nil
}

// TOMLValue returns an empty TOML-compatible interface value
func (p *Pair) TOMLValue() interface{} {
	return &PairTOML{}
}

// TOML returns a TOML-compatible version of the public key
func (i *Identity) TOML() interface{} {
	var sigHex string
	if i.Signature != nil {
		buff, _ := i.Signature.MarshalBinary()
		sigHex = hex.EncodeToString(buff)
	}
	return &PublicTOML{
		Key:        PointToString(i.Key),
		Signature:  sigHex,
		SchemeName: i.Scheme.Name,
	}
}

// FromTOML loads the TOML description of the public key
func (i *Identity) FromTOML(t interface{}) error {
	ptoml, ok := t.(*PublicTOML)
	if !ok {
		return errors.New("key: public can't decode from non PublicTOML struct")
	}

	sch, err := crypto.SchemeFromName(ptoml.SchemeName)
	if err != nil {
		return err
	}
	i.Scheme = sch

	i.Key, err = StringToPoint(sch.Group, ptoml.Key)
	if err != nil {
		return err
	}

	i.Signature = nil
	if ptoml.Signature != "" {
		buff, err := hex.DecodeString(ptoml.Signature)
		if err != nil {
			return err
		}
		i.Signature, err = sch.UnmarshalSignature(buff)
		if err != nil {
			return err
		}
	}
	return nil
}

// TOMLValue returns an empty TOML-compatible version of the public key
func (i *Identity) TOMLValue() interface{} {
	return &PublicTOML{}
}

// PointToString returns a hex-encoded string representation of the given point.
func PointToString(p kyber.Point) string {
	buff, _ := p.MarshalBinary()
	return hex.EncodeToString(buff)
}

// ScalarToString returns a hex-encoded string representation of the given scalar.
func ScalarToString(s kyber.Scalar) string {
	buff, _ := s.MarshalBinary()
	return hex.EncodeToString(buff)
}

// StringToPoint unmarshals a point in the given group from the given string.
func StringToPoint(g kyber.Group, s string) (kyber.Point, error) {
	buff, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	p := g.Point()
	return p, p.UnmarshalBinary(buff)
}

// StringToScalar unmarshals a scalar in the given group from the given string.
func StringToScalar(g kyber.Group, s string) (kyber.Scalar, error) {
	buff, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	sc := g.Scalar()
	return sc, sc.UnmarshalBinary(buff)
}
