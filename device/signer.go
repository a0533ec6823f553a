package device

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"fmt"
	"io"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/atecc/atca"
	"github.com/effective-security/xlog"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// Signer implements crypto.Signer with the P256 private key of a slot
type Signer struct {
	dev    Device
	slot   uint8
	pubKey *ecdsa.PublicKey
}

// NewSigner returns a signer for the private key in the slot
func NewSigner(dev Device, slot uint8) (*Signer, error) {
	raw, err := dev.GetPublicKey(slot)
	if err != nil {
		return nil, errors.WithMessagef(err, "unable to read public key of slot %d", slot)
	}
	pub, err := ParsePublicKey(raw)
	if err != nil {
		return nil, err
	}

	logger.KV(xlog.DEBUG, "device", dev.DeviceType(), "slot", slot)
	return &Signer{
		dev:    dev,
		slot:   slot,
		pubKey: pub,
	}, nil
}

// Slot returns the slot of the signer
func (s *Signer) Slot() uint8 {
	return s.slot
}

// Public returns public key for the signer
func (s *Signer) Public() crypto.PublicKey {
	return s.pubKey
}

func (s *Signer) String() string {
	return fmt.Sprintf("device=%s, slot=%d", s.dev.DeviceType(), s.slot)
}

// Sign signs a SHA-256 digest and returns the ASN.1 DER signature
func (s *Signer) Sign(_ io.Reader, digest []byte, opts crypto.SignerOpts) ([]byte, error) {
	if opts != nil && opts.HashFunc() != crypto.SHA256 {
		return nil, errors.Errorf("unsupported hash: %s", opts.HashFunc())
	}
	if len(digest) != atca.DigestSize {
		return nil, errors.Errorf("invalid digest size: %d", len(digest))
	}

	sig, err := s.dev.SignHash(atca.SignExternal(digest), s.slot)
	if err != nil {
		return nil, errors.WithMessagef(err, "unable to sign with slot %d", s.slot)
	}
	return MarshalSignature(sig)
}

// ParsePublicKey returns the P256 public key of a raw X|Y value
func ParsePublicKey(raw []byte) (*ecdsa.PublicKey, error) {
	if len(raw) != atca.PublicKeySize {
		return nil, errors.Errorf("invalid public key size: %d", len(raw))
	}
	pub, err := ecdsa.ParseUncompressedPublicKey(elliptic.P256(), append([]byte{0x04}, raw...))
	if err != nil {
		return nil, errors.WithMessage(err, "invalid public key")
	}
	return pub, nil
}

// MarshalSignature returns the ASN.1 DER form of a raw R|S signature
func MarshalSignature(sig []byte) ([]byte, error) {
	if len(sig) != atca.SignatureSize {
		return nil, errors.Errorf("invalid signature size: %d", len(sig))
	}
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:])

	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(r)
		b.AddASN1BigInt(s)
	})
	der, err := b.Bytes()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return der, nil
}

// UnmarshalSignature returns the raw R|S form of a raw or DER signature
func UnmarshalSignature(b []byte) ([]byte, error) {
	if len(b) == atca.SignatureSize {
		return b, nil
	}

	var (
		r, s  big.Int
		inner cryptobyte.String
	)
	input := cryptobyte.String(b)
	if !input.ReadASN1(&inner, asn1.SEQUENCE) ||
		!input.Empty() ||
		!inner.ReadASN1Integer(&r) ||
		!inner.ReadASN1Integer(&s) ||
		!inner.Empty() {
		return nil, errors.New("invalid signature encoding")
	}
	if r.Sign() <= 0 || s.Sign() <= 0 || r.BitLen() > 256 || s.BitLen() > 256 {
		return nil, errors.New("invalid signature values")
	}

	sig := make([]byte, atca.SignatureSize)
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:])
	return sig, nil
}
