package cli

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/atecc/atca"
	"github.com/effective-security/atecc/device"
)

// GenKeyCmd generates a P256 private key in a slot
type GenKeyCmd struct {
	Slot uint8 `kong:"arg" required:"" help:"slot number"`
}

// Run the command
func (a *GenKeyCmd) Run(ctx *Cli) error {
	dev, err := ctx.Device()
	if err != nil {
		return err
	}

	if err = dev.GenKey(atca.KeyTypeP256, a.Slot); err != nil {
		return errors.WithMessagef(err, "failed to generate key in slot %d", a.Slot)
	}
	pub, err := dev.GetPublicKey(a.Slot)
	if err != nil {
		return errors.WithMessagef(err, "failed to read public key of slot %d", a.Slot)
	}
	fmt.Fprintln(ctx.Writer(), hex.EncodeToString(pub))
	return nil
}

// PubKeyCmd prints the public key of a slot
type PubKeyCmd struct {
	Slot uint8 `kong:"arg" required:"" help:"slot number"`
	PEM  bool  `help:"print PEM encoded PKIX public key"`
}

// Run the command
func (a *PubKeyCmd) Run(ctx *Cli) error {
	dev, err := ctx.Device()
	if err != nil {
		return err
	}

	if a.PEM {
		signer, err := device.NewSigner(dev, a.Slot)
		if err != nil {
			return err
		}
		der, err := x509.MarshalPKIXPublicKey(signer.Public())
		if err != nil {
			return errors.WithStack(err)
		}
		return pem.Encode(ctx.Writer(), &pem.Block{Type: "PUBLIC KEY", Bytes: der})
	}

	pub, err := dev.GetPublicKey(a.Slot)
	if err != nil {
		return errors.WithMessagef(err, "failed to read public key of slot %d", a.Slot)
	}
	fmt.Fprintln(ctx.Writer(), hex.EncodeToString(pub))
	return nil
}

// ImportCmd writes key material into a slot
type ImportCmd struct {
	Slot uint8  `kong:"arg" required:"" help:"slot number"`
	Type string `help:"key type: p256|aes|data" default:"p256" enum:"p256,aes,data"`
	Key  string `required:"" help:"hex encoded key: P256 private (32 bytes) or public (64 bytes), AES (16 bytes) or data (32 bytes)"`
}

var keyTypes = map[string]atca.KeyType{
	"p256": atca.KeyTypeP256,
	"aes":  atca.KeyTypeAES,
	"data": atca.KeyTypeShaOrText,
}

// Run the command
func (a *ImportCmd) Run(ctx *Cli) error {
	key, err := decodeHex("key", a.Key)
	if err != nil {
		return err
	}

	dev, err := ctx.Device()
	if err != nil {
		return err
	}
	if err = dev.ImportKey(keyTypes[a.Type], key, a.Slot); err != nil {
		return errors.WithMessagef(err, "failed to import key into slot %d", a.Slot)
	}
	fmt.Fprintf(ctx.Writer(), "imported %s key into slot %d\n", keyTypes[a.Type], a.Slot)
	return nil
}

// SignCmd signs a digest
type SignCmd struct {
	Slot    uint8  `kong:"arg" required:"" help:"slot number"`
	Digest  string `help:"hex encoded SHA-256 digest"`
	Message string `help:"message text, hashed on the host"`
}

// signature is the output of the sign command
type signature struct {
	Digest    string `json:"digest"`
	Signature string `json:"signature"`
	DER       string `json:"der"`
}

// Run the command
func (a *SignCmd) Run(ctx *Cli) error {
	digest, err := hashInput(a.Digest, a.Message)
	if err != nil {
		return err
	}

	dev, err := ctx.Device()
	if err != nil {
		return err
	}
	sig, err := dev.SignHash(atca.SignExternal(digest), a.Slot)
	if err != nil {
		return errors.WithMessagef(err, "failed to sign with slot %d", a.Slot)
	}

	der, err := device.MarshalSignature(sig)
	if err != nil {
		return err
	}

	return ctx.WriteJSON(&signature{
		Digest:    hex.EncodeToString(digest),
		Signature: hex.EncodeToString(sig),
		DER:       hex.EncodeToString(der),
	})
}

// VerifyCmd verifies a signature with an external public key or the public
// key stored in a slot
type VerifyCmd struct {
	Signature string `required:"" help:"hex encoded signature, raw R|S or DER"`
	Digest    string `help:"hex encoded SHA-256 digest"`
	Message   string `help:"message text, hashed on the host"`
	PubKey    string `help:"hex encoded public key X|Y"`
	Slot      *uint8 `help:"slot with the stored public key"`
}

// Run the command
func (a *VerifyCmd) Run(ctx *Cli) error {
	if (a.PubKey == "") == (a.Slot == nil) {
		return errors.New("specify either --pub-key or --slot")
	}

	digest, err := hashInput(a.Digest, a.Message)
	if err != nil {
		return err
	}
	b, err := decodeHex("signature", a.Signature)
	if err != nil {
		return err
	}
	sig, err := device.UnmarshalSignature(b)
	if err != nil {
		return err
	}

	var mode atca.VerifyMode
	if a.Slot != nil {
		mode = atca.VerifyStored(*a.Slot)
	} else {
		pub, err := decodeHex("public key", a.PubKey)
		if err != nil {
			return err
		}
		mode = atca.VerifyExternal(pub)
	}

	dev, err := ctx.Device()
	if err != nil {
		return err
	}
	ok, err := dev.VerifyHash(mode, digest, sig)
	if err != nil {
		return errors.WithMessage(err, "failed to verify signature")
	}
	if !ok {
		return errors.New("signature does not match")
	}
	fmt.Fprintln(ctx.Writer(), "verified")
	return nil
}

// hashInput returns the hex digest, or SHA-256 of the message
func hashInput(digest, message string) ([]byte, error) {
	if (digest == "") == (message == "") {
		return nil, errors.New("specify either --digest or --message")
	}
	if message != "" {
		sum := sha256.Sum256([]byte(message))
		return sum[:], nil
	}
	return decodeHex("digest", digest)
}
