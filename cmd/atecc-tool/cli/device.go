package cli

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/atecc/atca"
	"github.com/effective-security/x/values"
)

// InfoCmd prints device information
type InfoCmd struct{}

// deviceInfo is the output of the info command
type deviceInfo struct {
	DeviceType   string `json:"device_type"`
	Revision     string `json:"revision"`
	ConfigLocked bool   `json:"config_locked"`
	DataLocked   bool   `json:"data_locked"`
	Serial       string `json:"serial"`
}

// Run the command
func (a *InfoCmd) Run(ctx *Cli) error {
	dev, err := ctx.Device()
	if err != nil {
		return err
	}

	rev, err := dev.Info()
	if err != nil {
		return errors.WithMessage(err, "failed to read revision")
	}
	configLocked, err := dev.ConfigurationIsLocked()
	if err != nil {
		return errors.WithMessage(err, "failed to read lock state")
	}
	dataLocked, err := dev.DataZoneIsLocked()
	if err != nil {
		return errors.WithMessage(err, "failed to read lock state")
	}
	config, err := dev.ReadConfigZone()
	if err != nil {
		return errors.WithMessage(err, "failed to read configuration zone")
	}

	// serial number is split around the revision
	serial := make([]byte, 0, 9)
	serial = append(serial, config[0:4]...)
	serial = append(serial, config[8:13]...)

	return ctx.WriteJSON(&deviceInfo{
		DeviceType:   dev.DeviceType().String(),
		Revision:     hex.EncodeToString(rev),
		ConfigLocked: configLocked,
		DataLocked:   dataLocked,
		Serial:       hex.EncodeToString(serial),
	})
}

// RandomCmd prints random bytes
type RandomCmd struct{}

// Run the command
func (a *RandomCmd) Run(ctx *Cli) error {
	dev, err := ctx.Device()
	if err != nil {
		return err
	}

	rnd, err := dev.Random()
	if err != nil {
		return errors.WithMessage(err, "failed to generate random")
	}
	fmt.Fprintln(ctx.Writer(), hex.EncodeToString(rnd))
	return nil
}

// ShaCmd prints SHA-256 digest computed by the device
type ShaCmd struct {
	Message string `help:"message text, if not set the message is read from --in"`
	In      string `help:"file to hash, stdin if not set" type:"path"`
}

// Run the command
func (a *ShaCmd) Run(ctx *Cli) error {
	msg, err := readMessage(ctx, a.Message, a.In)
	if err != nil {
		return err
	}

	dev, err := ctx.Device()
	if err != nil {
		return err
	}
	digest, err := dev.SHA(msg)
	if err != nil {
		return errors.WithMessage(err, "failed to compute digest")
	}
	fmt.Fprintln(ctx.Writer(), hex.EncodeToString(digest))
	return nil
}

// readMessage returns the message flag, the content of the file,
// or stdin
func readMessage(ctx *Cli, message, file string) ([]byte, error) {
	if message != "" {
		return []byte(message), nil
	}

	var r io.Reader = ctx.Reader()
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		defer f.Close()
		r = f
	}

	b, err := io.ReadAll(io.LimitReader(r, atca.MaxSHAMessageSize+1))
	if err != nil {
		return nil, errors.WithMessage(err, "failed to read message")
	}
	return b, nil
}

// ConfigCmd prints the configuration zone
type ConfigCmd struct {
	Raw     bool   `help:"print raw configuration zone in hex"`
	Compare string `help:"file with hex encoded configuration zone to compare with the device" type:"existingfile"`
}

// Run the command
func (a *ConfigCmd) Run(ctx *Cli) error {
	dev, err := ctx.Device()
	if err != nil {
		return err
	}

	if a.Compare != "" {
		b, err := os.ReadFile(a.Compare)
		if err != nil {
			return errors.WithStack(err)
		}
		expected, err := decodeHex("configuration zone", string(bytes.TrimSpace(b)))
		if err != nil {
			return err
		}
		same, err := dev.CmpConfigZone(expected)
		if err != nil {
			return errors.WithMessage(err, "failed to compare configuration zone")
		}
		fmt.Fprintf(ctx.Writer(), "same config: %s\n", values.Select(same, "yes", "no"))
		return nil
	}

	if a.Raw {
		config, err := dev.ReadConfigZone()
		if err != nil {
			return errors.WithMessage(err, "failed to read configuration zone")
		}
		fmt.Fprintln(ctx.Writer(), hex.EncodeToString(config))
		return nil
	}

	slots, err := dev.GetConfig()
	if err != nil {
		return errors.WithMessage(err, "failed to read slot configuration")
	}
	return ctx.WriteJSON(slots)
}

// NonceCmd loads a nonce into a device buffer, or combines a host nonce
// with a device random number
type NonceCmd struct {
	Target string `help:"target buffer: tempkey|msgdigest|altkey" default:"tempkey" enum:"tempkey,msgdigest,altkey"`
	Data   string `help:"hex encoded nonce of 32 or 64 bytes"`
	Host   string `help:"hex encoded 20 bytes host nonce, combined with a device random number"`
}

var nonceTargets = map[string]atca.NonceTarget{
	"tempkey":   atca.NonceTargetTempKey,
	"msgdigest": atca.NonceTargetMsgDigestBuffer,
	"altkey":    atca.NonceTargetAltKeyBuffer,
}

// Run the command
func (a *NonceCmd) Run(ctx *Cli) error {
	if (a.Data == "") == (a.Host == "") {
		return errors.New("specify either --data or --host")
	}

	dev, err := ctx.Device()
	if err != nil {
		return err
	}

	if a.Host != "" {
		host, err := decodeHex("host nonce", a.Host)
		if err != nil {
			return err
		}
		rnd, err := dev.NonceRand(host)
		if err != nil {
			return errors.WithMessage(err, "failed to load nonce")
		}
		fmt.Fprintln(ctx.Writer(), hex.EncodeToString(rnd))
		return nil
	}

	data, err := decodeHex("nonce", a.Data)
	if err != nil {
		return err
	}
	target := nonceTargets[a.Target]
	if err = dev.Nonce(target, data); err != nil {
		return errors.WithMessagef(err, "failed to load nonce into %s", target)
	}
	fmt.Fprintf(ctx.Writer(), "loaded %d bytes into %s\n", len(data), target)
	return nil
}
