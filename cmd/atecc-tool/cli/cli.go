package cli

import (
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/atecc/atca"
	"github.com/effective-security/atecc/device"
	"github.com/effective-security/x/print"
	"github.com/effective-security/xlog"

	// register device backends
	_ "github.com/effective-security/atecc/device/hwdevice"
	_ "github.com/effective-security/atecc/device/swdevice"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/atecc/cmd", "cli")

// Cli provides CLI context to run commands
type Cli struct {
	Cfg      string `help:"Location of device config file" required:"" type:"path"`
	Debug    bool   `short:"D" help:"Enable debug mode"`
	LogLevel string `short:"l" help:"Set the logging level (debug|info|warn|error)" default:"error"`

	// Stdin is the source to read from, typically set to os.Stdin
	stdin io.Reader
	// Output is the destination for all output from the command, typically set to os.Stdout
	output io.Writer
	// ErrOutput is the destinaton for errors.
	// If not set, errors will be written to os.StdError
	errOutput io.Writer

	dev device.Device
}

// Reader is the source to read from, typically set to os.Stdin
func (c *Cli) Reader() io.Reader {
	if c.stdin != nil {
		return c.stdin
	}
	return os.Stdin
}

// WithReader allows to specify a custom reader
func (c *Cli) WithReader(reader io.Reader) *Cli {
	c.stdin = reader
	return c
}

// Writer returns a writer for control output
func (c *Cli) Writer() io.Writer {
	if c.output != nil {
		return c.output
	}
	return os.Stdout
}

// WithWriter allows to specify a custom writer
func (c *Cli) WithWriter(out io.Writer) *Cli {
	c.output = out
	return c
}

// ErrWriter returns a writer for control output
func (c *Cli) ErrWriter() io.Writer {
	if c.errOutput != nil {
		return c.errOutput
	}
	return os.Stderr
}

// WithErrWriter allows to specify a custom error writer
func (c *Cli) WithErrWriter(out io.Writer) *Cli {
	c.errOutput = out
	return c
}

// AfterApply hook sets the log level
func (c *Cli) AfterApply(app *kong.Kong, vars kong.Vars) error {
	if c.Debug {
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	} else {
		val := strings.TrimLeft(c.LogLevel, "=")
		l, err := xlog.ParseLevel(strings.ToUpper(val))
		if err != nil {
			return errors.WithStack(err)
		}
		xlog.SetGlobalLogLevel(l)
	}

	return nil
}

// WriteJSON prints response to out
func (c *Cli) WriteJSON(value any) error {
	print.JSON(c.Writer(), value)
	return nil
}

// Device returns the device session, created on first use
func (c *Cli) Device() (device.Device, error) {
	if c.dev != nil {
		return c.dev, nil
	}
	if c.Cfg == "" {
		return nil, errors.New("use --cfg flag to specify device config file")
	}

	cfg, err := atca.LoadIfaceConfig(c.Cfg)
	if err != nil {
		return nil, err
	}

	c.dev, err = device.Create(cfg)
	if err != nil {
		return nil, errors.WithMessagef(err, "unable to initialize device")
	}
	logger.KV(xlog.DEBUG, "cfg", c.Cfg, "device", c.dev.DeviceType())
	return c.dev, nil
}

// Close releases the device session
func (c *Cli) Close() error {
	if c.dev == nil {
		return nil
	}
	err := c.dev.Release()
	c.dev = nil
	return err
}

// decodeHex decodes a hex flag value, spaces and colons are ignored
func decodeHex(name, value string) ([]byte, error) {
	value = strings.NewReplacer(" ", "", ":", "", "\n", "").Replace(value)
	b, err := hex.DecodeString(value)
	if err != nil {
		return nil, errors.WithMessagef(err, "invalid %s", name)
	}
	return b, nil
}
