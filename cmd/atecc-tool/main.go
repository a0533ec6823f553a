package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/effective-security/atecc/cmd/atecc-tool/cli"
	"github.com/effective-security/atecc/internal/version"
	"github.com/effective-security/x/ctl"
)

type app struct {
	cli.Cli

	Info   cli.InfoCmd   `cmd:"" help:"print device information"`
	Random cli.RandomCmd `cmd:"" help:"generate random bytes with the device RNG"`
	Sha    cli.ShaCmd    `cmd:"" help:"compute SHA-256 digest on the device"`
	Config cli.ConfigCmd `cmd:"" help:"print or compare the configuration zone"`
	Genkey cli.GenKeyCmd `cmd:"" help:"generate P256 private key in a slot"`
	Pubkey cli.PubKeyCmd `cmd:"" help:"print public key of a slot"`
	Import cli.ImportCmd `cmd:"" help:"write key material into a slot"`
	Sign   cli.SignCmd   `cmd:"" help:"sign digest with the key in a slot"`
	Verify cli.VerifyCmd `cmd:"" help:"verify signature"`
	Nonce  cli.NonceCmd  `cmd:"" help:"load nonce into a device buffer"`
}

func main() {
	realMain(os.Args, os.Stdout, os.Stderr, os.Exit)
}

func realMain(args []string, out io.Writer, errout io.Writer, exit func(int)) {
	cl := app{
		Cli: cli.Cli{},
	}
	cl.Cli.WithErrWriter(errout).
		WithWriter(out)

	parser, err := kong.New(&cl,
		kong.Name("atecc-tool"),
		kong.Description("CLI tool for ATECC and ATSHA secure elements"),
		kong.Writers(out, errout),
		kong.Exit(exit),
		ctl.BoolPtrMapper,
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version.Current().String(),
		})
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args[1:])
	parser.FatalIfErrorf(err)

	if ctx != nil {
		if cl.Debug {
			// in DEBUG more print command line
			_, _ = fmt.Fprintf(ctx.Stdout, "#\n# %s\n#\n", strings.Join(args, " "))
		}
		err = ctx.Run(&cl.Cli)
		if cerr := cl.Cli.Close(); err == nil {
			err = cerr
		}
		ctx.FatalIfErrorf(err)
	}
}
