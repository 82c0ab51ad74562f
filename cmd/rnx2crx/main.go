// Command rnx2crx compresses a RINEX observation file into Compact RINEX
// (Hatanaka) format.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/de-bkg/rnx2crx/pkg/crinex"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Version:   "4.0.8",
		Compiled:  time.Now(),
		HelpName:  "rnx2crx",
		Usage:     "compress a RINEX observation file to Compact RINEX",
		ArgsUsage: "[<obs-file>|-]",
		HideHelp:  true,
		Writer:    os.Stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "f", Usage: "overwrite the output file without prompting"},
			&cli.IntFlag{Name: "e", Usage: "force a full reset every N epochs (N > 0)"},
			&cli.BoolFlag{Name: "s", Usage: "on structural errors, warn and resynchronize instead of failing"},
			&cli.BoolFlag{Name: "d", Usage: "delete the input file on exit status 0 or 2 (no-op for stdin)"},
			&cli.BoolFlag{Name: "z", Usage: "gzip the output file after a successful run"},
			&cli.BoolFlag{Name: "h", Usage: "print help to stderr and exit"},
		},
		Action: runCompress,
		Commands: []*cli.Command{
			batchCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// runCompress is the Action for the default (non-batch) invocation: read one
// RINEX stream, possibly from stdin, and write one Compact RINEX stream,
// possibly to stdout.
func runCompress(c *cli.Context) error {
	if c.Bool("h") {
		cli.ShowAppHelpAndExit(c, 1)
	}

	forceStdout := false
	var inputPath string
	for _, a := range c.Args().Slice() {
		if a == "-" {
			forceStdout = true
			continue
		}
		if inputPath != "" {
			return cli.Exit("at most one input file may be given", 1)
		}
		inputPath = a
	}

	cfg := crinex.Config{
		ResetInterval: c.Int("e"),
		SkipStrange:   c.Bool("s"),
	}

	in, closeIn, err := openInput(inputPath)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer closeIn()

	outPath, out, closeOut, err := openOutput(inputPath, forceStdout, c.Bool("f"))
	if err != nil {
		return cli.Exit(err, 1)
	}

	enc := crinex.NewEncoder(cfg, in, out, os.Stderr)
	code, err := enc.Run(context.Background())
	if cerr := closeOut(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return cli.Exit(err, 1)
	}

	if c.Bool("z") && outPath != "" {
		if _, gzErr := crinex.GzipAndRemove(outPath); gzErr != nil {
			return cli.Exit(gzErr, 1)
		}
	}

	if c.Bool("d") && inputPath != "" && (code == crinex.ExitSuccess || code == crinex.ExitWarning) {
		if rmErr := os.Remove(inputPath); rmErr != nil {
			return cli.Exit(rmErr, 1)
		}
	}

	os.Exit(int(code))
	return nil
}

func openInput(inputPath string) (io.Reader, func() error, error) {
	if inputPath == "" {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(inputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, f.Close, nil
}

// openOutput returns the output writer and, when writing to a real file,
// that file's path (so -z and -d have something to act on afterwards).
func openOutput(inputPath string, forceStdout, force bool) (string, io.Writer, func() error, error) {
	if forceStdout || inputPath == "" {
		return "", os.Stdout, func() error { return nil }, nil
	}

	outPath, err := crinex.DeriveOutputName(inputPath)
	if err != nil {
		return "", nil, nil, err
	}

	if !force {
		if _, err := os.Stat(outPath); err == nil {
			return "", nil, nil, fmt.Errorf("output file %q already exists, use -f to overwrite", outPath)
		}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return "", nil, nil, fmt.Errorf("create output: %w", err)
	}
	return outPath, f, f.Close, nil
}
