package crinex

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ExitCode mirrors the wrapping CLI's exit status convention: 0 success,
// 1 fatal error, 2 success with one or more recovered warnings.
type ExitCode int

const (
	ExitSuccess ExitCode = 0
	ExitError   ExitCode = 1
	ExitWarning ExitCode = 2
)

// Config is the read-only policy the CLI layer derives from its flags
// before handing control to the Encoder.
type Config struct {
	// ResetInterval is -e N: force a full arc reset every N regular
	// epochs. 0 disables periodic reset.
	ResetInterval int
	// SkipStrange is -s: warn and resynchronize on structural errors
	// instead of aborting.
	SkipStrange bool
}

// Encoder is the single object owning all per-run state: the ArcStore,
// OutputBuffer, LineSource and Differ. It replaces the reference
// implementation's process-wide globals.
type Encoder struct {
	cfg   Config
	in    io.Reader
	out   io.Writer
	warn  io.Writer
	stats Stats
}

// NewEncoder builds an Encoder reading in and writing compressed output to
// out, with diagnostics sent to warn.
func NewEncoder(cfg Config, in io.Reader, out io.Writer, warn io.Writer) *Encoder {
	return &Encoder{cfg: cfg, in: in, out: out, warn: warn}
}

// Stats returns the run's diagnostic counters. Meaningful only after Run
// has returned.
func (e *Encoder) Stats() Stats {
	return e.stats
}

// Run compresses the RINEX stream in full. It checks ctx between epochs so
// a caller driving many files (the batch subcommand) can cancel a run in
// progress; the reference's single-shot CLI process never needed this.
func (e *Encoder) Run(ctx context.Context) (ExitCode, error) {
	cin := &countingReader{r: e.in}
	cout := &countingWriter{w: e.out}
	e.stats = Stats{}

	ls := NewLineSource(cin)

	hc, err := CopyHeader(ls, cout)
	if err != nil {
		e.stats.BytesIn, e.stats.BytesOut = cin.n, cout.n
		return ExitError, err
	}

	store := NewArcStore()
	er := NewEpochReader(ls, hc.Version, &hc.Observables, e.cfg.SkipStrange)
	differ := NewDiffer(hc.Version, store)
	buf := NewOutputBuffer(cout)

	exit := ExitSuccess

	finish := func(code ExitCode, err error) (ExitCode, error) {
		e.stats.BytesIn, e.stats.BytesOut = cin.n, cout.n
		return code, err
	}

	for {
		select {
		case <-ctx.Done():
			return finish(exit, ctx.Err())
		default:
		}

		ev, reg, err := er.Next()
		if err != nil {
			if errors.Is(err, ErrEndOfStream) {
				return finish(exit, nil)
			}
			if errors.Is(err, ErrTrailingNulls) {
				fmt.Fprintln(e.warn, "WARNING: trailing null characters detected at end of file, neglected")
				return finish(ExitWarning, nil)
			}
			var cerr *Error
			if errors.As(err, &cerr) && cerr.Kind.recoverable() && e.cfg.SkipStrange {
				fmt.Fprintf(e.warn, "WARNING: %v\n", cerr)
				buf.Discard()
				e.stats.EpochsSkipped++
				if rerr := er.Resync(); rerr != nil {
					if errors.Is(rerr, ErrEndOfStream) || errors.Is(rerr, ErrTrailingNulls) {
						if errors.Is(rerr, ErrTrailingNulls) {
							fmt.Fprintln(e.warn, "WARNING: trailing null characters detected at end of file, neglected")
						}
						return finish(ExitWarning, nil)
					}
					return finish(ExitError, rerr)
				}
				store.FullReset(0)
				e.stats.Resets++
				exit = ExitWarning
				continue
			}
			return finish(ExitError, err)
		}

		if ev != nil {
			if err := e.writeEvent(cout, ev); err != nil {
				return finish(ExitError, err)
			}
			e.stats.EventRecords++
			if ev.ObservablesReset {
				store.InvalidateFlagBuffers()
			}
			store.FullReset(0)
			e.stats.Resets++
			continue
		}

		if e.cfg.ResetInterval > 0 {
			store.EpochCount++
			if store.EpochCount > e.cfg.ResetInterval {
				store.FullReset(1)
				e.stats.Resets++
			}
		}

		if err := differ.Encode(buf, reg); err != nil {
			return finish(ExitError, err)
		}
		if err := buf.Flush(); err != nil {
			return finish(ExitError, err)
		}
		e.stats.EpochsWritten++
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func (e *Encoder) writeEvent(w io.Writer, ev *EventRecord) error {
	if _, err := fmt.Fprintf(w, "%s\n", ev.HeaderLine); err != nil {
		return err
	}
	for _, line := range ev.FollowOnLines {
		if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
			return err
		}
	}
	return nil
}
