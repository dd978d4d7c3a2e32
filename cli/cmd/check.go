package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/deepankarsharma/enaml/lang"
	"github.com/deepankarsharma/enaml/log"
)

// Check parses source files and reports diagnostics without printing
// trees. It exits nonzero if any source fails to parse.
type Check struct {
	Quiet bool `help:"Suppress per-file results; report only the exit status." short:"q"`

	Sources []string `arg:"" default:"-" help:"Source file(s) or '-' for stdin." name:"source" optional:""`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	opts := parseOptions(ctx)

	srcs, errs := openSources(c.Sources)
	failed := len(errs)

	for _, err := range errs {
		fmt.Fprintln(os.Stderr, err)
	}

	for _, src := range srcs {
		_, err := lang.ParseReader(ctx, src, src.Name, opts...)
		src.Close()

		if err != nil {
			failed++

			fmt.Fprintln(os.Stderr, err)

			continue
		}

		log.DebugContext(ctx, "check passed",
			slog.String("file", src.Name),
		)

		if !c.Quiet {
			fmt.Printf("%s: ok\n", src.Name)
		}
	}

	if failed > 0 {
		return ErrCheckFailed.With(slog.Int("sources", failed))
	}

	return nil
}
