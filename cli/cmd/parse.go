package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/deepankarsharma/enaml/lang"
)

// Parse parses source files and prints their syntax trees.
type Parse struct {
	Format string `default:"yaml" enum:"yaml,json" help:"Output format."           short:"F"`
	Indent int    `default:"2"                     help:"Indent width for output." short:"i"`

	Sources []string `arg:"" default:"-" help:"Source file(s) or '-' for stdin." name:"source" optional:""`
}

// Run executes the parse command.
func (c *Parse) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	opts := parseOptions(ctx)

	srcs, errs := openSources(c.Sources)
	if len(errs) > 0 {
		return errs[0]
	}

	for _, src := range srcs {
		mod, err := lang.ParseReader(ctx, src, src.Name, opts...)
		src.Close()

		if err != nil {
			return lang.WrapError(err).
				With(slog.String("command", "parse"))
		}

		if err := c.dump(ctx, mod); err != nil {
			return err
		}
	}

	return nil
}

func (c *Parse) dump(ctx context.Context, mod *lang.Module) error {
	switch c.Format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", fmt.Sprintf("%*s", c.Indent, ""))

		if err := enc.Encode(mod.ToMap()); err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

	default:
		data, err := yaml.MarshalContext(ctx, mod.ToMap(),
			yaml.Indent(c.Indent))
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		fmt.Print(string(data))
	}

	return nil
}
