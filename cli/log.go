package cli

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/deepankarsharma/enaml/log"
)

// logFormat configures the logger format as a side effect of parsing
// via encoding.TextUnmarshaler.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
// Kong calls this while parsing --log-format, which configures the logger
// early enough to affect error messages emitted during parsing itself.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel configures the logger level as a side effect of parsing
// via encoding.TextUnmarshaler.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
// Kong calls this while parsing --log-level, which configures the logger
// early enough to affect error messages emitted during parsing itself.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info"    enum:"trace,debug,info,warn,error" help:"Set log level."`
	Format     logFormat `default:"json"    enum:"json,text"                   help:"Set log format."`
	TimeLayout string    `default:"RFC3339"                                    help:"Set timestamp format."`
	Caller     bool      `default:"false"                                      help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"                                       help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{}
}

func (*logConfig) group() kong.Group {
	var group kong.Group

	group.Key = "log"
	group.Title = "Logging options"

	return group
}

func (f *logConfig) start(ctx context.Context) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)
}

// setBool applies a boolean logger flag, honoring an explicit "=value"
// assignment when present.
func (f *logConfig) setBool(value string, assigned, implied bool, apply func(bool)) {
	if assigned {
		v, err := strconv.ParseBool(value)
		if err != nil {
			return
		}

		if !implied {
			v = !v
		}

		apply(v)

		return
	}

	apply(implied)
}

// scan performs an early pass over command-line arguments to extract and
// apply logger configuration before Kong begins parsing. This ensures the
// logger is configured properly regardless of flag position on the command
// line.
//
// While logFormat and logLevel implement encoding.TextUnmarshaler to
// configure the logger as flags are encountered during parsing, boolean
// flags like Pretty don't go through that interface. This pre-scan applies
// all logger flags up front.
func (f *logConfig) scan(args []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]

		rest, negated := strings.CutPrefix(arg, "--no-log-")
		if !negated {
			var isLog bool

			rest, isLog = strings.CutPrefix(arg, "--log-")
			if !isLog {
				continue
			}
		}

		name, value, assigned := strings.Cut(rest, "=")

		// Non-boolean flags consume the next argument when the value was
		// not assigned inline.
		takeValue := func() string {
			if assigned {
				return value
			}

			if i+1 < len(args) && len(args[i+1]) > 0 && args[i+1][0] != '-' {
				i++

				return args[i]
			}

			return ""
		}

		switch {
		case !negated && name == "level":
			_ = f.Level.UnmarshalText([]byte(takeValue()))

		case !negated && name == "format":
			_ = f.Format.UnmarshalText([]byte(takeValue()))

		case name == "pretty":
			f.setBool(value, assigned, !negated, func(v bool) {
				f.Pretty = v
				log.Config(log.WithPretty(v))
			})

		case name == "caller":
			f.setBool(value, assigned, !negated, func(v bool) {
				f.Caller = v
				log.Config(log.WithCaller(v))
			})
		}
	}
}
