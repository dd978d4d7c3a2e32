package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolveYAML is a [kong.ConfigurationLoader] that reads flag defaults
// from a YAML config file.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolveYAML, "/path/to/config.yaml")
//
// The file is a flat mapping of flag names to values. Flag names with
// hyphens (e.g., "log-level") may use underscores in the config file
// (e.g., "log_level"):
//
//	log_level: debug
//	log_format: json
//	log_pretty: true
//
// Command-line flags override config file values.
func resolveYAML(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	values := make(map[string]any)
	if err := yaml.Unmarshal(data, &values); err != nil {
		// Malformed config files are ignored rather than fatal.
		return config{}, nil
	}

	// Kong expects scalar values as strings.
	for key, value := range values {
		switch v := value.(type) {
		case int64:
			values[key] = strconv.FormatInt(v, 10)
		case uint64:
			values[key] = strconv.FormatUint(v, 10)
		case float64:
			values[key] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}

	return config(values), nil
}

// config implements [kong.Resolver] for YAML config files.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	// No validation needed: the config was already parsed successfully
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	// Kong flags use hyphens (e.g., "log-level") but config keys may use
	// underscores. Try both forms.
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	// Not found: let Kong use defaults
	return nil, nil
}
