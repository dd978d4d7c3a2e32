package log

// Option transforms a logger configuration.
type Option func(config) config

// apply folds opts over cfg in order, later options winning.
func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		cfg = opt(cfg)
	}

	return cfg
}
