package config

import (
	"github.com/spf13/pflag"
)

// Flags holds CLI overrides. Nil fields were not given on the command line.
type Flags struct {
	ConfigPath *string
	Port       *string
	LogLevel   *string
	DSN        *string
	NatsURL    *string
	Classifier *string
}

// ParseFlags parses serve flags from args.
func ParseFlags(args []string) (*Flags, error) {
	fs := pflag.NewFlagSet("genia", pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", DefaultConfigFile, "path to YAML config file")
	port := fs.StringP("port", "p", "", "HTTP listen port")
	logLevel := fs.String("log-level", "", "log level (debug, info, warn, error)")
	dsn := fs.String("dsn", "", "PostgreSQL DSN")
	natsURL := fs.String("nats-url", "", "NATS server URL")
	classifier := fs.String("classifier", "", "intent classifier (litellm, openai, keyword)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	f := &Flags{}
	if fs.Changed("config") {
		f.ConfigPath = configPath
	}
	if fs.Changed("port") {
		f.Port = port
	}
	if fs.Changed("log-level") {
		f.LogLevel = logLevel
	}
	if fs.Changed("dsn") {
		f.DSN = dsn
	}
	if fs.Changed("nats-url") {
		f.NatsURL = natsURL
	}
	if fs.Changed("classifier") {
		f.Classifier = classifier
	}
	return f, nil
}

// ApplyCLI overlays flags onto cfg and re-validates it.
func ApplyCLI(cfg *Config, f *Flags) error {
	if f == nil {
		return nil
	}
	if f.Port != nil {
		cfg.Server.Port = *f.Port
	}
	if f.LogLevel != nil {
		cfg.Logging.Level = *f.LogLevel
	}
	if f.DSN != nil {
		cfg.Postgres.DSN = *f.DSN
	}
	if f.NatsURL != nil {
		cfg.NATS.URL = *f.NatsURL
	}
	if f.Classifier != nil {
		cfg.Classifier.Provider = *f.Classifier
	}
	return validate(cfg)
}
