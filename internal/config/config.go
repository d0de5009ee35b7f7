// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON file and
// environment variables.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Duration is a time.Duration that reads JSON strings such as "800ms".
type Duration time.Duration

// UnmarshalJSON accepts a Go duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var n int64
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("duration must be a string or integer: %s", b)
		}
		*d = Duration(n)
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Options holds the configuration values for the application.
type Options struct {
	// Store selects the storage backend: memory, file, sqlite or badger.
	Store string `json:"store"`

	// StorePath is the file or directory of the storage backend.
	StorePath string `json:"store_path"`

	// Rules names the validation rule set: canonical or legacy.
	Rules string `json:"rules"`

	// LogLevel is the minimum zap level written to the log.
	LogLevel string `json:"log_level"`

	// LogFile receives the log; empty means stderr.
	LogFile string `json:"log_file"`

	// Delay is the cosmetic pause shown as a loading state.
	Delay Duration `json:"delay"`

	// AutoLogin logs a user in right after sign-up.
	AutoLogin bool `json:"auto_login"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// Parse builds Options from args (without the program name).
// Precedence, lowest first: defaults, config file, flags, environment.
func Parse(args []string) (*Options, error) {
	options := &Options{}

	fs := flag.NewFlagSet("authdemo", flag.ContinueOnError)
	fs.StringVar(&options.Store, "store", "file", "storage backend: memory | file | sqlite | badger")
	fs.StringVar(&options.StorePath, "path", "", "storage file or directory")
	fs.StringVar(&options.Rules, "rules", "canonical", "validation rules: canonical | legacy")
	fs.StringVar(&options.LogLevel, "log-level", "info", "log level")
	fs.StringVar(&options.LogFile, "log-file", "authdemo.log", "log file (empty for stderr)")
	fs.DurationVar((*time.Duration)(&options.Delay), "delay", 0, "cosmetic delay before storage operations")
	fs.BoolVar(&options.AutoLogin, "auto-login", false, "log in right after sign-up")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				return nil, fmt.Errorf("error while reading config file: %w", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
			// Parse again so explicit flags win over the file.
			if err := fs.Parse(args); err != nil {
				return nil, err
			}
		}
	}

	if err := applyEnv(options); err != nil {
		return nil, err
	}
	return options, nil
}

func applyEnv(options *Options) error {
	if v := os.Getenv("AUTHDEMO_STORE"); v != "" {
		options.Store = v
	}
	if v := os.Getenv("AUTHDEMO_STORE_PATH"); v != "" {
		options.StorePath = v
	}
	if v := os.Getenv("AUTHDEMO_RULES"); v != "" {
		options.Rules = v
	}
	if v := os.Getenv("AUTHDEMO_LOG_LEVEL"); v != "" {
		options.LogLevel = v
	}
	if v := os.Getenv("AUTHDEMO_LOG_FILE"); v != "" {
		options.LogFile = v
	}
	if v := os.Getenv("AUTHDEMO_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("AUTHDEMO_DELAY: %w", err)
		}
		options.Delay = Duration(d)
	}
	if v := os.Getenv("AUTHDEMO_AUTO_LOGIN"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("AUTHDEMO_AUTO_LOGIN: %w", err)
		}
		options.AutoLogin = b
	}
	return nil
}
