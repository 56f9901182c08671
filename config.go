package apicall

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
)

// Environment keys read by LoadConfig.
const (
	EnvBaseURL    = "APICALL_BASE_URL"
	EnvHashIDs    = "APICALL_HASH_IDS"
	EnvAuth       = "APICALL_AUTH"
	EnvJWTSecret  = "APICALL_JWT_SECRET"
	EnvJWTSubject = "APICALL_JWT_SUBJECT"
	EnvJWTTTL     = "APICALL_JWT_TTL"
)

// Config holds the settings shared by every CallBuilder in a test run.
type Config struct {
	BaseURL    string
	HashIDs    bool
	Auth       bool
	JWTSecret  string
	JWTSubject string
	JWTTTL     time.Duration
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{Auth: true, JWTTTL: time.Hour}
}

// LoadConfig builds a Config from the process environment, falling back to the
// values in envFile. An empty envFile or a missing file means OS environment only.
// All invalid values are reported together.
func LoadConfig(envFile string) (Config, error) {
	dotEnvVars := map[string]string{}
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			loaded, err := godotenv.Read(envFile)
			if err != nil {
				return Config{}, fmt.Errorf("failed to read env file %s: %w", envFile, err)
			}
			dotEnvVars = loaded
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotEnvVars[key]
		return v, ok
	}

	cfg := DefaultConfig()
	var errs *multierror.Error

	if v, ok := lookup(EnvBaseURL); ok {
		cfg.BaseURL = v
	}
	if v, ok := lookup(EnvJWTSecret); ok {
		cfg.JWTSecret = v
	}
	if v, ok := lookup(EnvJWTSubject); ok {
		cfg.JWTSubject = v
	}
	if v, ok := lookup(EnvHashIDs); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", EnvHashIDs, err))
		} else {
			cfg.HashIDs = b
		}
	}
	if v, ok := lookup(EnvAuth); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", EnvAuth, err))
		} else {
			cfg.Auth = b
		}
	}
	if v, ok := lookup(EnvJWTTTL); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", EnvJWTTTL, err))
		} else {
			cfg.JWTTTL = d
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
