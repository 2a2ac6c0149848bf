// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON config file, a .env
// file and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends understood by the server.
const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"server_address"`

	// StoreBackend selects the user store: "postgres" or "mongo".
	StoreBackend string `json:"store_backend"`

	// DatabaseDSN holds the PostgreSQL connection string.
	DatabaseDSN string `json:"database_dsn"`

	// MongoURI and MongoDatabase locate the MongoDB store.
	MongoURI      string `json:"mongo_uri"`
	MongoDatabase string `json:"mongo_database"`

	// JWTSecret signs session tokens.
	JWTSecret string `json:"jwt_secret"`
	// SessionTTL is the lifetime of an issued session token.
	SessionTTL Duration `json:"session_ttl"`
	// CookieName is the session cookie name.
	CookieName string `json:"cookie_name"`
	// CookieSecure marks the session cookie Secure.
	CookieSecure bool `json:"cookie_secure"`

	// CORSOrigins is a comma-separated list of allowed browser origins.
	CORSOrigins string `json:"cors_origins"`

	// MailFrom is the sender address for verification emails.
	MailFrom string `json:"mail_from"`
	// ResendAPIKey enables delivery through Resend. Empty means log-only.
	ResendAPIKey string `json:"resend_api_key"`
	// ResendBaseURL overrides the Resend API endpoint.
	ResendBaseURL string `json:"resend_base_url"`

	// OpenAIAPIKey enables generated message suggestions.
	OpenAIAPIKey string `json:"openai_api_key"`
	// OpenAIModel is the chat model used for suggestions.
	OpenAIModel string `json:"openai_model"`
	// OpenAIBaseURL overrides the OpenAI API endpoint.
	OpenAIBaseURL string `json:"openai_base_url"`

	// TLSCertFile and TLSKeyFile switch the server to HTTPS when both are set.
	TLSCertFile string `json:"tls_cert_file"`
	TLSKeyFile  string `json:"tls_key_file"`

	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`

	// PendingRetention prunes unverified accounts whose code expired longer
	// ago than this. Zero disables pruning.
	PendingRetention Duration `json:"pending_retention"`
	// CleanerInterval is how often the pruner runs.
	CleanerInterval Duration `json:"cleaner_interval"`

	// Config is the path to the Config file.
	Config string `json:"-"`
	// EnvFile is the path to an optional .env file.
	EnvFile string `json:"-"`
}

// Duration is a time.Duration that unmarshals from "1h30m" strings or
// integer nanoseconds.
type Duration struct {
	time.Duration
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("invalid duration: %s", string(b))
	}
}

// Set implements flag.Value.
func (d *Duration) Set(s string) error {
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Default returns the built-in development defaults.
func Default() *Options {
	return &Options{
		Port:            "localhost:8080",
		StoreBackend:    BackendPostgres,
		MongoURI:        "mongodb://localhost:27017",
		MongoDatabase:   "feedliner",
		JWTSecret:       "dev-secret-change-me",
		SessionTTL:      Duration{30 * 24 * time.Hour},
		CookieName:      "feedliner_session",
		CORSOrigins:     "http://localhost:3000",
		MailFrom:        "onboarding@resend.dev",
		ResendBaseURL:   "https://api.resend.com",
		OpenAIModel:     "gpt-3.5-turbo",
		OpenAIBaseURL:   "https://api.openai.com/v1",
		LogLevel:        "info",
		CleanerInterval: Duration{time.Hour},
		Config:          "config.json",
		EnvFile:         ".env",
	}
}

// options holds the current configuration values.
var options = Default()

// init initializes command-line flags and sets default values.
func init() {
	register(flag.CommandLine, options)
}

func register(fs *flag.FlagSet, o *Options) {
	fs.StringVar(&o.Port, "a", o.Port, "run on ip:port server")
	fs.StringVar(&o.StoreBackend, "store", o.StoreBackend, "user store backend: postgres | mongo")
	fs.StringVar(&o.DatabaseDSN, "d", o.DatabaseDSN, "postgres DSN")
	fs.StringVar(&o.MongoURI, "mongo-uri", o.MongoURI, "mongodb connection URI")
	fs.StringVar(&o.MongoDatabase, "mongo-db", o.MongoDatabase, "mongodb database name")
	fs.StringVar(&o.JWTSecret, "s", o.JWTSecret, "session token signing secret")
	fs.Var(&o.SessionTTL, "session-ttl", "session token lifetime")
	fs.StringVar(&o.CookieName, "cookie", o.CookieName, "session cookie name")
	fs.BoolVar(&o.CookieSecure, "cookie-secure", o.CookieSecure, "mark session cookie Secure")
	fs.StringVar(&o.CORSOrigins, "cors", o.CORSOrigins, "comma-separated allowed origins")
	fs.StringVar(&o.MailFrom, "mail-from", o.MailFrom, "verification email sender")
	fs.StringVar(&o.TLSCertFile, "tls-cert", o.TLSCertFile, "TLS certificate file")
	fs.StringVar(&o.TLSKeyFile, "tls-key", o.TLSKeyFile, "TLS key file")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "log level")
	fs.Var(&o.PendingRetention, "pending-retention", "prune unverified accounts expired for longer than this (0 disables)")
	fs.Var(&o.CleanerInterval, "cleaner-interval", "pending account pruner interval")
	fs.StringVar(&o.Config, "config", o.Config, "path to config file")
	fs.StringVar(&o.Config, "c", o.Config, "path to config file (shorthand)")
	fs.StringVar(&o.EnvFile, "env-file", o.EnvFile, "path to .env file")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct containing
// the parsed configuration values.
func Parse() (*Options, error) {
	flag.Parse()
	if err := resolve(options); err != nil {
		return nil, err
	}
	return options, nil
}

// resolve overlays the config file, the .env file and the environment on o.
// Environment variables win over the config file; flags only provide
// the starting values.
func resolve(o *Options) error {
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		o.Config = configPath
	}

	if o.Config != "" {
		if _, err := os.Stat(o.Config); err == nil {
			data, err := os.ReadFile(o.Config)
			if err != nil {
				return fmt.Errorf("read config file: %w", err)
			}
			if err := json.Unmarshal(data, o); err != nil {
				return fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if o.EnvFile != "" {
		if _, err := os.Stat(o.EnvFile); err == nil {
			// Load never overrides variables already present in the environment.
			if err := godotenv.Load(o.EnvFile); err != nil {
				return fmt.Errorf("load env file: %w", err)
			}
		}
	}

	if err := applyEnv(o); err != nil {
		return err
	}
	return o.validate()
}

func applyEnv(o *Options) error {
	strs := map[string]*string{
		"SERVER_ADDRESS":  &o.Port,
		"STORE_BACKEND":   &o.StoreBackend,
		"DATABASE_DSN":    &o.DatabaseDSN,
		"MONGO_URI":       &o.MongoURI,
		"MONGO_DATABASE":  &o.MongoDatabase,
		"JWT_SECRET":      &o.JWTSecret,
		"COOKIE_NAME":     &o.CookieName,
		"CORS_ORIGINS":    &o.CORSOrigins,
		"MAIL_FROM":       &o.MailFrom,
		"RESEND_API_KEY":  &o.ResendAPIKey,
		"RESEND_BASE_URL": &o.ResendBaseURL,
		"OPENAI_API_KEY":  &o.OpenAIAPIKey,
		"OPENAI_MODEL":    &o.OpenAIModel,
		"OPENAI_BASE_URL": &o.OpenAIBaseURL,
		"TLS_CERT_FILE":   &o.TLSCertFile,
		"TLS_KEY_FILE":    &o.TLSKeyFile,
		"LOG_LEVEL":       &o.LogLevel,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	durations := map[string]*Duration{
		"SESSION_TTL":       &o.SessionTTL,
		"PENDING_RETENTION": &o.PendingRetention,
		"CLEANER_INTERVAL":  &o.CleanerInterval,
	}
	for key, dst := range durations {
		if v := os.Getenv(key); v != "" {
			if err := dst.Set(v); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		}
	}

	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("COOKIE_SECURE: %w", err)
		}
		o.CookieSecure = secure
	}
	return nil
}

func (o *Options) validate() error {
	o.StoreBackend = strings.ToLower(strings.TrimSpace(o.StoreBackend))
	switch o.StoreBackend {
	case BackendPostgres:
		if o.DatabaseDSN == "" {
			return fmt.Errorf("postgres backend requires a database DSN")
		}
	case BackendMongo:
		if o.MongoURI == "" || o.MongoDatabase == "" {
			return fmt.Errorf("mongo backend requires a URI and database name")
		}
	default:
		return fmt.Errorf("unknown store backend %q", o.StoreBackend)
	}
	if o.JWTSecret == "" {
		return fmt.Errorf("jwt secret must not be empty")
	}
	if o.CleanerInterval.Duration <= 0 {
		o.CleanerInterval.Duration = time.Hour
	}
	return nil
}

// Origins splits CORSOrigins into trimmed entries without trailing slashes.
func (o *Options) Origins() []string {
	var origins []string
	for _, p := range strings.Split(o.CORSOrigins, ",") {
		if origin := strings.TrimRight(strings.TrimSpace(p), "/"); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// TLSEnabled reports whether both certificate and key are configured.
func (o *Options) TLSEnabled() bool {
	return o.TLSCertFile != "" && o.TLSKeyFile != ""
}
