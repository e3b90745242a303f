package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/user/edge-probe/pkg/utils"
)

// Config holds the application configuration.
type Config struct {
	EndpointURL  string `mapstructure:"EDGE_FUNCTION_URL"`
	ProjectURL   string `mapstructure:"SUPABASE_URL"`
	FunctionName string `mapstructure:"EDGE_FUNCTION_NAME"`
	AccessToken  string `mapstructure:"SUPABASE_ACCESS_TOKEN"`
	AnonKey      string `mapstructure:"SUPABASE_ANON_KEY"`

	QuestionnaireFile string        `mapstructure:"QUESTIONNAIRE_FILE"`
	UserAgent         string        `mapstructure:"USER_AGENT"`
	UnauthTimeout     time.Duration `mapstructure:"UNAUTH_TIMEOUT"`
	AuthTimeout       time.Duration `mapstructure:"AUTH_TIMEOUT"`

	CreateNewQuestionnaire bool `mapstructure:"IMPORT_CREATE_NEW"`
	MergeWithExisting      bool `mapstructure:"IMPORT_MERGE_EXISTING"`
	PreserveIDs            bool `mapstructure:"IMPORT_PRESERVE_IDS"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	ServerPort    string        `mapstructure:"SERVER_PORT"`
	PostgresURL   string        `mapstructure:"POSTGRES_URL"`
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	Cooldown      time.Duration `mapstructure:"DIAGNOSE_COOLDOWN"`
	HistorySize   int           `mapstructure:"HISTORY_SIZE"`

	PushgatewayURL string `mapstructure:"PUSHGATEWAY_URL"`
}

var defaults = map[string]any{
	"EDGE_FUNCTION_URL":     "",
	"SUPABASE_URL":          "https://poppadzpyftjkergccpn.supabase.co",
	"EDGE_FUNCTION_NAME":    "import-questionnaire",
	"SUPABASE_ACCESS_TOKEN": "",
	"SUPABASE_ANON_KEY":     "",
	"QUESTIONNAIRE_FILE":    "test_questionnaire.json",
	"USER_AGENT":            "SeusDados-CRM-Test/1.0",
	"UNAUTH_TIMEOUT":        10 * time.Second,
	"AUTH_TIMEOUT":          60 * time.Second,
	"IMPORT_CREATE_NEW":     true,
	"IMPORT_MERGE_EXISTING": false,
	"IMPORT_PRESERVE_IDS":   false,
	"LOG_LEVEL":             "info",
	"LOG_FORMAT":            "json",
	"SERVER_PORT":           "8080",
	"POSTGRES_URL":          "",
	"REDIS_ADDR":            "",
	"REDIS_PASSWORD":        "",
	"REDIS_DB":              0,
	"DIAGNOSE_COOLDOWN":     time.Minute,
	"HISTORY_SIZE":          50,
	"PUSHGATEWAY_URL":       "",
}

// flagKeys maps CLI flag names to configuration keys.
var flagKeys = map[string]string{
	"url":            "EDGE_FUNCTION_URL",
	"file":           "QUESTIONNAIRE_FILE",
	"unauth-timeout": "UNAUTH_TIMEOUT",
	"auth-timeout":   "AUTH_TIMEOUT",
	"create-new":     "IMPORT_CREATE_NEW",
	"merge":          "IMPORT_MERGE_EXISTING",
	"preserve-ids":   "IMPORT_PRESERVE_IDS",
	"log-level":      "LOG_LEVEL",
	"log-format":     "LOG_FORMAT",
	"port":           "SERVER_PORT",
	"pushgateway":    "PUSHGATEWAY_URL",
}

// RegisterFlags defines the command-line overrides understood by Load.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("url", "", "Edge function URL (overrides SUPABASE_URL + EDGE_FUNCTION_NAME)")
	fs.String("file", "test_questionnaire.json", "Questionnaire file to upload")
	fs.Duration("unauth-timeout", 10*time.Second, "Timeout for the unauthenticated probe")
	fs.Duration("auth-timeout", 60*time.Second, "Timeout for the authenticated probe")
	fs.Bool("create-new", true, "import_options.create_new_questionnaire")
	fs.Bool("merge", false, "import_options.merge_with_existing")
	fs.Bool("preserve-ids", false, "import_options.preserve_ids")
	fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	fs.String("log-format", "", "Log format (json, text)")
	fs.String("port", "8080", "HTTP server port")
	fs.String("pushgateway", "", "Prometheus Pushgateway URL")
}

// Option adjusts how Load resolves configuration.
type Option func(v *viper.Viper)

// WithDefault replaces the built-in default of key. Values from .env, the
// environment or flags still take precedence.
func WithDefault(key string, value any) Option {
	return func(v *viper.Viper) {
		v.SetDefault(key, value)
	}
}

// Load reads configuration from an optional .env file, environment variables
// and, when fs is non-nil, flags registered with RegisterFlags.
func Load(fs *pflag.FlagSet, opts ...Option) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Missing .env is fine: production is configured through the environment.
	_ = v.ReadInConfig()

	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	for _, opt := range opts {
		opt(v)
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.UnauthTimeout <= 0 || cfg.AuthTimeout <= 0 {
		return nil, fmt.Errorf("probe timeouts must be positive (unauth=%s, auth=%s)", cfg.UnauthTimeout, cfg.AuthTimeout)
	}
	return &cfg, nil
}

// Endpoint returns the edge function URL, resolving it from the project URL
// and function name when no explicit URL is configured.
func (c *Config) Endpoint() (string, error) {
	if c.EndpointURL != "" {
		return c.EndpointURL, nil
	}
	return utils.FunctionURL(c.ProjectURL, c.FunctionName)
}

// BearerToken is the credential sent in Authorization. The anon key is
// preferred, as the CRM frontend does; the access token is the fallback.
func (c *Config) BearerToken() string {
	if c.AnonKey != "" {
		return c.AnonKey
	}
	return c.AccessToken
}
