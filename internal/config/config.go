// Package config loads simplesearch server configuration
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/nainya/simplesearch/pkg/search"
)

// EnvPrefix is the prefix of environment overrides, e.g. SIMPLESEARCH_HTTP_PORT
const EnvPrefix = "SIMPLESEARCH_"

// Config is the complete server configuration
type Config struct {
	HTTP   HTTPConfig   `mapstructure:"http"`
	GRPC   GRPCConfig   `mapstructure:"grpc"`
	Log    LogConfig    `mapstructure:"log"`
	Store  StoreConfig  `mapstructure:"store"`
	Schema SchemaConfig `mapstructure:"schema"`
	Search SearchConfig `mapstructure:"search"`
	Views  []ViewConfig `mapstructure:"views"`
}

// HTTPConfig holds the HTTP API settings
type HTTPConfig struct {
	Port      int `mapstructure:"port"`
	RateLimit int `mapstructure:"ratelimit"` // requests per minute per client, 0 disables
	Burst     int `mapstructure:"burst"`
}

// GRPCConfig holds the gRPC health endpoint settings
type GRPCConfig struct {
	Port int `mapstructure:"port"` // 0 disables the gRPC listener
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// StoreConfig selects the record store
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // memory, sqlite or postgres
	DSN    string `mapstructure:"dsn"`
}

// SchemaConfig points at model definitions used for field categorization
type SchemaConfig struct {
	Path string `mapstructure:"path"`
}

// SearchConfig holds defaults shared by every view
type SearchConfig struct {
	DateFormat  string `mapstructure:"dateformat"`  // Go layout
	DateDisplay string `mapstructure:"datedisplay"` // shown in warnings
	Timezone    string `mapstructure:"timezone"`
}

// ViewConfig declares one searchable listing
type ViewConfig struct {
	Name          string   `mapstructure:"name"`
	Model         string   `mapstructure:"model"`
	Collection    string   `mapstructure:"collection"`
	Fields        []string `mapstructure:"fields"`
	DateFields    []string `mapstructure:"datefields"`
	ChoiceFields  []string `mapstructure:"choicefields"`
	BoolFields    []string `mapstructure:"boolfields"`
	Exact         bool     `mapstructure:"exact"`
	Auto          bool     `mapstructure:"auto"` // categorize Fields from the schema
	QueryParam    string   `mapstructure:"queryparam"`
	DateFromParam string   `mapstructure:"datefromparam"`
	DateToParam   string   `mapstructure:"datetoparam"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.ratelimit", 600)
	v.SetDefault("http.burst", 50)
	v.SetDefault("grpc.port", 9090)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("store.driver", "memory")
	v.SetDefault("search.dateformat", search.DefaultDateFormat.Layout)
	v.SetDefault("search.datedisplay", search.DefaultDateFormat.Display)
	v.SetDefault("search.timezone", "UTC")
}

// Load reads the optional config file at path, applies environment overrides
// and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	// SIMPLESEARCH_STORE_DSN -> store.dsn
	for _, envStr := range os.Environ() {
		pair := strings.SplitN(envStr, "=", 2)
		if len(pair) != 2 || !strings.HasPrefix(pair[0], EnvPrefix) {
			continue
		}
		propKey := strings.TrimPrefix(pair[0], EnvPrefix)
		propKey = strings.ToLower(strings.ReplaceAll(propKey, "_", "."))
		v.Set(strings.TrimPrefix(propKey, "."), pair[1])
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory":
	case "sqlite", "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("config: store.dsn is required for driver %s", c.Store.Driver)
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}

	if _, err := time.LoadLocation(c.Search.Timezone); err != nil {
		return fmt.Errorf("config: invalid search.timezone: %w", err)
	}

	seen := make(map[string]bool)
	for i, view := range c.Views {
		if view.Name == "" {
			return fmt.Errorf("config: views[%d] has no name", i)
		}
		if seen[view.Name] {
			return fmt.Errorf("config: duplicate view %q", view.Name)
		}
		seen[view.Name] = true
		if view.Auto && (c.Schema.Path == "" || view.Model == "") {
			return fmt.Errorf("config: view %q uses auto fields but schema.path or model is missing", view.Name)
		}
	}
	return nil
}

// DateOptions returns the shared date parsing options
func (c *Config) DateOptions() (search.DateOptions, error) {
	loc, err := time.LoadLocation(c.Search.Timezone)
	if err != nil {
		return search.DateOptions{}, err
	}
	return search.DateOptions{
		Format:   search.DateFormat{Layout: c.Search.DateFormat, Display: c.Search.DateDisplay},
		Location: loc,
	}, nil
}

// SearchConfig converts a view declaration into a translator configuration.
// Fields of auto views are categorized by the caller.
func (v ViewConfig) SearchConfig(date search.DateOptions) search.Config {
	cfg := search.Config{
		QueryParam:    v.QueryParam,
		DateFromParam: v.DateFromParam,
		DateToParam:   v.DateToParam,
		Exact:         v.Exact,
		Date:          date,
	}
	if !v.Auto {
		cfg.Fields = search.FieldSet{
			Text:    v.Fields,
			Date:    v.DateFields,
			Choice:  v.ChoiceFields,
			Boolean: v.BoolFields,
		}
	}
	return cfg
}

// CollectionName returns the store collection of the view, defaulting to its name
func (v ViewConfig) CollectionName() string {
	if v.Collection != "" {
		return v.Collection
	}
	return v.Name
}
