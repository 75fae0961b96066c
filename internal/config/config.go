package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/searchbridge/internal/domain/search/options"
	"github.com/kailas-cloud/searchbridge/internal/domain/search/sortby"
)

// Config holds the searchbridge configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
	Backend BackendConfig `yaml:"backend"`
	Adapter AdapterConfig `yaml:"adapter"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// BackendConfig holds the Typesense node settings.
type BackendConfig struct {
	Protocol          string `yaml:"protocol"` // http, https (default: http)
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	Path              string `yaml:"path"`
	APIKey            string `yaml:"api_key"`
	ConnectTimeoutSec int    `yaml:"connect_timeout_sec"`
	TimeoutSec        int    `yaml:"timeout_sec"`
}

// URL returns the node base URL, e.g. "http://localhost:8108".
func (b BackendConfig) URL() string {
	return b.Protocol + "://" + net.JoinHostPort(b.Host, strconv.Itoa(b.Port)) + strings.TrimRight(b.Path, "/")
}

// SortOption is an allowed sort spec.
type SortOption struct {
	EnableOverrides *bool `yaml:"enable_overrides"`
}

// FilterOption is the facet filter setting of a field.
type FilterOption struct {
	ExactMatch *bool `yaml:"exact_match"`
}

// AdapterConfig holds the translation settings.
type AdapterConfig struct {
	SortByOptions                        map[string]SortOption              `yaml:"sort_by_options"`
	CollectionSpecificSortByOptions      map[string]map[string]SortOption   `yaml:"collection_specific_sort_by_options"`
	FilterByOptions                      map[string]FilterOption            `yaml:"filter_by_options"`
	CollectionSpecificFilterByOptions    map[string]map[string]FilterOption `yaml:"collection_specific_filter_by_options"`
	FacetByOptions                       map[string]string                  `yaml:"facet_by_options"`
	CollectionSpecificFacetByOptions     map[string]map[string]string       `yaml:"collection_specific_facet_by_options"`
	FacetableFieldsWithSpecialCharacters []string                           `yaml:"facetable_fields_with_special_characters"`
	GeoLocationField                     string                             `yaml:"geo_location_field"`
	Union                                any                                `yaml:"union"` // kept as written: true, "true", ...
	AdditionalSearchParameters           map[string]any                     `yaml:"additional_search_parameters"`
	CollectionSpecificSearchParameters   map[string]map[string]any          `yaml:"collection_specific_search_parameters"`
}

// Options converts the adapter section into immutable translation options.
func (a AdapterConfig) Options() *options.Options {
	return options.New(options.Config{
		SortByOptions:                      convertSort(a.SortByOptions),
		CollectionSpecificSortByOptions:    convertNested(a.CollectionSpecificSortByOptions, convertSort),
		FilterByOptions:                    convertFilter(a.FilterByOptions),
		CollectionSpecificFilterByOptions:  convertNested(a.CollectionSpecificFilterByOptions, convertFilter),
		FacetByOptions:                     a.FacetByOptions,
		CollectionSpecificFacetByOptions:   a.CollectionSpecificFacetByOptions,
		FacetableFieldsWithSpecialChars:    a.FacetableFieldsWithSpecialCharacters,
		GeoLocationField:                   a.GeoLocationField,
		Union:                              a.Union,
		AdditionalSearchParameters:         a.AdditionalSearchParameters,
		CollectionSpecificSearchParameters: a.CollectionSpecificSearchParameters,
	})
}

func convertSort(in map[string]SortOption) map[string]sortby.Option {
	if in == nil {
		return nil
	}
	out := make(map[string]sortby.Option, len(in))
	for k, v := range in {
		out[k] = sortby.Option{EnableOverrides: v.EnableOverrides}
	}
	return out
}

func convertFilter(in map[string]FilterOption) map[string]options.FilterOption {
	if in == nil {
		return nil
	}
	out := make(map[string]options.FilterOption, len(in))
	for k, v := range in {
		out[k] = options.FilterOption{ExactMatch: v.ExactMatch}
	}
	return out
}

func convertNested[In, Out any](in map[string]map[string]In, conv func(map[string]In) map[string]Out) map[string]map[string]Out {
	if in == nil {
		return nil
	}
	out := make(map[string]map[string]Out, len(in))
	for k, v := range in {
		out[k] = conv(v)
	}
	return out
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands ${VAR} references in data, decodes it, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Backend.Protocol == "" {
		c.Backend.Protocol = "http"
	}
	if c.Backend.Port <= 0 {
		c.Backend.Port = 8108
	}
	if c.Backend.ConnectTimeoutSec <= 0 {
		c.Backend.ConnectTimeoutSec = 5
	}
	if c.Backend.TimeoutSec <= 0 {
		c.Backend.TimeoutSec = 10
	}
	if c.Adapter.GeoLocationField == "" {
		c.Adapter.GeoLocationField = "_geoloc"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Backend.Host == "" {
		return fmt.Errorf("backend.host is required")
	}
	if c.Backend.Port > 65535 {
		return fmt.Errorf("backend.port must be between 1 and 65535, got %d", c.Backend.Port)
	}
	switch c.Backend.Protocol {
	case "http", "https":
		// ok
	default:
		return fmt.Errorf("backend.protocol must be \"http\" or \"https\", got %q", c.Backend.Protocol)
	}
	for i, f := range c.Adapter.FacetableFieldsWithSpecialCharacters {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("adapter.facetable_fields_with_special_characters[%d] must not be empty", i)
		}
	}
	for spec := range c.Adapter.SortByOptions {
		if !strings.Contains(spec, ":") {
			return fmt.Errorf("adapter.sort_by_options key %q must look like <field>:<direction>", spec)
		}
	}
	for coll, specs := range c.Adapter.CollectionSpecificSortByOptions {
		for spec := range specs {
			if !strings.Contains(spec, ":") {
				return fmt.Errorf(
					"adapter.collection_specific_sort_by_options.%s key %q must look like <field>:<direction>",
					coll, spec,
				)
			}
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
