package stdresp

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bjaus/stdresp/query"
)

// ConfigEnv names the environment variable consulted for a config file path
// when LoadConfig is given none.
const ConfigEnv = "STDRESP_CONFIG"

// InterceptAllEnv overrides Config.InterceptAll when set to a boolean.
const InterceptAllEnv = "STDRESP_INTERCEPT_ALL"

// Config is the file form of the router options. Route declarations are
// keyed by "METHOD /pattern" and sit beneath group and route options.
type Config struct {
	InterceptAll           *bool                  `yaml:"interceptAll"`
	ValidationErrorMessage string                 `yaml:"validationErrorMessage"`
	Routes                 map[string]RouteConfig `yaml:"routes"`
}

// RouteConfig declares a route's contract from configuration.
type RouteConfig struct {
	Type             string   `yaml:"type"` // standard, raw or empty
	Description      string   `yaml:"description"`
	Paginated        bool     `yaml:"paginated"`
	MinLimit         int      `yaml:"minLimit"`
	MaxLimit         int      `yaml:"maxLimit"`
	DefaultLimit     int      `yaml:"defaultLimit"`
	Sorted           bool     `yaml:"sorted"`
	SortableFields   []string `yaml:"sortableFields"`
	Filtered         bool     `yaml:"filtered"`
	FilterableFields []string `yaml:"filterableFields"`
}

func (rc RouteConfig) contract() Contract {
	if rc.Type == "raw" {
		return RawResponse{Description: rc.Description}.contract()
	}
	c := StandardResponse{
		Description:      rc.Description,
		Paginated:        rc.Paginated,
		MinLimit:         rc.MinLimit,
		MaxLimit:         rc.MaxLimit,
		DefaultLimit:     rc.DefaultLimit,
		Sorted:           rc.Sorted,
		SortableFields:   rc.SortableFields,
		Filtered:         rc.Filtered,
		FilterableFields: rc.FilterableFields,
	}.contract()
	if rc.Type == "" {
		c.Type = ResponseUnset
	}
	return c
}

// Validate checks route keys, types and pagination bounds.
func (c *Config) Validate() error {
	var errs []error
	for key, rc := range c.Routes {
		method, pattern, ok := strings.Cut(key, " ")
		if !ok || method == "" || !strings.HasPrefix(pattern, "/") {
			errs = append(errs, fmt.Errorf("routes[%q]: key must be \"METHOD /pattern\"", key))
		}

		switch rc.Type {
		case "standard", "raw", "":
		default:
			errs = append(errs, fmt.Errorf("routes[%q].type must be \"standard\" or \"raw\", got %q", key, rc.Type))
		}

		if !rc.Paginated {
			continue
		}
		b := rc.contract().Pagination
		if b.MaxLimit > 0 && b.MinLimit > b.MaxLimit {
			errs = append(errs, fmt.Errorf("routes[%q].minLimit %d exceeds maxLimit %d", key, b.MinLimit, b.MaxLimit))
			continue
		}
		// An omitted defaultLimit is clamped into range; an explicit one must fit.
		b.DefaultLimit = rc.DefaultLimit
		if b.DefaultLimit != 0 && (b.DefaultLimit < b.MinLimit || (b.MaxLimit > 0 && b.DefaultLimit > b.MaxLimit)) {
			errs = append(errs, fmt.Errorf("routes[%q].defaultLimit %d is outside [%d, %s]", key, b.DefaultLimit, b.MinLimit, upper(b)))
		}
	}
	return errors.Join(errs...)
}

func upper(b query.PaginationBounds) string {
	if b.MaxLimit == 0 {
		return "unbounded"
	}
	return strconv.Itoa(b.MaxLimit)
}

// ParseConfig decodes and validates a YAML config document.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

// LoadConfig reads the config file at path, or at $STDRESP_CONFIG when path
// is empty, and applies environment overrides. With no file it returns an
// empty Config.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
		if cfg, err = ParseConfig(data); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if v := os.Getenv(InterceptAllEnv); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", InterceptAllEnv, err)
		}
		cfg.InterceptAll = &on
	}

	return cfg, nil
}

// WithConfig applies a Config. Options given after it override its values.
func WithConfig(cfg *Config) RouterOption {
	return func(r *Router) {
		if cfg == nil {
			return
		}
		if cfg.InterceptAll != nil {
			r.interceptAll = *cfg.InterceptAll
		}
		if cfg.ValidationErrorMessage != "" {
			r.violationMsg = cfg.ValidationErrorMessage
		}
		if len(cfg.Routes) == 0 {
			return
		}
		if r.declared == nil {
			r.declared = make(map[string]Contract, len(cfg.Routes))
		}
		for key, rc := range cfg.Routes {
			method, pattern, _ := strings.Cut(key, " ")
			r.declared[routeKey(method, pattern)] = rc.contract()
		}
	}
}
