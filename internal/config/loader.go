package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from environment variables, applies tag defaults
// and validates the result. Every bad variable is reported, not just the
// first one.
func Load() (*Config, error) {
	return load(os.LookupEnv)
}

type lookupFunc func(name string) (string, bool)

func load(lookup lookupFunc) (*Config, error) {
	cfg := &Config{}
	if err := decode(reflect.ValueOf(cfg).Elem(), lookup); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

var (
	durationType = reflect.TypeOf(time.Duration(0))
	timeType     = reflect.TypeOf(time.Time{})
)

// decode fills the tagged fields of the struct v, descending into nested
// structs. Tags: env (name), envAlt (fallback name), default, required.
// An empty variable counts as unset.
func decode(v reflect.Value, lookup lookupFunc) error {
	var errs []error
	t := v.Type()
	for i := range t.NumField() {
		sf, fv := t.Field(i), v.Field(i)
		if !sf.IsExported() {
			continue
		}
		if sf.Type.Kind() == reflect.Struct && sf.Type != timeType {
			if err := decode(fv, lookup); err != nil {
				errs = append(errs, err)
			}
			continue
		}

		name := sf.Tag.Get("env")
		if name == "" {
			continue
		}
		raw, found := firstSet(lookup, name, sf.Tag.Get("envAlt"))
		if !found {
			if sf.Tag.Get("required") == "true" {
				errs = append(errs, fmt.Errorf("%s is required but not set", name))
				continue
			}
			if raw = sf.Tag.Get("default"); raw == "" {
				continue
			}
		}
		if err := assign(fv, raw); err != nil {
			errs = append(errs, fmt.Errorf("%s=%q: %w", name, raw, err))
		}
	}
	return errors.Join(errs...)
}

func firstSet(lookup lookupFunc, names ...string) (string, bool) {
	for _, n := range names {
		if n == "" {
			continue
		}
		if v, ok := lookup(n); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// assign parses raw into fv according to its type.
func assign(fv reflect.Value, raw string) error {
	if fv.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("not a duration: %w", err)
		}
		fv.SetInt(int64(d))
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("not a boolean: %w", err)
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, fv.Type().Bits())
		if err != nil {
			return fmt.Errorf("not an integer: %w", err)
		}
		fv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, fv.Type().Bits())
		if err != nil {
			return fmt.Errorf("not an unsigned integer: %w", err)
		}
		fv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, fv.Type().Bits())
		if err != nil {
			return fmt.Errorf("not a number: %w", err)
		}
		fv.SetFloat(f)
	case reflect.Slice:
		if fv.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice of %s", fv.Type().Elem().Kind())
		}
		fv.Set(reflect.ValueOf(splitList(raw)).Convert(fv.Type()))
	default:
		return fmt.Errorf("unsupported field kind %s", fv.Kind())
	}
	return nil
}

// splitList splits a comma-separated value, dropping blank items.
func splitList(raw string) []string {
	var out []string
	for item := range strings.SplitSeq(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// problems collects validation failures.
type problems []string

func (p *problems) check(bad bool, format string, args ...any) {
	if bad {
		*p = append(*p, fmt.Sprintf(format, args...))
	}
}

// Validate checks the loaded values and reports every failure at once.
func (c *Config) Validate() error {
	var p problems
	c.Server.validate(&p)
	c.Upload.validate(&p)
	c.Rate.validate(&p)
	c.History.validate(&p)
	c.Security.validate(&p)
	c.Logging.validate(&p)

	p.check(c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/"),
		"METRICS_PATH (%q) must start with /", c.Metrics.Path)

	if len(p) == 0 {
		return nil
	}
	return fmt.Errorf("validation failed:\n  - %s", strings.Join(p, "\n  - "))
}

func (s *ServerConfig) validate(p *problems) {
	p.check(s.Port <= 0 || s.Port > 65535, "SERVER_PORT (%d) must be 1-65535", s.Port)
	p.check(s.ReadTimeout < 0, "SERVER_READ_TIMEOUT must be non-negative")
	p.check(s.ShutdownTimeout <= 0, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	p.check(s.RequestTimeout <= 0, "SERVER_REQUEST_TIMEOUT must be positive")
}

func (u *UploadConfig) validate(p *problems) {
	p.check(u.MaxFileSize <= 0, "UPLOAD_MAX_FILE_SIZE must be positive")
	p.check(u.MaxFiles <= 0, "UPLOAD_MAX_FILES must be positive")
	p.check(u.MaxConcurrent <= 0, "UPLOAD_MAX_CONCURRENT must be positive")
	p.check(u.MaxWaitTime <= 0, "UPLOAD_MAX_WAIT_TIME must be positive")
	p.check(u.PreviewRows < 0, "UPLOAD_PREVIEW_ROWS must be non-negative")
	p.check(u.MaxChartPoints <= 0, "UPLOAD_MAX_CHART_POINTS must be positive")
}

func (r *RateLimitConfig) validate(p *problems) {
	if !r.Enabled {
		return
	}
	p.check(r.RequestsPerMinute <= 0, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	p.check(r.Burst <= 0, "RATE_LIMIT_BURST must be positive when rate limiting is enabled")
}

// History settings only matter with a database.
func (h *HistoryConfig) validate(p *problems) {
	if !h.Enabled() {
		return
	}
	p.check(h.MaxConns <= 0, "DB_MAX_CONNS must be positive")
	p.check(h.RetentionDays <= 0, "HISTORY_RETENTION_DAYS must be positive")
	p.check(h.CheckInterval <= 0, "HISTORY_CHECK_INTERVAL must be positive")
}

func (s *SecurityConfig) validate(p *problems) {
	p.check(s.RequireAPIKey && len(s.APIKeys) == 0,
		"REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
	for _, cidr := range s.TrustedProxies {
		_, _, err := net.ParseCIDR(cidr)
		p.check(err != nil, "TRUSTED_PROXIES entry %q is not a valid CIDR", cidr)
	}
}

func (l *LoggingConfig) validate(p *problems) {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		p.check(true, "LOG_LEVEL (%q) must be one of: debug, info, warn, error", l.Level)
	}
	switch strings.ToLower(l.Format) {
	case "text", "json":
	default:
		p.check(true, "LOG_FORMAT (%q) must be one of: text, json", l.Format)
	}
}

// String returns a safe string representation of the config for logging.
// The database URL and API keys are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Addr: %q}, ", c.Server.Addr())
	fmt.Fprintf(&b, "Upload: {MaxFileSize: %d, MaxFiles: %d, MaxConcurrent: %d, PreviewRows: %d}, ",
		c.Upload.MaxFileSize, c.Upload.MaxFiles, c.Upload.MaxConcurrent, c.Upload.PreviewRows)
	fmt.Fprintf(&b, "Rate: {Enabled: %v, RequestsPerMinute: %d, Burst: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute, c.Rate.Burst)
	fmt.Fprintf(&b, "Security: {RequireAPIKey: %v, APIKeys: [%d MASKED]}, ",
		c.Security.RequireAPIKey, len(c.Security.APIKeys))
	if c.History.Enabled() {
		fmt.Fprintf(&b, "History: {URL: [MASKED], RetentionDays: %d}, ", c.History.RetentionDays)
	} else {
		b.WriteString("History: {disabled}, ")
	}
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}
