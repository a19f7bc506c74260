package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/reflectsonar/reflectsonar/pkg/defaults"
	"github.com/reflectsonar/reflectsonar/pkg/scheme"
)

// Environment variables consulted when the matching flag and file value
// are both empty.
const (
	EnvToken = "SONAR_TOKEN"
	EnvURL   = "SONAR_HOST_URL"
)

// DefaultURL is the server used when nothing else names one.
const DefaultURL = "http://localhost:9000"

// Config holds all CLI configuration options
type Config struct {
	// Connection settings
	URL      string `yaml:"url"`
	Token    string `yaml:"token"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Project  string `yaml:"project"`

	// Output settings
	Output          string `yaml:"output"`           // PDF path (empty = derived from project key)
	JSONOut         string `yaml:"json"`             // Report document as JSON (empty = none)
	SummaryTemplate string `yaml:"summary_template"` // text/template file for the console summary
	Logo            string `yaml:"logo"`             // PNG/JPEG drawn in the page header
	PageSize        string `yaml:"page_size"`        // A4 or Letter

	// Data settings
	Mode          string `yaml:"mode"`          // auto, standard, mqr
	Uncategorized bool   `yaml:"uncategorized"` // Add a section for unclassified issues
	Snippets      bool   `yaml:"snippets"`      // Fetch source excerpts
	ContextLines  int    `yaml:"context_lines"` // Lines shown around each issue
	Rules         bool   `yaml:"rules"`         // Append the rules reference

	// Network settings
	Concurrency int           `yaml:"concurrency"` // Parallel excerpt and rule fetches
	RateLimit   float64       `yaml:"rate_limit"`  // Requests per second (0 = unlimited)
	Timeout     time.Duration `yaml:"timeout"`     // Per-request timeout
	Retries     int           `yaml:"retries"`     // Retries after a failed request
	Insecure    bool          `yaml:"insecure"`    // Skip TLS verification

	// Telemetry settings
	MetricsFile  string `yaml:"metrics_file"`  // Prometheus textfile (empty = none)
	OTLPEndpoint string `yaml:"otlp_endpoint"` // OTLP/gRPC collector (empty = no tracing)
	OTLPInsecure bool   `yaml:"otlp_insecure"` // Plaintext OTLP connection

	// Console settings
	Verbose bool `yaml:"verbose"`
	Silent  bool `yaml:"silent"`
	NoColor bool `yaml:"no_color"`

	// ConfigFile is the YAML file the values were merged from, if any.
	ConfigFile string `yaml:"-"`
}

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		URL:          DefaultURL,
		PageSize:     defaults.PaperSize,
		Mode:         "auto",
		Snippets:     true,
		ContextLines: defaults.ContextLines,
		Rules:        true,
		Concurrency:  defaults.Concurrency,
		Timeout:      defaults.Timeout,
		Retries:      defaults.Retries,
		MetricsFile:  defaults.MetricsFile,
	}
}

// Parse parses args for the named subcommand. Values are resolved in
// order: explicit flags, then the -config file, then the environment, then
// defaults. Usage output goes to stderr. getenv may be nil, in which case
// os.Getenv is used.
func Parse(name string, args []string, stderr io.Writer, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Default()
	fs := NewFlagSet(name, cfg)
	if stderr != nil {
		fs.SetOutput(stderr)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.ConfigFile != "" {
		path := cfg.ConfigFile
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
		cfg.ConfigFile = path
		// Parse again so explicit flags win over the file.
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
	}

	if fs.NArg() > 0 && cfg.Project == "" {
		cfg.Project = fs.Arg(0)
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	cfg.applyEnv(getenv, set["url"] || set["u"])
	cfg.normalize()
	return cfg, nil
}

// NewFlagSet binds every option of cfg to a new flag set. The current
// values of cfg are used as flag defaults.
func NewFlagSet(name string, cfg *Config) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	// === CONFIG FILE ===
	fs.StringVar(&cfg.ConfigFile, "config", "", "YAML configuration file")

	// === CONNECTION ===
	fs.StringVar(&cfg.URL, "url", cfg.URL, "SonarQube server URL (env "+EnvURL+")")
	fs.StringVar(&cfg.URL, "u", cfg.URL, "Server URL (alias)")
	fs.StringVar(&cfg.Token, "token", cfg.Token, "User token (env "+EnvToken+")")
	fs.StringVar(&cfg.Token, "t", cfg.Token, "User token (alias)")
	fs.StringVar(&cfg.Username, "username", cfg.Username, "Username for basic auth")
	fs.StringVar(&cfg.Password, "password", cfg.Password, "Password for basic auth")
	fs.StringVar(&cfg.Project, "project", cfg.Project, "Project key")
	fs.StringVar(&cfg.Project, "p", cfg.Project, "Project key (alias)")

	// === OUTPUT ===
	fs.StringVar(&cfg.Output, "output", cfg.Output, "PDF output path")
	fs.StringVar(&cfg.Output, "o", cfg.Output, "PDF output (alias)")
	fs.StringVar(&cfg.JSONOut, "json", cfg.JSONOut, "Write the report document as JSON")
	fs.StringVar(&cfg.SummaryTemplate, "summary-template", cfg.SummaryTemplate, "Template file for the console summary")
	fs.StringVar(&cfg.Logo, "logo", cfg.Logo, "Logo image for the page header")
	fs.StringVar(&cfg.PageSize, "page-size", cfg.PageSize, "Page size: A4, Letter")

	// === DATA ===
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "Severity mode: auto, standard, mqr")
	fs.BoolVar(&cfg.Uncategorized, "uncategorized", cfg.Uncategorized, "Add a section for unclassified issues")
	fs.BoolVar(&cfg.Snippets, "snippets", cfg.Snippets, "Fetch source excerpts")
	fs.IntVar(&cfg.ContextLines, "context", cfg.ContextLines, "Source lines around each issue")
	fs.BoolVar(&cfg.Rules, "rules", cfg.Rules, "Append the rules reference")

	// === NETWORK ===
	fs.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Parallel excerpt and rule fetches")
	fs.IntVar(&cfg.Concurrency, "c", cfg.Concurrency, "Concurrency (alias)")
	fs.Float64Var(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "Max requests per second (0 = unlimited)")
	fs.Float64Var(&cfg.RateLimit, "rl", cfg.RateLimit, "Rate limit (alias)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request timeout")
	fs.IntVar(&cfg.Retries, "retries", cfg.Retries, "Retries after a failed request")
	fs.BoolVar(&cfg.Insecure, "insecure", cfg.Insecure, "Skip TLS verification")
	fs.BoolVar(&cfg.Insecure, "k", cfg.Insecure, "Skip TLS (alias)")

	// === TELEMETRY ===
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write Prometheus metrics to a textfile")
	fs.StringVar(&cfg.OTLPEndpoint, "otlp-endpoint", cfg.OTLPEndpoint, "OTLP/gRPC trace collector (host:port)")
	fs.BoolVar(&cfg.OTLPInsecure, "otlp-insecure", cfg.OTLPInsecure, "Plaintext OTLP connection")

	// === CONSOLE ===
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose (alias)")
	fs.BoolVar(&cfg.Silent, "silent", cfg.Silent, "Silent mode - errors only")
	fs.BoolVar(&cfg.Silent, "s", cfg.Silent, "Silent (alias)")
	fs.BoolVar(&cfg.NoColor, "no-color", cfg.NoColor, "Disable colored output")
	fs.BoolVar(&cfg.NoColor, "nc", cfg.NoColor, "No color (alias)")

	return fs
}

// LoadFile merges the YAML file at path into cfg. Keys absent from the
// file keep their current value.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	return Unmarshal(data, cfg)
}

// Unmarshal merges YAML data into cfg.
func Unmarshal(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string, urlFlag bool) {
	if c.Token == "" && c.Username == "" {
		c.Token = strings.TrimSpace(getenv(EnvToken))
	}
	if v := strings.TrimSpace(getenv(EnvURL)); v != "" && !urlFlag && c.URL == DefaultURL {
		c.URL = v
	}
}

func (c *Config) normalize() {
	c.URL = strings.TrimRight(strings.TrimSpace(c.URL), "/")
	c.Project = strings.TrimSpace(c.Project)
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	if c.Mode == "" {
		c.Mode = "auto"
	}
	if c.Silent {
		c.Verbose = false
	}
}

// Validate checks the configuration for a report run.
func (c *Config) Validate() error {
	var errs []error

	if c.Project == "" {
		errs = append(errs, missing("project"))
	}
	if c.URL == "" {
		errs = append(errs, missing("url"))
	} else if u, err := url.Parse(c.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, invalid("url", c.URL))
	}
	if c.Token == "" && c.Username == "" {
		errs = append(errs, missing("token"))
	}
	if c.Token != "" && c.Username != "" {
		errs = append(errs, exclusive("token", "username"))
	}
	if !scheme.ValidOverride(c.Mode) {
		errs = append(errs, invalid("mode", c.Mode))
	}
	if _, ok := PageSizes[strings.ToUpper(c.PageSize)]; !ok {
		errs = append(errs, invalid("page-size", c.PageSize))
	}
	if c.ContextLines < 0 {
		errs = append(errs, invalid("context", c.ContextLines))
	}
	if c.Concurrency < 1 {
		errs = append(errs, invalid("concurrency", c.Concurrency))
	}
	if c.RateLimit < 0 {
		errs = append(errs, invalid("rate-limit", c.RateLimit))
	}
	if c.Timeout <= 0 {
		errs = append(errs, invalid("timeout", c.Timeout))
	}
	if c.Retries < 0 {
		errs = append(errs, invalid("retries", c.Retries))
	}

	return errors.Join(errs...)
}

// PageSizes lists the accepted -page-size values, upper-cased.
var PageSizes = map[string]struct{}{
	"A4":     {},
	"LETTER": {},
}

// OutputPath returns the PDF path, deriving it from the project key when
// -output is not set. Path separators in the key are replaced.
func (c *Config) OutputPath() string {
	if c.Output != "" {
		return c.Output
	}
	key := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(c.Project)
	return fmt.Sprintf(defaults.OutputPattern, key)
}
