package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rohmanhakim/page-scraper/internal/build"
	"github.com/rohmanhakim/page-scraper/internal/exporter"
	"github.com/rohmanhakim/page-scraper/internal/extractor"
	"github.com/rohmanhakim/page-scraper/pkg/urlutil"
)

const (
	DefaultTimeout       = 30 * time.Second
	DefaultRenderTimeout = 30 * time.Second
	DefaultMaxBodyBytes  = 10 << 20
	DefaultConcurrency   = 4
	DefaultPageParam     = "page"
)

type Config struct {
	//===============
	// Target
	//===============
	// Pages to scrape. A URL may carry the {page} placeholder for path-based pagination.
	urls []string
	// CSS selector applied to every page
	selector string
	// Number of pages to walk per URL. 0 scrapes the URL once without pagination.
	pages int
	// Query parameter carrying the page index
	pageParam string

	//===============
	// Extraction
	//===============
	// How a matched element becomes a string: text, html or markdown
	mode extractor.Mode
	// Retrieve documents through a headless browser instead of plain HTTP
	js bool

	//===============
	// Fetch
	//===============
	// User agent that will be used in the request header. In raw string
	userAgent string
	// Maximum time of a single fetch request
	timeout time.Duration
	// Responses larger than this are rejected
	maxBodyBytes int64

	//===============
	// Pacing & cache
	//===============
	// Minimum interval between two fetches of one engine
	baseDelay time.Duration
	// Randomized variation added on top of the base delay
	jitter time.Duration
	// Controls the random number generator
	randomSeed int64
	// Cached results older than this are fetched again. 0 keeps them for the whole run.
	cacheMaxAge time.Duration
	// Maximum number of URLs scraped concurrently in batch mode
	concurrency int

	//===============
	// Render
	//===============
	renderTimeout time.Duration
	// Browser executable. Empty lets the launcher find or download one.
	browserBin string
	// Disable the browser sandbox (needed when running as root in containers)
	noSandbox bool

	//===============
	// Output
	//===============
	format exporter.Format
	// Output file. Empty writes JSON to stdout.
	output string

	//===============
	// Observability
	//===============
	logLevel slog.Level
	// Rotating log file. Empty logs to stderr only.
	logFile string
	// Prometheus textfile written when the run ends. Empty disables it.
	metricsFile string
}

type configDTO struct {
	URLs          []string `json:"urls,omitempty"`
	Selector      string   `json:"selector,omitempty"`
	Pages         int      `json:"pages,omitempty"`
	PageParam     string   `json:"pageParam,omitempty"`
	Mode          string   `json:"mode,omitempty"`
	JS            bool     `json:"js,omitempty"`
	UserAgent     string   `json:"userAgent,omitempty"`
	Timeout       duration `json:"timeout,omitempty"`
	MaxBodyBytes  int64    `json:"maxBodyBytes,omitempty"`
	BaseDelay     duration `json:"baseDelay,omitempty"`
	Jitter        duration `json:"jitter,omitempty"`
	RandomSeed    int64    `json:"randomSeed,omitempty"`
	CacheMaxAge   duration `json:"cacheMaxAge,omitempty"`
	Concurrency   int      `json:"concurrency,omitempty"`
	RenderTimeout duration `json:"renderTimeout,omitempty"`
	BrowserBin    string   `json:"browserBin,omitempty"`
	NoSandbox     bool     `json:"noSandbox,omitempty"`
	Format        string   `json:"format,omitempty"`
	Output        string   `json:"output,omitempty"`
	LogLevel      string   `json:"logLevel,omitempty"`
	LogFile       string   `json:"logFile,omitempty"`
	MetricsFile   string   `json:"metricsFile,omitempty"`
}

// duration accepts either a Go duration string ("1.5s") or a number of nanoseconds.
type duration time.Duration

func (d *duration) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*d = duration(time.Duration(v))
		return nil
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*d = duration(parsed)
		return nil
	default:
		return fmt.Errorf("invalid duration %s", string(data))
	}
}

func applyDTO(cfg *Config, dto configDTO) error {
	// For most fields, only override if non-zero value is provided
	if len(dto.URLs) > 0 {
		cfg.urls = dto.URLs
	}
	if dto.Selector != "" {
		cfg.selector = dto.Selector
	}
	if dto.Pages != 0 {
		cfg.pages = dto.Pages
	}
	if dto.PageParam != "" {
		cfg.pageParam = dto.PageParam
	}
	if dto.Mode != "" {
		mode, err := extractor.ParseMode(dto.Mode)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
		}
		cfg.mode = mode
	}
	cfg.js = dto.JS
	if dto.UserAgent != "" {
		cfg.userAgent = dto.UserAgent
	}
	if dto.Timeout != 0 {
		cfg.timeout = time.Duration(dto.Timeout)
	}
	if dto.MaxBodyBytes != 0 {
		cfg.maxBodyBytes = dto.MaxBodyBytes
	}
	if dto.BaseDelay != 0 {
		cfg.baseDelay = time.Duration(dto.BaseDelay)
	}
	if dto.Jitter != 0 {
		cfg.jitter = time.Duration(dto.Jitter)
	}
	if dto.RandomSeed != 0 {
		cfg.randomSeed = dto.RandomSeed
	}
	if dto.CacheMaxAge != 0 {
		cfg.cacheMaxAge = time.Duration(dto.CacheMaxAge)
	}
	if dto.Concurrency != 0 {
		cfg.concurrency = dto.Concurrency
	}
	if dto.RenderTimeout != 0 {
		cfg.renderTimeout = time.Duration(dto.RenderTimeout)
	}
	if dto.BrowserBin != "" {
		cfg.browserBin = dto.BrowserBin
	}
	cfg.noSandbox = dto.NoSandbox
	if dto.Format != "" {
		format, err := exporter.ParseFormat(dto.Format)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
		}
		cfg.format = format
	}
	if dto.Output != "" {
		cfg.output = dto.Output
	}
	if dto.LogLevel != "" {
		if err := cfg.logLevel.UnmarshalText([]byte(dto.LogLevel)); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
		}
	}
	if dto.LogFile != "" {
		cfg.logFile = dto.LogFile
	}
	if dto.MetricsFile != "" {
		cfg.metricsFile = dto.MetricsFile
	}
	return nil
}

// WithConfigFile starts from the defaults and applies the JSON file at path.
// The returned builder can be refined further before Build.
func WithConfigFile(path string) (*Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	err = json.Unmarshal(configContent, &cfgDTO)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	cfg := WithDefault(nil, "")
	if err := applyDTO(cfg, cfgDTO); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WithDefault creates a new Config with the provided targets and default values for all other fields.
// urls and selector are mandatory; Build reports them when still empty.
func WithDefault(urls []string, selector string) *Config {
	defaultConfig := Config{
		urls:          urls,
		selector:      selector,
		pages:         0,
		pageParam:     DefaultPageParam,
		mode:          extractor.ModeText,
		js:            false,
		userAgent:     "page-scraper/" + build.Version,
		timeout:       DefaultTimeout,
		maxBodyBytes:  DefaultMaxBodyBytes,
		baseDelay:     0,
		jitter:        0,
		randomSeed:    time.Now().UnixNano(),
		cacheMaxAge:   0,
		concurrency:   DefaultConcurrency,
		renderTimeout: DefaultRenderTimeout,
		format:        exporter.FormatJSON,
		logLevel:      slog.LevelInfo,
	}
	return &defaultConfig
}

func (c *Config) WithURLs(urls []string) *Config {
	c.urls = urls
	return c
}

func (c *Config) WithSelector(selector string) *Config {
	c.selector = selector
	return c
}

func (c *Config) WithPages(pages int) *Config {
	c.pages = pages
	return c
}

func (c *Config) WithPageParam(param string) *Config {
	c.pageParam = param
	return c
}

func (c *Config) WithMode(mode extractor.Mode) *Config {
	c.mode = mode
	return c
}

func (c *Config) WithJS(js bool) *Config {
	c.js = js
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithMaxBodyBytes(limit int64) *Config {
	c.maxBodyBytes = limit
	return c
}

func (c *Config) WithBaseDelay(delay time.Duration) *Config {
	c.baseDelay = delay
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithCacheMaxAge(maxAge time.Duration) *Config {
	c.cacheMaxAge = maxAge
	return c
}

func (c *Config) WithConcurrency(concurrency int) *Config {
	c.concurrency = concurrency
	return c
}

func (c *Config) WithRenderTimeout(timeout time.Duration) *Config {
	c.renderTimeout = timeout
	return c
}

func (c *Config) WithBrowserBin(path string) *Config {
	c.browserBin = path
	return c
}

func (c *Config) WithNoSandbox(noSandbox bool) *Config {
	c.noSandbox = noSandbox
	return c
}

func (c *Config) WithFormat(format exporter.Format) *Config {
	c.format = format
	return c
}

func (c *Config) WithOutput(path string) *Config {
	c.output = path
	return c
}

func (c *Config) WithLogLevel(level slog.Level) *Config {
	c.logLevel = level
	return c
}

func (c *Config) WithLogFile(path string) *Config {
	c.logFile = path
	return c
}

func (c *Config) WithMetricsFile(path string) *Config {
	c.metricsFile = path
	return c
}

func (c *Config) Build() (Config, error) {
	if len(c.urls) == 0 {
		return Config{}, fmt.Errorf("%w: urls cannot be empty", ErrInvalidConfig)
	}
	for _, raw := range c.urls {
		if err := validateURL(raw); err != nil {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
		}
	}
	if strings.TrimSpace(c.selector) == "" {
		return Config{}, fmt.Errorf("%w: selector cannot be empty", ErrInvalidConfig)
	}
	if c.pages < 0 {
		return Config{}, fmt.Errorf("%w: pages cannot be negative", ErrInvalidConfig)
	}
	if c.pages > 0 && c.pageParam == "" {
		for _, raw := range c.urls {
			if !strings.Contains(raw, urlutil.PagePlaceholder) {
				return Config{}, fmt.Errorf("%w: pageParam is required for %s", ErrInvalidConfig, raw)
			}
		}
	}
	if c.concurrency < 1 {
		return Config{}, fmt.Errorf("%w: concurrency must be at least 1", ErrInvalidConfig)
	}
	if c.timeout <= 0 {
		return Config{}, fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if c.renderTimeout <= 0 {
		return Config{}, fmt.Errorf("%w: renderTimeout must be positive", ErrInvalidConfig)
	}
	if c.maxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("%w: maxBodyBytes must be positive", ErrInvalidConfig)
	}
	if c.baseDelay < 0 || c.jitter < 0 || c.cacheMaxAge < 0 {
		return Config{}, fmt.Errorf("%w: durations cannot be negative", ErrInvalidConfig)
	}
	return *c, nil
}

func validateURL(raw string) error {
	// the placeholder is not valid in a host, so check it with a sample page
	parsed, err := url.Parse(strings.ReplaceAll(raw, urlutil.PagePlaceholder, "1"))
	if err != nil {
		return fmt.Errorf("invalid url %q: %v", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("url %q must use http or https", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("url %q has no host", raw)
	}
	return nil
}

func (c Config) URLs() []string {
	urls := make([]string, len(c.urls))
	copy(urls, c.urls)
	return urls
}

func (c Config) Selector() string {
	return c.selector
}

func (c Config) Pages() int {
	return c.pages
}

func (c Config) PageParam() string {
	return c.pageParam
}

func (c Config) Mode() extractor.Mode {
	return c.mode
}

func (c Config) JS() bool {
	return c.js
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) MaxBodyBytes() int64 {
	return c.maxBodyBytes
}

func (c Config) BaseDelay() time.Duration {
	return c.baseDelay
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) CacheMaxAge() time.Duration {
	return c.cacheMaxAge
}

func (c Config) Concurrency() int {
	return c.concurrency
}

func (c Config) RenderTimeout() time.Duration {
	return c.renderTimeout
}

func (c Config) BrowserBin() string {
	return c.browserBin
}

func (c Config) NoSandbox() bool {
	return c.noSandbox
}

func (c Config) Format() exporter.Format {
	return c.format
}

func (c Config) Output() string {
	return c.output
}

func (c Config) LogLevel() slog.Level {
	return c.logLevel
}

func (c Config) LogFile() string {
	return c.logFile
}

func (c Config) MetricsFile() string {
	return c.metricsFile
}
