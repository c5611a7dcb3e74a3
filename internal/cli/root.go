package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rohmanhakim/page-scraper/internal/build"
	"github.com/rohmanhakim/page-scraper/internal/config"
	"github.com/rohmanhakim/page-scraper/internal/exporter"
	"github.com/rohmanhakim/page-scraper/internal/extractor"
	"github.com/rohmanhakim/page-scraper/pkg/timeutil"
	"github.com/spf13/cobra"
)

var (
	cfgFile     string
	envFile     string
	targetURLs  []string
	selector    string
	pages       int
	pageParam   string
	delay       time.Duration
	delaySecs   float64
	jitter      time.Duration
	randomSeed  int64
	cacheMaxAge time.Duration
	js          bool
	mode        string
	format      string
	output      string
	logLevel    string
	logFile     string
	metricsFile string
	concurrency int
	timeout     time.Duration
	userAgent   string
	browserBin  string
	noSandbox   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "page-scraper",
	Short: "Extract elements from web pages with CSS selectors.",
	Long: `page-scraper fetches one or more web pages, applies a CSS selector and
prints the matched elements as a JSON array (or CSV).

It can walk paginated listings (?page=1..N or a {page} path placeholder),
paces successive fetches, caches results for the duration of the run and
renders JavaScript-heavy pages through a headless browser with --js.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}
		return Run(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), build.FullVersion())
	},
}

// ExecuteContext runs the root command with ctx, so an interrupt cancels
// in-flight fetches. This is called by main.main().
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// ExecuteArgsForTest runs the root command with args, writing to out and errOut.
func ExecuteArgsForTest(ctx context.Context, args []string, out io.Writer, errOut io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.Flags()
	flags.StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/config.json)")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file with PAGE_SCRAPER_* variables (skipped when absent)")
	flags.StringArrayVar(&targetURLs, "url", []string{}, "page to scrape (can be repeated)")
	flags.StringVar(&selector, "selector", "", "CSS selector applied to every page")
	flags.IntVar(&pages, "pages", 0, "number of pages to walk per URL (0 scrapes the URL once)")
	flags.StringVar(&pageParam, "page-param", "", "query parameter carrying the page index (default \"page\")")
	flags.DurationVar(&delay, "delay", 0, "minimum interval between two fetches")
	flags.Float64Var(&delaySecs, "delay-seconds", 0, "minimum interval between two fetches, in seconds (ignored when --delay is set)")
	flags.DurationVar(&jitter, "jitter", 0, "random jitter added to the delay")
	flags.Int64Var(&randomSeed, "random-seed", 0, "seed for the jitter generator (0 for current time)")
	flags.DurationVar(&cacheMaxAge, "cache-max-age", 0, "refetch cached results older than this (0 keeps them for the run)")
	flags.BoolVar(&js, "js", false, "render pages in a headless browser before extracting")
	flags.StringVar(&mode, "mode", "", "extraction mode: text, html or markdown (default text)")
	flags.StringVar(&format, "format", "", "output format: json or csv (default json)")
	flags.StringVarP(&output, "output", "o", "", "output file (default stdout)")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (default info)")
	flags.StringVar(&logFile, "log-file", "", "also write logs to this rotating file")
	flags.StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file when done")
	flags.IntVar(&concurrency, "concurrency", 0, "number of URLs scraped concurrently (default 4)")
	flags.DurationVar(&timeout, "timeout", 0, "timeout for a single HTTP fetch (default 30s)")
	flags.StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	flags.StringVar(&browserBin, "browser-bin", "", "browser executable used with --js")
	flags.BoolVar(&noSandbox, "no-sandbox", false, "disable the browser sandbox (containers running as root)")
}

// InitConfigWithError resolves the configuration: defaults, then the config
// file, then PAGE_SCRAPER_* variables (including those from the dotenv
// file), then flags.
func InitConfigWithError() (config.Config, error) {
	if envFile != "" {
		if err := config.LoadDotEnv(envFile); err != nil {
			return config.Config{}, err
		}
	}

	configBuilder := config.WithDefault(nil, "")
	if cfgFile != "" {
		fileBuilder, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return config.Config{}, fmt.Errorf("error initializing config from file: %w", err)
		}
		configBuilder = fileBuilder
	}

	configBuilder, err := configBuilder.WithEnv()
	if err != nil {
		return config.Config{}, err
	}

	// Override with CLI flag values where provided
	if len(targetURLs) > 0 {
		configBuilder = configBuilder.WithURLs(targetURLs)
	}
	if selector != "" {
		configBuilder = configBuilder.WithSelector(selector)
	}
	if pages > 0 {
		configBuilder = configBuilder.WithPages(pages)
	}
	if pageParam != "" {
		configBuilder = configBuilder.WithPageParam(pageParam)
	}
	if delay > 0 {
		configBuilder = configBuilder.WithBaseDelay(delay)
	} else if delaySecs > 0 {
		configBuilder = configBuilder.WithBaseDelay(timeutil.SecondsToDuration(delaySecs))
	}
	if jitter > 0 {
		configBuilder = configBuilder.WithJitter(jitter)
	}
	if randomSeed != 0 {
		configBuilder = configBuilder.WithRandomSeed(randomSeed)
	}
	if cacheMaxAge > 0 {
		configBuilder = configBuilder.WithCacheMaxAge(cacheMaxAge)
	}
	if js {
		configBuilder = configBuilder.WithJS(js)
	}
	if mode != "" {
		parsed, err := extractor.ParseMode(mode)
		if err != nil {
			return config.Config{}, fmt.Errorf("%w: %s", config.ErrInvalidConfig, err.Error())
		}
		configBuilder = configBuilder.WithMode(parsed)
	}
	if format != "" {
		parsed, err := exporter.ParseFormat(format)
		if err != nil {
			return config.Config{}, fmt.Errorf("%w: %s", config.ErrInvalidConfig, err.Error())
		}
		configBuilder = configBuilder.WithFormat(parsed)
	}
	if output != "" {
		configBuilder = configBuilder.WithOutput(output)
		if format == "" {
			if inferred, ok := exporter.FormatFromPath(output); ok {
				configBuilder = configBuilder.WithFormat(inferred)
			}
		}
	}
	if logLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(logLevel)); err != nil {
			return config.Config{}, fmt.Errorf("%w: %s", config.ErrInvalidConfig, err.Error())
		}
		configBuilder = configBuilder.WithLogLevel(level)
	}
	if logFile != "" {
		configBuilder = configBuilder.WithLogFile(logFile)
	}
	if metricsFile != "" {
		configBuilder = configBuilder.WithMetricsFile(metricsFile)
	}
	if concurrency > 0 {
		configBuilder = configBuilder.WithConcurrency(concurrency)
	}
	if timeout > 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}
	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}
	if browserBin != "" {
		configBuilder = configBuilder.WithBrowserBin(browserBin)
	}
	if noSandbox {
		configBuilder = configBuilder.WithNoSandbox(noSandbox)
	}

	cfg, err := configBuilder.Build()
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func ResetFlags() {
	cfgFile = ""
	envFile = ""
	targetURLs = []string{}
	selector = ""
	pages = 0
	pageParam = ""
	delay = 0
	delaySecs = 0
	jitter = 0
	randomSeed = 0
	cacheMaxAge = 0
	js = false
	mode = ""
	format = ""
	output = ""
	logLevel = ""
	logFile = ""
	metricsFile = ""
	concurrency = 0
	timeout = 0
	userAgent = ""
	browserBin = ""
	noSandbox = false
}

// SetFlagsForTest parses args into the root command flags without running it.
func SetFlagsForTest(args []string) error {
	return rootCmd.Flags().Parse(args)
}
