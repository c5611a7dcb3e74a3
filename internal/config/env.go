package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rohmanhakim/page-scraper/internal/exporter"
	"github.com/rohmanhakim/page-scraper/internal/extractor"
)

const EnvPrefix = "PAGE_SCRAPER_"

// LoadDotEnv loads variables from the given .env files into the process
// environment. Variables already set win, and missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("%w: %s: %s", ErrReadConfigFail, path, err.Error())
		}
	}
	return nil
}

type envSetter func(c *Config, value string) error

var envSetters = map[string]envSetter{
	"URLS": func(c *Config, v string) error {
		c.urls = splitList(v)
		return nil
	},
	"SELECTOR": func(c *Config, v string) error {
		c.selector = v
		return nil
	},
	"PAGES": func(c *Config, v string) error {
		return parseInt(v, &c.pages)
	},
	"PAGE_PARAM": func(c *Config, v string) error {
		c.pageParam = v
		return nil
	},
	"MODE": func(c *Config, v string) error {
		mode, err := extractor.ParseMode(v)
		if err != nil {
			return err
		}
		c.mode = mode
		return nil
	},
	"JS": func(c *Config, v string) error {
		return parseBool(v, &c.js)
	},
	"USER_AGENT": func(c *Config, v string) error {
		c.userAgent = v
		return nil
	},
	"TIMEOUT": func(c *Config, v string) error {
		return parseDuration(v, &c.timeout)
	},
	"MAX_BODY_BYTES": func(c *Config, v string) error {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		c.maxBodyBytes = n
		return nil
	},
	"BASE_DELAY": func(c *Config, v string) error {
		return parseDuration(v, &c.baseDelay)
	},
	"JITTER": func(c *Config, v string) error {
		return parseDuration(v, &c.jitter)
	},
	"RANDOM_SEED": func(c *Config, v string) error {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		c.randomSeed = n
		return nil
	},
	"CACHE_MAX_AGE": func(c *Config, v string) error {
		return parseDuration(v, &c.cacheMaxAge)
	},
	"CONCURRENCY": func(c *Config, v string) error {
		return parseInt(v, &c.concurrency)
	},
	"RENDER_TIMEOUT": func(c *Config, v string) error {
		return parseDuration(v, &c.renderTimeout)
	},
	"BROWSER_BIN": func(c *Config, v string) error {
		c.browserBin = v
		return nil
	},
	"NO_SANDBOX": func(c *Config, v string) error {
		return parseBool(v, &c.noSandbox)
	},
	"FORMAT": func(c *Config, v string) error {
		format, err := exporter.ParseFormat(v)
		if err != nil {
			return err
		}
		c.format = format
		return nil
	},
	"OUTPUT": func(c *Config, v string) error {
		c.output = v
		return nil
	},
	"LOG_LEVEL": func(c *Config, v string) error {
		return c.logLevel.UnmarshalText([]byte(v))
	},
	"LOG_FILE": func(c *Config, v string) error {
		c.logFile = v
		return nil
	},
	"METRICS_FILE": func(c *Config, v string) error {
		c.metricsFile = v
		return nil
	},
}

// WithEnv applies every PAGE_SCRAPER_* variable present in the environment.
func (c *Config) WithEnv() (*Config, error) {
	return c.withLookup(os.LookupEnv)
}

func (c *Config) withLookup(lookup func(string) (string, bool)) (*Config, error) {
	for name, set := range envSetters {
		value, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		if err := set(c, strings.TrimSpace(value)); err != nil {
			return c, fmt.Errorf("%w: %s%s: %s", ErrInvalidEnv, EnvPrefix, name, err.Error())
		}
	}
	return c, nil
}

func splitList(v string) []string {
	var items []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

func parseInt(v string, dst *int) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func parseBool(v string, dst *bool) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

func parseDuration(v string, dst *time.Duration) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}
