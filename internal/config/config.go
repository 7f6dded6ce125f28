package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Fetch struct {
		// таймаут одного запроса к площадке
		Timeout    time.Duration `yaml:"timeout"`
		Attempts   int           `yaml:"attempts"`
		RetryDelay time.Duration `yaml:"retry_delay"`
		DepthLimit int           `yaml:"depth_limit"`
		UserAgent  string        `yaml:"user_agent"`
		// переопределение адресов площадок (прокси, стенды)
		BaseURLs map[string]string `yaml:"base_urls"`
	} `yaml:"fetch"`
	BTC struct {
		Assumed       float64  `yaml:"assumed"`
		Lower         float64  `yaml:"lower"`
		Upper         float64  `yaml:"upper"`
		Coin          string   `yaml:"coin"`
		Reference     string   `yaml:"reference"`
		Augment       bool     `yaml:"augment"`
		Venues        []string `yaml:"venues"`
		BybitCategory string   `yaml:"bybit_category"`
	} `yaml:"btc"`
	FX struct {
		KRWPerUSD float64   `yaml:"krw_per_usd"`
		AsOf      time.Time `yaml:"as_of"`
	} `yaml:"fx"`
	Equities struct {
		AlltickToken  string        `yaml:"alltick_token"`
		YahooFallback bool          `yaml:"yahoo_fallback"`
		Gears         []int         `yaml:"gears"`
		Throttle      time.Duration `yaml:"throttle"`
		Timeout       time.Duration `yaml:"timeout"`
	} `yaml:"equities"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
}

// Площадки BTC-отчёта по умолчанию.
var DefaultVenues = []string{"coinbase", "binance", "okx", "bybit", "upbit", "kucoin", "gate", "htx", "bitget"}

func Defaults() Config {
	var c Config
	c.Log.Level = "info"
	c.Log.Pretty = false
	c.Fetch.Timeout = 6 * time.Second
	c.Fetch.Attempts = 1
	c.Fetch.RetryDelay = 400 * time.Millisecond
	c.Fetch.DepthLimit = 0
	c.BTC.Assumed = 1_000_000
	c.BTC.Lower = 600_000
	c.BTC.Upper = 1_100_000
	c.BTC.Coin = "BTC"
	c.BTC.Reference = "coinbase"
	c.BTC.Augment = true
	c.BTC.Venues = append([]string{}, DefaultVenues...)
	c.BTC.BybitCategory = "linear"
	c.Equities.YahooFallback = true
	c.Equities.Gears = []int{5, 10, 20, 50, 100, 200, 500, 1000, 2000}
	c.Equities.Throttle = 5 * time.Second
	c.Equities.Timeout = 8 * time.Second
	c.HTTP.Addr = ":8080"
	return c
}

// Load: дефолты, затем YAML (path или NETWORTH_CONFIG), затем .env и переменные окружения.
// Отсутствие файла при явно заданном пути: ошибка; без пути работаем на дефолтах.
func Load(path string) (Config, error) {
	c := Defaults()
	if path == "" {
		path = os.Getenv("NETWORTH_CONFIG")
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, fmt.Errorf("parse yaml: %w", err)
		}
	}

	// .env опционален
	_ = godotenv.Load()
	applyEnvOverrides(&c)

	c.BTC.Coin = strings.ToUpper(strings.TrimSpace(c.BTC.Coin))
	c.BTC.Reference = strings.ToLower(strings.TrimSpace(c.BTC.Reference))
	for i, v := range c.BTC.Venues {
		c.BTC.Venues[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Fetch.Timeout <= 0 {
		errs = append(errs, errors.New("fetch.timeout must be > 0"))
	}
	if c.Fetch.Attempts < 1 {
		errs = append(errs, errors.New("fetch.attempts must be >= 1"))
	}
	if c.Fetch.DepthLimit < 0 {
		errs = append(errs, errors.New("fetch.depth_limit must be >= 0"))
	}
	if !(c.BTC.Assumed >= 0) {
		errs = append(errs, errors.New("btc.assumed must be >= 0"))
	}
	if c.BTC.Lower > c.BTC.Upper {
		errs = append(errs, errors.New("btc.lower must be <= btc.upper"))
	}
	if c.BTC.Coin == "" {
		errs = append(errs, errors.New("btc.coin is required"))
	}
	if len(c.BTC.Venues) == 0 {
		errs = append(errs, errors.New("btc.venues must not be empty"))
	}
	seen := map[string]bool{}
	for _, v := range c.BTC.Venues {
		if !knownVenue(v) {
			errs = append(errs, fmt.Errorf("btc.venues: unknown venue %q", v))
		}
		if seen[v] {
			errs = append(errs, fmt.Errorf("btc.venues: duplicate venue %q", v))
		}
		seen[v] = true
	}
	if c.FX.KRWPerUSD < 0 {
		errs = append(errs, errors.New("fx.krw_per_usd must be >= 0"))
	}
	if c.Equities.Throttle < 0 {
		errs = append(errs, errors.New("equities.throttle must be >= 0"))
	}
	if c.Equities.Timeout <= 0 {
		errs = append(errs, errors.New("equities.timeout must be > 0"))
	}
	return errors.Join(errs...)
}

func knownVenue(v string) bool {
	for _, k := range DefaultVenues {
		if k == v {
			return true
		}
	}
	return false
}
