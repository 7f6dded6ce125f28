package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func applyEnvOverrides(c *Config) {
	setStr(&c.Log.Level, "NETWORTH_LOG_LEVEL")
	setBool(&c.Log.Pretty, "NETWORTH_LOG_PRETTY")

	setDuration(&c.Fetch.Timeout, "NETWORTH_FETCH_TIMEOUT")
	setInt(&c.Fetch.Attempts, "NETWORTH_FETCH_ATTEMPTS")
	setDuration(&c.Fetch.RetryDelay, "NETWORTH_FETCH_RETRY_DELAY")
	setInt(&c.Fetch.DepthLimit, "NETWORTH_DEPTH_LIMIT")
	setStr(&c.Fetch.UserAgent, "NETWORTH_USER_AGENT")

	setFloat64(&c.BTC.Assumed, "NETWORTH_BTC_ASSUMED")
	setStr(&c.BTC.Coin, "NETWORTH_BTC_COIN")
	setStr(&c.BTC.Reference, "NETWORTH_BTC_REFERENCE")
	setBool(&c.BTC.Augment, "NETWORTH_BTC_AUGMENT")
	setStringSlice(&c.BTC.Venues, "NETWORTH_BTC_VENUES")
	setStr(&c.BTC.BybitCategory, "NETWORTH_BYBIT_CATEGORY")

	setFloat64(&c.FX.KRWPerUSD, "NETWORTH_FX_KRW_PER_USD")
	setTime(&c.FX.AsOf, "NETWORTH_FX_AS_OF")

	// токен Alltick только из окружения или .env, в YAML его лучше не держать
	setStr(&c.Equities.AlltickToken, "ALLTICK_TOKEN")
	setStr(&c.Equities.AlltickToken, "NETWORTH_ALLTICK_TOKEN")
	setBool(&c.Equities.YahooFallback, "NETWORTH_YAHOO_FALLBACK")
	setDuration(&c.Equities.Throttle, "NETWORTH_EQUITIES_THROTTLE")
	setDuration(&c.Equities.Timeout, "NETWORTH_EQUITIES_TIMEOUT")

	setStr(&c.HTTP.Addr, "HTTP_ADDR")
	setStr(&c.HTTP.Addr, "NETWORTH_HTTP_ADDR")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func setTime(dst *time.Time, key string) {
	if v := os.Getenv(key); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			*dst = t
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
