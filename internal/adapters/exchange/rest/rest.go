// Package rest: общий HTTP-транспорт адаптеров площадок: один GET, JSON-декодирование,
// классификация ошибок и разбор уровней стакана. Ретраев здесь нет, их делает вызывающий.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"networth/internal/domain"
)

const DefaultUserAgent = "networth/1.0 (+depth)"

// Options: общие настройки адаптера. Нулевые значения заменяются дефолтами площадки.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
	DepthLimit int
}

type Client struct {
	source    string
	baseURL   string
	userAgent string
	http      *http.Client
}

func NewClient(source, defaultBaseURL string, opts Options) *Client {
	base := opts.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	hc := opts.HTTPClient
	if hc == nil {
		// таймаут задаёт ctx вызывающего; здесь только страховочный потолок
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		source:    source,
		baseURL:   strings.TrimRight(base, "/"),
		userAgent: ua,
		http:      hc,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// GetJSON делает GET baseURL+path и декодирует тело в T.
// Сеть и не-2xx: domain.Transport, битое тело: domain.Schema.
func GetJSON[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return out, domain.TransportErr(c.source, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return out, domain.TransportErr(c.source, err)
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return out, domain.TransportErr(c.source, err)
	}
	if res.StatusCode/100 != 2 {
		return out, domain.TransportErr(c.source, fmt.Errorf("http %d: %s", res.StatusCode, snippet(body)))
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, domain.SchemaErr(c.source, "decode: %v", err)
	}
	return out, nil
}

func snippet(b []byte) string {
	s := strings.Join(strings.Fields(string(b)), " ")
	if len(s) > 240 {
		s = s[:240]
	}
	return s
}

// Levels разбирает массив [[price, size, ...], ...]. Строки короче двух элементов и
// неположительные/неконечные уровни отбрасываются, порядок сохраняется.
func Levels(rows [][]decimal.Decimal) []domain.PriceLevel {
	out := make([]domain.PriceLevel, 0, len(rows))
	for _, r := range rows {
		if len(r) < 2 {
			continue
		}
		out = append(out, domain.PriceLevel{Price: r[0].InexactFloat64(), Size: r[1].InexactFloat64()})
	}
	return domain.NormalizeLevels(out)
}

// ParseFloat разбирает десятичную строку; пустая или битая строка даёт (0, false).
func ParseFloat(s string) (float64, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// Limit обрезает уровни до n (n <= 0: без ограничения).
func Limit(xs []domain.PriceLevel, n int) []domain.PriceLevel {
	if n <= 0 || n >= len(xs) {
		return xs
	}
	return xs[:n]
}

// Snapshot собирает снимок; пустой с обеих сторон стакан: ошибка схемы.
func Snapshot(source string, bids, asks []domain.PriceLevel) (domain.DepthSnapshot, error) {
	if len(bids) == 0 && len(asks) == 0 {
		return domain.DepthSnapshot{}, &domain.FetchError{Source: source, Kind: domain.Schema, Err: domain.ErrEmptyBook}
	}
	return domain.DepthSnapshot{Bids: bids, Asks: asks}, nil
}

// ClampLimit приводит лимит глубины к [1, max]; 0 означает max.
func ClampLimit(limit, max int) int {
	if limit <= 0 || limit > max {
		return max
	}
	return limit
}
