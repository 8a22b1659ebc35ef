// Package nominatim is a client for OpenStreetMap Nominatim-compatible geocoding APIs.
package nominatim

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"eventhour/internal/adapters/observability"
	"eventhour/internal/domain"
)

const maxAttempts = 3

type Client struct {
	base      string
	hc        *http.Client
	userAgent string
	rl        *rate.Limiter
}

// New builds a client. The public Nominatim usage policy allows one request per second
// and requires an identifying User-Agent.
func New(base, userAgent string, rps float64) (*Client, error) {
	if strings.TrimSpace(base) == "" {
		return nil, fmt.Errorf("nominatim base URL is required")
	}
	if userAgent == "" {
		return nil, fmt.Errorf("nominatim user agent is required")
	}
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		base:      strings.TrimRight(base, "/"),
		hc:        &http.Client{Timeout: 10 * time.Second},
		userAgent: userAgent,
		rl:        rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

var ErrBadPayload = errors.New("nominatim: bad payload")

// Search returns up to limit matches for query within countryCode. An empty slice means
// the location is unknown to the provider.
func (c *Client) Search(ctx context.Context, query, countryCode string, limit int) ([]domain.GeocodeMatch, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(limit))
	if countryCode != "" {
		params.Set("countrycodes", strings.ToLower(countryCode))
	}

	var places []place
	if err := c.get(ctx, c.base+"/search?"+params.Encode(), &places); err != nil {
		return nil, err
	}

	out := make([]domain.GeocodeMatch, 0, len(places))
	for _, p := range places {
		lat, err := strconv.ParseFloat(strings.TrimSpace(p.Lat), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: lat %q", ErrBadPayload, p.Lat)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(p.Lon), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: lon %q", ErrBadPayload, p.Lon)
		}
		out = append(out, domain.GeocodeMatch{Lat: lat, Lon: lon, DisplayName: p.DisplayName})
	}
	return out, nil
}

// get performs a rate-limited GET with retries on 429 and transient 5xx, honoring Retry-After.
func (c *Client) get(ctx context.Context, u string, out any) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if err := c.rl.Wait(ctx); err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("nominatim", "search", 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < maxAttempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			return lastErr
		}
		observability.ObserveExternal("nominatim", "search", resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("%w: %v", ErrBadPayload, err)
			}
			return nil

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("nominatim: remote %d", resp.StatusCode)
			if i < maxAttempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("nominatim: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return lastErr
}

// sleepCtx waits for d or returns false early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent or invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
