package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"pokegram/feed/internal/config"
	"pokegram/feed/internal/domain"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

type PokeAPIClient interface {
	GetPokemonList(ctx context.Context, offset, limit int) (*domain.ListingPage, error)
	GetPokemonDetail(ctx context.Context, name string) (*domain.ItemDetail, error)
	Close() error
}

var errCircuitOpen = errors.New("circuit breaker is open")

type pokeAPIClient struct {
	rl         ratelimit.Limiter
	baseURL    string
	httpClient *resty.Client

	// Circuit breaker for 429 responses
	circuitBreakerMutex sync.RWMutex
	rateLimitedUntil    time.Time
	circuitBreakerDelay time.Duration
}

func NewPokeAPIClient(cfg config.PokeAPIConfig) PokeAPIClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json")

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &pokeAPIClient{
		rl:                  rl,
		baseURL:             cfg.BaseURL,
		httpClient:          client,
		circuitBreakerDelay: time.Duration(cfg.CircuitBreakerDelay) * time.Second,
	}
}

// Close releases the underlying HTTP transport.
func (c *pokeAPIClient) Close() error {
	return c.httpClient.Close()
}

func (c *pokeAPIClient) GetPokemonList(ctx context.Context, offset, limit int) (*domain.ListingPage, error) {
	req := c.httpClient.R().
		SetQueryParam("offset", strconv.Itoa(offset)).
		SetQueryParam("limit", strconv.Itoa(limit))

	url := fmt.Sprintf("%s/pokemon?offset=%d&limit=%d", c.baseURL, offset, limit)
	body, err := c.fetchJSON(ctx, req, "/pokemon", url)
	if err != nil {
		return nil, err
	}

	page, err := parseListingPage(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pokemon list: %w", err)
	}

	log.Debugf("Successfully fetched listing offset=%d limit=%d with %d items", offset, limit, len(page.Items))
	return page, nil
}

func (c *pokeAPIClient) GetPokemonDetail(ctx context.Context, name string) (*domain.ItemDetail, error) {
	req := c.httpClient.R().SetPathParam("name", name)

	url := fmt.Sprintf("%s/pokemon/%s", c.baseURL, name)
	body, err := c.fetchJSON(ctx, req, "/pokemon/{name}", url)
	if err != nil {
		var netErr *domain.NetworkError
		if errors.As(err, &netErr) && netErr.StatusCode == http.StatusNotFound {
			return nil, &domain.NotFoundError{Resource: "pokemon", Name: name}
		}
		return nil, err
	}

	detail, err := parseItemDetail(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse details for %s: %w", name, err)
	}

	log.Debugf("Successfully fetched details for %s", name)
	return detail, nil
}

func (c *pokeAPIClient) isCircuitBreakerOpen() bool {
	c.circuitBreakerMutex.RLock()
	now := time.Now()
	wasOpen := now.Before(c.rateLimitedUntil)
	wasTriggered := !c.rateLimitedUntil.IsZero()
	c.circuitBreakerMutex.RUnlock()

	if !wasOpen && wasTriggered {
		c.circuitBreakerMutex.Lock()
		// Double-check after acquiring write lock
		if !c.rateLimitedUntil.IsZero() && now.After(c.rateLimitedUntil) {
			c.rateLimitedUntil = time.Time{}
			log.Infof("✅ Circuit breaker re-enabled, requests are allowed again")
		}
		c.circuitBreakerMutex.Unlock()
	}

	return wasOpen
}

func (c *pokeAPIClient) triggerCircuitBreaker() {
	c.circuitBreakerMutex.Lock()
	defer c.circuitBreakerMutex.Unlock()

	c.rateLimitedUntil = time.Now().Add(c.circuitBreakerDelay)
	log.Warnf("🚫 Circuit breaker activated, requests disabled until %v",
		c.rateLimitedUntil.Format("15:04:05"))
}

func (c *pokeAPIClient) getRemainingCircuitBreakerTime() time.Duration {
	c.circuitBreakerMutex.RLock()
	defer c.circuitBreakerMutex.RUnlock()

	remaining := time.Until(c.rateLimitedUntil)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// fetchJSON runs a prepared GET and normalizes every failure into a
// *domain.NetworkError. url is only used for error reporting.
func (c *pokeAPIClient) fetchJSON(ctx context.Context, req *resty.Request, path, url string) ([]byte, error) {
	if c.isCircuitBreakerOpen() {
		remaining := c.getRemainingCircuitBreakerTime().Round(time.Second)
		log.Debugf("🚫 Request blocked by circuit breaker. Remaining time: %v", remaining)
		return nil, &domain.NetworkError{URL: url, Err: fmt.Errorf("%w for %v more", errCircuitOpen, remaining)}
	}

	c.rl.Take()

	resp, err := req.SetContext(ctx).Get(path)
	if err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		log.Errorf("❌ API error: url=%s message=%v", url, err)
		return nil, &domain.NetworkError{URL: url, Err: err}
	}

	if resp.IsError() {
		status := resp.StatusCode()
		if status == http.StatusTooManyRequests {
			c.triggerCircuitBreaker()
		}
		if status == http.StatusNotFound {
			log.Debugf("API returned 404: url=%s", url)
		} else {
			log.Errorf("❌ API error: status=%d url=%s", status, url)
		}
		return nil, &domain.NetworkError{URL: url, StatusCode: status, Err: errors.New(resp.Status())}
	}

	return []byte(resp.String()), nil
}
