// Package client fetches the configuration type graph and the component index
// from the component server.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/configproxy/core/internal/models"
	"github.com/configproxy/core/internal/parser"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	configurationTypesPath = "/configurationtype/index"
	componentsPath         = "/component/index"

	maxErrorBody = 4 << 10
)

// Client is what the service needs from the component server.
type Client interface {
	ConfigurationTypes(ctx context.Context, language string) (*models.ConfigTypeNodes, error)
	Components(ctx context.Context, language string) (*models.ComponentIndices, error)
}

// ObserveFunc receives the outcome of every upstream attempt.
type ObserveFunc func(endpoint string, status int, elapsed time.Duration)

// Options configures an HTTPClient. RetryInterval is the first backoff
// delay; later delays grow from it.
type Options struct {
	BaseURL       string
	Timeout       time.Duration
	Retries       uint
	RetryInterval time.Duration
	HTTPClient    *http.Client
	Observe       ObserveFunc
}

// UpstreamError reports a non 2xx answer from the component server.
type UpstreamError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("component server %s answered %d: %s", e.Endpoint, e.Status, e.Body)
}

// InvalidPayloadError reports a 2xx answer whose body could not be decoded.
type InvalidPayloadError struct {
	Endpoint string
	Err      error
}

func (e *InvalidPayloadError) Error() string {
	return fmt.Sprintf("component server %s sent an invalid payload: %v", e.Endpoint, e.Err)
}

func (e *InvalidPayloadError) Unwrap() error { return e.Err }

type HTTPClient struct {
	base     *url.URL
	timeout  time.Duration
	retries  uint
	interval time.Duration
	http     *http.Client
	observe  ObserveFunc
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(opts Options) (*HTTPClient, error) {
	base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid component server url")
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("invalid component server url %q", opts.BaseURL)
	}

	c := &HTTPClient{
		base:     base,
		timeout:  opts.Timeout,
		retries:  opts.Retries,
		interval: opts.RetryInterval,
		http:     opts.HTTPClient,
		observe:  opts.Observe,
	}
	if c.timeout <= 0 {
		c.timeout = 10 * time.Second
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.observe == nil {
		c.observe = func(string, int, time.Duration) {}
	}
	return c, nil
}

func (c *HTTPClient) ConfigurationTypes(ctx context.Context, language string) (*models.ConfigTypeNodes, error) {
	query := url.Values{"lightPayload": {"true"}}
	body, err := c.get(ctx, configurationTypesPath, language, query)
	if err != nil {
		return nil, err
	}
	graph, err := parser.ParseConfigTypes(body)
	if err != nil {
		return nil, &InvalidPayloadError{Endpoint: configurationTypesPath, Err: err}
	}
	return graph, nil
}

func (c *HTTPClient) Components(ctx context.Context, language string) (*models.ComponentIndices, error) {
	query := url.Values{"includeIconContent": {"false"}}
	body, err := c.get(ctx, componentsPath, language, query)
	if err != nil {
		return nil, err
	}
	index, err := parser.ParseComponentIndex(body)
	if err != nil {
		return nil, &InvalidPayloadError{Endpoint: componentsPath, Err: err}
	}
	return index, nil
}

func (c *HTTPClient) get(ctx context.Context, path, language string, query url.Values) ([]byte, error) {
	if language != "" {
		query.Set("language", language)
	}
	target := c.base.JoinPath(path)
	target.RawQuery = query.Encode()

	attempt := 0
	operation := func() ([]byte, error) {
		attempt++
		body, err := c.do(ctx, path, target.String())
		if err == nil {
			return body, nil
		}
		var upstream *UpstreamError
		if errors.As(err, &upstream) && upstream.Status < http.StatusInternalServerError {
			return nil, backoff.Permanent(err)
		}
		log.Debug().Err(err).Str("endpoint", path).Int("attempt", attempt).Msg("Upstream request failed")
		return nil, err
	}

	policy := backoff.NewExponentialBackOff()
	if c.interval > 0 {
		policy.InitialInterval = c.interval
	}
	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(c.retries+1),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s", path)
	}
	return body, nil
}

func (c *HTTPClient) do(ctx context.Context, endpoint, target string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(endpoint, 0, time.Since(start))
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.observe(endpoint, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &UpstreamError{Endpoint: endpoint, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

// StatusLabel renders an HTTP status for metric labels; 0 means the request
// never got an answer.
func StatusLabel(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status)
}
