package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"depositrelay/internal/apperr"
	"depositrelay/internal/metrics"
	"depositrelay/internal/okx/entity"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/net/proxy"
)

const (
	OKXBaseURL     = "https://www.okx.com"
	OKXAPIVersion  = "/api/v5"
	DefaultTimeout = 10 * time.Second

	maxResponseSize = 4 << 20
)

// ClientOptions — всё, что нужно клиенту OKX; собирается из config.Config в main
type ClientOptions struct {
	APIKey     string
	SecretKey  string
	Passphrase string
	BaseURL    string
	ProxyAddr  string
	Timeout    time.Duration
}

// OKXHTTPClient клиент для работы с OKX REST API
type OKXHTTPClient struct {
	APIKey     string
	SecretKey  string
	Passphrase string
	BaseURL    string
	HTTPClient *http.Client
	cb         *gobreaker.CircuitBreaker
	now        func() time.Time
	logger     *zap.Logger
}

// transportError помечает сбой сети, чтобы circuit breaker считал только такие ошибки
type transportError struct{ err error }

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// NewOKXHTTPClient создает HTTP клиент OKX; при ProxyAddr ходит через SOCKS5
func NewOKXHTTPClient(opts ClientOptions, logger *zap.Logger) *OKXHTTPClient {
	if opts.BaseURL == "" {
		opts.BaseURL = OKXBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	logger = logger.Named("okx")

	client := &OKXHTTPClient{
		APIKey:     opts.APIKey,
		SecretKey:  opts.SecretKey,
		Passphrase: opts.Passphrase,
		BaseURL:    strings.TrimRight(opts.BaseURL, "/"),
		now:        time.Now,
		logger:     logger,
	}

	// Настройка circuit breaker: размыкается только на сетевых сбоях,
	// ответы биржи с ошибкой считаются успешными вызовами
	client.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "okx-api",
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			var te *transportError
			return !errors.As(err, &te)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name), zap.Stringer("from", from), zap.Stringer("to", to))
		},
	})

	client.HTTPClient = newHTTPClient(opts.ProxyAddr, opts.Timeout, logger)
	return client
}

func newHTTPClient(proxyAddr string, timeout time.Duration, logger *zap.Logger) *http.Client {
	if proxyAddr == "" {
		return &http.Client{Timeout: timeout}
	}

	proxyURL := &url.URL{
		Scheme: "socks5h",
		Host:   proxyAddr,
	}
	dialer, err := proxy.FromURL(proxyURL, proxy.Direct)
	if err != nil {
		logger.Error("failed to create SOCKS5 dialer, falling back to direct", zap.Error(err))
		return &http.Client{Timeout: timeout}
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		},
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// SetClock подменяет источник времени (для тестов)
func (c *OKXHTTPClient) SetClock(now func() time.Time) {
	c.now = now
}

func (c *OKXHTTPClient) hasCredentials() bool {
	return c.APIKey != "" && c.SecretKey != "" && c.Passphrase != ""
}

// Call выполняет подписанный запрос и возвращает конверт ответа без разбора data
func (c *OKXHTTPClient) Call(ctx context.Context, method, requestPath, body string) (*entity.Response, error) {
	const op = "okx.Call"

	if !c.hasCredentials() {
		return nil, apperr.E(apperr.KindMissingCredentials, op, errors.New("OKX API key, secret key or passphrase is empty"))
	}

	method = strings.ToUpper(method)
	endpoint := endpointOf(requestPath)
	start := time.Now()

	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.doRequest(ctx, method, requestPath, body)
	})

	metrics.OKXAPIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.OKXAPIRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		var ae *apperr.Error
		if errors.As(err, &ae) {
			c.logger.Warn("OKX API error",
				zap.String("endpoint", endpoint), zap.String("code", ae.Code), zap.String("msg", ae.Msg))
			return nil, err
		}
		c.logger.Error("OKX request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, apperr.E(apperr.KindTransport, op, err)
	}

	metrics.OKXAPIRequestsTotal.WithLabelValues(endpoint, "ok").Inc()
	return result.(*entity.Response), nil
}

// doRequest выполняет HTTP запрос к OKX API
func (c *OKXHTTPClient) doRequest(ctx context.Context, method, requestPath, body string) (*entity.Response, error) {
	const op = "okx.Call"

	timestamp := Timestamp(c.now())
	signature := Sign(c.SecretKey, timestamp, method, requestPath, body)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+requestPath, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Заголовки аутентификации OKX
	req.Header.Set("OK-ACCESS-KEY", c.APIKey)
	req.Header.Set("OK-ACCESS-SIGN", signature)
	req.Header.Set("OK-ACCESS-TIMESTAMP", timestamp)
	req.Header.Set("OK-ACCESS-PASSPHRASE", c.Passphrase)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, c.networkError(ctx, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, c.networkError(ctx, fmt.Errorf("failed to read response: %w", err))
	}

	var envelope entity.Response
	decodeErr := json.Unmarshal(respBody, &envelope)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && envelope.Code != "" {
			return nil, apperr.Exchange(op, envelope.Code, envelope.Msg)
		}
		return nil, apperr.Exchange(op, strconv.Itoa(resp.StatusCode), strings.TrimSpace(string(respBody)))
	}
	if decodeErr != nil {
		return nil, &apperr.Error{Kind: apperr.KindExchange, Op: op, Msg: "malformed response body", Err: decodeErr}
	}
	if envelope.Code != "0" {
		return nil, apperr.Exchange(op, envelope.Code, envelope.Msg)
	}

	return &envelope, nil
}

// networkError: отмена запроса вызывающим не считается сбоем OKX и не влияет на breaker.
// Истечение таймаута остаётся сбоем сети.
func (c *OKXHTTPClient) networkError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return err
	}
	return &transportError{err: err}
}

// endpointOf отрезает query-строку, чтобы не плодить метки метрик
func endpointOf(requestPath string) string {
	if i := strings.IndexByte(requestPath, '?'); i >= 0 {
		return requestPath[:i]
	}
	return requestPath
}
