package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"

	"github.com/at-ishikawa/elearn/internal/apperr"
)

// HTTPConfig configures an HTTPFetcher.
type HTTPConfig struct {
	BaseURL       string
	Timeout       time.Duration
	RetryAttempts uint
	RetryDelay    time.Duration
}

// HTTPFetcher retrieves seed documents from a static file server.
type HTTPFetcher struct {
	httpClient *resty.Client
	config     HTTPConfig
	logger     *slog.Logger
}

func NewHTTPFetcher(config HTTPConfig, logger *slog.Logger) *HTTPFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 100 * time.Millisecond
	}

	client := resty.New()
	client.SetBaseURL(config.BaseURL)
	client.SetHeader("Accept", "application/json")
	if config.Timeout > 0 {
		client.SetTimeout(config.Timeout)
	}

	return &HTTPFetcher{
		httpClient: client,
		config:     config,
		logger:     logger,
	}
}

func (f *HTTPFetcher) Close() error {
	return f.httpClient.Close()
}

type statusError struct {
	statusCode int
	body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d, body: %s", e.statusCode, e.body)
}

// isRetryableError reports whether a failed fetch may succeed when repeated.
func isRetryableError(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.statusCode >= http.StatusInternalServerError || se.statusCode == http.StatusTooManyRequests
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func (f *HTTPFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	var body []byte
	err := retry.Do(
		func() error {
			contents, err := f.get(ctx, path)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			body = contents
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(f.config.RetryAttempts+1),
		retry.Delay(f.config.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			f.logger.Info("Retrying seed retrieval",
				slog.String("path", path),
				slog.Uint64("attempt", uint64(n+1)),
				slog.Any("error", err),
			)
		}),
	)
	if err != nil {
		return nil, apperr.Retrieval(fmt.Sprintf("fetch %s", path), err)
	}
	return body, nil
}

func (f *HTTPFetcher) get(ctx context.Context, path string) ([]byte, error) {
	res, err := f.httpClient.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("client.R.Get(%s) > %w", path, err)
	}
	if !res.IsSuccess() {
		return nil, &statusError{statusCode: res.StatusCode(), body: res.String()}
	}
	return res.Bytes(), nil
}
