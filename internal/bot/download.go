package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var (
	// ErrFileTooLarge indicates the document exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file is too large")
	// ErrDownloadFailed indicates the file server answered with an error status.
	ErrDownloadFailed = errors.New("failed to download file")
)

// RetryOptions contains configuration for retry behavior.
type RetryOptions struct {
	MaxElapsedTime  time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxRetries      uint64
}

// DefaultDownloadRetryOptions returns retry options for file downloads.
func DefaultDownloadRetryOptions() RetryOptions {
	return RetryOptions{
		MaxElapsedTime:  20 * time.Second,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     4 * time.Second,
		MaxRetries:      3,
	}
}

// FileURLResolver resolves a Telegram file ID into a download URL.
type FileURLResolver interface {
	GetFileDirectURL(fileID string) (string, error)
}

// Downloader fetches uploaded documents from the Telegram file server.
type Downloader struct {
	resolver FileURLResolver
	client   *http.Client
	maxSize  int64
	retry    RetryOptions
}

// NewDownloader creates a downloader that rejects files larger than maxSize bytes.
func NewDownloader(resolver FileURLResolver, client *http.Client, maxSize int64, retry RetryOptions) *Downloader {
	return &Downloader{
		resolver: resolver,
		client:   client,
		maxSize:  maxSize,
		retry:    retry,
	}
}

// Download returns the full contents of the document.
// Transport errors and 5xx responses are retried with exponential backoff.
func (d *Downloader) Download(ctx context.Context, doc *tgbotapi.Document) ([]byte, error) {
	if d.maxSize > 0 && int64(doc.FileSize) > d.maxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, doc.FileSize)
	}

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(d.retry.MaxElapsedTime),
		backoff.WithInitialInterval(d.retry.InitialInterval),
		backoff.WithMaxInterval(d.retry.MaxInterval),
	), d.retry.MaxRetries)

	return backoff.RetryWithData(func() ([]byte, error) {
		return d.fetch(ctx, doc.FileID)
	}, backoff.WithContext(b, ctx))
}

// fetch performs a single download attempt.
func (d *Downloader) fetch(ctx context.Context, fileID string) ([]byte, error) {
	fileURL, err := d.resolver.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		// The request URL embeds the bot token, so only the cause is kept
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: status %d", ErrDownloadFailed, resp.StatusCode)
		if resp.StatusCode < http.StatusInternalServerError {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	// Read one byte past the limit to detect oversized bodies
	reader := io.Reader(resp.Body)
	if d.maxSize > 0 {
		reader = io.LimitReader(resp.Body, d.maxSize+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if d.maxSize > 0 && int64(len(data)) > d.maxSize {
		return nil, backoff.Permanent(fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, d.maxSize))
	}

	return data, nil
}
