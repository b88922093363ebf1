package fetch

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"property-scraper/utils"
)

// Client fetches and parses documents from one site. Each attempt picks a
// fresh header set from the pool and runs under its own timeout; failed
// attempts are retried per the retry policy.
type Client struct {
	fetcher Fetcher
	headers HeaderPool
	timeout time.Duration
	retry   *utils.RetryConfig
	logger  *utils.Logger
}

// NewClient returns a Client. The client owns its header pool.
func NewClient(fetcher Fetcher, headers HeaderPool, timeout time.Duration, retry *utils.RetryConfig, logger *utils.Logger) *Client {
	return &Client{
		fetcher: fetcher,
		headers: headers,
		timeout: timeout,
		retry:   retry,
		logger:  logger,
	}
}

// Document fetches url and parses it as HTML.
func (c *Client) Document(ctx context.Context, url string) (*goquery.Document, error) {
	var doc *goquery.Document

	err := c.retry.Do(ctx, "GET "+url, func(ctx context.Context) error {
		reqCtx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		c.logger.Debug("[fetch] GET %s via %s", url, c.fetcher.Type())
		body, err := c.fetcher.Fetch(reqCtx, url, c.headers.Pick())
		if err != nil {
			return err
		}

		parsed, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("parse html: %w", err)
		}
		doc = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}
