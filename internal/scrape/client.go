// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package scrape downloads forum threads and extracts the first post as text.

The client targets Discuz-style boards: the thread title and the first post
are located by CSS selectors, and pages served as GBK are decoded to UTF-8.
Requests from every worker share one politeness limiter.
*/
package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"

	"github.com/taibuivan/novelvault/internal/platform/config"
)

// maxPageBytes caps a downloaded page.
const maxPageBytes = 8 << 20

var (
	// ErrNoPost is returned when the post selector matches nothing, which
	// usually means the thread is hidden from guests or was deleted.
	ErrNoPost = errors.New("scrape: first post not found")

	// noiseSelectors are removed from the post before its text is read.
	noiseSelectors = strings.Join([]string{
		"script", "style",
		".pstatus", // "本帖最後由 … 編輯"
		".jammer",  // Hidden anti-copy spans
		"span[style*='display:none']",
		".attach_nopermission", ".tip", ".quote",
	}, ", ")
)

// # Thread

// Thread is the text of one downloaded forum thread.
type Thread struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// # Client

// Client fetches threads over HTTP.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	config     config.ScraperConfig
	logger     *slog.Logger
}

/*
NewClient constructs a forum [Client].

Parameters:
  - cfg: config.ScraperConfig (Timeout, politeness, selectors)
  - logger: *slog.Logger
*/
func NewClient(cfg config.ScraperConfig, logger *slog.Logger) *Client {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, max(cfg.Burst, 1)),
		config:     cfg,
		logger:     logger,
	}
}

/*
Fetch downloads a thread and extracts its title and first post.

Parameters:
  - ctx: context.Context (Cancels both the politeness wait and the request)
  - url: string

Returns:
  - *Thread: Title and plain-text body, UTF-8
  - error: Transport errors, non-2xx statuses, or [ErrNoPost]
*/
func (c *Client) Fetch(ctx context.Context, url string) (*Thread, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("scrape: rate limiter: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("scrape: invalid url %q: %w", url, err)
	}
	if c.config.UserAgent != "" {
		request.Header.Set("User-Agent", c.config.UserAgent)
	}
	if c.config.Cookie != "" {
		request.Header.Set("Cookie", c.config.Cookie)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("scrape: request failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("scrape: %s returned status %d", url, response.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(response.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("scrape: failed to read body: %w", err)
	}

	decoded, charsetName, err := decode(raw, response.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	thread, err := c.parse(decoded)
	if err != nil {
		return nil, err
	}
	thread.URL = url

	c.logger.Debug("thread_fetched",
		slog.String("url", url),
		slog.String("charset", charsetName),
		slog.Int("body_bytes", len(thread.Body)),
	)

	return thread, nil
}

// parse extracts the title and the first post from a UTF-8 page.
func (c *Client) parse(page []byte) (*Thread, error) {
	document, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("scrape: failed to parse html: %w", err)
	}

	title := strings.TrimSpace(document.Find(c.config.TitleSelector).First().Text())
	if title == "" {
		title = strings.TrimSpace(document.Find("title").First().Text())
	}

	post := document.Find(c.config.PostSelector).First()
	if post.Length() == 0 {
		return nil, ErrNoPost
	}

	return &Thread{Title: title, Body: postText(post)}, nil
}

// # Text Extraction

// postText renders a post as plain text, one line per <br> or block.
func postText(post *goquery.Selection) string {
	post.Find(noiseSelectors).Remove()
	post.Find("br").ReplaceWithHtml("\n")
	post.Find("p, div, li").AppendHtml("\n")

	text := strings.ReplaceAll(post.Text(), "\u00a0", " ")
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for index, line := range lines {
		lines[index] = strings.TrimRight(line, " \t\r")
	}

	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

// # Encoding

// decode converts a page to UTF-8 using the declared or sniffed charset.
// Anything labelled GBK or GB2312 is read as GB18030, which is a superset
// of both and tolerates the extended characters forums emit.
func decode(raw []byte, contentType string) ([]byte, string, error) {
	detected, name, _ := charset.DetermineEncoding(raw, contentType)

	var decoder encoding.Encoding
	switch strings.ToLower(name) {
	case "utf-8":
		return raw, name, nil
	case "gbk", "gb2312", "gb18030":
		decoder = simplifiedchinese.GB18030
	default:
		decoder = detected
	}

	decoded, _, err := transform.Bytes(decoder.NewDecoder(), raw)
	if err != nil {
		return nil, name, fmt.Errorf("scrape: failed to decode %s page: %w", name, err)
	}
	return decoded, name, nil
}
