package tika

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	gotika "github.com/google/go-tika/tika"
	"github.com/spf13/afero"
	"golang.org/x/time/rate"

	"lingosort/internal/services"
)

const defaultTimeout = 2 * time.Minute

// Config captures the Tika server connection settings.
type Config struct {
	URL string
	// Timeout bounds one extraction. Zero selects two minutes.
	Timeout time.Duration
	// RequestsPerSecond throttles requests across all workers. Zero disables it.
	RequestsPerSecond float64
}

// Client implements the extraction collaborator on top of a Tika server.
type Client struct {
	fs      afero.Fs
	tika    *gotika.Client
	limiter *rate.Limiter
	timeout time.Duration
	url     string
}

// Option customizes the client.
type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// NewClient constructs a Tika client reading documents from fs.
func NewClient(fs afero.Fs, cfg Config, opts ...Option) *Client {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = max(int(cfg.RequestsPerSecond), 1)
	}
	url := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	return &Client{
		fs:      fs,
		tika:    gotika.NewClient(o.httpClient, url),
		limiter: rate.NewLimiter(limit, burst),
		timeout: timeout,
		url:     url,
	}
}

// Ping asks the server for its version.
func (c *Client) Ping(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	version, err := c.tika.Version(ctx)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "extract", "tika version", fmt.Sprintf("tika server at %s unreachable", c.url), err)
	}
	return strings.TrimSpace(version), nil
}

// Extract returns the text content of the document at path.
func (c *Client) Extract(ctx context.Context, path string) (string, error) {
	file, err := c.fs.Open(path)
	if err != nil {
		return "", services.Wrap(services.ErrExtraction, "extract", "open", path, err)
	}
	defer file.Close()

	if err := c.limiter.Wait(ctx); err != nil {
		return "", services.Wrap(services.ErrExtraction, "extract", "rate limit", path, err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := c.tika.Parse(ctx, file)
	if err != nil {
		return "", services.Wrap(services.ErrExtraction, "extract", "tika parse", path, err)
	}
	text, err := markupToText(body)
	if err != nil {
		return "", services.Wrap(services.ErrExtraction, "extract", "parse markup", path, err)
	}
	return text, nil
}

// markupToText flattens Tika's XHTML answer. Plain-text answers pass through.
func markupToText(body string) (string, error) {
	trimmed := strings.TrimSpace(body)
	if !strings.HasPrefix(trimmed, "<") {
		return trimmed, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(trimmed))
	if err != nil {
		return "", err
	}
	doc.Find("head, script, style").Remove()
	var b strings.Builder
	doc.Find("body").Contents().Each(func(_ int, s *goquery.Selection) {
		b.WriteString(s.Text())
		b.WriteByte('\n')
	})
	return strings.TrimSpace(b.String()), nil
}
