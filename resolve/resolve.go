// Package resolve dereferences external document locations: filesystem
// paths and http(s) URLs. URL fetching applies SSRF prevention (scheme
// checks, private IP and DNS rebinding guards) and converts HTML responses
// to readable text.
package resolve

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"
)

// DefaultTimeout bounds a single location fetch.
const DefaultTimeout = 30 * time.Second

// DefaultMaxContentSize caps fetched content at 10 MB.
const DefaultMaxContentSize = 10 << 20

// Options configures a Resolver.
type Options struct {
	// Timeout bounds a single URL fetch.
	Timeout time.Duration

	// MaxContentSize caps the bytes read from a location.
	MaxContentSize int64

	// UserAgent is sent on URL fetches.
	UserAgent string

	// AllowInsecure permits plain http URLs and private addresses.
	// Intended for tests and local pipelines only.
	AllowInsecure bool
}

// Resolver resolves document locations to text content. Failure to resolve
// is reported as an UnreadableError so callers can distinguish a bad
// location from an internal fault.
type Resolver struct {
	opts   Options
	client *http.Client
}

// New creates a Resolver with the given options.
func New(opts Options) *Resolver {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxContentSize <= 0 {
		opts.MaxContentSize = DefaultMaxContentSize
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "annograph/1.0"
	}

	r := &Resolver{opts: opts}
	r.client = r.newClient()
	return r
}

// NewDefault creates a Resolver with default options.
func NewDefault() *Resolver {
	return New(Options{})
}

// Resolve reads the text content behind a location. URLs are fetched over
// the network; anything else is treated as a filesystem path.
func (r *Resolver) Resolve(ctx context.Context, location string) (string, error) {
	if location == "" {
		return "", &UnreadableError{Location: location, Err: fmt.Errorf("empty location")}
	}
	if isURL(location) {
		return r.resolveURL(ctx, location)
	}
	return r.resolveFile(location)
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

func (r *Resolver) resolveFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &UnreadableError{Location: path, Err: err}
	}
	if int64(len(data)) > r.opts.MaxContentSize {
		return "", &UnreadableError{Location: path, Err: fmt.Errorf("content exceeds %d bytes", r.opts.MaxContentSize)}
	}
	return string(data), nil
}

func (r *Resolver) resolveURL(ctx context.Context, rawURL string) (string, error) {
	if err := r.validateURL(rawURL); err != nil {
		return "", &UnreadableError{Location: rawURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &UnreadableError{Location: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", r.opts.UserAgent)
	req.Header.Set("Accept", "text/plain, text/html;q=0.9, */*;q=0.1")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", &UnreadableError{Location: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &UnreadableError{Location: rawURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, r.opts.MaxContentSize+1))
	if err != nil {
		return "", &UnreadableError{Location: rawURL, Err: err}
	}
	if int64(len(body)) > r.opts.MaxContentSize {
		return "", &UnreadableError{Location: rawURL, Err: fmt.Errorf("content exceeds %d bytes", r.opts.MaxContentSize)}
	}

	contentType := resp.Header.Get("Content-Type")
	if isHTML(contentType, body) {
		text, err := ExtractText(body, rawURL)
		if err != nil {
			return "", &UnreadableError{Location: rawURL, Err: fmt.Errorf("extract text: %w", err)}
		}
		return text, nil
	}
	return string(body), nil
}

// newClient builds an HTTP client with redirect limits and, unless
// AllowInsecure is set, a dialer that re-validates resolved IPs to prevent
// DNS rebinding.
func (r *Resolver) newClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	dialContext := dialer.DialContext
	if !r.opts.AllowInsecure {
		dialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, fmt.Errorf("invalid address: %w", err)
			}

			ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
			if err != nil {
				return nil, fmt.Errorf("DNS lookup failed: %w", err)
			}
			for _, ipAddr := range ips {
				if isPrivateIP(ipAddr.IP) {
					return nil, fmt.Errorf("connection to private IP %s is not allowed", ipAddr.IP)
				}
			}

			for _, ipAddr := range ips {
				conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ipAddr.IP.String(), port))
				if err == nil {
					return conn, nil
				}
			}
			return nil, fmt.Errorf("failed to connect to any resolved IP")
		}
	}

	transport := &http.Transport{
		DialContext:           dialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: r.opts.Timeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   r.opts.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("too many redirects (max 5)")
			}
			if err := r.validateURL(req.URL.String()); err != nil {
				return fmt.Errorf("redirect blocked: %w", err)
			}
			return nil
		},
	}
}

func isHTML(contentType string, body []byte) bool {
	if strings.Contains(contentType, "text/html") || strings.Contains(contentType, "application/xhtml") {
		return true
	}
	head := strings.ToLower(string(body[:min(len(body), 512)]))
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html")
}
