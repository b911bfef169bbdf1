package httpclient

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"strings"

	// Packages
	client "github.com/mutablelogic/go-client"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Client is a document management HTTP client that wraps the base HTTP
// client and provides typed methods for the REST API.
type Client struct {
	*client.Client
	endpoint  string
	token     string
	userAgent string
}

// Opt is a functional option for New
type Opt func(*Client) error

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a new client with the given base URL and options. The url
// parameter should point to the API endpoint, e.g.
// "http://localhost:8080/api/dms".
func New(url string, opts ...Opt) (*Client, error) {
	return NewWithClient(url, nil, opts...)
}

// NewWithClient creates a new client, passing clientopts to the underlying
// go-client (timeouts, tracing and so on).
func NewWithClient(url string, clientopts []client.ClientOpt, opts ...Opt) (*Client, error) {
	c := &Client{endpoint: strings.TrimSuffix(url, "/")}
	cl, err := client.New(append(clientopts, client.OptEndpoint(url))...)
	if err != nil {
		return nil, err
	}
	if isTruthyEnv("DMS_HTTP1") {
		tr, ok := cl.Client.Transport.(*http.Transport)
		if ok && tr != nil {
			tr = tr.Clone()
		} else {
			tr = http.DefaultTransport.(*http.Transport).Clone()
		}
		tr.ForceAttemptHTTP2 = false
		tr.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
		cl.Client.Transport = tr
	}
	c.Client = cl
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithToken sends the token as a bearer token with every API request.
// Signed transfer URLs never carry the token.
func WithToken(token string) Opt {
	return func(c *Client) error {
		if token = strings.TrimSpace(token); token == "" {
			return errors.New("empty token")
		}
		c.token = token
		return nil
	}
}

// WithUserAgent sets the User-Agent header for every request
func WithUserAgent(value string) Opt {
	return func(c *Client) error {
		c.userAgent = value
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// do performs a request against the API, adding the bearer token
func (c *Client) do(ctx context.Context, payload client.Payload, out any, opts ...client.RequestOpt) error {
	if c.token != "" {
		opts = append(opts, client.OptReqHeader("Authorization", "Bearer "+c.token))
	}
	if c.userAgent != "" {
		opts = append(opts, client.OptReqHeader("User-Agent", c.userAgent))
	}
	return c.DoWithContext(ctx, payload, out, opts...)
}

// authorize adds the bearer token to a request made outside go-client
func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.identify(req)
}

// identify sets the User-Agent on a request made outside go-client
func (c *Client) identify(req *http.Request) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

func isTruthyEnv(key string) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	return v != "" && v != "0" && v != "false" && v != "no" && v != "off"
}
