package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const inventoriesPath = "api/v1/inventories"

var errNullBody = errors.New("null body")

// Client talks to the inventory API with a static bearer token.
type Client struct {
	base   *url.URL
	token  string
	http   *http.Client
	logger *log.Logger
}

var _ Inventories = (*Client)(nil)

type Option func(*Client)

// WithHTTPClient replaces the transport; the default is http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger that receives raw response bodies.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadURL, err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an absolute http(s) url", ErrBadURL, baseURL)
	}
	c := &Client{
		base:   base,
		token:  strings.TrimSpace(token),
		http:   http.DefaultClient,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Host returns the host part of the base URL. Tokens are keyed by it.
func (c *Client) Host() string { return c.base.Host }

func (c *Client) ListInventories(ctx context.Context) ([]Inventory, error) {
	var out []Inventory
	if err := c.do(ctx, "list inventories", http.MethodGet, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetInventory fetches one record. A nil id requests the collection endpoint
// and still decodes a single object.
func (c *Client) GetInventory(ctx context.Context, id *int64) (Inventory, error) {
	var segments []string
	if id != nil {
		segments = append(segments, strconv.FormatInt(*id, 10))
	}
	var out Inventory
	if err := c.do(ctx, "get inventory", http.MethodGet, segments, nil, &out); err != nil {
		return Inventory{}, err
	}
	return out, nil
}

// CreateInventory posts a new record. Empty titles are sent as-is.
func (c *Client) CreateInventory(ctx context.Context, title string) (CreateInventoryResponse, error) {
	var out CreateInventoryResponse
	body := CreateInventoryRequest{Title: title}
	if err := c.do(ctx, "create inventory", http.MethodPost, nil, body, &out); err != nil {
		return CreateInventoryResponse{}, err
	}
	return out, nil
}

func (c *Client) endpoint(segments []string) (string, error) {
	u := c.base.JoinPath(append([]string{inventoriesPath}, segments...)...)
	if u.Host == "" {
		return "", ErrBadURL
	}
	return u.String(), nil
}

func (c *Client) do(ctx context.Context, op, method string, segments []string, in, out any) error {
	endpoint, err := c.endpoint(segments)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrBadURL, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	c.logger.Printf("[api] %s %s -> %d: %s", method, endpoint, resp.StatusCode, data)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("http %d", resp.StatusCode)}
	}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return &DecodeError{Op: op, Err: errNullBody}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &DecodeError{Op: op, Err: err}
	}
	return nil
}
