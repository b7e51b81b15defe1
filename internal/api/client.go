// Package api talks to the measurement service over HTTP and serves the same
// endpoints from a local store.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/innovadoor/sitemeasure/internal/model"
)

// DefaultTimeout bounds every request.
const DefaultTimeout = 30 * time.Second

// Endpoint paths, relative to the base URL.
const (
	pathNextSerial        = "/production/measurements/next-serial-number"
	pathNextMeasurementNo = "/production/measurements/next-number"
	pathMeasurements      = "/production/measurements"
	pathParties           = "/production/parties"
	pathProducts          = "/production/products"
	pathDesigns           = "/production/designs"
)

// ClientConfig configures a Client. BaseURL includes the API prefix, e.g.
// "https://erp.example.com/api/v1".
type ClientConfig struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client is a session backend over HTTP.
type Client struct {
	base   string
	token  string
	client *http.Client
	logger *zap.Logger
}

// NewClient returns a client for cfg.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Client{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		token:  cfg.Token,
		client: cfg.HTTPClient,
		logger: cfg.Logger,
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	u := c.base + path
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return parseError(resp.StatusCode, b)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// NextSerialNumber issues the next row serial.
func (c *Client) NextSerialNumber(ctx context.Context) (string, error) {
	var out struct {
		SerialNumber string `json:"serial_number"`
	}
	if err := c.do(ctx, http.MethodGet, pathNextSerial, nil, &out); err != nil {
		return "", err
	}
	if out.SerialNumber == "" {
		return "", fmt.Errorf("%s: empty serial number", pathNextSerial)
	}
	return out.SerialNumber, nil
}

// NextMeasurementNumber returns the number the next measurement will get.
func (c *Client) NextMeasurementNumber(ctx context.Context) (string, error) {
	var out struct {
		MeasurementNumber string `json:"measurement_number"`
	}
	if err := c.do(ctx, http.MethodGet, pathNextMeasurementNo, nil, &out); err != nil {
		return "", err
	}
	return out.MeasurementNumber, nil
}

// Parties lists the parties.
func (c *Client) Parties(ctx context.Context) ([]model.Party, error) {
	var out []model.Party
	if err := c.do(ctx, http.MethodGet, pathParties, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Products lists the products of a category.
func (c *Client) Products(ctx context.Context, category string) ([]model.Product, error) {
	path := pathProducts
	if category != "" {
		path += "?" + url.Values{"category": {category}}.Encode()
	}
	var out []model.Product
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Designs lists the active designs.
func (c *Client) Designs(ctx context.Context) ([]model.Design, error) {
	var out []model.Design
	if err := c.do(ctx, http.MethodGet, pathDesigns+"?is_active=true", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitMeasurement creates a measurement and returns its id.
func (c *Client) SubmitMeasurement(ctx context.Context, m model.Measurement) (int64, error) {
	var out struct {
		ID int64 `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, pathMeasurements, m, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// Measurement fetches a stored measurement.
func (c *Client) Measurement(ctx context.Context, id int64) (model.Measurement, error) {
	var out model.Measurement
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/%d", pathMeasurements, id), nil, &out); err != nil {
		return model.Measurement{}, err
	}
	return out, nil
}
