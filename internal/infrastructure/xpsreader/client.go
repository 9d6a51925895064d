package xpsreader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"mushroom-datastore/internal/config"
	"mushroom-datastore/internal/domain"
)

// errorBodyLimit caps how much of a failed response is quoted in the returned error.
const errorBodyLimit = 512

// Client fetches parsed documents from the XPS reader service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default traced client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// New creates a client for the parser reachable under baseURL. Filenames are appended verbatim to baseURL,
// so it normally ends with a slash, e.g. "http://xps-reader:5000/xps_reader/".
func New(baseURL string, opts ...Option) (*Client, error) {
	if err := config.ValidateParserURL(baseURL); err != nil {
		return nil, fmt.Errorf("xpsreader: %w", err)
	}

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// FetchDocument retrieves the parsed rows of filename.
func (c *Client) FetchDocument(ctx context.Context, filename string) (domain.ParsedDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+filename, nil)
	if err != nil {
		return domain.ParsedDocument{}, fmt.Errorf("xpsreader: build request for %q: %w: %w", filename, domain.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ParsedDocument{}, fmt.Errorf("xpsreader: fetch %q: %w: %w", filename, domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return domain.ParsedDocument{}, fmt.Errorf("xpsreader: fetch %q: %w: status %s: %s", filename, domain.ErrUpstreamUnavailable, resp.Status, body)
	}

	document, err := decodeDocument(resp.Body)
	if err != nil {
		return domain.ParsedDocument{}, fmt.Errorf("xpsreader: decode %q: %w: %w", filename, domain.ErrUpstreamMalformedResponse, err)
	}

	if document.Name == "" {
		document.Name = filename
	}

	return document, nil
}

// documentEnvelope distinguishes a missing or null "rows" member from an empty list.
type documentEnvelope struct {
	Name string                   `json:"name"`
	Rows *[]domain.MeasurementRow `json:"rows"`
}

// decodeDocument reads exactly one JSON object carrying a "rows" array.
func decodeDocument(body io.Reader) (domain.ParsedDocument, error) {
	dec := json.NewDecoder(body)

	var envelope *documentEnvelope
	if err := dec.Decode(&envelope); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.ParsedDocument{}, errors.New("empty response body")
		}
		return domain.ParsedDocument{}, err
	}
	if envelope == nil {
		return domain.ParsedDocument{}, errors.New("null document")
	}
	if envelope.Rows == nil {
		return domain.ParsedDocument{}, errors.New(`missing "rows" array`)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return domain.ParsedDocument{}, errors.New("trailing data after document")
	}

	return domain.ParsedDocument{Name: envelope.Name, Rows: *envelope.Rows}, nil
}

var _ domain.DocumentFetcher = (*Client)(nil)
