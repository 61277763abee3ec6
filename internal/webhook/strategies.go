package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const DefaultMaxURLLength = 2048

// CORSPost is a JSON POST whose response must be readable and 2xx.
type CORSPost struct {
	Client *http.Client
}

func (CORSPost) Method() string { return MethodCORSPost }

func (s CORSPost) Send(ctx context.Context, endpoint string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := clientOrDefault(s.Client).Do(req)
	if err != nil {
		return err
	}
	defer drain(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// NoCORSPost posts a simple text/plain body and ignores the response. Only a
// transport error counts as failure.
type NoCORSPost struct {
	Client *http.Client
}

func (NoCORSPost) Method() string { return MethodNoCORSPost }

func (s NoCORSPost) Send(ctx context.Context, endpoint string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain;charset=UTF-8")

	resp, err := clientOrDefault(s.Client).Do(req)
	if err != nil {
		return err
	}
	drain(resp.Body)
	return nil
}

// ImageGet is the last resort: the payload rides in a query parameter of a
// GET, like a tracking pixel. Any response counts as delivered.
type ImageGet struct {
	Client       *http.Client
	MaxURLLength int
}

func (ImageGet) Method() string { return MethodImageGet }

func (s ImageGet) Send(ctx context.Context, endpoint string, body []byte) error {
	full := PixelURL(endpoint, body)
	limit := s.MaxURLLength
	if limit <= 0 {
		limit = DefaultMaxURLLength
	}
	if len(full) >= limit {
		return fmt.Errorf("%w: url length %d exceeds %d", ErrNotApplicable, len(full), limit)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "image/*")

	resp, err := clientOrDefault(s.Client).Do(req)
	if err != nil {
		return err
	}
	drain(resp.Body)
	return nil
}

// PixelURL appends the payload as the "payload" query parameter.
func PixelURL(endpoint string, body []byte) string {
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + "payload=" + url.QueryEscape(string(body))
}

func clientOrDefault(c *http.Client) *http.Client {
	if c == nil {
		return http.DefaultClient
	}
	return c
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}
