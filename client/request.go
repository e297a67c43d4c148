package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Request describes one API call relative to the client's base URL.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        any    // JSON-encoded when RawBody is nil
	RawBody     []byte // sent as-is with ContentType
	ContentType string
	Header      http.Header
}

// Get builds a GET request.
func Get(path string, query url.Values) *Request {
	return &Request{Method: http.MethodGet, Path: path, Query: query}
}

// Post builds a POST request with a JSON body.
func Post(path string, body any) *Request {
	return &Request{Method: http.MethodPost, Path: path, Body: body}
}

// Put builds a PUT request with a JSON body.
func Put(path string, body any) *Request {
	return &Request{Method: http.MethodPut, Path: path, Body: body}
}

// Patch builds a PATCH request with a JSON body.
func Patch(path string, body any) *Request {
	return &Request{Method: http.MethodPatch, Path: path, Body: body}
}

// Delete builds a DELETE request.
func Delete(path string) *Request {
	return &Request{Method: http.MethodDelete, Path: path}
}

// prepared is a request whose URL and body are fixed, so it can be sent more than once.
type prepared struct {
	method      string
	path        string
	url         string
	body        []byte
	contentType string
	header      http.Header
}

func (c *Client) prepare(r *Request) (*prepared, error) {
	if r == nil {
		return nil, &Error{Kind: KindSetup, Err: errors.New("nil request")}
	}
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	p := &prepared{method: method, path: r.Path, header: r.Header}

	rel, err := url.Parse(r.Path)
	if err != nil {
		log.Error().Err(err).Str("path", r.Path).Msg("Failed to parse request path")
		return nil, &Error{Kind: KindSetup, Method: method, Path: r.Path, Err: err}
	}
	if rel.IsAbs() || rel.Host != "" {
		return nil, &Error{Kind: KindSetup, Method: method, Path: r.Path, Err: errors.New("request path must be relative")}
	}
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimPrefix(rel.Path, "/")
	u.RawPath = ""
	if rel.RawPath != "" {
		u.RawPath = c.baseURL.EscapedPath() + "/" + strings.TrimPrefix(rel.RawPath, "/")
	}
	q := rel.Query()
	for k, vs := range r.Query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	p.url = u.String()

	switch {
	case r.RawBody != nil:
		p.body = r.RawBody
		p.contentType = r.ContentType
	case r.Body != nil:
		b, err := json.Marshal(r.Body)
		if err != nil {
			log.Error().Err(err).Str("path", r.Path).Msg("Failed to encode request body")
			return nil, &Error{Kind: KindSetup, Method: method, Path: r.Path, Err: err}
		}
		p.body = b
		p.contentType = "application/json"
	}
	return p, nil
}

// execute performs a single attempt. bearer is attached when non-empty.
func (c *Client) execute(ctx context.Context, p *prepared, bearer string, out any) error {
	var body io.Reader
	if p.body != nil {
		body = bytes.NewReader(p.body)
	}
	req, err := http.NewRequestWithContext(ctx, p.method, p.url, body)
	if err != nil {
		log.Error().Err(err).Str("method", p.method).Str("path", p.path).Msg("Failed to create request")
		return &Error{Kind: KindSetup, Method: p.method, Path: p.path, Err: err}
	}
	for k, vs := range p.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if p.contentType != "" {
		req.Header.Set("Content-Type", p.contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	logger := log.With().Str("method", p.method).Str("path", p.path).Str("request_id", requestID).Logger()
	start := time.Now()
	logger.Debug().Bool("authenticated", bearer != "").Msg("Sending HTTP request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn().Err(err).Dur("dur", time.Since(start)).Msg("HTTP request failed without a response")
		return &Error{Kind: KindTransport, Method: p.method, Path: p.path, Err: err}
	}
	defer closeResponseBody(resp)

	respBody, err := readResponseBody(resp)
	if err != nil {
		return &Error{Kind: KindTransport, Method: p.method, Path: p.path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Debug().Int("status", resp.StatusCode).Dur("dur", time.Since(start)).Msg("HTTP request returned non-successful status")
		return &Error{
			Kind:    KindStatus,
			Method:  p.method,
			Path:    p.path,
			Status:  resp.StatusCode,
			Message: extractMessage(respBody),
			Body:    respBody,
		}
	}
	logger.Debug().Int("status", resp.StatusCode).Dur("dur", time.Since(start)).Msg("HTTP request successful")

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		logger.Error().Err(err).Str("body_preview", string(respBody[:min(len(respBody), 200)])).Msg("Failed to parse response JSON")
		return &Error{Kind: KindDecode, Method: p.method, Path: p.path, Status: resp.StatusCode, Body: respBody, Err: err}
	}
	return nil
}

func readResponseBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read response body")
		return nil, err
	}
	return body, nil
}

func closeResponseBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.CopyN(io.Discard, resp.Body, 1024*1024)
	_ = resp.Body.Close()
}

// extractMessage returns the "message" (or "error") field of a JSON error body.
func extractMessage(body []byte) string {
	var m messageOnly
	if err := json.Unmarshal(body, &m); err != nil {
		return ""
	}
	if m.Message != "" {
		return m.Message
	}
	return m.Error
}
