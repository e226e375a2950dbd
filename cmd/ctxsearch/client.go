package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fyrsmithlabs/ctxsearch/internal/apperr"
)

const requestTimeout = 60 * time.Second

var httpClient = &http.Client{Timeout: requestTimeout}

// postJSON POSTs body as JSON to path and decodes the response into out.
func postJSON(path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, serverURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return do(req, out)
}

// getJSON issues a GET to path with query params and decodes the response.
func getJSON(path string, query url.Values, out interface{}) error {
	full := serverURL + path
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, full, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	return do(req, out)
}

// getRaw issues a GET and returns the response body verbatim, for
// endpoints that reply with plain text rather than JSON.
func getRaw(path string, query url.Values, out *[]byte) error {
	full := serverURL + path
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, full, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("contacting %s: %w", serverURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return apperr.New(kindForStatus(resp.StatusCode), string(body))
	}
	*out = body
	return nil
}

func do(req *http.Request, out interface{}) error {
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("contacting %s: %w", serverURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(resp.Body)
		return apperr.New(kindForStatus(resp.StatusCode), string(body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func kindForStatus(status int) apperr.Kind {
	switch status {
	case http.StatusNotFound:
		return apperr.NotFoundKind
	case http.StatusConflict:
		return apperr.ConflictKind
	case http.StatusServiceUnavailable:
		return apperr.ShutdownErrorKind
	case http.StatusBadGateway:
		return apperr.BackendErrorKind
	default:
		return apperr.ReadErrorKind
	}
}
