package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// errorBody is the JSON error shape returned by the bridge API.
type errorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string // Method is the HTTP method
	URL    string // URL is the request URL
	Code   int    // Code is the HTTP status code
	Reason string // Reason is the stable rejection reason, if any
	Msg    string // Msg is the server's error message
}

func (e *StatusError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %s: status %d: %s (%s)", e.Method, e.URL, e.Code, e.Reason, e.Msg)
	}

	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Code, e.Msg)
}

// httpGet performs a GET request and decodes the JSON response.
func (c *Client) httpGet(path string, result any) error {
	url := c.baseURL + path

	resp, err := c.http.Get(url)
	if err != nil {
		return fmt.Errorf("GET %s:\n%w", url, err)
	}
	defer func() { io.Copy(io.Discard, resp.Body); resp.Body.Close() }()

	return decodeResponse(resp, "GET", url, result)
}

// httpPostJSON performs a POST request with a JSON body and decodes the JSON response.
func (c *Client) httpPostJSON(path string, body any, result any) error {
	url := c.baseURL + path

	jsonBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body:\n%w", err)
	}

	resp, err := c.http.Post(url, "application/json", bytes.NewReader(jsonBytes))
	if err != nil {
		return fmt.Errorf("POST %s:\n%w", url, err)
	}
	defer func() { io.Copy(io.Discard, resp.Body); resp.Body.Close() }()

	return decodeResponse(resp, "POST", url, result)
}

// decodeResponse decodes a 2xx body into result or turns the error body into a StatusError.
func decodeResponse(resp *http.Response, method, url string, result any) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body errorBody
		_ = json.NewDecoder(resp.Body).Decode(&body)

		return &StatusError{
			Method: method,
			URL:    url,
			Code:   resp.StatusCode,
			Reason: body.Reason,
			Msg:    body.Error,
		}
	}

	if result == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%s %s: decode response:\n%w", method, url, err)
	}

	return nil
}
