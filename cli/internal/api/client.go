package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// Client wraps HTTP calls to the groupchat backend.
type Client struct {
	BaseURL string
	// SiteURL hosts the binary upload endpoint, outside /api.
	SiteURL    string
	HTTPClient *http.Client
	// StreamClient has no timeout; live subscriptions stay open.
	StreamClient *http.Client
}

// NewClient creates a Client from a backend URL (e.g. http://localhost:8080) and the site
// URL used for uploads. An empty site URL falls back to the backend URL.
func NewClient(baseURL, siteURL string) *Client {
	base := strings.TrimRight(baseURL, "/")
	site := strings.TrimRight(siteURL, "/")
	if site == "" {
		site = base
	}
	return &Client{
		BaseURL: base + "/api",
		SiteURL: site,
		HTTPClient: &http.Client{
			Timeout: 5 * time.Minute, // generous for large uploads
		},
		StreamClient: &http.Client{},
	}
}

// Response is the standard { success, data, error } envelope.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`
}

// APIError is returned when the server sends a non-2xx status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d — %s", e.Status, e.Message)
}

func (c *Client) newRequest(method, path string, body io.Reader) (*http.Request, error) {
	return http.NewRequest(method, c.BaseURL+path, body)
}

func errorFromResponse(status int, data []byte) error {
	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
		return &APIError{Status: status, Message: errResp.Error}
	}
	return &APIError{Status: status, Message: strings.TrimSpace(string(data))}
}

func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return errorFromResponse(resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// Get sends a GET request and decodes the JSON body into out.
func (c *Client) Get(path string, params url.Values, out interface{}) error {
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	req, err := c.newRequest(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.doJSON(req, out)
}

// Post sends a POST with a JSON body.
func (c *Client) Post(path string, body interface{}, out interface{}) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(data)
	}
	req, err := c.newRequest(http.MethodPost, path, r)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.doJSON(req, out)
}

type functionCall struct {
	Path string      `json:"path"`
	Args interface{} `json:"args"`
}

// Query runs a named query function, e.g. "groups:get".
func (c *Client) Query(path string, args interface{}, out interface{}) error {
	return c.Post("/query", functionCall{Path: path, Args: args}, out)
}

func (c *Client) Mutation(path string, args interface{}, out interface{}) error {
	return c.Post("/mutation", functionCall{Path: path, Args: args}, out)
}

func (c *Client) Action(path string, args interface{}, out interface{}) error {
	return c.Post("/action", functionCall{Path: path, Args: args}, out)
}

// SendImage posts the file at filePath as the raw body of /sendImage on the site URL.
// The content type is detected from the file contents.
func (c *Client) SendImage(groupID, user, content, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	params := url.Values{}
	params.Set("user", user)
	params.Set("group_id", groupID)
	params.Set("content", content)

	req, err := http.NewRequest(http.MethodPost, c.SiteURL+"/sendImage?"+params.Encode(), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mimetype.Detect(data).String())
	req.Header.Set("Accept", "application/json")

	var ack struct {
		Success bool `json:"success"`
	}
	if err := c.doJSON(req, &ack); err != nil {
		return err
	}
	if !ack.Success {
		return fmt.Errorf("upload was not acknowledged")
	}
	return nil
}

// Subscribe opens a live query and calls fn with every result the server pushes.
// It returns when ctx is cancelled, the stream ends, or fn returns an error.
func (c *Client) Subscribe(ctx context.Context, path string, args interface{}, fn func(json.RawMessage) error) error {
	params := url.Values{}
	params.Set("path", path)
	if args != nil {
		encoded, err := json.Marshal(args)
		if err != nil {
			return err
		}
		params.Set("args", string(encoded))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/subscribe?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.StreamClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return errorFromResponse(resp.StatusCode, data)
	}

	err = readEvents(resp.Body, func(ev Event) error {
		switch ev.Name {
		case "result":
			return fn(json.RawMessage(ev.Data))
		case "error":
			return errorFromResponse(http.StatusInternalServerError, []byte(ev.Data))
		}
		return nil
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}
