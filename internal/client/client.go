package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"

	"neodrive/internal/domain/auth"
	"neodrive/internal/domain/file"
)

// Client talks to the drive API with a cookie jar holding the session. The
// direct-to-storage PUT goes through the same transport; the jar never sends
// the session cookie to the storage host.
type Client struct {
	baseURL string
	http    *http.Client

	mu       sync.RWMutex
	identity *auth.IdentityResponse
}

func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("init cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar},
	}, nil
}

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Login authenticates and records the identity for later ownership fields.
func (c *Client) Login(ctx context.Context, email, password string) (*auth.IdentityResponse, error) {
	var id auth.IdentityResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.identity = &id
	c.mu.Unlock()
	return &id, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return err
	}
	c.mu.Lock()
	c.identity = nil
	c.mu.Unlock()
	return nil
}

// Identity returns the logged-in identity, or nil before login.
func (c *Client) Identity() *auth.IdentityResponse {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity
}

func (c *Client) Files(ctx context.Context) ([]file.RecordView, error) {
	var data struct {
		Files []file.RecordView `json:"files"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/file", nil, &data); err != nil {
		return nil, err
	}
	return data.Files, nil
}

func (c *Client) StorageUsage(ctx context.Context) (*file.UsageSnapshot, error) {
	var usage file.UsageSnapshot
	if err := c.do(ctx, http.MethodGet, "/api/file/getStorageUsage", nil, &usage); err != nil {
		return nil, err
	}
	return &usage, nil
}

func (c *Client) PresignUpload(ctx context.Context, req file.PresignRequest) (*file.PresignResult, error) {
	var result file.PresignResult
	if err := c.do(ctx, http.MethodPost, "/api/file/presignedUrl", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ConfirmUpload(ctx context.Context, req file.MetadataRequest) (*file.FileRecord, error) {
	var rec file.FileRecord
	if err := c.do(ctx, http.MethodPost, "/api/file/uploadFileMetadata", req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Put streams the file body against a presigned URL. The server never sees
// the bytes.
func (c *Client) Put(ctx context.Context, url string, body io.Reader, size int64, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.ContentLength = size
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload transfer: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upload transfer: storage returned %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if !env.Success {
		apiErr := &APIError{Status: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}
