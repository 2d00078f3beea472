// Package remote talks to the hosted JSON tree that holds every record.
//
// The tree is addressed by slash-separated paths and exposed over REST as
// {base}/{path}.json: GET reads a node, PUT overwrites it and DELETE removes it.
// A missing node reads as JSON null.
package remote

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

	"selectclass/pkg/response"
)

const (
	PathBookings      = "v1/appointments"
	PathCourses       = "v1/courses"
	PathStudents      = "v1/students"
	PathExpenses      = "v1/expenses"
	PathLectureModels = "v1/lecture_models"
	PathLegacyLecture = "palestras_v1"
	PathCredentials   = "v1/config/credentials"
	PathSettings      = "settings"
)

// Join builds a record path below a collection.
func Join(collection, id string) string {
	return collection + "/" + url.PathEscape(id)
}

type Client struct {
	base string
	auth string
	http *http.Client
}

func New(baseURL, auth string, timeout time.Duration) (*Client, error) {
	const op = "storage.remote.New"

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%s: unsupported scheme %q", op, u.Scheme)
	}

	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		auth: auth,
		http: &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) endpoint(path string) string {
	u := c.base + "/" + strings.Trim(path, "/") + ".json"
	if c.auth != "" {
		u += "?auth=" + url.QueryEscape(c.auth)
	}

	return u
}

// Get decodes the node at path into out. found is false when the node does
// not exist.
func (c *Client) Get(ctx context.Context, path string, out any) (bool, error) {
	const op = "storage.remote.Get"

	body, found, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return false, fmt.Errorf("%s %s: %w", op, path, err)
	}

	if !found {
		return false, nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("%s %s: decode: %w", op, path, err)
	}

	return true, nil
}

// GetRaw returns the node at path undecoded, or nil when it does not exist.
func (c *Client) GetRaw(ctx context.Context, path string) (json.RawMessage, error) {
	const op = "storage.remote.GetRaw"

	body, found, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, path, err)
	}

	if !found {
		return nil, nil
	}

	return body, nil
}

// Put overwrites the node at path with data.
func (c *Client) Put(ctx context.Context, path string, data any) error {
	const op = "storage.remote.Put"

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%s %s: encode: %w", op, path, err)
	}

	if _, _, err := c.do(ctx, http.MethodPut, path, payload); err != nil {
		return fmt.Errorf("%s %s: %w", op, path, err)
	}

	return nil
}

// Delete removes the node at path. Deleting a missing node succeeds.
func (c *Client) Delete(ctx context.Context, path string) error {
	const op = "storage.remote.Delete"

	if _, _, err := c.do(ctx, http.MethodDelete, path, nil); err != nil {
		return fmt.Errorf("%s %s: %w", op, path, err)
	}

	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, bool, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return nil, false, err
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", response.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("%w: read body: %w", response.ErrStoreUnavailable, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, false, fmt.Errorf("%w: status %d", response.ErrStoreUnavailable, resp.StatusCode)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, false, nil
	}

	return trimmed, true, nil
}
