// Package remote is the typed HTTP client for the diary server.
//
// Every call is attempted exactly once. Transport failures come back as
// *RemoteUnavailableError and non-2xx responses as *RemoteRejectedError;
// use errors.Is with ErrRemoteUnavailable / ErrRemoteRejected to tell them
// apart.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	entriesPath  = "/api/diary"
	tagsPath     = "/api/tags"
	keywordsPath = "/api/keywords"

	RequestIDHeader = "X-Request-ID"

	maxDetailLength = 300
)

// Client talks to one remote origin.
type Client struct {
	origin     string
	httpClient *http.Client
}

// NewClient creates a client for origin. A zero timeout means requests run
// until the remote answers or ctx is done.
func NewClient(origin string, timeout time.Duration) (*Client, error) {
	return NewClientWithHTTP(origin, &http.Client{Timeout: timeout})
}

// NewClientWithHTTP creates a client using the given http.Client.
func NewClientWithHTTP(origin string, httpClient *http.Client) (*Client, error) {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if origin == "" {
		return nil, ErrNoOrigin
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{origin: origin, httpClient: httpClient}, nil
}

// Origin returns the normalized base URL.
func (c *Client) Origin() string {
	return c.origin
}

// ListEntries fetches every remote entry.
func (c *Client) ListEntries(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if err := c.do(ctx, http.MethodGet, entriesPath, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetEntry fetches one entry. A 404 yields ErrEntryNotFound.
func (c *Client) GetEntry(ctx context.Context, id int64) (*Entry, error) {
	var entry Entry
	err := c.do(ctx, http.MethodGet, entryPath(id), nil, &entry)
	if err != nil {
		var rejected *RemoteRejectedError
		if errors.As(err, &rejected) && rejected.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %d", ErrEntryNotFound, id)
		}
		return nil, err
	}
	return &entry, nil
}

// CreateEntry pushes a new entry and returns the id the remote assigned.
func (c *Client) CreateEntry(ctx context.Context, req CreateEntryRequest) (*CreateEntryResponse, error) {
	var resp CreateEntryResponse
	if err := c.do(ctx, http.MethodPost, entriesPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateEntryKeywords replaces the remote keyword set of an entry.
func (c *Client) UpdateEntryKeywords(ctx context.Context, entryID int64, keywords []string) error {
	if keywords == nil {
		keywords = []string{}
	}
	return c.do(ctx, http.MethodPut, entryPath(entryID)+"/keywords", UpdateKeywordsRequest{Keywords: keywords}, nil)
}

// ListTags fetches every remote tag.
func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	var tags []Tag
	if err := c.do(ctx, http.MethodGet, tagsPath, nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// ListTagsForEntry fetches the remote tags of one entry.
func (c *Client) ListTagsForEntry(ctx context.Context, entryID int64) ([]Tag, error) {
	var tags []Tag
	if err := c.do(ctx, http.MethodGet, tagsPath+"/"+strconv.FormatInt(entryID, 10), nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// CreateTag pushes a tag and returns the id the remote assigned.
func (c *Client) CreateTag(ctx context.Context, req CreateTagRequest) (*CreateTagResponse, error) {
	var resp CreateTagResponse
	if err := c.do(ctx, http.MethodPost, tagsPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteTag removes a remote tag.
func (c *Client) DeleteTag(ctx context.Context, tagID int64) error {
	return c.do(ctx, http.MethodDelete, tagsPath+"/"+strconv.FormatInt(tagID, 10), nil, nil)
}

// ListKeywords fetches every remote keyword row.
func (c *Client) ListKeywords(ctx context.Context) ([]Keyword, error) {
	var keywords []Keyword
	if err := c.do(ctx, http.MethodGet, keywordsPath, nil, &keywords); err != nil {
		return nil, err
	}
	return keywords, nil
}

func entryPath(id int64) string {
	return entriesPath + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	url := c.origin + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger := log.WithFields(log.Fields{
		"method":     method,
		"url":        url,
		"request_id": requestID,
	})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.WithError(err).Warn("Remote request failed")
		return &RemoteUnavailableError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	logger.WithFields(log.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("Remote request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return &RemoteRejectedError{
			Method:     method,
			URL:        url,
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(raw),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// parseDetail extracts the human readable reason from an error body. It
// understands {"detail": "..."} and validation lists of {"msg": "..."}.
func parseDetail(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Detail) > 0 {
		var text string
		if err := json.Unmarshal(envelope.Detail, &text); err == nil {
			return text
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(envelope.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, item := range items {
				if item.Msg != "" {
					msgs = append(msgs, item.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
		return truncate(string(envelope.Detail))
	}

	if json.Valid(raw) {
		return ""
	}
	return truncate(string(raw))
}

func truncate(s string) string {
	if len(s) > maxDetailLength {
		return s[:maxDetailLength] + "..."
	}
	return s
}
