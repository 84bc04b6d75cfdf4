// Package reporter forwards player progress samples and completion to the
// lessons API.
package reporter

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

	"github.com/rs/zerolog"
	"github.com/stwalsh4118/coursecast/internal/logger"
	"github.com/stwalsh4118/coursecast/internal/player"
)

const defaultTimeout = 10 * time.Second

// StatusError is returned when the API answers with a non-2xx status
type StatusError struct {
	Status int
	Kind   player.ErrorKind
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("lessons API returned status %d (%s)", e.Status, e.Kind)
}

// Client posts progress to the lessons API on behalf of one viewer
type Client struct {
	baseURL string
	creds   player.CredentialSource
	keys    []string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a reporting client. Tokens are looked up in creds under
// keys on every request so a refreshed token is picked up.
func NewClient(baseURL string, creds player.CredentialSource, keys []string, timeout time.Duration) *Client {
	if len(keys) == 0 {
		keys = player.DefaultCredentialKeys
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		keys:    keys,
		http:    &http.Client{Timeout: timeout},
		log:     logger.Component("reporter"),
	}
}

type progressPayload struct {
	WatchedSeconds float64 `json:"watched_seconds"`
	TotalSeconds   float64 `json:"total_seconds"`
}

// ReportProgress posts one progress sample for contentID
func (c *Client) ReportProgress(ctx context.Context, contentID string, watched, total float64) error {
	body, err := json.Marshal(progressPayload{WatchedSeconds: watched, TotalSeconds: total})
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	return c.post(ctx, contentID, "progress", body)
}

// ReportCompletion tells the API the viewer completed contentID
func (c *Client) ReportCompletion(ctx context.Context, contentID string) error {
	return c.post(ctx, contentID, "completion", nil)
}

func (c *Client) post(ctx context.Context, contentID, resource string, body []byte) error {
	token, _, ok := player.LookupToken(c.creds, c.keys)
	if !ok {
		return player.ErrNoCredential
	}

	target := fmt.Sprintf("%s/api/videos/%s/%s", c.baseURL, url.PathEscape(contentID), resource)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", resource, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send %s: %w", resource, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if kind := player.ClassifyStatus(resp.StatusCode); kind != player.ErrorKindNone {
		return &StatusError{Status: resp.StatusCode, Kind: kind}
	}

	c.log.Debug().
		Str("content_id", contentID).
		Str("resource", resource).
		Int("status", resp.StatusCode).
		Msg("Reported to lessons API")
	return nil
}
