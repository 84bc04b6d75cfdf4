package player

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/stwalsh4118/coursecast/internal/logger"
)

const defaultPrecheckTimeout = 10 * time.Second

// TokenPlacement controls how the viewer token travels to the streaming endpoint
type TokenPlacement string

const (
	// TokenInHeader sends the token as a bearer Authorization header
	TokenInHeader TokenPlacement = "header"
	// TokenInQuery sends the token as the token query parameter
	TokenInQuery TokenPlacement = "query"
)

// IsValid checks if the placement is a known value
func (p TokenPlacement) IsValid() bool {
	return p == TokenInHeader || p == TokenInQuery
}

// PrecheckConfig configures the availability precheck
type PrecheckConfig struct {
	BaseURL        string
	CredentialKeys []string // lookup order, first match wins
	Placement      TokenPlacement
	Timeout        time.Duration
}

// CheckResult is the outcome of one availability check
type CheckResult struct {
	Kind      ErrorKind
	Status    int   // HTTP status, 0 when no response was received
	Err       error // transport error, if any
	Attempted bool  // whether a network round trip was made
}

// OK reports whether the content may be played
func (r CheckResult) OK() bool {
	return r.Kind == ErrorKindNone
}

// AvailabilityChecker verifies a local content id can be streamed
type AvailabilityChecker interface {
	Check(ctx context.Context, contentID string) CheckResult
}

// Prechecker issues a HEAD against the streaming endpoint before a player is shown
type Prechecker struct {
	config PrecheckConfig
	creds  CredentialSource
	client *http.Client
	log    zerolog.Logger
}

// NewPrechecker creates a new prechecker. A nil client uses http.DefaultClient.
func NewPrechecker(cfg PrecheckConfig, creds CredentialSource, client *http.Client) *Prechecker {
	if len(cfg.CredentialKeys) == 0 {
		cfg.CredentialKeys = DefaultCredentialKeys
	}
	if !cfg.Placement.IsValid() {
		cfg.Placement = TokenInHeader
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultPrecheckTimeout
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &Prechecker{
		config: cfg,
		creds:  creds,
		client: client,
		log:    logger.Component("precheck"),
	}
}

// Check looks up the viewer token and, if present, performs exactly one HEAD
// request. A missing token fails as unauthenticated without touching the network.
func (p *Prechecker) Check(ctx context.Context, contentID string) CheckResult {
	token, key, ok := LookupToken(p.creds, p.config.CredentialKeys)
	if !ok {
		p.log.Debug().
			Str("content_id", contentID).
			Strs("keys", p.config.CredentialKeys).
			Msg("No credential token found, skipping precheck request")
		return CheckResult{Kind: ErrorKindUnauthenticated, Err: ErrNoCredential}
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	req, err := p.newRequest(ctx, http.MethodHead, contentID, token)
	if err != nil {
		return CheckResult{Kind: ErrorKindUnknown, Err: err}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Warn().
			Err(err).
			Str("content_id", contentID).
			Msg("Precheck request failed")
		return CheckResult{Kind: ErrorKindUnknown, Err: err, Attempted: true}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	kind := ClassifyStatus(resp.StatusCode)
	event := p.log.Debug()
	if kind != ErrorKindNone {
		event = p.log.Warn()
	}
	event.
		Str("content_id", contentID).
		Str("credential_key", key).
		Int("status", resp.StatusCode).
		Str("kind", kind.String()).
		Msg("Precheck completed")

	return CheckResult{Kind: kind, Status: resp.StatusCode, Attempted: true}
}

// MediaRequest builds the GET for the actual media fetch, carrying the token
// exactly as the precheck did
func (p *Prechecker) MediaRequest(ctx context.Context, contentID string) (*http.Request, error) {
	token, _, ok := LookupToken(p.creds, p.config.CredentialKeys)
	if !ok {
		return nil, NewPlaybackError(ErrorKindUnauthenticated, 0, ErrNoCredential)
	}
	return p.newRequest(ctx, http.MethodGet, contentID, token)
}

func (p *Prechecker) newRequest(ctx context.Context, method, contentID, token string) (*http.Request, error) {
	target, err := url.Parse(StreamURL(p.config.BaseURL, contentID))
	if err != nil {
		return nil, fmt.Errorf("invalid stream URL: %w", err)
	}

	if p.config.Placement == TokenInQuery {
		q := target.Query()
		q.Set("token", token)
		target.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", method, err)
	}

	if p.config.Placement == TokenInHeader {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}
