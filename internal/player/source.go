package player

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	// DefaultEmbedHost is the third-party host external videos are embedded from
	DefaultEmbedHost = "www.youtube.com"

	embedIDLength = 11
)

// embedURLPattern matches the share, watch and embed URL shapes of the external
// video host. The captured group is only a candidate; validEmbedID decides.
var embedURLPattern = regexp.MustCompile(
	`(?:youtube(?:-nocookie)?\.com/(?:[^/\s]+/\S+/|(?:v|e(?:mbed)?|shorts|live)/|\S*?[?&]v=)|youtu\.be/)([^"&?/\s#]+)`,
)

var embedIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// SourceKind identifies the playback mode
type SourceKind int

const (
	// SourceNone means nothing can be rendered
	SourceNone SourceKind = iota
	// SourceLocal is an authenticated byte stream served by the lessons API
	SourceLocal
	// SourceExternal is a third-party player loaded in an inline frame
	SourceExternal
)

// String returns the string representation of SourceKind
func (k SourceKind) String() string {
	switch k {
	case SourceLocal:
		return "local-stream"
	case SourceExternal:
		return "external-embed"
	default:
		return "none"
	}
}

// Reference is what the embedding page hands to the player
type Reference struct {
	ContentID   string
	ExternalURL string
}

// PlaybackSource is the resolved source. Exactly one of ContentID and EmbedID
// is set, matching Kind; both are empty for SourceNone.
type PlaybackSource struct {
	Kind      SourceKind
	ContentID string
	EmbedID   string
}

// Renderable reports whether a player should be rendered at all
func (s PlaybackSource) Renderable() bool {
	return s.Kind != SourceNone
}

// String returns a stable identity for the source, used in logs
func (s PlaybackSource) String() string {
	switch s.Kind {
	case SourceLocal:
		return "local:" + s.ContentID
	case SourceExternal:
		return "external:" + s.EmbedID
	default:
		return "none"
	}
}

// Resolve picks the playback mode for ref. A recognised external URL wins,
// then a content id; otherwise the result is SourceNone. It never fails.
func Resolve(ref Reference) PlaybackSource {
	if id, ok := ExtractEmbedID(ref.ExternalURL); ok {
		return PlaybackSource{Kind: SourceExternal, EmbedID: id}
	}
	if id := strings.TrimSpace(ref.ContentID); id != "" {
		return PlaybackSource{Kind: SourceLocal, ContentID: id}
	}
	return PlaybackSource{}
}

// ExtractEmbedID pulls the 11 character video id out of an external video URL
func ExtractEmbedID(rawURL string) (string, bool) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", false
	}

	match := embedURLPattern.FindStringSubmatch(rawURL)
	if len(match) < 2 {
		return "", false
	}

	id := match[1]
	if !validEmbedID(id) {
		return "", false
	}
	return id, true
}

func validEmbedID(id string) bool {
	return len(id) == embedIDLength && embedIDPattern.MatchString(id)
}

// EmbedURL builds the inline frame URL for an external video
func EmbedURL(host, embedID string) string {
	if host == "" {
		host = DefaultEmbedHost
	}
	return fmt.Sprintf("https://%s/embed/%s?enablejsapi=1&rel=0", host, url.PathEscape(embedID))
}

// StreamURL builds the streaming endpoint URL for a local content id
func StreamURL(baseURL, contentID string) string {
	return strings.TrimRight(baseURL, "/") + "/api/videos/" + url.PathEscape(contentID) + "/stream"
}

// EmbedFrame describes the sandboxed inline frame for an external video
type EmbedFrame struct {
	Src     string
	Title   string
	Allow   []string
	Sandbox []string
}

// NewEmbedFrame creates the frame description with fullscreen, autoplay and
// clipboard permissions granted
func NewEmbedFrame(host, embedID, title string) EmbedFrame {
	if title == "" {
		title = "Lesson video"
	}
	return EmbedFrame{
		Src:   EmbedURL(host, embedID),
		Title: title,
		Allow: []string{
			"accelerometer",
			"autoplay",
			"clipboard-write",
			"encrypted-media",
			"fullscreen",
			"gyroscope",
			"picture-in-picture",
		},
		Sandbox: []string{
			"allow-scripts",
			"allow-same-origin",
			"allow-presentation",
			"allow-popups",
		},
	}
}

// AllowAttr returns the value of the frame's allow attribute
func (f EmbedFrame) AllowAttr() string {
	return strings.Join(f.Allow, "; ")
}

// SandboxAttr returns the value of the frame's sandbox attribute
func (f EmbedFrame) SandboxAttr() string {
	return strings.Join(f.Sandbox, " ")
}
