package player

import (
	"context"
	"html/template"
	"io"
)

// ErrorView is the user-facing presentation of a classified failure
type ErrorView struct {
	Kind       ErrorKind
	Title      string
	Message    string
	RetryLabel string
}

const retryLabel = "Try again"

// Present returns the fixed message for kind
func Present(kind ErrorKind) ErrorView {
	switch kind {
	case ErrorKindUnauthenticated:
		return ErrorView{
			Kind:       kind,
			Title:      "Session expired",
			Message:    "Your session has expired. Please sign in again to continue watching.",
			RetryLabel: retryLabel,
		}
	case ErrorKindForbidden:
		return ErrorView{
			Kind:       kind,
			Title:      "Access denied",
			Message:    "You do not have permission to view this video.",
			RetryLabel: retryLabel,
		}
	case ErrorKindNotFound:
		return ErrorView{
			Kind:       kind,
			Title:      "Video not found",
			Message:    "Video not found. It may have been moved or removed.",
			RetryLabel: retryLabel,
		}
	default:
		return ErrorView{
			Kind:       ErrorKindUnknown,
			Title:      "Playback error",
			Message:    "Something went wrong while loading the video. Please try again.",
			RetryLabel: retryLabel,
		}
	}
}

// Retry clears the failure on c and re-runs its availability precheck
func (v ErrorView) Retry(ctx context.Context, c *Controller) (PlaybackState, error) {
	return c.Retry(ctx)
}

var errorPanelTemplate = template.Must(template.New("error-panel").Parse(
	`<div class="video-player-error" role="alert" data-error-kind="{{.Kind}}">` +
		`<p class="video-player-error__title">{{.Title}}</p>` +
		`<p class="video-player-error__message">{{.Message}}</p>` +
		`<button type="button" class="video-player-error__retry" data-action="retry">{{.RetryLabel}}</button>` +
		`</div>`,
))

var embedFrameTemplate = template.Must(template.New("embed-frame").Parse(
	`<div class="video-player video-player--embed">` +
		`<iframe src="{{.Src}}" title="{{.Title}}" allow="{{.AllowAttr}}" sandbox="{{.SandboxAttr}}" allowfullscreen frameborder="0"></iframe>` +
		`</div>`,
))

// RenderError writes the error panel markup for v
func RenderError(w io.Writer, v ErrorView) error {
	return errorPanelTemplate.Execute(w, v)
}

// RenderEmbed writes the sandboxed inline frame markup for f
func RenderEmbed(w io.Writer, f EmbedFrame) error {
	return embedFrameTemplate.Execute(w, f)
}
