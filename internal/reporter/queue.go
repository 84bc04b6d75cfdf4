package reporter

import (
	"context"
	"sync"

	"github.com/stwalsh4118/coursecast/internal/player"
)

const defaultQueueSize = 16

type event struct {
	complete       bool
	watched, total float64
}

// Queue decouples the player's sampler from network latency. Samples are
// sent in order by a single worker and neither sink ever blocks. Progress
// samples leave the last buffer slot free for a completion, so a completion
// is only dropped when another one is already queued.
type Queue struct {
	client    *Client
	contentID string
	onError   func(error)

	mu     sync.Mutex
	closed bool
	events chan event
	wg     sync.WaitGroup
}

// NewQueue creates a queue reporting for contentID. onError may be nil.
func NewQueue(client *Client, contentID string, onError func(error)) *Queue {
	return &Queue{
		client:    client,
		contentID: contentID,
		onError:   onError,
		events:    make(chan event, defaultQueueSize+1),
	}
}

// Start launches the sending worker. Requests use ctx.
func (q *Queue) Start(ctx context.Context) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for ev := range q.events {
			var err error
			if ev.complete {
				err = q.client.ReportCompletion(ctx, q.contentID)
			} else {
				err = q.client.ReportProgress(ctx, q.contentID, ev.watched, ev.total)
			}
			if err != nil {
				q.client.log.Warn().
					Err(err).
					Str("content_id", q.contentID).
					Bool("completion", ev.complete).
					Msg("Failed to report to lessons API")
				if q.onError != nil {
					q.onError(err)
				}
			}
		}
	}()
}

// Close stops accepting events and waits until queued ones are sent
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.events)
	}
	q.mu.Unlock()
	q.wg.Wait()
}

// ProgressSink returns a sink suitable for player.Options.OnProgress
func (q *Queue) ProgressSink() player.ProgressSink {
	return func(watched, total float64) {
		q.mu.Lock()
		defer q.mu.Unlock()
		if q.closed {
			return
		}
		if len(q.events) >= defaultQueueSize {
			q.client.log.Warn().Str("content_id", q.contentID).Msg("Report queue full, dropping progress sample")
			return
		}
		q.events <- event{watched: watched, total: total}
	}
}

// CompletionSink returns a sink suitable for player.Options.OnComplete
func (q *Queue) CompletionSink() player.CompletionSink {
	return func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		if q.closed {
			return
		}
		select {
		case q.events <- event{complete: true}:
		default:
			q.client.log.Debug().Str("content_id", q.contentID).Msg("Completion already queued")
		}
	}
}
