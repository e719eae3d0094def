// Package content maintains ordered, append-only content streams (forum
// posts, incident reports) on top of full-snapshot feed deliveries, and
// implements the shared write path for submissions.
package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/an-gr-hh1/landslide-sync/internal/domain"
	"github.com/an-gr-hh1/landslide-sync/internal/feed"
	"github.com/an-gr-hh1/landslide-sync/internal/observability"
	"github.com/an-gr-hh1/landslide-sync/internal/session"
)

// ErrEmptyBody rejects a submission whose required text field is blank.
// Validation failures are caught locally, before any network call.
var ErrEmptyBody = errors.New("content body must not be empty")

// Stream holds the current display list for one content path. Each
// delivery carries the full record set; the stream rebuilds its list from
// scratch, so a record reappearing under the same id replaces the in-memory
// copy rather than duplicating it.
type Stream[T domain.ContentRecord] struct {
	path    string
	kind    string
	svc     feed.RealtimeService
	decode  func(raw any) (T, bool)
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics

	mu      sync.RWMutex
	records []T
}

// NewStream creates a content stream for path. kind labels metrics
// ("forum", "incident").
func NewStream[T domain.ContentRecord](path, kind string, svc feed.RealtimeService, decode func(raw any) (T, bool), clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Stream[T] {
	return &Stream[T]{
		path:    path,
		kind:    kind,
		svc:     svc,
		decode:  decode,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// Path reports the remote path this stream renders.
func (s *Stream[T]) Path() string { return s.path }

// Sink returns the feed sink that applies deliveries to the stream.
func (s *Stream[T]) Sink() feed.Sink {
	return feed.FuncSink{
		Value: s.apply,
		Error: func(err error) {
			// Reported once, no automatic retry; the last good list stays up.
			s.logger.Warn("content feed error", "path", s.path, "error", err)
		},
	}
}

// apply rebuilds the display list from a full-set delivery.
func (s *Stream[T]) apply(raw any) {
	children, ok := raw.(map[string]any)
	if !ok && raw != nil {
		s.metrics.DecodeDefects.WithLabelValues(s.path).Inc()
		return
	}

	byID := make(map[string]T, len(children))
	for _, child := range children {
		rec, ok := s.decode(child)
		if !ok {
			s.metrics.DecodeDefects.WithLabelValues(s.path).Inc()
			continue
		}
		byID[rec.RecordID()] = rec
	}

	records := make([]T, 0, len(byID))
	for _, rec := range byID {
		records = append(records, rec)
	}
	domain.SortRecords(records)

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
}

// List returns the current display list, newest first.
func (s *Stream[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.records))
	copy(out, s.records)
	return out
}

// Submit allocates a server id, stamps the submission time and trust flag,
// and upserts the built record at path/id. The local list is not touched:
// the displayed list updates only once the next delivery confirms the
// write, so a rejected submission leaves the pre-submission list unchanged.
func (s *Stream[T]) Submit(ctx context.Context, sess session.Session, build func(id, timestamp string, trusted bool) T) (T, error) {
	var zero T

	id, err := s.svc.Push(ctx, s.path)
	if err != nil {
		s.metrics.Submissions.WithLabelValues(s.kind, "error").Inc()
		return zero, fmt.Errorf("allocate %s id: %w", s.kind, err)
	}

	timestamp := s.clock.Now().Format(domain.TimestampLayout)
	rec := build(id, timestamp, sess.Trusted())

	if err := s.svc.Set(ctx, s.path+"/"+id, rec); err != nil {
		s.metrics.Submissions.WithLabelValues(s.kind, "rejected").Inc()
		return zero, fmt.Errorf("submit %s: %w", s.kind, err)
	}

	s.metrics.Submissions.WithLabelValues(s.kind, "ok").Inc()
	s.logger.Info("content submitted", "kind", s.kind, "id", id, "trusted", sess.Trusted())
	return rec, nil
}

// SubmitForumPost validates and submits a forum post authored by sess.
func SubmitForumPost(ctx context.Context, s *Stream[domain.ForumPost], sess session.Session, authorName, body string) (domain.ForumPost, error) {
	if strings.TrimSpace(body) == "" {
		return domain.ForumPost{}, ErrEmptyBody
	}
	return s.Submit(ctx, sess, func(id, timestamp string, trusted bool) domain.ForumPost {
		return domain.ForumPost{
			ID:        id,
			UID:       sess.UID,
			UserName:  sess.AuthorName(authorName),
			Content:   body,
			Timestamp: timestamp,
			Trusted:   trusted,
		}
	})
}

// SubmitIncident validates and submits an incident report authored by sess.
// imageURL may be empty when no photo was attached.
func SubmitIncident(ctx context.Context, s *Stream[domain.IncidentReport], sess session.Session, description string, lat, lon float64, imageURL string) (domain.IncidentReport, error) {
	if strings.TrimSpace(description) == "" {
		return domain.IncidentReport{}, ErrEmptyBody
	}
	return s.Submit(ctx, sess, func(id, timestamp string, trusted bool) domain.IncidentReport {
		return domain.IncidentReport{
			ID:          id,
			UID:         sess.UID,
			Description: description,
			Latitude:    lat,
			Longitude:   lon,
			ImageURL:    imageURL,
			Timestamp:   timestamp,
			Trusted:     trusted,
		}
	})
}
