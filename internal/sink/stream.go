package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"eventsim/internal/eventlog"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Stream writes events as JSON lines, paced by a token bucket.
type Stream struct {
	w       io.Writer
	limiter *rate.Limiter
}

// NewStream creates a stream emitting at most perSecond events per second with
// the given burst. A non-positive rate disables pacing.
func NewStream(w io.Writer, perSecond float64, burst int) *Stream {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &Stream{
		w:       w,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Send emits events in order until done or ctx is cancelled. It returns the
// number of events written.
func (s *Stream) Send(ctx context.Context, events []eventlog.Event) (int, error) {
	enc := json.NewEncoder(s.w)
	for i, e := range events {
		if err := s.limiter.Wait(ctx); err != nil {
			log.Debug().Err(err).Int("sent", i).Msg("Stream stopped")
			return i, err
		}
		if err := enc.Encode(e); err != nil {
			return i, fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return len(events), nil
}
