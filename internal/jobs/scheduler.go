package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"learnhub/api/internal/cleanup"
	"learnhub/api/internal/storage"
	"learnhub/api/internal/videohost"
)

const drainBatch = 64

// Scheduler periodically retries remote-asset deletions that failed
// inline: DRM videos whose host was unreachable and stored objects the
// bucket refused to drop.
type Scheduler struct {
	cron  *cron.Cron
	queue *cleanup.Queue
	host  *videohost.Client
	store *storage.ObjectStore
	log   zerolog.Logger
}

func NewScheduler(queue *cleanup.Queue, host *videohost.Client, store *storage.ObjectStore, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithSeconds()),
		queue: queue,
		host:  host,
		store: store,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 */10 * * * *", s.drainCleanup); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop waits for any in-flight drain to finish, up to a short grace
// period.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) drainCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	s.queue.Drain(ctx, drainBatch, func(ctx context.Context, kind string, remoteID string) error {
		switch kind {
		case cleanup.KindVideo:
			return s.host.Delete(ctx, remoteID)
		case cleanup.KindObject:
			return s.store.Remove(ctx, remoteID)
		default:
			// Unknown entries drop rather than cycle forever.
			s.log.Warn().Str("kind", kind).Str("remote_id", remoteID).Msg("unknown cleanup kind dropped")
			return nil
		}
	})
}
