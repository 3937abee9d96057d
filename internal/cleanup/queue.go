package cleanup

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const stream = "assets:cleanup"

// Asset kinds carried on the stream.
const (
	KindVideo  = "video"
	KindObject = "object"
)

// Queue buffers remote-asset deletions that failed inline. Local catalog
// deletes never wait on it: an orphaned remote asset is an accepted cost,
// a stuck catalog is not.
type Queue struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewQueue(client *redis.Client, log zerolog.Logger) *Queue {
	return &Queue{client: client, log: log}
}

// Enqueue is fire-and-forget: a full or unreachable queue only logs.
func (q *Queue) Enqueue(ctx context.Context, kind string, remoteID string) {
	if q.client == nil {
		return
	}
	err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{
			"kind":     kind,
			"remoteId": remoteID,
		},
	}).Err()
	if err != nil {
		q.log.Warn().Err(err).Str("kind", kind).Str("remote_id", remoteID).
			Msg("enqueue asset cleanup failed")
	}
}

// Drain retries up to batch pending deletions, removing entries that
// succeed and leaving failures for the next pass.
func (q *Queue) Drain(ctx context.Context, batch int64, destroy func(ctx context.Context, kind string, remoteID string) error) {
	if q.client == nil {
		return
	}

	entries, err := q.client.XRangeN(ctx, stream, "-", "+", batch).Result()
	if err != nil {
		q.log.Warn().Err(err).Msg("read cleanup stream failed")
		return
	}

	for _, entry := range entries {
		kind, _ := entry.Values["kind"].(string)
		remoteID, _ := entry.Values["remoteId"].(string)
		if remoteID == "" {
			q.client.XDel(ctx, stream, entry.ID)
			continue
		}

		if err := destroy(ctx, kind, remoteID); err != nil {
			q.log.Warn().Err(err).Str("kind", kind).Str("remote_id", remoteID).
				Msg("asset cleanup retry failed")
			continue
		}

		q.client.XDel(ctx, stream, entry.ID)
		q.log.Info().Str("kind", kind).Str("remote_id", remoteID).
			Msg("orphaned remote asset removed")
	}
}
