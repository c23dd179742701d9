package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/watchparty/internal/repository/locator"
)

const keyPrefix = "room"

// deletes the key only while it still points at this instance
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type repo struct {
	rc         *redis.Client
	instanceId string
	ttl        time.Duration
}

func NewRepo(rc *redis.Client, instanceId string, ttl time.Duration) *repo {
	return &repo{
		rc:         rc,
		instanceId: instanceId,
		ttl:        ttl,
	}
}

func (r repo) getKey(roomId string) string {
	return fmt.Sprintf("%s:%s:instance", keyPrefix, roomId)
}

func (r repo) InstanceId() string {
	return r.instanceId
}

func (r repo) Claim(ctx context.Context, roomId string) error {
	if err := r.rc.Set(ctx, r.getKey(roomId), r.instanceId, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to claim room: %w", err)
	}

	return nil
}

func (r repo) Release(ctx context.Context, roomId string) error {
	if err := releaseScript.Run(ctx, r.rc, []string{r.getKey(roomId)}, r.instanceId).Err(); err != nil {
		return fmt.Errorf("failed to release room: %w", err)
	}

	return nil
}

// Refresh re-claims every room in one pipeline.
func (r repo) Refresh(ctx context.Context, roomIds []string) error {
	if len(roomIds) == 0 {
		return nil
	}

	pipe := r.rc.Pipeline()
	for _, roomId := range roomIds {
		pipe.Set(ctx, r.getKey(roomId), r.instanceId, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to refresh rooms: %w", err)
	}

	return nil
}

func (r repo) Lookup(ctx context.Context, roomId string) (string, error) {
	instanceId, err := r.rc.Get(ctx, r.getKey(roomId)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", locator.ErrNotLocated
		}

		return "", fmt.Errorf("failed to lookup room: %w", err)
	}

	return instanceId, nil
}
