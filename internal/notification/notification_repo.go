package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "notifications:"
	seenPrefix = "notifications:seen:"
	seenTTL    = 7 * 24 * time.Hour
)

//go:generate mockgen -source=notification_repo.go -destination=mock/notification_repo_mock.go -package=mock
type Repository interface {
	// Push stores n unless a notification with the same ID was already stored.
	Push(ctx context.Context, n Notification) (bool, error)
	List(ctx context.Context, userID string, limit int) ([]Notification, error)
}

type repository struct {
	rdb *redis.Client
}

func NewRepository(rdb *redis.Client) Repository {
	return &repository{rdb: rdb}
}

func listKey(userID string) string {
	return keyPrefix + userID
}

func (r *repository) Push(ctx context.Context, n Notification) (bool, error) {
	fresh, err := r.rdb.SetNX(ctx, seenPrefix+n.ID, 1, seenTTL).Result()
	if err != nil {
		return false, err
	}
	if !fresh {
		return false, nil
	}

	raw, err := json.Marshal(n)
	if err != nil {
		return false, err
	}

	pipe := r.rdb.TxPipeline()
	pipe.LPush(ctx, listKey(n.UserID), raw)
	pipe.LTrim(ctx, listKey(n.UserID), 0, maxPerUser-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (r *repository) List(ctx context.Context, userID string, limit int) ([]Notification, error) {
	if limit <= 0 || limit > maxPerUser {
		limit = maxPerUser
	}
	raws, err := r.rdb.LRange(ctx, listKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	out := make([]Notification, 0, len(raws))
	for _, raw := range raws {
		var n Notification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			return nil, fmt.Errorf("decode notification: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}
