// Package realtime fans session change notifications out to connected
// clients over Redis pub/sub. Payloads carry only the session code and
// new version; subscribers re-read the document to converge.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shuffleraid/raid-api/internal/errors"
	redisclient "github.com/shuffleraid/raid-api/internal/redis"
)

//go:generate mockgen -destination=mock/mock_feed.go -package=realtimemock -source=realtime.go

const channelPrefix = "raid:"

// Update announces that a session document moved to a new version
type Update struct {
	Code    string `json:"code"`
	Version int64  `json:"version"`
}

// Feed publishes and subscribes to session change notifications
type Feed interface {
	// Publish announces a new version of a session document
	Publish(ctx context.Context, update Update) error

	// Subscribe delivers updates for one session until ctx is done.
	// The returned channel closes when the subscription ends.
	Subscribe(ctx context.Context, code string) (<-chan Update, error)
}

// Config holds the configuration for the Redis feed
type Config struct {
	Client redisclient.Client
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c.Client == nil {
		return errors.InvalidArgument("redis client is required")
	}
	return nil
}

type redisFeed struct {
	client redisclient.Client
}

// NewRedisFeed creates a pub/sub backed change feed
func NewRedisFeed(cfg *Config) (Feed, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &redisFeed{client: cfg.Client}, nil
}

var _ Feed = (*redisFeed)(nil)

func (f *redisFeed) Publish(ctx context.Context, update Update) error {
	if update.Code == "" {
		return errors.InvalidArgument("session code cannot be empty")
	}

	payload, err := json.Marshal(update)
	if err != nil {
		return errors.Wrap(err, "failed to marshal update")
	}
	if err := f.client.Publish(ctx, channelPrefix+update.Code+":changes", payload).Err(); err != nil {
		return errors.Wrapf(err, "failed to publish update for session %s", update.Code)
	}
	return nil
}

func (f *redisFeed) Subscribe(ctx context.Context, code string) (<-chan Update, error) {
	if code == "" {
		return nil, errors.InvalidArgument("session code cannot be empty")
	}

	sub := f.client.Subscribe(ctx, channelPrefix+code+":changes")
	// Force the subscription onto the wire before returning so callers
	// cannot miss updates published right after Subscribe.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, errors.Wrapf(err, "failed to subscribe to session %s", code)
	}

	updates := make(chan Update)
	go func() {
		defer close(updates)
		defer func() { _ = sub.Close() }()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var update Update
				if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
					slog.Warn("Dropping malformed session update",
						"session_code", code,
						"error", err)
					continue
				}
				select {
				case updates <- update:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return updates, nil
}
