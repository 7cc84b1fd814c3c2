package syncqueue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tenant-identity/internal/domain/port"
)

type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Queue         string
	MaxRetry      int
	Concurrency   int
}

func (c Config) queue() string {
	if c.Queue == "" {
		return "identity-sync"
	}
	return c.Queue
}

func (c Config) redisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB}
}

// Client enqueues provider sync tasks.
type Client struct {
	client   *asynq.Client
	queue    string
	maxRetry int
	// Logger, when set, records enqueues folded into a pending task.
	Logger *logrus.Logger
}

// dedupeWindow folds bursts of drift for one email into a single task. The
// lock expires on its own, so an archived task never blocks later syncs.
const dedupeWindow = 30 * time.Second

func NewClient(cfg Config) (*Client, error) {
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("redis address not configured")
	}
	maxRetry := cfg.MaxRetry
	if maxRetry <= 0 {
		maxRetry = 10
	}
	return &Client{
		client:   asynq.NewClient(cfg.redisOpt()),
		queue:    cfg.queue(),
		maxRetry: maxRetry,
	}, nil
}

// NewClientFromRedis shares the connection settings of an existing go-redis client.
func NewClientFromRedis(rdb *redis.Client, queue string, maxRetry int) (*Client, error) {
	opt := rdb.Options()
	return NewClient(Config{
		RedisAddr:     opt.Addr,
		RedisPassword: opt.Password,
		RedisDB:       opt.DB,
		Queue:         queue,
		MaxRetry:      maxRetry,
	})
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueAccountState queues a sync for email. Calls within dedupeWindow of a
// queued task for the same email are folded into it; that task pushes the
// latest local state anyway.
func (c *Client) EnqueueAccountState(ctx context.Context, email string, enabled bool) error {
	task, err := NewAccountStateTask(AccountStatePayload{Email: email, Enabled: enabled})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, c.enqueueOptions()...)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		if c.Logger != nil {
			c.Logger.WithField("email", email).Info("provider sync already queued")
		}
		return nil
	}
	return err
}

func (c *Client) enqueueOptions() []asynq.Option {
	return []asynq.Option{
		asynq.Queue(c.queue),
		asynq.MaxRetry(c.maxRetry),
		asynq.Unique(dedupeWindow),
	}
}

var _ port.ProviderSyncQueue = (*Client)(nil)
