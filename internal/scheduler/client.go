package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"salesorch_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) EnqueueEnrichLead(ctx context.Context, payload EnrichLeadPayload, runAt time.Time) error {
	task, err := NewEnrichLeadTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task, runAt)
}

// EnqueueInitiateCall schedules a call task. Three attempts total: the call
// provider is flaky but a stale outreach call is worse than a dropped one.
func (c *Client) EnqueueInitiateCall(ctx context.Context, payload InitiateCallPayload, runAt time.Time) error {
	task, err := NewInitiateCallTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task, runAt, asynq.MaxRetry(2))
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task, runAt time.Time, opts ...asynq.Option) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("scheduler client not configured")
	}
	opts = append(opts, asynq.ProcessAt(runAt), asynq.Queue(c.queue))
	_, err := c.client.EnqueueContext(ctx, task, opts...)
	return err
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
