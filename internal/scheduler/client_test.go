package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
)

type testSchedulerConfig struct {
	redisURL string
}

func (c testSchedulerConfig) GetRedisURL() string                 { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool           { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string           { return "leads" }
func (c testSchedulerConfig) GetAsynqConcurrency() int            { return 2 }
func (c testSchedulerConfig) GetSnapshotCron() string             { return "0 0 * * *" }
func (c testSchedulerConfig) GetSnapshotLocation() *time.Location { return time.UTC }

func TestEnqueueAssignmentEmailOncePerNotification(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(testSchedulerConfig{redisURL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	defer client.Close()

	notificationID := uuid.New()
	leadID := uuid.New()
	for i := 0; i < 2; i++ {
		if err := client.EnqueueAssignmentEmail(context.Background(), notificationID, uuid.New(), &leadID, "assigned"); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}

	pending, err := mr.List("asynq:{leads}:pending")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending task, got %d", len(pending))
	}
}

func TestNewClientRequiresRedis(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatalf("expected error without redis url")
	}
}

func TestRedisClientOptHonoursInsecureTLS(t *testing.T) {
	opt, err := redisClientOpt("rediss://:secret@cache.example.com:6380/2", true)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if opt.Addr != "cache.example.com:6380" || opt.Password != "secret" || opt.DB != 2 {
		t.Fatalf("expected parsed url, got %+v", opt)
	}
	if opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Fatalf("expected insecure tls config")
	}
}

func TestNilClientIsNoop(t *testing.T) {
	var c *Client
	if err := c.EnqueueAssignmentEmail(context.Background(), uuid.New(), uuid.New(), nil, "x"); err != nil {
		t.Fatalf("expected nil client to be a no-op, got %v", err)
	}
}
