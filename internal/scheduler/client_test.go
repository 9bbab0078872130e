package scheduler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSchedulerConfig struct {
	redisURL string
}

func (c testSchedulerConfig) GetRedisURL() string { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return "default" }
func (c testSchedulerConfig) GetAsynqConcurrency() int { return 1 }

func startRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	_, err := NewClient(testSchedulerConfig{})
	require.Error(t, err)
}

func TestNilClientIsNoop(t *testing.T) {
	var c *Client
	require.NoError(t, c.ScheduleFollowUp(context.Background(), uuid.New(), time.Hour))
	require.NoError(t, c.ScheduleReminder(context.Background(), uuid.New(), uuid.New(), time.Now().Add(time.Hour)))
	require.NoError(t, c.Close())
}

func TestScheduleFollowUpEnqueuesTask(t *testing.T) {
	mr := startRedis(t)
	c, err := NewClient(testSchedulerConfig{redisURL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	defer c.Close()

	leadID := uuid.New()
	require.NoError(t, c.ScheduleFollowUp(context.Background(), leadID, 48*time.Hour))

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer inspector.Close()

	tasks, err := inspector.ListScheduledTasks("default")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, TaskLeadFollowUp, tasks[0].Type)

	var payload LeadFollowUpPayload
	require.NoError(t, json.Unmarshal(tasks[0].Payload, &payload))
	assert.Equal(t, leadID.String(), payload.LeadID)
}

func TestScheduleReminderEnqueuesTask(t *testing.T) {
	mr := startRedis(t)
	c, err := NewClient(testSchedulerConfig{redisURL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	defer c.Close()

	apptID := uuid.New()
	leadID := uuid.New()
	at := time.Now().Add(24 * time.Hour)
	require.NoError(t, c.ScheduleReminder(context.Background(), apptID, leadID, at))

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer inspector.Close()

	tasks, err := inspector.ListScheduledTasks("default")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, TaskAppointmentReminder, tasks[0].Type)

	var payload AppointmentReminderPayload
	require.NoError(t, json.Unmarshal(tasks[0].Payload, &payload))
	assert.Equal(t, apptID.String(), payload.AppointmentID)
	assert.Equal(t, leadID.String(), payload.LeadID)
}

func TestRedisClientOptParsesURL(t *testing.T) {
	opt, err := redisClientOpt("redis://:secret@localhost:6380/2", false)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", opt.Addr)
	assert.Equal(t, "secret", opt.Password)
	assert.Equal(t, 2, opt.DB)
	assert.Nil(t, opt.TLSConfig)
}

func TestRedisClientOptInsecureTLS(t *testing.T) {
	opt, err := redisClientOpt("rediss://localhost:6380", true)
	require.NoError(t, err)
	require.NotNil(t, opt.TLSConfig)
	assert.True(t, opt.TLSConfig.InsecureSkipVerify)
}
