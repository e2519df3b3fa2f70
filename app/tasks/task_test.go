package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/rss-press/app/feed"
)

func TestNewProcessFeedTask_Identity(t *testing.T) {
	source := testSource("gazette")
	task := NewProcessFeedTask(source, &fakeFetcher{}, feed.NewFilterer(), feed.NewSelector(time.UTC), nil, feed.DefaultWindow, 0)

	assert.Equal(t, TaskTypeProcessFeed, task.GetType())
	assert.Equal(t, "gazette", task.GetFeedName())
	_, err := uuid.Parse(task.GetID())
	assert.NoError(t, err, "task id is a uuid")

	other := NewProcessFeedTask(source, &fakeFetcher{}, feed.NewFilterer(), feed.NewSelector(time.UTC), nil, feed.DefaultWindow, 0)
	assert.NotEqual(t, task.GetID(), other.GetID())
}

func TestTask_Duration(t *testing.T) {
	task := NewTask(TaskTypeProcessEntry, "gazette")
	assert.Zero(t, task.GetDuration(), "unstarted task has no duration")

	task.Start()
	require.NotNil(t, task.StartedAt)
	assert.GreaterOrEqual(t, task.GetDuration(), time.Duration(0))
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleep(context.Background(), 0))
}
