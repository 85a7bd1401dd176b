package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "resume.42", Event{ResumeID: 42}.RoutingKey())
}

func TestEventJSON(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	body, err := json.Marshal(Event{
		ResumeID:  3,
		UserID:    "u-1",
		Status:    "analyzed",
		Message:   "analysis completed",
		Timestamp: ts,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"resume_id": 3,
		"user_id": "u-1",
		"status": "analyzed",
		"message": "analysis completed",
		"timestamp": "2025-03-01T12:00:00Z"
	}`, string(body))
}

func TestLogPublisher(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	err := NewLogPublisher(log).Publish(context.Background(), Event{ResumeID: 9, UserID: "u-2", Status: "analyzing", Message: "analysis started"})
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "analysis started", entry.Message)
	assert.Equal(t, int64(9), entry.Data["resume_id"])
	assert.Equal(t, "analyzing", entry.Data["status"])
}
