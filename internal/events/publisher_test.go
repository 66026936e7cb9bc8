package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInProcessEventPublisher_DeliversEnvelope(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	publisher, channel := NewInProcessEventPublisher(PublisherConfig{TopicName: "lms-test", Logger: discardLogger()})
	defer publisher.Close()

	messages, err := channel.Subscribe(ctx, "lms-test")
	require.NoError(t, err)

	event := NewEnrollmentCreatedEvent(EnrollmentCreatedEvent{EnrollmentID: 3, CourseID: 7, StudentID: 9})
	require.NoError(t, publisher.PublishNotificationEvent(ctx, event))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, string(EventEnrollmentCreated), msg.Metadata.Get("event_type"))
		assert.Equal(t, eventSource, msg.Metadata.Get("source"))

		var decoded NotificationEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
		assert.Equal(t, event.ID, decoded.ID)
		assert.Equal(t, EventEnrollmentCreated, decoded.Type)
	case <-ctx.Done():
		t.Fatal("event was not delivered")
	}
}

func TestMockEventPublisher_ConcurrentPublish(t *testing.T) {
	publisher := NewMockEventPublisher(discardLogger())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			eventType := EventGradesPublished
			if i%2 == 0 {
				eventType = EventPaymentCompleted
			}
			_ = publisher.PublishNotificationEvent(context.Background(), NewEvent(eventType, nil))
		}(i)
	}
	wg.Wait()

	assert.Len(t, publisher.GetPublishedEvents(), 20)
	assert.Len(t, publisher.EventsOfType(EventPaymentCompleted), 10)

	publisher.ClearEvents()
	assert.Empty(t, publisher.GetPublishedEvents())
}

func TestGenerateEventID_Unique(t *testing.T) {
	assert.NotEqual(t, GenerateEventID(), GenerateEventID())
}
