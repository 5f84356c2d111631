package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type countingObserver struct {
	ok     map[string]int
	failed map[string]int
}

func newObserver() *countingObserver {
	return &countingObserver{ok: map[string]int{}, failed: map[string]int{}}
}

func (o *countingObserver) IncEventPublished(eventType string, err error) {
	if err != nil {
		o.failed[eventType]++
		return
	}
	o.ok[eventType]++
}

var at = time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)

func newPublisher(w MessageWriter, o Observer) *KafkaPublisher {
	p := NewKafkaPublisher(w, o, logger.Discard())
	p.now = func() time.Time { return at }
	p.newID = func() string { return "6f1c2b1e-0000-4000-8000-000000000001" }
	return p
}

func sampleBooking() *domain.Booking {
	return &domain.Booking{
		ID: 15, EmployeeID: 3, ClientID: 9, ServiceID: 2,
		BookingDate: time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC), StartTime: "10:00",
		DurationMinutes: 30, Status: domain.StatusPending,
	}
}

func TestKafkaPublisher_BookingCreated(t *testing.T) {
	w := &fakeWriter{}
	o := newObserver()
	p := newPublisher(w, o)

	require.NoError(t, p.PublishBookingCreated(context.Background(), sampleBooking()))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "15", string(msg.Key))
	assert.Empty(t, msg.Topic)

	var event BookingEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, EventBookingCreated, event.EventType)
	assert.Equal(t, "2024-06-04", event.Date)
	assert.Equal(t, "10:00", event.Time)
	assert.Equal(t, "pending", event.Status)
	assert.Empty(t, event.PreviousStatus)
	assert.Equal(t, at, event.OccurredAt)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, EventBookingCreated, headers["event_type"])
	assert.Equal(t, event.EventID, headers["event_id"])
	assert.Equal(t, 1, o.ok[EventBookingCreated])
}

func TestKafkaPublisher_StatusChanged(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(w, nil)
	b := sampleBooking()
	b.Status = domain.StatusConfirmed

	require.NoError(t, p.PublishStatusChanged(context.Background(), b, domain.StatusPending))

	var event BookingEvent
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &event))
	assert.Equal(t, EventBookingStatusChanged, event.EventType)
	assert.Equal(t, "confirmed", event.Status)
	assert.Equal(t, "pending", event.PreviousStatus)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	cause := errors.New("leader not available")
	o := newObserver()
	p := newPublisher(&fakeWriter{err: cause}, o)

	err := p.PublishBookingCreated(context.Background(), sampleBooking())

	assert.ErrorIs(t, err, ErrPublish)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, o.failed[EventBookingCreated])
}

func TestHeaderCarrier_SetOverwrites(t *testing.T) {
	c := &headerCarrier{headers: []kafka.Header{{Key: "traceparent", Value: []byte("old")}}}

	c.Set("traceparent", "new")
	c.Set("tracestate", "x")

	assert.Equal(t, "new", c.Get("traceparent"))
	assert.ElementsMatch(t, []string{"traceparent", "tracestate"}, c.Keys())
}

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, SplitBrokers(" kafka-1:9092, ,kafka-2:9092 "))
	assert.Nil(t, SplitBrokers(""))
}

func TestPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, newPublisher(w, nil).Close())
	assert.True(t, w.closed)
	assert.NoError(t, NoopPublisher{}.Close())
}
