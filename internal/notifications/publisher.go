package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// MessageWriter пишет сообщения в брокер, реализуется *kafka.Writer
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Observer считает опубликованные события
type Observer interface {
	IncEventPublished(eventType string, err error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Config параметры подключения к Kafka
type Config struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// NewWriter создает writer, сообщения одного бронирования попадают в одну партицию
func NewWriter(cfg Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// SplitBrokers разбирает список брокеров через запятую
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// KafkaPublisher публикует события бронирований в Kafka
// Публикация синхронная и вызывается после фиксации транзакции
type KafkaPublisher struct {
	writer   MessageWriter
	observer Observer
	logger   Logger
	now      func() time.Time
	newID    func() string
}

// NewKafkaPublisher создает publisher, observer может быть nil
func NewKafkaPublisher(writer MessageWriter, observer Observer, logger Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer:   writer,
		observer: observer,
		logger:   logger,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// PublishBookingCreated событие о новом бронировании
func (p *KafkaPublisher) PublishBookingCreated(ctx context.Context, booking *domain.Booking) error {
	return p.publish(ctx, EventBookingCreated, booking, "")
}

// PublishStatusChanged событие о смене статуса, previous может быть пустым
func (p *KafkaPublisher) PublishStatusChanged(ctx context.Context, booking *domain.Booking, previous domain.BookingStatus) error {
	return p.publish(ctx, EventBookingStatusChanged, booking, previous)
}

// Close закрывает writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func (p *KafkaPublisher) publish(ctx context.Context, eventType string, booking *domain.Booking, previous domain.BookingStatus) error {
	event := newBookingEvent(p.newID(), eventType, booking, previous, p.now())

	payload, err := json.Marshal(event)
	if err != nil {
		p.observe(eventType, err)
		return fmt.Errorf("%w: marshal %s: %v", ErrPublish, eventType, err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(booking.ID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID)},
			{Key: "event_type", Value: []byte(eventType)},
		},
		Time: event.OccurredAt,
	}
	msg.Headers = injectTraceHeaders(ctx, msg.Headers)

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.observe(eventType, err)
		return fmt.Errorf("%w: write %s for booking id=%d: %w", ErrPublish, eventType, booking.ID, err)
	}

	p.observe(eventType, nil)
	p.logger.Info("Notifications: published %s id=%s booking=%d", eventType, event.EventID, booking.ID)
	return nil
}

func (p *KafkaPublisher) observe(eventType string, err error) {
	if p.observer != nil {
		p.observer.IncEventPublished(eventType, err)
	}
}

// NoopPublisher используется, когда Kafka выключена
type NoopPublisher struct{}

func (NoopPublisher) PublishBookingCreated(context.Context, *domain.Booking) error { return nil }

func (NoopPublisher) PublishStatusChanged(context.Context, *domain.Booking, domain.BookingStatus) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
