package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pomotrack/apiserver/config"
	"github.com/pomotrack/apiserver/types"
)

const (
	BackendRabbitMQ = "rabbitmq"
	BackendPubSub   = "pubsub"

	completionEventType = "pomodoro.completed"

	// Message attributes set on every completion event.
	attrType     = "type"
	attrUserID   = "userId"
	attrRecordID = "recordId"
)

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// CompletionEvent is published once per appended record.
type CompletionEvent struct {
	RecordID  string    `json:"recordId"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// MQ binds a backend to the completion channel.
type MQ struct {
	backend Backend
	channel string
}

func New(backend Backend, channel string) *MQ {
	return &MQ{backend: backend, channel: channel}
}

// Connect dials the backend named by cfg.Backend.
func Connect(ctx context.Context, cfg config.MQConfig) (*MQ, error) {
	if strings.TrimSpace(cfg.Channel) == "" {
		return nil, errors.New("mq channel is required")
	}

	var (
		backend Backend
		err     error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendRabbitMQ:
		backend, err = NewRabbitMQClient(cfg.RabbitMQ)
	case BackendPubSub:
		backend, err = NewPubSubClient(ctx, cfg.PubSub)
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Backend, err)
	}
	return New(backend, cfg.Channel), nil
}

// PublishCompletion announces a newly appended record.
func (m *MQ) PublishCompletion(ctx context.Context, record types.Record) error {
	data, err := json.Marshal(CompletionEvent{
		RecordID:  record.ID,
		UserID:    record.UserID,
		CreatedAt: record.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode completion event: %w", err)
	}
	_, err = m.backend.Publish(ctx, m.channel, data, map[string]string{
		attrType:     completionEventType,
		attrUserID:   record.UserID,
		attrRecordID: record.ID,
	})
	return err
}

// ConsumeCompletions delivers completion events to fn until ctx is done.
// Messages that cannot be decoded are dropped.
func (m *MQ) ConsumeCompletions(ctx context.Context, fn func(ctx context.Context, event CompletionEvent) error) error {
	return m.backend.Subscribe(ctx, m.channel, func(ctx context.Context, msg Message) error {
		var event CompletionEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			return nil
		}
		return fn(ctx, event)
	})
}

// Close closes the underlying backend.
func (m *MQ) Close() error {
	return m.backend.Close()
}
