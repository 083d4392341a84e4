package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"paperarchive/internal/model"
)

// EventPublisher sends catalog mutation events to a durable queue.
type EventPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewEventPublisher(conn *amqp.Connection, queueName string) *EventPublisher {
	return &EventPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *EventPublisher) Publish(ctx context.Context, event model.PaperEvent) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if _, err := DeclareQueue(ch, p.queueName); err != nil {
		return err
	}

	payload, err := EncodeEvent(event)
	if err != nil {
		return err
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
			Type:         string(event.Action),
		},
	); err != nil {
		return fmt.Errorf("publish paper event failed: %w", err)
	}
	return nil
}

// DeclareQueue declares the durable queue shared by the publisher and the
// audit worker.
func DeclareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		name,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("declare queue %s failed: %w", name, err)
	}
	return q, nil
}

func EncodeEvent(event model.PaperEvent) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal paper event failed: %w", err)
	}
	return payload, nil
}

func DecodeEvent(body []byte) (model.PaperEvent, error) {
	var event model.PaperEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return model.PaperEvent{}, fmt.Errorf("decode paper event failed: %w", err)
	}
	if event.PaperID == "" || event.Action == "" {
		return model.PaperEvent{}, fmt.Errorf("decode paper event failed: missing paper_id or action")
	}
	return event, nil
}
