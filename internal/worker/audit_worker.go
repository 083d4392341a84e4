package worker

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"paperarchive/internal/model"
	"paperarchive/internal/platform/rabbitmq"
)

type AuditStore interface {
	Create(ctx context.Context, entry *model.PaperAuditEntry) error
}

// AuditWorker drains paper events from the queue into the audit table.
type AuditWorker struct {
	conn      *amqp.Connection
	store     AuditStore
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewAuditWorker(conn *amqp.Connection, store AuditStore, queueName string) *AuditWorker {
	return &AuditWorker{
		conn:      conn,
		store:     store,
		queueName: queueName,
	}
}

func (w *AuditWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if _, err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.handle(workerCtx, d.Body); err != nil {
					logrus.WithField("queue", w.queueName).WithError(err).Warn("audit worker dropped event")
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *AuditWorker) handle(ctx context.Context, body []byte) error {
	event, err := rabbitmq.DecodeEvent(body)
	if err != nil {
		return err
	}
	entry := &model.PaperAuditEntry{
		PaperID:    event.PaperID,
		Action:     event.Action,
		Actor:      event.Actor,
		Title:      event.Title,
		OccurredAt: event.OccurredAt,
	}
	if err := w.store.Create(ctx, entry); err != nil {
		return fmt.Errorf("persist audit entry failed: %w", err)
	}
	return nil
}

func (w *AuditWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
