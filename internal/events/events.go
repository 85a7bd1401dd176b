// Package events publishes resume status changes.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

const Exchange = "resume_updates"

type Event struct {
	ResumeID  int64     `json:"resume_id"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (e Event) RoutingKey() string {
	return fmt.Sprintf("resume.%d", e.ResumeID)
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// AMQPPublisher sends events to a topic exchange, one channel per publish.
type AMQPPublisher struct {
	conn *amqp.Connection
}

// NewAMQPPublisher declares the exchange and returns a publisher on conn.
func NewAMQPPublisher(conn *amqp.Connection) (*AMQPPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("error connecting to rabbitmq channel: %w", err)
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(
		Exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-delete
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return &AMQPPublisher{conn: conn}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	body, err := json.Marshal(e)
	if err != nil {
		return err
	}

	return ch.Publish(
		Exchange,
		e.RoutingKey(),
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   e.Timestamp,
			Body:        body,
		},
	)
}

// LogPublisher only logs events. Used when no broker is configured.
type LogPublisher struct {
	log *logrus.Logger
}

func NewLogPublisher(log *logrus.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, e Event) error {
	p.log.WithFields(logrus.Fields{
		"resume_id": e.ResumeID,
		"user_id":   e.UserID,
		"status":    e.Status,
	}).Debug(e.Message)
	return nil
}
