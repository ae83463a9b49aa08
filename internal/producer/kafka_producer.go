package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/varunhp06/campus-connect-sub000/internal/service"

	"github.com/segmentio/kafka-go"
)

// NotificationProducer публикует события workflow-а в топик уведомлений.
// Консьюмер на той стороне превращает их в push/email для requester-ов и продавцов.
type NotificationProducer struct {
	writer *kafka.Writer
}

func NewNotificationProducer(brokers []string, topic string) *NotificationProducer {
	return &NotificationProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func (p *NotificationProducer) publish(ctx context.Context, key, typ string, payload any) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	value, err := json.Marshal(envelope{Type: typ, Payload: payload})
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}

func (p *NotificationProducer) PublishRentRequestApproved(ctx context.Context, e service.RentRequestApprovedEvent) error {
	return p.publish(ctx, e.RequesterID.String(), "rent_request.approved", e)
}

func (p *NotificationProducer) PublishRentRequestRejected(ctx context.Context, e service.RentRequestRejectedEvent) error {
	return p.publish(ctx, e.RequesterID.String(), "rent_request.rejected", e)
}

func (p *NotificationProducer) PublishReturnApproved(ctx context.Context, e service.ReturnApprovedEvent) error {
	return p.publish(ctx, e.HolderID.String(), "return_request.approved", e)
}

func (p *NotificationProducer) PublishOrderCreated(ctx context.Context, e service.OrderCreatedEvent) error {
	return p.publish(ctx, e.ShopID.String(), "order.created", e)
}

func (p *NotificationProducer) PublishOrderStatusChanged(ctx context.Context, e service.OrderStatusChangedEvent) error {
	return p.publish(ctx, e.CustomerID.String(), "order.status_changed", e)
}

func (p *NotificationProducer) Close() error {
	return p.writer.Close()
}
