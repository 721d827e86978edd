// Package events publishes catalog and user change events to NATS JetStream.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"catalog-admin-service/internal/models"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sirupsen/logrus"
)

// Stream and subject names
const (
	CatalogStream = "CATALOG_EVENTS"
	UserStream    = "USER_EVENTS"

	SubjectProductsBulkCreated = "catalog.products.bulk_created"
	SubjectProductCreated      = "catalog.product.created"
	SubjectProductDeleted      = "catalog.product.deleted"
	SubjectOrderStatusChanged  = "catalog.order.status_changed"
	SubjectUsersBulkCreated    = "users.bulk_created"
)

// Event is the envelope of every published message
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// ProductsBulkCreatedData is the payload of catalog.products.bulk_created
type ProductsBulkCreatedData struct {
	JobID      uuid.UUID   `json:"jobId"`
	CategoryID uuid.UUID   `json:"categoryId"`
	ProductIDs []uuid.UUID `json:"productIds"`
	Count      int         `json:"count"`
}

type ProductData struct {
	ProductID uuid.UUID `json:"productId"`
	SKU       string    `json:"sku,omitempty"`
	Name      string    `json:"name,omitempty"`
	Price     string    `json:"price,omitempty"`
	Status    string    `json:"status,omitempty"`
}

type UsersBulkCreatedData struct {
	JobID   uuid.UUID   `json:"jobId"`
	UserIDs []uuid.UUID `json:"userIds"`
	Count   int         `json:"count"`
}

type OrderStatusChangedData struct {
	OrderID        uuid.UUID `json:"orderId"`
	OrderNumber    string    `json:"orderNumber"`
	PreviousStatus string    `json:"previousStatus"`
	Status         string    `json:"status"`
}

// Publisher publishes events to JetStream. A nil *Publisher drops every event.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *logrus.Entry
}

// NewPublisher connects to NATS and makes sure the streams exist
func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	if logger == nil {
		logger = logrus.New()
	}
	log := logger.WithField("component", "events")

	nc, err := nats.Connect(natsURL,
		nats.Name("catalog-admin-service"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infof("Reconnected to NATS at %s", nc.ConnectedUrl())
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Warn("Disconnected from NATS")
			}
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	p := &Publisher{nc: nc, js: js, logger: log}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p.ensureStreams(ctx)

	return p, nil
}

func (p *Publisher) ensureStreams(ctx context.Context) {
	streams := []jetstream.StreamConfig{
		{Name: CatalogStream, Subjects: []string{"catalog.>"}},
		{Name: UserStream, Subjects: []string{"users.>"}},
	}
	for _, cfg := range streams {
		cfg.Retention = jetstream.LimitsPolicy
		cfg.MaxAge = 7 * 24 * time.Hour
		cfg.Storage = jetstream.FileStorage
		cfg.Replicas = 1
		if _, err := p.js.CreateOrUpdateStream(ctx, cfg); err != nil {
			p.logger.WithError(err).Warnf("Could not create %s stream", cfg.Name)
		}
	}
}

// Close drains the NATS connection
func (p *Publisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
	}
}

func (p *Publisher) PublishProductsBulkCreated(ctx context.Context, jobID, categoryID uuid.UUID, productIDs []uuid.UUID) error {
	return p.publish(ctx, SubjectProductsBulkCreated, ProductsBulkCreatedData{
		JobID:      jobID,
		CategoryID: categoryID,
		ProductIDs: productIDs,
		Count:      len(productIDs),
	})
}

func (p *Publisher) PublishProductCreated(ctx context.Context, product *models.Product) error {
	return p.publish(ctx, SubjectProductCreated, ProductData{
		ProductID: product.ID,
		SKU:       product.SKU,
		Name:      product.Name,
		Price:     product.Price.StringFixed(2),
		Status:    string(product.Status),
	})
}

func (p *Publisher) PublishProductDeleted(ctx context.Context, productID uuid.UUID) error {
	return p.publish(ctx, SubjectProductDeleted, ProductData{ProductID: productID})
}

func (p *Publisher) PublishUsersBulkCreated(ctx context.Context, jobID uuid.UUID, userIDs []uuid.UUID) error {
	return p.publish(ctx, SubjectUsersBulkCreated, UsersBulkCreatedData{
		JobID:   jobID,
		UserIDs: userIDs,
		Count:   len(userIDs),
	})
}

func (p *Publisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, previous models.OrderStatus) error {
	return p.publish(ctx, SubjectOrderStatusChanged, OrderStatusChangedData{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		PreviousStatus: string(previous),
		Status:         string(order.Status),
	})
}

func (p *Publisher) publish(ctx context.Context, subject string, data interface{}) error {
	if p == nil || p.js == nil {
		return nil
	}

	payload, err := NewEvent(subject, data)
	if err != nil {
		return err
	}

	ack, err := p.js.Publish(ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	p.logger.WithFields(logrus.Fields{
		"subject":  subject,
		"stream":   ack.Stream,
		"sequence": ack.Sequence,
	}).Debug("Published event")
	return nil
}

// NewEvent encodes data in the event envelope
func NewEvent(subject string, data interface{}) ([]byte, error) {
	event := Event{
		ID:        uuid.NewString(),
		Type:      subject,
		Source:    "catalog-admin-service",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s event: %w", subject, err)
	}
	return payload, nil
}
