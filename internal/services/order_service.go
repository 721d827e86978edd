package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"catalog-admin-service/internal/models"
	"catalog-admin-service/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// OrderService lets admins inspect, create and progress orders
type OrderService struct {
	store     *repository.Store
	publisher EventPublisher
	logger    *logrus.Entry
	now       func() time.Time
}

// NewOrderService creates an OrderService. publisher may be nil.
func NewOrderService(store *repository.Store, publisher EventPublisher, logger *logrus.Logger) *OrderService {
	return &OrderService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithField("component", "order-service"),
		now:       time.Now,
	}
}

// Create places an order for a user. Prices are copied from the products at
// the time of ordering.
func (s *OrderService) Create(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, newValidationError("items", "at least one item is required")
	}

	user, err := s.store.Users.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newValidationError("userId", "user %s does not exist", req.UserID)
		}
		return nil, err
	}
	if req.ShippingAddressID != nil && !hasAddress(user, *req.ShippingAddressID) {
		return nil, newValidationError("shippingAddressId", "address %s does not belong to the user", *req.ShippingAddressID)
	}

	productIDs := make([]uuid.UUID, 0, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, newValidationError(fmt.Sprintf("items[%d].quantity", i), "quantity must be positive")
		}
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := lookupProducts(ctx, s.store, uniqueUUIDs(productIDs))
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, newValidationError("items", "%v", err)
		}
		return nil, err
	}

	shipping := decimal.Zero
	if req.ShippingCost != nil {
		if req.ShippingCost.IsNegative() {
			return nil, newValidationError("shippingCost", "shippingCost must not be negative")
		}
		shipping = *req.ShippingCost
	}

	order := &models.Order{
		OrderNumber:       s.orderNumber(),
		UserID:            user.ID,
		ShippingAddressID: req.ShippingAddressID,
		Status:            models.OrderStatusPlaced,
		Currency:          strings.ToUpper(strings.TrimSpace(req.Currency)),
		ShippingCost:      shipping,
		Notes:             strings.TrimSpace(req.Notes),
	}
	subtotal := decimal.Zero
	for i, item := range req.Items {
		p := products[item.ProductID]
		if p.Status != models.ProductStatusActive {
			return nil, newValidationError(fmt.Sprintf("items[%d].productId", i), "product %q is not active", p.SKU)
		}
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			SKU:         p.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   p.Price,
			TotalPrice:  lineTotal,
		})
	}
	order.Subtotal = subtotal
	order.Total = subtotal.Add(shipping)

	if err := s.store.Orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"order_id": order.ID, "order_number": order.OrderNumber}).Info("Order created")
	return s.Get(ctx, order.ID)
}

func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.store.Orders.GetByID(ctx, id)
	return order, mapNotFound(err, ErrOrderNotFound)
}

func (s *OrderService) List(ctx context.Context, filters models.OrderFilters, page models.Page) ([]models.Order, int64, error) {
	return s.store.Orders.List(ctx, filters, page)
}

// UpdateStatus moves an order along its lifecycle
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req models.UpdateOrderStatusRequest) (*models.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := order.Status
	if !models.CanTransitionOrderStatus(previous, req.Status) {
		return nil, &ValidationError{
			Code:    CodeInvalidStatusTransition,
			Field:   "status",
			Message: fmt.Sprintf("cannot change order status from %s to %s", previous, req.Status),
		}
	}

	if err := s.store.Orders.UpdateStatus(ctx, id, previous, req.Status, strings.TrimSpace(req.Notes)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ConflictError{Code: CodeInvalidStatusTransition, Message: "order status changed concurrently, reload and retry"}
		}
		return nil, err
	}

	order, err = s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"order_id": id, "from": previous, "to": order.Status}).Info("Order status changed")
	if s.publisher != nil {
		if err := s.publisher.PublishOrderStatusChanged(ctx, order, previous); err != nil {
			s.logger.WithError(err).Warn("Failed to publish order status event")
		}
	}
	return order, nil
}

// orderNumber formats ORD-YYYYMMDD-XXXXXX with a random suffix
func (s *OrderService) orderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", s.now().UTC().Format("20060102"), suffix)
}

func hasAddress(user *models.User, addressID uuid.UUID) bool {
	for _, a := range user.ShippingAddresses {
		if a.ID == addressID {
			return true
		}
	}
	return false
}
