package orders

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aurelia-jewels/aurelia-backend/internal/cart"
	"github.com/aurelia-jewels/aurelia-backend/pkg/config"
	"github.com/aurelia-jewels/aurelia-backend/pkg/enums"
	pkgerrors "github.com/aurelia-jewels/aurelia-backend/pkg/errors"
	"github.com/aurelia-jewels/aurelia-backend/pkg/kvstore"
	"github.com/aurelia-jewels/aurelia-backend/pkg/logger"
	"github.com/aurelia-jewels/aurelia-backend/pkg/metrics"
	"github.com/aurelia-jewels/aurelia-backend/pkg/redis"
	"github.com/aurelia-jewels/aurelia-backend/pkg/remote"
	"github.com/aurelia-jewels/aurelia-backend/pkg/types"
)

const ordersCollection = "orders"

// RemoteClient is the upstream surface orders needs.
type RemoteClient interface {
	List(ctx context.Context, collection string, query url.Values) ([]remote.Record, error)
	Create(ctx context.Context, collection string, body any) (remote.Record, error)
	Patch(ctx context.Context, collection, id string, body any) (remote.Record, error)
}

// IntentStore holds pending payment intents with a TTL. Satisfied by the
// redis client.
type IntentStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	PaymentIntentKey(paymentID string) string
}

// ServiceParams groups dependencies for the orders service.
type ServiceParams struct {
	Store   kvstore.Store
	Remote  RemoteClient
	Intents IntentStore
	Cart    cart.Service
	Payment config.PaymentConfig
	Logger  *logger.Logger
	Metrics *metrics.StorefrontMetrics
	Now     func() time.Time
	Rand    func() float64
}

// Service exposes checkout, payment simulation, and order management.
type Service interface {
	Place(ctx context.Context, sess types.UserSession, input PlaceInput) (types.Order, error)
	InitiatePayment(ctx context.Context, sess types.UserSession, input PaymentInput) (PaymentSummary, error)
	ConfirmPayment(ctx context.Context, sess types.UserSession, paymentID string) (types.Order, error)
	ListForUser(ctx context.Context, sess types.UserSession) ([]types.Order, error)

	ListAll(ctx context.Context) ([]types.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status enums.OrderStatus) (types.Order, error)
}

type service struct {
	store   kvstore.Store
	remote  RemoteClient
	intents IntentStore
	cart    cart.Service
	payment config.PaymentConfig
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
	now     func() time.Time
	rand    func() float64
}

// NewService builds an orders service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kv store is required")
	}
	if params.Remote == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "remote client is required")
	}
	if params.Intents == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "intent store is required")
	}
	if params.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart service is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	random := params.Rand
	if random == nil {
		random = rand.Float64
	}
	return &service{
		store:   params.Store,
		remote:  params.Remote,
		intents: params.Intents,
		cart:    params.Cart,
		payment: params.Payment,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     now,
		rand:    random,
	}, nil
}

// Place creates an order from the current cart. Cash on delivery settles
// immediately; upi and card must reference a confirmed payment intent.
func (s *service) Place(ctx context.Context, sess types.UserSession, input PlaceInput) (types.Order, error) {
	if err := requireSession(sess); err != nil {
		return types.Order{}, err
	}
	method, err := enums.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return types.Order{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}

	if method.RequiresProcessing() {
		if strings.TrimSpace(input.PaymentID) == "" {
			return types.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "payment must be initiated and confirmed first")
		}
		return s.ConfirmPayment(ctx, sess, input.PaymentID)
	}

	items, err := s.snapshotCart(ctx, sess)
	if err != nil {
		return types.Order{}, err
	}

	order := s.buildOrder(sess, items, method, "", input.ShippingAddress)
	if err := s.persistOrder(ctx, order); err != nil {
		return types.Order{}, err
	}
	if err := s.cart.Clear(ctx, sess.UserID); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "clearing cart after checkout failed")
	}
	s.metrics.IncPaymentOutcome(method.String(), "approved")
	return order, nil
}

// InitiatePayment snapshots the cart into a redis intent and simulates
// gateway processing. Abandoned intents simply expire.
func (s *service) InitiatePayment(ctx context.Context, sess types.UserSession, input PaymentInput) (PaymentSummary, error) {
	if err := requireSession(sess); err != nil {
		return PaymentSummary{}, err
	}
	method, err := enums.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return PaymentSummary{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}
	if !method.RequiresProcessing() {
		return PaymentSummary{}, pkgerrors.New(pkgerrors.CodeValidation, "cash on delivery needs no payment processing")
	}

	items, err := s.snapshotCart(ctx, sess)
	if err != nil {
		return PaymentSummary{}, err
	}

	intent := PaymentIntent{
		PaymentID:       uuid.NewString(),
		Method:          method,
		UserID:          sess.UserID,
		UserEmail:       sess.Email,
		UserName:        sess.Name,
		Items:           items,
		Amount:          itemsTotal(items),
		ShippingAddress: input.ShippingAddress,
		CreatedAt:       s.now(),
	}

	payload, err := json.Marshal(intent)
	if err != nil {
		return PaymentSummary{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding payment intent")
	}

	ttl := s.payment.IntentTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if err := s.intents.Set(ctx, s.intents.PaymentIntentKey(intent.PaymentID), payload, ttl); err != nil {
		return PaymentSummary{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing payment intent")
	}

	if err := s.simulateProcessing(ctx); err != nil {
		return PaymentSummary{}, err
	}

	return PaymentSummary{
		PaymentID: intent.PaymentID,
		Method:    intent.Method,
		Amount:    intent.Amount,
	}, nil
}

// ConfirmPayment consumes the intent and creates the order. The total is
// recomputed from the snapshot, never trusted from the client.
func (s *service) ConfirmPayment(ctx context.Context, sess types.UserSession, paymentID string) (types.Order, error) {
	if err := requireSession(sess); err != nil {
		return types.Order{}, err
	}
	if strings.TrimSpace(paymentID) == "" {
		return types.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "payment id is required")
	}

	key := s.intents.PaymentIntentKey(paymentID)
	raw, err := s.intents.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return types.Order{}, pkgerrors.New(pkgerrors.CodeNotFound, "payment intent not found or expired")
		}
		return types.Order{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading payment intent")
	}

	var intent PaymentIntent
	if err := json.Unmarshal([]byte(raw), &intent); err != nil {
		return types.Order{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding payment intent")
	}
	if intent.UserID != sess.UserID {
		return types.Order{}, pkgerrors.New(pkgerrors.CodeForbidden, "payment belongs to another account")
	}

	// One shot per intent: delete before deciding the outcome so a
	// declined payment cannot be replayed.
	if err := s.intents.Del(ctx, key); err != nil {
		return types.Order{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consuming payment intent")
	}

	if s.payment.DeclineRate > 0 && s.rand() < s.payment.DeclineRate {
		s.metrics.IncPaymentOutcome(intent.Method.String(), "declined")
		return types.Order{}, pkgerrors.New(pkgerrors.CodePaymentDeclined, "payment was declined, no charge was made")
	}

	order := s.buildOrder(sess, intent.Items, intent.Method, intent.PaymentID, intent.ShippingAddress)
	if err := s.persistOrder(ctx, order); err != nil {
		return types.Order{}, err
	}
	if err := s.cart.Clear(ctx, sess.UserID); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "clearing cart after checkout failed")
	}
	s.metrics.IncPaymentOutcome(intent.Method.String(), "approved")
	return order, nil
}

// ListForUser merges upstream history with the local fallback list,
// most recent first.
func (s *service) ListForUser(ctx context.Context, sess types.UserSession) ([]types.Order, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	var fetched []types.Order
	records, err := s.remote.List(ctx, ordersCollection, url.Values{"userEmail": []string{sess.Email}})
	if err != nil {
		s.noteFallback(ctx, "list", err)
	} else {
		for _, record := range records {
			fetched = append(fetched, types.NormalizeOrder(record))
		}
	}

	local, err := s.loadLocalOrders(ctx, sess.Email)
	if err != nil {
		return nil, err
	}

	merged := mergeOrders(fetched, local)
	sortOrders(merged)
	return merged, nil
}

// ListAll merges every upstream order with every local fallback list.
func (s *service) ListAll(ctx context.Context) ([]types.Order, error) {
	var fetched []types.Order
	records, err := s.remote.List(ctx, ordersCollection, nil)
	if err != nil {
		s.noteFallback(ctx, "list", err)
	} else {
		for _, record := range records {
			fetched = append(fetched, types.NormalizeOrder(record))
		}
	}

	keys, err := s.store.Keys(ctx, kvstore.OrdersPrefix())
	if err != nil {
		return nil, err
	}
	var local []types.Order
	for _, key := range keys {
		var list []types.Order
		if _, err := kvstore.GetJSON(ctx, s.store, key, &list); err != nil {
			return nil, err
		}
		local = append(local, list...)
	}

	merged := mergeOrders(fetched, local)
	sortOrders(merged)
	return merged, nil
}

// UpdateStatus applies a lifecycle transition. The local copy always
// records the override so the merge wins even when the upstream patch
// fails.
func (s *service) UpdateStatus(ctx context.Context, orderID string, status enums.OrderStatus) (types.Order, error) {
	if !status.IsValid() {
		return types.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	all, err := s.ListAll(ctx)
	if err != nil {
		return types.Order{}, err
	}

	var current *types.Order
	for i := range all {
		if all[i].ID == orderID {
			current = &all[i]
			break
		}
	}
	if current == nil {
		return types.Order{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	if !current.Status.CanTransitionTo(status) {
		return types.Order{}, pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").
			WithDetails(map[string]any{"from": current.Status, "to": status})
	}

	current.Status = status
	if err := s.upsertLocalOrder(ctx, *current); err != nil {
		return types.Order{}, err
	}
	if _, err := s.remote.Patch(ctx, ordersCollection, orderID, remote.Record{"status": status}); err != nil {
		s.noteFallback(ctx, "patch", err)
	}
	return *current, nil
}

func (s *service) snapshotCart(ctx context.Context, sess types.UserSession) ([]types.OrderItem, error) {
	current, err := s.cart.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if len(current.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	items := make([]types.OrderItem, 0, len(current.Items))
	for _, line := range current.Items {
		items = append(items, types.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Category:  line.Category,
			Price:     line.UnitPrice,
			Quantity:  line.Quantity,
			Image:     line.Image,
		})
	}
	return items, nil
}

func (s *service) buildOrder(sess types.UserSession, items []types.OrderItem, method enums.PaymentMethod, paymentID string, address *types.Address) types.Order {
	order := types.Order{
		ID:              uuid.NewString(),
		UserEmail:       sess.Email,
		UserName:        sess.Name,
		Items:           items,
		Status:          enums.OrderStatusPending,
		PaymentMethod:   method,
		PaymentID:       paymentID,
		ShippingAddress: address,
		CreatedAt:       s.now(),
	}
	order.Total = order.ItemsTotal()
	return order
}

// persistOrder mirrors upstream first and falls back to the local list.
// Both paths leave the order readable immediately.
func (s *service) persistOrder(ctx context.Context, order types.Order) error {
	if _, err := s.remote.Create(ctx, ordersCollection, upstreamOrder(order)); err != nil {
		s.noteFallback(ctx, "create", err)
	}
	return s.upsertLocalOrder(ctx, order)
}

func (s *service) loadLocalOrders(ctx context.Context, email string) ([]types.Order, error) {
	var list []types.Order
	if _, err := kvstore.GetJSON(ctx, s.store, kvstore.OrdersKey(email), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *service) upsertLocalOrder(ctx context.Context, order types.Order) error {
	list, err := s.loadLocalOrders(ctx, order.UserEmail)
	if err != nil {
		return err
	}
	replaced := false
	for i := range list {
		if list[i].ID == order.ID {
			list[i] = order
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, order)
	}
	return kvstore.SetJSON(ctx, s.store, kvstore.OrdersKey(order.UserEmail), list)
}

// simulateProcessing stands in for a gateway round trip.
func (s *service) simulateProcessing(ctx context.Context) error {
	delay := s.payment.ProcessingDelay
	if delay <= 0 {
		return nil
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return pkgerrors.Wrap(pkgerrors.CodeDependency, ctx.Err(), "payment processing interrupted")
	}
}

func (s *service) noteFallback(ctx context.Context, operation string, err error) {
	s.metrics.IncRemoteFallback(ordersCollection, operation)
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"collection": ordersCollection,
			"operation":  operation,
			"error":      err.Error(),
		})
		s.logg.Warn(ctx, "upstream unavailable, using local store")
	}
}

// mergeOrders de-duplicates by id with local records winning.
func mergeOrders(fetched, local []types.Order) []types.Order {
	byID := make(map[string]int, len(fetched))
	for i, o := range fetched {
		byID[o.ID] = i
	}
	for _, o := range local {
		if idx, ok := byID[o.ID]; ok {
			fetched[idx] = o
			continue
		}
		fetched = append(fetched, o)
	}
	if fetched == nil {
		fetched = []types.Order{}
	}
	return fetched
}

func sortOrders(orders []types.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

func itemsTotal(items []types.OrderItem) (total decimal.Decimal) {
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func requireSession(sess types.UserSession) error {
	if strings.TrimSpace(sess.UserID) == "" || strings.TrimSpace(sess.Email) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return nil
}

func upstreamOrder(order types.Order) remote.Record {
	record := remote.Record{
		"id":            order.ID,
		"userEmail":     order.UserEmail,
		"userName":      order.UserName,
		"items":         upstreamItems(order.Items),
		"total":         order.Total,
		"status":        order.Status,
		"paymentMethod": order.PaymentMethod,
		"date":          order.CreatedAt,
	}
	if order.PaymentID != "" {
		record["paymentId"] = order.PaymentID
	}
	if order.ShippingAddress != nil {
		record["shippingAddress"] = order.ShippingAddress
	}
	return record
}

func upstreamItems(items []types.OrderItem) []remote.Record {
	out := make([]remote.Record, 0, len(items))
	for _, item := range items {
		out = append(out, remote.Record{
			"id":       item.ProductID,
			"name":     item.Name,
			"category": item.Category,
			"price":    item.Price,
			"quantity": item.Quantity,
			"image":    item.Image,
		})
	}
	return out
}
