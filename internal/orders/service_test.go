package orders

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aurelia-jewels/aurelia-backend/internal/cart"
	"github.com/aurelia-jewels/aurelia-backend/internal/catalog"
	"github.com/aurelia-jewels/aurelia-backend/pkg/config"
	"github.com/aurelia-jewels/aurelia-backend/pkg/enums"
	pkgerrors "github.com/aurelia-jewels/aurelia-backend/pkg/errors"
	"github.com/aurelia-jewels/aurelia-backend/pkg/kvstore"
	"github.com/aurelia-jewels/aurelia-backend/pkg/redis"
	"github.com/aurelia-jewels/aurelia-backend/pkg/remote"
	"github.com/aurelia-jewels/aurelia-backend/pkg/types"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

type stubRemote struct {
	collections map[string][]remote.Record
	failing     bool
	created     []remote.Record
	patched     []remote.Record
}

func (s *stubRemote) List(_ context.Context, collection string, _ url.Values) ([]remote.Record, error) {
	if s.failing {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "upstream down")
	}
	return s.collections[collection], nil
}

func (s *stubRemote) Create(_ context.Context, _ string, body any) (remote.Record, error) {
	if s.failing {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "upstream down")
	}
	record, _ := body.(remote.Record)
	s.created = append(s.created, record)
	return record, nil
}

func (s *stubRemote) Replace(_ context.Context, _, _ string, body any) (remote.Record, error) {
	record, _ := body.(remote.Record)
	return record, nil
}

func (s *stubRemote) Patch(_ context.Context, _, _ string, body any) (remote.Record, error) {
	if s.failing {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "upstream down")
	}
	record, _ := body.(remote.Record)
	s.patched = append(s.patched, record)
	return record, nil
}

func (s *stubRemote) Delete(_ context.Context, _, _ string) error {
	return nil
}

type stubIntents struct {
	values map[string]string
}

func newStubIntents() *stubIntents {
	return &stubIntents{values: map[string]string{}}
}

func (s *stubIntents) Set(_ context.Context, key string, value any, _ time.Duration) error {
	switch v := value.(type) {
	case []byte:
		s.values[key] = string(v)
	case string:
		s.values[key] = v
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		s.values[key] = string(raw)
	}
	return nil
}

func (s *stubIntents) Get(_ context.Context, key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (s *stubIntents) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func (s *stubIntents) PaymentIntentKey(paymentID string) string {
	return "test:payment:intent:" + paymentID
}

type testEnv struct {
	svc      Service
	cart     cart.Service
	store    kvstore.Store
	upstream *stubRemote
	intents  *stubIntents
	rand     float64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	upstream := &stubRemote{collections: map[string][]remote.Record{
		"ring": {
			{"id": "r1", "name": "Aurora Band", "price": 500.0, "offerPrice": 450.0},
			{"id": "r2", "name": "Halo Ring", "price": 900.0, "offerPrice": 790.0},
		},
	}}
	store := kvstore.NewMemory()

	catalogSvc, err := catalog.NewService(catalog.ServiceParams{
		Remote: upstream,
		Store:  store,
	})
	if err != nil {
		t.Fatalf("catalog.NewService: %v", err)
	}

	cartSvc, err := cart.NewService(cart.ServiceParams{Store: store, Catalog: catalogSvc})
	if err != nil {
		t.Fatalf("cart.NewService: %v", err)
	}

	env := &testEnv{
		cart:     cartSvc,
		store:    store,
		upstream: upstream,
		intents:  newStubIntents(),
	}
	svc, err := NewService(ServiceParams{
		Store:   store,
		Remote:  upstream,
		Intents: env.intents,
		Cart:    cartSvc,
		Payment: config.PaymentConfig{IntentTTL: 15 * time.Minute},
		Now:     func() time.Time { return testNow },
		Rand:    func() float64 { return env.rand },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	env.svc = svc
	return env
}

func testSession() types.UserSession {
	return types.UserSession{
		UserID: "u1",
		Name:   "Asha",
		Email:  "asha@example.com",
		Role:   enums.RoleUser,
	}
}

func fillCart(t *testing.T, env *testEnv, userID string) {
	t.Helper()
	if _, err := env.cart.AddItem(context.Background(), userID, "r1", 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
}

func TestPlaceCashOnDeliveryCreatesPendingOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sess := testSession()
	fillCart(t, env, sess.UserID)

	order, err := env.svc.Place(ctx, sess, PlaceInput{PaymentMethod: "cod"})
	if err != nil {
		t.Fatalf("Place: %v", err)
	}

	if order.Status != enums.OrderStatusPending {
		t.Errorf("expected pending, got %s", order.Status)
	}
	if !order.Total.Equal(decimal.NewFromInt(900)) {
		t.Errorf("expected total 900, got %s", order.Total)
	}
	if order.UserEmail != sess.Email {
		t.Errorf("expected order keyed to %s, got %s", sess.Email, order.UserEmail)
	}

	current, err := env.cart.Get(ctx, sess.UserID)
	if err != nil {
		t.Fatalf("Get cart: %v", err)
	}
	if len(current.Items) != 0 {
		t.Errorf("expected cart cleared, got %v", current.Items)
	}
}

func TestPlaceWithEmptyCartFails(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Place(context.Background(), testSession(), PlaceInput{PaymentMethod: "cod"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestPlaceCardWithoutPaymentFails(t *testing.T) {
	env := newTestEnv(t)
	sess := testSession()
	fillCart(t, env, sess.UserID)

	_, err := env.svc.Place(context.Background(), sess, PlaceInput{PaymentMethod: "card"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestInitiateAndConfirmPayment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sess := testSession()
	fillCart(t, env, sess.UserID)

	summary, err := env.svc.InitiatePayment(ctx, sess, PaymentInput{PaymentMethod: "card"})
	if err != nil {
		t.Fatalf("InitiatePayment: %v", err)
	}
	if summary.PaymentID == "" {
		t.Fatal("expected payment id")
	}
	if !summary.Amount.Equal(decimal.NewFromInt(900)) {
		t.Errorf("expected amount 900, got %s", summary.Amount)
	}

	order, err := env.svc.ConfirmPayment(ctx, sess, summary.PaymentID)
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if order.PaymentID != summary.PaymentID {
		t.Errorf("expected payment id on order, got %q", order.PaymentID)
	}
	if order.PaymentMethod != enums.PaymentMethodCard {
		t.Errorf("expected card, got %s", order.PaymentMethod)
	}

	// Intent is single use.
	_, err = env.svc.ConfirmPayment(ctx, sess, summary.PaymentID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Errorf("expected not found on replay, got %v", err)
	}
}

func TestConfirmPaymentRejectsOtherUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sess := testSession()
	fillCart(t, env, sess.UserID)

	summary, err := env.svc.InitiatePayment(ctx, sess, PaymentInput{PaymentMethod: "upi"})
	if err != nil {
		t.Fatalf("InitiatePayment: %v", err)
	}

	other := types.UserSession{UserID: "u2", Email: "mallory@example.com"}
	_, err = env.svc.ConfirmPayment(ctx, other, summary.PaymentID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestConfirmPaymentDeclineLeavesCartIntact(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sess := testSession()
	fillCart(t, env, sess.UserID)

	svc, err := NewService(ServiceParams{
		Store:   env.store,
		Remote:  env.upstream,
		Intents: env.intents,
		Cart:    env.cart,
		Payment: config.PaymentConfig{IntentTTL: time.Minute, DeclineRate: 1},
		Now:     func() time.Time { return testNow },
		Rand:    func() float64 { return 0.5 },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	summary, err := svc.InitiatePayment(ctx, sess, PaymentInput{PaymentMethod: "card"})
	if err != nil {
		t.Fatalf("InitiatePayment: %v", err)
	}

	_, err = svc.ConfirmPayment(ctx, sess, summary.PaymentID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePaymentDeclined {
		t.Fatalf("expected payment declined, got %v", err)
	}

	current, err := env.cart.Get(ctx, sess.UserID)
	if err != nil {
		t.Fatalf("Get cart: %v", err)
	}
	if len(current.Items) == 0 {
		t.Error("expected cart untouched after decline")
	}

	history, err := svc.ListForUser(ctx, sess)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected no order after decline, got %v", history)
	}
}

func TestInitiatePaymentRejectsEmptyCartAndCOD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sess := testSession()

	_, err := env.svc.InitiatePayment(ctx, sess, PaymentInput{PaymentMethod: "card"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Errorf("expected validation error for empty cart, got %v", err)
	}

	fillCart(t, env, sess.UserID)
	_, err = env.svc.InitiatePayment(ctx, sess, PaymentInput{PaymentMethod: "cod"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Errorf("expected validation error for cod, got %v", err)
	}
}

func TestPlaceSurvivesUpstreamOutage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sess := testSession()
	fillCart(t, env, sess.UserID)

	env.upstream.failing = true

	order, err := env.svc.Place(ctx, sess, PlaceInput{PaymentMethod: "cod"})
	if err != nil {
		t.Fatalf("Place: %v", err)
	}

	history, err := env.svc.ListForUser(ctx, sess)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(history) != 1 || history[0].ID != order.ID {
		t.Errorf("expected locally persisted order, got %v", history)
	}
}

func TestListForUserMergesLocalOverUpstream(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sess := testSession()

	env.upstream.collections["orders"] = []remote.Record{
		{
			"id":        "o1",
			"userEmail": sess.Email,
			"status":    "pending",
			"total":     450.0,
			"date":      "2026-07-01T10:00:00Z",
		},
		{
			"id":        "o2",
			"userEmail": sess.Email,
			"status":    "pending",
			"total":     790.0,
			"date":      "2026-07-15T10:00:00Z",
		},
	}

	override := types.Order{
		ID:        "o1",
		UserEmail: sess.Email,
		Status:    enums.OrderStatusShipped,
		Total:     decimal.NewFromInt(450),
		CreatedAt: time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := kvstore.SetJSON(ctx, env.store, kvstore.OrdersKey(sess.Email), []types.Order{override}); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	history, err := env.svc.ListForUser(ctx, sess)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(history))
	}
	if history[0].ID != "o2" {
		t.Errorf("expected most recent first, got %s", history[0].ID)
	}
	if history[1].Status != enums.OrderStatusShipped {
		t.Errorf("expected local override to win, got %s", history[1].Status)
	}
}

func TestListAllScansEveryLocalPartition(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := types.Order{ID: "oa", UserEmail: "a@example.com", Status: enums.OrderStatusPending, CreatedAt: testNow}
	b := types.Order{ID: "ob", UserEmail: "b@example.com", Status: enums.OrderStatusPending, CreatedAt: testNow.Add(time.Hour)}
	if err := kvstore.SetJSON(ctx, env.store, kvstore.OrdersKey(a.UserEmail), []types.Order{a}); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	if err := kvstore.SetJSON(ctx, env.store, kvstore.OrdersKey(b.UserEmail), []types.Order{b}); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	all, err := env.svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(all))
	}
	if all[0].ID != "ob" {
		t.Errorf("expected most recent first, got %s", all[0].ID)
	}
}

func TestUpdateStatusFollowsLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sess := testSession()
	fillCart(t, env, sess.UserID)

	order, err := env.svc.Place(ctx, sess, PlaceInput{PaymentMethod: "cod"})
	if err != nil {
		t.Fatalf("Place: %v", err)
	}

	updated, err := env.svc.UpdateStatus(ctx, order.ID, enums.OrderStatusProcessing)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != enums.OrderStatusProcessing {
		t.Errorf("expected processing, got %s", updated.Status)
	}

	// Skipping straight to delivered is not allowed from processing.
	_, err = env.svc.UpdateStatus(ctx, order.ID, enums.OrderStatusDelivered)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Errorf("expected state conflict, got %v", err)
	}
}

func TestUpdateStatusPersistsLocallyWhenUpstreamDown(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sess := testSession()
	fillCart(t, env, sess.UserID)

	order, err := env.svc.Place(ctx, sess, PlaceInput{PaymentMethod: "cod"})
	if err != nil {
		t.Fatalf("Place: %v", err)
	}

	env.upstream.failing = true

	if _, err := env.svc.UpdateStatus(ctx, order.ID, enums.OrderStatusProcessing); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	history, err := env.svc.ListForUser(ctx, sess)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if history[0].Status != enums.OrderStatusProcessing {
		t.Errorf("expected local override, got %s", history[0].Status)
	}
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.UpdateStatus(context.Background(), "missing", enums.OrderStatusProcessing)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestOperationsRequireSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Place(ctx, types.UserSession{}, PlaceInput{PaymentMethod: "cod"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Errorf("expected unauthorized, got %v", err)
	}

	_, err = env.svc.ListForUser(ctx, types.UserSession{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Errorf("expected unauthorized, got %v", err)
	}
}
