package order

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pizzadelivery/internal/cart"
	"pizzadelivery/internal/catalog"
	"pizzadelivery/internal/identity"
	"pizzadelivery/internal/store"
)

type fakeCharger struct {
	err     error
	charges []int64
}

func (f *fakeCharger) Charge(ctx context.Context, amount int64, currency, source string) error {
	if f.err != nil {
		return f.err
	}
	f.charges = append(f.charges, amount)
	return nil
}

type fakeMailer struct {
	err  error
	sent []string
}

func (f *fakeMailer) SendReceipt(ctx context.Context, to, subject, html string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

type fixture struct {
	store   *store.Store
	users   *identity.Service
	carts   *cart.Service
	orders  *Service
	charger *fakeCharger
	mailer  *fakeMailer
	token   identity.Token
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := store.New(t.TempDir())
	require.NoError(t, err)

	menu := catalog.Default()
	users := identity.NewService(st, "test-secret")
	carts := cart.NewService(st, menu, users)
	charger := &fakeCharger{}
	mailer := &fakeMailer{}
	orders := NewService(st, menu, users, charger, mailer, "tok_visa")

	_, err = users.Register("Alice", "alice@example.com", "1 Main St", "pw123")
	require.NoError(t, err)
	tok, err := users.IssueToken("alice@example.com", "pw123")
	require.NoError(t, err)

	return &fixture{
		store: st, users: users, carts: carts,
		orders: orders, charger: charger, mailer: mailer, token: tok,
	}
}

func TestPlace(t *testing.T) {
	fx := newFixture(t)

	// MenuItem 1 is priced at 8; two of them total 16.
	c, err := fx.carts.Create("alice@example.com", []cart.Line{{ItemID: 1, Count: 2}})
	require.NoError(t, err)

	o, err := fx.orders.Place(context.Background(), c.ID, fx.token.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(16), o.Price)
	assert.Equal(t, "usd", o.Currency)
	require.Len(t, o.List, 1)
	assert.Equal(t, LineItem{ID: 1, Name: "3 Cheese", Price: 8,
		Description: "Like your cheese with a side of cheese? With extra cheese on that?", Count: 2}, o.List[0])

	u, err := fx.users.Get("alice@example.com")
	require.NoError(t, err)
	assert.Contains(t, u.Orders, o.ID)

	assert.Equal(t, []int64{16}, fx.charger.charges)
	assert.Equal(t, []string{"Alice <alice@example.com>"}, fx.mailer.sent)
}

func TestPlaceMultiLineTotal(t *testing.T) {
	fx := newFixture(t)

	c, err := fx.carts.Create("alice@example.com", []cart.Line{
		{ItemID: 0, Count: 1}, // 10
		{ItemID: 2, Count: 3}, // 36
	})
	require.NoError(t, err)

	o, err := fx.orders.Place(context.Background(), c.ID, fx.token.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(46), o.Price)
}

func TestPlaceFakeProduct(t *testing.T) {
	fx := newFixture(t)

	// Write a cart with an off-menu item directly; the cart service would
	// reject it up front, but a stale record must still be caught here.
	tampered := cart.Cart{
		ID:    "tampered000000000001",
		Email: "alice@example.com",
		List:  []cart.Line{{ItemID: 999, Count: 1}},
	}
	require.NoError(t, fx.store.Create(store.Carts, tampered.ID, tampered))

	_, err := fx.orders.Place(context.Background(), tampered.ID, fx.token.ID)
	require.ErrorIs(t, err, ErrFakeProduct)

	// No order record may exist and nothing was charged.
	ids, err := fx.store.List(store.Orders)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Empty(t, fx.charger.charges)
}

func TestPlaceDuplicateLineItems(t *testing.T) {
	fx := newFixture(t)

	// Two lines sharing one item id: only one distinct menu item matches,
	// which is fewer than the cart's line count.
	doubled := cart.Cart{
		ID:    "doubled0000000000001",
		Email: "alice@example.com",
		List: []cart.Line{
			{ItemID: 1, Count: 1},
			{ItemID: 1, Count: 2},
		},
	}
	require.NoError(t, fx.store.Create(store.Carts, doubled.ID, doubled))

	_, err := fx.orders.Place(context.Background(), doubled.ID, fx.token.ID)
	require.ErrorIs(t, err, ErrFakeProduct)

	ids, err := fx.store.List(store.Orders)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Empty(t, fx.charger.charges)
}

func TestPlaceUnknownCart(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.orders.Place(context.Background(), "aaaaaaaaaaaaaaaaaaaa", fx.token.ID)
	assert.ErrorIs(t, err, ErrUnknownCart)

	// A structurally broken cart record also counts as unknown.
	require.NoError(t, fx.store.Create(store.Carts, "broken00000000000001", map[string]any{"id": "broken00000000000001"}))
	_, err = fx.orders.Place(context.Background(), "broken00000000000001", fx.token.ID)
	assert.ErrorIs(t, err, ErrUnknownCart)
}

func TestPlaceUnknownUser(t *testing.T) {
	fx := newFixture(t)

	orphan := cart.Cart{
		ID:    "orphan00000000000001",
		Email: "ghost@example.com",
		List:  []cart.Line{{ItemID: 1, Count: 1}},
	}
	require.NoError(t, fx.store.Create(store.Carts, orphan.ID, orphan))

	_, err := fx.orders.Place(context.Background(), orphan.ID, fx.token.ID)
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestPlaceInvalidToken(t *testing.T) {
	fx := newFixture(t)

	c, err := fx.carts.Create("alice@example.com", []cart.Line{{ItemID: 1, Count: 1}})
	require.NoError(t, err)

	_, err = fx.orders.Place(context.Background(), c.ID, "aaaaaaaaaaaaaaaaaaaa")
	assert.ErrorIs(t, err, identity.ErrInvalidToken)

	ids, err := fx.store.List(store.Orders)
	require.NoError(t, err)
	assert.Empty(t, ids, "no order before the token check passes")
}

func TestPlacePaymentFailureKeepsOrder(t *testing.T) {
	fx := newFixture(t)
	fx.charger.err = errors.New("card declined")

	c, err := fx.carts.Create("alice@example.com", []cart.Line{{ItemID: 1, Count: 2}})
	require.NoError(t, err)

	o, err := fx.orders.Place(context.Background(), c.ID, fx.token.ID)
	require.ErrorIs(t, err, ErrPaymentFailed)

	// Documented behavior: the order record stays committed.
	stored, getErr := fx.orders.Get(o.ID)
	require.NoError(t, getErr)
	assert.Equal(t, int64(16), stored.Price)
	assert.Empty(t, fx.mailer.sent, "no receipt after a failed charge")
}

func TestPlaceNotificationFailureKeepsOrderAndCharge(t *testing.T) {
	fx := newFixture(t)
	fx.mailer.err = errors.New("mail bounced")

	c, err := fx.carts.Create("alice@example.com", []cart.Line{{ItemID: 1, Count: 2}})
	require.NoError(t, err)

	o, err := fx.orders.Place(context.Background(), c.ID, fx.token.ID)
	require.ErrorIs(t, err, ErrNotificationFailed)

	_, getErr := fx.orders.Get(o.ID)
	require.NoError(t, getErr)
	assert.Equal(t, []int64{16}, fx.charger.charges, "charge already committed")
}

func TestHistory(t *testing.T) {
	fx := newFixture(t)

	t.Run("empty", func(t *testing.T) {
		summaries, err := fx.orders.History(context.Background(), "alice@example.com")
		require.NoError(t, err)
		assert.Empty(t, summaries)
	})

	t.Run("summaries strip owner and lines", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			c, err := fx.carts.Create("alice@example.com", []cart.Line{{ItemID: 2, Count: 1}})
			require.NoError(t, err)
			_, err = fx.orders.Place(context.Background(), c.ID, fx.token.ID)
			require.NoError(t, err)
		}

		summaries, err := fx.orders.History(context.Background(), "alice@example.com")
		require.NoError(t, err)
		require.Len(t, summaries, 3)
		for _, s := range summaries {
			assert.Len(t, s.ID, 20)
			assert.Equal(t, int64(12), s.Price)
			assert.Equal(t, "usd", s.Currency)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := fx.orders.History(context.Background(), "ghost@example.com")
		assert.ErrorIs(t, err, ErrUnknownUser)
	})
}
