// Package order converts a valid cart into an immutable priced order and
// drives the payment and receipt steps.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"pizzadelivery/internal/cart"
	"pizzadelivery/internal/catalog"
	"pizzadelivery/internal/identity"
	"pizzadelivery/internal/store"
	"pizzadelivery/pkg/ident"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("order not found")
	ErrUnknownCart  = errors.New("unknown or invalid cart")
	ErrUnknownUser  = errors.New("unknown user")

	// ErrFakeProduct reports a cart line whose item id is no longer on the
	// menu; stale or tampered carts must not turn into orders.
	ErrFakeProduct = errors.New("fake product id detected")

	// ErrPaymentFailed and ErrNotificationFailed surface collaborator
	// failures after the order record is already committed. The order is
	// not rolled back.
	ErrPaymentFailed      = errors.New("payment failed")
	ErrNotificationFailed = errors.New("receipt notification failed")
)

// Currency is the single currency the shop operates in.
const Currency = "usd"

// LineItem is a denormalized snapshot of a menu item at order time,
// insulating the order from later menu changes.
type LineItem struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

// Order is the persisted record. Price is the computed total in minor
// units; Timestamp is epoch milliseconds.
type Order struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	List      []LineItem `json:"list"`
	Timestamp int64      `json:"timestamp"`
	Price     int64      `json:"price"`
	Currency  string     `json:"currency"`
}

// Summary is an order with owner and line detail stripped, as returned by
// the history listing.
type Summary struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
	Price     int64  `json:"price"`
	Currency  string `json:"currency"`
}

// Charger settles an order total with the payment gateway.
type Charger interface {
	Charge(ctx context.Context, amount int64, currency, source string) error
}

// Mailer delivers the order receipt.
type Mailer interface {
	SendReceipt(ctx context.Context, to, subject, html string) error
}

type Service struct {
	store   *store.Store
	menu    *catalog.Catalog
	users   *identity.Service
	charger Charger
	mailer  Mailer

	// source is the charge source token handed to the gateway.
	source string

	now   func() time.Time
	newID func() string

	// historyConcurrency bounds the fan-out when hydrating a user's
	// order history.
	historyConcurrency int
}

func NewService(s *store.Store, menu *catalog.Catalog, users *identity.Service, charger Charger, mailer Mailer, source string) *Service {
	return &Service{
		store:              s,
		menu:               menu,
		users:              users,
		charger:            charger,
		mailer:             mailer,
		source:             source,
		now:                time.Now,
		newID:              func() string { return ident.New(ident.Length) },
		historyConcurrency: 8,
	}
}

// Place runs the full order workflow for a cart. Each step is checked
// before the next begins; once the order record is written it stays
// written, even if payment or the receipt fails afterwards.
func (s *Service) Place(ctx context.Context, cartID, requesterToken string) (Order, error) {
	if cartID == "" {
		return Order{}, ErrInvalidInput
	}

	// 1. Load the cart; a structurally broken record counts as unknown.
	var c cart.Cart
	if err := s.store.Read(store.Carts, cartID, &c); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Order{}, ErrUnknownCart
		}
		return Order{}, fmt.Errorf("read cart: %w", err)
	}
	if c.Email == "" || len(c.List) == 0 {
		return Order{}, ErrUnknownCart
	}

	// 2. Load the owning user.
	u, err := s.users.Get(c.Email)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return Order{}, ErrUnknownUser
		}
		return Order{}, err
	}

	// 3. The requester must hold a valid token for the cart's owner.
	if err := s.users.VerifyToken(requesterToken, c.Email); err != nil {
		return Order{}, err
	}

	// 4. Re-validate the cart against the menu: the number of distinct
	// matched items must equal the cart's line count. An off-menu id and
	// a duplicated line both fail here.
	matched := map[int]struct{}{}
	for _, l := range c.List {
		if _, ok := s.menu.Get(l.ItemID); ok {
			matched[l.ItemID] = struct{}{}
		}
	}
	if len(matched) != len(c.List) {
		return Order{}, ErrFakeProduct
	}

	// 5. Snapshot the lines and total them.
	lines := make([]LineItem, 0, len(c.List))
	var total int64
	for _, l := range c.List {
		item, _ := s.menu.Get(l.ItemID)
		lines = append(lines, LineItem{
			ID:          item.ID,
			Name:        item.Name,
			Price:       item.Price,
			Description: item.Description,
			Count:       l.Count,
		})
		total += item.Price * int64(l.Count)
	}

	// 6. Persist the order.
	o := Order{
		ID:        s.newID(),
		Email:     c.Email,
		List:      lines,
		Timestamp: s.now().UnixMilli(),
		Price:     total,
		Currency:  Currency,
	}
	if err := s.store.Create(store.Orders, o.ID, o); err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}

	// 7. Record it on the user.
	if err := s.users.AttachOrder(c.Email, o.ID); err != nil {
		return Order{}, fmt.Errorf("link order to user: %w", err)
	}

	// 8. Charge the gateway. The order stays committed on failure.
	if err := s.charger.Charge(ctx, total, Currency, s.source); err != nil {
		return o, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	// 9. Send the receipt. Order and charge stay committed on failure.
	to := fmt.Sprintf("%s <%s>", u.Name, u.Email)
	if err := s.mailer.SendReceipt(ctx, to, "Pizza-delivery receipt", receiptHTML(o)); err != nil {
		return o, fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}

	return o, nil
}

func (s *Service) Get(id string) (Order, error) {
	var o Order
	if err := s.store.Read(store.Orders, id, &o); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("read order: %w", err)
	}
	return o, nil
}

// History returns summaries of every order on the user's record. The
// order records are read concurrently with a bounded fan-out.
func (s *Service) History(ctx context.Context, email string) ([]Summary, error) {
	u, err := s.users.Get(email)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	summaries := make([]Summary, len(u.Orders))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(s.historyConcurrency)

	for idx, id := range u.Orders {
		idx, id := idx, id
		g.Go(func() error {
			o, err := s.Get(id)
			if err != nil {
				return fmt.Errorf("order %s: %w", id, err)
			}
			summaries[idx] = Summary{
				ID:        o.ID,
				Timestamp: o.Timestamp,
				Price:     o.Price,
				Currency:  o.Currency,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return summaries, nil
}

func receiptHTML(o Order) string {
	html := fmt.Sprintf("<h3>Receipt</h3><b>Price:</b> %d %s<br/><b>Ordered pizza:</b><ul>", o.Price, o.Currency)
	for _, l := range o.List {
		html += fmt.Sprintf("<li>%s x%d: %d %s</li>", l.Name, l.Count, l.Price*int64(l.Count), o.Currency)
	}
	return html + "</ul>"
}
