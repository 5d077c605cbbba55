// Package cart persists shopping carts: per-user lists of (menu item,
// quantity) pairs awaiting conversion into an order.
package cart

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pizzadelivery/internal/catalog"
	"pizzadelivery/internal/identity"
	"pizzadelivery/internal/store"
	"pizzadelivery/pkg/ident"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("cart not found")
	ErrUnknownItem  = errors.New("unknown menu item")
)

// Line is one cart entry.
type Line struct {
	ItemID int `json:"id"`
	Count  int `json:"count"`
}

// Cart is the persisted record. Timestamp is epoch milliseconds at
// creation.
type Cart struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	List      []Line `json:"list"`
	Timestamp int64  `json:"timestamp"`
}

type Service struct {
	store *store.Store
	menu  *catalog.Catalog
	users *identity.Service

	now   func() time.Time
	newID func() string
}

func NewService(s *store.Store, menu *catalog.Catalog, users *identity.Service) *Service {
	return &Service{
		store: s,
		menu:  menu,
		users: users,
		now:   time.Now,
		newID: func() string { return ident.New(ident.Length) },
	}
}

// Create validates every line against the catalog, persists the cart and
// links it to the owning user. The whole request is rejected if any item id
// is off-menu.
func (s *Service) Create(email string, lines []Line) (Cart, error) {
	if email == "" {
		return Cart{}, ErrInvalidInput
	}
	if err := s.validateLines(lines); err != nil {
		return Cart{}, err
	}

	c := Cart{
		ID:        s.newID(),
		Email:     email,
		List:      lines,
		Timestamp: s.now().UnixMilli(),
	}

	if err := s.store.Create(store.Carts, c.ID, c); err != nil {
		return Cart{}, fmt.Errorf("create cart: %w", err)
	}

	if err := s.users.AttachCart(email, c.ID); err != nil {
		return Cart{}, fmt.Errorf("link cart to user: %w", err)
	}

	return c, nil
}

func (s *Service) Get(id string) (Cart, error) {
	var c Cart
	if err := s.store.Read(store.Carts, id, &c); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, fmt.Errorf("read cart: %w", err)
	}
	return c, nil
}

// Replace swaps the cart's whole line list for a new, re-validated one.
func (s *Service) Replace(id string, lines []Line) (Cart, error) {
	if err := s.validateLines(lines); err != nil {
		return Cart{}, err
	}

	s.store.Lock(store.Carts, id)
	defer s.store.Unlock(store.Carts, id)

	c, err := s.Get(id)
	if err != nil {
		return Cart{}, err
	}

	c.List = lines
	if err := s.store.Update(store.Carts, id, c); err != nil {
		return Cart{}, fmt.Errorf("update cart: %w", err)
	}

	return c, nil
}

// Delete removes the cart and best-effort detaches it from the owning
// user. Once the cart record is gone the deletion has succeeded; a failed
// detach is logged, not surfaced.
func (s *Service) Delete(id string) error {
	c, err := s.Get(id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(store.Carts, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete cart: %w", err)
	}

	if err := s.users.DetachCart(c.Email, id); err != nil {
		slog.Warn("cart deleted but not unlinked from user",
			slog.String("cart_id", id),
			slog.String("email", c.Email),
			slog.Any("err", err),
		)
	}
	return nil
}

func (s *Service) validateLines(lines []Line) error {
	if len(lines) == 0 {
		return ErrInvalidInput
	}

	ids := make([]int, 0, len(lines))
	distinct := make(map[int]struct{}, len(lines))
	for _, l := range lines {
		if l.Count <= 0 {
			return ErrInvalidInput
		}
		ids = append(ids, l.ItemID)
		distinct[l.ItemID] = struct{}{}
	}

	if missing := s.menu.Missing(ids); len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrUnknownItem, missing)
	}

	// The distinct matched items must cover every line; a cart repeating
	// one item id across lines is rejected like an off-menu id.
	if len(distinct) != len(lines) {
		return fmt.Errorf("%w: duplicate line items", ErrUnknownItem)
	}
	return nil
}
