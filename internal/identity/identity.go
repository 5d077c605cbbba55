// Package identity owns user accounts and the bearer tokens that
// authenticate them.
package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"pizzadelivery/internal/store"
	"pizzadelivery/pkg/ident"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("missing or invalid token")
	ErrTokenExpired       = errors.New("token already expired")

	// ErrCascadeIncomplete reports that the user record was removed but
	// some dependent records survived the cascade.
	ErrCascadeIncomplete = errors.New("cascade delete incomplete")
)

// User is the persisted account record, keyed by email. Password holds the
// keyed hash, never the plaintext.
type User struct {
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Street string   `json:"street"`
	Hash   string   `json:"password"`
	Orders []string `json:"orders,omitempty"`
	Carts  []string `json:"shopingCart,omitempty"`
}

// Token is a bearer token record. Expires is epoch milliseconds.
type Token struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Expires int64  `json:"expires"`
}

// TokenTTL is the validity window from issuance or last extension.
const TokenTTL = time.Hour

// Service implements account and token operations over the record store.
type Service struct {
	store  *store.Store
	secret []byte

	now   func() time.Time
	newID func() string
}

func NewService(s *store.Store, hashingSecret string) *Service {
	return &Service{
		store:  s,
		secret: []byte(hashingSecret),
		now:    time.Now,
		newID:  func() string { return ident.New(ident.Length) },
	}
}

// Hash is the deterministic keyed password hash: HMAC-SHA256 over the
// service secret, hex encoded. Verification recomputes and compares.
func (s *Service) Hash(secret string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(secret))
	return hex.EncodeToString(mac.Sum(nil))
}

// Register creates an account. At most one account may exist per email.
func (s *Service) Register(name, email, street, password string) (User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	street = strings.TrimSpace(street)

	if name == "" || email == "" || street == "" || password == "" {
		return User{}, ErrInvalidInput
	}

	u := User{
		Name:   name,
		Email:  email,
		Street: street,
		Hash:   s.Hash(password),
	}

	if err := s.store.Create(store.Users, email, u); err != nil {
		if errors.Is(err, store.ErrExists) {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}

	return u, nil
}

func (s *Service) Get(email string) (User, error) {
	var u User
	if err := s.store.Read(store.Users, email, &u); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("read user: %w", err)
	}
	return u, nil
}

// ProfileUpdate carries the optional profile fields; empty strings mean
// "leave unchanged". At least one field must be set.
type ProfileUpdate struct {
	Name     string
	Street   string
	Password string
}

func (p ProfileUpdate) empty() bool {
	return p.Name == "" && p.Street == "" && p.Password == ""
}

// UpdateProfile applies the set fields under the user's record lock.
func (s *Service) UpdateProfile(email string, upd ProfileUpdate) (User, error) {
	if email == "" || upd.empty() {
		return User{}, ErrInvalidInput
	}

	s.store.Lock(store.Users, email)
	defer s.store.Unlock(store.Users, email)

	u, err := s.Get(email)
	if err != nil {
		return User{}, err
	}

	if upd.Name != "" {
		u.Name = strings.TrimSpace(upd.Name)
	}
	if upd.Street != "" {
		u.Street = strings.TrimSpace(upd.Street)
	}
	if upd.Password != "" {
		u.Hash = s.Hash(upd.Password)
	}

	if err := s.store.Update(store.Users, email, u); err != nil {
		return User{}, fmt.Errorf("update user: %w", err)
	}

	return u, nil
}

// Delete removes the user record, then best-effort removes every dependent
// record: tokens bound to the email, and the orders and carts the user
// record references. Sub-deletion failures are collected; the user removal
// itself stands.
func (s *Service) Delete(email string) error {
	s.store.Lock(store.Users, email)
	u, err := s.Get(email)
	if err != nil {
		s.store.Unlock(store.Users, email)
		return err
	}

	err = s.store.Delete(store.Users, email)
	s.store.Unlock(store.Users, email)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	var failures []error

	// Tokens are keyed by their own id, so find the user's by scanning.
	tokenIDs, err := s.store.List(store.Tokens)
	if err != nil {
		failures = append(failures, err)
	}
	for _, id := range tokenIDs {
		var tok Token
		if err := s.store.Read(store.Tokens, id, &tok); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				failures = append(failures, err)
			}
			continue
		}
		if tok.Email != email {
			continue
		}
		if err := s.store.Delete(store.Tokens, id); err != nil && !errors.Is(err, store.ErrNotFound) {
			failures = append(failures, err)
		}
	}

	for _, id := range u.Orders {
		if err := s.store.Delete(store.Orders, id); err != nil && !errors.Is(err, store.ErrNotFound) {
			failures = append(failures, err)
		}
	}
	for _, id := range u.Carts {
		if err := s.store.Delete(store.Carts, id); err != nil && !errors.Is(err, store.ErrNotFound) {
			failures = append(failures, err)
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("%w: %w", ErrCascadeIncomplete, errors.Join(failures...))
	}
	return nil
}

// AttachCart appends a cart id to the user record.
func (s *Service) AttachCart(email, cartID string) error {
	return s.mutateUser(email, func(u *User) {
		u.Carts = append(u.Carts, cartID)
	})
}

// DetachCart removes a cart id from the user record.
func (s *Service) DetachCart(email, cartID string) error {
	return s.mutateUser(email, func(u *User) {
		u.Carts = remove(u.Carts, cartID)
	})
}

// AttachOrder appends an order id to the user record.
func (s *Service) AttachOrder(email, orderID string) error {
	return s.mutateUser(email, func(u *User) {
		u.Orders = append(u.Orders, orderID)
	})
}

func (s *Service) mutateUser(email string, mutate func(*User)) error {
	s.store.Lock(store.Users, email)
	defer s.store.Unlock(store.Users, email)

	u, err := s.Get(email)
	if err != nil {
		return err
	}

	mutate(&u)

	if err := s.store.Update(store.Users, email, u); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
