package identity

import (
	"crypto/hmac"
	"errors"
	"fmt"

	"pizzadelivery/internal/store"
)

// IssueToken authenticates email+password and creates a fresh token with a
// one-hour expiry. A wrong email and a wrong password are indistinguishable
// to the caller.
func (s *Service) IssueToken(email, password string) (Token, error) {
	if email == "" || password == "" {
		return Token{}, ErrInvalidInput
	}

	u, err := s.Get(email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Token{}, ErrInvalidCredentials
		}
		return Token{}, err
	}

	if !hmac.Equal([]byte(s.Hash(password)), []byte(u.Hash)) {
		return Token{}, ErrInvalidCredentials
	}

	tok := Token{
		ID:      s.newID(),
		Email:   email,
		Expires: s.now().Add(TokenTTL).UnixMilli(),
	}

	if err := s.store.Create(store.Tokens, tok.ID, tok); err != nil {
		return Token{}, fmt.Errorf("create token: %w", err)
	}

	return tok, nil
}

// GetToken reads a token record; the requester must hold a valid token for
// the record's own email.
func (s *Service) GetToken(id, requesterToken string) (Token, error) {
	var tok Token
	if err := s.store.Read(store.Tokens, id, &tok); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Token{}, ErrNotFound
		}
		return Token{}, fmt.Errorf("read token: %w", err)
	}

	if err := s.VerifyToken(requesterToken, tok.Email); err != nil {
		return Token{}, err
	}

	return tok, nil
}

// VerifyToken reports whether tokenID names an unexpired token bound to
// email. Every authenticated operation calls this before touching data.
func (s *Service) VerifyToken(tokenID, email string) error {
	if tokenID == "" {
		return ErrInvalidToken
	}

	var tok Token
	if err := s.store.Read(store.Tokens, tokenID, &tok); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("read token: %w", err)
	}

	if tok.Email != email || tok.Expires <= s.now().UnixMilli() {
		return ErrInvalidToken
	}

	return nil
}

// ExtendToken resets the expiry to now+1h. Only the bound user may extend,
// and an already-expired token stays dead.
func (s *Service) ExtendToken(id, requesterToken string) (Token, error) {
	s.store.Lock(store.Tokens, id)
	defer s.store.Unlock(store.Tokens, id)

	var tok Token
	if err := s.store.Read(store.Tokens, id, &tok); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Token{}, ErrNotFound
		}
		return Token{}, fmt.Errorf("read token: %w", err)
	}

	if err := s.VerifyToken(requesterToken, tok.Email); err != nil {
		return Token{}, err
	}

	if tok.Expires <= s.now().UnixMilli() {
		return Token{}, ErrTokenExpired
	}

	tok.Expires = s.now().Add(TokenTTL).UnixMilli()
	if err := s.store.Update(store.Tokens, id, tok); err != nil {
		return Token{}, fmt.Errorf("update token: %w", err)
	}

	return tok, nil
}

// RevokeToken deletes a token. Only the bound user may revoke.
func (s *Service) RevokeToken(id, requesterToken string) error {
	var tok Token
	if err := s.store.Read(store.Tokens, id, &tok); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("read token: %w", err)
	}

	if err := s.VerifyToken(requesterToken, tok.Email); err != nil {
		return err
	}

	if err := s.store.Delete(store.Tokens, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("delete token: %w", err)
	}

	return nil
}
