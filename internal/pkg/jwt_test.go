package pkg

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	s := NewTokenSigner("secret")
	tok, err := s.GenerateAccess("u1", "mika@example.com")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := s.ParseAccess(tok)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "u1" || claims.Email != "mika@example.com" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestTokenExpired(t *testing.T) {
	s := &TokenSigner{secret: []byte("secret"), ttl: -time.Minute}
	tok, err := s.GenerateAccess("u1", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.ParseAccess(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
}

func TestTokenWithoutSubject(t *testing.T) {
	s := NewTokenSigner("secret")
	tok, err := s.GenerateAccess("", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.ParseAccess(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	tok, _ := NewTokenSigner("a").GenerateAccess("u1", "")
	if _, err := NewTokenSigner("b").ParseAccess(tok); err == nil {
		t.Fatal("accepted a token signed with another secret")
	}
}
