package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/polkiloo/procuremart/internal/domain/model"
)

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func forgeHMAC(s *HMACStrategy, payload string) string {
	token := payload + ":" + s.sign(payload)
	return base64.RawURLEncoding.EncodeToString([]byte(token))
}

func TestNewHMACStrategy_Options(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{})
	if string(strategy.secret) != "secret" {
		t.Fatalf("unexpected secret: %q", string(strategy.secret))
	}
	if strategy.ttl != defaultTTL {
		t.Fatalf("unexpected ttl: %s", strategy.ttl)
	}
	if strategy.now == nil {
		t.Fatal("expected default clock")
	}

	strategy = NewHMACStrategy("secret", Options{TTL: 2 * time.Hour})
	if strategy.ttl != 2*time.Hour {
		t.Fatalf("unexpected ttl: %s", strategy.ttl)
	}
}

func TestHMACStrategy_IssueAndParse(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	strategy := NewHMACStrategy("secret", Options{TTL: time.Minute, Now: fixedClock(now)})

	token, err := strategy.IssueToken(42, model.RoleSupplier)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	claims, err := strategy.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != 42 || claims.Role != model.RoleSupplier {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.ExpiresAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("unexpected expiry: %s", claims.ExpiresAt)
	}
}

func TestHMACStrategy_IssueInvalidRole(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{})
	if _, err := strategy.IssueToken(1, model.Role("ROOT")); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestHMACStrategy_ParseRejects(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	strategy := NewHMACStrategy("secret", Options{Now: fixedClock(now)})
	future := now.Add(time.Minute).Unix()

	valid, err := strategy.IssueToken(7, model.RoleClient)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	raw, _ := base64.RawURLEncoding.DecodeString(valid)
	parts := strings.Split(string(raw), ":")
	parts[3] = "tampered"
	tampered := base64.RawURLEncoding.EncodeToString([]byte(strings.Join(parts, ":")))

	other := NewHMACStrategy("other", Options{Now: fixedClock(now)})
	foreign, err := other.IssueToken(7, model.RoleClient)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	cases := map[string]string{
		"not base64":     "***",
		"too few parts":  base64.RawURLEncoding.EncodeToString([]byte("1:CLIENT:2")),
		"bad signature":  tampered,
		"foreign secret": foreign,
		"bad user":       forgeHMAC(strategy, fmt.Sprintf("abc:CLIENT:%d", future)),
		"bad role":       forgeHMAC(strategy, fmt.Sprintf("1:ROOT:%d", future)),
		"bad expiry":     forgeHMAC(strategy, "1:CLIENT:soon"),
		"expired":        forgeHMAC(strategy, fmt.Sprintf("1:CLIENT:%d", now.Unix())),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := strategy.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestHMACStrategy_Name(t *testing.T) {
	if name := NewHMACStrategy("secret", Options{}).Name(); name != "hmac" {
		t.Fatalf("unexpected name: %s", name)
	}
}
