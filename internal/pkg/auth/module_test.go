package auth

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/polkiloo/procuremart/internal/config"
)

func TestNewPasswordHasher(t *testing.T) {
	hasher := newPasswordHasher()
	bcryptHasher, ok := hasher.(*BcryptHasher)
	if !ok {
		t.Fatalf("expected *BcryptHasher, got %T", hasher)
	}
	if bcryptHasher.cost != bcrypt.DefaultCost {
		t.Fatalf("unexpected cost: %d", bcryptHasher.cost)
	}
}

func TestNewTokenStrategy_HMAC(t *testing.T) {
	cfg := &config.Config{AuthSecret: "top-secret", AuthStrategy: "hmac", TokenTTL: time.Hour}
	strategy := newTokenStrategy(strategyParams{Config: cfg})
	hmacStrategy, ok := strategy.(*HMACStrategy)
	if !ok {
		t.Fatalf("expected *HMACStrategy, got %T", strategy)
	}
	if string(hmacStrategy.secret) != "top-secret" || hmacStrategy.ttl != time.Hour {
		t.Fatalf("unexpected strategy: %+v", hmacStrategy)
	}
}

func TestNewTokenStrategy_JWTDefault(t *testing.T) {
	cfg := &config.Config{AuthSecret: "top-secret"}
	strategy := newTokenStrategy(strategyParams{Config: cfg})
	jwtStrategy, ok := strategy.(*JWTStrategy)
	if !ok {
		t.Fatalf("expected *JWTStrategy, got %T", strategy)
	}
	if string(jwtStrategy.secret) != "top-secret" || jwtStrategy.ttl != defaultTTL {
		t.Fatalf("unexpected strategy: %+v", jwtStrategy)
	}
}
