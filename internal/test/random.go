package test

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomASCIIString returns an alphanumeric string of length in [minLen, maxLen].
func RandomASCIIString(minLen, maxLen int) string {
	if minLen <= 0 {
		minLen = 1
	}
	if maxLen < minLen {
		maxLen = minLen
	}
	length := minLen + randomIntn(maxLen-minLen+1)
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = alphanumeric[randomIntn(len(alphanumeric))]
	}
	return string(buf)
}

// RandomPaymentReference looks like a bank transfer reference, e.g. "REF-4821-a9XkQ2".
func RandomPaymentReference() string {
	return fmt.Sprintf("REF-%04d-%s", randomIntn(10000), RandomASCIIString(6, 6))
}

// RandomAmount returns a positive two-decimal amount below max.
func RandomAmount(max int64) decimal.Decimal {
	if max < 1 {
		max = 1
	}
	cents := 1 + randomIntn(int(max*100)-1)
	return decimal.New(int64(cents), -2)
}

func randomIntn(n int) int {
	if n <= 1 {
		return 0
	}
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Intn(n)
}
