package domain

import (
	"strings"
	"time"
)

// Tracking token format: a fixed prefix followed by TrackingCodeLength symbols
// drawn from TrackingAlphabet. The alphabet leaves out 0 and O.
const (
	DefaultTrackingPrefix = "TRK-"
	TrackingAlphabet      = "123456789ABCDEFGHIJKLMNPQRSTUVWXYZ"
	TrackingCodeLength    = 5
)

// TrackingToken binds a human-readable token to an order.
type TrackingToken struct {
	CreatedAt time.Time
	Token     string
	OrderID   string
}

// IsTrackingCode reports whether code has the expected length and alphabet.
func IsTrackingCode(code string) bool {
	if len(code) != TrackingCodeLength {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(TrackingAlphabet, r) {
			return false
		}
	}
	return true
}
