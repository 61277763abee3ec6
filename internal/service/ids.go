package service

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewOrderID returns "GC-<base36 unix millis>-<6 random base36 chars>".
func NewOrderID(now time.Time) string {
	ts := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	return "GC-" + ts + "-" + randomString(base36, 6)
}

// NewTrackingNumber returns "TRK" followed by nine digits.
func NewTrackingNumber() string {
	return "TRK" + randomString("0123456789", 9)
}

func randomString(alphabet string, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(b)
}
