package booking

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateBookingNo BK + unix seconds + 6 random digits, e.g. BK1699248000123456.
// Uniqueness is backed by the unique index on booking_no.
func GenerateBookingNo() string {
	return fmt.Sprintf("BK%d%06d", time.Now().Unix(), rand.Intn(1000000))
}
