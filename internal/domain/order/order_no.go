package order

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateOrderNo ORD + unix seconds + 6 random digits.
func GenerateOrderNo() string {
	return GenerateOrderNoAt(time.Now(), rand.Intn(1000000))
}

// GenerateOrderNoAt is the deterministic form, used when replaying fixtures.
func GenerateOrderNoAt(at time.Time, seq int) string {
	return fmt.Sprintf("ORD%d%06d", at.Unix(), seq%1000000)
}
