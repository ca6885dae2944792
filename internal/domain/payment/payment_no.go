package payment

import (
	"strings"

	"github.com/google/uuid"
)

// GeneratePaymentNo PAY + 32 hex digits of a random UUID.
func GeneratePaymentNo() string {
	return "PAY" + compactUUID()
}

// GenerateRefundNo RF + 32 hex digits of a random UUID.
func GenerateRefundNo() string {
	return "RF" + compactUUID()
}

func compactUUID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}
