package util

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateOrderNumber returns a human-readable order number such as
// ORD-20250114-7F3A9C21. The suffix comes from a random UUID, and the unique
// index on orders.order_number catches the rare collision.
func GenerateOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "ORD-" + now.UTC().Format("20060102") + "-" + suffix
}
