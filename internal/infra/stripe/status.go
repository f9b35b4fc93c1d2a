package stripe

import "strings"

// NormalizePaymentStatus folds Stripe checkout payment_status values into paid|unpaid|none.
func NormalizePaymentStatus(s string) string {
	switch strings.TrimSpace(s) {
	case "":
		return "none"
	case "paid", "no_payment_required":
		return "paid"
	case "unpaid":
		return "unpaid"
	default:
		return strings.TrimSpace(s)
	}
}
