package order

import "strings"

// Stage is the customer-facing progress of an order.
type Stage struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Rank  int    `json:"rank"`
}

var (
	stageProcessing = Stage{Key: "processing", Label: "Processing", Rank: 0}
	stagePending    = Stage{Key: "pending", Label: "Pending Payment", Rank: 0}
	stagePaid       = Stage{Key: "paid", Label: "Paid", Rank: 1}
	stageFulfilled  = Stage{Key: "fulfilled", Label: "Packed", Rank: 2}
	stageShipped    = Stage{Key: "shipped", Label: "Shipped", Rank: 3}
	stageDelivered  = Stage{Key: "delivered", Label: "Delivered", Rank: 4}
	stageCanceled   = Stage{Key: "canceled", Label: "Cancelled", Rank: -1}
)

// ResolveStage folds the three commerce status fields into one stage. The
// most advanced signal wins; cancellation overrides everything.
func ResolveStage(status, paymentStatus, fulfillmentStatus string) Stage {
	status = normalize(status)
	if status == "canceled" || status == "archived" {
		return stageCanceled
	}
	best := stageProcessing
	if status == "pending" || status == "requires_action" {
		best = stagePending
	}
	for _, candidate := range []Stage{paymentStage(paymentStatus), fulfillmentStage(fulfillmentStatus)} {
		if candidate.Rank > best.Rank {
			best = candidate
		}
	}
	if status == "completed" && best.Rank < stageDelivered.Rank && normalize(fulfillmentStatus) == "" {
		best = stageDelivered
	}
	return best
}

func paymentStage(status string) Stage {
	switch normalize(status) {
	case "captured", "partially_captured", "authorized", "partially_authorized":
		return stagePaid
	case "not_paid", "awaiting", "requires_action":
		return stagePending
	default:
		return stageProcessing
	}
}

func fulfillmentStage(status string) Stage {
	switch normalize(status) {
	case "fulfilled", "partially_fulfilled":
		return stageFulfilled
	case "shipped", "partially_shipped":
		return stageShipped
	case "delivered", "partially_delivered":
		return stageDelivered
	default:
		return stageProcessing
	}
}

// PaymentLabel is the display label of a commerce payment status.
func PaymentLabel(status string) string {
	switch normalize(status) {
	case "not_paid":
		return "Not Paid"
	case "awaiting":
		return "Awaiting Payment"
	case "authorized":
		return "Authorized"
	case "partially_authorized":
		return "Partially Authorized"
	case "captured":
		return "Paid"
	case "partially_captured":
		return "Partially Paid"
	case "partially_refunded":
		return "Partially Refunded"
	case "refunded":
		return "Refunded"
	case "canceled":
		return "Cancelled"
	case "requires_action":
		return "Action Required"
	default:
		return "Processing"
	}
}

// FulfillmentLabel is the display label of a commerce fulfillment status.
func FulfillmentLabel(status string) string {
	switch normalize(status) {
	case "not_fulfilled":
		return "Not Fulfilled"
	case "partially_fulfilled":
		return "Partially Packed"
	case "fulfilled":
		return "Packed"
	case "partially_shipped":
		return "Partially Shipped"
	case "shipped":
		return "Shipped"
	case "partially_delivered":
		return "Partially Delivered"
	case "delivered":
		return "Delivered"
	case "canceled":
		return "Cancelled"
	case "returned", "partially_returned":
		return "Returned"
	default:
		return "Processing"
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
