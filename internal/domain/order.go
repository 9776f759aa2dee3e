package domain

// OrderStatusPending is the only status from which a payment retry makes
// sense. The backend flags a pending order as expired after six hours;
// expired orders are no longer eligible for retry.
const OrderStatusPending = "pending"

// TrackedOrder is a read-only projection of an order fetched by its
// human-readable code (POLI-<n>). It lives only for the duration of one
// tracking query; nothing here is persisted.
type TrackedOrder struct {
	ID            int64              `json:"id"`
	OrderNumber   string             `json:"order_number"`
	Status        string             `json:"status"`
	StatusDisplay string             `json:"status_display"`
	Items         []OrderItem        `json:"items"`
	Total         Price              `json:"total"`
	IsExpired     bool               `json:"is_expired"`
	IsOwner       bool               `json:"is_owner"`
	Shipping      *OrderShippingInfo `json:"shipping,omitempty"`
}

type OrderItem struct {
	Name     string `json:"name"`
	Price    Price  `json:"price"`
	Quantity int    `json:"quantity"`
}

// OrderShippingInfo is present only when the requester owns the order.
type OrderShippingInfo struct {
	Courier        string `json:"courier,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	Address        string `json:"address,omitempty"`
	CustomerName   string `json:"customer_name,omitempty"`
	Date           string `json:"date,omitempty"`
}

// Subtotal is a display-only derivation; the backend's Total stays
// authoritative.
func (o *TrackedOrder) Subtotal() Price {
	var sum int64
	for _, item := range o.Items {
		sum += int64(item.Price) * int64(item.Quantity)
	}
	return Price(sum)
}

// ShippingCost is Total minus Subtotal when positive, else zero.
func (o *TrackedOrder) ShippingCost() Price {
	if diff := o.Total - o.Subtotal(); diff > 0 {
		return diff
	}
	return 0
}

// CanRetryPayment gates the payment-retry action: owner, still pending,
// not expired.
func (o *TrackedOrder) CanRetryPayment() bool {
	return o.IsOwner && o.Status == OrderStatusPending && !o.IsExpired
}
