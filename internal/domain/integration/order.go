package integration

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the storefront status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusOnHold     OrderStatus = "on-hold"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
	OrderStatusFailed     OrderStatus = "failed"
)

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsCompleted reports whether the order has been fulfilled and paid
func (s OrderStatus) IsCompleted() bool {
	return s == OrderStatusCompleted
}

// Address is a billing or shipping address
type Address struct {
	FirstName string
	LastName  string
	Company   string
	Address1  string
	Address2  string
	City      string
	State     string
	Postcode  string
	Country   string
	Email     string
	Phone     string
}

// FullName joins first and last name
func (a Address) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// RemoteLineItem is one product line of a storefront order
type RemoteLineItem struct {
	ID        int64
	ProductID int64
	Name      string
	Quantity  int64
	Price     decimal.Decimal
	Subtotal  decimal.Decimal
	Total     decimal.Decimal
	TotalTax  decimal.Decimal
}

// CouponLine is a coupon applied to an order
type CouponLine struct {
	Code     string
	Discount decimal.Decimal
	// DiscountType and Amount come from the coupon_data metadata when present
	DiscountType string
	Amount       *decimal.Decimal
}

// Refund is a refund record attached to an order
type Refund struct {
	ID     int64
	Reason string
	Total  decimal.Decimal
}

// RemoteOrder is an order as reported by the storefront
type RemoteOrder struct {
	ID            int64
	Number        string
	Status        OrderStatus
	CustomerID    int64
	CustomerNote  string
	Billing       Address
	Shipping      Address
	LineItems     []RemoteLineItem
	CouponLines   []CouponLine
	Refunds       []Refund
	Total         decimal.Decimal
	ShippingTotal decimal.Decimal
	TotalTax      decimal.Decimal
	CreatedAt     time.Time
	ModifiedAt    *time.Time
	PaidAt        *time.Time
}

// ProductIDs returns the distinct remote product ids of the order lines
func (o *RemoteOrder) ProductIDs() []int64 {
	seen := make(map[int64]struct{}, len(o.LineItems))
	ids := make([]int64, 0, len(o.LineItems))
	for _, li := range o.LineItems {
		if _, ok := seen[li.ProductID]; ok {
			continue
		}
		seen[li.ProductID] = struct{}{}
		ids = append(ids, li.ProductID)
	}
	return ids
}

// Discount reads the first coupon line only. A percent coupon carrying its
// nominal rate yields that rate with percent set; the invoice derives the
// money amount from it. Any other coupon, including a percent coupon without
// a rate or one with no coupon metadata, yields the discounted amount as a
// fixed discount.
func (o *RemoteOrder) Discount() (value decimal.Decimal, percent bool) {
	if len(o.CouponLines) == 0 {
		return decimal.Zero, false
	}
	c := o.CouponLines[0]
	if c.DiscountType == "percent" && c.Amount != nil {
		return *c.Amount, true
	}
	return c.Discount, false
}

// DeliveryPlace formats the shipping address as "address, city, state"
func (o *RemoteOrder) DeliveryPlace() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{o.Shipping.Address1, o.Shipping.City, o.Shipping.State} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// RefundReason returns the reason of the first refund record
func (o *RemoteOrder) RefundReason() string {
	if len(o.Refunds) == 0 {
		return ""
	}
	return o.Refunds[0].Reason
}

// PaymentDate is when the order was paid, falling back to creation time
func (o *RemoteOrder) PaymentDate() time.Time {
	if o.PaidAt != nil {
		return *o.PaidAt
	}
	return o.CreatedAt
}

// RemoteCustomer is a storefront customer record
type RemoteCustomer struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
	Billing   Address
	Shipping  Address
}

// FullName joins first and last name, falling back to the billing name
func (c *RemoteCustomer) FullName() string {
	if name := strings.TrimSpace(c.FirstName + " " + c.LastName); name != "" {
		return name
	}
	return c.Billing.FullName()
}

// Location formats "city state country" from the billing address
func (c *RemoteCustomer) Location() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{c.Billing.City, c.Billing.State, c.Billing.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
