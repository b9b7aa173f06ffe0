package ecommerce

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erp/storesync/internal/domain/integration"
)

// wooTimeLayout is the format of the *_gmt date fields
const wooTimeLayout = "2006-01-02T15:04:05"

// ---------------------------------------------------------------------------
// Scalar wire types
// ---------------------------------------------------------------------------

// wooDecimal accepts monetary values sent either as JSON strings or numbers.
// An empty string or null decodes to zero.
type wooDecimal struct {
	decimal.Decimal
}

func (d *wooDecimal) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		d.Decimal = decimal.Zero
		return nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	d.Decimal = v
	return nil
}

// wooTime decodes the timezone-less date fields. The *_gmt variants are UTC.
type wooTime struct {
	time.Time
}

func (t *wooTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{wooTimeLayout, time.RFC3339} {
		if v, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = v.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

// ptr returns nil for the zero time
func (t wooTime) ptr() *time.Time {
	if t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

// ---------------------------------------------------------------------------
// Outgoing payloads
// ---------------------------------------------------------------------------

type wooIDRef struct {
	ID int64 `json:"id"`
}

type wooImageRef struct {
	ID  int64  `json:"id,omitempty"`
	Src string `json:"src,omitempty"`
}

type wooCategoryPayload struct {
	ID     int64  `json:"id,omitempty"`
	Name   string `json:"name"`
	Parent *int64 `json:"parent,omitempty"`
}

type wooProductPayload struct {
	ID            int64         `json:"id,omitempty"`
	Type          string        `json:"type,omitempty"`
	Name          *string       `json:"name,omitempty"`
	RegularPrice  *string       `json:"regular_price,omitempty"`
	Description   *string       `json:"description,omitempty"`
	Categories    []wooIDRef    `json:"categories,omitempty"`
	Images        []wooImageRef `json:"images,omitempty"`
	ManageStock   *bool         `json:"manage_stock,omitempty"`
	StockQuantity *int64        `json:"stock_quantity,omitempty"`
}

func categoryPayloadToWoo(p integration.CategoryPayload) wooCategoryPayload {
	return wooCategoryPayload{ID: p.RemoteID, Name: p.Name, Parent: p.ParentID}
}

func productPayloadToWoo(p integration.ProductPayload, create bool) wooProductPayload {
	out := wooProductPayload{
		ID:          p.RemoteID,
		Name:        p.Name,
		Description: p.Description,
	}
	if create {
		out.Type = "simple"
	}
	if p.Price != nil {
		price := p.Price.StringFixed(2)
		out.RegularPrice = &price
	}
	if p.CategoryIDs != nil {
		out.Categories = make([]wooIDRef, 0, len(p.CategoryIDs))
		for _, id := range p.CategoryIDs {
			out.Categories = append(out.Categories, wooIDRef{ID: id})
		}
	}
	if p.Image != nil {
		img := wooImageRef{Src: p.Image.Src}
		if p.Image.MediaID != nil {
			img = wooImageRef{ID: *p.Image.MediaID}
		}
		out.Images = []wooImageRef{img}
	}
	if p.StockQuantity != nil {
		qty := *p.StockQuantity
		if qty < 0 {
			qty = 0
		}
		manage := true
		out.ManageStock = &manage
		out.StockQuantity = &qty
	}
	return out
}

// ---------------------------------------------------------------------------
// Batch responses
// ---------------------------------------------------------------------------

type wooErrorData struct {
	Status     int   `json:"status"`
	ResourceID int64 `json:"resource_id"`
}

type wooError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Data    wooErrorData `json:"data"`
}

type wooBatchEntry struct {
	ID     int64         `json:"id"`
	Images []wooImageRef `json:"images"`
	Error  *wooError     `json:"error"`
}

func (e wooBatchEntry) toDomain() integration.BatchItemResult {
	r := integration.BatchItemResult{ID: e.ID}
	if len(e.Images) > 0 && e.Images[0].ID > 0 {
		id := e.Images[0].ID
		r.MediaID = &id
	}
	if e.Error != nil {
		r.ID = 0
		r.Error = &integration.BatchItemError{
			Code:       e.Error.Code,
			Message:    e.Error.Message,
			Status:     e.Error.Data.Status,
			ResourceID: e.Error.Data.ResourceID,
		}
	}
	return r
}

func batchResponseToDomain(resp *BatchResponse) *integration.BatchResult {
	out := &integration.BatchResult{
		Create: make([]integration.BatchItemResult, 0, len(resp.Create)),
		Update: make([]integration.BatchItemResult, 0, len(resp.Update)),
	}
	for _, e := range resp.Create {
		out.Create = append(out.Create, e.toDomain())
	}
	for _, e := range resp.Update {
		out.Update = append(out.Update, e.toDomain())
	}
	return out
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

type wooAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func (a wooAddress) toDomain() integration.Address {
	return integration.Address{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Company:   a.Company,
		Address1:  a.Address1,
		Address2:  a.Address2,
		City:      a.City,
		State:     a.State,
		Postcode:  a.Postcode,
		Country:   a.Country,
		Email:     a.Email,
		Phone:     a.Phone,
	}
}

type wooLineItem struct {
	ID        int64      `json:"id"`
	ProductID int64      `json:"product_id"`
	Name      string     `json:"name"`
	Quantity  int64      `json:"quantity"`
	Price     wooDecimal `json:"price"`
	Subtotal  wooDecimal `json:"subtotal"`
	Total     wooDecimal `json:"total"`
	TotalTax  wooDecimal `json:"total_tax"`
}

type wooMeta struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

type wooCouponData struct {
	DiscountType string      `json:"discount_type"`
	Amount       *wooDecimal `json:"amount"`
}

type wooCouponLine struct {
	Code          string      `json:"code"`
	Discount      wooDecimal  `json:"discount"`
	DiscountType  string      `json:"discount_type"`
	NominalAmount *wooDecimal `json:"nominal_amount"`
	MetaData      []wooMeta   `json:"meta_data"`
}

func (c wooCouponLine) toDomain() integration.CouponLine {
	out := integration.CouponLine{
		Code:         c.Code,
		Discount:     c.Discount.Decimal,
		DiscountType: c.DiscountType,
	}
	if c.NominalAmount != nil {
		v := c.NominalAmount.Decimal
		out.Amount = &v
	}
	for _, m := range c.MetaData {
		if m.Key != "coupon_data" {
			continue
		}
		var data wooCouponData
		if err := json.Unmarshal(m.Value, &data); err != nil {
			continue
		}
		if data.DiscountType != "" {
			out.DiscountType = data.DiscountType
		}
		if data.Amount != nil {
			v := data.Amount.Decimal
			out.Amount = &v
		}
	}
	return out
}

type wooRefund struct {
	ID     int64      `json:"id"`
	Reason string     `json:"reason"`
	Total  wooDecimal `json:"total"`
}

type wooOrder struct {
	ID              int64           `json:"id"`
	Number          string          `json:"number"`
	Status          string          `json:"status"`
	CustomerID      int64           `json:"customer_id"`
	CustomerNote    string          `json:"customer_note"`
	Billing         wooAddress      `json:"billing"`
	Shipping        wooAddress      `json:"shipping"`
	LineItems       []wooLineItem   `json:"line_items"`
	CouponLines     []wooCouponLine `json:"coupon_lines"`
	Refunds         []wooRefund     `json:"refunds"`
	Total           wooDecimal      `json:"total"`
	ShippingTotal   wooDecimal      `json:"shipping_total"`
	TotalTax        wooDecimal      `json:"total_tax"`
	DateCreated     wooTime         `json:"date_created"`
	DateCreatedGMT  wooTime         `json:"date_created_gmt"`
	DateModified    wooTime         `json:"date_modified"`
	DateModifiedGMT wooTime         `json:"date_modified_gmt"`
	DatePaid        wooTime         `json:"date_paid"`
	DatePaidGMT     wooTime         `json:"date_paid_gmt"`
}

// firstSet prefers the GMT value and falls back to the site-local one
func firstSet(gmt, local wooTime) wooTime {
	if !gmt.IsZero() {
		return gmt
	}
	return local
}

func (o wooOrder) toDomain() integration.RemoteOrder {
	number := o.Number
	if number == "" {
		number = strconv.FormatInt(o.ID, 10)
	}

	out := integration.RemoteOrder{
		ID:            o.ID,
		Number:        number,
		Status:        integration.OrderStatus(o.Status),
		CustomerID:    o.CustomerID,
		CustomerNote:  o.CustomerNote,
		Billing:       o.Billing.toDomain(),
		Shipping:      o.Shipping.toDomain(),
		Total:         o.Total.Decimal,
		ShippingTotal: o.ShippingTotal.Decimal,
		TotalTax:      o.TotalTax.Decimal,
		CreatedAt:     firstSet(o.DateCreatedGMT, o.DateCreated).Time,
		ModifiedAt:    firstSet(o.DateModifiedGMT, o.DateModified).ptr(),
		PaidAt:        firstSet(o.DatePaidGMT, o.DatePaid).ptr(),
	}

	out.LineItems = make([]integration.RemoteLineItem, 0, len(o.LineItems))
	for _, li := range o.LineItems {
		out.LineItems = append(out.LineItems, integration.RemoteLineItem{
			ID:        li.ID,
			ProductID: li.ProductID,
			Name:      li.Name,
			Quantity:  li.Quantity,
			Price:     li.Price.Decimal,
			Subtotal:  li.Subtotal.Decimal,
			Total:     li.Total.Decimal,
			TotalTax:  li.TotalTax.Decimal,
		})
	}
	for _, c := range o.CouponLines {
		out.CouponLines = append(out.CouponLines, c.toDomain())
	}
	for _, r := range o.Refunds {
		out.Refunds = append(out.Refunds, integration.Refund{ID: r.ID, Reason: r.Reason, Total: r.Total.Decimal})
	}
	return out
}

// ---------------------------------------------------------------------------
// Customers and tax rates
// ---------------------------------------------------------------------------

type wooCustomer struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Billing   wooAddress `json:"billing"`
	Shipping  wooAddress `json:"shipping"`
}

func (c wooCustomer) toDomain() *integration.RemoteCustomer {
	return &integration.RemoteCustomer{
		ID:        c.ID,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Billing:   c.Billing.toDomain(),
		Shipping:  c.Shipping.toDomain(),
	}
}

type wooTaxRate struct {
	ID       int64      `json:"id"`
	Country  string     `json:"country"`
	State    string     `json:"state"`
	Rate     wooDecimal `json:"rate"`
	Name     string     `json:"name"`
	Class    string     `json:"class"`
	Shipping bool       `json:"shipping"`
}

func (t wooTaxRate) toDomain() integration.TaxRate {
	return integration.TaxRate{
		ID:       t.ID,
		Country:  t.Country,
		State:    t.State,
		Rate:     t.Rate.Decimal,
		Name:     t.Name,
		Class:    t.Class,
		Shipping: t.Shipping,
	}
}
