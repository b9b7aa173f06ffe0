package partner

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/storesync/internal/domain/shared"
	"github.com/google/uuid"
)

var ErrClientNotFound = errors.New("partner: client not found")

// Client is a buyer. Email is the natural key used to match storefront customers.
type Client struct {
	shared.BaseEntity
	Code    int64
	Name    string
	Email   string
	Phone   string
	Address string
}

// NewClient creates a client; the code is assigned from the client sequence.
func NewClient(code int64, name, email string) *Client {
	return &Client{
		BaseEntity: shared.NewBaseEntity(),
		Code:       code,
		Name:       strings.TrimSpace(name),
		Email:      NormalizeEmail(email),
	}
}

// UpdateContact overwrites contact details; empty values keep the current ones.
func (c *Client) UpdateContact(name, phone, address string) {
	if v := strings.TrimSpace(name); v != "" {
		c.Name = v
	}
	if v := strings.TrimSpace(phone); v != "" {
		c.Phone = v
	}
	if v := strings.TrimSpace(address); v != "" {
		c.Address = v
	}
	c.Touch()
}

// NormalizeEmail lowercases and trims an address for matching
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ClientRepository defines client persistence
type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
	// FindByEmail returns ErrClientNotFound when no client carries the address
	FindByEmail(ctx context.Context, email string) (*Client, error)
	Save(ctx context.Context, client *Client) error
}
