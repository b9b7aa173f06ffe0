package catalog

import (
	"strings"

	"github.com/erp/storesync/internal/domain/shared"
	"github.com/google/uuid"
)

// Category is a top-level product category
type Category struct {
	shared.BaseEntity
	Name     string
	Active   bool
	RemoteID *int64
}

// SubCategory belongs to a Category; products reference subcategories.
type SubCategory struct {
	shared.BaseEntity
	CategoryID uuid.UUID
	Name       string
	Active     bool
	RemoteID   *int64
}

// NewCategory creates an active, unmatched category
func NewCategory(name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	return &Category{BaseEntity: shared.NewBaseEntity(), Name: name, Active: true}, nil
}

// NewSubCategory creates an active, unmatched subcategory under parent
func NewSubCategory(parentID uuid.UUID, name string) (*SubCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Subcategory name cannot be empty")
	}
	if parentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARENT", "Subcategory requires a parent category")
	}
	return &SubCategory{BaseEntity: shared.NewBaseEntity(), CategoryID: parentID, Name: name, Active: true}, nil
}

// IsMatched reports whether the category is linked to a remote category
func (c *Category) IsMatched() bool { return c.RemoteID != nil }

// AssignRemoteID links the category to a remote category id
func (c *Category) AssignRemoteID(id int64) error {
	if id <= 0 {
		return shared.NewDomainError("INVALID_REMOTE_ID", "Remote category id must be positive")
	}
	c.RemoteID = &id
	c.Touch()
	return nil
}

// IsMatched reports whether the subcategory is linked to a remote category
func (s *SubCategory) IsMatched() bool { return s.RemoteID != nil }

// AssignRemoteID links the subcategory to a remote category id
func (s *SubCategory) AssignRemoteID(id int64) error {
	if id <= 0 {
		return shared.NewDomainError("INVALID_REMOTE_ID", "Remote category id must be positive")
	}
	s.RemoteID = &id
	s.Touch()
	return nil
}
