// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Remote identifiers are stored in woocommerce_* columns; a NULL value means the
// local row is not linked to the storefront.
//
// Structure:
// - base.go: BaseModel and the AutoMigrate registry
// - catalog.go: products, categories, subcategories
// - partner.go: clients
// - finance.go: accounts, transactions, invoice payments
// - trade.go: invoices, invoice returns and their line items
// - integration.go: sync ledger, sync settings, number sequences
package models
