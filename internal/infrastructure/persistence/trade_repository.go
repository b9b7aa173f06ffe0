package persistence

import (
	"context"
	"errors"

	"github.com/erp/storesync/internal/domain/trade"
	"github.com/erp/storesync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindRemote returns every invoice mirroring a storefront order, headers only
func (r *GormInvoiceRepository) FindRemote(ctx context.Context) ([]trade.Invoice, error) {
	var rows []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("woocommerce_order_id IS NOT NULL").
		Order("woocommerce_order_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	invoices := make([]trade.Invoice, len(rows))
	for i := range rows {
		invoices[i] = *rows[i].ToDomain()
	}
	return invoices, nil
}

// FindByRemoteOrderID returns the invoice mirroring a storefront order, with its lines
func (r *GormInvoiceRepository) FindByRemoteOrderID(ctx context.Context, remoteOrderID int64) (*trade.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("woocommerce_order_id = ?", remoteOrderID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, trade.ErrInvoiceNotFound
		}
		return nil, err
	}
	invoice := model.ToDomain()
	lines, err := r.FindLineItems(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}
	invoice.LineItems = lines
	return invoice, nil
}

// Create inserts the invoice header and its line items
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *trade.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		header := &models.InvoiceModel{}
		header.FromDomain(invoice)
		if err := tx.Create(header).Error; err != nil {
			return err
		}
		if len(invoice.LineItems) == 0 {
			return nil
		}
		lines := make([]models.InvoiceLineItemModel, len(invoice.LineItems))
		for i := range invoice.LineItems {
			invoice.LineItems[i].InvoiceID = invoice.ID
			lines[i].FromDomain(&invoice.LineItems[i])
		}
		return tx.Create(&lines).Error
	})
}

// Update writes the header columns; line items are left alone
func (r *GormInvoiceRepository) Update(ctx context.Context, invoice *trade.Invoice) error {
	header := &models.InvoiceModel{}
	header.FromDomain(invoice)
	result := r.db.WithContext(ctx).Model(header).Select("*").Omit("id", "created_at").Updates(header)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return trade.ErrInvoiceNotFound
	}
	return nil
}

// FindLineItems returns the lines of an invoice in insertion order
func (r *GormInvoiceRepository) FindLineItems(ctx context.Context, invoiceID uuid.UUID) ([]trade.InvoiceLineItem, error) {
	var rows []models.InvoiceLineItemModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	lines := make([]trade.InvoiceLineItem, len(rows))
	for i := range rows {
		lines[i] = rows[i].ToDomain()
	}
	return lines, nil
}

// ApplyLineItemDiff deletes, updates and inserts lines in one transaction
func (r *GormInvoiceRepository) ApplyLineItemDiff(ctx context.Context, diff trade.LineItemDiff) error {
	if diff.IsEmpty() {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(diff.Delete) > 0 {
			if err := tx.Where("id IN ?", diff.Delete).Delete(&models.InvoiceLineItemModel{}).Error; err != nil {
				return err
			}
		}
		for i := range diff.Update {
			line := &models.InvoiceLineItemModel{}
			line.FromDomain(&diff.Update[i])
			if err := tx.Model(line).Select("*").Omit("id", "created_at").Updates(line).Error; err != nil {
				return err
			}
		}
		if len(diff.Insert) > 0 {
			lines := make([]models.InvoiceLineItemModel, len(diff.Insert))
			for i := range diff.Insert {
				lines[i].FromDomain(&diff.Insert[i])
			}
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ trade.InvoiceRepository = (*GormInvoiceRepository)(nil)

// GormInvoiceReturnRepository implements InvoiceReturnRepository using GORM
type GormInvoiceReturnRepository struct {
	db *gorm.DB
}

// NewGormInvoiceReturnRepository creates a new GormInvoiceReturnRepository
func NewGormInvoiceReturnRepository(db *gorm.DB) *GormInvoiceReturnRepository {
	return &GormInvoiceReturnRepository{db: db}
}

// Create inserts the return header and its lines
func (r *GormInvoiceReturnRepository) Create(ctx context.Context, ret *trade.InvoiceReturn) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		header := &models.InvoiceReturnModel{}
		header.FromDomain(ret)
		if err := tx.Create(header).Error; err != nil {
			return err
		}
		if len(ret.LineItems) == 0 {
			return nil
		}
		lines := make([]models.InvoiceReturnLineItemModel, len(ret.LineItems))
		for i := range ret.LineItems {
			ret.LineItems[i].ReturnID = ret.ID
			lines[i].FromDomain(&ret.LineItems[i])
		}
		return tx.Create(&lines).Error
	})
}

// FindByInvoice returns the returns recorded against an invoice, with their lines
func (r *GormInvoiceReturnRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]trade.InvoiceReturn, error) {
	var headers []models.InvoiceReturnModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("return_no ASC").
		Find(&headers).Error; err != nil {
		return nil, err
	}
	if len(headers) == 0 {
		return []trade.InvoiceReturn{}, nil
	}

	ids := make([]uuid.UUID, len(headers))
	for i := range headers {
		ids[i] = headers[i].ID
	}
	var lines []models.InvoiceReturnLineItemModel
	if err := r.db.WithContext(ctx).
		Where("return_id IN ?", ids).
		Order("created_at ASC, id ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	byReturn := make(map[uuid.UUID][]trade.InvoiceReturnLineItem, len(headers))
	for i := range lines {
		byReturn[lines[i].ReturnID] = append(byReturn[lines[i].ReturnID], lines[i].ToDomain())
	}

	returns := make([]trade.InvoiceReturn, len(headers))
	for i := range headers {
		returns[i] = *headers[i].ToDomain()
		returns[i].LineItems = byReturn[headers[i].ID]
	}
	return returns, nil
}

// Ensure GormInvoiceReturnRepository implements InvoiceReturnRepository
var _ trade.InvoiceReturnRepository = (*GormInvoiceReturnRepository)(nil)
