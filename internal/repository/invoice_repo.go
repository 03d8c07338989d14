package repository

import (
	"context"

	"attendance/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvoiceRepository interface {
	// Create inserts the invoice together with its line items.
	Create(ctx context.Context, inv *model.Invoice) error
	FindByID(ctx context.Context, id int64) (*model.Invoice, error)
	FindByQuoteID(ctx context.Context, quoteID int64) (*model.Invoice, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Invoice, error)
	Update(ctx context.Context, inv *model.Invoice) error
	Delete(ctx context.Context, id int64) error
}

type invoiceRepo struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository { return &invoiceRepo{db: db} }

func (r *invoiceRepo) Create(ctx context.Context, inv *model.Invoice) error {
	return conn(ctx, r.db).Create(inv).Error
}

func orderedLines(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }

func (r *invoiceRepo) FindByID(ctx context.Context, id int64) (*model.Invoice, error) {
	var inv model.Invoice
	err := conn(ctx, r.db).Preload("LineItems", orderedLines).First(&inv, id).Error
	return &inv, err
}

func (r *invoiceRepo) FindByQuoteID(ctx context.Context, quoteID int64) (*model.Invoice, error) {
	var inv model.Invoice
	err := conn(ctx, r.db).Preload("LineItems", orderedLines).Where("quote_id = ?", quoteID).First(&inv).Error
	return &inv, err
}

func (r *invoiceRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Invoice, error) {
	var out []model.Invoice
	err := conn(ctx, r.db).Preload("LineItems", orderedLines).
		Where("client_id = ?", clientID).
		Order("invoice_date DESC").
		Find(&out).Error
	return out, err
}

func (r *invoiceRepo) Update(ctx context.Context, inv *model.Invoice) error {
	return conn(ctx, r.db).Omit(clause.Associations).Save(inv).Error
}

// Delete soft-deletes the invoice.
func (r *invoiceRepo) Delete(ctx context.Context, id int64) error {
	res := conn(ctx, r.db).Delete(&model.Invoice{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
