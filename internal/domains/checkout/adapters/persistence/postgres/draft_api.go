package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
	"github.com/Apurer/go-checkout-api/internal/domains/checkout/ports"
)

var _ ports.DraftOrderAPI = (*DraftAPI)(nil)

// DraftAPI persists draft orders in PostgreSQL using GORM-mapped columns. It
// backs single-service deployments where no remote order service exists.
type DraftAPI struct {
	db *gorm.DB
}

// NewDraftAPI wires a PostgreSQL-backed draft store. The caller owns the DB
// lifecycle.
func NewDraftAPI(db *gorm.DB) *DraftAPI {
	api := &DraftAPI{db: db}
	if db != nil {
		if err := db.AutoMigrate(&draftRecord{}, &orderRecord{}); err != nil {
			log.Printf("postgres draft store migration failed: %v", err)
		}
	}
	return api
}

type draftRecord struct {
	ID               string                 `gorm:"primaryKey;column:id;size:64"`
	OrderNumber      string                 `gorm:"column:order_number;uniqueIndex"`
	Items            []domain.LineItem      `gorm:"column:items;serializer:json;type:jsonb"`
	SKUs             pq.StringArray         `gorm:"column:skus;type:text[]"`
	Currency         string                 `gorm:"column:currency;type:varchar(8)"`
	Subtotal         int64                  `gorm:"column:subtotal"`
	Tax              int64                  `gorm:"column:tax"`
	Shipping         int64                  `gorm:"column:shipping"`
	Total            int64                  `gorm:"column:total"`
	ShippingAddress  *domain.Address        `gorm:"column:shipping_address;serializer:json;type:jsonb"`
	BillingAddress   *domain.Address        `gorm:"column:billing_address;serializer:json;type:jsonb"`
	ShippingMethodID string                 `gorm:"column:shipping_method_id"`
	PaymentMethod    string                 `gorm:"column:payment_method;type:varchar(32)"`
	PaymentStatus    string                 `gorm:"column:payment_status;type:varchar(32);index"`
	PaymentDetails   *domain.PaymentDetails `gorm:"column:payment_details;serializer:json;type:jsonb"`
	Status           string                 `gorm:"column:status;type:varchar(32);index"`
	CreatedAt        time.Time              `gorm:"column:created_at"`
	UpdatedAt        time.Time              `gorm:"column:updated_at"`
}

func (draftRecord) TableName() string { return "draft_orders" }

type orderRecord struct {
	ID          string            `gorm:"primaryKey;column:id;size:64"`
	DraftID     string            `gorm:"column:draft_id;uniqueIndex"`
	OrderNumber string            `gorm:"column:order_number"`
	Items       []domain.LineItem `gorm:"column:items;serializer:json;type:jsonb"`
	Total       int64             `gorm:"column:total"`
	Currency    string            `gorm:"column:currency;type:varchar(8)"`
	PlacedAt    time.Time         `gorm:"column:placed_at"`
	CreatedAt   time.Time         `gorm:"column:created_at"`
}

func (orderRecord) TableName() string { return "orders" }

func newDraftRecord(d *domain.DraftOrder) draftRecord {
	skus := make(pq.StringArray, 0, len(d.Items))
	for _, item := range d.Items {
		skus = append(skus, item.SKU)
	}
	return draftRecord{
		ID:               d.ID,
		OrderNumber:      d.OrderNumber,
		Items:            append([]domain.LineItem(nil), d.Items...),
		SKUs:             skus,
		Currency:         d.Currency,
		Subtotal:         d.Subtotal,
		Tax:              d.Tax,
		Shipping:         d.Shipping,
		Total:            d.Total,
		ShippingAddress:  d.ShippingAddress,
		BillingAddress:   d.BillingAddress,
		ShippingMethodID: d.ShippingMethodID,
		PaymentMethod:    string(d.PaymentMethod),
		PaymentStatus:    string(d.PaymentStatus),
		PaymentDetails:   d.PaymentDetails,
		Status:           string(d.Status),
	}
}

func (r draftRecord) toDomain() *domain.DraftOrder {
	return &domain.DraftOrder{
		ID:               r.ID,
		OrderNumber:      r.OrderNumber,
		Items:            append([]domain.LineItem(nil), r.Items...),
		Currency:         r.Currency,
		Subtotal:         r.Subtotal,
		Tax:              r.Tax,
		Shipping:         r.Shipping,
		Total:            r.Total,
		ShippingAddress:  r.ShippingAddress,
		BillingAddress:   r.BillingAddress,
		ShippingMethodID: r.ShippingMethodID,
		PaymentMethod:    domain.PaymentMethod(r.PaymentMethod),
		PaymentStatus:    domain.PaymentStatus(r.PaymentStatus),
		PaymentDetails:   r.PaymentDetails,
		Status:           domain.LifecycleStatus(r.Status),
		UpdatedAt:        r.UpdatedAt,
	}
}

// Create inserts a new draft, assigning its identity.
func (a *DraftAPI) Create(ctx context.Context, draft *domain.DraftOrder) (*domain.DraftOrder, error) {
	if err := a.ensureDB(); err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, errors.New("draft is nil")
	}
	clone := draft.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	if clone.ID == "" {
		clone.ID = uuid.NewString()
	}
	record := newDraftRecord(clone)
	if err := a.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return a.Get(ctx, clone.ID)
}

// Get fetches a draft by identifier.
func (a *DraftAPI) Get(ctx context.Context, id string) (*domain.DraftOrder, error) {
	if err := a.ensureDB(); err != nil {
		return nil, err
	}
	var record draftRecord
	if err := a.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Update merges a partial into the stored draft. Finalized drafts refuse
// further updates.
func (a *DraftAPI) Update(ctx context.Context, id string, update domain.DraftUpdate) (*domain.DraftOrder, error) {
	if err := a.ensureDB(); err != nil {
		return nil, err
	}
	var updated *domain.DraftOrder
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record draftRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&record, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrNotFound
			}
			return err
		}
		if record.Status == string(domain.LifecycleFinalized) {
			return fmt.Errorf("%w: draft %s is finalized", ports.ErrConflict, id)
		}
		draft := record.toDomain()
		draft.Apply(update, time.Now())
		next := newDraftRecord(draft)
		next.CreatedAt = record.CreatedAt
		if err := tx.Save(&next).Error; err != nil {
			return err
		}
		updated = draft
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a draft by identifier.
func (a *DraftAPI) Delete(ctx context.Context, id string) error {
	if err := a.ensureDB(); err != nil {
		return err
	}
	result := a.db.WithContext(ctx).Delete(&draftRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// Convert finalizes a draft into an order at most once. The unique index on
// orders.draft_id makes a second conversion a conflict under any interleaving.
func (a *DraftAPI) Convert(ctx context.Context, id string) (*domain.FinalOrder, error) {
	if err := a.ensureDB(); err != nil {
		return nil, err
	}
	var order *domain.FinalOrder
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record draftRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&record, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrNotFound
			}
			return err
		}
		if record.Status == string(domain.LifecycleFinalized) {
			return fmt.Errorf("%w: draft %s already converted", ports.ErrConflict, id)
		}

		placed := orderRecord{
			ID:          uuid.NewString(),
			DraftID:     record.ID,
			OrderNumber: record.OrderNumber,
			Items:       record.Items,
			Total:       record.Total,
			Currency:    record.Currency,
			PlacedAt:    time.Now(),
		}
		if err := tx.Create(&placed).Error; err != nil {
			return err
		}
		if err := tx.Model(&draftRecord{}).
			Where("id = ?", record.ID).
			Update("status", string(domain.LifecycleFinalized)).Error; err != nil {
			return err
		}
		order = &domain.FinalOrder{
			ID:          placed.ID,
			OrderNumber: placed.OrderNumber,
			Items:       append([]domain.LineItem(nil), placed.Items...),
			Total:       placed.Total,
			Currency:    placed.Currency,
			PlacedAt:    placed.PlacedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (a *DraftAPI) ensureDB() error {
	if a == nil || a.db == nil {
		return errors.New("postgres draft store not configured")
	}
	return nil
}
