// Package postgres persists the address book in PostgreSQL using GORM.
package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/go-checkout-api/internal/domains/addressbook/domain"
	"github.com/Apurer/go-checkout-api/internal/domains/addressbook/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository stores saved addresses in PostgreSQL.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&addressRecord{})
	}
	return repo
}

type addressRecord struct {
	ID           int64     `gorm:"primaryKey;column:id;autoIncrement"`
	OwnerID      string    `gorm:"column:owner_id;index"`
	FirstName    string    `gorm:"column:first_name"`
	LastName     string    `gorm:"column:last_name"`
	Email        string    `gorm:"column:email"`
	Phone        string    `gorm:"column:phone"`
	AddressLine1 string    `gorm:"column:address_line1"`
	AddressLine2 string    `gorm:"column:address_line2"`
	City         string    `gorm:"column:city"`
	Region       string    `gorm:"column:region"`
	PostalCode   string    `gorm:"column:postal_code"`
	Country      string    `gorm:"column:country;type:varchar(8)"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (addressRecord) TableName() string { return "addresses" }

func (r *Repository) ensureDB() error {
	if r.db == nil {
		return errors.New("postgres address repository is not configured")
	}
	return nil
}

func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]domain.SavedAddress, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []addressRecord
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]domain.SavedAddress, 0, len(records))
	for i := range records {
		out = append(out, *toDomain(&records[i]))
	}
	return out, nil
}

func (r *Repository) Save(ctx context.Context, address *domain.SavedAddress) (*domain.SavedAddress, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if address == nil {
		return nil, errors.New("address is nil")
	}
	if err := address.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(address)
	if err := r.db.WithContext(ctx).Save(&record).Error; err != nil {
		return nil, err
	}
	return toDomain(&record), nil
}

func (r *Repository) Delete(ctx context.Context, ownerID string, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&addressRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func toRecord(a *domain.SavedAddress) addressRecord {
	return addressRecord{
		ID:           a.ID,
		OwnerID:      a.OwnerID,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Email:        a.Email,
		Phone:        a.Phone,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		Region:       a.Region,
		PostalCode:   a.PostalCode,
		Country:      a.Country,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func toDomain(r *addressRecord) *domain.SavedAddress {
	return &domain.SavedAddress{
		ID:           r.ID,
		OwnerID:      r.OwnerID,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		Phone:        r.Phone,
		AddressLine1: r.AddressLine1,
		AddressLine2: r.AddressLine2,
		City:         r.City,
		Region:       r.Region,
		PostalCode:   r.PostalCode,
		Country:      r.Country,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
