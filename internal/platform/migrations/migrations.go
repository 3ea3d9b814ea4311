package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&draftRecord{},
		&orderRecord{},
		&sessionRecord{},
		&addressRecord{},
	)
}

// Draft schema mirrors the checkout Postgres draft store.
type draftRecord struct {
	ID               string         `gorm:"primaryKey;column:id;size:64"`
	OrderNumber      string         `gorm:"column:order_number;uniqueIndex"`
	Items            string         `gorm:"column:items;type:jsonb"`
	SKUs             pq.StringArray `gorm:"column:skus;type:text[]"`
	Currency         string         `gorm:"column:currency;type:varchar(8)"`
	Subtotal         int64          `gorm:"column:subtotal"`
	Tax              int64          `gorm:"column:tax"`
	Shipping         int64          `gorm:"column:shipping"`
	Total            int64          `gorm:"column:total"`
	ShippingAddress  string         `gorm:"column:shipping_address;type:jsonb"`
	BillingAddress   string         `gorm:"column:billing_address;type:jsonb"`
	ShippingMethodID string         `gorm:"column:shipping_method_id"`
	PaymentMethod    string         `gorm:"column:payment_method;type:varchar(32)"`
	PaymentStatus    string         `gorm:"column:payment_status;type:varchar(32);index"`
	PaymentDetails   string         `gorm:"column:payment_details;type:jsonb"`
	Status           string         `gorm:"column:status;type:varchar(32);index"`
	CreatedAt        time.Time      `gorm:"column:created_at"`
	UpdatedAt        time.Time      `gorm:"column:updated_at"`
}

func (draftRecord) TableName() string { return "draft_orders" }

// Order schema mirrors the converted-order table.
type orderRecord struct {
	ID          string    `gorm:"primaryKey;column:id;size:64"`
	DraftID     string    `gorm:"column:draft_id;uniqueIndex"`
	OrderNumber string    `gorm:"column:order_number"`
	Items       string    `gorm:"column:items;type:jsonb"`
	Total       int64     `gorm:"column:total"`
	Currency    string    `gorm:"column:currency;type:varchar(8)"`
	PlacedAt    time.Time `gorm:"column:placed_at"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (orderRecord) TableName() string { return "orders" }

// Session schema mirrors the checkout durable store.
type sessionRecord struct {
	SessionID    string     `gorm:"primaryKey;column:session_id;size:128"`
	DraftID      string     `gorm:"column:draft_id"`
	Payment      string     `gorm:"column:payment;type:jsonb"`
	CleanupAfter *time.Time `gorm:"column:cleanup_after;index"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (sessionRecord) TableName() string { return "checkout_sessions" }

// Address schema mirrors the addressbook Postgres adapter.
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
