package postgres

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-checkout-api/internal/domains/checkout/ports"
)

var _ ports.DurableStore = (*DurableStore)(nil)

// DurableStore persists the per-session checkout records in PostgreSQL, so a
// session survives process restarts.
type DurableStore struct {
	db *gorm.DB
}

// NewDurableStore wires a PostgreSQL-backed durable store. The caller owns the
// DB lifecycle.
func NewDurableStore(db *gorm.DB) *DurableStore {
	store := &DurableStore{db: db}
	if db != nil {
		if err := db.AutoMigrate(&sessionRecord{}); err != nil {
			log.Printf("postgres durable store migration failed: %v", err)
		}
	}
	return store
}

type sessionRecord struct {
	SessionID    string               `gorm:"primaryKey;column:session_id;size:128"`
	DraftID      string               `gorm:"column:draft_id"`
	Payment      *ports.PaymentRecord `gorm:"column:payment;serializer:json;type:jsonb"`
	CleanupAfter *time.Time           `gorm:"column:cleanup_after;index"`
	CreatedAt    time.Time            `gorm:"column:created_at"`
	UpdatedAt    time.Time            `gorm:"column:updated_at"`
}

func (sessionRecord) TableName() string { return "checkout_sessions" }

func (s *DurableStore) DraftID(ctx context.Context, sessionID string) (string, error) {
	record, err := s.load(ctx, sessionID)
	if err != nil || record == nil {
		return "", err
	}
	return record.DraftID, nil
}

func (s *DurableStore) SaveDraftID(ctx context.Context, sessionID, draftID string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	record := sessionRecord{SessionID: sessionID, DraftID: draftID}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"draft_id", "updated_at"}),
		}).
		Create(&record).Error
}

func (s *DurableStore) LastPayment(ctx context.Context, sessionID string) (*ports.PaymentRecord, error) {
	record, err := s.load(ctx, sessionID)
	if err != nil || record == nil {
		return nil, err
	}
	return record.Payment, nil
}

func (s *DurableStore) SavePayment(ctx context.Context, sessionID string, payment ports.PaymentRecord) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	record := sessionRecord{SessionID: sessionID, Payment: &payment}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payment", "updated_at"}),
		}).
		Create(&record).Error
}

func (s *DurableStore) ClearPayment(ctx context.Context, sessionID string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&sessionRecord{}).
		Where("session_id = ?", sessionID).
		Update("payment", nil).Error
}

func (s *DurableStore) CleanupAfter(ctx context.Context, sessionID string) (time.Time, error) {
	record, err := s.load(ctx, sessionID)
	if err != nil || record == nil || record.CleanupAfter == nil {
		return time.Time{}, err
	}
	return *record.CleanupAfter, nil
}

func (s *DurableStore) StampCleanupAfter(ctx context.Context, sessionID string, at time.Time) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	record := sessionRecord{SessionID: sessionID, CleanupAfter: &at}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"cleanup_after", "updated_at"}),
		}).
		Create(&record).Error
}

func (s *DurableStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&sessionRecord{}, "session_id = ?", sessionID).Error
}

func (s *DurableStore) ListExpired(ctx context.Context, now time.Time) ([]ports.DraftRef, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var records []sessionRecord
	if err := s.db.WithContext(ctx).
		Where("cleanup_after IS NOT NULL AND cleanup_after <= ?", now).
		Find(&records).Error; err != nil {
		return nil, err
	}
	refs := make([]ports.DraftRef, 0, len(records))
	for _, record := range records {
		refs = append(refs, ports.DraftRef{SessionID: record.SessionID, DraftID: record.DraftID})
	}
	return refs, nil
}

func (s *DurableStore) load(ctx context.Context, sessionID string) (*sessionRecord, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record sessionRecord
	if err := s.db.WithContext(ctx).First(&record, "session_id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (s *DurableStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres durable store not configured")
	}
	return nil
}
