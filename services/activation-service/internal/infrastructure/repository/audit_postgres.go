package repository

import (
	"context"
	"errors"

	"licenseplatform/services/activation-service/internal/domain"

	"gorm.io/gorm"
)

type AuditLogGorm struct {
	SerialNo        string `gorm:"primaryKey;size:128"`
	Timestamp       int64  `gorm:"primaryKey;autoIncrement:false"`
	MachineID       string `gorm:"size:128;index"`
	Operation       string `gorm:"size:16;not null"`
	Description     string
	ClientTime      string `gorm:"size:64"`
	ClientIPAddress string `gorm:"size:64"`
	ClientOS        string `gorm:"size:128"`
	ClientMachine   string `gorm:"size:128"`
	ClientUser      string `gorm:"size:128"`
	RequestID       string `gorm:"size:64"`
}

func (AuditLogGorm) TableName() string {
	return "activation_logs"
}

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append inserts entry. The db must be opened with TranslateError so
// primary key collisions surface as gorm.ErrDuplicatedKey.
func (r *AuditRepository) Append(ctx context.Context, entry domain.AuditEntry) error {
	row := &AuditLogGorm{
		SerialNo:        entry.SerialNo,
		Timestamp:       entry.Timestamp,
		MachineID:       entry.MachineID,
		Operation:       string(entry.Operation),
		Description:     entry.Description,
		ClientTime:      entry.ClientTime,
		ClientIPAddress: entry.ClientAddress,
		ClientOS:        entry.ClientOS,
		ClientMachine:   entry.ClientMachine,
		ClientUser:      entry.ClientUser,
		RequestID:       entry.RequestID,
	}

	result := r.db.WithContext(ctx).Create(row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateAuditEntry
		}
		return &domain.StoreError{Op: "append audit entry", Err: result.Error}
	}
	return nil
}

// AutoMigrate creates the binding, lock and audit tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&BindingGorm{}, &SerialGorm{}, &AuditLogGorm{})
}
