package repository

import (
	"context"
	"errors"
	"time"

	"licenseplatform/services/activation-service/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BindingGorm struct {
	SerialNo        string    `gorm:"primaryKey;size:128"`
	MachineID       string    `gorm:"primaryKey;size:128"`
	ClientIPAddress string    `gorm:"size:64"`
	ClientOS        string    `gorm:"size:128"`
	ClientTime      string    `gorm:"size:64"`
	UpdateTime      time.Time `gorm:"not null"`
}

func (BindingGorm) TableName() string {
	return "activations"
}

// SerialGorm is the per-serial lock row. Every Bind for a serial takes a
// row lock on it before counting that serial's bindings.
type SerialGorm struct {
	SerialNo  string `gorm:"primaryKey;size:128"`
	CreatedAt time.Time
}

func (SerialGorm) TableName() string {
	return "activation_serials"
}

func toGormBinding(b domain.Binding) *BindingGorm {
	return &BindingGorm{
		SerialNo:        b.SerialNo,
		MachineID:       b.MachineID,
		ClientIPAddress: b.ClientAddress,
		ClientOS:        b.ClientOS,
		ClientTime:      b.ClientTime,
		UpdateTime:      b.LastUpdateTime.UTC(),
	}
}

func toDomainBinding(b *BindingGorm) domain.Binding {
	return domain.Binding{
		SerialNo:       b.SerialNo,
		MachineID:      b.MachineID,
		ClientAddress:  b.ClientIPAddress,
		ClientOS:       b.ClientOS,
		ClientTime:     b.ClientTime,
		LastUpdateTime: b.UpdateTime.UTC(),
	}
}

type BindingRepository struct {
	db *gorm.DB
}

func NewBindingRepository(db *gorm.DB) *BindingRepository {
	return &BindingRepository{db: db}
}

func (r *BindingRepository) ListBySerial(ctx context.Context, serialNo string) ([]domain.Binding, error) {
	var rows []BindingGorm
	err := r.db.WithContext(ctx).
		Where("serial_no = ?", serialNo).
		Order("machine_id asc").
		Find(&rows).Error
	if err != nil {
		return nil, &domain.StoreError{Op: "list bindings", Err: err}
	}

	bindings := make([]domain.Binding, 0, len(rows))
	for i := range rows {
		bindings = append(bindings, toDomainBinding(&rows[i]))
	}
	return bindings, nil
}

func (r *BindingRepository) Bind(ctx context.Context, b domain.Binding, limit int) (domain.BindResult, error) {
	var result domain.BindResult
	row := toGormBinding(b)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		serial := SerialGorm{SerialNo: b.SerialNo}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&serial).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("serial_no = ?", b.SerialNo).
			First(&serial).Error; err != nil {
			return err
		}

		updated := tx.Model(&BindingGorm{}).
			Where("serial_no = ? AND machine_id = ?", b.SerialNo, b.MachineID).
			Updates(map[string]any{
				"client_ip_address": row.ClientIPAddress,
				"client_os":         row.ClientOS,
				"client_time":       row.ClientTime,
				"update_time":       row.UpdateTime,
			})
		if updated.Error != nil {
			return updated.Error
		}
		if updated.RowsAffected > 0 {
			result = domain.BindUpdated
			return nil
		}

		var bound int64
		if err := tx.Model(&BindingGorm{}).Where("serial_no = ?", b.SerialNo).Count(&bound).Error; err != nil {
			return err
		}
		if bound >= int64(limit) {
			return &domain.SlotsExhaustedError{Bound: int(bound)}
		}
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		result = domain.BindCreated
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrSlotsExhausted) {
			return 0, err
		}
		return 0, &domain.StoreError{Op: "bind", Err: err}
	}
	return result, nil
}
