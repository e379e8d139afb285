package repository

import (
	"context"
	"strconv"

	"licenseplatform/services/activation-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

const auditStreamPrefix = "activation_log:"

// RedisAuditLog appends entries to one stream per serial. Redis assigns the
// stream ID and the entry timestamp travels as a field, so requests that
// finish out of order are all kept.
type RedisAuditLog struct {
	client *redis.Client
}

func NewRedisAuditLog(client *redis.Client) *RedisAuditLog {
	return &RedisAuditLog{client: client}
}

func (l *RedisAuditLog) Append(ctx context.Context, entry domain.AuditEntry) error {
	err := l.client.XAdd(ctx, &redis.XAddArgs{
		Stream: auditStreamPrefix + entry.SerialNo,
		ID:     "*",
		Values: map[string]any{
			"timestamp":        strconv.FormatInt(entry.Timestamp, 10),
			"machine_id":       entry.MachineID,
			"operation":        string(entry.Operation),
			"description":      entry.Description,
			"client_time":      entry.ClientTime,
			"client_ipaddress": entry.ClientAddress,
			"client_os":        entry.ClientOS,
			"client_machine":   entry.ClientMachine,
			"client_user":      entry.ClientUser,
			"request_id":       entry.RequestID,
		},
	}).Err()
	if err != nil {
		return &domain.StoreError{Op: "append audit entry", Err: err}
	}
	return nil
}
