package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"licenseplatform/services/activation-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

const bindingKeyPrefix = "activation:"

// bindScript runs server side so the membership check, the slot count and
// the write happen as one atomic step.
// Returns {code, bound}: code 1 when created, 0 when updated, -1 when the
// serial is full; bound is the machine count before the call.
var bindScript = redis.NewScript(`
local bound = redis.call('HLEN', KEYS[1])
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 1 then
	redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
	return {0, bound}
end
if bound >= tonumber(ARGV[3]) then
	return {-1, bound}
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
return {1, bound}
`)

// RedisBindingStore keeps one hash per serial, field = machine id,
// value = JSON encoded binding.
type RedisBindingStore struct {
	client *redis.Client
}

func NewRedisBindingStore(client *redis.Client) *RedisBindingStore {
	return &RedisBindingStore{client: client}
}

func bindingKey(serialNo string) string {
	return bindingKeyPrefix + serialNo
}

func (s *RedisBindingStore) ListBySerial(ctx context.Context, serialNo string) ([]domain.Binding, error) {
	fields, err := s.client.HGetAll(ctx, bindingKey(serialNo)).Result()
	if err != nil {
		return nil, &domain.StoreError{Op: "list bindings", Err: err}
	}

	bindings := make([]domain.Binding, 0, len(fields))
	for machineID, raw := range fields {
		var b domain.Binding
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			return nil, &domain.StoreError{
				Op:  "list bindings",
				Err: fmt.Errorf("decode binding %s/%s: %w", serialNo, machineID, err),
			}
		}
		bindings = append(bindings, b)
	}
	sort.Slice(bindings, func(i, j int) bool { return bindings[i].MachineID < bindings[j].MachineID })
	return bindings, nil
}

func (s *RedisBindingStore) Bind(ctx context.Context, b domain.Binding, limit int) (domain.BindResult, error) {
	b.LastUpdateTime = b.LastUpdateTime.UTC()
	payload, err := json.Marshal(b)
	if err != nil {
		return 0, &domain.StoreError{Op: "bind", Err: err}
	}

	reply, err := bindScript.Run(ctx, s.client, []string{bindingKey(b.SerialNo)}, b.MachineID, payload, limit).Int64Slice()
	if err != nil {
		return 0, &domain.StoreError{Op: "bind", Err: err}
	}
	if len(reply) != 2 {
		return 0, &domain.StoreError{Op: "bind", Err: errors.New("unexpected script result")}
	}

	switch reply[0] {
	case 1:
		return domain.BindCreated, nil
	case 0:
		return domain.BindUpdated, nil
	case -1:
		return 0, &domain.SlotsExhaustedError{Bound: int(reply[1])}
	default:
		return 0, &domain.StoreError{Op: "bind", Err: errors.New("unexpected script result")}
	}
}
