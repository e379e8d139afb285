package audit_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"licenseplatform/services/activation-service/internal/application/audit"
	"licenseplatform/services/activation-service/internal/domain"
	"licenseplatform/services/activation-service/internal/infrastructure/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2024, 7, 11, 3, 4, 5, 678_000_000, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleRequest() domain.Request {
	return domain.Request{
		SerialNo:      "SN001",
		MachineID:     "MID1",
		ClientTime:    "2024/07/11 12:04:05",
		ClientAddress: "203.0.113.7",
		OSName:        "Windows",
		OSVersion:     "10",
		MachineName:   "OFFICE-PC",
		UserName:      "sato",
		RequestID:     "req-1",
	}
}

func TestNewEntry_Variants(t *testing.T) {
	t.Parallel()

	req := sampleRequest()
	tests := []struct {
		name     string
		event    domain.AuditEvent
		wantOp   domain.Operation
		wantDesc string
	}{
		{name: "added", event: domain.BindingAdded{Request: req}, wantOp: domain.OperationAdd},
		{name: "updated", event: domain.BindingUpdated{Request: req}, wantOp: domain.OperationUpdate},
		{
			name:     "conflict",
			event:    domain.BindingConflict{Request: req, BoundDevices: 2},
			wantOp:   domain.OperationAdd,
			wantDesc: domain.ConflictMessage,
		},
		{
			name:     "failure",
			event:    domain.ActivationFailed{Request: req, Reason: "bind: timeout"},
			wantOp:   domain.OperationAdd,
			wantDesc: "bind: timeout",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			entry := audit.NewEntry(tt.event, at)

			assert.Equal(t, tt.wantOp, entry.Operation)
			assert.Equal(t, tt.wantDesc, entry.Description)
			assert.Equal(t, at.UnixMilli(), entry.Timestamp)
			assert.Equal(t, "SN001", entry.SerialNo)
			assert.Equal(t, "MID1", entry.MachineID)
			assert.Equal(t, "Windows 10", entry.ClientOS)
			assert.Equal(t, "OFFICE-PC", entry.ClientMachine)
			assert.Equal(t, "sato", entry.ClientUser)
			assert.Equal(t, "203.0.113.7", entry.ClientAddress)
			assert.Equal(t, "req-1", entry.RequestID)
		})
	}
}

func TestRecorder_RetriesSameMillisecond(t *testing.T) {
	log := repository.NewMemoryAuditLog()
	rec := audit.NewRecorder(log,
		audit.WithClock(func() time.Time { return at }),
		audit.WithLogger(quietLogger()),
	)

	rec.Record(context.Background(), domain.BindingAdded{Request: sampleRequest()})
	rec.Record(context.Background(), domain.BindingUpdated{Request: sampleRequest()})

	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, entries[0].Timestamp+1, entries[1].Timestamp)
}

func TestRecorder_SurvivesCancelledContext(t *testing.T) {
	log := repository.NewMemoryAuditLog()
	rec := audit.NewRecorder(log, audit.WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Record(ctx, domain.ActivationFailed{Request: sampleRequest(), Reason: "context canceled"})

	assert.Len(t, log.Entries(), 1)
}

type failingLog struct{ calls int }

func (f *failingLog) Append(context.Context, domain.AuditEntry) error {
	f.calls++
	return errors.New("table missing")
}

type countingCounter struct{ n int }

func (c *countingCounter) Inc() { c.n++ }

func TestRecorder_SwallowsErrors(t *testing.T) {
	log := &failingLog{}
	failures := &countingCounter{}
	rec := audit.NewRecorder(log,
		audit.WithLogger(quietLogger()),
		audit.WithTimeout(time.Second),
		audit.WithFailureCounter(failures),
	)

	assert.NotPanics(t, func() {
		rec.Record(context.Background(), domain.BindingAdded{Request: sampleRequest()})
	})
	assert.Equal(t, 1, log.calls)
	assert.Equal(t, 1, failures.n)
}

func TestRecorder_IgnoresNilEvent(t *testing.T) {
	log := &failingLog{}
	rec := audit.NewRecorder(log, audit.WithLogger(quietLogger()))

	rec.Record(context.Background(), nil)

	assert.Zero(t, log.calls)
}

func TestRecorder_RedisKeepsLateEntries(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	log := repository.NewRedisAuditLog(client)
	failures := &countingCounter{}

	later := audit.NewRecorder(log, audit.WithClock(func() time.Time { return at.Add(5 * time.Millisecond) }),
		audit.WithLogger(quietLogger()), audit.WithFailureCounter(failures))
	earlier := audit.NewRecorder(log, audit.WithClock(func() time.Time { return at }),
		audit.WithLogger(quietLogger()), audit.WithFailureCounter(failures))

	second := sampleRequest()
	second.MachineID = "MID2"
	later.Record(context.Background(), domain.BindingAdded{Request: second})
	earlier.Record(context.Background(), domain.BindingConflict{Request: sampleRequest(), BoundDevices: 2})

	n, err := client.XLen(context.Background(), "activation_log:SN001").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Zero(t, failures.n)
}
