// Package audit turns activation outcomes into entries of the append-only
// activation log. Recording never fails from the caller's point of view.
package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"licenseplatform/services/activation-service/internal/domain"
)

const defaultTimeout = 3 * time.Second

// Counter is incremented once per entry that could not be written.
type Counter interface {
	Inc()
}

type Recorder struct {
	log      domain.AuditLog
	now      func() time.Time
	timeout  time.Duration
	logger   *slog.Logger
	failures Counter
}

type Option func(*Recorder)

// WithClock overrides the source of entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// WithTimeout bounds each append.
func WithTimeout(d time.Duration) Option {
	return func(r *Recorder) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) { r.logger = l }
}

func WithFailureCounter(c Counter) Option {
	return func(r *Recorder) { r.failures = c }
}

func NewRecorder(log domain.AuditLog, opts ...Option) *Recorder {
	r := &Recorder{
		log:     log,
		now:     time.Now,
		timeout: defaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends one entry for ev. The append outlives cancellation of ctx
// so a request that timed out is still logged.
func (r *Recorder) Record(ctx context.Context, ev domain.AuditEvent) {
	if ev == nil {
		return
	}
	entry := NewEntry(ev, r.now())

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	err := r.log.Append(ctx, entry)
	if errors.Is(err, domain.ErrDuplicateAuditEntry) {
		entry.Timestamp++
		err = r.log.Append(ctx, entry)
	}
	if err != nil {
		if r.failures != nil {
			r.failures.Inc()
		}
		r.logger.Error("audit append failed",
			"serial_no", entry.SerialNo,
			"machine_id", entry.MachineID,
			"operation", entry.Operation,
			"request_id", entry.RequestID,
			"error", err,
		)
		return
	}

	if c, ok := ev.(domain.BindingConflict); ok {
		attrs := []any{"serial_no", entry.SerialNo, "machine_id", entry.MachineID}
		// Zero when the store did not report the count.
		if c.BoundDevices > 0 {
			attrs = append(attrs, "bound_devices", c.BoundDevices)
		}
		r.logger.Info("activation refused", attrs...)
	}
}

// NewEntry maps an event onto the persisted entry shape. Conflicts and
// failures are stored as Add operations carrying a description.
func NewEntry(ev domain.AuditEvent, at time.Time) domain.AuditEntry {
	req := ev.Subject()
	entry := domain.AuditEntry{
		SerialNo:      req.SerialNo,
		Timestamp:     at.UTC().UnixMilli(),
		MachineID:     req.MachineID,
		Operation:     domain.OperationAdd,
		ClientTime:    req.ClientTime,
		ClientAddress: req.ClientAddress,
		ClientOS:      req.ClientOS(),
		ClientMachine: req.MachineName,
		ClientUser:    req.UserName,
		RequestID:     req.RequestID,
	}

	switch e := ev.(type) {
	case domain.BindingUpdated:
		entry.Operation = domain.OperationUpdate
	case domain.BindingConflict:
		entry.Description = domain.ConflictMessage
	case domain.ActivationFailed:
		entry.Description = e.Reason
	}
	return entry
}
