package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"licenseplatform/services/activation-service/internal/domain"
)

const defaultStoreTimeout = 5 * time.Second

// AuditRecorder receives one event per activation request.
type AuditRecorder interface {
	Record(ctx context.Context, ev domain.AuditEvent)
}

// DecisionObserver is told about every decision once it is final.
type DecisionObserver interface {
	ObserveDecision(status domain.Status, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveDecision(domain.Status, time.Duration) {}

type Options struct {
	MaxDevices   int
	StoreTimeout time.Duration
	Clock        func() time.Time
	Logger       *slog.Logger
	Observer     DecisionObserver
}

type ActivationUseCase struct {
	bindings     domain.BindingStore
	recorder     AuditRecorder
	maxDevices   int
	storeTimeout time.Duration
	now          func() time.Time
	logger       *slog.Logger
	observer     DecisionObserver
}

func NewActivationUseCase(bs domain.BindingStore, rec AuditRecorder, opts Options) *ActivationUseCase {
	uc := &ActivationUseCase{
		bindings:     bs,
		recorder:     rec,
		maxDevices:   opts.MaxDevices,
		storeTimeout: opts.StoreTimeout,
		now:          opts.Clock,
		logger:       opts.Logger,
		observer:     opts.Observer,
	}
	if uc.maxDevices <= 0 {
		uc.maxDevices = domain.MaxDevices
	}
	if uc.storeTimeout <= 0 {
		uc.storeTimeout = defaultStoreTimeout
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	if uc.logger == nil {
		uc.logger = slog.Default()
	}
	if uc.observer == nil {
		uc.observer = nopObserver{}
	}
	return uc
}

// Activate decides whether req's machine may hold req's serial and always
// returns a Decision. The audit entry is written before Activate returns.
func (uc *ActivationUseCase) Activate(ctx context.Context, req domain.Request) (dec domain.Decision) {
	start := time.Now()
	now := uc.now().UTC()
	var event domain.AuditEvent

	defer func() {
		if r := recover(); r != nil {
			uc.logger.Error("activation panicked",
				"serial_no", req.SerialNo,
				"machine_id", req.MachineID,
				"panic", r,
			)
			dec, event = uc.fail(req, now, fmt.Errorf("internal error: %v", r))
		}
		uc.report(ctx, req, event, dec.Status, time.Since(start))
	}()

	dec, event = uc.resolve(ctx, req, now)

	uc.logger.Info("activation decided",
		"serial_no", req.SerialNo,
		"machine_id", req.MachineID,
		"status", int(dec.Status),
		"outcome", dec.Status.String(),
		"request_id", req.RequestID,
	)
	return dec
}

// report hands the outcome to the recorder and the observer. A panic in
// either is logged and does not change the decision.
func (uc *ActivationUseCase) report(ctx context.Context, req domain.Request, event domain.AuditEvent, status domain.Status, elapsed time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			uc.logger.Error("activation reporting panicked",
				"serial_no", req.SerialNo,
				"machine_id", req.MachineID,
				"request_id", req.RequestID,
				"panic", r,
			)
		}
	}()
	uc.recorder.Record(ctx, event)
	uc.observer.ObserveDecision(status, elapsed)
}

func (uc *ActivationUseCase) resolve(ctx context.Context, req domain.Request, now time.Time) (domain.Decision, domain.AuditEvent) {
	if err := req.Validate(); err != nil {
		return uc.fail(req, now, err)
	}

	bindings, err := uc.listBindings(ctx, req.SerialNo)
	if err != nil {
		return uc.fail(req, now, err)
	}

	// A serial already holding more than maxDevices is treated as full.
	if !domain.HoldsSerial(bindings, req.MachineID) && len(bindings) >= uc.maxDevices {
		return conflict(req, now, len(bindings))
	}

	result, err := uc.bind(ctx, domain.Binding{
		SerialNo:       req.SerialNo,
		MachineID:      req.MachineID,
		ClientAddress:  req.ClientAddress,
		ClientOS:       req.OSName,
		ClientTime:     req.ClientTime,
		LastUpdateTime: now,
	})
	switch {
	case errors.Is(err, domain.ErrSlotsExhausted):
		// Another machine took the last slot after our read.
		var full *domain.SlotsExhaustedError
		bound := 0
		if errors.As(err, &full) {
			bound = full.Bound
		}
		return conflict(req, now, bound)
	case err != nil:
		return uc.fail(req, now, err)
	}

	dec := domain.Decision{
		SerialNo:       req.SerialNo,
		MachineID:      req.MachineID,
		LastUpdateTime: now,
	}
	if result == domain.BindUpdated {
		dec.Status = domain.StatusUpdated
		return dec, domain.BindingUpdated{Request: req}
	}
	dec.Status = domain.StatusCreated
	return dec, domain.BindingAdded{Request: req}
}

func (uc *ActivationUseCase) listBindings(ctx context.Context, serialNo string) ([]domain.Binding, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()
	return uc.bindings.ListBySerial(ctx, serialNo)
}

func (uc *ActivationUseCase) bind(ctx context.Context, b domain.Binding) (domain.BindResult, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()
	return uc.bindings.Bind(ctx, b, uc.maxDevices)
}

// ListBindings returns the machines currently bound to serialNo.
func (uc *ActivationUseCase) ListBindings(ctx context.Context, serialNo string) ([]domain.Binding, error) {
	if serialNo == "" {
		return nil, domain.ErrValidation("serialNo", "serialNo is required")
	}
	return uc.listBindings(ctx, serialNo)
}

func (uc *ActivationUseCase) fail(req domain.Request, now time.Time, err error) (domain.Decision, domain.AuditEvent) {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		uc.logger.Warn("activation failed",
			"serial_no", req.SerialNo,
			"machine_id", req.MachineID,
			"request_id", req.RequestID,
			"error", err,
		)
	}
	dec := domain.Decision{
		Status:         domain.StatusFailed,
		SerialNo:       req.SerialNo,
		MachineID:      req.MachineID,
		LastUpdateTime: now,
		Description:    err.Error(),
	}
	return dec, domain.ActivationFailed{Request: req, Reason: err.Error()}
}

func conflict(req domain.Request, now time.Time, bound int) (domain.Decision, domain.AuditEvent) {
	dec := domain.Decision{
		Status:         domain.StatusConflict,
		SerialNo:       req.SerialNo,
		MachineID:      req.MachineID,
		LastUpdateTime: now,
		Description:    domain.ConflictMessage,
	}
	return dec, domain.BindingConflict{Request: req, BoundDevices: bound}
}
