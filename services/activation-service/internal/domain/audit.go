package domain

import "context"

// Operation is the persisted audit operation.
type Operation string

const (
	OperationAdd    Operation = "Add"
	OperationUpdate Operation = "Update"
)

// AuditEntry is one immutable line of a serial's activation log.
// Timestamp is unix milliseconds and discriminates entries within a serial.
type AuditEntry struct {
	SerialNo      string    `json:"serialNo"`
	Timestamp     int64     `json:"timestamp"`
	MachineID     string    `json:"machineId"`
	Operation     Operation `json:"operation"`
	Description   string    `json:"description"`
	ClientTime    string    `json:"clientTime"`
	ClientAddress string    `json:"clientAddress"`
	ClientOS      string    `json:"clientOs"`
	ClientMachine string    `json:"clientMachine"`
	ClientUser    string    `json:"clientUser"`
	RequestID     string    `json:"requestId"`
}

// AuditLog is the append-only store behind the audit recorder.
type AuditLog interface {
	// Append stores entry. Stores keyed by (serial, timestamp) return
	// ErrDuplicateAuditEntry when that key is already taken.
	Append(ctx context.Context, entry AuditEntry) error
}

// AuditEvent is what the resolver reports about one request. The concrete
// types are BindingAdded, BindingUpdated, BindingConflict and ActivationFailed.
type AuditEvent interface {
	Subject() Request
	auditEvent()
}

// BindingAdded reports a new machine bound to a serial.
type BindingAdded struct {
	Request Request
}

// BindingUpdated reports a machine re-registering against a serial it holds.
type BindingUpdated struct {
	Request Request
}

// BindingConflict reports a machine refused because the serial is full.
// BoundDevices is zero when the count is unknown.
type BindingConflict struct {
	Request      Request
	BoundDevices int
}

// ActivationFailed reports a request that could not be decided.
type ActivationFailed struct {
	Request Request
	Reason  string
}

func (e BindingAdded) Subject() Request     { return e.Request }
func (e BindingUpdated) Subject() Request   { return e.Request }
func (e BindingConflict) Subject() Request  { return e.Request }
func (e ActivationFailed) Subject() Request { return e.Request }

func (BindingAdded) auditEvent()     {}
func (BindingUpdated) auditEvent()   {}
func (BindingConflict) auditEvent()  {}
func (ActivationFailed) auditEvent() {}
