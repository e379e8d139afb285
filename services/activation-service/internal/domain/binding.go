package domain

import (
	"context"
	"time"
)

// MaxDevices is the number of machines that may hold a serial at once.
const MaxDevices = 2

// Binding records that a machine is currently activated against a serial.
type Binding struct {
	SerialNo       string    `json:"serialNo"`
	MachineID      string    `json:"machineId"`
	ClientAddress  string    `json:"clientAddress"`
	ClientOS       string    `json:"clientOs"`
	ClientTime     string    `json:"clientTime"`
	LastUpdateTime time.Time `json:"lastUpdateTime"`
}

// BindResult tells whether a conditional bind inserted a new row or
// overwrote the existing one for the same (serial, machine) pair.
type BindResult int

const (
	BindCreated BindResult = iota + 1
	BindUpdated
)

func (r BindResult) String() string {
	switch r {
	case BindCreated:
		return "created"
	case BindUpdated:
		return "updated"
	default:
		return "unknown"
	}
}

// BindingStore is the persistent key space holding bindings grouped by serial.
type BindingStore interface {
	// ListBySerial returns every binding currently held for serialNo.
	ListBySerial(ctx context.Context, serialNo string) ([]Binding, error)

	// Bind atomically writes b when its machine already holds the serial or
	// fewer than limit other machines do. Otherwise it writes nothing and
	// returns a *SlotsExhaustedError.
	Bind(ctx context.Context, b Binding, limit int) (BindResult, error)
}

// HoldsSerial reports whether machineID is among bindings.
func HoldsSerial(bindings []Binding, machineID string) bool {
	for _, b := range bindings {
		if b.MachineID == machineID {
			return true
		}
	}
	return false
}
