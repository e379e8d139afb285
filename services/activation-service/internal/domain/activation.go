package domain

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Status is the outcome of an activation, numerically equal to the HTTP
// status code the transport answers with.
type Status int

const (
	StatusUpdated  Status = 200
	StatusCreated  Status = 201
	StatusFailed   Status = 400
	StatusConflict Status = 409
)

func (s Status) String() string {
	switch s {
	case StatusUpdated:
		return "updated"
	case StatusCreated:
		return "created"
	case StatusFailed:
		return "failed"
	case StatusConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Request is one device asking to be bound to a serial.
type Request struct {
	SerialNo      string `json:"serialNo" validate:"required,max=128"`
	MachineID     string `json:"machineId" validate:"required,max=128"`
	ClientTime    string `json:"clientTime"`
	ClientAddress string `json:"clientAddress"`
	OSName        string `json:"osName"`
	OSVersion     string `json:"osVersion"`
	MachineName   string `json:"machineName"`
	UserName      string `json:"userName"`
	RequestID     string `json:"requestId"`
}

// ClientOS joins the OS name and version the way audit entries store them.
func (r Request) ClientOS() string {
	return strings.TrimSpace(r.OSName + " " + r.OSVersion)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks the fields the resolver cannot work without.
func (r Request) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return ErrValidation("", "invalid request: %v", err)
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return ErrValidation(fe.Field(), "%s is required", fe.Field())
	case "max":
		return ErrValidation(fe.Field(), "%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return ErrValidation(fe.Field(), "%s is invalid", fe.Field())
	}
}

// Decision is the caller-visible result of an activation request.
type Decision struct {
	Status         Status
	SerialNo       string
	MachineID      string
	LastUpdateTime time.Time
	Description    string
}
