// Package activationrpc is the wire contract between the api-gateway and the
// activation-service. Messages travel as google.protobuf.Struct so both sides
// share one schema without generated code.
package activationrpc

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

type ActivateRequest struct {
	SerialNo      string
	MachineID     string
	ClientTime    string
	ClientAddress string
	OSName        string
	OSVersion     string
	MachineName   string
	UserName      string
	RequestID     string
}

type ActivateResponse struct {
	Status         int
	SerialNo       string
	MachineID      string
	LastUpdateTime time.Time
	Description    string
}

type ListBindingsRequest struct {
	SerialNo string
}

type BindingInfo struct {
	SerialNo       string
	MachineID      string
	ClientAddress  string
	ClientOS       string
	ClientTime     string
	LastUpdateTime time.Time
}

type ListBindingsResponse struct {
	Bindings []BindingInfo
}

func str(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func timeField(s *structpb.Struct, key string) (time.Time, error) {
	raw := str(s, key)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return t, nil
}

func (r *ActivateRequest) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"serialNo":      r.SerialNo,
		"machineId":     r.MachineID,
		"clientTime":    r.ClientTime,
		"clientAddress": r.ClientAddress,
		"osName":        r.OSName,
		"osVersion":     r.OSVersion,
		"machineName":   r.MachineName,
		"userName":      r.UserName,
		"requestId":     r.RequestID,
	})
}

func ActivateRequestFromStruct(s *structpb.Struct) *ActivateRequest {
	return &ActivateRequest{
		SerialNo:      str(s, "serialNo"),
		MachineID:     str(s, "machineId"),
		ClientTime:    str(s, "clientTime"),
		ClientAddress: str(s, "clientAddress"),
		OSName:        str(s, "osName"),
		OSVersion:     str(s, "osVersion"),
		MachineName:   str(s, "machineName"),
		UserName:      str(s, "userName"),
		RequestID:     str(s, "requestId"),
	}
}

func (r *ActivateResponse) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"status":         r.Status,
		"serialNo":       r.SerialNo,
		"machineId":      r.MachineID,
		"lastUpdateTime": r.LastUpdateTime.UTC().Format(time.RFC3339Nano),
		"description":    r.Description,
	})
}

func ActivateResponseFromStruct(s *structpb.Struct) (*ActivateResponse, error) {
	updated, err := timeField(s, "lastUpdateTime")
	if err != nil {
		return nil, err
	}
	return &ActivateResponse{
		Status:         int(s.GetFields()["status"].GetNumberValue()),
		SerialNo:       str(s, "serialNo"),
		MachineID:      str(s, "machineId"),
		LastUpdateTime: updated,
		Description:    str(s, "description"),
	}, nil
}

func (r *ListBindingsRequest) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"serialNo": r.SerialNo})
}

func ListBindingsRequestFromStruct(s *structpb.Struct) *ListBindingsRequest {
	return &ListBindingsRequest{SerialNo: str(s, "serialNo")}
}

func (r *ListBindingsResponse) ToStruct() (*structpb.Struct, error) {
	items := make([]any, 0, len(r.Bindings))
	for _, b := range r.Bindings {
		items = append(items, map[string]any{
			"serialNo":       b.SerialNo,
			"machineId":      b.MachineID,
			"clientAddress":  b.ClientAddress,
			"clientOs":       b.ClientOS,
			"clientTime":     b.ClientTime,
			"lastUpdateTime": b.LastUpdateTime.UTC().Format(time.RFC3339Nano),
		})
	}
	return structpb.NewStruct(map[string]any{"bindings": items})
}

func ListBindingsResponseFromStruct(s *structpb.Struct) (*ListBindingsResponse, error) {
	values := s.GetFields()["bindings"].GetListValue().GetValues()
	out := &ListBindingsResponse{Bindings: make([]BindingInfo, 0, len(values))}
	for _, v := range values {
		item := v.GetStructValue()
		updated, err := timeField(item, "lastUpdateTime")
		if err != nil {
			return nil, err
		}
		out.Bindings = append(out.Bindings, BindingInfo{
			SerialNo:       str(item, "serialNo"),
			MachineID:      str(item, "machineId"),
			ClientAddress:  str(item, "clientAddress"),
			ClientOS:       str(item, "clientOs"),
			ClientTime:     str(item, "clientTime"),
			LastUpdateTime: updated,
		})
	}
	return out, nil
}
