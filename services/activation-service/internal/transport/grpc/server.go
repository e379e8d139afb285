package grpc_server

import (
	"context"
	"errors"

	"licenseplatform/services/activation-service/internal/application/usecase"
	"licenseplatform/services/activation-service/internal/domain"
	"licenseplatform/services/activation-service/pkg/activationrpc"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ActivationServer struct {
	useCase *usecase.ActivationUseCase
}

func NewActivationServer(uc *usecase.ActivationUseCase) *ActivationServer {
	return &ActivationServer{useCase: uc}
}

// Activate always answers with a decision; the status field carries the
// outcome, gRPC errors are left to transport faults.
func (s *ActivationServer) Activate(ctx context.Context, req *activationrpc.ActivateRequest) (*activationrpc.ActivateResponse, error) {
	dec := s.useCase.Activate(ctx, domain.Request{
		SerialNo:      req.SerialNo,
		MachineID:     req.MachineID,
		ClientTime:    req.ClientTime,
		ClientAddress: req.ClientAddress,
		OSName:        req.OSName,
		OSVersion:     req.OSVersion,
		MachineName:   req.MachineName,
		UserName:      req.UserName,
		RequestID:     req.RequestID,
	})

	return &activationrpc.ActivateResponse{
		Status:         int(dec.Status),
		SerialNo:       dec.SerialNo,
		MachineID:      dec.MachineID,
		LastUpdateTime: dec.LastUpdateTime,
		Description:    dec.Description,
	}, nil
}

func (s *ActivationServer) ListBindings(ctx context.Context, req *activationrpc.ListBindingsRequest) (*activationrpc.ListBindingsResponse, error) {
	bindings, err := s.useCase.ListBindings(ctx, req.SerialNo)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}

	resp := &activationrpc.ListBindingsResponse{
		Bindings: make([]activationrpc.BindingInfo, 0, len(bindings)),
	}
	for _, b := range bindings {
		resp.Bindings = append(resp.Bindings, activationrpc.BindingInfo{
			SerialNo:       b.SerialNo,
			MachineID:      b.MachineID,
			ClientAddress:  b.ClientAddress,
			ClientOS:       b.ClientOS,
			ClientTime:     b.ClientTime,
			LastUpdateTime: b.LastUpdateTime,
		})
	}
	return resp, nil
}
