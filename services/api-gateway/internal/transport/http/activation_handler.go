package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"licenseplatform/services/activation-service/pkg/activationrpc"
	"licenseplatform/services/api-gateway/internal/middleware"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ActivationHandler struct {
	client  activationrpc.ActivationServiceClient
	timeout time.Duration
	logger  *slog.Logger
}

func NewActivationHandler(client activationrpc.ActivationServiceClient, timeout time.Duration, logger *slog.Logger) *ActivationHandler {
	return &ActivationHandler{client: client, timeout: timeout, logger: logger}
}

type activateReq struct {
	SerialNo    string `json:"serialNo"`
	MachineID   string `json:"machineId"`
	ClientTime  string `json:"clientTime"`
	OSName      string `json:"osName"`
	OSVersion   string `json:"osVersion"`
	MachineName string `json:"machineName"`
	UserName    string `json:"userName"`
}

type activateResp struct {
	SerialNo       string `json:"serialNo"`
	LastUpdateTime string `json:"lastUpdateTime"`
	MachineID      string `json:"machineId"`
	Description    string `json:"description,omitempty"`
}

type bindingResp struct {
	MachineID      string `json:"machineId"`
	ClientAddress  string `json:"clientAddress"`
	ClientOS       string `json:"clientOs"`
	ClientTime     string `json:"clientTime"`
	LastUpdateTime string `json:"lastUpdateTime"`
}

func (h *ActivationHandler) rpcContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// Activate answers with the decision's own status code. Field validation is
// left to the activation-service so that rejected requests are audited too.
func (h *ActivationHandler) Activate(c *gin.Context) {
	var req activateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := h.rpcContext(c)
	defer cancel()

	res, err := h.client.Activate(ctx, &activationrpc.ActivateRequest{
		SerialNo:      req.SerialNo,
		MachineID:     req.MachineID,
		ClientTime:    req.ClientTime,
		ClientAddress: c.ClientIP(),
		OSName:        req.OSName,
		OSVersion:     req.OSVersion,
		MachineName:   req.MachineName,
		UserName:      req.UserName,
		RequestID:     middleware.RequestIDFrom(c),
	})
	if err != nil {
		h.logger.Error("activation rpc failed",
			"serial_no", req.SerialNo,
			"request_id", middleware.RequestIDFrom(c),
			"error", err,
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "activation service unavailable"})
		return
	}

	switch res.Status {
	case http.StatusOK, http.StatusCreated, http.StatusBadRequest, http.StatusConflict:
	default:
		h.logger.Error("activation rpc returned unknown status",
			"status", res.Status,
			"request_id", middleware.RequestIDFrom(c),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "invalid response from activation service"})
		return
	}

	c.JSON(res.Status, activateResp{
		SerialNo:       res.SerialNo,
		LastUpdateTime: activationrpc.FormatTime(res.LastUpdateTime),
		MachineID:      res.MachineID,
		Description:    res.Description,
	})
}

// ListBindings serves GET /activations/:serialNo for support staff.
func (h *ActivationHandler) ListBindings(c *gin.Context) {
	serialNo := c.Param("serialNo")

	ctx, cancel := h.rpcContext(c)
	defer cancel()

	res, err := h.client.ListBindings(ctx, &activationrpc.ListBindingsRequest{SerialNo: serialNo})
	if err != nil {
		if status.Code(err) == codes.InvalidArgument {
			c.JSON(http.StatusBadRequest, gin.H{"error": status.Convert(err).Message()})
			return
		}
		h.logger.Error("list bindings rpc failed",
			"serial_no", serialNo,
			"support_user", c.GetString("supportUser"),
			"error", err,
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "activation service unavailable"})
		return
	}

	bindings := make([]bindingResp, 0, len(res.Bindings))
	for _, b := range res.Bindings {
		bindings = append(bindings, bindingResp{
			MachineID:      b.MachineID,
			ClientAddress:  b.ClientAddress,
			ClientOS:       b.ClientOS,
			ClientTime:     b.ClientTime,
			LastUpdateTime: activationrpc.FormatTime(b.LastUpdateTime),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"serialNo": serialNo,
		"bindings": bindings,
	})
}
