package handler

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/pactpal-server/internal/apperrors"
	"github.com/dtroode/pactpal-server/internal/logger"
	"github.com/dtroode/pactpal-server/internal/model"
)

func handleError(logger *logger.Logger, method string, err error) error {
	if appErr, ok := apperrors.As(err); ok {
		if appErr.Err != nil {
			logger.Warn("gRPC request failed",
				"method", method,
				"kind", appErr.Kind,
				"error", appErr.Err.Error())
		}
		return status.Error(appErr.GRPCCode(), appErr.Message)
	}

	if errors.Is(err, model.ErrNotFound) {
		return status.Error(codes.NotFound, "agreement not found")
	}

	logger.Error("gRPC request failed", "method", method, "error", err.Error())
	return status.Error(codes.Internal, "internal server error")
}
