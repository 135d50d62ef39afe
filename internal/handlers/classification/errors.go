// Package classification maps classification signals to transport status codes
// for callers that surface them over gRPC or Connect.
package classification

import (
	"context"
	"errors"

	"connectrpc.com/connect"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kevin07696/error-mapping/internal/domain"
)

// GRPCCode returns the gRPC code for a Classify error. A nil error is codes.OK.
func GRPCCode(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, domain.ErrInvalidInput):
		return codes.InvalidArgument
	case errors.Is(err, domain.ErrResultUndefined):
		return codes.Unknown
	case errors.Is(err, domain.ErrResultUnavailable):
		return codes.Unavailable
	case errors.Is(err, domain.ErrResultUnexpected):
		return codes.Internal
	case domain.IsConfigError(err), errors.Is(err, domain.ErrMappingKeyInvalid):
		return codes.FailedPrecondition
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}

// ToGRPCStatus converts a Classify error into a gRPC status error.
// Unexpected results expose only their ASCII safe reason.
func ToGRPCStatus(err error) error {
	if err == nil {
		return nil
	}
	return status.Error(GRPCCode(err), publicMessage(err))
}

// ToConnectError converts a Classify error into a Connect error
func ToConnectError(err error) error {
	if err == nil {
		return nil
	}
	// connect.Code values mirror the gRPC code numbering
	return connect.NewError(connect.Code(GRPCCode(err)), errors.New(publicMessage(err)))
}

func publicMessage(err error) string {
	var unexpected *domain.UnexpectedError
	if errors.As(err, &unexpected) {
		return string(unexpected.Definition.Type) + ": " + unexpected.Definition.Reason
	}

	switch GRPCCode(err) {
	case codes.InvalidArgument:
		return "code must be set"
	case codes.Unknown:
		return "provider result undefined, retry later"
	case codes.Unavailable:
		return "provider resource unavailable, retry later"
	case codes.FailedPrecondition:
		return "error mapping rules are misconfigured"
	case codes.Canceled:
		return "request canceled"
	case codes.DeadlineExceeded:
		return "request deadline exceeded"
	default:
		// Log internal errors but don't expose details to client
		return "internal server error"
	}
}
