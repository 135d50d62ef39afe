package main

import (
	"errors"

	"connectrpc.com/connect"
	"google.golang.org/grpc/status"

	"github.com/kevin07696/error-mapping/internal/domain"
	"github.com/kevin07696/error-mapping/internal/handlers/classification"
	svc "github.com/kevin07696/error-mapping/internal/services/classification"
)

// result is the JSON form of one classification
type result struct {
	Outcome     svc.Outcome             `json:"outcome"`
	Failure     *domain.Failure         `json:"failure,omitempty"`
	GRPCCode    string                  `json:"grpcCode,omitempty"`
	ConnectCode string                  `json:"connectCode,omitempty"`
	Status      string                  `json:"status,omitempty"` // message safe to return to callers
	Message     string                  `json:"message,omitempty"`
	Definition  *domain.ErrorDefinition `json:"definition,omitempty"`
}

func newResult(failure *domain.Failure, err error) result {
	if err == nil {
		return result{Outcome: svc.OutcomeMapped, Failure: failure}
	}

	st, _ := status.FromError(classification.ToGRPCStatus(err))
	r := result{
		Outcome:     svc.OutcomeOf(err),
		GRPCCode:    st.Code().String(),
		ConnectCode: connect.CodeOf(classification.ToConnectError(err)).String(),
		Status:      st.Message(),
		Message:     err.Error(),
	}
	var unexpected *domain.UnexpectedError
	if errors.As(err, &unexpected) {
		def := unexpected.Definition
		r.Definition = &def
	}
	return r
}
