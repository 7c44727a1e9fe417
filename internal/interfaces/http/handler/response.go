package handler

import "github.com/donortrack/backend/internal/interfaces/http/dto"

// Envelope shapes for the generated API docs. Handlers write dto.Response;
// these only give swag concrete types for the data field.

// APIResponse wraps a single payload
type APIResponse[T any] struct {
	Success bool           `json:"success" example:"true"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// PagedResponse wraps one page of a listing
type PagedResponse[T any] struct {
	Success bool     `json:"success" example:"true"`
	Data    []T      `json:"data"`
	Meta    dto.Meta `json:"meta"`
}

// ErrorResponse is returned with every non-2xx status
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}

// SuccessResponse acknowledges a request that returns no data
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}
