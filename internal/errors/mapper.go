// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Map converts service/repo errors into gRPC status errors.
// Internal detail never reaches the client.
func Map(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, PublicMessage(err))

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, PublicMessage(err))
	}

	var code codes.Code
	switch KindOf(err) {
	case KindNotFound:
		code = codes.NotFound
	case KindForbidden:
		code = codes.PermissionDenied
	case KindValidation:
		code = codes.InvalidArgument
	case KindUnauthorized:
		code = codes.Unauthenticated
	default:
		code = codes.Internal
	}
	return status.Error(code, PublicMessage(err))
}

// HTTPStatus picks the response status for err.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		// nginx convention for client closed request
		return 499
	}

	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
