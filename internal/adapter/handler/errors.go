package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/storefront/internal/core/domain"
)

func httpStatus(err error) int {
	switch domain.KindOf(err) {
	case domain.ErrValidation:
		return http.StatusBadRequest
	case domain.ErrNotFound:
		return http.StatusNotFound
	case domain.ErrConflict:
		return http.StatusConflict
	case domain.ErrUnauthorized:
		return http.StatusUnauthorized
	case domain.ErrUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func grpcCode(err error) codes.Code {
	switch domain.KindOf(err) {
	case domain.ErrValidation:
		return codes.InvalidArgument
	case domain.ErrNotFound:
		return codes.NotFound
	case domain.ErrConflict:
		if errors.Is(err, domain.ErrDuplicate) {
			return codes.AlreadyExists
		}
		return codes.Aborted
	case domain.ErrUnauthorized:
		return codes.Unauthenticated
	case domain.ErrUnavailable:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

func grpcError(err error) error {
	code := grpcCode(err)
	if code == codes.Internal {
		log.Error().Err(err).Msg("management call failed")
		return status.Error(code, "internal error")
	}
	return status.Error(code, err.Error())
}

func writeError(c *gin.Context, err error) {
	code := httpStatus(err)
	msg := err.Error()
	switch code {
	case http.StatusInternalServerError:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		msg = "internal error"
	case http.StatusServiceUnavailable:
		log.Warn().Err(err).Str("path", c.FullPath()).Msg("upstream unavailable")
	}
	c.JSON(code, gin.H{"error": msg})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
