package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"square.ai/skill-gateway/app/domain/common"
	"square.ai/skill-gateway/app/utils/logger"
)

type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

type GeneralResponse[T any] struct {
	Status string `json:"status"`
	Result T      `json:"result"`
}

type ListResponse[T any] struct {
	Status   string `json:"status"`
	Offset   int    `json:"offset"`
	PageSize int    `json:"page_size"`
	Total    int64  `json:"total"`
	Results  []T    `json:"results"`
}

const ResponseCodeOk = "000000"

// StatusFromError maps the shared error classes onto HTTP status codes.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrNotReady):
		return http.StatusAccepted
	case errors.Is(err, common.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// AbortWithError writes the ErrorResponse for err. Server side failures are
// logged with the call site's error code.
func AbortWithError(reqCtx *gin.Context, err error, code string) {
	var coded *common.Error
	if errors.As(err, &coded) && !coded.IsEmpty() {
		code = coded.GetCode()
	}
	status := StatusFromError(err)
	if status >= http.StatusInternalServerError {
		logger.GetLogger().
			WithField("error_code", code).
			WithField("path", reqCtx.FullPath()).
			Errorf("request failed: %v", err)
	}
	reqCtx.AbortWithStatusJSON(status, ErrorResponse{
		Code:  code,
		Error: err.Error(),
	})
}
