package responses

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Aidin1998/pricecatalog/pkg/errors"
)

// TimestampLayout is the timestamp format of error bodies.
const TimestampLayout = "2006-01-02T15:04:05.000"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code      string              `json:"code"`
	Message   string              `json:"message"`
	Timestamp string              `json:"timestamp"`
	Fields    []errors.FieldError `json:"fields,omitempty"`
}

// Error aborts the request with the business error found in err. Unknown
// errors become COMMON-999 and are logged at error level.
func Error(c *gin.Context, logger *zap.Logger, err error) {
	be := errors.From(err)
	if be.Code == errors.Internal.Code {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		be = errors.Internal
	} else {
		logger.Warn("request rejected",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("code", be.Code),
			zap.Error(err))
	}

	c.AbortWithStatusJSON(be.Status, ErrorResponse{
		Code:      be.Code,
		Message:   be.Message,
		Timestamp: time.Now().Format(TimestampLayout),
		Fields:    be.Fields,
	})
}
