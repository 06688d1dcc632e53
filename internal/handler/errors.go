package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/kube-rca/userauth/internal/apperr"
	"github.com/kube-rca/userauth/internal/model"
	"go.uber.org/zap"
)

// ErrorHandler renders the last error pushed with c.Error. Handlers never
// write error bodies themselves.
func ErrorHandler(log *zap.Logger, exposeDetails bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		writeError(c, log, c.Errors.Last().Err, exposeDetails)
	}
}

func writeError(c *gin.Context, log *zap.Logger, err error, exposeDetails bool) {
	appErr, ok := apperr.As(err)
	if !ok {
		appErr = apperr.Internal(err)
	}

	status := appErr.Kind.Status()
	resp := model.ErrorResponse{
		Success: false,
		Message: appErr.Message,
		Code:    appErr.Kind.Code(),
		Errors:  appErr.Fields,
	}

	fields := []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", status),
		zap.Error(err),
	}
	if appErr.Kind == apperr.KindInternal {
		log.Error("request failed", fields...)
		if exposeDetails && appErr.Err != nil {
			resp.Message = appErr.Err.Error()
		}
	} else {
		log.Warn("request rejected", fields...)
	}

	c.AbortWithStatusJSON(status, resp)
}
