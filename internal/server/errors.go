package server

import (
	"github.com/gin-gonic/gin"
	"github.com/muhammadolammi/resumereview/internal/apperr"
	"github.com/muhammadolammi/resumereview/internal/auth"
	"github.com/sirupsen/logrus"
)

const msgInternal = "Internal server error"

// respondError writes err as {"error", "kind"[, "status"]}. Errors outside the
// taxonomy become internal errors; causes are logged, never returned.
func (s *Server) respondError(c *gin.Context, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Internal(msgInternal, err)
	}
	message := e.Message
	if message == "" {
		message = msgInternal
	}

	if e.Kind == apperr.KindInternal || e.Kind == apperr.KindServiceUnavailable {
		fields := logrus.Fields{"path": c.FullPath(), "kind": e.Kind}
		if id, ok := auth.FromGin(c); ok {
			fields["user_id"] = id.ID
		}
		s.log.WithFields(fields).WithError(err).Error(message)
	}

	body := gin.H{"error": message, "kind": e.Kind}
	if e.Kind == apperr.KindConflict && e.Status != "" {
		body["status"] = e.Status
	}
	c.AbortWithStatusJSON(apperr.HTTPStatus(e.Kind), body)
}
