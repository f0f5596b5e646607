package handler

import (
	"net/http"
	"strconv"

	"Synergy_Link/internal/pkg"

	"github.com/gin-gonic/gin"
)

func statusOf(kind pkg.Kind) int {
	switch kind {
	case pkg.KindUnauthenticated:
		return http.StatusUnauthorized
	case pkg.KindNotFound:
		return http.StatusNotFound
	case pkg.KindValidationFailed:
		return http.StatusBadRequest
	case pkg.KindConflict:
		return http.StatusConflict
	case pkg.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusServiceUnavailable
	}
}

// writeError renders err as {"code": kind, "msg": message}. Transport
// failures hide their cause from the client.
func writeError(c *gin.Context, err error) {
	kind := pkg.KindOf(err)
	msg := pkg.Message(err)
	if kind == pkg.KindTransportFailure {
		_ = c.Error(err)
		msg = "service temporarily unavailable"
	}
	c.JSON(statusOf(kind), gin.H{"code": kind, "msg": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"code": pkg.KindValidationFailed, "msg": msg})
}

func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}
