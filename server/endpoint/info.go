package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/scribely/scribely/version"
)

// InfoResponse is the /info response body.
type InfoResponse struct {
	Service string       `json:"service"`
	Build   version.Info `json:"build"`
	Uptime  string       `json:"uptime"`
}

// Info returns a handler that reports service identity and build metadata.
func Info(service string) gin.HandlerFunc {
	started := time.Now()
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, InfoResponse{
			Service: service,
			Build:   version.Get(),
			Uptime:  time.Since(started).Round(time.Second).String(),
		})
	}
}
