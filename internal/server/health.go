package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/host"
)

// handleHealth reports liveness. Host details are best-effort.
func handleHealth(c *gin.Context) {
	body := gin.H{"status": "ok", "time": time.Now().UTC()}
	if info, err := host.InfoWithContext(c.Request.Context()); err == nil {
		body["host"] = info.Hostname
		body["platform"] = info.Platform
		body["platform_version"] = info.PlatformVersion
		body["uptime_seconds"] = info.Uptime
	}
	c.JSON(http.StatusOK, body)
}
