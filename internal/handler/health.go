package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/223MapAction/Model-deploy/internal/model"
)

// Root handles GET / and identifies the service.
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, model.MessageResponse{Message: "Map Action classification model"})
}

// Ping handles GET /ping.
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, model.PingResponse{Message: "pong"})
}
