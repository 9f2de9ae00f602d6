package router

import (
	"github.com/gin-gonic/gin"

	"sudooom.im.mahjong/internal/handler"
	"sudooom.im.mahjong/internal/health"
	"sudooom.im.mahjong/internal/middleware"
)

// SetupRouter 设置运维接口路由
func SetupRouter(
	mode string,
	tokens *middleware.TokenService,
	checker *health.Checker,
	adminHandler *handler.AdminHandler,
) *gin.Engine {
	gin.SetMode(mode)

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", checker.Health)
	r.GET("/ready", checker.Ready)

	admin := r.Group("/admin")
	admin.Use(middleware.AdminAuth(tokens))
	{
		rooms := admin.Group("/rooms")
		{
			rooms.GET("", adminHandler.ListRooms)
			rooms.GET("/:id", adminHandler.GetRoom)
			rooms.DELETE("/:id", adminHandler.CloseRoom)
			rooms.GET("/:id/records", adminHandler.ListRecords)
		}
	}

	return r
}
