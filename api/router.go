package api

import (
	"github.com/SlpAus/adventurer-progression-backend/internal/adventurer"
	"github.com/SlpAus/adventurer-progression-backend/internal/mentor"
	"github.com/gin-gonic/gin"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		// 冒险者聚合的路由组
		adventurers := api.Group("/adventurers")
		{
			adventurers.POST("", adventurer.CreateAdventurerHandler)
			adventurers.GET("", adventurer.ListAdventurersHandler)
			adventurers.GET("/ranking", adventurer.GetRankingHandler)

			adventurers.GET("/:id", adventurer.GetAdventurerHandler)
			adventurers.PATCH("/:id", adventurer.UpdateAdventurerHandler)
			adventurers.DELETE("/:id", adventurer.DeleteAdventurerHandler)

			// 经验与成长相关的路由
			adventurers.POST("/:id/experience", adventurer.AddExperienceHandler)

			// 导师指派与指导会话
			adventurers.POST("/:id/mentor", adventurer.AssignMentorHandler)
			adventurers.POST("/:id/guidance", adventurer.RecordGuidanceSessionHandler)
			adventurers.GET("/:id/guidance", adventurer.ListGuidanceSessionsHandler)
		}

		// 导师名录（只读）
		api.GET("/mentors", mentor.GetMentors)
	}
}
