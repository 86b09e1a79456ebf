package router

import (
	"database/sql"

	"menu_needs_backend/internal/config"
	"menu_needs_backend/internal/handlers"
	"menu_needs_backend/internal/middleware"
	"menu_needs_backend/internal/repositories"
	"menu_needs_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, cfg *config.Config) {
	catalogRepo := repositories.NewCatalogRepository(db)
	needRepo := repositories.NewMenuNeedRepository(db)
	uow := repositories.NewUnitOfWork(db)

	needService := services.NewMenuNeedService(catalogRepo, needRepo, uow, services.MenuNeedOptions{
		InsertBatchSize: cfg.Needs.InsertBatchSize,
		ListMaxLimit:    cfg.Needs.ListMaxLimit,
	})

	needHandler := handlers.NewMenuNeedHandler(needService)

	apiV1 := engine.Group("/api/v1")
	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupMenuNeedRoutes(authenticated, needHandler)
	}
}

// SetupMenuNeedRoutes sets up the menu needs routes.
func SetupMenuNeedRoutes(authenticatedGroup *gin.RouterGroup, needHandler *handlers.MenuNeedHandler) {
	needRoutes := authenticatedGroup.Group("/menu-needs")
	{
		needRoutes.POST("/preview", needHandler.PreviewNeeds)
		needRoutes.POST("/generate", needHandler.GenerateNeeds)
		needRoutes.GET("", needHandler.ListNeeds)
		needRoutes.GET("/export", needHandler.ExportNeeds)
		needRoutes.DELETE("/:id", needHandler.DeleteNeed)
		needRoutes.DELETE("", needHandler.DeleteNeedsByScope)
	}
}
