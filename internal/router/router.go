package router

import (
	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/config"
	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/handler"
	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/middleware"
	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and all API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	pieService := service.NewPieService(db)
	sliceService := service.NewSliceService(db)
	rebalanceService := service.NewRebalanceService(db, pieService, nil)

	api := r.Group("/api")

	// login/register (no auth required)
	authHandler := handler.NewAuthHandler(db, cfg.JWT.Secret, cfg.JWT.Issuer,
		cfg.JWT.ExpireHours, cfg.Security.BcryptCost)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// everything below requires a logged-in user
	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret, db),
		middleware.AuditMiddleware(db),
	)

	protected.GET("/me", handler.GetMe)
	protected.POST("/profile", handler.UpdateProfile(db))
	protected.POST("/profile/password", handler.ChangePassword(db))

	pieHandler := handler.NewPieHandler(pieService)
	protected.GET("/pies", pieHandler.ListPies)
	protected.POST("/pies", pieHandler.CreatePie)
	protected.POST("/pies/reorder", pieHandler.ReorderPies)
	protected.GET("/pies/:pie_id", pieHandler.GetPie)
	protected.PATCH("/pies/:pie_id", pieHandler.UpdatePie)
	protected.DELETE("/pies/:pie_id", pieHandler.DeletePie)

	sliceHandler := handler.NewSliceHandler(sliceService)
	protected.GET("/pies/:pie_id/slices", sliceHandler.ListSlices)
	protected.POST("/pies/:pie_id/slices", sliceHandler.CreateSlice)
	protected.POST("/pies/:pie_id/slices/reorder", sliceHandler.ReorderSlices)
	protected.GET("/pies/:pie_id/slices/:slice_id", sliceHandler.GetSlice)
	protected.PATCH("/pies/:pie_id/slices/:slice_id", sliceHandler.UpdateSlice)
	protected.DELETE("/pies/:pie_id/slices/:slice_id", sliceHandler.DeleteSlice)

	portfolioHandler := handler.NewPortfolioHandler(db)
	protected.GET("/portfolios", portfolioHandler.ListPortfolios)
	protected.POST("/portfolios", portfolioHandler.CreatePortfolio)
	protected.GET("/portfolios/:portfolio_id", portfolioHandler.GetPortfolio)

	rebalanceHandler := handler.NewRebalanceHandler(rebalanceService)
	protected.GET("/portfolios/:portfolio_id/rebalance/analysis", rebalanceHandler.GetAnalysis)
	protected.POST("/portfolios/:portfolio_id/rebalance/execute", rebalanceHandler.ExecuteRebalance)
	protected.POST("/portfolios/:portfolio_id/rebalance/auto", rebalanceHandler.AutoRebalance)

	exportHandler := handler.NewExportHandler(db)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	logHandler := handler.NewLogHandler(db, cfg.App.PageSize)
	protected.GET("/logs", logHandler.ListLogs)

	return r
}
