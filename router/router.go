package router

import (
	"log"

	"psiconecta/config"
	"psiconecta/controllers"
	dbpkg "psiconecta/db"
	"psiconecta/middleware"
	"psiconecta/wizard"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

// Initialize wires all routes and middlewares.
// Public routes + authenticated routes + "validated" routes (Authorizer) + admin.
func Initialize(r *gin.Engine, cfg config.Configuration, database *gorm.DB, svc *wizard.Service) {
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	r.Use(dbpkg.SetDBtoContext(database))
	r.Use(controllers.SetWizardToContext(svc))

	r.GET("/health", controllers.Health)
	if cfg.Storage.Driver == "local" {
		r.Static("/uploads", cfg.Storage.LocalDir)
	}

	api := r.Group("/api")

	// Public (no auth)
	api.POST("/users", Logger(), controllers.CreateUser)
	api.POST("/login", Logger(), controllers.Login)
	api.GET("/plans", Logger(), controllers.GetPlans)

	// Authenticated routes (token required)
	auth := api.Group("")
	auth.Use(controllers.AuthRequired())
	auth.GET("/me", Logger(), controllers.Me)

	// Validated routes (token + active user)
	validated := auth.Group("")
	validated.Use(Authorizer())

	validated.PUT("/user", Logger(), controllers.UpdateCurrentUser)

	// Cadastro completo
	profile := validated.Group("/profile")
	profile.GET("", Logger(), controllers.GetProfile)
	profile.GET("/status", Logger(), controllers.GetProfileStatus)
	profile.POST("/selections", Logger(), controllers.ToggleSelection)
	profile.PUT("/phases/:phase", Logger(), controllers.SavePhase)
	profile.POST("/phases/:phase/advance", Logger(), controllers.AdvancePhase)
	profile.POST("/submit", Logger(), controllers.SubmitProfile)
	profile.POST("/plan", Logger(), controllers.ChangePlan)
	profile.GET("/plan/preview", Logger(), controllers.PreviewPlanChange)
	profile.POST("/avatar", Logger(), controllers.UploadAvatar)
	profile.POST("/crp", Logger(), controllers.UploadCRPDocument)
	profile.POST("/documents/:kind", Logger(), controllers.UploadDocument)

	// Admin routes
	admin := validated.Group("")
	admin.Use(Adminizer())

	admin.PUT("/plans/:id", Logger(), controllers.UpdatePlan)
	admin.GET("/admin/professionals/:userId/excess", Logger(), controllers.GetProfessionalExcess)

	log.Printf("Routes initialized")
}
