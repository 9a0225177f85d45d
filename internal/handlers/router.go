package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/CSD-2025/coursehub-service/internal/models"
	"github.com/CSD-2025/coursehub-service/internal/services"
	"github.com/CSD-2025/coursehub-service/internal/utils"
)

type HandlerManager struct {
	authHandler    *AuthHandler
	userHandler    *UserHandler
	courseHandler  *CourseHandler
	memberHandler  *MemberHandler
	sheetHandler   *AnswerSheetHandler
	recheckHandler *RecheckHandler
	authMiddleware *SessionAuthMiddleware
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		authHandler:    NewAuthHandler(serviceManager.Auth(), logger),
		userHandler:    NewUserHandler(serviceManager.User(), logger),
		courseHandler:  NewCourseHandler(serviceManager.Course(), logger),
		memberHandler:  NewMemberHandler(serviceManager.Membership(), logger),
		sheetHandler:   NewAnswerSheetHandler(serviceManager.AnswerSheet(), serviceManager.Membership(), logger),
		recheckHandler: NewRecheckHandler(serviceManager.Recheck(), logger),
		authMiddleware: NewSessionAuthMiddleware(serviceManager.Auth()),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Public auth endpoints
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", hm.authHandler.Register)
		auth.POST("/login", hm.authHandler.Login)
		auth.GET("/oauth/callback", hm.authHandler.OAuthCallback)
		// Switch-role reads the presented credential itself; it sits
		// outside the middleware so an expired active role never blocks
		// re-issuance checks.
		auth.POST("/switch-role", hm.authHandler.SwitchRole)
	}

	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		v1.GET("/auth/me", hm.authHandler.Me)

		// Course routes. Fine-grained ownership checks (professor owns
		// course, TA belongs to course) live in the services; the
		// middleware only gates by active role where a whole endpoint is
		// role-scoped.
		courses := v1.Group("/courses")
		{
			courses.POST("", hm.authMiddleware.RequireActiveRole(models.RoleSuperAdmin), hm.courseHandler.CreateCourse)
			courses.GET("", hm.authMiddleware.RequireActiveRole(models.RoleSuperAdmin), hm.courseHandler.ListCourses)
			courses.GET("/mine", hm.courseHandler.ListMyCourses)
			courses.GET("/:id", hm.courseHandler.GetCourse)
			courses.PUT("/:id", hm.courseHandler.UpdateCourse)
			courses.DELETE("/:id", hm.authMiddleware.RequireActiveRole(models.RoleSuperAdmin), hm.courseHandler.DeleteCourse)

			// Membership
			courses.GET("/:id/members", hm.courseHandler.GetCourseMembers)
			courses.POST("/:id/members", hm.memberHandler.AddMember)
			courses.DELETE("/:id/members/:user_id", hm.memberHandler.RemoveMember)
			courses.POST("/:id/members/reconcile", hm.memberHandler.ReconcileMembers)
			courses.POST("/:id/members/import", hm.memberHandler.ImportMembers)

			// Answer sheets scoped to a course
			courses.GET("/:id/answer-sheets", hm.sheetHandler.ListCourseSheets)
			courses.POST("/:id/answer-sheets/import", hm.sheetHandler.ImportSheets)

			// Rechecks scoped to a course
			courses.GET("/:id/rechecks", hm.recheckHandler.ListCourseRechecks)
		}

		// Answer sheet routes
		sheets := v1.Group("/answer-sheets")
		{
			sheets.POST("", hm.sheetHandler.UpsertSheet)
			sheets.GET("/mine", hm.authMiddleware.RequireActiveRole(models.RoleStudent), hm.sheetHandler.ListMySheets)
			sheets.GET("/:id", hm.sheetHandler.GetSheet)
		}

		// Recheck routes
		rechecks := v1.Group("/rechecks")
		{
			rechecks.POST("", hm.authMiddleware.RequireActiveRole(models.RoleStudent), hm.recheckHandler.CreateRecheck)
			rechecks.GET("/mine", hm.authMiddleware.RequireActiveRole(models.RoleStudent), hm.recheckHandler.ListMyRechecks)
			rechecks.POST("/:id/resolve", hm.recheckHandler.ResolveRecheck)
		}

		// User routes
		users := v1.Group("/users")
		{
			users.GET("", hm.userHandler.ListUsers)
			users.GET("/:id", hm.userHandler.GetUser)
			users.PUT("/:id", hm.userHandler.UpdateProfile)
			users.PUT("/:id/roles", hm.authMiddleware.RequireActiveRole(models.RoleSuperAdmin), hm.userHandler.UpdateRoles)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "coursehub-service",
		})
	})
}
