package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opencampus/credisphere/internal/app/controllers"
	"github.com/opencampus/credisphere/internal/app/models"
	"github.com/opencampus/credisphere/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	registryController *controllers.RegistryController,
	tokenController *controllers.TokenController,
	courseController *controllers.CourseController,
	authMiddleware *middleware.AuthMiddleware,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		adminOnly := authMiddleware.RoleRequired(string(models.RoleAdmin))
		studentOnly := authMiddleware.RoleRequired(string(models.RoleStudent))
		professorOnly := authMiddleware.RoleRequired(string(models.RoleProfessor))

		// Registry routes. All writes belong to the admin; reads are open to
		// any authenticated participant.
		universities := authenticated.Group("/universities")
		{
			universities.GET("", registryController.ListUniversities)
			universities.POST("", adminOnly, registryController.RegisterUniversity)
		}

		professors := authenticated.Group("/professors")
		{
			professors.GET("", registryController.ListProfessors)
			professors.POST("", adminOnly, registryController.RegisterProfessor)
		}

		students := authenticated.Group("/students")
		{
			students.GET("", registryController.ListStudents)
			students.POST("", adminOnly, registryController.RegisterStudent)
		}

		authenticated.GET("/accounts/:identity", registryController.GetAccount)
		authenticated.DELETE("/accounts/:identity/sessions", adminOnly, authController.RevokeSessions)

		// Token routes. Purchasing is a student action; balance reads gate
		// inside the service on holder-or-admin.
		authenticated.POST("/tokens/purchase", studentOnly, tokenController.Purchase)
		authenticated.GET("/balances/:identity", tokenController.GetBalance)
		authenticated.GET("/balances/:identity/provenance/:university", tokenController.GetProvenanceBalance)
		authenticated.GET("/movements/:identity", tokenController.GetMovements)

		// Course routes
		courses := authenticated.Group("/courses")
		{
			courses.GET("", courseController.ListCourses)
			courses.POST("", adminOnly, courseController.CreateCourse)
			courses.GET("/:id", courseController.GetCourse)
			courses.GET("/:id/cost", studentOnly, courseController.QuoteCost)

			courses.POST("/:id/authorizations", adminOnly, courseController.AuthorizeProfessor)
			courses.GET("/:id/authorizations/:university", courseController.GetAuthorization)

			courses.POST("/:id/enrollments", studentOnly, courseController.Enroll)
			courses.GET("/:id/enrollments", courseController.ListRecords)
			courses.GET("/:id/enrollments/:recordId", courseController.GetRecord)
			courses.POST("/:id/enrollments/:recordId/evaluation", professorOnly, courseController.Evaluate)
			courses.POST("/:id/enrollments/:recordId/relocation", studentOnly, courseController.Relocate)

			courses.GET("/:id/records/count/:identity", courseController.RecordCount)
		}
	}
}
