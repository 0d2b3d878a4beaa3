package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/services"
	"github.com/SAP-F-2025/student-service/internal/utils"
)

type HandlerManager struct {
	authHandler       *AuthHandler
	enrollmentHandler *EnrollmentHandler
	courseHandler     *CourseHandler
	studentHandler    *StudentHandler
	lecturerHandler   *LecturerHandler
	userHandler       *UserHandler
	authMiddleware    *JWTAuthMiddleware
	serviceManager    services.ServiceManager
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		authHandler:       NewAuthHandler(serviceManager.Auth(), logger),
		enrollmentHandler: NewEnrollmentHandler(serviceManager.Enrollment(), serviceManager.Report(), logger),
		courseHandler:     NewCourseHandler(serviceManager.Course(), logger),
		studentHandler:    NewStudentHandler(serviceManager.Student(), logger),
		lecturerHandler:   NewLecturerHandler(serviceManager.Lecturer(), logger),
		userHandler:       NewUserHandler(serviceManager.User(), logger),
		authMiddleware:    NewJWTAuthMiddleware(serviceManager.Auth()),
		serviceManager:    serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	// Public auth endpoints
	authPublic := router.Group("/api/v1/auth")
	{
		authPublic.POST("/register", hm.authHandler.Register)
		authPublic.POST("/login", hm.authHandler.Login)
		authPublic.POST("/refresh", hm.authHandler.Refresh)
	}

	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		authenticated := v1.Group("/auth")
		{
			authenticated.GET("/me", hm.authHandler.Me)
			authenticated.POST("/logout", hm.authHandler.Logout)
			authenticated.PUT("/password", hm.authHandler.ChangePassword)
		}

		enrollments := v1.Group("/enrollments")
		{
			enrollments.POST("", hm.enrollmentHandler.Enroll)
			enrollments.GET("", hm.enrollmentHandler.List)
			enrollments.GET("/recent", hm.enrollmentHandler.Recent)
			enrollments.GET("/stats", hm.enrollmentHandler.Stats)
			enrollments.GET("/trends", hm.authMiddleware.RequireRoleMiddleware(models.RoleLecturer, models.RoleAdmin), hm.enrollmentHandler.Trends)
			enrollments.GET("/export", hm.authMiddleware.RequireRoleMiddleware(models.RoleLecturer, models.RoleAdmin), hm.enrollmentHandler.Export)
			enrollments.GET("/:id", hm.enrollmentHandler.Get)
			enrollments.POST("/:id/drop", hm.enrollmentHandler.Drop)
			enrollments.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleLecturer, models.RoleAdmin), hm.enrollmentHandler.Update)
		}

		courses := v1.Group("/courses")
		{
			courses.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.courseHandler.Create)
			courses.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleLecturer, models.RoleAdmin), hm.courseHandler.Update)
			courses.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.courseHandler.Delete)
			courses.GET("", hm.courseHandler.List)
			courses.GET("/:id", hm.courseHandler.Get)
			courses.GET("/:id/stats", hm.courseHandler.Stats)
			courses.GET("/:id/enrollments", hm.enrollmentHandler.ListByCourse)
		}

		students := v1.Group("/students")
		{
			students.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.studentHandler.Create)
			students.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.studentHandler.Update)
			students.GET("", hm.authMiddleware.RequireRoleMiddleware(models.RoleLecturer, models.RoleAdmin), hm.studentHandler.List)
			students.GET("/:id", hm.studentHandler.Get)
			students.GET("/:id/enrollments", hm.enrollmentHandler.ListByStudent)
		}

		lecturers := v1.Group("/lecturers")
		{
			lecturers.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.lecturerHandler.Create)
			lecturers.GET("", hm.lecturerHandler.List)
			lecturers.GET("/:id", hm.lecturerHandler.Get)
		}

		users := v1.Group("/users", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
		{
			users.GET("", hm.userHandler.List)
			users.GET("/role-counts", hm.userHandler.RoleCounts)
			users.GET("/:id", hm.userHandler.Get)
			users.GET("/:id/audit", hm.userHandler.AuditTrail)
		}
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
