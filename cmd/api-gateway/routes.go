package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/academic-records-api/api/swagger"
	"github.com/noah-isme/academic-records-api/internal/handler"
	"github.com/noah-isme/academic-records-api/internal/middleware"
	"github.com/noah-isme/academic-records-api/internal/models"
	"github.com/noah-isme/academic-records-api/pkg/config"
)

type handlers struct {
	auth             *handler.AuthHandler
	users            *handler.UserHandler
	periods          *handler.PeriodHandler
	groups           *handler.GroupHandler
	students         *handler.StudentHandler
	courses          *handler.CourseHandler
	courseGroups     *handler.CourseGroupHandler
	enrollments      *handler.CourseGroupStudentHandler
	attendance       *handler.AttendanceHandler
	schemes          *handler.GradingSchemeHandler
	evaluations      *handler.PartialEvaluationHandler
	evaluationGrades *handler.PartialEvaluationGradeHandler
	partialGrades    *handler.PartialGradeHandler
	finalGrades      *handler.FinalGradeHandler
	exports          *handler.ExportHandler
	metrics          *handler.MetricsHandler
}

var (
	admin         = middleware.RequireRoles(models.RoleAdministrador)
	adminDirector = middleware.RequireRoles(models.RoleAdministrador, models.RoleDirector)
	adminTeacher  = middleware.RequireRoles(models.RoleAdministrador, models.RoleMaestro)
	anyRole       = middleware.RequireRoles(middleware.AllRoles...)
)

func registerRoutes(r *gin.Engine, cfg *config.Config, tokens middleware.TokenValidator, h handlers) {
	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", h.auth.Login)
	if h.exports != nil {
		api.GET("/export/:token", h.exports.Download)
	}

	secured := api.Group("")
	secured.Use(middleware.JWT(tokens))

	auth := secured.Group("/auth")
	auth.PATCH("/change-password/:id", adminTeacher, h.auth.ChangePassword)
	auth.GET("/check-auth-status", adminTeacher, h.auth.CheckAuthStatus)

	secured.GET("/system/metrics", adminDirector, h.metrics.System)

	users := secured.Group("/users")
	users.POST("", admin, h.users.Create)
	users.GET("", adminDirector, h.users.List)
	users.GET("/:id", adminDirector, h.users.Get)
	users.PATCH("/:id", admin, h.users.Update)
	users.DELETE("/:id", admin, h.users.Delete)

	periods := secured.Group("/periods")
	periods.POST("", admin, h.periods.Create)
	periods.GET("", anyRole, h.periods.List)
	periods.GET("/:id", anyRole, h.periods.Get)
	periods.PATCH("/:id", admin, h.periods.Update)
	periods.DELETE("/:id", admin, h.periods.Delete)
	periods.GET("/:id/reports", adminDirector, h.periods.Reports)

	groups := secured.Group("/groups")
	groups.POST("", admin, h.groups.Create)
	groups.GET("", anyRole, h.groups.List)
	groups.GET("/detailed", anyRole, h.groups.Detailed)
	groups.GET("/:id", anyRole, h.groups.Get)
	groups.PATCH("/:id", admin, h.groups.Update)
	groups.DELETE("/:id", admin, h.groups.Delete)
	groups.GET("/:id/boletas", anyRole, h.groups.Boletas)
	groups.GET("/:id/boletas-finales", anyRole, h.groups.BoletasFinales)
	if h.exports != nil {
		groups.POST("/:id/boletas/export", adminDirector, h.exports.Create)
		secured.GET("/exports/status/:id", anyRole, h.exports.Status)
	}

	students := secured.Group("/students")
	students.POST("", adminTeacher, h.students.Create)
	students.GET("", adminTeacher, h.students.List)
	students.GET("/not-in-course-group/:courseGroupId", adminTeacher, h.students.NotInCourseGroup)
	students.GET("/:id", adminTeacher, h.students.Get)
	students.PATCH("/:id", adminTeacher, h.students.Update)
	students.DELETE("/:id", admin, h.students.Delete)

	courses := secured.Group("/courses")
	courses.POST("", admin, h.courses.Create)
	courses.GET("", adminTeacher, h.courses.List)
	courses.GET("/:id", adminTeacher, h.courses.Get)
	courses.PATCH("/:id", admin, h.courses.Update)
	courses.DELETE("/:id", admin, h.courses.Delete)

	courseGroups := secured.Group("/courses-groups")
	courseGroups.POST("", admin, h.courseGroups.Create)
	courseGroups.GET("/by-course/:courseId", admin, h.courseGroups.ListByCourse)
	courseGroups.GET("/:id", anyRole, h.courseGroups.Get)
	courseGroups.PATCH("/:id", admin, h.courseGroups.Update)
	courseGroups.DELETE("/:id", admin, h.courseGroups.Delete)
	courseGroups.GET("/:id/evaluations-data", anyRole, h.courseGroups.EvaluationsData)
	courseGroups.GET("/:id/complete-data", anyRole, h.courseGroups.CompleteData)
	courseGroups.GET("/:id/final-data", anyRole, h.courseGroups.FinalData)

	enrollments := secured.Group("/courses-groups-students")
	enrollments.POST("", adminTeacher, h.enrollments.Create)
	enrollments.GET("/findAll/:courseGroupId", anyRole, h.enrollments.ListByCourseGroup)
	enrollments.GET("/byGroup/:groupId", anyRole, h.enrollments.ListByGroup)
	enrollments.GET("/:id", anyRole, h.enrollments.Get)
	enrollments.DELETE("/:id", adminTeacher, h.enrollments.Delete)

	attendance := secured.Group("/courses-groups-attendances", adminTeacher)
	attendance.POST("", h.attendance.Create)
	attendance.GET("/student/:courseGroupStudentId", h.attendance.ListByStudent)
	attendance.GET("/:courseGroupId", h.attendance.ListByCourseGroup)
	attendance.PATCH("/:id", h.attendance.Update)
	attendance.DELETE("/:id", h.attendance.Delete)

	schemes := secured.Group("/courses-groups-gradingschemes")
	schemes.POST("", adminTeacher, h.schemes.Create)
	schemes.GET("/by-course-group/:courseGroupId", anyRole, h.schemes.ListByCourseGroup)
	schemes.GET("/:id", anyRole, h.schemes.Get)
	schemes.PATCH("/:id", adminTeacher, h.schemes.Update)
	schemes.DELETE("/:id", adminTeacher, h.schemes.Delete)

	evaluations := secured.Group("/partial-evaluations")
	evaluations.POST("", adminTeacher, h.evaluations.Create)
	evaluations.GET("/by-course-group/:courseGroupId", anyRole, h.evaluations.ListByCourseGroup)
	evaluations.GET("/:id", anyRole, h.evaluations.Get)
	evaluations.PATCH("/:id", adminTeacher, h.evaluations.Update)
	evaluations.DELETE("/:id", admin, h.evaluations.Delete)

	evaluationGrades := secured.Group("/partial-evaluation-grades", adminTeacher)
	evaluationGrades.POST("", h.evaluationGrades.Create)
	evaluationGrades.GET("/findAll/:courseGroupStudentId", h.evaluationGrades.ListByEnrollment)
	evaluationGrades.PATCH("/:id", h.evaluationGrades.Update)
	evaluationGrades.DELETE("/:id", h.evaluationGrades.Delete)

	partialGrades := secured.Group("/partial-grades", adminTeacher)
	partialGrades.POST("", h.partialGrades.Create)
	partialGrades.GET("/findAll/:courseGroupStudentId", h.partialGrades.List)
	partialGrades.GET("/:id", h.partialGrades.Get)
	partialGrades.PATCH("/:id", h.partialGrades.Update)
	partialGrades.DELETE("/:id", h.partialGrades.Delete)

	finalGrades := secured.Group("/final-grades", adminTeacher)
	finalGrades.POST("", h.finalGrades.Create)
	finalGrades.GET("/findAll/:courseGroupStudentId", h.finalGrades.List)
	finalGrades.GET("/:id", h.finalGrades.Get)
	finalGrades.PATCH("/:id", h.finalGrades.Update)
	finalGrades.DELETE("/:id", h.finalGrades.Delete)
}
