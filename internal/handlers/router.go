package handlers

import (
	"net/http"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/metrics"
	"github.com/SAP-F-2025/lms-service/internal/middleware"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "lms-service"

type HandlerManager struct {
	authHandler       *AuthHandler
	userHandler       *UserHandler
	courseHandler     *CourseHandler
	lessonHandler     *LessonHandler
	enrollmentHandler *EnrollmentHandler
	assignmentHandler *AssignmentHandler
	submissionHandler *SubmissionHandler
	gradeHandler      *GradeHandler
	messageHandler    *MessageHandler
	attendanceHandler *AttendanceHandler
	paymentHandler    *PaymentHandler
	contactHandler    *ContactHandler
	dashboardHandler  *DashboardHandler
	analyticsHandler  *AnalyticsHandler
	resourceHandler   *ResourceHandler
	multimediaHandler *MultimediaHandler
	notifyHandler     *NotificationHandler
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		authHandler:       NewAuthHandler(serviceManager.Auth(), logger),
		userHandler:       NewUserHandler(serviceManager.User(), logger),
		courseHandler:     NewCourseHandler(serviceManager.Course(), serviceManager.Lesson(), logger),
		lessonHandler:     NewLessonHandler(serviceManager.Lesson(), logger),
		enrollmentHandler: NewEnrollmentHandler(serviceManager.Enrollment(), logger),
		assignmentHandler: NewAssignmentHandler(serviceManager.Assignment(), logger),
		submissionHandler: NewSubmissionHandler(serviceManager.Submission(), logger),
		gradeHandler:      NewGradeHandler(serviceManager.Grade(), serviceManager.Export(), logger),
		messageHandler:    NewMessageHandler(serviceManager.Message(), logger),
		attendanceHandler: NewAttendanceHandler(serviceManager.Attendance(), logger),
		paymentHandler:    NewPaymentHandler(serviceManager.Payment(), logger),
		contactHandler:    NewContactHandler(serviceManager.Contact(), logger),
		dashboardHandler:  NewDashboardHandler(serviceManager.Dashboard(), logger),
		analyticsHandler:  NewAnalyticsHandler(serviceManager.Analytics(), logger),
		resourceHandler:   NewResourceHandler(serviceManager.Resource(), logger),
		multimediaHandler: NewMultimediaHandler(serviceManager.Multimedia(), logger),
		notifyHandler:     NewNotificationHandler(serviceManager.Notification(), logger),
	}
}

// RouterOptions carries the middleware dependencies of the engine.
type RouterOptions struct {
	Auth            *middleware.AuthMiddleware
	Limiter         middleware.Limiter
	RateLimitMax    int
	RateLimitWindow time.Duration
	CORSOrigins     []string
	Collector       *metrics.Collector
}

// NewRouter builds the gin engine with the global middleware chain and every API route.
func NewRouter(hm *HandlerManager, opts RouterOptions, logger utils.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		otelgin.Middleware(serviceName),
		middleware.RequestID(),
		middleware.CORS(opts.CORSOrigins),
		middleware.RequestLogging(logger),
	)
	if opts.Collector != nil {
		router.Use(middleware.Metrics(opts.Collector))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Success: false, Message: "Ruta no encontrada"})
	})

	// The limiter runs after Identify so signed-in callers are keyed by user id.
	apiChain := []gin.HandlerFunc{opts.Auth.Identify()}
	if opts.Limiter != nil {
		apiChain = append(apiChain, middleware.RateLimit(opts.Limiter, opts.RateLimitMax, opts.RateLimitWindow, logger))
	}

	hm.SetupRoutes(router, opts.Auth, opts.Collector, apiChain...)
	return router
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, auth *middleware.AuthMiddleware, collector *metrics.Collector, apiChain ...gin.HandlerFunc) {
	router.GET("/health", HealthCheck(collector))

	staff := middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	api := router.Group("/api", apiChain...)

	// Public routes
	{
		api.POST("/register", hm.authHandler.Register)
		api.POST("/login", hm.authHandler.Login)
		api.POST("/contacto", hm.contactHandler.SubmitContact)

		api.GET("/cursos", hm.courseHandler.ListCourses)
		api.GET("/cursos/populares", hm.courseHandler.PopularCourses)
		api.GET("/cursos/estadisticas", hm.courseHandler.CourseStatistics)
		api.GET("/cursos/:id", hm.courseHandler.GetCourse)
		api.GET("/cursos/:id/lecciones", hm.courseHandler.CourseLessons)
		api.GET("/cursos/:id/multimedia", hm.multimediaHandler.CourseMultimedia)
	}

	secured := api.Group("", auth.RequireAuth())
	{
		secured.POST("/logout", hm.authHandler.Logout)
		secured.GET("/user", hm.authHandler.CurrentUser)

		// Courses
		secured.POST("/cursos", staff, hm.courseHandler.CreateCourse)
		secured.PUT("/cursos/:id", staff, hm.courseHandler.UpdateCourse)
		secured.DELETE("/cursos/:id", staff, hm.courseHandler.DeleteCourse)

		// Course access side-channels
		secured.POST("/cursos/:id/invitar", staff, hm.enrollmentHandler.InviteStudent)
		secured.POST("/cursos/:id/generar-codigo-invitacion", staff, hm.enrollmentHandler.GenerateInvitationCode)
		secured.POST("/cursos/:id/agregar-alumno", staff, hm.enrollmentHandler.AddStudent)
		secured.POST("/cursos/:id/inscribirse", hm.enrollmentHandler.EnrollWithCode)
		secured.POST("/cursos/:id/pagar", hm.paymentHandler.PayCourse)

		// Lessons
		lessons := secured.Group("/lecciones")
		{
			lessons.POST("", staff, hm.lessonHandler.CreateLesson)
			lessons.GET("/:id", hm.lessonHandler.GetLesson)
			lessons.PUT("/:id", staff, hm.lessonHandler.UpdateLesson)
			lessons.DELETE("/:id", staff, hm.lessonHandler.DeleteLesson)
			lessons.GET("/:id/tareas", hm.assignmentHandler.LessonAssignments)
			lessons.GET("/:id/multimedia", hm.multimediaHandler.LessonMultimedia)
		}

		// Additional resources
		resources := secured.Group("/recursos")
		{
			resources.GET("", hm.resourceHandler.ListResources)
			resources.POST("", staff, hm.resourceHandler.CreateResource)
			resources.GET("/buscar", hm.resourceHandler.SearchResources)
			resources.GET("/tipo/:tipo", hm.resourceHandler.ResourcesByType)
			resources.GET("/:id", hm.resourceHandler.GetResource)
			resources.PUT("/:id", staff, hm.resourceHandler.UpdateResource)
			resources.DELETE("/:id", staff, hm.resourceHandler.DeleteResource)
		}
		secured.GET("/cursos/:id/recursos", hm.resourceHandler.CourseResources)

		// Multimedia
		media := secured.Group("/multimedia")
		{
			media.GET("", hm.multimediaHandler.ListMultimedia)
			media.POST("", staff, hm.multimediaHandler.CreateMultimedia)
			media.GET("/:id", hm.multimediaHandler.GetMultimedia)
			media.PUT("/:id", staff, hm.multimediaHandler.UpdateMultimedia)
			media.DELETE("/:id", staff, hm.multimediaHandler.DeleteMultimedia)
		}

		// Assignments
		assignments := secured.Group("/tareas")
		{
			assignments.GET("", hm.assignmentHandler.ListAssignments)
			assignments.POST("", staff, hm.assignmentHandler.CreateAssignment)
			assignments.GET("/:id", hm.assignmentHandler.GetAssignment)
			assignments.PUT("/:id", staff, hm.assignmentHandler.UpdateAssignment)
			assignments.DELETE("/:id", staff, hm.assignmentHandler.DeleteAssignment)
			assignments.GET("/:id/entregas", hm.submissionHandler.AssignmentSubmissions)
		}
		secured.GET("/cursos/:id/tareas", hm.assignmentHandler.CourseAssignments)

		// Submissions
		submissions := secured.Group("/entregas-tareas")
		{
			submissions.GET("", hm.submissionHandler.ListSubmissions)
			submissions.POST("", hm.submissionHandler.CreateSubmission)
			submissions.GET("/:id", hm.submissionHandler.GetSubmission)
			submissions.PUT("/:id", hm.submissionHandler.UpdateSubmission)
			submissions.DELETE("/:id", hm.submissionHandler.DeleteSubmission)
			submissions.PUT("/:id/calificar", staff, hm.submissionHandler.GradeSubmission)
		}
		secured.GET("/estudiantes/:id/entregas", hm.submissionHandler.StudentSubmissions)

		// Grades
		grades := secured.Group("/calificaciones", staff)
		{
			grades.GET("", hm.gradeHandler.ListGrades)
			grades.POST("", hm.gradeHandler.CreateGrade)
			grades.POST("/publicar", hm.gradeHandler.PublishGrades)
			grades.GET("/:id", hm.gradeHandler.GetGrade)
			grades.PUT("/:id", hm.gradeHandler.UpdateGrade)
			grades.DELETE("/:id", hm.gradeHandler.DeleteGrade)
		}
		secured.GET("/cursos/:id/calificaciones", staff, hm.gradeHandler.CourseGrades)
		secured.GET("/cursos/:id/calificaciones/exportar", staff, hm.gradeHandler.ExportCourseGrades)
		secured.GET("/estudiantes/:id/cursos/:curso/promedio", staff, hm.gradeHandler.StudentAverage)
		secured.GET("/estudiantes/:id/calificaciones", hm.gradeHandler.StudentGrades)

		// Attendance
		attendance := secured.Group("/asistencias", staff)
		{
			attendance.GET("", hm.attendanceHandler.ListAttendance)
			attendance.POST("", hm.attendanceHandler.RecordAttendance)
			attendance.GET("/:id", hm.attendanceHandler.GetAttendance)
			attendance.PUT("/:id", hm.attendanceHandler.UpdateAttendance)
			attendance.DELETE("/:id", hm.attendanceHandler.DeleteAttendance)
		}
		secured.GET("/cursos/:id/asistencias", staff, hm.attendanceHandler.CourseAttendance)
		secured.GET("/cursos/:id/asistencias/estadisticas", staff, hm.attendanceHandler.CourseAttendanceStatistics)
		secured.GET("/estudiantes/:id/asistencias", staff, hm.attendanceHandler.StudentAttendance)

		// Enrollments
		enrollments := secured.Group("/inscripciones")
		{
			enrollments.GET("", hm.enrollmentHandler.ListEnrollments)
			enrollments.POST("", hm.enrollmentHandler.CreateEnrollment)
			enrollments.GET("/:id", hm.enrollmentHandler.GetEnrollment)
			enrollments.PUT("/:id", hm.enrollmentHandler.UpdateEnrollment)
			enrollments.DELETE("/:id", hm.enrollmentHandler.DeleteEnrollment)
		}
		secured.GET("/cursos/:id/inscripciones", hm.enrollmentHandler.CourseEnrollments)

		// Messages
		messages := secured.Group("/mensajes")
		{
			messages.GET("", hm.messageHandler.ListMessages)
			messages.POST("", hm.messageHandler.SendMessage)
			messages.GET("/enviados", hm.messageHandler.SentMessages)
			messages.GET("/recibidos", hm.messageHandler.ReceivedMessages)
			messages.GET("/:id", hm.messageHandler.GetMessage)
			messages.PUT("/:id", hm.messageHandler.UpdateMessage)
			messages.DELETE("/:id", hm.messageHandler.DeleteMessage)
			messages.PUT("/:id/leer", hm.messageHandler.MarkRead)
		}

		// Notifications
		notifications := secured.Group("/notificaciones")
		{
			notifications.GET("", hm.notifyHandler.ListNotifications)
			notifications.PUT("/leer-todas", hm.notifyHandler.MarkAllRead)
			notifications.PUT("/:id/leer", hm.notifyHandler.MarkRead)
		}

		// Analytics
		analytics := secured.Group("/analytics", adminOnly)
		{
			analytics.GET("/dashboard", hm.analyticsHandler.Dashboard)
			analytics.GET("/cursos/:id", hm.analyticsHandler.CourseAnalytics)
			analytics.GET("/usuarios/:id", hm.analyticsHandler.UserAnalytics)
		}

		// Admin
		admin := secured.Group("/admin", adminOnly)
		{
			admin.GET("/dashboard", hm.dashboardHandler.AdminDashboard)
			admin.GET("/stats", hm.dashboardHandler.AdminStats)
			admin.GET("/users", hm.userHandler.ListUsers)
			admin.POST("/users", hm.userHandler.CreateUser)
			admin.GET("/users/:id", hm.userHandler.GetUser)
			admin.PUT("/users/:id", hm.userHandler.UpdateUser)
			admin.DELETE("/users/:id", hm.userHandler.DeleteUser)
		}

		// Teacher
		teacher := secured.Group("/profesor", middleware.RequireRoles(models.RoleTeacher))
		{
			teacher.GET("/dashboard", hm.dashboardHandler.TeacherDashboard)
			teacher.GET("/pagos", hm.paymentHandler.TeacherPayments)
			teacher.GET("/cursos", hm.dashboardHandler.TeacherCourses)
			teacher.GET("/cursos/:id/estudiantes", hm.dashboardHandler.TeacherCourseStudents)
			teacher.GET("/cursos/:id/lecciones", hm.lessonHandler.InstructorLessons)
			teacher.GET("/cursos/:id/tareas", hm.assignmentHandler.CourseAssignments)
			teacher.GET("/cursos/:id/estadisticas", hm.dashboardHandler.TeacherCourseStatistics)
			teacher.POST("/lecciones", hm.lessonHandler.CreateLesson)
			teacher.POST("/tareas", hm.assignmentHandler.CreateAssignment)
			teacher.PUT("/inscripciones/:id/progreso", hm.enrollmentHandler.UpdateProgress)
			teacher.GET("/tareas/:id/entregas", hm.submissionHandler.AssignmentSubmissions)
			teacher.PUT("/entregas/:id/calificar", hm.submissionHandler.GradeSubmission)
		}

		// Student
		student := secured.Group("/estudiante", middleware.RequireRoles(models.RoleStudent))
		{
			student.GET("/dashboard", hm.dashboardHandler.StudentDashboard)
			student.GET("/materias", hm.dashboardHandler.StudentCourses)
			student.GET("/tareas-pendientes", hm.assignmentHandler.PendingAssignments)
			student.GET("/tareas/:id", hm.assignmentHandler.StudentAssignment)
			student.POST("/tareas/:id/entregar", hm.submissionHandler.SubmitAssignment)
			student.GET("/calificaciones", hm.dashboardHandler.StudentGrades)
			student.GET("/perfil", hm.userHandler.Profile)
			student.PUT("/perfil", hm.userHandler.UpdateProfile)
			student.PUT("/cambiar-contrasena", hm.userHandler.ChangePassword)
		}
	}
}

// HealthCheck reports liveness together with the request metrics snapshot.
func HealthCheck(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"status":  "healthy",
			"service": serviceName,
		}
		if collector != nil {
			body["rendimiento"] = collector.Snapshot()
		}
		c.JSON(http.StatusOK, body)
	}
}
