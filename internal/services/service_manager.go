package services

import (
	"log/slog"

	"github.com/SAP-F-2025/lms-service/internal/auth"
	"github.com/SAP-F-2025/lms-service/internal/cache"
	"github.com/SAP-F-2025/lms-service/internal/events"
	"github.com/SAP-F-2025/lms-service/internal/metrics"
	"github.com/SAP-F-2025/lms-service/internal/notify"
	"github.com/SAP-F-2025/lms-service/internal/payment"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/storage"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

// ServiceManager hands out the application services to the HTTP layer and jobs.
type ServiceManager interface {
	Auth() AuthService
	User() UserService
	Course() CourseService
	Enrollment() EnrollmentService
	Lesson() LessonService
	Assignment() AssignmentService
	Submission() SubmissionService
	Grade() GradeService
	Export() ExportService
	Message() MessageService
	Attendance() AttendanceService
	Payment() PaymentService
	Contact() ContactService
	Dashboard() DashboardService
	Analytics() AnalyticsService
	Resource() ResourceService
	Multimedia() MultimediaService
	Notification() NotificationService
	NotificationEvents() NotificationEventService
}

// Dependencies are the infrastructure pieces the services are built from.
type Dependencies struct {
	Repo               repositories.Repository
	CourseCache        repositories.CourseCacheInvalidator
	Cache              cache.CacheService
	Tokens             *auth.JWTManager
	Publisher          events.EventPublisher
	Mailer             notify.Mailer
	Gateway            payment.Gateway
	Files              storage.FileStorage
	Collector          *metrics.Collector
	Validator          *validator.Validator
	Logger             *slog.Logger
	ContactDestination string
	Currency           string
	MaxUploadBytes     int64
	MaxMediaBytes      int64
}

type serviceManager struct {
	auth         AuthService
	user         UserService
	course       CourseService
	enrollment   EnrollmentService
	lesson       LessonService
	assignment   AssignmentService
	submission   SubmissionService
	grade        GradeService
	export       ExportService
	message      MessageService
	attendance   AttendanceService
	payment      PaymentService
	contact      ContactService
	dashboard    DashboardService
	analytics    AnalyticsService
	resource     ResourceService
	multimedia   MultimediaService
	notification NotificationService
	events       NotificationEventService
}

func NewServiceManager(deps Dependencies) ServiceManager {
	logger, v, repo := deps.Logger, deps.Validator, deps.Repo

	inbox := NewNotificationService(repo, logger)
	notifier := NewNotificationEventService(repo, deps.Publisher, inbox, logger)
	assignments := NewAssignmentService(repo, logger, v)

	return &serviceManager{
		auth:         NewAuthService(repo, deps.Tokens, logger, v),
		user:         NewUserService(repo, logger, v),
		course:       NewCourseService(repo, logger, v),
		enrollment:   NewEnrollmentService(repo, deps.CourseCache, notifier, deps.Mailer, logger, v),
		lesson:       NewLessonService(repo, deps.CourseCache, logger, v),
		assignment:   assignments,
		submission:   NewSubmissionService(repo, deps.Files, notifier, deps.MaxUploadBytes, logger, v),
		grade:        NewGradeService(repo, notifier, logger, v),
		export:       NewExportService(repo, logger),
		message:      NewMessageService(repo, logger, v),
		attendance:   NewAttendanceService(repo, logger, v),
		payment:      NewPaymentService(repo, deps.Gateway, deps.CourseCache, notifier, deps.Currency, logger, v),
		contact:      NewContactService(repo, deps.Mailer, notifier, deps.ContactDestination, logger, v),
		dashboard:    NewDashboardService(repo, assignments, logger),
		analytics:    NewAnalyticsService(repo, deps.Cache, deps.Collector, logger),
		resource:     NewResourceService(repo, logger, v),
		multimedia:   NewMultimediaService(repo, deps.Files, deps.MaxMediaBytes, logger, v),
		notification: inbox,
		events:       notifier,
	}
}

func (m *serviceManager) Auth() AuthService                 { return m.auth }
func (m *serviceManager) User() UserService                 { return m.user }
func (m *serviceManager) Course() CourseService             { return m.course }
func (m *serviceManager) Enrollment() EnrollmentService     { return m.enrollment }
func (m *serviceManager) Lesson() LessonService             { return m.lesson }
func (m *serviceManager) Assignment() AssignmentService     { return m.assignment }
func (m *serviceManager) Submission() SubmissionService     { return m.submission }
func (m *serviceManager) Grade() GradeService               { return m.grade }
func (m *serviceManager) Export() ExportService             { return m.export }
func (m *serviceManager) Message() MessageService           { return m.message }
func (m *serviceManager) Attendance() AttendanceService     { return m.attendance }
func (m *serviceManager) Payment() PaymentService           { return m.payment }
func (m *serviceManager) Contact() ContactService           { return m.contact }
func (m *serviceManager) Dashboard() DashboardService       { return m.dashboard }
func (m *serviceManager) Analytics() AnalyticsService       { return m.analytics }
func (m *serviceManager) Resource() ResourceService         { return m.resource }
func (m *serviceManager) Multimedia() MultimediaService     { return m.multimedia }
func (m *serviceManager) Notification() NotificationService { return m.notification }

func (m *serviceManager) NotificationEvents() NotificationEventService { return m.events }
