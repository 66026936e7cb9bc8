package services

import (
	"io"
	"strings"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   uint
	Role models.UserRole
}

func (a Actor) IsAdmin() bool   { return a.Role == models.RoleAdmin }
func (a Actor) IsTeacher() bool { return a.Role == models.RoleTeacher }
func (a Actor) IsStudent() bool { return a.Role == models.RoleStudent }

// fieldSet collects the non-nil fields of a partial update.
type fieldSet map[string]interface{}

func (f fieldSet) put(column string, value interface{}, present bool) {
	if present {
		f[column] = value
	}
}

// ===== AUTH AND USERS =====

type RegisterRequest struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8,strong_password"`
	PasswordConfirmation string `json:"password_confirmation" validate:"omitempty,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is a user with the list-shaped roles of the public API.
type UserResponse struct {
	*models.User
	Roles []string `json:"roles"`
}

func NewUserResponse(user *models.User) *UserResponse {
	return &UserResponse{User: user, Roles: user.Roles()}
}

type AuthResponse struct {
	User  *UserResponse `json:"user"`
	Token string        `json:"token"`
}

type CreateUserRequest struct {
	Name      string          `json:"name" validate:"required,max=255"`
	Email     string          `json:"email" validate:"required,email,max=255"`
	Password  string          `json:"password" validate:"required,min=8"`
	Role      models.UserRole `json:"role" validate:"required,user_role"`
	AvatarURL *string         `json:"avatar_url" validate:"omitempty,max=500"`
}

type UpdateUserRequest struct {
	Name      *string          `json:"name" validate:"omitempty,max=255"`
	Email     *string          `json:"email" validate:"omitempty,email,max=255"`
	Role      *models.UserRole `json:"role" validate:"omitempty,user_role"`
	AvatarURL *string          `json:"avatar_url" validate:"omitempty,max=500"`
}

type UpdateProfileRequest struct {
	Name      string  `json:"name" validate:"required,max=255"`
	Email     string  `json:"email" validate:"required,email,max=255"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,max=500"`
}

type ChangePasswordRequest struct {
	CurrentPassword      string `json:"password_actual" validate:"required"`
	NewPassword          string `json:"password_nuevo" validate:"required,min=8,strong_password"`
	PasswordConfirmation string `json:"password_nuevo_confirmation" validate:"required,eqfield=NewPassword"`
}

// ===== COURSES =====

type CreateCourseRequest struct {
	Title             string                  `json:"titulo" validate:"required,min=3,max=255"`
	Description       string                  `json:"descripcion" validate:"required,min=10"`
	Duration          int                     `json:"duracion" validate:"required,min=1,max=10000"`
	Level             models.CourseLevel      `json:"nivel" validate:"required,course_level"`
	Price             float64                 `json:"precio" validate:"min=0,max=999999"`
	Status            models.CourseStatus     `json:"estado" validate:"omitempty,course_status"`
	AccessType        models.CourseAccessType `json:"tipo" validate:"omitempty,course_access"`
	InstructorID      *uint                   `json:"instructor_id"`
	ImageURL          *string                 `json:"imagen_url" validate:"omitempty,url,max=500"`
	IntroVideoURL     *string                 `json:"video_introduccion" validate:"omitempty,url,max=500"`
	Prerequisites     *string                 `json:"requisitos_previos"`
	LearningGoals     *string                 `json:"objetivos_aprendizaje"`
	IncludedMaterials *string                 `json:"materiales_incluidos"`
}

// Normalize trims the title and lower-cases the enum fields so that
// "Principiante" and "principiante" validate the same way.
func (r *CreateCourseRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Level = models.CourseLevel(normalizeEnum(string(r.Level)))
	r.Status = models.CourseStatus(normalizeEnum(string(r.Status)))
	r.AccessType = models.CourseAccessType(normalizeEnum(string(r.AccessType)))
}

func (r *CreateCourseRequest) CheckRules(b *validator.BusinessValidator) ValidationErrors {
	if r.AccessType == models.AccessPaid && r.Price <= 0 {
		return NewValidationError("precio", "debe ser mayor a 0 para cursos de pago", r.Price)
	}
	return nil
}

type UpdateCourseRequest struct {
	Title             *string                  `json:"titulo" validate:"omitempty,min=3,max=255"`
	Description       *string                  `json:"descripcion" validate:"omitempty,min=10"`
	Duration          *int                     `json:"duracion" validate:"omitempty,min=1,max=10000"`
	Level             *models.CourseLevel      `json:"nivel" validate:"omitempty,course_level"`
	Price             *float64                 `json:"precio" validate:"omitempty,min=0,max=999999"`
	Status            *models.CourseStatus     `json:"estado" validate:"omitempty,course_status"`
	AccessType        *models.CourseAccessType `json:"tipo" validate:"omitempty,course_access"`
	InstructorID      *uint                    `json:"instructor_id"`
	ImageURL          *string                  `json:"imagen_url" validate:"omitempty,url,max=500"`
	IntroVideoURL     *string                  `json:"video_introduccion" validate:"omitempty,url,max=500"`
	Prerequisites     *string                  `json:"requisitos_previos"`
	LearningGoals     *string                  `json:"objetivos_aprendizaje"`
	IncludedMaterials *string                  `json:"materiales_incluidos"`
}

func (r *UpdateCourseRequest) Normalize() {
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		r.Title = &title
	}
	if r.Level != nil {
		level := models.CourseLevel(normalizeEnum(string(*r.Level)))
		r.Level = &level
	}
	if r.Status != nil {
		status := models.CourseStatus(normalizeEnum(string(*r.Status)))
		r.Status = &status
	}
	if r.AccessType != nil {
		access := models.CourseAccessType(normalizeEnum(string(*r.AccessType)))
		r.AccessType = &access
	}
}

func normalizeEnum(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (r *UpdateCourseRequest) Fields() map[string]interface{} {
	f := fieldSet{}
	if r.Title != nil {
		f.put("title", *r.Title, true)
	}
	if r.Description != nil {
		f.put("description", *r.Description, true)
	}
	if r.Duration != nil {
		f.put("duration", *r.Duration, true)
	}
	if r.Level != nil {
		f.put("level", *r.Level, true)
	}
	if r.Price != nil {
		f.put("price", *r.Price, true)
	}
	if r.Status != nil {
		f.put("status", *r.Status, true)
	}
	if r.AccessType != nil {
		f.put("access_type", *r.AccessType, true)
	}
	f.put("image_url", r.ImageURL, r.ImageURL != nil)
	f.put("intro_video_url", r.IntroVideoURL, r.IntroVideoURL != nil)
	f.put("prerequisites", r.Prerequisites, r.Prerequisites != nil)
	f.put("learning_goals", r.LearningGoals, r.LearningGoals != nil)
	f.put("included_materials", r.IncludedMaterials, r.IncludedMaterials != nil)
	return f
}

type InviteStudentRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type EnrollWithCodeRequest struct {
	Code string `json:"codigo_invitacion" validate:"required"`
}

// ===== ENROLLMENTS =====

type CreateEnrollmentRequest struct {
	UserID     uint                    `json:"user_id" validate:"required"`
	CourseID   uint                    `json:"curso_id" validate:"required"`
	Status     models.EnrollmentStatus `json:"estado" validate:"omitempty,enrollment_status"`
	EnrolledAt *time.Time              `json:"fecha_inscripcion"`
	Progress   *int                    `json:"progreso" validate:"omitempty,min=0,max=100"`
}

type UpdateEnrollmentRequest struct {
	Status   *models.EnrollmentStatus `json:"estado" validate:"omitempty,enrollment_status"`
	Progress *int                     `json:"progreso" validate:"omitempty,min=0,max=100"`
}

func (r *UpdateEnrollmentRequest) Fields() map[string]interface{} {
	f := fieldSet{}
	if r.Status != nil {
		f.put("status", *r.Status, true)
	}
	if r.Progress != nil {
		f.put("progress", *r.Progress, true)
	}
	return f
}

type UpdateProgressRequest struct {
	Progress *int `json:"progreso" validate:"required,min=0,max=100"`
}

// ===== LESSONS =====

type CreateLessonRequest struct {
	CourseID    uint                `json:"curso_id" validate:"required"`
	Title       string              `json:"titulo" validate:"required,max=255"`
	Description string              `json:"descripcion" validate:"required"`
	Content     string              `json:"contenido" validate:"required"`
	Duration    int                 `json:"duracion" validate:"required,min=1"`
	Order       int                 `json:"orden" validate:"required,min=1"`
	Status      models.LessonStatus `json:"estado" validate:"required,oneof=activo inactivo borrador"`
}

type UpdateLessonRequest struct {
	Title       *string              `json:"titulo" validate:"omitempty,max=255"`
	Description *string              `json:"descripcion"`
	Content     *string              `json:"contenido"`
	Duration    *int                 `json:"duracion" validate:"omitempty,min=1"`
	Order       *int                 `json:"orden" validate:"omitempty,min=1"`
	Status      *models.LessonStatus `json:"estado" validate:"omitempty,oneof=activo inactivo borrador"`
}

func (r *UpdateLessonRequest) Fields() map[string]interface{} {
	f := fieldSet{}
	if r.Title != nil {
		f.put("title", *r.Title, true)
	}
	if r.Description != nil {
		f.put("description", *r.Description, true)
	}
	if r.Content != nil {
		f.put("content", *r.Content, true)
	}
	if r.Duration != nil {
		f.put("duration", *r.Duration, true)
	}
	if r.Order != nil {
		f.put("sort_order", *r.Order, true)
	}
	if r.Status != nil {
		f.put("status", *r.Status, true)
	}
	return f
}

// ===== ASSIGNMENTS AND SUBMISSIONS =====

type CreateAssignmentRequest struct {
	CourseID    uint                    `json:"curso_id" validate:"required"`
	LessonID    *uint                   `json:"leccion_id"`
	Title       string                  `json:"titulo" validate:"required,max=255"`
	Description string                  `json:"descripcion" validate:"required"`
	AssignedAt  time.Time               `json:"fecha_asignacion" validate:"required"`
	DueAt       time.Time               `json:"fecha_entrega" validate:"required"`
	Type        models.AssignmentType   `json:"tipo" validate:"required,oneof=individual grupal opcional"`
	MaxPoints   int                     `json:"puntos_maximos" validate:"required,min=1,max=100"`
	Status      models.AssignmentStatus `json:"estado" validate:"required,oneof=activa inactiva borrador"`
}

func (r *CreateAssignmentRequest) CheckRules(b *validator.BusinessValidator) ValidationErrors {
	return b.ValidateAssignmentDates(r.AssignedAt, r.DueAt)
}

type UpdateAssignmentRequest struct {
	LessonID    *uint                    `json:"leccion_id"`
	Title       *string                  `json:"titulo" validate:"omitempty,max=255"`
	Description *string                  `json:"descripcion"`
	AssignedAt  *time.Time               `json:"fecha_asignacion"`
	DueAt       *time.Time               `json:"fecha_entrega"`
	Type        *models.AssignmentType   `json:"tipo" validate:"omitempty,oneof=individual grupal opcional"`
	MaxPoints   *int                     `json:"puntos_maximos" validate:"omitempty,min=1,max=100"`
	Status      *models.AssignmentStatus `json:"estado" validate:"omitempty,oneof=activa inactiva borrador"`
}

func (r *UpdateAssignmentRequest) Fields() map[string]interface{} {
	f := fieldSet{}
	f.put("lesson_id", r.LessonID, r.LessonID != nil)
	if r.Title != nil {
		f.put("title", *r.Title, true)
	}
	if r.Description != nil {
		f.put("description", *r.Description, true)
	}
	if r.AssignedAt != nil {
		f.put("assigned_at", *r.AssignedAt, true)
	}
	if r.DueAt != nil {
		f.put("due_at", *r.DueAt, true)
	}
	if r.Type != nil {
		f.put("type", *r.Type, true)
	}
	if r.MaxPoints != nil {
		f.put("max_points", *r.MaxPoints, true)
	}
	if r.Status != nil {
		f.put("status", *r.Status, true)
	}
	return f
}

// PendingAssignment is an unsubmitted assignment on the student dashboard.
type PendingAssignment struct {
	*models.Assignment
	DaysLeft int    `json:"dias_restantes"`
	Priority string `json:"prioridad"`      // alta, media, baja
	State    string `json:"estado_entrega"` // vencida, pendiente
}

type UpdateSubmissionRequest struct {
	Comments        *string                  `json:"comentarios"`
	Grade           *float64                 `json:"calificacion" validate:"omitempty,min=0,max=100"`
	TeacherComments *string                  `json:"comentarios_profesor"`
	Status          *models.SubmissionStatus `json:"estado" validate:"omitempty,oneof=entregada calificada rechazada"`
}

func (r *UpdateSubmissionRequest) Fields() map[string]interface{} {
	f := fieldSet{}
	f.put("comments", r.Comments, r.Comments != nil)
	f.put("grade", r.Grade, r.Grade != nil)
	f.put("teacher_comments", r.TeacherComments, r.TeacherComments != nil)
	if r.Status != nil {
		f.put("status", *r.Status, true)
	}
	return f
}

type GradeSubmissionRequest struct {
	Grade           *float64 `json:"calificacion" validate:"required,min=0,max=100"`
	TeacherComments *string  `json:"comentarios_profesor"`
}

// UploadedFile is a multipart upload handed to a service.
type UploadedFile struct {
	Name    string
	Size    int64
	Content io.Reader
}

// ===== GRADES =====

type CreateGradeRequest struct {
	StudentID      uint                  `json:"estudiante_id" validate:"required"`
	CourseID       uint                  `json:"curso_id" validate:"required"`
	LessonID       *uint                 `json:"leccion_id"`
	EvaluationType models.EvaluationType `json:"tipo_evaluacion" validate:"required,oneof=tarea examen proyecto participacion quiz trabajo_final"`
	Score          *float64              `json:"calificacion" validate:"required,min=0,max=100"`
	Weight         *float64              `json:"peso" validate:"omitempty,min=0,max=1"`
	Comments       *string               `json:"comentarios"`
	EvaluatedAt    *time.Time            `json:"fecha_evaluacion"`
	Status         models.GradeStatus    `json:"estado" validate:"omitempty,oneof=borrador publicada revisada"`
}

type UpdateGradeRequest struct {
	LessonID       *uint                  `json:"leccion_id"`
	EvaluationType *models.EvaluationType `json:"tipo_evaluacion" validate:"omitempty,oneof=tarea examen proyecto participacion quiz trabajo_final"`
	Score          *float64               `json:"calificacion" validate:"omitempty,min=0,max=100"`
	Weight         *float64               `json:"peso" validate:"omitempty,min=0,max=1"`
	Comments       *string                `json:"comentarios"`
	EvaluatedAt    *time.Time             `json:"fecha_evaluacion"`
	Status         *models.GradeStatus    `json:"estado" validate:"omitempty,oneof=borrador publicada revisada"`
}

func (r *UpdateGradeRequest) Fields() map[string]interface{} {
	f := fieldSet{}
	f.put("lesson_id", r.LessonID, r.LessonID != nil)
	if r.EvaluationType != nil {
		f.put("evaluation_type", *r.EvaluationType, true)
	}
	if r.Score != nil {
		f.put("score", *r.Score, true)
	}
	if r.Weight != nil {
		f.put("weight", *r.Weight, true)
	}
	f.put("comments", r.Comments, r.Comments != nil)
	if r.EvaluatedAt != nil {
		f.put("evaluated_at", *r.EvaluatedAt, true)
	}
	if r.Status != nil {
		f.put("status", *r.Status, true)
	}
	return f
}

type PublishGradesRequest struct {
	GradeIDs []uint `json:"calificaciones" validate:"required,min=1,dive,required"`
}

// ===== MESSAGES =====

type SendMessageRequest struct {
	RecipientID uint               `json:"destinatario_id" validate:"required"`
	Subject     string             `json:"asunto" validate:"required,max=255"`
	Body        string             `json:"contenido" validate:"required"`
	Type        models.MessageType `json:"tipo" validate:"omitempty,oneof=consulta respuesta notificacion general"`
}

type UpdateMessageRequest struct {
	Subject *string               `json:"asunto" validate:"omitempty,max=255"`
	Body    *string               `json:"contenido"`
	Type    *models.MessageType   `json:"tipo" validate:"omitempty,oneof=consulta respuesta notificacion general"`
	Status  *models.MessageStatus `json:"estado" validate:"omitempty,oneof=enviado leido archivado"`
}

func (r *UpdateMessageRequest) Fields() map[string]interface{} {
	f := fieldSet{}
	if r.Subject != nil {
		f.put("subject", *r.Subject, true)
	}
	if r.Body != nil {
		f.put("body", *r.Body, true)
	}
	if r.Type != nil {
		f.put("type", *r.Type, true)
	}
	if r.Status != nil {
		f.put("status", *r.Status, true)
	}
	return f
}

// ===== ATTENDANCE =====

type RecordAttendanceRequest struct {
	StudentID uint                    `json:"estudiante_id" validate:"required"`
	CourseID  uint                    `json:"curso_id" validate:"required"`
	Date      time.Time               `json:"fecha" validate:"required"`
	Status    models.AttendanceStatus `json:"estado" validate:"required,oneof=presente ausente tardanza justificado"`
	Notes     *string                 `json:"observaciones" validate:"omitempty,max=500"`
}

func (r *RecordAttendanceRequest) CheckRules(b *validator.BusinessValidator) ValidationErrors {
	if r.Date.After(b.Now()) {
		return NewValidationError("fecha", "no puede ser una fecha futura", r.Date)
	}
	return nil
}

type UpdateAttendanceRequest struct {
	Date   *time.Time               `json:"fecha"`
	Status *models.AttendanceStatus `json:"estado" validate:"omitempty,oneof=presente ausente tardanza justificado"`
	Notes  *string                  `json:"observaciones" validate:"omitempty,max=500"`
}

// ===== PAYMENTS AND CONTACT =====

type PayCourseRequest struct {
	Method        models.PaymentMethod `json:"metodo_pago" validate:"required,oneof=tarjeta paypal"`
	Token         string               `json:"token" validate:"required_if=Method tarjeta"`
	PayPalOrderID string               `json:"paypal_order_id" validate:"required_if=Method paypal"`
}

type ContactRequest struct {
	Name    string  `json:"nombre" validate:"required,max=100"`
	Email   string  `json:"email" validate:"required,email,max=100"`
	Phone   *string `json:"telefono" validate:"omitempty,max=20"`
	Subject *string `json:"asunto" validate:"omitempty,max=255"`
	Message string  `json:"mensaje" validate:"required,max=2000"`
}

// ===== RESOURCES AND MULTIMEDIA =====

type CreateResourceRequest struct {
	Title           string                `json:"titulo" validate:"required,max=255"`
	Description     string                `json:"descripcion" validate:"required"`
	Type            models.ResourceType   `json:"tipo" validate:"required,resource_type"`
	URL             *string               `json:"url" validate:"omitempty,url,max=500"`
	FileURL         *string               `json:"archivo_url" validate:"omitempty,url,max=500"`
	CourseID        uint                  `json:"curso_id" validate:"required"`
	LessonID        *uint                 `json:"leccion_id"`
	Required        bool                  `json:"es_obligatorio"`
	Order           int                   `json:"orden" validate:"min=0"`
	Author          *string               `json:"autor" validate:"omitempty,max=255"`
	Publisher       *string               `json:"editorial" validate:"omitempty,max=255"`
	ISBN            *string               `json:"isbn" validate:"omitempty,max=32"`
	PublicationYear *int                  `json:"anio_publicacion" validate:"omitempty,min=1000,max=9999"`
	Price           *float64              `json:"precio" validate:"omitempty,min=0,max=999999"`
	Status          models.ResourceStatus `json:"estado" validate:"omitempty,resource_status"`
}

func (r *CreateResourceRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Type = models.ResourceType(normalizeEnum(string(r.Type)))
	r.Status = models.ResourceStatus(normalizeEnum(string(r.Status)))
}

type UpdateResourceRequest struct {
	Title           *string                `json:"titulo" validate:"omitempty,max=255"`
	Description     *string                `json:"descripcion"`
	Type            *models.ResourceType   `json:"tipo" validate:"omitempty,resource_type"`
	URL             *string                `json:"url" validate:"omitempty,url,max=500"`
	FileURL         *string                `json:"archivo_url" validate:"omitempty,url,max=500"`
	LessonID        *uint                  `json:"leccion_id"`
	Required        *bool                  `json:"es_obligatorio"`
	Order           *int                   `json:"orden" validate:"omitempty,min=0"`
	Author          *string                `json:"autor" validate:"omitempty,max=255"`
	Publisher       *string                `json:"editorial" validate:"omitempty,max=255"`
	ISBN            *string                `json:"isbn" validate:"omitempty,max=32"`
	PublicationYear *int                   `json:"anio_publicacion" validate:"omitempty,min=1000,max=9999"`
	Price           *float64               `json:"precio" validate:"omitempty,min=0,max=999999"`
	Status          *models.ResourceStatus `json:"estado" validate:"omitempty,resource_status"`
}

func (r *UpdateResourceRequest) Normalize() {
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		r.Title = &title
	}
	if r.Type != nil {
		kind := models.ResourceType(normalizeEnum(string(*r.Type)))
		r.Type = &kind
	}
	if r.Status != nil {
		status := models.ResourceStatus(normalizeEnum(string(*r.Status)))
		r.Status = &status
	}
}

func (r *UpdateResourceRequest) Fields() map[string]interface{} {
	f := fieldSet{}
	if r.Title != nil {
		f.put("title", *r.Title, true)
	}
	if r.Description != nil {
		f.put("description", *r.Description, true)
	}
	if r.Type != nil {
		f.put("type", *r.Type, true)
	}
	if r.Required != nil {
		f.put("required", *r.Required, true)
	}
	if r.Order != nil {
		f.put("sort_order", *r.Order, true)
	}
	if r.Status != nil {
		f.put("status", *r.Status, true)
	}
	f.put("url", r.URL, r.URL != nil)
	f.put("file_url", r.FileURL, r.FileURL != nil)
	f.put("lesson_id", r.LessonID, r.LessonID != nil)
	f.put("author", r.Author, r.Author != nil)
	f.put("publisher", r.Publisher, r.Publisher != nil)
	f.put("isbn", r.ISBN, r.ISBN != nil)
	f.put("publication_year", r.PublicationYear, r.PublicationYear != nil)
	f.put("price", r.Price, r.Price != nil)
	return f
}

// ResourceQuery is the caller-supplied part of a resource listing.
type ResourceQuery struct {
	CourseID *uint
	Type     *models.ResourceType
	Status   *models.ResourceStatus
	Term     string
	Page     int
	PerPage  int
}

// CreateMultimediaRequest arrives as JSON with an external url or as a
// multipart form with the file under "archivo".
type CreateMultimediaRequest struct {
	Title       string                  `json:"titulo" form:"titulo" validate:"required,max=255"`
	Description string                  `json:"descripcion" form:"descripcion" validate:"required"`
	Type        models.MultimediaType   `json:"tipo" form:"tipo" validate:"required,media_type"`
	URL         string                  `json:"url" form:"url" validate:"omitempty,url,max=500"`
	LessonID    uint                    `json:"leccion_id" form:"leccion_id" validate:"required"`
	Order       int                     `json:"orden" form:"orden" validate:"required,min=1"`
	Status      models.MultimediaStatus `json:"estado" form:"estado" validate:"omitempty,media_status"`
}

func (r *CreateMultimediaRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.URL = strings.TrimSpace(r.URL)
	r.Type = models.MultimediaType(normalizeEnum(string(r.Type)))
	r.Status = models.MultimediaStatus(normalizeEnum(string(r.Status)))
}

type UpdateMultimediaRequest struct {
	Title       *string                  `json:"titulo" validate:"omitempty,max=255"`
	Description *string                  `json:"descripcion"`
	Type        *models.MultimediaType   `json:"tipo" validate:"omitempty,media_type"`
	URL         *string                  `json:"url" validate:"omitempty,url,max=500"`
	LessonID    *uint                    `json:"leccion_id"`
	Order       *int                     `json:"orden" validate:"omitempty,min=1"`
	Status      *models.MultimediaStatus `json:"estado" validate:"omitempty,media_status"`
}

func (r *UpdateMultimediaRequest) Fields() map[string]interface{} {
	f := fieldSet{}
	if r.Title != nil {
		f.put("title", strings.TrimSpace(*r.Title), true)
	}
	if r.Description != nil {
		f.put("description", *r.Description, true)
	}
	if r.Type != nil {
		f.put("type", models.MultimediaType(normalizeEnum(string(*r.Type))), true)
	}
	if r.URL != nil {
		f.put("url", strings.TrimSpace(*r.URL), true)
	}
	if r.LessonID != nil {
		f.put("lesson_id", *r.LessonID, true)
	}
	if r.Order != nil {
		f.put("sort_order", *r.Order, true)
	}
	if r.Status != nil {
		f.put("status", models.MultimediaStatus(normalizeEnum(string(*r.Status))), true)
	}
	return f
}

// ===== NOTIFICATIONS =====

// NotificationRequest describes one inbox entry sent to many users.
type NotificationRequest struct {
	Type    models.NotificationType
	Title   string
	Message string
	Data    map[string]interface{}
}
