package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/storage"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

// MultimediaService manages the videos, audio, documents and images attached to lessons.
type MultimediaService interface {
	// Create stores file when given; otherwise the request must carry an external url.
	Create(ctx context.Context, actor Actor, req *CreateMultimediaRequest, file *UploadedFile) (*models.Multimedia, error)
	Get(ctx context.Context, actor Actor, id uint) (*models.Multimedia, error)
	Update(ctx context.Context, actor Actor, id uint, req *UpdateMultimediaRequest) (*models.Multimedia, error)
	Delete(ctx context.Context, actor Actor, id uint) error

	List(ctx context.Context, actor Actor) ([]*models.Multimedia, error)
	ListByLesson(ctx context.Context, actor Actor, lessonID uint) ([]*models.Multimedia, error)
	// ListByCourse is public; only the course managers see inactive items.
	ListByCourse(ctx context.Context, viewer *Actor, courseID uint) ([]*models.Multimedia, error)
}

type multimediaService struct {
	repo        repositories.Repository
	files       storage.FileStorage
	maxFileSize int64
	logger      *slog.Logger
	validator   *validator.Validator
	audit       *ServiceLogger
}

func NewMultimediaService(
	repo repositories.Repository,
	files storage.FileStorage,
	maxFileSize int64,
	logger *slog.Logger,
	validator *validator.Validator,
) MultimediaService {
	return &multimediaService{
		repo:        repo,
		files:       files,
		maxFileSize: maxFileSize,
		logger:      logger,
		validator:   validator,
		audit:       NewServiceLogger(logger, "multimedia"),
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *multimediaService) Create(ctx context.Context, actor Actor, req *CreateMultimediaRequest, file *UploadedFile) (*models.Multimedia, error) {
	req.Normalize()
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if file == nil && req.URL == "" {
		return nil, NewValidationError("url", "es obligatorio cuando no se adjunta un archivo", nil)
	}
	if file != nil {
		if err := s.checkFile(req.Type, file); err != nil {
			return nil, err
		}
	}

	lesson, err := s.getLesson(ctx, req.LessonID)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeCourse(ctx, s.repo, actor, lesson.CourseID, "create_multimedia"); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.MediaActive
	}
	media := &models.Multimedia{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		URL:         req.URL,
		LessonID:    req.LessonID,
		Order:       req.Order,
		Status:      status,
	}

	var key string
	if file != nil {
		key = storage.MultimediaKey(req.LessonID, file.Name)
		url, err := s.files.Save(ctx, key, file.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to store multimedia file: %w", err)
		}
		media.URL = url
		media.FileKey = &key
	}

	if err := s.repo.Multimedia().Create(ctx, nil, media); err != nil {
		if key != "" {
			s.removeFile(ctx, key)
		}
		return nil, fmt.Errorf("failed to create multimedia: %w", err)
	}

	s.audit.LogAuditEvent(ctx, AuditEventCreate, actor.ID, media.ID, "multimedia", "create", map[string]interface{}{
		"lesson_id": media.LessonID,
		"type":      media.Type,
		"stored":    key != "",
	})
	return s.getMedia(ctx, media.ID)
}

// Get hides inactive items from students.
func (s *multimediaService) Get(ctx context.Context, actor Actor, id uint) (*models.Multimedia, error) {
	media, err := s.getMedia(ctx, id)
	if err != nil {
		return nil, err
	}
	lesson, err := s.getLesson(ctx, media.LessonID)
	if err != nil {
		return nil, err
	}
	manager, err := courseReadAccess(ctx, s.repo, actor, lesson.CourseID, "read_multimedia")
	if err != nil {
		return nil, err
	}
	if !manager && !media.IsActive() {
		return nil, ErrMultimediaNotFound
	}
	return media, nil
}

func (s *multimediaService) Update(ctx context.Context, actor Actor, id uint, req *UpdateMultimediaRequest) (*models.Multimedia, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	media, err := s.getMedia(ctx, id)
	if err != nil {
		return nil, err
	}
	lesson, err := s.getLesson(ctx, media.LessonID)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeCourse(ctx, s.repo, actor, lesson.CourseID, "update_multimedia"); err != nil {
		return nil, err
	}
	if req.LessonID != nil && *req.LessonID != media.LessonID {
		target, err := s.getLesson(ctx, *req.LessonID)
		if err != nil {
			return nil, err
		}
		if _, err := authorizeCourse(ctx, s.repo, actor, target.CourseID, "update_multimedia"); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Multimedia().Update(ctx, nil, id, req.Fields()); err != nil {
		return nil, fmt.Errorf("failed to update multimedia: %w", err)
	}
	return s.getMedia(ctx, id)
}

// Delete removes the row, then the stored file if we own one.
func (s *multimediaService) Delete(ctx context.Context, actor Actor, id uint) error {
	media, err := s.getMedia(ctx, id)
	if err != nil {
		return err
	}
	lesson, err := s.getLesson(ctx, media.LessonID)
	if err != nil {
		return err
	}
	if _, err := authorizeCourse(ctx, s.repo, actor, lesson.CourseID, "delete_multimedia"); err != nil {
		return err
	}
	if err := s.repo.Multimedia().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete multimedia: %w", err)
	}
	if media.FileKey != nil && *media.FileKey != "" {
		s.removeFile(ctx, *media.FileKey)
	}
	s.audit.LogAuditEvent(ctx, AuditEventDelete, actor.ID, id, "multimedia", "delete", nil)
	return nil
}

// ===== LISTINGS =====

func (s *multimediaService) List(ctx context.Context, actor Actor) ([]*models.Multimedia, error) {
	var courseIDs []uint
	var err error
	activeOnly := false
	switch {
	case actor.IsAdmin():
	case actor.IsTeacher():
		courseIDs, err = teacherScope(ctx, s.repo, actor)
	default:
		courseIDs, err = enrolledCourseIDs(ctx, s.repo, actor.ID)
		activeOnly = true
	}
	if err != nil {
		return nil, err
	}

	media, err := s.repo.Multimedia().List(ctx, nil, courseIDs, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list multimedia: %w", err)
	}
	return media, nil
}

func (s *multimediaService) ListByLesson(ctx context.Context, actor Actor, lessonID uint) ([]*models.Multimedia, error) {
	lesson, err := s.getLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	manager, err := courseReadAccess(ctx, s.repo, actor, lesson.CourseID, "read_multimedia")
	if err != nil {
		return nil, err
	}
	media, err := s.repo.Multimedia().ListByLesson(ctx, nil, lessonID, !manager)
	if err != nil {
		return nil, fmt.Errorf("failed to list lesson multimedia: %w", err)
	}
	return media, nil
}

func (s *multimediaService) ListByCourse(ctx context.Context, viewer *Actor, courseID uint) ([]*models.Multimedia, error) {
	course, err := loadCourse(ctx, s.repo, courseID)
	if err != nil {
		return nil, err
	}
	manager := viewer != nil && canManageCourse(*viewer, course)
	media, err := s.repo.Multimedia().ListByCourse(ctx, nil, courseID, !manager)
	if err != nil {
		return nil, fmt.Errorf("failed to list course multimedia: %w", err)
	}
	return media, nil
}

// ===== HELPER METHODS =====

func (s *multimediaService) checkFile(kind models.MultimediaType, file *UploadedFile) error {
	if file.Content == nil || file.Name == "" {
		return NewValidationError("archivo", "es obligatorio", nil)
	}
	if s.maxFileSize > 0 && file.Size > s.maxFileSize {
		return NewValidationError("archivo", fmt.Sprintf("no puede ser mayor que %d MB", s.maxFileSize>>20), file.Size)
	}
	ext := strings.ToLower(filepath.Ext(file.Name))
	for _, allowed := range models.MediaExtensions[kind] {
		if ext == allowed {
			return nil
		}
	}
	return NewValidationError("archivo",
		fmt.Sprintf("debe ser de tipo: %s", strings.Join(models.MediaExtensions[kind], ", ")), file.Name)
}

func (s *multimediaService) getMedia(ctx context.Context, id uint) (*models.Multimedia, error) {
	media, err := s.repo.Multimedia().GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get multimedia: %w", err)
	}
	if media == nil {
		return nil, ErrMultimediaNotFound
	}
	return media, nil
}

func (s *multimediaService) getLesson(ctx context.Context, id uint) (*models.Lesson, error) {
	lesson, err := s.repo.Lesson().GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	if lesson == nil {
		return nil, ErrLessonNotFound
	}
	return lesson, nil
}

func (s *multimediaService) removeFile(ctx context.Context, key string) {
	if err := s.files.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "Failed to remove multimedia file", "key", key, "error", err)
	}
}
