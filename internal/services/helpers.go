package services

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
)

func loadCourse(ctx context.Context, repo repositories.Repository, courseID uint) (*models.Course, error) {
	course, err := repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	return course, nil
}

// authorizeCourse loads the course and requires the actor to teach it or be an admin.
func authorizeCourse(ctx context.Context, repo repositories.Repository, actor Actor, courseID uint, action string) (*models.Course, error) {
	course, err := loadCourse(ctx, repo, courseID)
	if err != nil {
		return nil, err
	}
	if !canManageCourse(actor, course) {
		return nil, NewPermissionError(actor.ID, courseID, "course", action, "not the course instructor")
	}
	return course, nil
}

func canManageCourse(actor Actor, course *models.Course) bool {
	return actor.IsAdmin() || (actor.IsTeacher() && course.IsOwnedBy(actor.ID))
}

// teacherScope returns the course ids a teacher may see; nil for admins (no restriction).
func teacherScope(ctx context.Context, repo repositories.Repository, actor Actor) ([]uint, error) {
	if actor.IsAdmin() {
		return nil, nil
	}
	ids, err := repo.Course().IDsByInstructor(ctx, nil, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list instructor courses: %w", err)
	}
	if ids == nil {
		ids = []uint{}
	}
	return ids, nil
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// checkLessonInCourse accepts a nil lesson or one that belongs to the course.
func checkLessonInCourse(ctx context.Context, repo repositories.Repository, lessonID *uint, courseID uint) error {
	if lessonID == nil {
		return nil
	}
	lesson, err := repo.Lesson().GetByID(ctx, nil, *lessonID)
	if err != nil {
		return fmt.Errorf("failed to get lesson: %w", err)
	}
	if lesson == nil || lesson.CourseID != courseID {
		return NewValidationError("leccion_id", "debe pertenecer al curso", *lessonID)
	}
	return nil
}

// enrolledCourseIDs never returns nil, so an unenrolled student matches nothing.
func enrolledCourseIDs(ctx context.Context, repo repositories.Repository, userID uint) ([]uint, error) {
	ids, err := repo.Enrollment().CourseIDsByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrolled courses: %w", err)
	}
	if ids == nil {
		ids = []uint{}
	}
	return ids, nil
}

// courseReadAccess lets admins, the course instructor and enrolled students
// through, and reports whether the actor manages the course.
func courseReadAccess(ctx context.Context, repo repositories.Repository, actor Actor, courseID uint, action string) (bool, error) {
	if actor.IsAdmin() {
		return true, nil
	}
	if actor.IsTeacher() {
		if _, err := authorizeCourse(ctx, repo, actor, courseID, action); err != nil {
			return false, err
		}
		return true, nil
	}
	enrolled, err := repo.Enrollment().Exists(ctx, nil, actor.ID, courseID)
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		return false, NewPermissionError(actor.ID, courseID, "course", action, "not enrolled in the course")
	}
	return false, nil
}
