package domain

import (
	"time"

	"github.com/google/uuid"
)

// Progress tracks how far a student is through a course.
type Progress struct {
	CompletedLessons []uuid.UUID `json:"completed_lessons"`
	Completed        bool        `json:"completed"`
}

// Enrollment grants a student access to a course. At most one exists per
// (student, course) pair; a successful purchase creates it exactly once.
type Enrollment struct {
	ID        uuid.UUID `json:"id"`
	StudentID uuid.UUID `json:"student_id"`
	CourseID  uuid.UUID `json:"course_id"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
