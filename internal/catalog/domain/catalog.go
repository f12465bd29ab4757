package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Category groups courses for browsing.
type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// Course is the unit of sale. TutorID is immutable after creation; the price
// is read fresh at purchase time, never cached.
type Course struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description,omitempty"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	CoverImage  string     `json:"cover_image,omitempty"`
	Price       int64      `json:"price"`
	TutorID     uuid.UUID  `json:"tutor_id"`
	IsPublished bool       `json:"is_published"`
	IsDeleted   bool       `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Chapter belongs to one course. Order is dense per course and used only
// for display.
type Chapter struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CourseID    uuid.UUID `json:"course_id"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Lesson belongs to one chapter. Access to a lesson is derived from access
// to its chapter's course.
type Lesson struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	ChapterID     uuid.UUID       `json:"chapter_id"`
	ContentBlocks json.RawMessage `json:"content_blocks"`
	Order         int             `json:"order"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CourseSummary is the lightweight browse projection.
type CourseSummary struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	CoverImage string     `json:"cover_image,omitempty"`
	Price      int64      `json:"price"`
	TutorID    uuid.UUID  `json:"tutor_id"`
}
