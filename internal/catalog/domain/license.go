package domain

import "github.com/google/uuid"

// License is a tutor-tier subscription product gating how much content a
// tutor may author. A nil limit means unlimited.
type License struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Price        int64     `json:"price"`
	CourseLimit  *int      `json:"course_limit"`
	ChapterLimit *int      `json:"chapter_limit"`
	LessonLimit  *int      `json:"lesson_limit"`
}

// DefaultLicenses are seeded at startup if no licenses exist.
func DefaultLicenses() []License {
	limit := func(n int) *int { return &n }
	return []License{
		{Name: "Free", Slug: "free", Price: 0, CourseLimit: limit(1), ChapterLimit: limit(5), LessonLimit: limit(20)},
		{Name: "Startup", Slug: "startup", Price: 50, CourseLimit: limit(5), ChapterLimit: limit(50), LessonLimit: limit(200)},
		{Name: "Advanced", Slug: "advanced", Price: 150, CourseLimit: limit(20), ChapterLimit: limit(200), LessonLimit: limit(1000)},
		{Name: "Professional", Slug: "professional", Price: 400},
	}
}
