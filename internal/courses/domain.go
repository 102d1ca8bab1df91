package courses

import (
	"time"

	"github.com/devcamper/devcamper-api/internal/shared"
)

// Skill levels a course may require.
const (
	SkillBeginner     = "beginner"
	SkillIntermediate = "intermediate"
	SkillAdvanced     = "advanced"
)

// BootcampRef summarises the bootcamp a course belongs to.
type BootcampRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Course is a single programme offered by a bootcamp.
type Course struct {
	ID                   string       `json:"id"`
	BootcampID           string       `json:"-"`
	Bootcamp             *BootcampRef `json:"bootcamp,omitempty"`
	UserID               string       `json:"user"`
	Title                string       `json:"title"`
	Description          string       `json:"description"`
	Weeks                string       `json:"weeks"`
	Tuition              float64      `json:"tuition"`
	MinimumSkill         string       `json:"minimumSkill"`
	ScholarshipAvailable bool         `json:"scholarshipAvailable"`
	CreatedAt            time.Time    `json:"createdAt"`
}

// Input carries a new course.
type Input struct {
	Title                string   `json:"title" validate:"required"`
	Description          string   `json:"description" validate:"required"`
	Weeks                string   `json:"weeks" validate:"required"`
	Tuition              *float64 `json:"tuition" validate:"required,gte=0"`
	MinimumSkill         string   `json:"minimumSkill" validate:"required,oneof=beginner intermediate advanced"`
	ScholarshipAvailable bool     `json:"scholarshipAvailable"`
}

// Patch carries a partial course update.
type Patch struct {
	Title                *string  `json:"title" validate:"omitempty,min=1"`
	Description          *string  `json:"description" validate:"omitempty,min=1"`
	Weeks                *string  `json:"weeks" validate:"omitempty,min=1"`
	Tuition              *float64 `json:"tuition" validate:"omitempty,gte=0"`
	MinimumSkill         *string  `json:"minimumSkill" validate:"omitempty,oneof=beginner intermediate advanced"`
	ScholarshipAvailable *bool    `json:"scholarshipAvailable"`
}

// Filter narrows a course listing.
type Filter struct {
	BootcampID   string
	MinimumSkill string
	Tuition      []shared.RangeTerm
}
