package reviews

import "time"

// Review is a user's rating of a bootcamp.
type Review struct {
	ID         string       `json:"id"`
	BootcampID string       `json:"-"`
	Bootcamp   *BootcampRef `json:"bootcamp,omitempty"`
	UserID     string       `json:"user"`
	Title      string       `json:"title"`
	Text       string       `json:"text"`
	Rating     int          `json:"rating"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// BootcampRef summarises the reviewed bootcamp.
type BootcampRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Input carries a new review.
type Input struct {
	Title  string `json:"title" validate:"required,max=100"`
	Text   string `json:"text" validate:"required"`
	Rating int    `json:"rating" validate:"required,gte=1,lte=10"`
}

// Patch carries a partial review update.
type Patch struct {
	Title  *string `json:"title" validate:"omitempty,min=1,max=100"`
	Text   *string `json:"text" validate:"omitempty,min=1"`
	Rating *int    `json:"rating" validate:"omitempty,gte=1,lte=10"`
}
