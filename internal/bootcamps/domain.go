package bootcamps

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/devcamper/devcamper-api/internal/platform/geocode"
	"github.com/devcamper/devcamper-api/internal/shared"
)

// DefaultPhoto is the photo of a bootcamp that never had one uploaded.
const DefaultPhoto = "no-photo.jpg"

// Careers lists the accepted career tracks.
var Careers = []string{
	"Web Development",
	"Mobile Development",
	"UI/UX",
	"Data Science",
	"Business",
	"Other",
}

// Bootcamp is a published training programme.
type Bootcamp struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	Description   string           `json:"description"`
	Website       string           `json:"website,omitempty"`
	Phone         string           `json:"phone,omitempty"`
	Email         string           `json:"email,omitempty"`
	Address       string           `json:"address"`
	Location      geocode.Location `json:"location"`
	Careers       []string         `json:"careers"`
	AverageRating *float64         `json:"averageRating,omitempty"`
	AverageCost   *float64         `json:"averageCost,omitempty"`
	Photo         string           `json:"photo"`
	Housing       bool             `json:"housing"`
	JobAssistance bool             `json:"jobAssistance"`
	JobGuarantee  bool             `json:"jobGuarantee"`
	AcceptGI      bool             `json:"acceptGi"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// Input carries the client-supplied fields of a new bootcamp.
type Input struct {
	Name          string   `json:"name" validate:"required,max=50"`
	Description   string   `json:"description" validate:"required,max=500"`
	Website       string   `json:"website" validate:"omitempty,url"`
	Phone         string   `json:"phone" validate:"omitempty,max=20"`
	Email         string   `json:"email" validate:"omitempty,email"`
	Address       string   `json:"address" validate:"required"`
	Careers       []string `json:"careers"`
	Housing       bool     `json:"housing"`
	JobAssistance bool     `json:"jobAssistance"`
	JobGuarantee  bool     `json:"jobGuarantee"`
	AcceptGI      bool     `json:"acceptGi"`
}

// Patch carries a partial update; nil fields are left unchanged.
type Patch struct {
	Name          *string   `json:"name" validate:"omitempty,min=1,max=50"`
	Description   *string   `json:"description" validate:"omitempty,min=1,max=500"`
	Website       *string   `json:"website" validate:"omitempty,url"`
	Phone         *string   `json:"phone" validate:"omitempty,max=20"`
	Email         *string   `json:"email" validate:"omitempty,email"`
	Address       *string   `json:"address" validate:"omitempty,min=1"`
	Careers       *[]string `json:"careers"`
	Housing       *bool     `json:"housing"`
	JobAssistance *bool     `json:"jobAssistance"`
	JobGuarantee  *bool     `json:"jobGuarantee"`
	AcceptGI      *bool     `json:"acceptGi"`
}

// Filter narrows a bootcamp listing.
type Filter struct {
	Career        string
	State         string
	City          string
	Housing       *bool
	JobAssistance *bool
	JobGuarantee  *bool
	AcceptGI      *bool
	AverageCost   []shared.RangeTerm
	AverageRating []shared.RangeTerm
}

// ValidateCareers checks that careers is a non-empty subset of Careers.
func ValidateCareers(careers []string) error {
	if len(careers) == 0 {
		return shared.Errorf(shared.ErrValidation, "Please add at least one career")
	}
	for _, c := range careers {
		if !isCareer(c) {
			return shared.Errorf(shared.ErrValidation, "%s is not a valid career", c)
		}
	}
	return nil
}

func isCareer(c string) bool {
	for _, known := range Careers {
		if c == known {
			return true
		}
	}
	return false
}

// Slugify folds accents and joins the alphanumeric words of name with hyphens.
func Slugify(name string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, name)
	if err != nil {
		folded = name
	}
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
