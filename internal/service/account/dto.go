package account

import (
	"strings"
	"time"

	"github.com/oggyb/devmatch/internal/profile"
)

type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required,min=2,max=100"`
	LastName  string `json:"lastName" validate:"required,min=2,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
}

func (r *RegisterRequest) normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = normalizeEmail(r.Email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterResult is the freshly created account; the caller logs in separately.
type RegisterResult struct {
	User profile.Own `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginResult struct {
	Token          string    `json:"token"`
	ExpiresAt      time.Time `json:"expiresAt"`
	UserID         string    `json:"userId"`
	DoneOnboarding bool      `json:"doneOnboarding"`
}

type GetProfileRequest struct {
	ID string `json:"id" validate:"required"`
}

type MatchRef struct {
	MatchID string `json:"matchId"`
}

// ProfileResult is the public view of a user. Email and DoneOnboarding are
// only filled when the caller looks at their own profile; Match only when
// the caller and that user have matched.
type ProfileResult struct {
	profile.Public
	Email          string    `json:"email,omitempty"`
	DoneOnboarding *bool     `json:"doneOnboarding,omitempty"`
	Match          *MatchRef `json:"match,omitempty"`
}

// PhotoInput is what the client got back from the upload flow.
type PhotoInput struct {
	URL      string `json:"url" validate:"required,url,max=1024"`
	PublicID string `json:"publicId" validate:"required,max=512"`
}

// UpdateProfileRequest is a partial update: nil fields are left alone.
// A present tag list (even empty) replaces the user's tags wholesale.
type UpdateProfileRequest struct {
	FirstName            *string     `json:"firstName" validate:"omitempty,min=2,max=100"`
	LastName             *string     `json:"lastName" validate:"omitempty,min=2,max=100"`
	Bio                  *string     `json:"bio" validate:"omitempty,max=1000"`
	City                 *string     `json:"city" validate:"omitempty,max=100"`
	Country              *string     `json:"country" validate:"omitempty,max=100"`
	Photo                *PhotoInput `json:"photo"`
	RemovePhoto          bool        `json:"removePhoto"`
	ProgrammingLanguages []string    `json:"programmingLanguages" validate:"omitempty,max=20,dive,max=100"`
	JobTitles            []string    `json:"jobTitles" validate:"omitempty,max=10,dive,max=100"`
}

func (r *UpdateProfileRequest) normalize() {
	for _, p := range []*string{r.FirstName, r.LastName, r.Bio, r.City, r.Country} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
}

func (r *UpdateProfileRequest) fields() map[string]any {
	fields := map[string]any{}
	if r.FirstName != nil {
		fields["first_name"] = *r.FirstName
	}
	if r.LastName != nil {
		fields["last_name"] = *r.LastName
	}
	if r.Bio != nil {
		fields["bio"] = *r.Bio
	}
	if r.City != nil {
		fields["city"] = *r.City
	}
	if r.Country != nil {
		fields["country"] = *r.Country
	}
	return fields
}

type OnboardingRequest struct {
	City                 string      `json:"city" validate:"notblank,max=100"`
	Country              string      `json:"country" validate:"notblank,max=100"`
	Bio                  string      `json:"bio" validate:"max=1000"`
	Photo                *PhotoInput `json:"photo"`
	JobTitle             string      `json:"jobTitle" validate:"max=100"`
	ProgrammingLanguages []string    `json:"programmingLanguages" validate:"max=20,dive,max=100"`
}

func (r *OnboardingRequest) normalize() {
	r.City = strings.TrimSpace(r.City)
	r.Country = strings.TrimSpace(r.Country)
	r.Bio = strings.TrimSpace(r.Bio)
	r.JobTitle = strings.TrimSpace(r.JobTitle)
}

type DeleteResult struct {
	Message string `json:"message"`
}

type LanguagesResult struct {
	ProgrammingLanguages []profile.Tag `json:"programmingLanguages"`
	Total                int           `json:"total"`
}

type JobTitlesResult struct {
	JobTitles []profile.Tag `json:"jobTitles"`
	Total     int           `json:"total"`
}
