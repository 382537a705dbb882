// Package profile holds the user views every service returns.
package profile

import (
	"time"

	"github.com/oggyb/devmatch/internal/db"
)

type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Photo struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId,omitempty"`
}

// Public is what any authenticated user may see about another user.
type Public struct {
	ID                   string `json:"id"`
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	Bio                  string `json:"bio"`
	City                 string `json:"city"`
	Country              string `json:"country"`
	Photo                *Photo `json:"photo"`
	ProgrammingLanguages []Tag  `json:"programmingLanguages"`
	JobTitles            []Tag  `json:"jobTitles"`
}

// Own extends Public with fields only the account owner sees.
type Own struct {
	Public
	Email          string    `json:"email"`
	DoneOnboarding bool      `json:"doneOnboarding"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Summary is the compact header used in lists and conversations.
type Summary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Photo     *Photo `json:"photo"`
}

// FromUser builds the public view. Tags must be preloaded.
func FromUser(u db.User) Public {
	p := Public{
		ID:                   u.ID,
		FirstName:            u.FirstName,
		LastName:             u.LastName,
		Bio:                  u.Bio,
		City:                 u.City,
		Country:              u.Country,
		ProgrammingLanguages: make([]Tag, 0, len(u.ProgrammingLanguages)),
		JobTitles:            make([]Tag, 0, len(u.JobTitles)),
	}
	if u.Photo != nil {
		p.Photo = &Photo{URL: u.Photo.URL}
	}
	for _, l := range u.ProgrammingLanguages {
		p.ProgrammingLanguages = append(p.ProgrammingLanguages, Tag{ID: l.ID, Name: l.Name})
	}
	for _, j := range u.JobTitles {
		p.JobTitles = append(p.JobTitles, Tag{ID: j.ID, Name: j.Name})
	}
	return p
}

func OwnFromUser(u db.User) Own {
	o := Own{
		Public:         FromUser(u),
		Email:          u.Email,
		DoneOnboarding: u.DoneOnboarding,
		CreatedAt:      u.CreatedAt,
	}
	if u.Photo != nil {
		o.Photo = &Photo{URL: u.Photo.URL, PublicID: u.Photo.PublicID}
	}
	return o
}

func SummaryOf(u db.User) Summary {
	s := Summary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
	if u.Photo != nil {
		s.Photo = &Photo{URL: u.Photo.URL}
	}
	return s
}

func LanguageTags(rows []db.ProgrammingLanguage) []Tag {
	out := make([]Tag, 0, len(rows))
	for _, r := range rows {
		out = append(out, Tag{ID: r.ID, Name: r.Name})
	}
	return out
}

func JobTitleTags(rows []db.JobTitle) []Tag {
	out := make([]Tag, 0, len(rows))
	for _, r := range rows {
		out = append(out, Tag{ID: r.ID, Name: r.Name})
	}
	return out
}
