package explore

import (
	"time"

	"github.com/oggyb/devmatch/internal/db"
	"github.com/oggyb/devmatch/internal/profile"
	"github.com/oggyb/devmatch/internal/utils/pagination"
)

type DiscoverRequest struct {
	ExcludeSwiped bool `json:"excludeSwiped"`
	Limit         int  `json:"limit" validate:"gte=0"`
}

type DiscoverResult struct {
	Users []profile.Public `json:"users"`
}

type SwipeRequest struct {
	ToID string       `json:"toId" validate:"required"`
	Type db.SwipeType `json:"type" validate:"required,oneof=LIKE PASS"`
}

type SwipeView struct {
	ID        string       `json:"id"`
	Type      db.SwipeType `json:"type"`
	CreatedAt time.Time    `json:"createdAt"`
}

type MatchView struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// SwipeResult carries the match only when the swipe completed a mutual like.
type SwipeResult struct {
	Swipe SwipeView  `json:"swipe"`
	Match *MatchView `json:"match,omitempty"`
}

type ListSwipesRequest struct {
	Type db.SwipeType `json:"type" validate:"omitempty,oneof=LIKE PASS"`
	pagination.Page
}

// SwipeTarget is the swiped user as shown in the history list.
type SwipeTarget struct {
	ID        string         `json:"id"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Photo     *profile.Photo `json:"photo"`
	JobTitles []string       `json:"jobTitles"`
}

type SwipeHistoryItem struct {
	ID        string       `json:"id"`
	Type      db.SwipeType `json:"type"`
	CreatedAt time.Time    `json:"createdAt"`
	User      SwipeTarget  `json:"user"`
}

type ListSwipesResult struct {
	Swipes []SwipeHistoryItem `json:"swipes"`
	Total  int64              `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

type ListMatchesRequest struct {
	pagination.Page
}

type MatchItem struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	User      profile.Public `json:"user"`
}

type ListMatchesResult struct {
	Matches []MatchItem `json:"matches"`
	Total   int64       `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
}

func swipeTarget(u db.User) SwipeTarget {
	t := SwipeTarget{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		JobTitles: make([]string, 0, len(u.JobTitles)),
	}
	if u.Photo != nil {
		t.Photo = &profile.Photo{URL: u.Photo.URL}
	}
	for _, j := range u.JobTitles {
		t.JobTitles = append(t.JobTitles, j.Name)
	}
	return t
}
