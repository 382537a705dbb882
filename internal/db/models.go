package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User table.
//
// Tags hang off two join tables (user_programming_languages, user_job_titles)
// whose composite primary key keeps each (user, tag) pair unique.
type User struct {
	ID             string    `gorm:"primaryKey;size:36"`
	FirstName      string    `gorm:"size:100;not null"`
	LastName       string    `gorm:"size:100;not null"`
	Email          string    `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash   string    `gorm:"size:255;not null"`
	Bio            string    `gorm:"type:text"`
	City           string    `gorm:"size:100"`
	Country        string    `gorm:"size:100"`
	DoneOnboarding bool      `gorm:"not null;default:false;index"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`

	Photo                *Photo                `gorm:"foreignKey:UserID"`
	ProgrammingLanguages []ProgrammingLanguage `gorm:"many2many:user_programming_languages"`
	JobTitles            []JobTitle            `gorm:"many2many:user_job_titles"`
}

// Photo is the one-to-one profile picture reference.
// URL and PublicID come from the blob store and are stored opaquely.
type Photo struct {
	ID       string `gorm:"primaryKey;size:36"`
	UserID   string `gorm:"uniqueIndex;size:36;not null"`
	URL      string `gorm:"size:1024;not null"`
	PublicID string `gorm:"size:512;not null"`
}

type ProgrammingLanguage struct {
	ID   string `gorm:"primaryKey;size:36"`
	Name string `gorm:"uniqueIndex;size:100;not null"`
}

type JobTitle struct {
	ID   string `gorm:"primaryKey;size:36"`
	Name string `gorm:"uniqueIndex;size:100;not null"`
}

type UserProgrammingLanguage struct {
	UserID                string `gorm:"primaryKey;size:36"`
	ProgrammingLanguageID string `gorm:"primaryKey;size:36;index"`
}

type UserJobTitle struct {
	UserID     string `gorm:"primaryKey;size:36"`
	JobTitleID string `gorm:"primaryKey;size:36;index"`
}

type SwipeType string

const (
	SwipeLike SwipeType = "LIKE"
	SwipePass SwipeType = "PASS"
)

func (t SwipeType) Valid() bool { return t == SwipeLike || t == SwipePass }

// Swipe is one user's directional decision on another.
//
// Unique (from_id, to_id): a repeated swipe overwrites Type in place.
// idx_swipe_to_type(to_id, type) serves the reciprocal LIKE lookup.
type Swipe struct {
	ID        string    `gorm:"primaryKey;size:36"`
	FromID    string    `gorm:"size:36;not null;uniqueIndex:idx_swipe_pair,priority:1"`
	ToID      string    `gorm:"size:36;not null;uniqueIndex:idx_swipe_pair,priority:2;index:idx_swipe_to_type,priority:1"`
	Type      SwipeType `gorm:"size:8;not null;index:idx_swipe_to_type,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Match is stored once per unordered pair with UserAID < UserBID.
type Match struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserAID   string    `gorm:"column:user_a_id;size:36;not null;uniqueIndex:idx_match_pair,priority:1"`
	UserBID   string    `gorm:"column:user_b_id;size:36;not null;uniqueIndex:idx_match_pair,priority:2;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Other returns the party that is not userID.
func (m Match) Other(userID string) string {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}

func (m Match) HasParty(userID string) bool {
	return m.UserAID == userID || m.UserBID == userID
}

// Conversation inherits its ordered pair from the originating Match.
// UpdatedAt is bumped on every new message and drives list ordering.
type Conversation struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserAID   string    `gorm:"column:user_a_id;size:36;not null;uniqueIndex:idx_conversation_pair,priority:1"`
	UserBID   string    `gorm:"column:user_b_id;size:36;not null;uniqueIndex:idx_conversation_pair,priority:2;index"`
	MatchID   string    `gorm:"size:36;not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index"`
}

func (c Conversation) Other(userID string) string {
	if c.UserAID == userID {
		return c.UserBID
	}
	return c.UserAID
}

func (c Conversation) HasParty(userID string) bool {
	return c.UserAID == userID || c.UserBID == userID
}

type Message struct {
	ID             string     `gorm:"primaryKey;size:36"`
	ConversationID string     `gorm:"size:36;not null;index:idx_message_conversation_created,priority:1"`
	SenderID       string     `gorm:"size:36;not null;index"`
	Content        string     `gorm:"type:text;not null"`
	CreatedAt      time.Time  `gorm:"autoCreateTime;index:idx_message_conversation_created,priority:2"`
	IsRead         bool       `gorm:"not null;default:false"`
	ReadAt         *time.Time
}

// PairOf orders two ids the way Match and Conversation rows store them.
func PairOf(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// newOrderedID assigns a UUIDv7. Ids generated by one process sort in
// creation order, so they break ties between equal timestamps.
func newOrderedID(id *string) {
	if *id == "" {
		*id = uuid.Must(uuid.NewV7()).String()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error                { newID(&u.ID); return nil }
func (p *Photo) BeforeCreate(*gorm.DB) error               { newID(&p.ID); return nil }
func (l *ProgrammingLanguage) BeforeCreate(*gorm.DB) error { newID(&l.ID); return nil }
func (j *JobTitle) BeforeCreate(*gorm.DB) error            { newID(&j.ID); return nil }
func (s *Swipe) BeforeCreate(*gorm.DB) error               { newID(&s.ID); return nil }
func (m *Match) BeforeCreate(*gorm.DB) error               { newID(&m.ID); return nil }
func (c *Conversation) BeforeCreate(*gorm.DB) error        { newID(&c.ID); return nil }
func (m *Message) BeforeCreate(*gorm.DB) error             { newOrderedID(&m.ID); return nil }
