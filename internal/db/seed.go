package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	seedLanguages = []string{"Go", "Rust", "TypeScript", "Python", "Java", "Kotlin", "Elixir", "C++"}
	seedJobTitles = []string{"Backend Engineer", "Frontend Engineer", "Data Scientist", "SRE", "Mobile Developer"}
	seedCities    = [][2]string{{"Berlin", "Germany"}, {"Lisbon", "Portugal"}, {"London", "United Kingdom"}, {"Warsaw", "Poland"}}
)

// resetTables removes every row, children first.
func resetTables(db *gorm.DB) error {
	for _, table := range []string{
		"messages", "conversations", "matches", "swipes",
		"user_programming_languages", "user_job_titles", "photos",
		"programming_languages", "job_titles", "users",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// SeedTestData resets the database and populates it with a demo community.
//
// Behavior:
//  1. Clears every table.
//  2. Creates 20 onboarded users (password "password") with 1-3 languages and a job title.
//  3. Generates ~200 swipes with ~70% likes; every 3rd pair is made mutual and matched.
//  4. Opens a conversation with a couple of messages for every other match.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	if err := resetTables(db); err != nil {
		return err
	}
	log.Println("Cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	langs, err := seedTags(db, seedLanguages, func(n string) any { return &ProgrammingLanguage{Name: n} })
	if err != nil {
		return err
	}
	titles, err := seedTags(db, seedJobTitles, func(n string) any { return &JobTitle{Name: n} })
	if err != nil {
		return err
	}

	// --- Seed Users ---
	users := make([]User, 0, 20)
	for i := 1; i <= 20; i++ {
		loc := seedCities[r.Intn(len(seedCities))]
		user := User{
			FirstName:      fmt.Sprintf("Dev%d", i),
			LastName:       "Seed",
			Email:          fmt.Sprintf("user%d@example.com", i),
			PasswordHash:   string(hash),
			Bio:            "Seeded developer profile",
			City:           loc[0],
			Country:        loc[1],
			DoneOnboarding: true,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}

		n := 1 + r.Intn(3)
		for _, idx := range r.Perm(len(langs))[:n] {
			link := UserProgrammingLanguage{UserID: user.ID, ProgrammingLanguageID: langs[idx]}
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
				return fmt.Errorf("failed to seed language link: %w", err)
			}
		}
		link := UserJobTitle{UserID: user.ID, JobTitleID: titles[r.Intn(len(titles))]}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
			return fmt.Errorf("failed to seed job title link: %w", err)
		}

		users = append(users, user)
	}
	log.Printf("Seeded %d users.", len(users))

	// --- Seed Swipes (~200) ---
	counter, matches := 0, 0
	for _, actor := range users {
		for j := 0; j < 10; j++ {
			target := users[r.Intn(len(users))]
			if target.ID == actor.ID {
				continue
			}

			typ := SwipePass
			if r.Intn(100) < 70 {
				typ = SwipeLike
			}

			// guarantee mutual likes every 3rd pair
			mutual := counter%3 == 0
			if mutual {
				typ = SwipeLike
				if err := upsertSwipe(db, target.ID, actor.ID, SwipeLike); err != nil {
					return err
				}
			}
			if err := upsertSwipe(db, actor.ID, target.ID, typ); err != nil {
				return err
			}

			if mutual {
				m, err := seedMatch(db, actor.ID, target.ID)
				if err != nil {
					return err
				}
				if matches%2 == 0 {
					if err := seedConversation(db, m); err != nil {
						return err
					}
				}
				matches++
			}
			counter++
		}
	}
	log.Printf("Seeded %d swipes and %d matches.", counter, matches)

	return nil
}

func seedTags(db *gorm.DB, names []string, mk func(string) any) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		row := mk(name)
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(row).Error; err != nil {
			return nil, fmt.Errorf("failed to seed tag %s: %w", name, err)
		}
		var found []string
		if err := db.Model(row).Where("name = ?", name).Pluck("id", &found).Error; err != nil || len(found) == 0 {
			return nil, fmt.Errorf("failed to load tag %s: %v", name, err)
		}
		ids = append(ids, found[0])
	}
	return ids, nil
}

func upsertSwipe(db *gorm.DB, from, to string, typ SwipeType) error {
	s := Swipe{FromID: from, ToID: to, Type: typ}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "from_id"}, {Name: "to_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"type", "updated_at"}),
	}).Create(&s).Error; err != nil {
		return fmt.Errorf("failed to seed swipe: %w", err)
	}
	return nil
}

func seedMatch(db *gorm.DB, x, y string) (Match, error) {
	a, b := PairOf(x, y)
	m := Match{UserAID: a, UserBID: b}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_a_id"}, {Name: "user_b_id"}},
		DoNothing: true,
	}).Create(&m).Error; err != nil {
		return Match{}, fmt.Errorf("failed to seed match: %w", err)
	}
	if err := db.Where("user_a_id = ? AND user_b_id = ?", a, b).First(&m).Error; err != nil {
		return Match{}, fmt.Errorf("failed to load match: %w", err)
	}
	return m, nil
}

func seedConversation(db *gorm.DB, m Match) error {
	c := Conversation{UserAID: m.UserAID, UserBID: m.UserBID, MatchID: m.ID}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_a_id"}, {Name: "user_b_id"}},
		DoNothing: true,
	}).Create(&c).Error; err != nil {
		return fmt.Errorf("failed to seed conversation: %w", err)
	}
	if err := db.Where("user_a_id = ? AND user_b_id = ?", m.UserAID, m.UserBID).First(&c).Error; err != nil {
		return fmt.Errorf("failed to load conversation: %w", err)
	}

	var count int64
	if err := db.Model(&Message{}).Where("conversation_id = ?", c.ID).Count(&count).Error; err != nil || count > 0 {
		return err
	}
	msgs := []Message{
		{ConversationID: c.ID, SenderID: m.UserAID, Content: "Hey! Saw we both write Go."},
		{ConversationID: c.ID, SenderID: m.UserBID, Content: "Hi! Want to pair on something?"},
	}
	if err := db.Create(&msgs).Error; err != nil {
		return fmt.Errorf("failed to seed messages: %w", err)
	}
	return nil
}

// Fixture user ids created by SeedMinimalTestData.
const (
	FixtureAlice = "00000000-0000-0000-0000-0000000000a1"
	FixtureBob   = "00000000-0000-0000-0000-0000000000b2"
	FixtureCarol = "00000000-0000-0000-0000-0000000000c3"
	FixtureDave  = "00000000-0000-0000-0000-0000000000d4"
	FixtureErin  = "00000000-0000-0000-0000-0000000000e5"
)

// SeedMinimalTestData installs a small deterministic community:
//
//	alice: Go, Rust / Backend Engineer
//	bob:   Go / Frontend Engineer
//	carol: Python / Data Scientist
//	dave:  Go, not onboarded
//	erin:  no tags
//
// All passwords are "x" (not a bcrypt hash).
func SeedMinimalTestData(db *gorm.DB) error {
	if err := resetTables(db); err != nil {
		return err
	}

	users := []User{
		{ID: FixtureAlice, FirstName: "Alice", LastName: "Anders", Email: "alice@test.com", PasswordHash: "x", City: "Berlin", Country: "Germany", DoneOnboarding: true},
		{ID: FixtureBob, FirstName: "Bob", LastName: "Brown", Email: "bob@test.com", PasswordHash: "x", City: "Lisbon", Country: "Portugal", DoneOnboarding: true},
		{ID: FixtureCarol, FirstName: "Carol", LastName: "Chen", Email: "carol@test.com", PasswordHash: "x", DoneOnboarding: true},
		{ID: FixtureDave, FirstName: "Dave", LastName: "Diaz", Email: "dave@test.com", PasswordHash: "x"},
		{ID: FixtureErin, FirstName: "Erin", LastName: "Evans", Email: "erin@test.com", PasswordHash: "x", DoneOnboarding: true},
	}
	if err := db.Create(&users).Error; err != nil {
		return err
	}

	langs := []ProgrammingLanguage{{ID: "lang-go", Name: "Go"}, {ID: "lang-rust", Name: "Rust"}, {ID: "lang-python", Name: "Python"}}
	titles := []JobTitle{{ID: "job-backend", Name: "Backend Engineer"}, {ID: "job-frontend", Name: "Frontend Engineer"}, {ID: "job-data", Name: "Data Scientist"}}
	if err := db.Create(&langs).Error; err != nil {
		return err
	}
	if err := db.Create(&titles).Error; err != nil {
		return err
	}

	userLangs := []UserProgrammingLanguage{
		{UserID: FixtureAlice, ProgrammingLanguageID: "lang-go"},
		{UserID: FixtureAlice, ProgrammingLanguageID: "lang-rust"},
		{UserID: FixtureBob, ProgrammingLanguageID: "lang-go"},
		{UserID: FixtureCarol, ProgrammingLanguageID: "lang-python"},
		{UserID: FixtureDave, ProgrammingLanguageID: "lang-go"},
	}
	userTitles := []UserJobTitle{
		{UserID: FixtureAlice, JobTitleID: "job-backend"},
		{UserID: FixtureBob, JobTitleID: "job-frontend"},
		{UserID: FixtureCarol, JobTitleID: "job-data"},
	}
	if err := db.Create(&userLangs).Error; err != nil {
		return err
	}
	return db.Create(&userTitles).Error
}
