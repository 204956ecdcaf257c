// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"fetchfolio/internal/database"
	"fetchfolio/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password every seeded account gets, so developers can
// log in as any demo user.
const DemoPassword = "Password1"

var breeds = []string{
	"Labrador Retriever", "Border Collie", "Beagle", "Corgi", "Terrier",
	"Australian Shepherd", "Golden Retriever", "Poodle", "Dachshund",
	"Great Dane", "Whippet", "Shiba Inu", "Mixed",
}

var sizes = []string{models.DogSizeSmall, models.DogSizeMedium, models.DogSizeLarge}

var eventTitles = map[string][]string{
	"vet":         {"Annual checkup", "Vaccination booster", "Dental cleaning"},
	"grooming":    {"Full groom", "Nail trim", "Bath and brush"},
	"training":    {"Obedience class", "Agility class", "Recall practice"},
	"walk":        {"Morning walk", "Evening walk", "Trail hike"},
	"playdate":    {"Park playdate", "Backyard playdate"},
	"competition": {"Agility trial", "Obedience trial"},
	"other":       {"Photo shoot", "Adoption anniversary"},
}

// Seeder populates the database with demo data.
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all domain rows, child-first. Reference data stays.
func (s *Seeder) ClearAll() error {
	tables := []string{"command_notes", "commands", "events", "dogs", "users"}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	log.Println("Cleared existing demo data")
	return nil
}

// Run creates numUsers demo accounts, each with up to dogsPerUser dogs, and
// gives every dog a handful of commands, notes and events.
func (s *Seeder) Run(numUsers, dogsPerUser int) error {
	// One hash shared by all demo accounts; hashing per user is pointlessly slow.
	hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	var templates []models.CommandTemplate
	if err := s.db.Find(&templates).Error; err != nil {
		return fmt.Errorf("load command templates: %w", err)
	}

	for i := 0; i < numUsers; i++ {
		user := models.User{
			Username: fmt.Sprintf("%s%d", gofakeit.Username(), i),
			Email:    gofakeit.Email(),
			Password: string(hashed),
			Name:     gofakeit.Name(),
			Bio:      gofakeit.Sentence(8),
			Location: gofakeit.City(),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return fmt.Errorf("seed user %d: %w", i, err)
		}

		for d := 0; d < 1+s.rng.Intn(dogsPerUser); d++ {
			if err := s.seedDog(&user, templates); err != nil {
				return err
			}
		}
	}

	log.Printf("Seeded %d demo users (password %q)", numUsers, DemoPassword)
	return nil
}

func (s *Seeder) seedDog(user *models.User, templates []models.CommandTemplate) error {
	dog := models.Dog{
		Name:          gofakeit.PetName(),
		BirthDate:     time.Now().AddDate(-s.rng.Intn(12), -s.rng.Intn(12), 0),
		Breed:         breeds[s.rng.Intn(len(breeds))],
		Size:          sizes[s.rng.Intn(len(sizes))],
		Bio:           gofakeit.Sentence(10),
		ImageURL:      models.DefaultDogImageURL,
		Private:       s.rng.Intn(4) == 0,
		OwnerUsername: user.Username,
	}
	if err := s.db.Create(&dog).Error; err != nil {
		return fmt.Errorf("seed dog for %s: %w", user.Username, err)
	}

	for _, tmpl := range s.pickTemplates(templates) {
		cmd := models.Command{
			DogID:          dog.ID,
			Name:           tmpl.Name,
			Type:           tmpl.Type,
			Description:    tmpl.Description,
			VoiceCommand:   tmpl.VoiceCommand,
			VisualCommand:  tmpl.VisualCommand,
			Proficiency:    1 + s.rng.Intn(5),
			DateIntroduced: time.Now().AddDate(0, 0, -s.rng.Intn(365)),
		}
		if err := s.db.Create(&cmd).Error; err != nil {
			return fmt.Errorf("seed command for dog %d: %w", dog.ID, err)
		}

		for n := 0; n < s.rng.Intn(3); n++ {
			note := models.CommandNote{
				CommandID: cmd.ID,
				Note:      gofakeit.Sentence(12),
				Date:      cmd.DateIntroduced.AddDate(0, 0, s.rng.Intn(60)),
			}
			if err := s.db.Create(&note).Error; err != nil {
				return fmt.Errorf("seed note for command %d: %w", cmd.ID, err)
			}
		}
	}

	for e := 0; e < 1+s.rng.Intn(3); e++ {
		eventType := database.EventTypes[s.rng.Intn(len(database.EventTypes))]
		titles := eventTitles[eventType]
		start := time.Now().AddDate(0, 0, s.rng.Intn(30))
		event := models.Event{
			DogID:     dog.ID,
			Title:     titles[s.rng.Intn(len(titles))],
			StartTime: start,
			EndTime:   start.Add(time.Hour),
			Location:  gofakeit.City(),
			Type:      eventType,
		}
		if err := s.db.Create(&event).Error; err != nil {
			return fmt.Errorf("seed event for dog %d: %w", dog.ID, err)
		}
	}

	return nil
}

// pickTemplates returns a random non-empty subset of the seeded templates.
func (s *Seeder) pickTemplates(templates []models.CommandTemplate) []models.CommandTemplate {
	if len(templates) == 0 {
		return nil
	}

	shuffled := make([]models.CommandTemplate, len(templates))
	copy(shuffled, templates)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return shuffled[:1+s.rng.Intn(len(shuffled))]
}
