// Package seed populates a development database with demo data.
package seed

import (
	"fmt"
	"log"

	"skillswap/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type skillSpec struct {
	name        string
	category    string
	description string
}

type userSpec struct {
	firstName string
	lastName  string
	bio       string
	teaches   []string
	learns    []string
}

var skillSpecs = []skillSpec{
	{"Guitar", "Music", "Acoustic and electric guitar, from first chords to improvisation"},
	{"Piano", "Music", "Classical and pop piano technique"},
	{"Spanish", "Language", "Conversational Spanish for travel and work"},
	{"French", "Language", "French grammar, pronunciation and conversation"},
	{"Photography", "Creative", "Composition, lighting and editing"},
	{"Cooking", "Lifestyle", "Everyday home cooking and meal planning"},
	{"Go Programming", "Technology", "Backend development with Go"},
	{"Chess", "Games", "Openings, tactics and endgame fundamentals"},
	{"Yoga", "Fitness", "Vinyasa flow and breathing practice"},
	{"Public Speaking", "Career", "Structuring and delivering talks with confidence"},
}

// The ledgers are arranged so the demo exercises every match tier: some pairs
// swap both ways, some only one way.
var userSpecs = []userSpec{
	{
		"Alice", "Nguyen",
		"Musician turned language nerd. Happy to trade guitar lessons for Spanish practice.",
		[]string{"Guitar", "Piano"},
		[]string{"Spanish", "Photography"},
	},
	{
		"Bruno", "Silva",
		"Native Spanish speaker learning my way around a fretboard.",
		[]string{"Spanish", "Cooking"},
		[]string{"Guitar", "Chess"},
	},
	{
		"Chloe", "Martin",
		"Photographer and weekend chess player.",
		[]string{"Photography", "Chess"},
		[]string{"Cooking", "French"},
	},
	{
		"Dmitri", "Petrov",
		"Software engineer who talks about Go too much.",
		[]string{"Go Programming", "Chess"},
		[]string{"Public Speaking", "Yoga"},
	},
	{
		"Emma", "Johansson",
		"Yoga teacher working up the nerve for conference talks.",
		[]string{"Yoga", "French"},
		[]string{"Public Speaking", "Piano"},
	},
	{
		"Farid", "Haddad",
		"Toastmasters regular, hopeless in the kitchen.",
		[]string{"Public Speaking"},
		[]string{"Cooking", "Go Programming"},
	},
}

// Seed wipes and repopulates the demo data set.
func Seed(db *gorm.DB) error {
	log.Println("Starting database seeding...")

	if err := clearData(db); err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}

	skills, err := createSkills(db)
	if err != nil {
		return fmt.Errorf("failed to create skills: %w", err)
	}
	log.Printf("Created %d skills", len(skills))

	users, err := createUsers(db)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("Created %d users", len(users))

	if err := createLedgers(db, users, skills); err != nil {
		return fmt.Errorf("failed to create ledgers: %w", err)
	}
	log.Println("Created skill ledgers")

	log.Println("Database seeding completed")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")

	// Delete in dependency order
	tables := []string{
		"progress_records",
		"sessions",
		"swap_requests",
		"user_teach_skills",
		"user_learn_skills",
		"skills",
		"users",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

func createSkills(db *gorm.DB) (map[string]models.Skill, error) {
	skills := make(map[string]models.Skill, len(skillSpecs))
	for _, spec := range skillSpecs {
		skill := models.Skill{
			Name:        spec.name,
			Category:    spec.category,
			Description: spec.description,
		}
		if err := db.Create(&skill).Error; err != nil {
			return nil, err
		}
		skills[spec.name] = skill
	}
	return skills, nil
}

func createUsers(db *gorm.DB) ([]models.User, error) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	users := make([]models.User, 0, len(userSpecs))
	for i, spec := range userSpecs {
		user := models.User{
			Email:     fmt.Sprintf("%s%d@example.com", spec.firstName, i+1),
			Password:  string(hashedPassword),
			FirstName: spec.firstName,
			LastName:  spec.lastName,
			Bio:       spec.bio,
			ProfilePictureURL: fmt.Sprintf(
				"https://api.dicebear.com/7.x/avataaars/svg?seed=%s", spec.firstName),
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createLedgers(db *gorm.DB, users []models.User, skills map[string]models.Skill) error {
	for i, spec := range userSpecs {
		for _, name := range spec.teaches {
			entry := models.TeachSkill{
				UserID:  users[i].ID,
				SkillID: skills[name].ID,
				Level:   4,
			}
			if err := db.Create(&entry).Error; err != nil {
				return err
			}
		}
		for _, name := range spec.learns {
			entry := models.LearnSkill{
				UserID:  users[i].ID,
				SkillID: skills[name].ID,
				Level:   1,
			}
			if err := db.Create(&entry).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
