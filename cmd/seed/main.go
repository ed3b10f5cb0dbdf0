// Command seed loads a set of demo profiles for local development.
package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/astromatch/astromatch/internal/config"
	"github.com/astromatch/astromatch/internal/database"
	"github.com/astromatch/astromatch/internal/telemetry"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic("invalid configuration: " + err.Error())
	}

	if err := telemetry.InitGlobalLogger(telemetry.DefaultLogConfig()); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	ctx := telemetry.WithCorrelationID(context.Background(), telemetry.NewCorrelationID())
	logger := telemetry.GetContextualLogger(ctx)

	db, err := database.NewConnection(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	profiles := demoProfiles()
	repo := database.NewProfileRepo(db)

	created := 0
	for _, p := range profiles {
		if err := repo.Create(ctx, p); err != nil {
			logger.WithError(err).WithField("name", p.Name).Warn("Skipping profile")
			continue
		}
		created++
	}

	logger.WithField("created", created).Info("Seed complete")
}

func demoProfiles() []*database.ProfileSnapshot {
	return []*database.ProfileSnapshot{
		{
			UserID:        uuid.New().String(),
			Name:          "Asha",
			Age:           28,
			City:          "Bengaluru",
			Interests:     database.StringList{"Technology", "Art", "Travel"},
			Hobbies:       database.StringList{"Reading", "Photography"},
			ZodiacSign:    "Leo",
			Nakshatra:     "Magha",
			ChineseZodiac: "Dragon",
			IsComplete:    true,
		},
		{
			UserID:        uuid.New().String(),
			Name:          "Rohan",
			Age:           31,
			City:          "Bengaluru",
			Interests:     database.StringList{"Technology", "Food"},
			Hobbies:       database.StringList{"Reading", "Cycling"},
			ZodiacSign:    "Aries",
			Nakshatra:     "Bharani",
			ChineseZodiac: "Rat",
			IsComplete:    true,
		},
		{
			UserID:        uuid.New().String(),
			Name:          "Meera",
			Age:           26,
			City:          "Mumbai",
			Interests:     database.StringList{"Music", "Travel", "Food"},
			Hobbies:       database.StringList{"Dancing", "Cooking"},
			ZodiacSign:    "Pisces",
			Nakshatra:     "Revati",
			ChineseZodiac: "Rabbit",
			IsComplete:    true,
		},
		{
			UserID:        uuid.New().String(),
			Name:          "Karthik",
			Age:           34,
			City:          "Chennai",
			Interests:     database.StringList{"Sports", "Technology"},
			Hobbies:       database.StringList{"Running"},
			ZodiacSign:    "Scorpio",
			Nakshatra:     "Anuradha",
			ChineseZodiac: "Tiger",
			IsComplete:    true,
		},
		{
			UserID:     uuid.New().String(),
			Name:       "Priya",
			Age:        29,
			City:       "",
			Interests:  nil,
			Hobbies:    nil,
			IsComplete: false,
		},
	}
}
