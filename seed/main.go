// seed/main.go
//
// Preloads the local answer store from a JSON export so a fresh install can
// resolve homework offline. Export shape: [{"question": "...", "type": 0,
// "answer": "..."}, ...].
package main

import (
	"flag"
	"time"

	"github.com/google/uuid"
	"github.com/hailin-dev/rainclass/model"
	"github.com/hailin-dev/rainclass/services"
	"github.com/hailin-dev/rainclass/shared"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type seedEntry struct {
	Question string `json:"question"`
	Type     int    `json:"type"`
	Answer   string `json:"answer"`
}

func main() {
	_ = godotenv.Load()

	file := flag.String("file", "answers.json", "answer export to load")
	database := flag.String("db", "rainclass.db", "sqlite database path")
	flag.Parse()

	var entries []seedEntry
	if err := shared.LoadJSON(*file, &entries); err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Could not read answer export")
	}

	db, err := gorm.Open(sqlite.Open(*database), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Could not open database")
	}
	if err := db.AutoMigrate(&model.AnswerRecord{}); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}

	seeded, skipped := 0, 0
	for _, e := range entries {
		if e.Question == "" || e.Answer == "" {
			skipped++
			continue
		}

		fp := services.Fingerprint(e.Question, e.Type)
		var existing model.AnswerRecord
		if err := db.Where("fingerprint = ?", fp).First(&existing).Error; err == nil {
			skipped++
			continue
		}

		id, _ := uuid.NewV7()
		rec := model.AnswerRecord{
			ID:          id.String(),
			Fingerprint: fp,
			Question:    e.Question,
			Type:        e.Type,
			Answer:      e.Answer,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		if err := db.Create(&rec).Error; err != nil {
			log.Warn().Err(err).Msg("Seed insert failed")
			skipped++
			continue
		}
		seeded++
	}

	log.Info().Int("seeded", seeded).Int("skipped", skipped).Msg("Answer store seeded")
}
