package main

import (
	"github.com/hailin-dev/rainclass/services"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file loaded")
	}

	ctx, err := context.NewCtx(
		&services.CredentialService{},
		&services.SqliteService{},
		&services.ApiService{},
		&services.CacheService{},
		&services.QuestionBankService{},
		&services.AnswerService{},
		&services.VideoService{},
		&services.ArticleService{},
		&services.SlideshowService{},
		&services.HomeworkService{},
		&services.MonitoringService{},

		&services.OrchestratorService{},
	)
	if err != nil {
		log.Fatal().Err(err)
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err)
		return
	}
}
