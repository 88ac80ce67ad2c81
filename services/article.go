// services/article.go
package services

import (
	"github.com/alphabatem/common/context"
	"github.com/hailin-dev/rainclass/model"
	log "github.com/sirupsen/logrus"
)

type articleAPI interface {
	ArticleStatus(classroomID, leafID int64) (bool, error)
	MarkArticleFinished(classroomID, leafID int64) error
}

// ArticleService marks reading/article leaves done. No simulation needed:
// one status check, one mark call.
type ArticleService struct {
	context.DefaultService

	api   articleAPI
	cache completionCache
}

const ARTICLE_SVC = "article_svc"

func (svc ArticleService) Id() string {
	return ARTICLE_SVC
}

func (svc *ArticleService) Start() error {
	svc.api = svc.Service(API_SVC).(*ApiService)
	svc.cache = svc.Service(CACHE_SVC).(*CacheService)
	return nil
}

func (svc *ArticleService) Drive(leaf model.Leaf, cls model.Classroom) model.Outcome {
	logger := log.WithFields(log.Fields{"leaf": leaf.ID, "title": leaf.Title})

	finished, err := svc.api.ArticleStatus(cls.ClassroomID, leaf.ID)
	if err != nil {
		logger.WithError(err).Error("Article status fetch failed")
		return model.OutcomeFailed
	}
	if finished {
		logger.Info("Article already read")
		svc.cache.MarkCompleted(leaf.DriveID())
		return model.OutcomeDone
	}

	if err := svc.api.MarkArticleFinished(cls.ClassroomID, leaf.ID); err != nil {
		logger.WithError(err).Error("Article mark failed")
		return model.OutcomeFailed
	}

	logger.Info("Article marked read")
	svc.cache.MarkCompleted(leaf.DriveID())
	return model.OutcomeDone
}
