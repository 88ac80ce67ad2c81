// services/homework.go
package services

import (
	"github.com/alphabatem/common/context"
	"github.com/hailin-dev/rainclass/dto"
	"github.com/hailin-dev/rainclass/model"
	log "github.com/sirupsen/logrus"
)

// homeworkAPI is the slice of the platform client the homework driver needs.
type homeworkAPI interface {
	LeafInfo(classroomID, leafID int64) (*model.LeafInfo, error)
	ExerciseList(classroomID, exerciseID int64) ([]model.Problem, error)
	SubmitAnswer(classroomID, problemID int64, answer interface{}) error
}

type answerLookup interface {
	Lookup(q dto.QuestionQuery) (string, error)
}

// HomeworkService drives a quiz/homework leaf: resolve its exercise id,
// fetch the question set, answer what isn't answered yet, submit, and mark
// the leaf done once every question has been iterated. A fully-processed
// but partially-wrong homework is still done; there is no in-process retry
// of wrong answers.
type HomeworkService struct {
	context.DefaultService

	api      homeworkAPI
	cache    completionCache
	bank     answerLookup
	resolver *AnswerService
}

const HOMEWORK_SVC = "homework_svc"

func (svc HomeworkService) Id() string {
	return HOMEWORK_SVC
}

func (svc *HomeworkService) Start() error {
	svc.api = svc.Service(API_SVC).(*ApiService)
	svc.cache = svc.Service(CACHE_SVC).(*CacheService)
	svc.bank = svc.Service(QUESTION_BANK_SVC).(*QuestionBankService)
	svc.resolver = svc.Service(ANSWER_SVC).(*AnswerService)
	return nil
}

// Drive processes one homework leaf to completion.
func (svc *HomeworkService) Drive(leaf model.Leaf, cls model.Classroom) model.Outcome {
	logger := log.WithFields(log.Fields{"leaf": leaf.ID, "title": leaf.Title, "classroom": cls.ClassroomID})

	info, err := svc.api.LeafInfo(cls.ClassroomID, leaf.ID)
	if err != nil {
		logger.WithError(err).Error("Homework metadata fetch failed")
		return model.OutcomeFailed
	}
	if info.ExerciseID == 0 {
		logger.Error("Homework has no exercise id")
		return model.OutcomeFailed
	}

	problems, err := svc.api.ExerciseList(cls.ClassroomID, info.ExerciseID)
	if err != nil {
		logger.WithError(err).Error("Question set fetch failed")
		return model.OutcomeFailed
	}

	submitted := 0
	for _, p := range problems {
		if p.Answered() {
			logger.WithField("problem", p.ProblemID).Debug("Question already answered, skipping")
			continue
		}
		if svc.answer(p, cls, logger) {
			submitted++
		}
	}

	// Leaf-level completion is recorded after the full iteration regardless
	// of individual submit outcomes.
	svc.cache.MarkCompleted(leaf.DriveID())
	logger.WithFields(log.Fields{"questions": len(problems), "submitted": submitted}).Info("Homework processed")
	return model.OutcomeDone
}

// answer resolves and submits one question. A lookup or resolution failure
// leaves the question unsubmitted and moves on.
func (svc *HomeworkService) answer(p model.Problem, cls model.Classroom, logger *log.Entry) bool {
	query := svc.resolver.BuildQuery(p)

	raw, err := svc.bank.Lookup(query)
	if err != nil {
		logger.WithError(err).WithField("problem", p.ProblemID).Warn("Answer lookup failed, question left unsubmitted")
		return false
	}
	if raw == "" {
		logger.WithField("problem", p.ProblemID).Warn("No answer found, question left unsubmitted")
		return false
	}

	resolved := svc.resolver.Resolve(p, raw)
	if resolved.Empty() {
		logger.WithFields(log.Fields{"problem": p.ProblemID, "raw": raw}).Warn("Answer did not resolve to a submittable form")
		return false
	}

	if err := svc.api.SubmitAnswer(cls.ClassroomID, p.ProblemID, resolved.Payload()); err != nil {
		logger.WithError(err).WithField("problem", p.ProblemID).Warn("Answer submit failed")
		return false
	}

	logger.WithFields(log.Fields{"problem": p.ProblemID, "answer": resolved.Payload()}).Info("Answer submitted")
	return true
}
