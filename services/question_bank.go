// services/question_bank.go
package services

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/hailin-dev/rainclass/dto"
	"github.com/hailin-dev/rainclass/model"
	"github.com/hailin-dev/rainclass/shared"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// QuestionBankService resolves question text to a raw answer. Lookups go to
// the local answer store first; remote hits are recorded there so repeat runs
// answer offline. The remote side is treated as unreliable: a miss or timeout
// is a normal empty result, not a failure of the pass.
type QuestionBankService struct {
	context.DefaultService

	sqlSvc *SqliteService
	client *resty.Client

	endpoint string
	token    string
}

const QUESTION_BANK_SVC = "question_bank_svc"

func (svc QuestionBankService) Id() string {
	return QUESTION_BANK_SVC
}

func (svc *QuestionBankService) Configure(ctx *context.Context) error {
	svc.endpoint = os.Getenv("QUESTION_BANK_URL")
	svc.token = os.Getenv("QUESTION_BANK_TOKEN")

	return svc.DefaultService.Configure(ctx)
}

func (svc *QuestionBankService) Start() error {
	svc.sqlSvc = svc.Service(SQLITE_SVC).(*SqliteService)
	svc.client = resty.New().SetTimeout(shared.DefaultTimeout)
	return nil
}

// Lookup returns the raw answer text for a normalized question descriptor,
// or "" when nothing resolves.
func (svc *QuestionBankService) Lookup(q dto.QuestionQuery) (string, error) {
	fp := Fingerprint(q.Value, q.Type)

	if svc.sqlSvc != nil && svc.sqlSvc.Db() != nil {
		var rec model.AnswerRecord
		err := svc.sqlSvc.Db().Where("fingerprint = ?", fp).First(&rec).Error
		if err == nil {
			log.WithField("fingerprint", fp).Debug("Answer served from local store")
			return rec.Answer, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.WithError(err).Warn("Answer store lookup failed")
		}
	}

	answer, err := svc.remoteLookup(q)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return "", nil
	}

	svc.store(fp, q, answer)
	return answer, nil
}

func (svc *QuestionBankService) remoteLookup(q dto.QuestionQuery) (string, error) {
	if svc.endpoint == "" {
		return "", fmt.Errorf("question bank endpoint not configured")
	}

	resp, err := svc.client.R().
		SetHeader("Authorization", svc.token).
		SetHeader("content-type", "application/json").
		SetBody(q).
		Post(svc.endpoint)
	if err != nil {
		return "", fmt.Errorf("question bank: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("question bank: status %d", resp.StatusCode())
	}

	var res dto.QuestionBankResponse
	if err := shared.JSON().Unmarshal(resp.Body(), &res); err != nil {
		return "", fmt.Errorf("question bank: decode: %w", err)
	}
	if res.Data == nil {
		return "", nil
	}
	return res.Data.Answer, nil
}

func (svc *QuestionBankService) store(fp string, q dto.QuestionQuery, answer string) {
	if svc.sqlSvc == nil || svc.sqlSvc.Db() == nil {
		return
	}

	id, _ := uuid.NewV7()
	rec := model.AnswerRecord{
		ID:          id.String(),
		Fingerprint: fp,
		Question:    q.Value,
		Type:        q.Type,
		Answer:      answer,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := svc.sqlSvc.Db().Create(&rec).Error; err != nil {
		log.WithError(err).Warn("Failed to record answer")
	}
}

// Fingerprint keys a question in the local store by its text and type.
func Fingerprint(value string, qType int) string {
	h := sha1.Sum([]byte(value + "|" + strconv.Itoa(qType)))
	return hex.EncodeToString(h[:])
}
