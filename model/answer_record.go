// model/answer_record.go
package model

import "time"

// AnswerRecord is a locally stored question/answer pair. Every successful
// remote lookup is recorded so repeat homework runs resolve offline first.
type AnswerRecord struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Fingerprint string    `json:"fingerprint" gorm:"uniqueIndex;not null"`
	Question    string    `json:"question" gorm:"type:text"`
	Type        int       `json:"type"`
	Answer      string    `json:"answer" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
