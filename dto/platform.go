// dto/platform.go
//
// Response envelopes for the platform's private web endpoints. Shapes follow
// what the endpoints actually return, not a schema the platform publishes;
// optional branches are pointers so callers can tell "absent" from "empty".
package dto

import "encoding/json"

// LearnLogResponse wraps one classroom's activity log. Data or Activities
// being nil means the response is malformed, not an empty log.
type LearnLogResponse struct {
	Data *struct {
		Activities []ActivityPayload `json:"activities"`
	} `json:"data"`
}

type ActivityPayload struct {
	ID           int64           `json:"id"`
	Type         int             `json:"type"`
	Title        string          `json:"title"`
	CoursewareID string          `json:"courseware_id"`
	Content      ActivityContent `json:"content"`
	Raw          json.RawMessage `json:"-"`
}

type ActivityContent struct {
	ScoreDeadline int64 `json:"score_d"` // ms epoch
	PageCount     int   `json:"page_count"`
}

// CourseListResponse tolerates the two shapes the endpoint has shipped:
// data as a list of entries, or data as an object whose list-valued fields
// each hold entries.
type CourseListResponse struct {
	Data json.RawMessage `json:"data"`
}

type CourseEntry struct {
	ClassroomID int64  `json:"classroom_id"`
	SkuID       int64  `json:"sku_id"`
	Name        string `json:"name"`
	Course      struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"course"`
}

// LeafListResponse is the nested tree behind a dropdown directory. Sections
// nest arbitrarily deep via SectionList.
type LeafListResponse struct {
	Data *struct {
		ContentInfo []LeafSection `json:"content_info"`
	} `json:"data"`
}

type LeafSection struct {
	Name        string        `json:"name"`
	LeafList    []LeafPayload `json:"leaf_list"`
	SectionList []LeafSection `json:"section_list"`
}

type LeafPayload struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	LeafType      int    `json:"leaf_type"`
	StartTime     int64  `json:"start_time"`
	ScoreDeadline int64  `json:"score_deadline"`
}

type LeafInfoResponse struct {
	Data *struct {
		UserID       int64 `json:"user_id"`
		SkuID        int64 `json:"sku_id"`
		CourseID     int64 `json:"course_id"`
		ClassEndTime int64 `json:"class_end_time"`
		ContentInfo  *struct {
			ExerciseID int64 `json:"exercise_id"`
			Media      struct {
				Duration float64 `json:"duration"`
			} `json:"media"`
		} `json:"content_info"`
	} `json:"data"`
}

// VideoProgressResponse keys playback state by video id.
type VideoProgressResponse struct {
	Data map[string]VideoProgressPayload `json:"data"`
}

type VideoProgressPayload struct {
	FirstPoint  int64   `json:"first_point"`
	LastPoint   int64   `json:"last_point"`
	Completed   int     `json:"completed"`
	WatchLength float64 `json:"watch_length"`
	VideoLength float64 `json:"video_length"`
	Rate        float64 `json:"rate"`
}

type HeartbeatRequest struct {
	CourseID    int64   `json:"course_id"`
	ClassroomID int64   `json:"classroom_id"`
	VideoID     int64   `json:"video_id"`
	UserID      int64   `json:"user_id"`
	SkuID       int64   `json:"sku_id"`
	Duration    float64 `json:"duration"`
	CurrentTime float64 `json:"current_time"`
}

type ArticleStatusResponse struct {
	Data *struct {
		Finished int `json:"finished"`
	} `json:"data"`
}

type ExerciseListResponse struct {
	Data *struct {
		Name     string           `json:"name"`
		Font     string           `json:"font"`
		Problems []ProblemPayload `json:"problems"`
	} `json:"data"`
}

type ProblemPayload struct {
	ProblemID int64 `json:"problem_id"`
	Content   struct {
		Body    string          `json:"Body"`
		Type    int             `json:"Type"`
		Options []OptionPayload `json:"Options"`
	} `json:"content"`
	User struct {
		SubmitTime int64 `json:"submit_time"`
	} `json:"user"`
}

type OptionPayload struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type SubmitAnswerRequest struct {
	ClassroomID int64       `json:"classroom_id" validate:"required"`
	ProblemID   int64       `json:"problem_id" validate:"required"`
	Answer      interface{} `json:"answer" validate:"required"`
}

type UserInfoResponse struct {
	Data []struct {
		UserID int64  `json:"user_id"`
		Name   string `json:"name"`
	} `json:"data"`
}

type RobotConfigResponse struct {
	Data *struct {
		UserID int64 `json:"user_id"`
	} `json:"data"`
}

// QuestionQuery is the normalized descriptor sent to the answer lookup
// service. Options are keyed by option letter; absent for open-response.
type QuestionQuery struct {
	Value   string            `json:"value"`
	Type    int               `json:"type"`
	Options map[string]string `json:"options,omitempty"`
}

type QuestionBankResponse struct {
	Data *struct {
		Answer string `json:"answer"`
	} `json:"data"`
}
