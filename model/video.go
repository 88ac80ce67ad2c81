package model

// VideoProgress is the ephemeral playback state the platform reports per
// query. Only Completed feeds the completion cache; the rest drives the
// simulation loop.
type VideoProgress struct {
	FirstPoint  int64   `json:"first_point"`
	LastPoint   int64   `json:"last_point"`
	Completed   int     `json:"completed"`
	WatchLength float64 `json:"watch_length"`
	VideoLength float64 `json:"video_length"`
	Rate        float64 `json:"rate"`
}

func (p VideoProgress) Done() bool {
	return p.Completed == 1
}

// LeafInfo is the metadata bundle resolved before any drive. A drive cannot
// proceed without UserID, SkuID and CourseID.
type LeafInfo struct {
	UserID       int64   `json:"user_id"`
	SkuID        int64   `json:"sku_id"`
	CourseID     int64   `json:"course_id"`
	ExerciseID   int64   `json:"exercise_id"`
	ClassEndTime int64   `json:"class_end_time"` // ms epoch
	Duration     float64 `json:"duration"`       // seconds, 0 when unreported
}

func (i LeafInfo) Complete() bool {
	return i.UserID != 0 && i.SkuID != 0 && i.CourseID != 0
}
