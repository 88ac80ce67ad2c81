// dto/socket.go
package dto

// Outbound message kinds of the slideshow session protocol. Inbound frames
// are logged only, never semantically parsed.

type AuthorizeMessage struct {
	Op          string `json:"op"`
	ClassroomID int64  `json:"classroom_id"`
}

type SocketHeartbeat struct {
	Op string `json:"op"`
}

type ViewRecordMessage struct {
	Op        string    `json:"op"`
	CardsID   int64     `json:"cardsID"`
	StartTime int64     `json:"start_time"` // seconds epoch
	Data      []float64 `json:"data"`       // cumulative per-page dwell seconds
	UserID    int64     `json:"user_id"`
	Platform  string    `json:"platform"`
	Type      string    `json:"type"`
}

func NewAuthorize(classroomID int64) AuthorizeMessage {
	return AuthorizeMessage{Op: "authorize", ClassroomID: classroomID}
}

func NewSocketHeartbeat() SocketHeartbeat {
	return SocketHeartbeat{Op: "heartbeat"}
}
