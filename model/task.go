// model/task.go
package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind is the closed classification of learning-log entries. Every activity
// and leaf maps to exactly one Kind; codes outside the fixed table map to
// KindUnknown but are still carried through the pass.
type Kind int

const (
	KindUnknown Kind = iota
	KindVideo
	KindSlideshow
	KindArticle
	KindHomework
	KindAnnouncement
	KindLecture
	KindDirectory
	KindExam
)

func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindSlideshow:
		return "slideshow"
	case KindArticle:
		return "article"
	case KindHomework:
		return "homework"
	case KindAnnouncement:
		return "announcement"
	case KindLecture:
		return "lecture"
	case KindDirectory:
		return "directory"
	case KindExam:
		return "exam"
	default:
		return "unknown"
	}
}

// Completable reports whether the orchestrator has a driver for this kind.
func (k Kind) Completable() bool {
	switch k {
	case KindVideo, KindSlideshow, KindArticle, KindHomework:
		return true
	}
	return false
}

// ClassifyActivity maps a top-level activity type code to its Kind.
func ClassifyActivity(code int) Kind {
	switch code {
	case 0, 17:
		return KindVideo
	case 2:
		return KindSlideshow
	case 3, 16:
		return KindArticle
	case 6, 19:
		return KindHomework
	case 9:
		return KindAnnouncement
	case 14:
		return KindLecture
	case 15:
		return KindDirectory
	case 20:
		return KindExam
	default:
		return KindUnknown
	}
}

// ClassifyLeaf maps a leaf_type code from a nested directory to its Kind.
// The leaf table is smaller than the activity table.
func ClassifyLeaf(code int) Kind {
	switch code {
	case 0:
		return KindVideo
	case 3:
		return KindArticle
	case 6:
		return KindHomework
	default:
		return KindUnknown
	}
}

// Activity is one entry of a classroom's learning log, immutable once parsed.
type Activity struct {
	ID           int64
	Type         int
	Kind         Kind
	Title        string
	CoursewareID string
	Deadline     int64 // ms epoch, 0 when absent
	Raw          json.RawMessage
}

// DriveID is the identifier a driver and the completion cache key on.
func (a Activity) DriveID() string {
	if a.CoursewareID != "" {
		return a.CoursewareID
	}
	return fmt.Sprintf("%d", a.ID)
}

// AsLeaf converts a leaf-bearing activity (video, article, homework hanging
// directly off the log) into a drivable Leaf. The courseware id wins over
// the activity id when both are present.
func (a Activity) AsLeaf() (Leaf, bool) {
	id := a.ID
	if a.CoursewareID != "" {
		if n, err := strconv.ParseInt(a.CoursewareID, 10, 64); err == nil && n != 0 {
			id = n
		}
	}
	if id == 0 {
		return Leaf{}, false
	}
	return Leaf{
		ID:       id,
		Type:     a.Type,
		Kind:     a.Kind,
		Title:    a.Title,
		Deadline: a.Deadline,
	}, true
}

// Leaf is a terminal content unit discovered inside a dropdown directory.
// Ancestry is an immutable snapshot of the section titles above it.
type Leaf struct {
	ID        int64
	Type      int
	Kind      Kind
	Title     string
	Ancestry  []string
	StartTime int64
	Deadline  int64 // ms epoch
}

func (l Leaf) DriveID() string {
	return fmt.Sprintf("%d", l.ID)
}

// Classroom carries the per-course context every platform call needs.
type Classroom struct {
	ClassroomID int64
	CourseID    int64
	SkuID       int64
	Name        string
}
