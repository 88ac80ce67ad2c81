// services/orchestrator.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/hailin-dev/rainclass/dto"
	"github.com/hailin-dev/rainclass/model"
	"github.com/hailin-dev/rainclass/shared"
	log "github.com/sirupsen/logrus"
)

// ErrMalformedResponse marks an activity log without a data.activities list.
// The pass logs it and carries on with an empty summary; it never escapes
// the orchestrator boundary.
var ErrMalformedResponse = errors.New("malformed activity log response")

// maxWalkDepth bounds the nested-section recursion. The source tree has no
// cycles by construction; the guard covers a platform bug sending one.
const maxWalkDepth = 32

type orchestratorAPI interface {
	UserInfo() (int64, string, error)
	CourseList() ([]model.Classroom, error)
	LearnLog(classroomID int64) ([]byte, error)
	LeafList(coursewareID string) (*dto.LeafListResponse, error)
	SlidePageCount(classroomID, cardsID int64) (int, error)
}

type leafDriver interface {
	Drive(leaf model.Leaf, cls model.Classroom) model.Outcome
}

type slideDriver interface {
	Drive(activity model.Activity, cls model.Classroom, pageCount int, userID int64) model.Outcome
}

// OrchestratorService walks each classroom's activity log, classifies every
// entry against the fixed type table, and hands completable items to their
// driver, gated on the completion cache so repeat runs are idempotent.
// One item's failure never aborts the pass.
type OrchestratorService struct {
	context.DefaultService

	api       orchestratorAPI
	cache     completionCache
	video     leafDriver
	article   leafDriver
	homework  leafDriver
	slideshow slideDriver

	selection  string
	reportFile string
}

const ORCHESTRATOR_SVC = "orchestrator_svc"

func (svc OrchestratorService) Id() string {
	return ORCHESTRATOR_SVC
}

func (svc *OrchestratorService) Configure(ctx *context.Context) error {
	svc.selection = os.Getenv("COURSE_SELECTION")
	svc.reportFile = os.Getenv("REPORT_FILE")

	return svc.DefaultService.Configure(ctx)
}

// Start runs one full pass over the selected classrooms and returns when
// every activity has been visited. This service goes last in the container;
// its return ends the process.
func (svc *OrchestratorService) Start() error {
	svc.api = svc.Service(API_SVC).(*ApiService)
	svc.cache = svc.Service(CACHE_SVC).(*CacheService)
	svc.video = svc.Service(VIDEO_SVC).(*VideoService)
	svc.article = svc.Service(ARTICLE_SVC).(*ArticleService)
	svc.homework = svc.Service(HOMEWORK_SVC).(*HomeworkService)
	svc.slideshow = svc.Service(SLIDESHOW_SVC).(*SlideshowService)

	return svc.runPass()
}

func (svc *OrchestratorService) runPass() error {
	userID, name, err := svc.api.UserInfo()
	if err != nil {
		return fmt.Errorf("resolve user: %w", err)
	}
	log.WithFields(log.Fields{"user": name, "user_id": userID}).Info("Starting completion pass")

	classrooms, err := svc.api.CourseList()
	if err != nil {
		return fmt.Errorf("course list: %w", err)
	}
	log.WithField("courses", len(classrooms)).Info("Course list fetched")

	selected := classrooms
	if svc.selection != "" {
		idx := shared.ParseSelection(svc.selection, len(classrooms))
		selected = make([]model.Classroom, 0, len(idx))
		for _, i := range idx {
			selected = append(selected, classrooms[i])
		}
	}

	reports := make(map[string]*model.Summary, len(selected))
	for _, cls := range selected {
		logger := log.WithFields(log.Fields{"classroom": cls.ClassroomID, "course": cls.Name})
		logger.Info("Processing classroom")

		raw, err := svc.api.LearnLog(cls.ClassroomID)
		if err != nil {
			logger.WithError(err).Error("Activity log fetch failed, continuing with next classroom")
			continue
		}

		summary, err := svc.Process(raw, cls, userID)
		if err != nil {
			logger.WithError(err).Error("Activity log unusable")
		}
		reports[strconv.FormatInt(cls.ClassroomID, 10)] = summary

		logger.WithFields(log.Fields{
			"activities": summary.Total(),
			"leaves":     len(summary.Leaves),
			"outcomes":   summary.Outcomes,
		}).Info("Classroom processed")
	}

	if svc.reportFile != "" {
		if err := shared.SaveJSON(svc.reportFile, reports); err != nil {
			log.WithError(err).Warn("Report write failed")
		}
	}

	log.Info("Completion pass finished")
	return nil
}

// Process classifies one classroom's raw activity log and drives every
// completable item. It always returns a summary, even an empty one for a
// malformed response.
func (svc *OrchestratorService) Process(raw []byte, cls model.Classroom, userID int64) (*model.Summary, error) {
	summary := model.NewSummary()

	var res dto.LearnLogResponse
	if err := shared.JSON().Unmarshal(raw, &res); err != nil {
		log.WithError(err).Error("Activity log did not parse")
		return summary, ErrMalformedResponse
	}
	if res.Data == nil || res.Data.Activities == nil {
		log.Error("Activity log has no data.activities")
		return summary, ErrMalformedResponse
	}

	var rawItems struct {
		Data struct {
			Activities []json.RawMessage `json:"activities"`
		} `json:"data"`
	}
	_ = shared.JSON().Unmarshal(raw, &rawItems)

	log.WithFields(log.Fields{"count": len(res.Data.Activities), "classroom": cls.ClassroomID}).Info("Activities detected")

	for i, payload := range res.Data.Activities {
		activity := model.Activity{
			ID:           payload.ID,
			Type:         payload.Type,
			Kind:         model.ClassifyActivity(payload.Type),
			Title:        payload.Title,
			CoursewareID: payload.CoursewareID,
			Deadline:     payload.Content.ScoreDeadline,
		}
		if i < len(rawItems.Data.Activities) {
			activity.Raw = rawItems.Data.Activities[i]
		}

		summary.Add(activity)
		recordClassified(activity.Kind)

		log.WithFields(log.Fields{
			"kind":     activity.Kind.String(),
			"type":     activity.Type,
			"id":       activity.ID,
			"title":    activity.Title,
			"deadline": shared.FormatMillis(activity.Deadline),
		}).Info("Activity classified")

		svc.dispatch(activity, payload, cls, userID, summary)
	}

	return summary, nil
}

func (svc *OrchestratorService) dispatch(activity model.Activity, payload dto.ActivityPayload, cls model.Classroom, userID int64, summary *model.Summary) {
	switch activity.Kind {
	case model.KindVideo, model.KindArticle, model.KindHomework:
		leaf, ok := activity.AsLeaf()
		if !ok {
			log.WithField("id", activity.ID).Warn("Activity has no resolvable leaf id")
			summary.Record(model.OutcomeFailed)
			return
		}
		svc.driveLeaf(leaf, cls, summary)

	case model.KindSlideshow:
		svc.driveSlideshow(activity, payload, cls, userID, summary)

	case model.KindDirectory:
		svc.descend(activity, cls, summary)

	default:
		// announcements, lectures, exams and unknown codes are recorded
		// but not driven
	}
}

func (svc *OrchestratorService) driveLeaf(leaf model.Leaf, cls model.Classroom, summary *model.Summary) {
	if svc.cache.IsCompleted(leaf.DriveID()) {
		log.WithFields(log.Fields{"leaf": leaf.ID, "title": leaf.Title}).Info("Cache hit, skipping drive")
		summary.Record(model.OutcomeCached)
		recordDrive(leaf.Kind, model.OutcomeCached)
		return
	}

	var outcome model.Outcome
	switch leaf.Kind {
	case model.KindVideo:
		outcome = svc.video.Drive(leaf, cls)
	case model.KindArticle:
		outcome = svc.article.Drive(leaf, cls)
	case model.KindHomework:
		outcome = svc.homework.Drive(leaf, cls)
	default:
		outcome = model.OutcomeSkipped
	}

	summary.Record(outcome)
	recordDrive(leaf.Kind, outcome)
}

func (svc *OrchestratorService) driveSlideshow(activity model.Activity, payload dto.ActivityPayload, cls model.Classroom, userID int64, summary *model.Summary) {
	if svc.cache.IsCompleted(activity.DriveID()) {
		log.WithField("cards", activity.ID).Info("Cache hit, skipping slideshow")
		summary.Record(model.OutcomeCached)
		recordDrive(model.KindSlideshow, model.OutcomeCached)
		return
	}

	pageCount := payload.Content.PageCount
	if pageCount == 0 {
		var err error
		pageCount, err = svc.api.SlidePageCount(cls.ClassroomID, activity.ID)
		if err != nil {
			log.WithError(err).WithField("cards", activity.ID).Error("Page count fetch failed")
			summary.Record(model.OutcomeFailed)
			recordDrive(model.KindSlideshow, model.OutcomeFailed)
			return
		}
	}

	outcome := svc.slideshow.Drive(activity, cls, pageCount, userID)
	summary.Record(outcome)
	recordDrive(model.KindSlideshow, outcome)
}

// descend walks a dropdown directory's nested tree depth-first, draining
// every discovered leaf before the pass moves to the next top-level entry.
func (svc *OrchestratorService) descend(activity model.Activity, cls model.Classroom, summary *model.Summary) {
	if activity.CoursewareID == "" {
		log.WithField("id", activity.ID).Warn("Directory without courseware id")
		return
	}

	res, err := svc.api.LeafList(activity.CoursewareID)
	if err != nil {
		log.WithError(err).WithField("courseware", activity.CoursewareID).Error("Directory fetch failed")
		summary.Record(model.OutcomeFailed)
		return
	}
	if res.Data == nil {
		log.WithField("courseware", activity.CoursewareID).Warn("Directory response empty")
		return
	}

	leaves := WalkSections(res.Data.ContentInfo, []string{activity.Title})
	summary.Leaves = append(summary.Leaves, leaves...)

	for _, leaf := range leaves {
		log.WithFields(log.Fields{
			"kind":     leaf.Kind.String(),
			"leaf":     leaf.ID,
			"title":    leaf.Title,
			"ancestry": leaf.Ancestry,
		}).Info("Leaf discovered")

		if !leaf.Kind.Completable() {
			continue
		}
		svc.driveLeaf(leaf, cls, summary)
	}
}

// WalkSections flattens a nested section tree into leaves, depth-first in
// source order. Each leaf gets its own ancestry snapshot; recursion levels
// never share a path slice.
func WalkSections(sections []dto.LeafSection, ancestry []string) []model.Leaf {
	return walkSections(sections, ancestry, 0)
}

func walkSections(sections []dto.LeafSection, ancestry []string, depth int) []model.Leaf {
	if depth >= maxWalkDepth {
		log.WithField("depth", depth).Warn("Section tree deeper than guard, truncating walk")
		return nil
	}

	var leaves []model.Leaf
	for _, section := range sections {
		path := make([]string, 0, len(ancestry)+1)
		path = append(path, ancestry...)
		path = append(path, section.Name)

		for _, leaf := range section.LeafList {
			leaves = append(leaves, model.Leaf{
				ID:        leaf.ID,
				Type:      leaf.LeafType,
				Kind:      model.ClassifyLeaf(leaf.LeafType),
				Title:     leaf.Title,
				Ancestry:  path,
				StartTime: leaf.StartTime,
				Deadline:  leaf.ScoreDeadline,
			})
		}

		leaves = append(leaves, walkSections(section.SectionList, path, depth+1)...)
	}
	return leaves
}
