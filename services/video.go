// services/video.go
package services

import (
	"os"
	"strconv"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/hailin-dev/rainclass/dto"
	"github.com/hailin-dev/rainclass/model"
	"github.com/hailin-dev/rainclass/shared"
	log "github.com/sirupsen/logrus"
)

// videoAPI is the slice of the platform client the video driver needs.
type videoAPI interface {
	LeafInfo(classroomID, leafID int64) (*model.LeafInfo, error)
	VideoProgress(classroomID, userID, courseID, videoID int64) (*model.VideoProgress, error)
	VideoHeartbeat(req dto.HeartbeatRequest) error
}

type completionCache interface {
	IsCompleted(id string) bool
	MarkCompleted(id string)
}

// VideoService drives one video leaf to completion: resolve metadata, check
// the deadline, check remote state, then replay playback with timed
// heartbeats until the playhead reaches the reported length.
type VideoService struct {
	context.DefaultService

	api   videoAPI
	cache completionCache

	heartbeatInterval time.Duration
	playbackSpeed     float64
	defaultLength     float64

	sleep func(time.Duration)
	now   func() time.Time
}

const VIDEO_SVC = "video_svc"

func (svc VideoService) Id() string {
	return VIDEO_SVC
}

func (svc *VideoService) Configure(ctx *context.Context) error {
	svc.heartbeatInterval = shared.DefaultHeartbeatInterval
	if v := os.Getenv("VIDEO_HEARTBEAT_INTERVAL"); v != "" {
		if sec, err := strconv.ParseFloat(v, 64); err == nil && sec > 0 {
			svc.heartbeatInterval = time.Duration(sec * float64(time.Second))
		}
	}

	svc.playbackSpeed = shared.DefaultPlaybackSpeed
	if v := os.Getenv("VIDEO_PLAYBACK_SPEED"); v != "" {
		if speed, err := strconv.ParseFloat(v, 64); err == nil && speed > 0 {
			svc.playbackSpeed = speed
		}
	}

	svc.defaultLength = shared.DefaultVideoLength
	svc.sleep = time.Sleep
	svc.now = time.Now

	return svc.DefaultService.Configure(ctx)
}

func (svc *VideoService) Start() error {
	svc.api = svc.Service(API_SVC).(*ApiService)
	svc.cache = svc.Service(CACHE_SVC).(*CacheService)
	return nil
}

// Drive runs one video to completion. Failures terminate this item only;
// the orchestrator continues with the next one.
func (svc *VideoService) Drive(leaf model.Leaf, cls model.Classroom) model.Outcome {
	logger := log.WithFields(log.Fields{"leaf": leaf.ID, "title": leaf.Title, "classroom": cls.ClassroomID})

	info, err := svc.api.LeafInfo(cls.ClassroomID, leaf.ID)
	if err != nil {
		logger.WithError(err).Error("Video metadata fetch failed")
		return model.OutcomeFailed
	}
	if !info.Complete() {
		logger.Error("Video metadata missing user/sku/course id")
		return model.OutcomeFailed
	}

	deadline := leaf.Deadline
	if deadline == 0 {
		deadline = info.ClassEndTime
	}
	if shared.DeadlinePassed(deadline, svc.now()) {
		logger.WithField("deadline", shared.FormatMillis(deadline)).Info("Deadline passed, skipping video")
		return model.OutcomeSkipped
	}

	progress, err := svc.api.VideoProgress(cls.ClassroomID, info.UserID, info.CourseID, leaf.ID)
	if err != nil {
		logger.WithError(err).Error("Video progress query failed")
		return model.OutcomeFailed
	}
	if progress != nil && progress.Done() {
		logger.Info("Video already complete on remote")
		svc.cache.MarkCompleted(leaf.DriveID())
		return model.OutcomeDone
	}

	length := svc.resolveLength(info, progress, leaf, cls, logger)
	svc.simulate(leaf, cls, info, length, logger)

	svc.verify(leaf, cls, info, logger)
	svc.cache.MarkCompleted(leaf.DriveID())
	return model.OutcomeDone
}

// resolveLength determines the video length, coaxing the platform into
// initializing session state with zero-progress heartbeats when the length
// query comes back empty. Falls back to a fixed default so the simulation
// loop always terminates.
func (svc *VideoService) resolveLength(info *model.LeafInfo, progress *model.VideoProgress, leaf model.Leaf, cls model.Classroom, logger *log.Entry) float64 {
	if progress != nil && progress.VideoLength > 0 {
		return progress.VideoLength
	}
	if info.Duration > 0 {
		return info.Duration
	}

	for attempt := 1; attempt <= shared.LengthRetryCount; attempt++ {
		_ = svc.api.VideoHeartbeat(dto.HeartbeatRequest{
			CourseID:    info.CourseID,
			ClassroomID: cls.ClassroomID,
			VideoID:     leaf.ID,
			UserID:      info.UserID,
			SkuID:       info.SkuID,
			Duration:    0,
			CurrentTime: 0,
		})
		svc.sleep(shared.LengthRetryWait)

		p, err := svc.api.VideoProgress(cls.ClassroomID, info.UserID, info.CourseID, leaf.ID)
		if err != nil {
			logger.WithError(err).WithField("attempt", attempt).Debug("Length query failed")
			continue
		}
		if p != nil && p.VideoLength > 0 {
			return p.VideoLength
		}
	}

	logger.WithField("fallback_seconds", svc.defaultLength).Warn("Video length never resolved, using fallback length")
	return svc.defaultLength
}

// simulate advances a virtual playhead from 0 to length in fixed steps,
// sending one heartbeat per step. The step stays slightly under the
// real-time equivalent of the heartbeat cadence so the playhead never
// appears to outrun the heartbeats.
func (svc *VideoService) simulate(leaf model.Leaf, cls model.Classroom, info *model.LeafInfo, length float64, logger *log.Entry) {
	step := svc.heartbeatInterval.Seconds() * svc.playbackSpeed * 0.8
	if step <= 0 {
		step = 1
	}

	logger.WithFields(log.Fields{"length": length, "step": step}).Info("Simulating video playback")

	playhead := 0.0
	for playhead < length {
		playhead += step
		if playhead > length {
			playhead = length
		}

		err := svc.api.VideoHeartbeat(dto.HeartbeatRequest{
			CourseID:    info.CourseID,
			ClassroomID: cls.ClassroomID,
			VideoID:     leaf.ID,
			UserID:      info.UserID,
			SkuID:       info.SkuID,
			Duration:    length,
			CurrentTime: playhead,
		})
		if err != nil {
			logger.WithError(err).WithField("playhead", playhead).Warn("Heartbeat failed")
		}

		svc.sleep(svc.heartbeatInterval)
	}
}

// verify re-queries remote completion after the loop. The loop having run to
// the reported length is treated as sufficient either way, but an
// unobtainable verification gets its own log signal.
func (svc *VideoService) verify(leaf model.Leaf, cls model.Classroom, info *model.LeafInfo, logger *log.Entry) {
	for attempt := 1; attempt <= shared.VerifyRetryCount; attempt++ {
		p, err := svc.api.VideoProgress(cls.ClassroomID, info.UserID, info.CourseID, leaf.ID)
		if err == nil && p != nil {
			logger.WithFields(log.Fields{"completed": p.Completed, "rate": p.Rate}).Info("Video final state")
			return
		}
		if err != nil {
			logger.WithError(err).WithField("attempt", attempt).Debug("Final verify failed")
		}
		svc.sleep(shared.DefaultRetryWait)
	}
	logger.Warn("Video final state could not be verified")
}
