// services/slideshow.go
package services

import (
	"math"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gorilla/websocket"
	"github.com/hailin-dev/rainclass/dto"
	"github.com/hailin-dev/rainclass/model"
	"github.com/hailin-dev/rainclass/shared"
	log "github.com/sirupsen/logrus"
)

// slideConn is the slice of a websocket connection the session uses.
// *websocket.Conn satisfies it.
type slideConn interface {
	WriteJSON(v interface{}) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// socketConfig is what the driver needs to open a session.
type socketConfig interface {
	Cookie() string
	SocketURL() string
}

// SlideshowService drives a paged-slideshow courseware over a long-lived
// socket session: authorize, keep a heartbeat running, replay one view
// record per page with realistic dwell, then close from our side.
type SlideshowService struct {
	context.DefaultService

	api   socketConfig
	cache completionCache

	dial              func(url string, header http.Header) (slideConn, error)
	heartbeatInterval time.Duration
	reconnect         bool

	sleep func(time.Duration)
	rand  *rand.Rand
}

const SLIDESHOW_SVC = "slideshow_svc"

func (svc SlideshowService) Id() string {
	return SLIDESHOW_SVC
}

func (svc *SlideshowService) Configure(ctx *context.Context) error {
	svc.heartbeatInterval = shared.DefaultSlideHeartbeat
	// The platform's own client reconnects on abnormal closure; ours treats
	// it as terminal by default and lets the next run's cache miss retry.
	svc.reconnect = os.Getenv("SLIDESHOW_RECONNECT") == "true"
	svc.sleep = time.Sleep
	svc.rand = rand.New(rand.NewSource(time.Now().UnixNano()))

	return svc.DefaultService.Configure(ctx)
}

func (svc *SlideshowService) Start() error {
	svc.api = svc.Service(API_SVC).(*ApiService)
	svc.cache = svc.Service(CACHE_SVC).(*CacheService)

	svc.dial = func(url string, header http.Header) (slideConn, error) {
		conn, _, err := websocket.DefaultDialer.Dial(url, header)
		return conn, err
	}
	return nil
}

// Drive opens one session for the courseware and blocks until the view
// replay finished or the session died. The cache entry is written only when
// every page was viewed.
func (svc *SlideshowService) Drive(activity model.Activity, cls model.Classroom, pageCount int, userID int64) model.Outcome {
	logger := log.WithFields(log.Fields{"cards": activity.ID, "title": activity.Title, "pages": pageCount})

	if pageCount <= 0 {
		logger.Warn("Slideshow has no pages, skipping")
		return model.OutcomeSkipped
	}

	attempts := 1
	if svc.reconnect {
		attempts = 2
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		sess, err := svc.open(activity.ID, cls.ClassroomID, userID, pageCount, logger)
		if err != nil {
			logger.WithError(err).Error("Slideshow session dial failed")
			return model.OutcomeFailed
		}

		sess.Wait()
		if sess.Viewed() {
			svc.cache.MarkCompleted(activity.DriveID())
			logger.Info("Slideshow complete")
			return model.OutcomeDone
		}
		logger.WithField("attempt", attempt).Warn("Slideshow session closed before replay finished")
	}

	return model.OutcomeFailed
}

func (svc *SlideshowService) open(cardsID, classroomID, userID int64, pageCount int, logger *log.Entry) (*slideSession, error) {
	header := http.Header{}
	header.Set("Cookie", svc.api.Cookie())
	header.Set("Origin", shared.DefaultOrigin)
	header.Set("User-Agent", "Mozilla/5.0")

	conn, err := svc.dial(svc.api.SocketURL(), header)
	if err != nil {
		return nil, err
	}

	sess := &slideSession{
		conn:              conn,
		cardsID:           cardsID,
		classroomID:       classroomID,
		userID:            userID,
		pageCount:         pageCount,
		heartbeatInterval: svc.heartbeatInterval,
		sleep:             svc.sleep,
		rand:              svc.rand,
		logger:            logger,
		done:              make(chan struct{}),
	}
	sess.run()
	return sess, nil
}

// slideSession is one open socket session. The view goroutine and the
// heartbeat goroutine both write; writes are serialized through writeMu
// because the connection allows a single writer.
type slideSession struct {
	conn        slideConn
	cardsID     int64
	classroomID int64
	userID      int64
	pageCount   int

	heartbeatInterval time.Duration
	sleep             func(time.Duration)
	rand              *rand.Rand
	logger            *log.Entry

	writeMu  sync.Mutex
	doneOnce sync.Once
	done     chan struct{}

	viewedMu sync.Mutex
	viewed   bool
}

func (s *slideSession) run() {
	if err := s.send(dto.NewAuthorize(s.classroomID)); err != nil {
		s.logger.WithError(err).Error("Slideshow authorize failed")
		s.finish()
		return
	}

	// first heartbeat goes out with the session open, not one interval later
	if err := s.send(dto.NewSocketHeartbeat()); err != nil {
		s.logger.WithError(err).Error("Slideshow initial heartbeat failed")
		s.finish()
		return
	}

	go s.readLoop()
	go s.heartbeatLoop()
	go s.viewLoop()
}

// Wait blocks until the session is finished, whichever side ended it.
func (s *slideSession) Wait() {
	<-s.done
}

// Viewed reports whether every page's view record went out.
func (s *slideSession) Viewed() bool {
	s.viewedMu.Lock()
	defer s.viewedMu.Unlock()
	return s.viewed
}

func (s *slideSession) send(v interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}

// finish closes the session exactly once, from any goroutine. Every exit
// path of every loop ends here so the caller's Wait never blocks forever.
func (s *slideSession) finish() {
	s.doneOnce.Do(func() {
		_ = s.conn.Close()
		close(s.done)
	})
}

// readLoop drains inbound frames. They are logged, never parsed; a read
// error means the remote side closed.
func (s *slideSession) readLoop() {
	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				s.logger.WithError(err).Info("Slideshow session closed by remote")
			}
			s.finish()
			return
		}
		s.logger.WithField("frame", string(msg)).Debug("Slideshow inbound")
	}
}

func (s *slideSession) heartbeatLoop() {
	ticker := time.NewTicker(s.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.send(dto.NewSocketHeartbeat()); err != nil {
				s.finish()
				return
			}
		}
	}
}

// viewLoop replays one view record per page, carrying the cumulative dwell
// array each time, then closes the session from our side.
func (s *slideSession) viewLoop() {
	defer s.finish()

	dwell := make([]float64, s.pageCount)

	for i := 0; i < s.pageCount; i++ {
		select {
		case <-s.done:
			return
		default:
		}

		stay := math.Round((shared.MinPageDwell+s.rand.Float64()*(shared.MaxPageDwell-shared.MinPageDwell))*10) / 10
		dwell[i] = stay

		record := dto.ViewRecordMessage{
			Op:        "view_record",
			CardsID:   s.cardsID,
			StartTime: time.Now().Unix(),
			Data:      append([]float64(nil), dwell...),
			UserID:    s.userID,
			Platform:  "web",
			Type:      "cache",
		}
		if err := s.send(record); err != nil {
			s.logger.WithError(err).WithField("page", i+1).Error("View record send failed")
			return
		}

		s.logger.WithFields(log.Fields{"page": i + 1, "of": s.pageCount, "dwell": stay}).Info("Slideshow page viewed")
		s.sleep(time.Duration(stay * float64(time.Second)))
	}

	s.viewedMu.Lock()
	s.viewed = true
	s.viewedMu.Unlock()
}
