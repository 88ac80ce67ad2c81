// services/api.go
package services

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/go-resty/resty/v2"
	"github.com/hailin-dev/rainclass/dto"
	"github.com/hailin-dev/rainclass/model"
	"github.com/hailin-dev/rainclass/shared"
	log "github.com/sirupsen/logrus"
)

// ApiService is the single outbound client for the platform's private web
// endpoints. It owns header randomization and the pre-request delay; callers
// get parsed payloads or an error, never a raw transport failure mid-pass.
type ApiService struct {
	context.DefaultService

	credSvc *CredentialService

	client       *resty.Client
	baseURL      string
	socketURL    string
	requestDelay time.Duration
}

const API_SVC = "api_svc"

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_5) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14.5; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_5) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.0.0",
}

func (svc ApiService) Id() string {
	return API_SVC
}

func (svc *ApiService) Configure(ctx *context.Context) error {
	svc.baseURL = os.Getenv("API_BASE_URL")
	if svc.baseURL == "" {
		svc.baseURL = shared.DefaultBaseURL
	}
	svc.socketURL = os.Getenv("SOCKET_URL")
	if svc.socketURL == "" {
		svc.socketURL = shared.DefaultSocketURL
	}

	svc.requestDelay = shared.DefaultRequestDelay
	if d := os.Getenv("API_REQUEST_DELAY"); d != "" {
		if sec, err := strconv.ParseFloat(d, 64); err == nil {
			svc.requestDelay = time.Duration(sec * float64(time.Second))
		}
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *ApiService) Start() error {
	svc.credSvc = svc.Service(CREDENTIAL_SVC).(*CredentialService)

	svc.client = resty.New().
		SetBaseURL(svc.baseURL).
		SetTimeout(shared.DefaultTimeout).
		SetRetryCount(shared.DefaultRetryCount).
		SetRetryWaitTime(shared.DefaultRetryWait)

	return nil
}

// SocketURL is the slideshow session endpoint.
func (svc *ApiService) SocketURL() string {
	return svc.socketURL
}

// Cookie exposes the active credential for the socket dial headers.
func (svc *ApiService) Cookie() string {
	return svc.credSvc.Cookie()
}

func (svc *ApiService) request() *resty.Request {
	if svc.requestDelay > 0 {
		time.Sleep(svc.requestDelay)
	}
	return svc.client.R().SetHeaders(map[string]string{
		"xt-agent":        "web",
		"referer":         shared.DefaultReferer,
		"user-agent":      userAgents[rand.Intn(len(userAgents))],
		"accept":          "application/json, text/plain, */*",
		"accept-language": "zh-CN,zh;q=0.9,en;q=0.8",
		"origin":          shared.DefaultOrigin,
		"cookie":          svc.credSvc.Cookie(),
	})
}

func (svc *ApiService) get(url, endpoint string, out interface{}) error {
	resp, err := svc.request().Get(url)
	if err != nil {
		recordRequest(endpoint, "error")
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	if resp.StatusCode() != 200 {
		recordRequest(endpoint, strconv.Itoa(resp.StatusCode()))
		return fmt.Errorf("%s: status %d", endpoint, resp.StatusCode())
	}
	recordRequest(endpoint, "200")
	if out == nil {
		return nil
	}
	if err := shared.JSON().Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s: decode: %w", endpoint, err)
	}
	return nil
}

func (svc *ApiService) post(url, endpoint string, body, out interface{}) error {
	resp, err := svc.request().
		SetHeader("content-type", "application/json").
		SetBody(body).
		Post(url)
	if err != nil {
		recordRequest(endpoint, "error")
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	if resp.StatusCode() != 200 {
		recordRequest(endpoint, strconv.Itoa(resp.StatusCode()))
		return fmt.Errorf("%s: status %d", endpoint, resp.StatusCode())
	}
	recordRequest(endpoint, "200")
	if out == nil {
		return nil
	}
	if err := shared.JSON().Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s: decode: %w", endpoint, err)
	}
	return nil
}

// UserInfo resolves the logged-in user behind the active cookie.
func (svc *ApiService) UserInfo() (int64, string, error) {
	var res dto.UserInfoResponse
	if err := svc.get("/v2/api/web/userinfo", "userinfo", &res); err != nil {
		return 0, "", err
	}
	if len(res.Data) == 0 {
		return 0, "", fmt.Errorf("userinfo: empty user list")
	}
	return res.Data[0].UserID, res.Data[0].Name, nil
}

// CourseList returns the classrooms the user is enrolled in. The endpoint
// has shipped data either as a list or as an object of lists; both load.
func (svc *ApiService) CourseList() ([]model.Classroom, error) {
	var res dto.CourseListResponse
	if err := svc.get("/v2/api/web/courses/list?identity=2", "course_list", &res); err != nil {
		return nil, err
	}

	var entries []dto.CourseEntry
	if err := shared.JSON().Unmarshal(res.Data, &entries); err != nil {
		var grouped map[string][]dto.CourseEntry
		if err := shared.JSON().Unmarshal(res.Data, &grouped); err != nil {
			return nil, fmt.Errorf("course_list: unrecognized data shape")
		}
		// groups flatten in sorted-key order so selection indexes stay
		// stable across runs
		keys := make([]string, 0, len(grouped))
		for k := range grouped {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			entries = append(entries, grouped[k]...)
		}
	}

	classrooms := make([]model.Classroom, 0, len(entries))
	for _, e := range entries {
		name := e.Course.Name
		if name == "" {
			name = e.Name
		}
		classrooms = append(classrooms, model.Classroom{
			ClassroomID: e.ClassroomID,
			CourseID:    e.Course.ID,
			SkuID:       e.SkuID,
			Name:        name,
		})
	}
	return classrooms, nil
}

// LearnLog fetches one classroom's activity log as raw bytes; the
// orchestrator owns parsing and the malformed-response policy.
func (svc *ApiService) LearnLog(classroomID int64) ([]byte, error) {
	url := fmt.Sprintf("/v2/api/web/logs/learn/%d?actype=-1&page=0&offset=20&sort=-1", classroomID)
	resp, err := svc.request().Get(url)
	if err != nil {
		recordRequest("learn_log", "error")
		return nil, fmt.Errorf("learn_log: %w", err)
	}
	if resp.StatusCode() != 200 {
		recordRequest("learn_log", strconv.Itoa(resp.StatusCode()))
		return nil, fmt.Errorf("learn_log: status %d", resp.StatusCode())
	}
	recordRequest("learn_log", "200")
	return resp.Body(), nil
}

// LeafList fetches the nested tree behind a dropdown directory courseware.
func (svc *ApiService) LeafList(coursewareID string) (*dto.LeafListResponse, error) {
	var res dto.LeafListResponse
	url := fmt.Sprintf("/c27/online_courseware/xty/kls/pub_news/%s", coursewareID)
	if err := svc.get(url, "leaf_list", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// LeafInfo resolves the metadata bundle a drive needs.
func (svc *ApiService) LeafInfo(classroomID, leafID int64) (*model.LeafInfo, error) {
	var res dto.LeafInfoResponse
	url := fmt.Sprintf("/mooc-api/v1/lms/learn/leaf_info/%d/%d/", classroomID, leafID)
	if err := svc.get(url, "leaf_info", &res); err != nil {
		return nil, err
	}
	if res.Data == nil {
		return nil, fmt.Errorf("leaf_info: empty data for leaf %d", leafID)
	}

	info := &model.LeafInfo{
		UserID:       res.Data.UserID,
		SkuID:        res.Data.SkuID,
		CourseID:     res.Data.CourseID,
		ClassEndTime: res.Data.ClassEndTime,
	}
	if res.Data.ContentInfo != nil {
		info.ExerciseID = res.Data.ContentInfo.ExerciseID
		info.Duration = res.Data.ContentInfo.Media.Duration
	}
	return info, nil
}

// VideoProgress queries remote playback state. A missing entry for the video
// id comes back as (nil, nil): the platform has no session state yet.
func (svc *ApiService) VideoProgress(classroomID, userID, courseID, videoID int64) (*model.VideoProgress, error) {
	var res dto.VideoProgressResponse
	url := fmt.Sprintf("/video-log/get_video_watch_progress/?cid=%d&user_id=%d&classroom_id=%d&video_type=video&vtype=rate&video_id=%d&snapshot=1",
		courseID, userID, classroomID, videoID)
	if err := svc.get(url, "video_progress", &res); err != nil {
		return nil, err
	}

	payload, ok := res.Data[strconv.FormatInt(videoID, 10)]
	if !ok {
		return nil, nil
	}
	return &model.VideoProgress{
		FirstPoint:  payload.FirstPoint,
		LastPoint:   payload.LastPoint,
		Completed:   payload.Completed,
		WatchLength: payload.WatchLength,
		VideoLength: payload.VideoLength,
		Rate:        payload.Rate,
	}, nil
}

// VideoHeartbeat reports a playback position.
func (svc *ApiService) VideoHeartbeat(req dto.HeartbeatRequest) error {
	recordHeartbeat()
	return svc.post("/video-log/heartbeat/", "video_heartbeat", req, nil)
}

// ArticleStatus reports whether an article/reading leaf is already finished.
func (svc *ApiService) ArticleStatus(classroomID, leafID int64) (bool, error) {
	var res dto.ArticleStatusResponse
	url := fmt.Sprintf("/mooc-api/v1/lms/learn/article_status/%d/%d/", classroomID, leafID)
	if err := svc.get(url, "article_status", &res); err != nil {
		return false, err
	}
	return res.Data != nil && res.Data.Finished == 1, nil
}

// MarkArticleFinished marks a reading leaf done.
func (svc *ApiService) MarkArticleFinished(classroomID, leafID int64) error {
	body := map[string]int64{"classroom_id": classroomID, "leaf_id": leafID}
	return svc.post("/mooc-api/v1/lms/learn/article_finish/", "article_finish", body, nil)
}

// ExerciseList fetches a homework's question set, each question bundled with
// its own completion indicator. Question text arrives already decoded.
func (svc *ApiService) ExerciseList(classroomID, exerciseID int64) ([]model.Problem, error) {
	url := fmt.Sprintf("/mooc-api/v1/lms/exercise/get_exercise_list/%d/", exerciseID)
	resp, err := svc.request().
		SetHeader("classroom-id", strconv.FormatInt(classroomID, 10)).
		SetHeader("xtbz", "ykt").
		Get(url)
	if err != nil {
		recordRequest("exercise_list", "error")
		return nil, fmt.Errorf("exercise_list: %w", err)
	}
	if resp.StatusCode() != 200 {
		recordRequest("exercise_list", strconv.Itoa(resp.StatusCode()))
		return nil, fmt.Errorf("exercise_list: status %d", resp.StatusCode())
	}
	recordRequest("exercise_list", "200")

	var res dto.ExerciseListResponse
	if err := shared.JSON().Unmarshal(resp.Body(), &res); err != nil {
		return nil, fmt.Errorf("exercise_list: decode: %w", err)
	}
	if res.Data == nil {
		return nil, fmt.Errorf("exercise_list: empty data for exercise %d", exerciseID)
	}

	problems := make([]model.Problem, 0, len(res.Data.Problems))
	for _, p := range res.Data.Problems {
		opts := make([]model.Option, 0, len(p.Content.Options))
		for _, o := range p.Content.Options {
			opts = append(opts, model.Option{Key: o.Key, Value: o.Value})
		}
		problems = append(problems, model.Problem{
			ProblemID:  p.ProblemID,
			Type:       p.Content.Type,
			Value:      p.Content.Body,
			Options:    opts,
			SubmitTime: p.User.SubmitTime,
		})
	}
	return problems, nil
}

// SubmitAnswer submits one resolved answer for one problem.
func (svc *ApiService) SubmitAnswer(classroomID, problemID int64, answer interface{}) error {
	req := dto.SubmitAnswerRequest{
		ClassroomID: classroomID,
		ProblemID:   problemID,
		Answer:      answer,
	}
	if err := dto.ValidateSubmit(req); err != nil {
		return fmt.Errorf("submit_answer: %w", err)
	}
	return svc.post("/mooc-api/v1/lms/exercise/problem_apply/", "submit_answer", req, nil)
}

// SlidePageCount resolves how many pages a slideshow courseware has.
func (svc *ApiService) SlidePageCount(classroomID, cardsID int64) (int, error) {
	var res struct {
		Data *struct {
			PageCount int `json:"page_count"`
		} `json:"data"`
	}
	url := fmt.Sprintf("/mooc-api/v1/lms/learn/card_info/%d/%d/", classroomID, cardsID)
	if err := svc.get(url, "card_info", &res); err != nil {
		return 0, err
	}
	if res.Data == nil {
		return 0, fmt.Errorf("card_info: empty data for cards %d", cardsID)
	}
	return res.Data.PageCount, nil
}

// RobotUserID resolves the user id bound to a classroom when userinfo alone
// is not enough.
func (svc *ApiService) RobotUserID(courseID, classroomID int64) (int64, error) {
	var res dto.RobotConfigResponse
	url := fmt.Sprintf("/v2/api/web/topic_robot_config/%d/%d", courseID, classroomID)
	if err := svc.get(url, "robot_config", &res); err != nil {
		return 0, err
	}
	if res.Data == nil {
		return 0, fmt.Errorf("robot_config: empty data")
	}
	return res.Data.UserID, nil
}
