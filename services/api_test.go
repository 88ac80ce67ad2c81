package services

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/hailin-dev/rainclass/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *ApiService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &ApiService{
		credSvc: &CredentialService{cookie: "sessionid=test"},
		client:  resty.New().SetBaseURL(server.URL),
	}
}

func TestUserInfo(t *testing.T) {
	var gotCookie string
	svc := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("cookie")
		w.Write([]byte(`{"data":[{"user_id":7,"name":"tester"}]}`))
	})

	id, name, err := svc.UserInfo()
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.Equal(t, "tester", name)
	assert.Equal(t, "sessionid=test", gotCookie)
}

func TestUserInfoEmpty(t *testing.T) {
	svc := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})

	_, _, err := svc.UserInfo()
	assert.Error(t, err)
}

func TestCourseListShapes(t *testing.T) {
	// list-shaped data
	svc := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[
			{"classroom_id":1,"sku_id":10,"name":"fallback","course":{"id":100,"name":"Algebra"}},
			{"classroom_id":2,"sku_id":20,"name":"Physics 101","course":{"id":200}}
		]}`))
	})
	classrooms, err := svc.CourseList()
	require.NoError(t, err)
	require.Len(t, classrooms, 2)
	assert.Equal(t, "Algebra", classrooms[0].Name)
	assert.Equal(t, int64(100), classrooms[0].CourseID)
	// falls back to the classroom name when the course carries none
	assert.Equal(t, "Physics 101", classrooms[1].Name)

	// object-of-lists shape
	svc = newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"current":[{"classroom_id":3,"course":{"id":300,"name":"Chem"}}]}}`))
	})
	classrooms, err = svc.CourseList()
	require.NoError(t, err)
	require.Len(t, classrooms, 1)
	assert.Equal(t, int64(3), classrooms[0].ClassroomID)
}

func TestCourseListGroupedOrderIsStable(t *testing.T) {
	payload := `{"data":{
		"upcoming":[{"classroom_id":3},{"classroom_id":4},{"classroom_id":5}],
		"current":[{"classroom_id":1},{"classroom_id":2}]
	}}`
	svc := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	})

	first, err := svc.CourseList()
	require.NoError(t, err)

	ids := func(classrooms []model.Classroom) []int64 {
		out := make([]int64, 0, len(classrooms))
		for _, c := range classrooms {
			out = append(out, c.ClassroomID)
		}
		return out
	}

	// sorted group keys: current before upcoming, every run
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(first))

	for i := 0; i < 10; i++ {
		again, err := svc.CourseList()
		require.NoError(t, err)
		assert.Equal(t, ids(first), ids(again), "course order must not change between identical decodes")
	}
}

func TestVideoProgressMissingEntry(t *testing.T) {
	svc := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	})

	progress, err := svc.VideoProgress(1, 7, 100, 42)
	require.NoError(t, err)
	assert.Nil(t, progress)
}

func TestVideoProgressPresent(t *testing.T) {
	svc := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"42":{"completed":1,"video_length":300.5,"rate":1}}}`))
	})

	progress, err := svc.VideoProgress(1, 7, 100, 42)
	require.NoError(t, err)
	require.NotNil(t, progress)
	assert.True(t, progress.Done())
	assert.Equal(t, 300.5, progress.VideoLength)
}

func TestLeafInfoMapsContent(t *testing.T) {
	svc := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{
			"user_id":7,"sku_id":11,"course_id":13,"class_end_time":1700000000000,
			"content_info":{"exercise_id":99,"media":{"duration":420.5}}
		}}`))
	})

	info, err := svc.LeafInfo(1, 42)
	require.NoError(t, err)
	assert.True(t, info.Complete())
	assert.Equal(t, int64(99), info.ExerciseID)
	assert.Equal(t, 420.5, info.Duration)
}

func TestArticleStatus(t *testing.T) {
	svc := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"finished":1}}`))
	})
	finished, err := svc.ArticleStatus(1, 42)
	require.NoError(t, err)
	assert.True(t, finished)

	svc = newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"finished":0}}`))
	})
	finished, err = svc.ArticleStatus(1, 42)
	require.NoError(t, err)
	assert.False(t, finished)
}

func TestExerciseListMapsProblems(t *testing.T) {
	var gotClassroom, gotXtbz string
	svc := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		gotClassroom = r.Header.Get("classroom-id")
		gotXtbz = r.Header.Get("xtbz")
		w.Write([]byte(`{"data":{"problems":[
			{"problem_id":1,"content":{"Body":"Capital of France?","Type":0,"Options":[{"key":"A","value":"Paris"}]},"user":{"submit_time":0}},
			{"problem_id":2,"content":{"Body":"done one","Type":4},"user":{"submit_time":1700000000}}
		]}}`))
	})

	problems, err := svc.ExerciseList(9, 99)
	require.NoError(t, err)
	require.Len(t, problems, 2)

	assert.Equal(t, "9", gotClassroom)
	assert.Equal(t, "ykt", gotXtbz)

	assert.Equal(t, "Capital of France?", problems[0].Value)
	assert.Equal(t, "A", problems[0].Options[0].Key)
	assert.False(t, problems[0].Answered())
	assert.True(t, problems[1].Answered())
}

func TestSubmitAnswerRejectsInvalid(t *testing.T) {
	called := false
	svc := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.Write([]byte(`{}`))
	})

	// a nil answer never reaches the wire
	err := svc.SubmitAnswer(1, 42, nil)
	assert.Error(t, err)
	assert.False(t, called)

	require.NoError(t, svc.SubmitAnswer(1, 42, []string{"A"}))
	assert.True(t, called)
}

func TestGetSurfacesStatusError(t *testing.T) {
	svc := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, _, err := svc.UserInfo()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
