package services

import (
	"errors"
	"testing"

	"github.com/hailin-dev/rainclass/dto"
	"github.com/hailin-dev/rainclass/model"
	"github.com/hailin-dev/rainclass/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrchestratorAPI struct {
	leafList    *dto.LeafListResponse
	leafListErr error

	pageCount    int
	pageCountErr error
}

func (f *fakeOrchestratorAPI) UserInfo() (int64, string, error)       { return 7, "tester", nil }
func (f *fakeOrchestratorAPI) CourseList() ([]model.Classroom, error) { return nil, nil }
func (f *fakeOrchestratorAPI) LearnLog(classroomID int64) ([]byte, error) {
	return nil, errors.New("not used")
}

func (f *fakeOrchestratorAPI) LeafList(coursewareID string) (*dto.LeafListResponse, error) {
	return f.leafList, f.leafListErr
}

func (f *fakeOrchestratorAPI) SlidePageCount(classroomID, cardsID int64) (int, error) {
	return f.pageCount, f.pageCountErr
}

// fakeLeafDriver mimics a production driver: it marks the cache itself on a
// successful drive.
type fakeLeafDriver struct {
	outcome model.Outcome
	cache   completionCache
	driven  []model.Leaf
}

func (f *fakeLeafDriver) Drive(leaf model.Leaf, cls model.Classroom) model.Outcome {
	f.driven = append(f.driven, leaf)
	if f.outcome == model.OutcomeDone && f.cache != nil {
		f.cache.MarkCompleted(leaf.DriveID())
	}
	return f.outcome
}

type fakeSlideDriver struct {
	outcome    model.Outcome
	pageCounts []int
}

func (f *fakeSlideDriver) Drive(activity model.Activity, cls model.Classroom, pageCount int, userID int64) model.Outcome {
	f.pageCounts = append(f.pageCounts, pageCount)
	return f.outcome
}

func newOrchestrator(api orchestratorAPI, cache completionCache) (*OrchestratorService, *fakeLeafDriver, *fakeSlideDriver) {
	leaf := &fakeLeafDriver{outcome: model.OutcomeDone, cache: cache}
	slide := &fakeSlideDriver{outcome: model.OutcomeDone}
	svc := &OrchestratorService{
		api:       api,
		cache:     cache,
		video:     leaf,
		article:   leaf,
		homework:  leaf,
		slideshow: slide,
	}
	return svc, leaf, slide
}

func TestProcessMalformedResponse(t *testing.T) {
	svc, driver, _ := newOrchestrator(&fakeOrchestratorAPI{}, newFakeCache())

	for _, raw := range []string{`{"code":0}`, `{"data":{}}`, `not json`} {
		summary, err := svc.Process([]byte(raw), model.Classroom{ClassroomID: 1}, 7)
		require.ErrorIs(t, err, ErrMalformedResponse, "raw %q", raw)
		require.NotNil(t, summary)
		assert.Zero(t, summary.Total())
	}
	assert.Empty(t, driver.driven)
}

func TestProcessClassifiesEveryActivity(t *testing.T) {
	raw := []byte(`{"data":{"activities":[
		{"id":1,"type":0,"title":"v"},
		{"id":2,"type":2,"title":"s","content":{"page_count":3}},
		{"id":3,"type":9,"title":"news"},
		{"id":4,"type":14,"title":"live"},
		{"id":5,"type":99,"title":"mystery"}
	]}}`)

	svc, _, _ := newOrchestrator(&fakeOrchestratorAPI{}, newFakeCache())
	summary, err := svc.Process(raw, model.Classroom{ClassroomID: 1}, 7)
	require.NoError(t, err)

	// every entry lands in exactly one bucket, the unknown code included
	assert.Equal(t, 5, summary.Total())
	require.Len(t, summary.Activities[model.KindUnknown], 1)
	assert.Equal(t, int64(5), summary.Activities[model.KindUnknown][0].ID)
	assert.Len(t, summary.Activities[model.KindVideo], 1)
	assert.Len(t, summary.Activities[model.KindSlideshow], 1)
	assert.Len(t, summary.Activities[model.KindAnnouncement], 1)
	assert.Len(t, summary.Activities[model.KindLecture], 1)
}

func TestProcessRepeatRunUsesCache(t *testing.T) {
	raw := []byte(`{"data":{"activities":[{"id":42,"type":0,"title":"v"}]}}`)
	cache := newFakeCache()
	svc, driver, _ := newOrchestrator(&fakeOrchestratorAPI{}, cache)

	first, err := svc.Process(raw, model.Classroom{ClassroomID: 1}, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Outcomes[model.OutcomeDone])
	require.Len(t, driver.driven, 1)

	second, err := svc.Process(raw, model.Classroom{ClassroomID: 1}, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Outcomes[model.OutcomeCached])
	// the driver is not invoked again for a cached item
	assert.Len(t, driver.driven, 1)
}

func TestProcessSlideshowPageCount(t *testing.T) {
	api := &fakeOrchestratorAPI{pageCount: 8}
	svc, _, slide := newOrchestrator(api, newFakeCache())

	// page count present inline
	raw := []byte(`{"data":{"activities":[{"id":1,"type":2,"content":{"page_count":5}}]}}`)
	_, err := svc.Process(raw, model.Classroom{ClassroomID: 1}, 7)
	require.NoError(t, err)

	// page count absent, resolved through the dedicated endpoint
	raw = []byte(`{"data":{"activities":[{"id":2,"type":2}]}}`)
	_, err = svc.Process(raw, model.Classroom{ClassroomID: 1}, 7)
	require.NoError(t, err)

	assert.Equal(t, []int{5, 8}, slide.pageCounts)
}

func TestProcessSlideshowPageCountFailure(t *testing.T) {
	api := &fakeOrchestratorAPI{pageCountErr: errors.New("boom")}
	svc, _, slide := newOrchestrator(api, newFakeCache())

	raw := []byte(`{"data":{"activities":[{"id":2,"type":2}]}}`)
	summary, err := svc.Process(raw, model.Classroom{ClassroomID: 1}, 7)
	require.NoError(t, err)

	assert.Empty(t, slide.pageCounts)
	assert.Equal(t, 1, summary.Outcomes[model.OutcomeFailed])
}

func TestProcessLeafWithoutID(t *testing.T) {
	raw := []byte(`{"data":{"activities":[{"id":0,"type":0,"title":"broken"}]}}`)
	svc, driver, _ := newOrchestrator(&fakeOrchestratorAPI{}, newFakeCache())

	summary, err := svc.Process(raw, model.Classroom{ClassroomID: 1}, 7)
	require.NoError(t, err)

	assert.Empty(t, driver.driven)
	assert.Equal(t, 1, summary.Outcomes[model.OutcomeFailed])
}

func TestProcessCoursewareIDWinsForLeafID(t *testing.T) {
	raw := []byte(`{"data":{"activities":[{"id":1,"type":0,"courseware_id":"4242"}]}}`)
	svc, driver, _ := newOrchestrator(&fakeOrchestratorAPI{}, newFakeCache())

	_, err := svc.Process(raw, model.Classroom{ClassroomID: 1}, 7)
	require.NoError(t, err)

	require.Len(t, driver.driven, 1)
	assert.Equal(t, int64(4242), driver.driven[0].ID)
}

func TestProcessDirectoryDescends(t *testing.T) {
	var leafList dto.LeafListResponse
	require.NoError(t, shared.JSON().Unmarshal([]byte(`{"data":{"content_info":[
		{"name":"Week 1",
		 "leaf_list":[{"id":10,"title":"intro video","leaf_type":0}],
		 "section_list":[
			{"name":"Readings","leaf_list":[
				{"id":11,"title":"paper","leaf_type":3},
				{"id":12,"title":"mystery","leaf_type":8}
			]}
		 ]}
	]}}`), &leafList))
	api := &fakeOrchestratorAPI{leafList: &leafList}

	raw := []byte(`{"data":{"activities":[{"id":1,"type":15,"title":"Unit","courseware_id":"cw-1"}]}}`)
	svc, driver, _ := newOrchestrator(api, newFakeCache())

	summary, err := svc.Process(raw, model.Classroom{ClassroomID: 1}, 7)
	require.NoError(t, err)

	// all three leaves discovered, only the two completable ones driven
	require.Len(t, summary.Leaves, 3)
	require.Len(t, driver.driven, 2)
	assert.Equal(t, int64(10), driver.driven[0].ID)
	assert.Equal(t, int64(11), driver.driven[1].ID)
	assert.Equal(t, []string{"Unit", "Week 1", "Readings"}, driver.driven[1].Ancestry)
}

func TestWalkSectionsAncestryIsolation(t *testing.T) {
	sections := []dto.LeafSection{
		{
			Name:     "A",
			LeafList: []dto.LeafPayload{{ID: 1, LeafType: 0}},
		},
		{
			Name:     "B",
			LeafList: []dto.LeafPayload{{ID: 2, LeafType: 3}},
		},
	}

	leaves := WalkSections(sections, []string{"root"})
	require.Len(t, leaves, 2)
	assert.Equal(t, []string{"root", "A"}, leaves[0].Ancestry)
	assert.Equal(t, []string{"root", "B"}, leaves[1].Ancestry)
}

func TestWalkSectionsDepthGuard(t *testing.T) {
	// build a chain deeper than the guard with a leaf at the bottom
	leafSection := dto.LeafSection{Name: "bottom", LeafList: []dto.LeafPayload{{ID: 1, LeafType: 0}}}
	root := leafSection
	for i := 0; i < maxWalkDepth+4; i++ {
		root = dto.LeafSection{Name: "level", SectionList: []dto.LeafSection{root}}
	}

	leaves := WalkSections([]dto.LeafSection{root}, nil)
	assert.Empty(t, leaves)
}
