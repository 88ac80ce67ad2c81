package services

import (
	"errors"
	"testing"

	"github.com/hailin-dev/rainclass/model"
	"github.com/stretchr/testify/assert"
)

type fakeArticleAPI struct {
	finished  bool
	statusErr error
	markErr   error
	marks     int
}

func (f *fakeArticleAPI) ArticleStatus(classroomID, leafID int64) (bool, error) {
	return f.finished, f.statusErr
}

func (f *fakeArticleAPI) MarkArticleFinished(classroomID, leafID int64) error {
	f.marks++
	return f.markErr
}

func TestArticleDriveMarksUnread(t *testing.T) {
	api := &fakeArticleAPI{}
	cache := newFakeCache()
	svc := &ArticleService{api: api, cache: cache}

	outcome := svc.Drive(model.Leaf{ID: 42, Kind: model.KindArticle}, model.Classroom{ClassroomID: 1})

	assert.Equal(t, model.OutcomeDone, outcome)
	assert.Equal(t, 1, api.marks)
	assert.True(t, cache.marked["42"])
}

func TestArticleDriveAlreadyRead(t *testing.T) {
	api := &fakeArticleAPI{finished: true}
	cache := newFakeCache()
	svc := &ArticleService{api: api, cache: cache}

	outcome := svc.Drive(model.Leaf{ID: 42}, model.Classroom{ClassroomID: 1})

	assert.Equal(t, model.OutcomeDone, outcome)
	assert.Zero(t, api.marks)
	assert.True(t, cache.marked["42"])
}

func TestArticleDriveFailures(t *testing.T) {
	cache := newFakeCache()

	svc := &ArticleService{api: &fakeArticleAPI{statusErr: errors.New("boom")}, cache: cache}
	assert.Equal(t, model.OutcomeFailed, svc.Drive(model.Leaf{ID: 42}, model.Classroom{}))

	svc = &ArticleService{api: &fakeArticleAPI{markErr: errors.New("boom")}, cache: cache}
	assert.Equal(t, model.OutcomeFailed, svc.Drive(model.Leaf{ID: 42}, model.Classroom{}))

	assert.False(t, cache.marked["42"])
}
