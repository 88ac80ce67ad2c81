package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyActivity(t *testing.T) {
	tests := []struct {
		code int
		want Kind
	}{
		{0, KindVideo},
		{17, KindVideo},
		{2, KindSlideshow},
		{3, KindArticle},
		{16, KindArticle},
		{6, KindHomework},
		{19, KindHomework},
		{9, KindAnnouncement},
		{14, KindLecture},
		{15, KindDirectory},
		{20, KindExam},
		{7, KindUnknown},
		{-1, KindUnknown},
		{999, KindUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyActivity(tt.code), "code %d", tt.code)
	}
}

func TestClassifyLeaf(t *testing.T) {
	assert.Equal(t, KindVideo, ClassifyLeaf(0))
	assert.Equal(t, KindArticle, ClassifyLeaf(3))
	assert.Equal(t, KindHomework, ClassifyLeaf(6))
	// the leaf table is narrower than the activity table
	assert.Equal(t, KindUnknown, ClassifyLeaf(2))
	assert.Equal(t, KindUnknown, ClassifyLeaf(17))
}

func TestKindCompletable(t *testing.T) {
	for _, k := range []Kind{KindVideo, KindSlideshow, KindArticle, KindHomework} {
		assert.True(t, k.Completable(), k.String())
	}
	for _, k := range []Kind{KindUnknown, KindAnnouncement, KindLecture, KindDirectory, KindExam} {
		assert.False(t, k.Completable(), k.String())
	}
}

func TestActivityAsLeaf(t *testing.T) {
	leaf, ok := Activity{ID: 42, Type: 0, Kind: KindVideo, Title: "v"}.AsLeaf()
	require.True(t, ok)
	assert.Equal(t, int64(42), leaf.ID)

	// a numeric courseware id overrides the activity id
	leaf, ok = Activity{ID: 42, CoursewareID: "77"}.AsLeaf()
	require.True(t, ok)
	assert.Equal(t, int64(77), leaf.ID)

	// non-numeric courseware ids keep the activity id
	leaf, ok = Activity{ID: 42, CoursewareID: "cw-77"}.AsLeaf()
	require.True(t, ok)
	assert.Equal(t, int64(42), leaf.ID)

	_, ok = Activity{}.AsLeaf()
	assert.False(t, ok)
}

func TestDriveIDs(t *testing.T) {
	assert.Equal(t, "42", Activity{ID: 42}.DriveID())
	assert.Equal(t, "cw-7", Activity{ID: 42, CoursewareID: "cw-7"}.DriveID())
	assert.Equal(t, "42", Leaf{ID: 42}.DriveID())
}

func TestSummaryCounts(t *testing.T) {
	s := NewSummary()
	s.Add(Activity{ID: 1, Kind: KindVideo})
	s.Add(Activity{ID: 2, Kind: KindVideo})
	s.Add(Activity{ID: 3, Kind: KindUnknown})
	s.Record(OutcomeDone)
	s.Record(OutcomeDone)
	s.Record(OutcomeFailed)

	assert.Equal(t, 3, s.Total())
	assert.Equal(t, 2, s.Outcomes[OutcomeDone])
	assert.Equal(t, 1, s.Outcomes[OutcomeFailed])
}
