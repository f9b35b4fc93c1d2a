package community

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLikeIsASet(t *testing.T) {
	p := &Post{Status: StatusActive}
	assert.True(t, p.Like("u1"))
	assert.False(t, p.Like("u1"))
	assert.True(t, p.Like("u2"))
	assert.EqualValues(t, 2, p.Likes)

	assert.True(t, p.Unlike("u1"))
	assert.False(t, p.Unlike("u1"))
	assert.EqualValues(t, 1, p.Likes)
	assert.Equal(t, []string{"u2"}, p.LikedBy)
}

func TestFlag(t *testing.T) {
	p := &Post{Status: StatusActive}
	p.Flag("u1")
	p.Flag("u1")
	assert.Equal(t, StatusFlagged, p.Status)
	assert.Equal(t, []string{"u1"}, p.FlaggedBy)

	hidden := &Post{Status: StatusHidden}
	hidden.Flag("u2")
	assert.Equal(t, StatusHidden, hidden.Status)
}
