package convert

import (
	"testing"
	"time"

	"github.com/haierkeys/watermelon-notes/pkg/timex"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructAssign(t *testing.T) {
	type src struct {
		ID        uuid.UUID
		Title     string
		Folder    *string
		UpdatedAt time.Time
	}
	type dst struct {
		ID        string
		Title     string
		Folder    *string
		UpdatedAt timex.Time
	}

	folder := "Work"
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := src{ID: uuid.New(), Title: "t", Folder: &folder, UpdatedAt: now}

	var d dst
	require.NoError(t, StructAssign(&s, &d))
	assert.Equal(t, s.ID.String(), d.ID)
	assert.Equal(t, "t", d.Title)
	require.NotNil(t, d.Folder)
	assert.Equal(t, "Work", *d.Folder)
	assert.Equal(t, now, time.Time(d.UpdatedAt))

	// 深拷贝，不共享指针
	folder = "Other"
	assert.Equal(t, "Work", *d.Folder)
}

func TestStrTo(t *testing.T) {
	assert.Equal(t, 3, StrTo(" 3 ").MustInt())
	assert.Equal(t, 0, StrTo("x").MustInt())

	v, err := StrTo("").Uint64Ptr()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = StrTo("7").Uint64Ptr()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), *v)

	_, err = StrTo("-1").Uint64Ptr()
	assert.Error(t, err)
}
