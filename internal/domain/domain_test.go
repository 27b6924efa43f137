package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNote_Matches(t *testing.T) {
	n := NewNote("Shopping List", "Milk and eggs\nοδος Αθηνας", time.Now())

	tests := []struct {
		search string
		want   bool
	}{
		{"", true},
		{"shopping", true},
		{"MILK", true},
		{"and egg", true},
		// final sigma folds to sigma
		{"ΟΔΟΣ", true},
		{"bread", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, n.Matches(tt.search), tt.search)
	}
}

func TestNote_CloneDoesNotShareFolder(t *testing.T) {
	n := NewNote("t", "c", time.Now())
	n.Folder = FolderRef("Work")
	c := n.Clone()
	*c.Folder = "Home"
	assert.Equal(t, "Work", n.FolderName())
}

func TestNote_TouchNeverMovesBackwards(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	n := NewNote("t", "c", now)
	n.Touch(now.Add(-time.Hour))
	assert.Equal(t, now, n.UpdatedAt)
	n.Touch(now.Add(time.Hour))
	assert.Equal(t, now.Add(time.Hour), n.UpdatedAt)
}

func TestFolderRef(t *testing.T) {
	assert.Nil(t, FolderRef(""))
	assert.Equal(t, "Work", *FolderRef("Work"))
	n := Note{}
	assert.True(t, n.IsUntagged())
	n.Folder = FolderRef("Work")
	assert.True(t, n.InFolder("Work"))
	assert.False(t, n.InFolder("work"))
}
