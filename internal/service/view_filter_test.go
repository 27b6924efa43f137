package service

import (
	"strings"
	"testing"
	"time"

	"github.com/haierkeys/watermelon-notes/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleNotes() []domain.Note {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []domain.Note{
		{ID: domain.NewNote("", "", base).ID, Title: "Groceries", Content: "milk\neggs", UpdatedAt: base.Add(4 * time.Hour), Folder: domain.FolderRef("Personal")},
		{ID: domain.NewNote("", "", base).ID, Title: "Standup", Content: "blockers: none", UpdatedAt: base.Add(3 * time.Hour), Folder: domain.FolderRef("Work")},
		{ID: domain.NewNote("", "", base).ID, Title: "Loose idea", Content: "buy MILK powder", UpdatedAt: base.Add(2 * time.Hour)},
		{ID: domain.NewNote("", "", base).ID, Title: "Retro", Content: "", UpdatedAt: base.Add(time.Hour), Folder: domain.FolderRef("Work")},
		{ID: domain.NewNote("", "", base).ID, Title: "Empty folder", Content: "", UpdatedAt: base, Folder: domain.FolderRef("")},
	}
}

func entryTitles(v *View) []string {
	out := make([]string, 0, v.Len())
	for _, e := range v.Entries {
		out = append(out, e.Title)
	}
	return out
}

func TestViewFilter_Scopes(t *testing.T) {
	notes := sampleNotes()
	tests := []struct {
		name  string
		scope Scope
		label string
		want  []string
	}{
		{"all", AllScope(), "All Notes", []string{"Groceries", "Standup", "Loose idea", "Retro", "Empty folder"}},
		{"untagged", UntaggedScope(), "Untagged", []string{"Loose idea", "Empty folder"}},
		{"folder", FolderScope("Work"), "Work", []string{"Standup", "Retro"}},
		{"unknown folder", FolderScope("Nope"), "Nope", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewViewFilter()
			f.SetScope(tt.scope)
			v := f.Apply(notes)
			assert.Equal(t, tt.label, v.ScopeLabel)
			assert.Equal(t, tt.want, entryTitles(v))
		})
	}
}

func TestViewFilter_SearchIsCaseInsensitiveOnTitleOrContent(t *testing.T) {
	f := NewViewFilter()
	f.SetSearch("milk")
	v := f.Apply(sampleNotes())
	assert.Equal(t, []string{"Groceries", "Loose idea"}, entryTitles(v))

	f.SetSearch("STAND")
	assert.Equal(t, []string{"Standup"}, entryTitles(f.Apply(sampleNotes())))
}

func TestViewFilter_FacetsAreIndependent(t *testing.T) {
	f := NewViewFilter()
	f.SetSearch("milk")
	f.SetScope(UntaggedScope())
	v := f.Apply(sampleNotes())
	assert.Equal(t, "milk", v.Search)
	assert.Equal(t, []string{"Loose idea"}, entryTitles(v))

	f.SetScope(AllScope())
	assert.Equal(t, "milk", f.Search())
	f.SetSearch("")
	assert.Equal(t, AllScope(), f.Scope())
}

func TestViewFilter_VersionIncreases(t *testing.T) {
	f := NewViewFilter()
	v1 := f.Apply(sampleNotes())
	v2 := f.Apply(sampleNotes())
	assert.Greater(t, v2.Version, v1.Version)
}

func TestView_IdentityResolution(t *testing.T) {
	notes := sampleNotes()
	f := NewViewFilter()
	f.SetScope(FolderScope("Work"))
	v := f.Apply(notes)

	id, ok := v.IdentityAt(1)
	require.True(t, ok)
	assert.Equal(t, notes[3].ID, id)
	assert.Equal(t, 1, v.PositionOf(notes[3].ID))
	assert.Equal(t, -1, v.PositionOf(notes[0].ID))

	_, ok = v.IdentityAt(2)
	assert.False(t, ok)
	_, ok = v.IdentityAt(-1)
	assert.False(t, ok)
}

func TestViewFilter_RenameFolderFollowsScope(t *testing.T) {
	f := NewViewFilter()
	f.SetScope(FolderScope("Work"))
	assert.True(t, f.RenameFolder("Work", "Job"))
	assert.Equal(t, FolderScope("Job"), f.Scope())
	assert.False(t, f.RenameFolder("Work", "Other"))
}

func TestParseScope(t *testing.T) {
	assert.Equal(t, AllScope(), ParseScope(""))
	assert.Equal(t, AllScope(), ParseScope("All Notes"))
	assert.Equal(t, UntaggedScope(), ParseScope("Untagged"))
	assert.Equal(t, FolderScope("Work"), ParseScope(" Work "))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "first", preview("  first  \nsecond"))
	assert.Equal(t, 80, len([]rune(preview(strings.Repeat("é", 200)))))
}

// 任意搜索文本下，视图恰好包含匹配的笔记，且保持规范顺序
func TestProperty_SearchMembership(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("view == ordered matches", prop.ForAll(
		func(search string, titles []string) bool {
			notes := make([]domain.Note, 0, len(titles))
			for _, t := range titles {
				notes = append(notes, domain.NewNote(t, strings.ToUpper(t), time.Now()))
			}
			f := NewViewFilter()
			f.SetSearch(search)
			v := f.Apply(notes)

			var want []domain.Note
			q := strings.ToLower(search)
			for _, n := range notes {
				if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Content), q) {
					want = append(want, n)
				}
			}
			if len(want) != v.Len() {
				return false
			}
			for i := range want {
				if want[i].ID != v.Entries[i].ID {
					return false
				}
			}
			return true
		},
		gen.AlphaString(),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
