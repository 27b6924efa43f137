package markup

import (
	"errors"
	"testing"

	"github.com/haierkeys/watermelon-notes/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferWithSelection(text string, start, end int) *TextBuffer {
	b := NewTextBuffer(text)
	b.Select(start, end)
	return b
}

func TestApply_WrapSelection(t *testing.T) {
	tests := []struct {
		name      string
		kind      Kind
		want      string
		style     string
		innerFrom int
		innerTo   int
		hidden    [][2]int
	}{
		{"bold", KindBold, "say **hello** now", StyleBold, 6, 11, [][2]int{{4, 6}, {11, 13}}},
		{"italic", KindItalic, "say _hello_ now", StyleItalic, 5, 10, [][2]int{{4, 5}, {10, 11}}},
		{"highlight", KindHighlight, "say ==hello== now", StyleHighlight, 6, 11, [][2]int{{4, 6}, {11, 13}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := bufferWithSelection("say hello now", 4, 9)
			require.NoError(t, Apply(b, tt.kind))

			assert.Equal(t, tt.want, b.String())
			assert.Equal(t, "hello", b.Slice(tt.innerFrom, tt.innerTo))
			assert.Contains(t, b.Tags(), Tag{Style: tt.style, Start: tt.innerFrom, End: tt.innerTo})
			for _, h := range tt.hidden {
				assert.Contains(t, b.Tags(), Tag{Style: StyleHidden, Start: h[0], End: h[1]})
			}

			s, e := b.SelectionBounds()
			assert.Equal(t, tt.innerFrom, s)
			assert.Equal(t, tt.innerTo, e)
		})
	}
}

func TestApply_WrapCollapsed(t *testing.T) {
	tests := []struct {
		kind   Kind
		want   string
		cursor int
	}{
		{KindBold, "ab****cd", 4},
		{KindItalic, "ab__cd", 3},
		{KindHighlight, "ab====cd", 4},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			b := bufferWithSelection("abcd", 2, 2)
			require.NoError(t, Apply(b, tt.kind))

			assert.Equal(t, tt.want, b.String())
			s, e := b.SelectionBounds()
			assert.Equal(t, tt.cursor, s)
			assert.Equal(t, s, e)
			assert.Empty(t, b.Tags())
		})
	}
}

func TestApply_Link(t *testing.T) {
	b := bufferWithSelection("see docs here", 4, 8)
	require.NoError(t, Apply(b, KindLink))

	assert.Equal(t, "see [docs]() here", b.String())
	s, e := b.SelectionBounds()
	assert.Equal(t, 11, s)
	assert.Equal(t, 11, e)
	assert.Equal(t, ")", b.Slice(s, s+1))
}

func TestApply_LinkCollapsed(t *testing.T) {
	b := bufferWithSelection("x", 1, 1)
	require.NoError(t, Apply(b, KindLink))

	assert.Equal(t, "x[]()", b.String())
	s, _ := b.SelectionBounds()
	assert.Equal(t, 2, s)
}

func TestApply_LinePrefixes(t *testing.T) {
	tests := []struct {
		kind   Kind
		want   string
		cursor int
	}{
		{KindCheckbox, "- [ ] milk", 6},
		{KindBulletList, "- milk", 2},
		{KindNumberedList, "1. milk", 3},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			b := bufferWithSelection("milk", 0, 0)
			require.NoError(t, Apply(b, tt.kind))
			assert.Equal(t, tt.want, b.String())
			s, _ := b.SelectionBounds()
			assert.Equal(t, tt.cursor, s)
		})
	}
}

func TestApply_UnknownKind(t *testing.T) {
	b := NewTextBuffer("abc")
	err := Apply(b, Kind("strike"))
	assert.True(t, errors.Is(err, code.ErrorMarkupInvalid))
	assert.Equal(t, code.KindValidation, code.KindOf(err))
	assert.Equal(t, "abc", b.String())
}

func TestApply_MultibyteOffsets(t *testing.T) {
	b := bufferWithSelection("你好世界", 2, 4)
	require.NoError(t, Apply(b, KindBold))
	assert.Equal(t, "你好**世界**", b.String())
	assert.Contains(t, b.Tags(), Tag{Style: StyleBold, Start: 4, End: 6})
}

func TestToggleCheckboxAt(t *testing.T) {
	b := NewTextBuffer("- [ ] buy milk")

	assert.True(t, ToggleCheckboxAt(b, 3))
	assert.Equal(t, "- [x] buy milk", b.String())

	assert.True(t, ToggleCheckboxAt(b, 3))
	assert.Equal(t, "- [ ] buy milk", b.String())

	assert.False(t, ToggleCheckboxAt(b, 12))
	assert.Equal(t, "- [ ] buy milk", b.String())
}

func TestToggleCheckboxAt_Edges(t *testing.T) {
	assert.False(t, ToggleCheckboxAt(NewTextBuffer(""), 0))

	b := NewTextBuffer("[x]")
	assert.True(t, ToggleCheckboxAt(b, 0))
	assert.Equal(t, "[ ]", b.String())
}

func TestInsertImage(t *testing.T) {
	b := bufferWithSelection("ab", 1, 1)
	embed := InsertImage(b, "/tmp/cat.png")

	want := "a![Image](/tmp/cat.png)\nb"
	assert.Equal(t, want, b.String())
	assert.Equal(t, EmbedImage, embed.Kind)
	assert.Equal(t, 24, embed.Offset)
	assert.Equal(t, []Embed{embed}, b.Anchors())

	s, e := b.SelectionBounds()
	assert.Equal(t, 24, s)
	assert.Equal(t, 24, e)
}

func TestInsertImage_ReplacesSelection(t *testing.T) {
	b := bufferWithSelection("old text", 0, 3)
	InsertImage(b, "p")
	assert.Equal(t, "![Image](p)\n text", b.String())
}

func TestKindForShortcut(t *testing.T) {
	for chord, want := range map[string]Kind{
		"Ctrl+B":     KindBold,
		"ctrl+i":     KindItalic,
		"<Control>b": KindBold,
		"Control-I":  KindItalic,
	} {
		got, ok := KindForShortcut(chord)
		assert.True(t, ok, chord)
		assert.Equal(t, want, got, chord)
	}
	_, ok := KindForShortcut("ctrl+z")
	assert.False(t, ok)
}
