// Package markup toggles inline markdown delimiters inside an editable text buffer
// Package markup 在可编辑文本缓冲区中切换行内 markdown 标记
package markup

import (
	"sort"
	"strings"
)

// Style names applied through Buffer.TagRange
// 通过 Buffer.TagRange 应用的样式名称
const (
	StyleBold      = "bold"
	StyleItalic    = "italic"
	StyleHighlight = "highlight"
	StyleHidden    = "hidden"
)

// Buffer is the editing surface the engine mutates. Offsets count characters, not bytes.
// Buffer 是引擎修改的编辑面，偏移量按字符计算而不是字节
type Buffer interface {
	Len() int
	Slice(start, end int) string
	Insert(offset int, text string)
	Delete(start, end int)
	TagRange(start, end int, style string)
	// SelectionBounds returns start <= end; equal bounds mean a collapsed cursor
	// SelectionBounds 返回 start <= end；相等表示光标
	SelectionBounds() (start, end int)
	Select(start, end int)
	PlaceCursor(offset int)
	AddAnchor(embed Embed)
}

// Tag is a styled character range [Start, End)
// Tag 样式字符区间 [Start, End)
type Tag struct {
	Style string `json:"style"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Embed is an object anchored at a character offset but kept outside the text
// Embed 锚定在字符偏移处、但不占用文本的嵌入对象
type Embed struct {
	Kind   string `json:"kind"`
	Offset int    `json:"offset"`
	Source string `json:"source"`
}

// TextBuffer is an in-memory Buffer; tags and anchors move with edits
// TextBuffer 内存实现的 Buffer；标签和锚点随编辑移动
type TextBuffer struct {
	text    []rune
	tags    []Tag
	anchors []Embed
	selA    int
	selB    int
}

// NewTextBuffer 创建缓冲区，光标位于末尾
func NewTextBuffer(text string) *TextBuffer {
	b := &TextBuffer{}
	b.SetText(text)
	return b
}

// SetText replaces everything and drops all tags and anchors
// SetText 替换全部内容并清空标签和锚点
func (b *TextBuffer) SetText(text string) {
	b.text = []rune(text)
	b.tags = nil
	b.anchors = nil
	b.selA, b.selB = len(b.text), len(b.text)
}

func (b *TextBuffer) String() string {
	return string(b.text)
}

func (b *TextBuffer) Len() int {
	return len(b.text)
}

func (b *TextBuffer) clamp(o int) int {
	if o < 0 {
		return 0
	}
	if o > len(b.text) {
		return len(b.text)
	}
	return o
}

func (b *TextBuffer) order(start, end int) (int, int) {
	start, end = b.clamp(start), b.clamp(end)
	if start > end {
		start, end = end, start
	}
	return start, end
}

func (b *TextBuffer) Slice(start, end int) string {
	start, end = b.order(start, end)
	return string(b.text[start:end])
}

// Insert places text at offset. Marks at the offset move right with the text,
// a tag whose end sits at the offset does not grow.
// Insert 在 offset 插入文本。位于该处的标记随文本右移，结束于该处的标签不扩展。
func (b *TextBuffer) Insert(offset int, text string) {
	if text == "" {
		return
	}
	offset = b.clamp(offset)
	ins := []rune(text)
	n := len(ins)

	out := make([]rune, 0, len(b.text)+n)
	out = append(out, b.text[:offset]...)
	out = append(out, ins...)
	out = append(out, b.text[offset:]...)
	b.text = out

	shift := func(p int) int {
		if p >= offset {
			return p + n
		}
		return p
	}
	for i := range b.tags {
		t := &b.tags[i]
		if t.Start >= offset {
			t.Start += n
			t.End += n
		} else if t.End > offset {
			t.End += n
		}
	}
	for i := range b.anchors {
		b.anchors[i].Offset = shift(b.anchors[i].Offset)
	}
	b.selA, b.selB = shift(b.selA), shift(b.selB)
}

// Delete removes [start, end); empty tags are dropped
// Delete 删除 [start, end)；变为空的标签会被移除
func (b *TextBuffer) Delete(start, end int) {
	start, end = b.order(start, end)
	if start == end {
		return
	}
	n := end - start
	b.text = append(b.text[:start], b.text[end:]...)

	move := func(p int) int {
		switch {
		case p <= start:
			return p
		case p >= end:
			return p - n
		default:
			return start
		}
	}
	kept := b.tags[:0]
	for _, t := range b.tags {
		t.Start, t.End = move(t.Start), move(t.End)
		if t.End > t.Start {
			kept = append(kept, t)
		}
	}
	b.tags = kept
	for i := range b.anchors {
		b.anchors[i].Offset = move(b.anchors[i].Offset)
	}
	b.selA, b.selB = move(b.selA), move(b.selB)
}

func (b *TextBuffer) TagRange(start, end int, style string) {
	start, end = b.order(start, end)
	if start == end {
		return
	}
	b.tags = append(b.tags, Tag{Style: style, Start: start, End: end})
}

func (b *TextBuffer) SelectionBounds() (int, int) {
	return b.order(b.selA, b.selB)
}

func (b *TextBuffer) Select(start, end int) {
	b.selA, b.selB = b.order(start, end)
}

func (b *TextBuffer) PlaceCursor(offset int) {
	offset = b.clamp(offset)
	b.selA, b.selB = offset, offset
}

func (b *TextBuffer) AddAnchor(embed Embed) {
	embed.Offset = b.clamp(embed.Offset)
	b.anchors = append(b.anchors, embed)
}

// Tags returns a sorted copy of the tag ranges
// Tags 返回排序后的标签副本
func (b *TextBuffer) Tags() []Tag {
	out := append([]Tag{}, b.tags...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].Style < out[j].Style
	})
	return out
}

// TagsAt lists the styles covering offset
// TagsAt 列出覆盖 offset 的样式
func (b *TextBuffer) TagsAt(offset int) []string {
	var styles []string
	for _, t := range b.tags {
		if offset >= t.Start && offset < t.End {
			styles = append(styles, t.Style)
		}
	}
	sort.Strings(styles)
	return styles
}

func (b *TextBuffer) Anchors() []Embed {
	return append([]Embed{}, b.anchors...)
}

// find returns the character offset of the first occurrence of sub at or after from, or -1
// find 返回 from 之后 sub 第一次出现的字符偏移，找不到返回 -1
func find(buf Buffer, sub string, from, to int) int {
	window := buf.Slice(from, to)
	i := strings.Index(window, sub)
	if i < 0 {
		return -1
	}
	return from + len([]rune(window[:i]))
}
