package markup

import (
	"strings"

	"github.com/haierkeys/watermelon-notes/pkg/code"
)

// Kind 标记类型
type Kind string

const (
	KindBold         Kind = "bold"
	KindItalic       Kind = "italic"
	KindHighlight    Kind = "highlight"
	KindLink         Kind = "link"
	KindCheckbox     Kind = "checkbox"
	KindBulletList   Kind = "bullet"
	KindNumberedList Kind = "numbered"
)

// EmbedImage 图片嵌入类型
const EmbedImage = "image"

type wrapRule struct {
	prefix, suffix string
	style          string
}

var wrapRules = map[Kind]wrapRule{
	KindBold:      {prefix: "**", suffix: "**", style: StyleBold},
	KindItalic:    {prefix: "_", suffix: "_", style: StyleItalic},
	KindHighlight: {prefix: "==", suffix: "==", style: StyleHighlight},
}

var linePrefixes = map[Kind]string{
	KindCheckbox:     "- [ ] ",
	KindBulletList:   "- ",
	KindNumberedList: "1. ",
}

var shortcuts = map[string]Kind{
	"ctrl+b": KindBold,
	"ctrl+i": KindItalic,
}

// Kinds lists every markup kind Apply accepts
// Kinds 列出 Apply 支持的全部类型
func Kinds() []Kind {
	return []Kind{KindBold, KindItalic, KindHighlight, KindLink, KindCheckbox, KindBulletList, KindNumberedList}
}

// KindForShortcut maps a key chord such as "Ctrl+B" or "<Control>i" to a markup kind
// KindForShortcut 把 "Ctrl+B"、"<Control>i" 这类快捷键映射为标记类型
func KindForShortcut(chord string) (Kind, bool) {
	c := strings.ToLower(strings.TrimSpace(chord))
	c = strings.NewReplacer("<control>", "ctrl+", "<ctrl>", "ctrl+", "control", "ctrl", "-", "+", " ", "").Replace(c)
	c = strings.ReplaceAll(c, "++", "+")
	k, ok := shortcuts[c]
	return k, ok
}

// Apply toggles the markup kind at the buffer's current selection
// Apply 在缓冲区当前选区应用标记
func Apply(buf Buffer, kind Kind) error {
	if rule, ok := wrapRules[kind]; ok {
		wrap(buf, rule)
		return nil
	}
	if prefix, ok := linePrefixes[kind]; ok {
		insertPrefix(buf, prefix)
		return nil
	}
	if kind == KindLink {
		link(buf)
		return nil
	}
	return code.ErrorMarkupInvalid.WithDetails(string(kind))
}

// wrap surrounds the selection with the rule's delimiters and hides them.
// With a collapsed selection both delimiters are inserted and the cursor sits between them.
// wrap 用标记包围选区并隐藏标记；无选区时插入成对标记，光标置于中间
func wrap(buf Buffer, rule wrapRule) {
	start, end := buf.SelectionBounds()
	pl := runeLen(rule.prefix)
	sl := runeLen(rule.suffix)

	if start == end {
		buf.Insert(start, rule.prefix+rule.suffix)
		buf.PlaceCursor(start + pl)
		return
	}

	// 先插入后缀，前缀插入不会影响后缀位置的计算
	buf.Insert(end, rule.suffix)
	buf.Insert(start, rule.prefix)

	innerStart := start + pl
	innerEnd := end + pl
	buf.TagRange(innerStart, innerEnd, rule.style)
	buf.TagRange(start, innerStart, StyleHidden)
	buf.TagRange(innerEnd, innerEnd+sl, StyleHidden)
	buf.Select(innerStart, innerEnd)
}

func link(buf Buffer) {
	start, end := buf.SelectionBounds()
	if start == end {
		buf.Insert(start, "[]()")
		buf.PlaceCursor(start + 1)
		return
	}
	text := "[" + buf.Slice(start, end) + "]()"
	buf.Delete(start, end)
	buf.Insert(start, text)
	// 光标停在 ( 和 ) 之间，等待输入地址
	buf.PlaceCursor(start + runeLen(text) - 1)
}

func insertPrefix(buf Buffer, prefix string) {
	start, _ := buf.SelectionBounds()
	buf.Insert(start, prefix)
	buf.PlaceCursor(start + runeLen(prefix))
}

// checkboxWindow is how far on each side of a click the checkbox marker is looked for
// checkboxWindow 点击位置两侧查找复选框的范围
const checkboxWindow = 3

// ToggleCheckboxAt flips "[ ]" and "[x]" near offset and reports whether anything changed
// ToggleCheckboxAt 切换 offset 附近的 "[ ]" 与 "[x]"，返回是否发生变化
func ToggleCheckboxAt(buf Buffer, offset int) bool {
	from := max(0, offset-checkboxWindow)
	to := min(buf.Len(), offset+checkboxWindow)
	if from >= to {
		return false
	}
	if i := find(buf, "[ ]", from, to); i >= 0 {
		buf.Delete(i, i+3)
		buf.Insert(i, "[x]")
		return true
	}
	if i := find(buf, "[x]", from, to); i >= 0 {
		buf.Delete(i, i+3)
		buf.Insert(i, "[ ]")
		return true
	}
	return false
}

// InsertImage replaces the selection with an image reference and a newline,
// anchors an image embed right after them and moves the cursor there
// InsertImage 用图片引用和换行替换选区，在其后锚定图片嵌入并移动光标
func InsertImage(buf Buffer, path string) Embed {
	start, end := buf.SelectionBounds()
	if start != end {
		buf.Delete(start, end)
	}
	text := "![Image](" + path + ")"
	buf.Insert(start, text)
	after := start + runeLen(text)
	buf.Insert(after, "\n")

	embed := Embed{Kind: EmbedImage, Offset: after + 1, Source: path}
	buf.AddAnchor(embed)
	buf.PlaceCursor(after + 1)
	return embed
}

func runeLen(s string) int {
	return len([]rune(s))
}
