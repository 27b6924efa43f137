package service

import (
	"strings"
	"time"

	"github.com/haierkeys/watermelon-notes/internal/domain"

	"github.com/google/uuid"
)

// ScopeKind 列表范围类型
type ScopeKind string

const (
	ScopeKindAll      ScopeKind = "all"
	ScopeKindUntagged ScopeKind = "untagged"
	ScopeKindFolder   ScopeKind = "folder"
)

// previewRunes 列表预览最多保留的字符数
const previewRunes = 80

// Scope is the folder facet of a view
// Scope 视图的文件夹维度
type Scope struct {
	Kind   ScopeKind `json:"kind"`
	Folder string    `json:"folder,omitempty"`
}

func AllScope() Scope      { return Scope{Kind: ScopeKindAll} }
func UntaggedScope() Scope { return Scope{Kind: ScopeKindUntagged} }

func FolderScope(name string) Scope {
	return Scope{Kind: ScopeKindFolder, Folder: name}
}

// ParseScope maps a scope label or folder name to a scope.
// "" and "All Notes" select every note, "Untagged" selects notes without a folder.
// ParseScope 把范围名称或文件夹名称转换为范围
func ParseScope(label string) Scope {
	switch strings.TrimSpace(label) {
	case "", domain.ScopeLabelAll:
		return AllScope()
	case domain.ScopeLabelUntagged:
		return UntaggedScope()
	default:
		return FolderScope(strings.TrimSpace(label))
	}
}

// Label 范围的显示名称
func (s Scope) Label() string {
	switch s.Kind {
	case ScopeKindUntagged:
		return domain.ScopeLabelUntagged
	case ScopeKindFolder:
		return s.Folder
	default:
		return domain.ScopeLabelAll
	}
}

// Match 判断笔记是否属于该范围
func (s Scope) Match(n *domain.Note) bool {
	switch s.Kind {
	case ScopeKindUntagged:
		return n.IsUntagged()
	case ScopeKindFolder:
		return n.InFolder(s.Folder)
	default:
		return true
	}
}

// ViewEntry 视图中的一行
type ViewEntry struct {
	ID        uuid.UUID
	Title     string
	Preview   string
	Folder    *string
	UpdatedAt time.Time
}

// View is an ordered projection of the canonical list.
// Positions are only meaningful for the Version they were produced with.
// View 规范列表的有序投影；位置只对产生它的版本有效
type View struct {
	Version    uint64
	Scope      Scope
	ScopeLabel string
	Search     string
	Entries    []ViewEntry
}

// Len 视图行数
func (v *View) Len() int {
	if v == nil {
		return 0
	}
	return len(v.Entries)
}

// IdentityAt resolves a view position to a note identity
// IdentityAt 把视图位置解析为笔记标识
func (v *View) IdentityAt(pos int) (uuid.UUID, bool) {
	if v == nil || pos < 0 || pos >= len(v.Entries) {
		return uuid.Nil, false
	}
	return v.Entries[pos].ID, true
}

// PositionOf 返回标识在视图中的位置，不存在返回 -1
func (v *View) PositionOf(id uuid.UUID) int {
	if v == nil {
		return -1
	}
	for i := range v.Entries {
		if v.Entries[i].ID == id {
			return i
		}
	}
	return -1
}

// ViewFilter holds the scope and search facets. The two are independent.
// ViewFilter 保存范围与搜索两个相互独立的维度
type ViewFilter struct {
	scope   Scope
	search  string
	version uint64
}

// NewViewFilter 创建默认范围为全部笔记的过滤器
func NewViewFilter() *ViewFilter {
	return &ViewFilter{scope: AllScope()}
}

func (f *ViewFilter) Scope() Scope   { return f.scope }
func (f *ViewFilter) Search() string { return f.search }

// SetScope 修改范围，不影响搜索文本
func (f *ViewFilter) SetScope(s Scope) {
	f.scope = s
}

// SetSearch 修改搜索文本，不影响范围
func (f *ViewFilter) SetSearch(text string) {
	f.search = text
}

// RenameFolder keeps a folder scope pointing at a renamed folder
// RenameFolder 文件夹重命名后让范围跟随新名称
func (f *ViewFilter) RenameFolder(oldName, newName string) bool {
	if f.scope.Kind == ScopeKindFolder && f.scope.Folder == oldName {
		f.scope.Folder = newName
		return true
	}
	return false
}

// Apply projects notes, preserving their relative order
// Apply 投影笔记列表，保持相对顺序
func (f *ViewFilter) Apply(notes []domain.Note) *View {
	f.version++
	v := &View{
		Version:    f.version,
		Scope:      f.scope,
		ScopeLabel: f.scope.Label(),
		Search:     f.search,
		Entries:    make([]ViewEntry, 0, len(notes)),
	}
	for i := range notes {
		n := &notes[i]
		if !f.scope.Match(n) || !n.Matches(f.search) {
			continue
		}
		c := n.Clone()
		v.Entries = append(v.Entries, ViewEntry{
			ID:        c.ID,
			Title:     c.Title,
			Preview:   preview(c.Content),
			Folder:    c.Folder,
			UpdatedAt: c.UpdatedAt,
		})
	}
	return v
}

func preview(content string) string {
	line := content
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	r := []rune(line)
	if len(r) > previewRunes {
		return string(r[:previewRunes])
	}
	return line
}
