package dto

import (
	"encoding/json"
	"strings"

	"github.com/haierkeys/watermelon-notes/internal/service"
	"github.com/haierkeys/watermelon-notes/pkg/code"
	"github.com/haierkeys/watermelon-notes/pkg/markup"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
)

// CommandRequest Request body of POST /api/command
// CommandRequest POST /api/command 的请求体
type CommandRequest struct {
	Type string `json:"type" binding:"required"`
	// Data stays undecoded until the type is known
	// Data 在确定命令类型前保持原样
	Data json.RawMessage `json:"data"`
}

type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type SelectAtRequest struct {
	Position    int     `json:"position"`
	ViewVersion *uint64 `json:"viewVersion"`
}

type SelectNoteRequest struct {
	ID string `json:"id" binding:"required,uuid"`
}

type SetSearchTextRequest struct {
	Text string `json:"text"`
}

// SetFolderScopeRequest either kind ("all", "untagged", "folder") plus folder, or a label
// SetFolderScopeRequest 使用 kind 加 folder，或直接使用显示名称 label
type SetFolderScopeRequest struct {
	Kind   string `json:"kind"`
	Folder string `json:"folder"`
	Label  string `json:"label"`
}

type EditTitleRequest struct {
	Title string `json:"title"`
}

type EditContentRequest struct {
	Content string `json:"content"`
}

type PatchContentRequest struct {
	Patch string `json:"patch" binding:"required"`
}

type ApplyMarkupRequest struct {
	Kind string `json:"kind" binding:"required"`
}

type ApplyShortcutRequest struct {
	Chord string `json:"chord" binding:"required"`
}

type SetSelectionRequest struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type ToggleCheckboxAtRequest struct {
	Offset int `json:"offset"`
}

type InsertImageRequest struct {
	Path string `json:"path"`
}

type MoveNoteToFolderRequest struct {
	ID     string `json:"id" binding:"required,uuid"`
	Folder string `json:"folder"`
}

type RenameFolderRequest struct {
	Old string `json:"old"`
	New string `json:"new"`
}

type AddFolderRequest struct {
	Name string `json:"name"`
}

// decoders 命令名称到解码函数的映射
var decoders = map[string]func([]byte) (service.Command, error){
	"CreateNote": decodeWith(func(r CreateNoteRequest) (service.Command, error) {
		return service.CreateNote{Title: r.Title, Content: r.Content}, nil
	}),
	"DeleteSelected": func([]byte) (service.Command, error) {
		return service.DeleteSelected{}, nil
	},
	"SelectAt": decodeWith(func(r SelectAtRequest) (service.Command, error) {
		return service.SelectAt{Position: r.Position, ViewVersion: r.ViewVersion}, nil
	}),
	"SelectNote": decodeWith(func(r SelectNoteRequest) (service.Command, error) {
		id, err := parseID(r.ID)
		if err != nil {
			return nil, err
		}
		return service.SelectNote{ID: id}, nil
	}),
	"SetSearchText": decodeWith(func(r SetSearchTextRequest) (service.Command, error) {
		return service.SetSearchText{Text: r.Text}, nil
	}),
	"SetFolderScope": decodeWith(func(r SetFolderScopeRequest) (service.Command, error) {
		scope, err := r.scope()
		if err != nil {
			return nil, err
		}
		return service.SetFolderScope{Scope: scope}, nil
	}),
	"EditTitle": decodeWith(func(r EditTitleRequest) (service.Command, error) {
		return service.EditTitle{Title: r.Title}, nil
	}),
	"EditContent": decodeWith(func(r EditContentRequest) (service.Command, error) {
		return service.EditContent{Content: r.Content}, nil
	}),
	"PatchContent": decodeWith(func(r PatchContentRequest) (service.Command, error) {
		return service.PatchContent{Patch: r.Patch}, nil
	}),
	"ApplyMarkup": decodeWith(func(r ApplyMarkupRequest) (service.Command, error) {
		return service.ApplyMarkup{Kind: markup.Kind(strings.ToLower(strings.TrimSpace(r.Kind)))}, nil
	}),
	"ApplyShortcut": decodeWith(func(r ApplyShortcutRequest) (service.Command, error) {
		return service.ApplyShortcut{Chord: r.Chord}, nil
	}),
	"SetSelection": decodeWith(func(r SetSelectionRequest) (service.Command, error) {
		return service.SetSelection{Start: r.Start, End: r.End}, nil
	}),
	"ToggleCheckboxAt": decodeWith(func(r ToggleCheckboxAtRequest) (service.Command, error) {
		return service.ToggleCheckboxAt{Offset: r.Offset}, nil
	}),
	"InsertImage": decodeWith(func(r InsertImageRequest) (service.Command, error) {
		return service.InsertImage{Path: r.Path}, nil
	}),
	"MoveNoteToFolder": decodeWith(func(r MoveNoteToFolderRequest) (service.Command, error) {
		id, err := parseID(r.ID)
		if err != nil {
			return nil, err
		}
		return service.MoveNoteToFolder{ID: id, Folder: r.Folder}, nil
	}),
	"RenameFolder": decodeWith(func(r RenameFolderRequest) (service.Command, error) {
		return service.RenameFolder{Old: r.Old, New: r.New}, nil
	}),
	"AddFolder": decodeWith(func(r AddFolderRequest) (service.Command, error) {
		return service.AddFolder{Name: r.Name}, nil
	}),
	"Flush": func([]byte) (service.Command, error) {
		return service.Flush{}, nil
	},
}

// CommandTypes 支持的命令名称
func CommandTypes() []string {
	out := make([]string, 0, len(decoders))
	for k := range decoders {
		out = append(out, k)
	}
	return out
}

// DecodeCommand turns a command type and its JSON payload into a session command
// DecodeCommand 把命令类型和 JSON 负载转换为会话命令
func DecodeCommand(typ string, data []byte) (service.Command, error) {
	dec, ok := decoders[strings.TrimSpace(typ)]
	if !ok {
		return nil, code.ErrorCommandInvalid.WithDetails(typ)
	}
	return dec(data)
}

func decodeWith[T any](build func(T) (service.Command, error)) func([]byte) (service.Command, error) {
	return func(data []byte) (service.Command, error) {
		var req T
		if len(data) > 0 && string(data) != "null" {
			if err := sonic.Unmarshal(data, &req); err != nil {
				return nil, code.ErrorInvalidParams.WithDetails("invalid command payload", err.Error())
			}
		}
		// binding.Validator 由路由层替换为带翻译的校验器
		if err := binding.Validator.ValidateStruct(&req); err != nil {
			return nil, code.ErrorInvalidParams.WithCause(err)
		}
		return build(req)
	}
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, code.ErrorInvalidParams.WithDetails("id", err.Error())
	}
	return id, nil
}

func (r SetFolderScopeRequest) scope() (service.Scope, error) {
	switch service.ScopeKind(strings.ToLower(strings.TrimSpace(r.Kind))) {
	case "":
		return service.ParseScope(r.Label), nil
	case service.ScopeKindAll:
		return service.AllScope(), nil
	case service.ScopeKindUntagged:
		return service.UntaggedScope(), nil
	case service.ScopeKindFolder:
		name := strings.TrimSpace(r.Folder)
		if name == "" {
			return service.Scope{}, code.ErrorFolderNameEmpty
		}
		return service.FolderScope(name), nil
	default:
		return service.Scope{}, code.ErrorInvalidParams.WithDetails("scope kind", r.Kind)
	}
}
