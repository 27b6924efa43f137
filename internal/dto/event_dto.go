package dto

import (
	"github.com/haierkeys/watermelon-notes/internal/service"
)

// EventDTO one session event; on the websocket it is framed as "Type|json(Data)"
// EventDTO 一条会话事件；在 websocket 上以 "Type|json(Data)" 形式发送
type EventDTO struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// NewEventDTO 会话事件转换为 DTO
func NewEventDTO(e service.Event) EventDTO {
	out := EventDTO{Type: e.EventName()}
	switch ev := e.(type) {
	case service.ViewChanged:
		out.Data = NewViewDTO(ev.View)
	case service.SelectionChanged:
		out.Data = NewSelectionDTO(ev)
	case service.FolderListChanged:
		names := ev.Names
		if names == nil {
			names = []string{}
		}
		out.Data = &FolderListDTO{Names: names}
	case service.ErrorOccurred:
		out.Data = &ErrorDTO{Kind: ev.Kind, Code: ev.Code, Message: ev.Message, Details: ev.Details}
	case service.BufferChanged:
		out.Data = NewBufferDTO(ev)
	case service.EmbedInserted:
		out.Data = &EmbedDTO{Kind: ev.Embed.Kind, Offset: ev.Embed.Offset, Source: ev.Embed.Source}
	}
	return out
}

// NewEventDTOs 批量转换
func NewEventDTOs(events []service.Event) []EventDTO {
	out := make([]EventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, NewEventDTO(e))
	}
	return out
}
