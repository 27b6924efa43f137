package websocket_router

import (
	"context"

	"github.com/haierkeys/watermelon-notes/internal/app"
	"github.com/haierkeys/watermelon-notes/internal/dto"
	"github.com/haierkeys/watermelon-notes/internal/service"
	pkgapp "github.com/haierkeys/watermelon-notes/pkg/app"
	pkglogger "github.com/haierkeys/watermelon-notes/pkg/logger"

	"go.uber.org/zap"
)

// EventWSHandler carries session commands in and session events out over one websocket endpoint.
// Inbound frames are "CommandType|json", outbound frames are "EventType|json".
// EventWSHandler 通过同一个 websocket 端点接收会话命令并推送会话事件
type EventWSHandler struct {
	*WSHandler
	wss *pkgapp.WebsocketServer
}

func NewEventWSHandler(a *app.App, v *pkgapp.Validator, wss *pkgapp.WebsocketServer) *EventWSHandler {
	return &EventWSHandler{WSHandler: NewWSHandler(a, v), wss: wss}
}

// Register wires every command type, the connect snapshot and the broadcaster.
// The returned func detaches the broadcaster.
// Register 注册所有命令类型、连接快照与事件广播，返回取消广播的函数
func (h *EventWSHandler) Register() (unsubscribe func()) {
	for _, typ := range dto.CommandTypes() {
		h.wss.Use(typ, h.Command)
	}
	h.wss.OnConnect(h.Snapshot)
	return h.App.Subscribe(h.Broadcast)
}

// Command decodes and dispatches one command.
// Its events reach this client through Broadcast like every other client;
// only failures that produced no event are answered directly.
// Command 解码并执行一条命令；事件统一经 Broadcast 推送，没有产生事件的失败直接回复当前客户端
func (h *EventWSHandler) Command(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	cmd, err := dto.DecodeCommand(msg.Type, msg.Data)
	if err != nil {
		h.respondError(c, err, msg.Type, "websocket_router.EventWSHandler.Command.DecodeCommand")
		return
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.App.Config().GetContextTimeout())
	defer cancel()

	events, err := h.App.Dispatch(ctx, cmd)
	if err != nil && len(events) == 0 {
		h.respondError(c, err, msg.Type, "websocket_router.EventWSHandler.Command")
		return
	}
	h.logDebug(c, "websocket_router.EventWSHandler.Command",
		zap.String(pkglogger.FieldCommand, msg.Type),
		zap.Int(pkglogger.FieldCount, len(events)))
}

// Snapshot brings a new client up to date.
// Frames are queued from the command worker so no later event can overtake them.
// Snapshot 向新连接发送当前状态；在命令 worker 上入队，后续事件不会先于快照到达
func (h *EventWSHandler) Snapshot(c *pkgapp.WebsocketClient) {
	ctx, cancel := context.WithTimeout(c.Context(), h.App.Config().GetContextTimeout())
	defer cancel()

	err := h.App.SnapshotTo(ctx, func(events []service.Event) {
		for _, e := range dto.NewEventDTOs(events) {
			if err := c.SendAsync(e.Type, e.Data); err != nil {
				h.logError(c, "websocket_router.EventWSHandler.Snapshot.Send", err)
			}
		}
	})
	if err != nil {
		h.respondError(c, err, "Snapshot", "websocket_router.EventWSHandler.Snapshot")
	}
}

// Broadcast runs on the command worker; gws queues the writes per connection
// Broadcast 在命令 worker 上执行；写操作由 gws 按连接排队
func (h *EventWSHandler) Broadcast(events []service.Event) {
	for _, e := range dto.NewEventDTOs(events) {
		if err := h.wss.Broadcast(e.Type, e.Data); err != nil {
			h.App.Logger().Warn("websocket_router.EventWSHandler.Broadcast",
				zap.String(pkglogger.FieldEvent, e.Type), zap.Error(err))
		}
	}
}
