package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/haierkeys/watermelon-notes/pkg/code"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/lxzan/gws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	WebSocketServerPingInterval = 25 * time.Second
	WebSocketServerPingWait     = 40 * time.Second
)

var wsClientsGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "watermelon",
	Name:      "websocket_clients",
	Help:      "Connected websocket clients.",
})

// WebSocketMessage one inbound frame "Type|json"
// WebSocketMessage 一条入站消息 "Type|json"
type WebSocketMessage struct {
	Type string `json:"type"`
	Data []byte `json:"data"`
}

type WebsocketServerConfig struct {
	GWSOption    gws.ServerOption
	PingInterval time.Duration
	PingWait     time.Duration
}

// WebsocketClient 结构体来存储每个 WebSocket 连接及其相关状态
// The upgrade request's gin.Context is recycled once the handler returns, so only copies of it are kept
// 升级请求的 gin.Context 在处理函数返回后会被回收，这里只保存从中复制的值
type WebsocketClient struct {
	conn    *gws.Conn
	done    chan struct{}
	once    sync.Once
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *zap.Logger
	TraceID string
	Lang    string
	IP      string
}

// Context is cancelled when the connection closes
// Context 在连接关闭时取消
func (c *WebsocketClient) Context() context.Context {
	return c.ctx
}

// 定期发送 Ping 消息
func (c *WebsocketClient) PingLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.conn.WritePing(nil); err != nil {
				c.logger.Warn("WebsocketServer Client Ping err", zap.Error(err))
				return
			}
		}
	}
}

// Send writes "Type|json(content)" to this client
// Send 向当前客户端发送 "Type|json(content)"
func (c *WebsocketClient) Send(actionType string, content any) error {
	payload, err := EncodeFrame(actionType, content)
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(gws.OpcodeText, payload)
}

// SendAsync queues the frame on the connection's write queue, the same queue Broadcast uses
// SendAsync 把消息放入连接的写队列，与 Broadcast 共用同一队列，保持发送顺序
func (c *WebsocketClient) SendAsync(actionType string, content any) error {
	payload, err := EncodeFrame(actionType, content)
	if err != nil {
		return err
	}
	c.conn.WriteAsync(gws.OpcodeText, payload, func(err error) {
		if err != nil {
			c.logger.Warn("WebsocketServer Client async send err", zap.String("type", actionType), zap.Error(err))
		}
	})
	return nil
}

// ToResponse 将结果码转换为 JSON 并发送给客户端
func (c *WebsocketClient) ToResponse(codeObj *code.Code, action string) {
	res := Res{
		Code:    codeObj.Code(),
		Status:  codeObj.Status(),
		Message: codeObj.Msg(),
		Data:    codeObj.Data(),
	}
	if codeObj.HaveDetails() {
		res.Details = strings.Join(codeObj.Details(), ",")
	}
	if err := c.Send(action, res); err != nil {
		c.logger.Warn("WebsocketServer Client send err", zap.String("type", action), zap.Error(err))
	}
}

func (c *WebsocketClient) close() {
	c.once.Do(func() {
		close(c.done)
		c.cancel()
	})
}

// EncodeFrame 编码出站消息，actionType 为空时只发送 JSON
func EncodeFrame(actionType string, content any) ([]byte, error) {
	body, err := sonic.Marshal(content)
	if err != nil {
		return nil, err
	}
	if actionType == "" {
		return body, nil
	}
	out := make([]byte, 0, len(actionType)+1+len(body))
	out = append(out, actionType...)
	out = append(out, '|')
	return append(out, body...), nil
}

// DecodeFrame splits "Type|json"; ok is false when there is no separator
// DecodeFrame 拆分 "Type|json"；没有分隔符时 ok 为 false
func DecodeFrame(raw string) (msg WebSocketMessage, ok bool) {
	index := strings.Index(raw, "|")
	if index == -1 {
		return msg, false
	}
	msg.Type = strings.TrimSpace(raw[:index])
	msg.Data = []byte(raw[index+1:])
	return msg, msg.Type != ""
}

// ------------------------------------> WebsocketServer

type ConnStorage = map[*gws.Conn]*WebsocketClient

type WebsocketServer struct {
	handlers  map[string]func(*WebsocketClient, *WebSocketMessage)
	onConnect func(*WebsocketClient)
	clients   ConnStorage
	mu        sync.RWMutex
	up        *gws.Upgrader
	config    *WebsocketServerConfig
	logger    *zap.Logger
}

func NewWebsocketServer(c WebsocketServerConfig, logger *zap.Logger) *WebsocketServer {
	if c.PingInterval == 0 {
		c.PingInterval = WebSocketServerPingInterval
	}
	if c.PingWait == 0 {
		c.PingWait = WebSocketServerPingWait
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &WebsocketServer{
		handlers: make(map[string]func(*WebsocketClient, *WebSocketMessage)),
		clients:  make(ConnStorage),
		config:   &c,
		logger:   logger,
	}
	w.up = gws.NewUpgrader(w, &w.config.GWSOption)
	return w
}

func (w *WebsocketServer) Run() gin.HandlerFunc {
	return func(c *gin.Context) {
		socket, err := w.up.Upgrade(c.Writer, c.Request)
		if err != nil {
			w.logger.Warn("WebsocketServer upgrade err", zap.Error(err))
			return
		}
		ctx, cancel := context.WithCancel(context.Background())
		client := &WebsocketClient{
			conn:    socket,
			done:    make(chan struct{}),
			ctx:     ctx,
			cancel:  cancel,
			logger:  w.logger,
			TraceID: c.GetString(TraceIDKey),
			Lang:    RequestLang(c),
			IP:      GetRequestIP(c),
		}
		w.AddClient(client)
		if w.onConnect != nil {
			w.onConnect(client)
		}
		go client.PingLoop(w.config.PingInterval)
		go socket.ReadLoop()
	}
}

// Use 注册消息类型处理器
func (w *WebsocketServer) Use(action string, handler func(*WebsocketClient, *WebSocketMessage)) {
	w.handlers[action] = handler
}

// OnConnect runs right after a client is registered, before its read loop starts
// OnConnect 客户端注册后、读循环启动前执行
func (w *WebsocketServer) OnConnect(fn func(*WebsocketClient)) {
	w.onConnect = fn
}

// Broadcast 向所有客户端广播 "Type|json(content)"
func (w *WebsocketServer) Broadcast(actionType string, content any) error {
	payload, err := EncodeFrame(actionType, content)
	if err != nil {
		return err
	}
	b := gws.NewBroadcaster(gws.OpcodeText, payload)
	defer b.Close()

	w.mu.RLock()
	defer w.mu.RUnlock()
	for conn := range w.clients {
		_ = b.Broadcast(conn)
	}
	return nil
}

// Count 当前连接数
func (w *WebsocketServer) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.clients)
}

func (w *WebsocketServer) GetClient(conn *gws.Conn) *WebsocketClient {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.clients[conn]
}

func (w *WebsocketServer) AddClient(c *WebsocketClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clients[c.conn] = c
	wsClientsGauge.Set(float64(len(w.clients)))
}

func (w *WebsocketServer) RemoveClient(conn *gws.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.clients, conn)
	wsClientsGauge.Set(float64(len(w.clients)))
}

func (w *WebsocketServer) OnOpen(conn *gws.Conn) {
	_ = conn.SetDeadline(time.Now().Add(w.config.PingWait))
}

func (w *WebsocketServer) OnClose(conn *gws.Conn, err error) {
	if c := w.GetClient(conn); c != nil {
		c.close()
	}
	w.RemoveClient(conn)
	w.logger.Info("WebsocketServer Client Leave", zap.Int("count", w.Count()), zap.Error(err))
}

func (w *WebsocketServer) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait))
	_ = socket.WritePong(nil)
}

func (w *WebsocketServer) OnPong(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait))
}

func (w *WebsocketServer) OnMessage(conn *gws.Conn, message *gws.Message) {
	defer message.Close()
	_ = conn.SetDeadline(time.Now().Add(w.config.PingWait))
	if message.Opcode != gws.OpcodeText {
		return
	}
	raw := message.Data.String()
	if raw == "close" {
		_ = conn.WriteClose(1000, []byte("ClientClose"))
		return
	}

	c := w.GetClient(conn)
	if c == nil {
		return
	}

	msg, ok := DecodeFrame(raw)
	if !ok {
		w.logger.Warn("WebsocketServer OnMessage", zap.String("msg", "Illegal message format"))
		c.ToResponse(code.ErrorInvalidParams.WithDetails("expected Type|json"), "")
		return
	}

	handler, exists := w.handlers[msg.Type]
	if !exists {
		w.logger.Warn("WebsocketServer OnMessage", zap.String("msg", "Unknown message type"), zap.String("type", msg.Type))
		c.ToResponse(code.ErrorCommandInvalid.WithDetails(msg.Type), msg.Type)
		return
	}
	w.logger.Debug("WebsocketServer OnMessage", zap.String("type", msg.Type))
	handler(c, &msg)
}
