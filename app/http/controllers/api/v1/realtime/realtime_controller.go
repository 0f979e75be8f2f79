// Package realtime WebSocket 实时网关
//
// 令牌校验发生在协议升级之前，未认证的连接拿到的是 401 而不是
// 升级后再被踢；升级后只处理 subscribe 与 ping 两种帧，
// 格式错误的帧回错误帧但不断开
package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"bloxforge/pkg/auth"
	"bloxforge/pkg/logger"
	"bloxforge/pkg/response"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	maxMsgSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 插件走 Roblox Studio 的 HTTP 客户端，不做 Origin 限制
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientFrame 客户端帧
type clientFrame struct {
	Action   string   `json:"action"`
	Channels []string `json:"channels,omitempty"`
}

// serverFrame 服务端帧
type serverFrame struct {
	Type     string   `json:"type"`
	Channels []string `json:"channels,omitempty"`
	Message  string   `json:"message,omitempty"`
}

type RealtimeController struct{}

// NewRealtimeController 创建实时网关控制器
func NewRealtimeController() *RealtimeController {
	return &RealtimeController{}
}

// Serve 处理 WebSocket 连接
func (rc *RealtimeController) Serve(c *gin.Context) {
	u := auth.CurrentUser(c)
	if u.ID == "" {
		// 认证中间件缺位时兜底，仍然在升级前拒绝
		response.Abort401(c)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.ErrorString("realtime", "upgrade", err.Error())
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMsgSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))

	logger.InfoString("realtime", "connect", "user "+u.ID)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WarnString("realtime", "read", err.Error())
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		var frame clientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			writeFrame(conn, serverFrame{Type: "error", Message: "malformed frame"})
			continue
		}

		switch frame.Action {
		case "subscribe":
			if len(frame.Channels) == 0 {
				writeFrame(conn, serverFrame{Type: "error", Message: "channels required"})
				continue
			}
			writeFrame(conn, serverFrame{Type: "subscribed", Channels: frame.Channels})
		case "ping":
			writeFrame(conn, serverFrame{Type: "pong"})
		default:
			writeFrame(conn, serverFrame{Type: "error", Message: "unknown action"})
		}
	}
}

// writeFrame 发送服务端帧，写失败交给下一次读来发现断连
func writeFrame(conn *websocket.Conn, frame serverFrame) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(frame); err != nil {
		logger.WarnString("realtime", "write", err.Error())
	}
}
