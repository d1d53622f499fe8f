package http

import (
	"context"
	"errors"
	"io"
	"net"
	gohttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/rfq-engine/internal/rfq"
)

const (
	wsWriteTimeout = 10 * time.Second
	// large enough for offers carrying big nonces
	wsReadLimit = 1 << 20
)

type SessionServer interface {
	Serve(ctx context.Context, conn rfq.SolverConn) error
}

// WSHandler upgrades solver connections and hands them to the intake. Sessions
// end with the solver or when ctx is done.
type WSHandler struct {
	ctx      context.Context
	intake   SessionServer
	upgrader websocket.Upgrader
}

func NewWSHandler(ctx context.Context, intake SessionServer) *WSHandler {
	return &WSHandler{
		ctx:    ctx,
		intake: intake,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *gohttp.Request) bool { return true },
		},
	}
}

func (h *WSHandler) SetRoutes(group *gin.RouterGroup) {
	group.GET("", h.subscribe)
}

func (h *WSHandler) Root() string {
	return "/ws"
}

// @Summary Solver stream
// @Description WebSocket endpoint for solvers. Every admitted quote is pushed as a JSON text frame; solvers answer with offer frames `{type, quoteId, amountOut|amountIn, deadline, signedMessage}`. Offers are never acknowledged: invalid ones are dropped silently.
// @Tags solver
// @Success 101 "Switching Protocols"
// @Router /ws [get]
func (h *WSHandler) subscribe(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Debug().Err(err).Msg("[WSHandler] upgrade failed")
		return
	}
	ws.SetReadLimit(wsReadLimit)

	remote := ws.RemoteAddr().String()
	log.Info().Str("remote", remote).Msg("[WSHandler] solver connected")
	if err := h.intake.Serve(h.ctx, &wsConn{ws: ws}); err != nil {
		log.Debug().Err(err).Str("remote", remote).Msg("[WSHandler] solver session ended with error")
	}
	log.Info().Str("remote", remote).Msg("[WSHandler] solver disconnected")
}

// wsConn adapts a websocket to rfq.SolverConn. Only the session's forwarder
// writes, so writes need no lock.
type wsConn struct {
	ws *websocket.Conn
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	for {
		typ, data, err := c.ws.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, io.EOF
			}
			return nil, err
		}
		if typ == websocket.TextMessage || typ == websocket.BinaryMessage {
			return data, nil
		}
	}
}

func (c *wsConn) WriteMessage(data []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close() error {
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(time.Second))
	return c.ws.Close()
}
