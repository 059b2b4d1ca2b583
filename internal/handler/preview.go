// Package handler serves a decoded image to the embedded preview client
// over a websocket. Frames are binary messages carrying the image width and
// height as little-endian uint32 followed by top-down RGBA bytes; clients
// send text commands and receive re-rendered frames or text errors back.
package handler

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"bmper/internal/bitmap"
	"bmper/internal/config"
	"bmper/internal/draw"
	"bmper/internal/logging"
)

const (
	webSocketReadBufferSize  = 1024
	webSocketWriteBufferSize = 64 * 1024

	// Tokens available before the per-connection command limiter kicks in.
	commandBurst = 8
)

// Preview pushes rendered frames of one source image to websocket clients.
// "border N" draws a border on a pristine copy of the source, "reset"
// restores the original; the source itself is never modified.
type Preview struct {
	cfg    *config.Config
	source *bitmap.Image
	active atomic.Int64
}

// NewPreview wraps the source image in a websocket handler.
func NewPreview(cfg *config.Config, source *bitmap.Image) *Preview {
	return &Preview{cfg: cfg, source: source}
}

func (p *Preview) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if p.active.Load() >= int64(p.cfg.Security.MaxConnections) {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)

		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  webSocketReadBufferSize,
		WriteBufferSize: webSocketWriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return p.allowedOrigin(r.Header.Get("Origin"), r.Host)
		},
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("upgrade websocket: %v", err)

		return
	}

	p.active.Add(1)
	defer p.active.Add(-1)

	defer func() {
		if err = wsConn.Close(); err != nil {
			logging.Debug("close websocket: %v", err)
		}
	}()

	p.serveConn(wsConn)
}

func (p *Preview) serveConn(wsConn *websocket.Conn) {
	logging.Info("preview client connected: %s", wsConn.RemoteAddr())

	var limiter *rate.Limiter
	if p.cfg.Security.EnableRateLimit {
		interval := time.Minute / time.Duration(p.cfg.Security.RateLimitPerMinute)
		limiter = rate.NewLimiter(rate.Every(interval), commandBurst)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	frame, err := frameMessage(p.source)
	if err != nil {
		logging.Error("render source image: %v", err)

		return
	}

	if err = wsConn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		logging.Debug("send initial frame: %v", err)

		return
	}

	for {
		msgType, data, err := wsConn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Debug("read command: %v", err)
			}

			return
		}

		if msgType != websocket.TextMessage {
			continue
		}

		if limiter != nil && !limiter.Allow() {
			p.reply(wsConn, "error: rate limit exceeded")

			continue
		}

		cmd := strings.TrimSpace(string(data))
		logging.Debug("preview command from %s: %q", wsConn.RemoteAddr(), cmd)

		frame, err := p.render(cmd, rng)
		if err != nil {
			p.reply(wsConn, fmt.Sprintf("error: %v", err))

			continue
		}

		if err = wsConn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			logging.Debug("send frame: %v", err)

			return
		}
	}
}

// render executes one client command and returns the frame to push.
func (p *Preview) render(cmd string, rng *rand.Rand) ([]byte, error) {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	switch fields[0] {
	case "reset":
		return frameMessage(p.source)

	case "border":
		if len(fields) != 2 {
			return nil, fmt.Errorf("usage: border WIDTH")
		}

		width, err := strconv.Atoi(fields[1])
		if err != nil || width < 1 || width > p.cfg.Preview.MaxBorderWidth {
			return nil, fmt.Errorf("border width must be between 1 and %d", p.cfg.Preview.MaxBorderWidth)
		}

		raster := p.source.Raster.Clone()
		if err = draw.Border(raster, width, rng); err != nil {
			return nil, err
		}

		bordered := *p.source
		bordered.Raster = raster

		return frameMessage(&bordered)

	default:
		return nil, fmt.Errorf("unknown command %q", fields[0])
	}
}

func (p *Preview) reply(wsConn *websocket.Conn, msg string) {
	if err := wsConn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		logging.Debug("send reply: %v", err)
	}
}

// frameMessage renders the image into one binary websocket frame.
func frameMessage(img *bitmap.Image) ([]byte, error) {
	rgba, err := img.RGBA()
	if err != nil {
		return nil, err
	}

	frame := make([]byte, 8+len(rgba))
	binary.LittleEndian.PutUint32(frame[0:4], uint32(img.Raster.Width))
	binary.LittleEndian.PutUint32(frame[4:8], uint32(img.Raster.Height))
	copy(frame[8:], rgba)

	return frame, nil
}

// allowedOrigin reports whether a websocket handshake origin is acceptable.
// Requests without an Origin header are not cross-site and always pass, as
// do same-host and loopback origins. Anything else must match the allow
// list, with or without scheme.
func (p *Preview) allowedOrigin(origin, host string) bool {
	if origin == "" {
		return true
	}

	normalized := strings.TrimPrefix(strings.TrimPrefix(origin, "http://"), "https://")
	normalized = strings.TrimSuffix(normalized, "/")

	if normalized == host || strings.HasPrefix(normalized, "localhost") || strings.HasPrefix(normalized, "127.0.0.1") {
		return true
	}

	for _, entry := range p.cfg.Security.AllowedOrigins {
		if entry == origin || entry == normalized {
			return true
		}

		if strings.TrimPrefix(strings.TrimPrefix(entry, "http://"), "https://") == normalized {
			return true
		}
	}

	return false
}
