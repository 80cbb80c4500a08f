// Package api is the reference host's local control surface (component J in
// SPEC_FULL.md): a small Gin HTTP server that lets an operator drive a
// bridge.Bridge with job/pause/close requests and stream its outbound
// messages over a WebSocket, grounded on a pool's REST API and
// WebSocket GetWork servers.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/tos-network/cn-worker-core/internal/bridge"
	"github.com/tos-network/cn-worker-core/internal/config"
	"github.com/tos-network/cn-worker-core/internal/util"
)

const shutdownTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// jobRequest is the POST /v1/job body.
type jobRequest struct {
	Algo    string `json:"algo" binding:"required"`
	SoftAES bool   `json:"soft_aes"`
	Ways    int    `json:"ways" binding:"required"`
	BlobHex string `json:"blob_hex" binding:"required"`
	Target  string `json:"target" binding:"required"`
}

// Server is the local control API.
type Server struct {
	cfg    *config.APIConfig
	bridge *bridge.Bridge
	router *gin.Engine
	server *http.Server

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]struct{}
}

// NewServer builds a Server that forwards requests to b and broadcasts b's
// outbound messages to every connected WebSocket client.
func NewServer(cfg *config.APIConfig, b *bridge.Bridge) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		cfg:     cfg,
		bridge:  b,
		router:  gin.New(),
		clients: make(map[*websocket.Conn]struct{}),
	}
	s.router.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	v1 := s.router.Group("/v1")
	v1.GET("/healthz", s.handleHealth)
	v1.POST("/job", s.handleJob)
	v1.POST("/pause", s.handlePause)
	v1.POST("/close", s.handleClose)
	v1.GET("/stream", s.handleStream)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleJob(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.bridge.SendJob(req.Algo, req.SoftAES, req.Ways, req.BlobHex, req.Target)
	c.JSON(http.StatusAccepted, gin.H{"status": "submitted"})
}

func (s *Server) handlePause(c *gin.Context) {
	s.bridge.Send("pause", nil)
	c.JSON(http.StatusAccepted, gin.H{"status": "paused"})
}

func (s *Server) handleClose(c *gin.Context) {
	s.bridge.Close()
	c.JSON(http.StatusAccepted, gin.H{"status": "closing"})
}

func (s *Server) handleStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		util.Errorf("api: websocket upgrade failed: %v", err)
		return
	}
	s.clientsMu.Lock()
	s.clients[conn] = struct{}{}
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
		conn.Close()
	}()

	// Drain reads until the client disconnects; this stream is server -> client only.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast pushes one outbound message as a JSON frame to every connected
// stream client. Intended to be used as a bridge.OnData callback.
func (s *Server) Broadcast(name string, values map[string]string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	frame := gin.H{"name": name, "values": values}
	for conn := range s.clients {
		if err := conn.WriteJSON(frame); err != nil {
			util.Errorf("api: websocket write failed: %v", err)
		}
	}
}

// Start begins serving HTTP in a background goroutine.
func (s *Server) Start() error {
	if !s.cfg.Enabled {
		return nil
	}
	s.server = &http.Server{Addr: s.cfg.Bind, Handler: s.router}
	util.Infof("control API listening on %s", s.cfg.Bind)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Errorf("control API server error: %v", err)
		}
	}()
	return nil
}

// Stop gracefully shuts the HTTP server down.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}
