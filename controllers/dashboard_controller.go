package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/harekrishna1602/anvesha-2.0/logging"
	"github.com/harekrishna1602/anvesha-2.0/services"
	"github.com/harekrishna1602/anvesha-2.0/session"
	"github.com/harekrishna1602/anvesha-2.0/socket"
)

// pongWait is how long a summary socket may stay silent before it is dropped
const pongWait = 60 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type DashboardController struct {
	Summaries *services.SummaryService
	Hub       *socket.Hub
	Sessions  *session.Tracker
}

func NewDashboardController(summaries *services.SummaryService, hub *socket.Hub, sessions *session.Tracker) *DashboardController {
	return &DashboardController{Summaries: summaries, Hub: hub, Sessions: sessions}
}

// GetSummary handles GET /api/v1/dashboard/summary
func (dc *DashboardController) GetSummary(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	summary, err := dc.Summaries.Summary(c.Request.Context(), actor)
	if err != nil {
		respondError(c, "dashboard summary", err)
		return
	}

	respondOK(c, http.StatusOK, summary)
}

// SummarySocket handles GET /api/v1/ws/summary. The connection counts as a
// signed-in session for as long as it stays open; summaries are pushed to it
// by the poller.
func (dc *DashboardController) SummarySocket(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	logger := logging.FromContext(c.Request.Context()).With("user_id", actor.ID)
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	dc.Hub.Register(actor.ID, conn)
	dc.Sessions.SignIn(actor)
	defer func() {
		dc.Sessions.SignOut(actor)
		dc.Hub.Unregister(actor.ID, conn)
		_ = conn.Close()
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(time.Second))
	})

	// clients only send pings; any message keeps the connection alive
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("summary socket closed unexpectedly", "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}
