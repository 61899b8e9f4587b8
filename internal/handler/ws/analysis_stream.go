package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"RiskReturn/internal/domain/models"
	"RiskReturn/internal/handler/api"
	"RiskReturn/internal/usecase"
	xhttp "RiskReturn/pkg/http"
	xlogger "RiskReturn/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	MessageProgress = "progress"
	MessageReport   = "report"
	MessageError    = "error"

	writeWait = 10 * time.Second
)

// ProgressAnalyzer is implemented by usecase.Analyzer.
type ProgressAnalyzer interface {
	AnalyzeWithProgress(ctx context.Context, req models.AnalysisRequest, progress usecase.ProgressFunc) (*models.AnalysisReport, error)
}

// Message is one frame sent to the client.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// AnalysisStreamHandler runs an analysis per request frame and streams one
// progress frame per asset, then the report or an error.
type AnalysisStreamHandler struct {
	logger   *xlogger.Logger
	analyzer ProgressAnalyzer
	defaults models.AnalysisRequest
	upgrader websocket.Upgrader
}

// NewAnalysisStreamHandler accepts any origin when origins is empty.
func NewAnalysisStreamHandler(logger *xlogger.Logger, analyzer ProgressAnalyzer, defaults models.AnalysisRequest, origins []string) *AnalysisStreamHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &AnalysisStreamHandler{
		logger:   logger.Component("ws"),
		analyzer: analyzer,
		defaults: defaults,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin] || allowed["*"]
			},
		},
	}
}

func (h *AnalysisStreamHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/analysis", h.Stream)
}

func (h *AnalysisStreamHandler) Stream(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()
	h.logger.Debug("client connected", xlogger.String("remote", c.RealIP()))

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error", xlogger.Error(err))
			}
			return nil
		}
		if err := h.handle(c, conn, raw); err != nil {
			h.logger.Debug("client gone", xlogger.Error(err))
			return nil
		}
	}
}

// handle returns an error only when the connection can no longer be written.
func (h *AnalysisStreamHandler) handle(c echo.Context, conn *websocket.Conn, raw []byte) error {
	req := h.defaults
	if err := json.Unmarshal(raw, &req); err != nil {
		return send(conn, MessageError, []*xhttp.AppError{xhttp.BadRequestError("request must be a JSON object")})
	}
	if verr := xhttp.ValidateStruct(c, &req); verr != nil {
		return send(conn, MessageError, verr)
	}

	var writeErr error
	res, err := h.analyzer.AnalyzeWithProgress(c.Request().Context(), req, func(p models.Progress) {
		if writeErr == nil {
			writeErr = send(conn, MessageProgress, p)
		}
	})
	if writeErr != nil {
		return writeErr
	}
	if err != nil {
		appErr := api.ErrorFor(err, res)
		if appErr.Status >= http.StatusInternalServerError {
			h.logger.Error("streamed analysis failed", xlogger.Error(err))
		}
		return send(conn, MessageError, []*xhttp.AppError{appErr})
	}
	return send(conn, MessageReport, res)
}

func send(conn *websocket.Conn, typ string, data interface{}) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(Message{Type: typ, Data: data})
}
