package config

import (
	"fmt"
	"time"

	socketio "github.com/doquangtan/socket.io/v4"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"matchcore/app/models"
	"matchcore/app/services"
	"matchcore/app/utils"
)

// Socket events
const (
	EventIdentify   = "identify"
	EventIdentified = "identified"
	EventError      = "connection_error"
)

// SocketIoHandler binds Socket.IO connections to users so match events can be
// pushed to them
type SocketIoHandler struct {
	io            *socketio.Io
	socketService *services.SocketService
	jwtSecret     string
	log           *zap.Logger
}

// NewSocketHandler creates a new Socket.IO handler instance
func NewSocketHandler(socketService *services.SocketService, jwtSecret string, log *zap.Logger) *SocketIoHandler {
	io := socketio.New()

	handler := &SocketIoHandler{
		io:            io,
		socketService: socketService,
		jwtSecret:     jwtSecret,
		log:           log.Named("socket_handler"),
	}

	socketService.SetEmitter(handler.emitTo)
	handler.setupSocketHandlers()
	return handler
}

// setupSocketHandlers configures all Socket.IO event handlers
func (h *SocketIoHandler) setupSocketHandlers() {
	// A token passed at handshake must be valid; otherwise identify comes later
	h.io.OnAuthorization(func(params map[string]string) bool {
		token := params["token"]
		if token == "" {
			return true
		}
		_, err := utils.ParseToken(token, h.jwtSecret)
		return err == nil
	})

	h.io.OnConnection(func(socket *socketio.Socket) {
		h.log.Debug("socket connected", zap.String("socket_id", socket.Id))

		socket.On(EventIdentify, func(event *socketio.EventPayload) {
			userID, err := h.identify(event)
			if err != nil {
				socket.Emit(EventError, models.ConnectionError{
					Status:    "error",
					ErrorCode: models.ErrorCodeInvalidToken,
					ErrorType: models.ErrorTypeAuthentication,
					Field:     "token",
					Message:   err.Error(),
					Timestamp: time.Now().UTC().Format(time.RFC3339),
					SocketID:  socket.Id,
					Event:     EventError,
				})
				return
			}

			h.socketService.Register(userID, socket.Id)
			h.log.Info("socket identified", zap.String("socket_id", socket.Id), zap.String("user_id", userID))
			socket.Emit(EventIdentified, models.IdentifyResponse{
				Status:    "success",
				UserID:    userID,
				SocketID:  socket.Id,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
				Event:     EventIdentified,
			})
		})

		socket.On("disconnect", func(event *socketio.EventPayload) {
			userID := h.socketService.Unregister(socket.Id)
			h.log.Debug("socket disconnected", zap.String("socket_id", socket.Id), zap.String("user_id", userID))
		})
	})
}

// identify extracts and verifies the token sent with an identify event
func (h *SocketIoHandler) identify(event *socketio.EventPayload) (string, error) {
	if len(event.Data) == 0 {
		return "", fmt.Errorf("no identify data provided")
	}

	var token string
	switch data := event.Data[0].(type) {
	case string:
		token = data
	case map[string]interface{}:
		token, _ = data["token"].(string)
	default:
		return "", fmt.Errorf("invalid identify data format")
	}
	if token == "" {
		return "", fmt.Errorf("token is required")
	}
	return utils.ParseToken(token, h.jwtSecret)
}

// emitTo sends one event to the connected socket with the given id
func (h *SocketIoHandler) emitTo(socketID, event string, data interface{}) error {
	for _, socket := range h.io.Sockets() {
		if socket.Id == socketID {
			socket.Emit(event, data)
			return nil
		}
	}
	return fmt.Errorf("socket %s is not connected", socketID)
}

// SetupSocketRoutes configures Socket.IO routes for the Fiber app
func (h *SocketIoHandler) SetupSocketRoutes(app *fiber.App) {
	app.Use("/", h.io.Middleware)
	app.Route("/socket.io", h.io.FiberRoute)
}
