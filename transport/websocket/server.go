package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
	"github.com/rocketscienceinc/tictactoe-ai/internal/tictactoe"
)

const shutdownTimeout = 5 * time.Second

type gameUseCase interface {
	Connect(ctx context.Context, playerID string, listener tictactoe.Listener) (*entity.Player, *tictactoe.Session, error)
	Disconnect(playerID string, session *tictactoe.Session)

	MakeTurn(ctx context.Context, playerID string, cell int) (entity.Snapshot, error)
	Restart(ctx context.Context, playerID string) (entity.Snapshot, error)
	ChangeDifficulty(ctx context.Context, playerID, difficulty string) (entity.Snapshot, error)
	ChooseMark(ctx context.Context, playerID, mark string) (entity.Snapshot, error)
}

type handlerFunc func(ctx context.Context, client *client, message *Message) error

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	upgrader    websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, gameUseCase gameUseCase) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		gameUseCase: gameUseCase,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	server.handlers = map[string]handlerFunc{
		actionConnect:    server.handleConnect,
		actionTurn:       server.handleTurn,
		actionRestart:    server.handleRestart,
		actionDifficulty: server.handleDifficulty,
		actionMark:       server.handleMark,
	}

	return server
}

func (that *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Get("/ws", that.serveWS)

	return router
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveWS - upgrades the connection and serves it until the peer leaves.
func (that *Server) serveWS(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveWS", "remote", req.RemoteAddr)

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	log.Info("WebSocket connection established")

	client := newClient(log, conn)
	done := make(chan struct{})
	writeErr := make(chan error, 1)

	go func() {
		writeErr <- client.writeLoop(done)
	}()

	// unblocks the read loop on shutdown
	go func() {
		select {
		case <-req.Context().Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	that.handleMessages(req.Context(), client)
	close(done)

	if client.session != nil {
		that.gameUseCase.Disconnect(client.playerID, client.session)
	}

	if err = <-writeErr; err != nil {
		log.Error("failed to write message", "error", err)
	}

	log.Info("WebSocket connection closed")
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, client *client) {
	log := that.logger.With("method", "handleMessages")

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			client.sendError("message", "invalid message")
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			client.sendError(message.Action, "unknown action")
			continue
		}

		if err = handler(ctx, client, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}
