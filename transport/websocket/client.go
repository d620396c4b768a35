package websocket

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
	"github.com/rocketscienceinc/tictactoe-ai/internal/tictactoe"
)

const (
	sendBufferSize = 64
	idlePingPeriod = 30 * time.Second
	writeWait      = 10 * time.Second
)

// client is one browser connection. It implements tictactoe.Listener by
// queueing session events for the write loop.
type client struct {
	logger *slog.Logger
	conn   *websocket.Conn
	send   chan []byte

	playerID string
	session  *tictactoe.Session
}

func newClient(logger *slog.Logger, conn *websocket.Conn) *client {
	return &client{
		logger: logger,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}
}

func (that *client) CellUpdated(index int, mark entity.Mark) {
	that.enqueue(actionCell, Payload{Cell: &index, Mark: mark})
}

func (that *client) StatusChanged(status string) {
	that.enqueue(actionStatus, Payload{Status: status})
}

func (that *client) GameEnded(result entity.Result) {
	that.enqueue(actionGameEnd, Payload{Result: result})
}

func (that *client) BoardReset() {
	that.enqueue(actionBoardReset, Payload{})
}

func (that *client) sendError(action, text string) {
	that.enqueue(actionError, Payload{Error: action + ": " + text})
}

// enqueue never blocks; a client that stops reading loses messages.
func (that *client) enqueue(action string, payload Payload) {
	message, err := encode(action, payload)
	if err != nil {
		that.logger.Error("failed to encode message", "action", action, "error", err)
		return
	}

	select {
	case that.send <- message:
	default:
		that.logger.Warn("send buffer full, message dropped", "action", action)
	}
}

// writeLoop - writes queued messages and pings idle connections until done closes.
func (that *client) writeLoop(done <-chan struct{}) error {
	ticker := time.NewTicker(idlePingPeriod)
	defer ticker.Stop()

	lastWrite := time.Now()
	for {
		select {
		case <-done:
			return nil
		case message := <-that.send:
			if err := that.write(websocket.TextMessage, message); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < idlePingPeriod {
				continue
			}
			if err := that.write(websocket.PingMessage, nil); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}

func (that *client) write(messageType int, data []byte) error {
	if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return that.conn.WriteMessage(messageType, data)
}
