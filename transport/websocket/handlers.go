package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

var (
	errNotConnected = errors.New("player is not connected")
	errCellRequired = errors.New("cell is required")
)

func decodePayload(message *Message) (Payload, error) {
	var payload Payload
	if len(message.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(message.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}

func (that *Server) handleConnect(ctx context.Context, client *client, message *Message) error {
	log := that.logger.With("method", "handleConnect")

	payload, err := decodePayload(message)
	if err != nil {
		client.sendError(message.Action, "invalid payload")
		return err
	}

	if client.session != nil {
		that.gameUseCase.Disconnect(client.playerID, client.session)
		client.playerID, client.session = "", nil
	}

	player, session, err := that.gameUseCase.Connect(ctx, payload.PlayerID, client)
	if err != nil {
		client.sendError(message.Action, "failed to connect player")
		return fmt.Errorf("failed to connect player: %w", err)
	}

	client.playerID = player.ID
	client.session = session

	snapshot := session.Snapshot()
	client.enqueue(actionConnect, Payload{Player: player, Snapshot: &snapshot})

	log.Info("player connected", "playerID", player.ID)

	return nil
}

func (that *Server) handleTurn(ctx context.Context, client *client, message *Message) error {
	payload, err := that.connectedPayload(client, message)
	if err != nil {
		return err
	}

	if payload.Cell == nil {
		client.sendError(message.Action, errCellRequired.Error())
		return errCellRequired
	}

	if _, err = that.gameUseCase.MakeTurn(ctx, client.playerID, *payload.Cell); err != nil {
		that.replyError(client, message.Action, err)
		return fmt.Errorf("failed to make turn: %w", err)
	}

	return nil
}

func (that *Server) handleRestart(ctx context.Context, client *client, message *Message) error {
	if _, err := that.connectedPayload(client, message); err != nil {
		return err
	}

	if _, err := that.gameUseCase.Restart(ctx, client.playerID); err != nil {
		that.replyError(client, message.Action, err)
		return fmt.Errorf("failed to restart game: %w", err)
	}

	return nil
}

func (that *Server) handleDifficulty(ctx context.Context, client *client, message *Message) error {
	payload, err := that.connectedPayload(client, message)
	if err != nil {
		return err
	}

	if _, err = that.gameUseCase.ChangeDifficulty(ctx, client.playerID, payload.Difficulty); err != nil {
		that.replyError(client, message.Action, err)
		return fmt.Errorf("failed to change difficulty: %w", err)
	}

	return nil
}

func (that *Server) handleMark(ctx context.Context, client *client, message *Message) error {
	payload, err := that.connectedPayload(client, message)
	if err != nil {
		return err
	}

	if _, err = that.gameUseCase.ChooseMark(ctx, client.playerID, string(payload.Mark)); err != nil {
		that.replyError(client, message.Action, err)
		return fmt.Errorf("failed to choose mark: %w", err)
	}

	return nil
}

func (that *Server) connectedPayload(client *client, message *Message) (Payload, error) {
	if client.playerID == "" {
		client.sendError(message.Action, errNotConnected.Error())
		return Payload{}, errNotConnected
	}

	payload, err := decodePayload(message)
	if err != nil {
		client.sendError(message.Action, "invalid payload")
		return Payload{}, err
	}

	return payload, nil
}

// replyError - known errors are reported to the client, the rest stay in the logs.
func (that *Server) replyError(client *client, action string, err error) {
	switch {
	case errors.Is(err, apperror.ErrInvalidCell):
		client.sendError(action, apperror.ErrInvalidCell.Error())
	case errors.Is(err, entity.ErrInvalidDifficulty):
		client.sendError(action, entity.ErrInvalidDifficulty.Error())
	case errors.Is(err, entity.ErrInvalidMark):
		client.sendError(action, entity.ErrInvalidMark.Error())
	case errors.Is(err, apperror.ErrSessionNotFound):
		client.sendError(action, apperror.ErrSessionNotFound.Error())
	default:
		client.sendError(action, "internal error")
	}
}
