// Package wire defines the JSON message protocol spoken between the server
// and board clients. Every frame is a tagged envelope {t, d}; payload shapes
// are fixed per event type and validated before they reach game logic.
package wire

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Color identifies a playing side on the wire.
type Color string

const (
	White Color = "w"
	Black Color = "b"
)

// Other returns the opposing side.
func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

// DrawKind is the subtype carried by a draw event.
type DrawKind string

const (
	DrawStalemate            DrawKind = "stalemate"
	DrawThreefold            DrawKind = "threefold"
	DrawInsufficientMaterial DrawKind = "insufficientMaterial"
)

// Event type tags.
const (
	EventPlayerRole    = "playerRole"
	EventSpectatorRole = "spectatorRole"
	EventMove          = "move"
	EventBoardState    = "boardState"
	EventInvalidMove   = "invalidMove"
	EventInCheck       = "inCheck"
	EventGameOver      = "gameOver"
	EventDraw          = "draw"
	EventCapture       = "capture"
)

// Envelope is the frame format for both directions.
type Envelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// Encode renders the envelope as a JSON frame.
func (e Envelope) Encode() []byte {
	b, _ := json.Marshal(e)
	return b
}

// SquareInfo is the optional pre-move occupant of the destination square,
// supplied by the client for capture enrichment only.
type SquareInfo struct {
	Type  string `json:"type"`
	Color Color  `json:"color"`
}

// MoveRequest is a proposed move as submitted by a seat-holder.
type MoveRequest struct {
	From      string      `json:"from"`
	To        string      `json:"to"`
	Promotion string      `json:"promotion,omitempty"`
	Square    *SquareInfo `json:"square,omitempty"`
}

// UCI returns the request in coordinate notation (e.g. "e2e4", "e7e8q").
func (r MoveRequest) UCI() string {
	return strings.ToLower(r.From + r.To + r.Promotion)
}

// Validate checks shape only; legality is the oracle's concern.
func (r MoveRequest) Validate() error {
	if !validSquare(r.From) {
		return fmt.Errorf("invalid source square %q", r.From)
	}
	if !validSquare(r.To) {
		return fmt.Errorf("invalid destination square %q", r.To)
	}
	switch strings.ToLower(r.Promotion) {
	case "", "q", "r", "b", "n":
	default:
		return fmt.Errorf("invalid promotion piece %q", r.Promotion)
	}
	return nil
}

func validSquare(s string) bool {
	if len(s) != 2 {
		return false
	}
	return s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}

// DecodeMoveRequest parses and validates a client move payload.
func DecodeMoveRequest(d json.RawMessage) (MoveRequest, error) {
	var req MoveRequest
	if err := json.Unmarshal(d, &req); err != nil {
		return req, fmt.Errorf("decode move request: %w", err)
	}
	req.From = strings.ToLower(strings.TrimSpace(req.From))
	req.To = strings.ToLower(strings.TrimSpace(req.To))
	req.Promotion = strings.ToLower(strings.TrimSpace(req.Promotion))
	if err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}

// InvalidMovePayload echoes the rejected request so the client can revert
// its optimistic UI, plus the rejection reason.
type InvalidMovePayload struct {
	Move   MoveRequest `json:"move"`
	Reason string      `json:"reason"`
}

// CapturePayload is the best-effort capture enrichment broadcast.
type CapturePayload struct {
	Move      MoveRequest `json:"move"`
	MovedSide Color       `json:"movedSide"`
	Turn      Color       `json:"turn"`
}

func newEnvelope(t string, v any) Envelope {
	if v == nil {
		return Envelope{T: t}
	}
	d, _ := json.Marshal(v)
	return Envelope{T: t, D: d}
}

// PlayerRole is sent once, only to a newly assigned seat-holder.
func PlayerRole(side Color) Envelope { return newEnvelope(EventPlayerRole, side) }

// SpectatorRole is sent once, only to a newly connected spectator.
func SpectatorRole() Envelope { return newEnvelope(EventSpectatorRole, nil) }

// Move echoes an accepted move to every connection.
func Move(req MoveRequest) Envelope { return newEnvelope(EventMove, req) }

// BoardState carries the full authoritative position as FEN.
func BoardState(fen string) Envelope { return newEnvelope(EventBoardState, fen) }

// InvalidMove is sent only to the submitter of a rejected move.
func InvalidMove(req MoveRequest, reason string) Envelope {
	return newEnvelope(EventInvalidMove, InvalidMovePayload{Move: req, Reason: reason})
}

// InCheck names the side now in check.
func InCheck(side Color) Envelope { return newEnvelope(EventInCheck, side) }

// GameOver names the losing (checkmated) side.
func GameOver(loser Color) Envelope { return newEnvelope(EventGameOver, loser) }

// Draw carries the specific draw subtype.
func Draw(kind DrawKind) Envelope { return newEnvelope(EventDraw, kind) }

// Capture is the optional capture enrichment broadcast.
func Capture(req MoveRequest, moved, turn Color) Envelope {
	return newEnvelope(EventCapture, CapturePayload{Move: req, MovedSide: moved, Turn: turn})
}
