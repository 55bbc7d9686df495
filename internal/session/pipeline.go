package session

import (
	"errors"

	"go.uber.org/zap"

	"github.com/park285/chess-live/internal/oracle"
	"github.com/park285/chess-live/pkg/wire"
)

// RejectReason classifies why a move did not commit. Every reason maps to an
// invalidMove acknowledgment to the submitter; unauthorized submissions are
// acknowledged too, deliberately, so clients can always revert optimistic UI.
type RejectReason string

const (
	RejectNotSeated    RejectReason = "not_seated"
	RejectSeatsNotFull RejectReason = "seats_not_full"
	RejectNotYourTurn  RejectReason = "not_your_turn"
	RejectIllegalMove  RejectReason = "illegal_move"
	RejectMalformed    RejectReason = "malformed_request"
)

// Outcome is the explicit result of a move submission. Rejections carry a
// reason; accepted moves carry the authoritative resulting state and the
// condition flags the oracle reported.
type Outcome struct {
	Accepted bool
	Reason   RejectReason

	Move      wire.MoveRequest
	SAN       string
	FEN       string
	MovedSide wire.Color
	Turn      wire.Color

	Check                bool
	Checkmate            bool
	Stalemate            bool
	Threefold            bool
	InsufficientMaterial bool
}

// Broadcaster fans an event out to every connected party. Delivery must be
// fire-and-forget: a slow receiver may be skipped but must never block.
type Broadcaster interface {
	Broadcast(ev wire.Envelope)
}

// Pipeline authorizes, commits, and publishes moves against the registry.
// Submit runs as a single critical section on the registry mutex: no second
// move can be authorized while a prior accept is committing.
type Pipeline struct {
	reg    *Registry
	oracle oracle.Oracle
	bus    Broadcaster
	logger *zap.Logger
}

func NewPipeline(reg *Registry, orc oracle.Oracle, bus Broadcaster, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{reg: reg, oracle: orc, bus: bus, logger: logger}
}

// Submit runs the move through the gate sequence: seat check, full-table
// check, turn check, then the oracle. Accepted moves are committed and
// broadcast before Submit returns; rejected moves change nothing and produce
// no broadcast. A panic while interpreting the request is converted to a
// malformed-request rejection; the session always survives.
func (p *Pipeline) Submit(connID string, req wire.MoveRequest) (out Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error("move_submit_panic", zap.String("conn_id", connID), zap.Any("panic", rec))
			out = rejected(req, RejectMalformed)
		}
	}()

	p.reg.mu.Lock()
	defer p.reg.mu.Unlock()

	seat, seated := p.reg.seatForLocked(connID)
	if !seated {
		return p.reject(connID, req, RejectNotSeated)
	}
	if !p.reg.bothSeatedLocked() {
		return p.reject(connID, req, RejectSeatsNotFull)
	}
	if seat != p.reg.sideToMoveLocked() {
		return p.reject(connID, req, RejectNotYourTurn)
	}
	if err := req.Validate(); err != nil {
		return p.reject(connID, req, RejectMalformed)
	}

	verdict, err := p.oracle.Propose(p.reg.game, req)
	if err != nil {
		if !errors.Is(err, oracle.ErrIllegalMove) {
			p.logger.Error("oracle_error", zap.String("conn_id", connID), zap.Error(err))
		}
		return p.reject(connID, req, RejectIllegalMove)
	}

	p.reg.recordAcceptedLocked(verdict.Game)

	out = Outcome{
		Accepted:             true,
		Move:                 req,
		SAN:                  verdict.SAN,
		FEN:                  verdict.FEN,
		MovedSide:            seat,
		Turn:                 verdict.Turn,
		Check:                verdict.Check,
		Checkmate:            verdict.Checkmate,
		Stalemate:            verdict.Stalemate,
		Threefold:            verdict.Threefold,
		InsufficientMaterial: verdict.InsufficientMaterial,
	}
	p.logger.Info("move_accept",
		zap.String("conn_id", connID),
		zap.String("side", string(seat)),
		zap.String("san", verdict.SAN),
		zap.String("fen", verdict.FEN),
		zap.Bool("check", verdict.Check),
		zap.Bool("checkmate", verdict.Checkmate),
	)
	p.publish(out)
	return out
}

// publish fans out the accepted move and its condition events in fixed
// order: move, boardState, check, checkmate, then the draw subtypes, then
// the best-effort capture signal.
func (p *Pipeline) publish(out Outcome) {
	if p.bus == nil {
		return
	}
	p.bus.Broadcast(wire.Move(out.Move))
	p.bus.Broadcast(wire.BoardState(out.FEN))

	if out.Check {
		p.bus.Broadcast(wire.InCheck(out.Turn))
	}
	if out.Checkmate {
		p.bus.Broadcast(wire.GameOver(out.Turn))
	}
	if out.Stalemate {
		p.bus.Broadcast(wire.Draw(wire.DrawStalemate))
	}
	if out.Threefold {
		p.bus.Broadcast(wire.Draw(wire.DrawThreefold))
	}
	if out.InsufficientMaterial {
		p.bus.Broadcast(wire.Draw(wire.DrawInsufficientMaterial))
	}

	// Capture enrichment rides on the client-supplied pre-move occupant of
	// the destination square; without it the signal is skipped.
	if sq := out.Move.Square; sq != nil && sq.Color != out.MovedSide {
		p.bus.Broadcast(wire.Capture(out.Move, out.MovedSide, out.Turn))
	}
}

func (p *Pipeline) reject(connID string, req wire.MoveRequest, reason RejectReason) Outcome {
	p.logger.Debug("move_reject",
		zap.String("conn_id", connID),
		zap.String("reason", string(reason)),
		zap.String("from", req.From),
		zap.String("to", req.To),
	)
	return rejected(req, reason)
}

func rejected(req wire.MoveRequest, reason RejectReason) Outcome {
	return Outcome{Accepted: false, Reason: reason, Move: req}
}
