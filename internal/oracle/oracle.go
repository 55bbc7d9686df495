// Package oracle wraps the chess rules engine behind a narrow judgment
// interface. The session core treats it as opaque: propose a move against a
// position, get back either a verdict or a rejection.
package oracle

import (
	"errors"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/chess-live/pkg/wire"
)

// ErrIllegalMove covers every oracle rejection, including moves that are
// syntactically well formed but unplayable in the current position.
var ErrIllegalMove = errors.New("illegal move")

// Verdict is the oracle's report for an accepted move. Game is a new value;
// the game the move was proposed against is never mutated.
type Verdict struct {
	Game *nchess.Game
	SAN  string
	FEN  string
	Turn wire.Color

	Check                bool
	Checkmate            bool
	Stalemate            bool
	Threefold            bool
	InsufficientMaterial bool
	Capture              bool
}

// Oracle judges proposed moves against a position.
type Oracle interface {
	Propose(game *nchess.Game, req wire.MoveRequest) (*Verdict, error)
}

// Engine is the production oracle backed by corentings/chess.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Propose applies the request to a clone of game. On any decode or rules
// failure it returns ErrIllegalMove and leaves the original game untouched.
func (e *Engine) Propose(game *nchess.Game, req wire.MoveRequest) (*Verdict, error) {
	if game == nil {
		return nil, errors.New("oracle: nil game")
	}

	clone := game.Clone()
	pos := clone.Position()

	mv, err := nchess.UCINotation{}.Decode(pos, req.UCI())
	if err != nil {
		return nil, ErrIllegalMove
	}
	san := nchess.AlgebraicNotation{}.Encode(pos, mv)
	if err := clone.Move(mv, nil); err != nil {
		return nil, ErrIllegalMove
	}

	v := &Verdict{
		Game:    clone,
		SAN:     san,
		FEN:     clone.FEN(),
		Turn:    colorToWire(clone.Position().Turn()),
		Check:   mv.HasTag(nchess.Check),
		Capture: mv.HasTag(nchess.Capture) || mv.HasTag(nchess.EnPassant),
	}

	if clone.Outcome() != nchess.NoOutcome {
		switch clone.Method() {
		case nchess.Checkmate:
			v.Checkmate = true
		case nchess.Stalemate:
			v.Stalemate = true
		case nchess.InsufficientMaterial:
			v.InsufficientMaterial = true
		case nchess.FivefoldRepetition:
			v.Threefold = true
		}
	} else {
		for _, m := range clone.EligibleDraws() {
			if m == nchess.ThreefoldRepetition {
				v.Threefold = true
			}
		}
	}

	return v, nil
}

func colorToWire(c nchess.Color) wire.Color {
	if c == nchess.White {
		return wire.White
	}
	return wire.Black
}
