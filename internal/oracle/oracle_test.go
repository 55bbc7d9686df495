package oracle

import (
	"errors"
	"strings"
	"testing"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/chess-live/pkg/wire"
)

func playLine(t *testing.T, e *Engine, ucis ...string) *nchess.Game {
	t.Helper()
	game := nchess.NewGame()
	for _, uci := range ucis {
		req := wire.MoveRequest{From: uci[:2], To: uci[2:4]}
		if len(uci) > 4 {
			req.Promotion = uci[4:]
		}
		v, err := e.Propose(game, req)
		if err != nil {
			t.Fatalf("move %s: %v", uci, err)
		}
		game = v.Game
	}
	return game
}

func TestProposeLegalMove(t *testing.T) {
	e := NewEngine()
	game := nchess.NewGame()
	before := game.FEN()

	v, err := e.Propose(game, wire.MoveRequest{From: "e2", To: "e4"})
	if err != nil {
		t.Fatalf("e2e4: %v", err)
	}
	if v.SAN != "e4" {
		t.Fatalf("SAN: got %q, want e4", v.SAN)
	}
	if v.Turn != wire.Black {
		t.Fatalf("turn after white move: got %s", v.Turn)
	}
	if !strings.Contains(v.FEN, " b ") {
		t.Fatalf("fen does not show black to move: %s", v.FEN)
	}
	if game.FEN() != before {
		t.Fatalf("original game mutated: %s", game.FEN())
	}
}

func TestProposeIllegalMove(t *testing.T) {
	e := NewEngine()
	game := nchess.NewGame()

	for _, uci := range []string{"e2e5", "e7e5", "a1a3"} {
		_, err := e.Propose(game, wire.MoveRequest{From: uci[:2], To: uci[2:4]})
		if !errors.Is(err, ErrIllegalMove) {
			t.Fatalf("%s: got %v, want ErrIllegalMove", uci, err)
		}
	}
}

func TestProposeUndecodableMove(t *testing.T) {
	e := NewEngine()
	_, err := e.Propose(nchess.NewGame(), wire.MoveRequest{From: "zz", To: "e4"})
	if !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("got %v, want ErrIllegalMove", err)
	}
}

func TestProposeCheck(t *testing.T) {
	e := NewEngine()
	game := playLine(t, e, "e2e4", "f7f5")

	v, err := e.Propose(game, wire.MoveRequest{From: "d1", To: "h5"})
	if err != nil {
		t.Fatalf("d1h5: %v", err)
	}
	if !v.Check {
		t.Fatalf("Qh5+ not flagged as check")
	}
	if v.Checkmate {
		t.Fatalf("Qh5+ flagged as checkmate")
	}
}

func TestProposeCheckmate(t *testing.T) {
	e := NewEngine()
	game := playLine(t, e, "f2f3", "e7e5", "g2g4")

	v, err := e.Propose(game, wire.MoveRequest{From: "d8", To: "h4"})
	if err != nil {
		t.Fatalf("d8h4: %v", err)
	}
	if !v.Checkmate {
		t.Fatalf("fool's mate not flagged as checkmate")
	}
	if v.Turn != wire.White {
		t.Fatalf("mated side: got %s, want w", v.Turn)
	}
}

func TestProposeCapture(t *testing.T) {
	e := NewEngine()
	game := playLine(t, e, "e2e4", "d7d5")

	v, err := e.Propose(game, wire.MoveRequest{From: "e4", To: "d5"})
	if err != nil {
		t.Fatalf("e4d5: %v", err)
	}
	if !v.Capture {
		t.Fatalf("exd5 not flagged as capture")
	}
}

func TestProposePromotion(t *testing.T) {
	e := NewEngine()
	game := playLine(t, e, "a2a4", "b7b5", "a4b5", "a7a6", "b5a6", "c8b7", "a6b7", "b8c6")

	v, err := e.Propose(game, wire.MoveRequest{From: "b7", To: "a8", Promotion: "q"})
	if err != nil {
		t.Fatalf("b7a8q: %v", err)
	}
	if !strings.Contains(v.SAN, "=Q") {
		t.Fatalf("promotion SAN: got %q", v.SAN)
	}
	if !v.Capture {
		t.Fatalf("bxa8=Q not flagged as capture")
	}
}
