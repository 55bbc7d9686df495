// Package session holds the single authoritative game session: seat
// occupancy, the current position, and the move pipeline that gates and
// commits proposed moves. One registry exists per process.
package session

import (
	"sync"

	nchess "github.com/corentings/chess/v2"
	"go.uber.org/zap"

	"github.com/park285/chess-live/pkg/wire"
)

// Role is what a connection is assigned at connect time. It never changes
// for the lifetime of that connection.
type Role string

const (
	RoleWhite     Role = "white"
	RoleBlack     Role = "black"
	RoleSpectator Role = "spectator"
)

// Side returns the wire color for seat roles; ok is false for spectators.
func (r Role) Side() (wire.Color, bool) {
	switch r {
	case RoleWhite:
		return wire.White, true
	case RoleBlack:
		return wire.Black, true
	default:
		return "", false
	}
}

// Registry owns the two seats and the authoritative position. All mutation
// goes through its methods; the pipeline shares its mutex so that the
// authorize→commit sequence is atomic against connect/disconnect.
type Registry struct {
	mu     sync.Mutex
	game   *nchess.Game
	seats  map[wire.Color]string // seat -> connection id, "" when vacant
	logger *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		game:   nchess.NewGame(),
		seats:  map[wire.Color]string{wire.White: "", wire.Black: ""},
		logger: logger,
	}
}

// AssignRole binds connID to the first free seat, white before black, and
// returns the assigned role. When both seats are taken the connection is a
// spectator and no state changes. Strict first-come-first-served: a seat
// vacated by a disconnect is only claimed by the next new connection.
func (r *Registry) AssignRole(connID string) Role {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.seats[wire.White] == "":
		r.seats[wire.White] = connID
		r.logger.Info("seat_assign", zap.String("conn_id", connID), zap.String("seat", "white"))
		return RoleWhite
	case r.seats[wire.Black] == "":
		r.seats[wire.Black] = connID
		r.logger.Info("seat_assign", zap.String("conn_id", connID), zap.String("seat", "black"))
		return RoleBlack
	default:
		return RoleSpectator
	}
}

// Release frees the seat held by connID, if any. Idempotent; a no-op for
// spectators. Position and side-to-move are untouched.
func (r *Registry) Release(connID string) {
	if connID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for seat, id := range r.seats {
		if id == connID {
			r.seats[seat] = ""
			r.logger.Info("seat_release", zap.String("conn_id", connID), zap.String("seat", string(seatRole(seat))))
		}
	}
}

// FEN returns the current position encoding.
func (r *Registry) FEN() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.FEN()
}

// SideToMove returns the side whose turn it is.
func (r *Registry) SideToMove() wire.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sideToMoveLocked()
}

// Snapshot is a read-only view for the ops surface.
type Snapshot struct {
	WhiteSeated bool       `json:"white_seated"`
	BlackSeated bool       `json:"black_seated"`
	FEN         string     `json:"fen"`
	Turn        wire.Color `json:"turn"`
	MoveCount   int        `json:"move_count"`
}

func (r *Registry) SnapshotState() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		WhiteSeated: r.seats[wire.White] != "",
		BlackSeated: r.seats[wire.Black] != "",
		FEN:         r.game.FEN(),
		Turn:        r.sideToMoveLocked(),
		MoveCount:   len(r.game.Moves()),
	}
}

// recordAcceptedLocked replaces the position with the oracle's result.
// Caller must hold r.mu.
func (r *Registry) recordAcceptedLocked(g *nchess.Game) {
	r.game = g
}

// seatForLocked reports which seat connID holds. Caller must hold r.mu.
func (r *Registry) seatForLocked(connID string) (wire.Color, bool) {
	if connID == "" {
		return "", false
	}
	for seat, id := range r.seats {
		if id == connID {
			return seat, true
		}
	}
	return "", false
}

// bothSeatedLocked reports whether a game can proceed. Caller must hold r.mu.
func (r *Registry) bothSeatedLocked() bool {
	return r.seats[wire.White] != "" && r.seats[wire.Black] != ""
}

func (r *Registry) sideToMoveLocked() wire.Color {
	if r.game.Position().Turn() == nchess.White {
		return wire.White
	}
	return wire.Black
}

func seatRole(c wire.Color) Role {
	if c == wire.White {
		return RoleWhite
	}
	return RoleBlack
}
