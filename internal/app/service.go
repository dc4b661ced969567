package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/domain"
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/opponent"
)

// Errors exposed by the service layer.
var (
	ErrNotFound    = errors.New("game not found")
	ErrNotOwner    = errors.New("not your game")
	ErrAborted     = errors.New("game aborted")
	ErrBadSettings = errors.New("invalid game settings")
)

// Settings select the automated opponent and the side the owner plays.
// With opponent.KindNone the owner plays both sides.
type Settings struct {
	Opponent  opponent.Kind
	HumanSide domain.Player
}

func (s Settings) validate() error {
	if _, err := opponent.ParseKind(string(s.Opponent)); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSettings, err)
	}
	if s.HumanSide != domain.First && s.HumanSide != domain.Second {
		return fmt.Errorf("%w: human side must be X or O", ErrBadSettings)
	}
	return nil
}

// GameState is the in-memory state tracked per game.
type GameState struct {
	ID       string
	Owner    string
	Settings Settings
	Board    *domain.Board
	// LastRule is the rule behind the opponent's latest move, if known.
	LastRule string
	Aborted  bool
	Created  time.Time
	Updated  time.Time

	opp opponent.Opponent
}

// HumanToMove reports whether the owner may play now.
func (gs GameState) HumanToMove() bool {
	if gs.Aborted || gs.Board.IsOver() {
		return false
	}
	return gs.Settings.Opponent == opponent.KindNone || gs.Board.CurrentTurn() == gs.Settings.HumanSide
}

func (gs *GameState) snapshot() *GameState {
	cp := *gs
	cp.Board = gs.Board.Clone()
	cp.opp = nil
	return &cp
}

type subscriber struct {
	ch        chan []byte
	closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Service manages games and subscribers. Each Board belongs to exactly one
// session and is only touched under mu.
type Service struct {
	mu     sync.Mutex
	games  map[string]*GameState
	subs   map[string]map[*subscriber]struct{}
	render func(GameState) []byte
	log    *zap.Logger
	seed   func() int64
	now    func() time.Time
	newOpp func(opponent.Kind, domain.Player, int64) (opponent.Opponent, error)
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRenderer sets the broadcast renderer.
func WithRenderer(r func(GameState) []byte) Option {
	return func(s *Service) {
		if r != nil {
			s.render = r
		}
	}
}

// WithSeed sets the seed source for random opponents.
func WithSeed(f func() int64) Option {
	return func(s *Service) {
		if f != nil {
			s.seed = f
		}
	}
}

// WithOpponents replaces opponent.New as the opponent constructor.
func WithOpponents(f func(opponent.Kind, domain.Player, int64) (opponent.Opponent, error)) Option {
	return func(s *Service) {
		if f != nil {
			s.newOpp = f
		}
	}
}

// WithClock replaces time.Now.
func WithClock(f func() time.Time) Option {
	return func(s *Service) {
		if f != nil {
			s.now = f
		}
	}
}

// NewService creates a service with a default renderer (encodes nothing useful).
func NewService(opts ...Option) *Service {
	s := &Service{
		games:  make(map[string]*GameState),
		subs:   make(map[string]map[*subscriber]struct{}),
		render: func(GameState) []byte { return nil },
		log:    zap.NewNop(),
		seed:   func() int64 { return time.Now().UnixNano() },
		now:    time.Now,
		newOpp: opponent.New,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if renderer == nil {
		s.render = func(GameState) []byte { return nil }
		return
	}
	s.render = renderer
}

// CreateGame registers a new game for owner. If the automated opponent
// moves first, its move is already on the returned board.
func (s *Service) CreateGame(owner string, settings Settings) (*GameState, error) {
	if err := settings.validate(); err != nil {
		return nil, err
	}
	if settings.Opponent == "" {
		settings.Opponent = opponent.KindRules
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	gs := &GameState{
		ID:       uuid.NewString(),
		Owner:    owner,
		Settings: settings,
		Created:  now,
		Updated:  now,
	}
	if err := s.resetLocked(gs); err != nil {
		return nil, err
	}
	s.games[gs.ID] = gs
	s.log.Info("game created",
		zap.String("game", gs.ID),
		zap.String("opponent", string(settings.Opponent)),
		zap.Stringer("human", settings.HumanSide))
	return gs.snapshot(), nil
}

// resetLocked installs a fresh board and lets the opponent open if it is
// First.
func (s *Service) resetLocked(gs *GameState) error {
	opp, err := s.newOpp(gs.Settings.Opponent, gs.Settings.HumanSide.Other(), s.seed())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSettings, err)
	}
	gs.opp = opp
	gs.Board = domain.NewBoard()
	gs.Aborted = false
	gs.LastRule = ""
	s.replyLocked(gs)
	return nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, false
	}
	return gs.snapshot(), true
}

// Play applies the owner's move at sq and, unless the game ended, the
// opponent's reply. Board errors are returned unchanged.
func (s *Service) Play(id, owner string, sq domain.Square) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if gs.Owner != owner {
		s.mu.Unlock()
		return nil, ErrNotOwner
	}
	if gs.Aborted {
		s.mu.Unlock()
		return nil, ErrAborted
	}
	side := gs.Settings.HumanSide
	if gs.opp == nil {
		side = gs.Board.CurrentTurn()
	}
	if err := gs.Board.ApplyMove(sq, side); err != nil {
		s.mu.Unlock()
		s.log.Debug("move rejected", zap.String("game", id), zap.Int("square", int(sq)), zap.Error(err))
		return nil, err
	}
	s.log.Debug("move", zap.String("game", id), zap.Stringer("player", side), zap.Int("square", int(sq)))
	s.replyLocked(gs)
	return s.commitLocked(gs), nil
}

// Restart replaces the board of a game, keeping its settings.
func (s *Service) Restart(id, owner string) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if gs.Owner != owner {
		s.mu.Unlock()
		return nil, ErrNotOwner
	}
	if err := s.resetLocked(gs); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.log.Info("game restarted", zap.String("game", id))
	return s.commitLocked(gs), nil
}

// replyLocked lets the automated opponent move if it is its turn. An
// invariant violation aborts this game only.
func (s *Service) replyLocked(gs *GameState) {
	if gs.opp == nil || gs.Board.IsOver() || gs.Board.CurrentTurn() != gs.opp.Self() {
		return
	}
	var (
		sq   domain.Square
		rule string
		err  error
	)
	if r, ok := gs.opp.(opponent.Explainer); ok {
		var d opponent.Decision
		d, err = r.Decide(gs.Board)
		sq, rule = d.Square, d.Rule.String()
	} else {
		sq, err = gs.opp.ChooseMove(gs.Board)
	}
	if err == nil {
		err = gs.Board.ApplyMove(sq, gs.opp.Self())
	}
	if err != nil {
		gs.Aborted = true
		s.log.Error("opponent failed, aborting game", zap.String("game", gs.ID), zap.Error(err))
		return
	}
	gs.LastRule = rule
	s.log.Debug("opponent move",
		zap.String("game", gs.ID),
		zap.Int("square", int(sq)),
		zap.String("rule", rule))
	if gs.Board.IsOver() {
		s.log.Info("game over",
			zap.String("game", gs.ID),
			zap.Stringer("status", gs.Board.Status()),
			zap.Stringer("winner", gs.Board.Winner()))
	}
}

// commitLocked stamps gs, unlocks, and fans the new state out to
// subscribers. Must be called with mu held.
func (s *Service) commitLocked(gs *GameState) *GameState {
	var toDrop []*subscriber
	gs.Updated = s.now()
	cp := gs.snapshot()
	subs := s.copySubsLocked(gs.ID)
	payload := s.render(*cp)
	id := gs.ID
	s.mu.Unlock()

	// Fan-out; drop slow subscribers by closing and marking for deletion
	for sub := range subs {
		select {
		case sub.ch <- payload:
		default:
			sub.close()
			toDrop = append(toDrop, sub)
		}
	}
	if len(toDrop) > 0 {
		s.mu.Lock()
		for _, sub := range toDrop {
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
		}
		s.mu.Unlock()
	}
	return cp
}

// Subscribe registers a subscriber for a game. Returns a channel and an
// unsubscribe func. The channel is closed at once for unknown games.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := &subscriber{ch: make(chan []byte, 1)}
	if _, ok := s.games[id]; !ok {
		sub.close()
		return sub.ch, func() {}
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
			s.mu.Unlock()
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub
}

// Prune drops games idle for longer than ttl and closes their subscribers.
// It returns the number of games removed.
func (s *Service) Prune(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-ttl)
	n := 0
	for id, gs := range s.games {
		if gs.Updated.After(cutoff) {
			continue
		}
		for sub := range s.subs[id] {
			sub.close()
		}
		delete(s.subs, id)
		delete(s.games, id)
		n++
	}
	if n > 0 {
		s.log.Info("pruned idle games", zap.Int("count", n))
	}
	return n
}

// Len returns the number of live games.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}

func (s *Service) copySubsLocked(id string) map[*subscriber]struct{} {
	out := make(map[*subscriber]struct{})
	if set, ok := s.subs[id]; ok {
		for k := range set {
			out[k] = struct{}{}
		}
	}
	return out
}
