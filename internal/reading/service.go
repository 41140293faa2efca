package reading

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"consultation-platform/internal/audit"
	"consultation-platform/internal/booking"
	"consultation-platform/internal/deck"

	"github.com/google/uuid"
)

var (
	// ErrInvalidSequence marks any reveal attempt outside the strict order:
	// out-of-order positions, gaps, or reveals on a completed session.
	// Protocol violation by the caller; never retried silently.
	ErrInvalidSequence = errors.New("reading: invalid reveal sequence")

	ErrNotFound       = errors.New("reading: session not found")
	ErrInvalidRequest = errors.New("reading: invalid request")
)

// Repository is the persistence contract for sessions and reveals.
//
// AppendReveal is the write boundary for the ordering invariant: it must
// commit the cursor bump and the reveal row atomically, conditioned on the
// cursor still being position-1, and surface ErrInvalidSequence otherwise.
// Concurrent or retried calls can therefore never create gaps even if the
// service-level lock were bypassed.

type Repository interface {
	InsertSession(ctx context.Context, s Session) error
	GetSession(ctx context.Context, id string) (Session, error)
	AppendReveal(ctx context.Context, sessionID string, position int, cardRef string, at time.Time) (Session, Reveal, error)
	GetReveal(ctx context.Context, sessionID string, position int) (Reveal, bool, error)
	ListReveals(ctx context.Context, sessionID string) ([]Reveal, error)
}

// Service drives sessions through NotStarted -> Revealing(n) -> Complete.
type Service struct {
	repo    Repository
	decks   *deck.Registry
	billing booking.Provider
	auditor *audit.Service
	locker  SessionLocker

	maxSpreadSize int

	rng   *rand.Rand
	clock func() time.Time
}

func NewService(repo Repository, decks *deck.Registry, billing booking.Provider, auditor *audit.Service, locker SessionLocker, maxSpreadSize int, rng *rand.Rand) *Service {
	if maxSpreadSize <= 0 || maxSpreadSize > deck.FaceCardCount {
		maxSpreadSize = 12
	}
	return &Service{
		repo:          repo,
		decks:         decks,
		billing:       billing,
		auditor:       auditor,
		locker:        locker,
		maxSpreadSize: maxSpreadSize,
		rng:           rng,
		clock:         time.Now,
	}
}

type CreateSessionRequest struct {
	BookingID  string `json:"booking_id"`
	DeckID     string `json:"deck_id"`
	SpreadSize int    `json:"spread_size"`
}

// CreateSession mints a session for a confirmed booking against a published
// deck. The draw order is shuffled exactly once, here; every later reveal
// reads from it deterministically.
func (s *Service) CreateSession(ctx context.Context, req CreateSessionRequest) (Session, error) {
	if req.BookingID == "" || req.DeckID == "" {
		return Session{}, ErrInvalidRequest
	}
	if req.SpreadSize < 1 || req.SpreadSize > s.maxSpreadSize {
		return Session{}, fmt.Errorf("%w: spread_size must be 1..%d", ErrInvalidRequest, s.maxSpreadSize)
	}

	b, err := s.billing.ConfirmedBooking(ctx, req.BookingID)
	if err != nil {
		return Session{}, err
	}
	if _, err := s.decks.GetPublished(ctx, req.DeckID); err != nil {
		return Session{}, err
	}

	now := s.clock().UTC()
	sess := Session{
		ID:         uuid.NewString(),
		BookingID:  b.ID,
		DeckID:     req.DeckID,
		ReaderID:   b.ReaderID,
		ClientID:   b.ClientID,
		SpreadSize: req.SpreadSize,
		DrawOrder:  s.shuffleDraw(req.SpreadSize),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.InsertSession(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *Service) shuffleDraw(spreadSize int) []int {
	perm := make([]int, deck.FaceCardCount)
	for i := range perm {
		perm[i] = i + 1
	}
	if s.rng != nil {
		s.rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
	} else {
		rand.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
	}
	return perm[:spreadSize]
}

// RevealNext reveals the next card in sequence.
func (s *Service) RevealNext(ctx context.Context, sessionID string, actor Actor) (Reveal, error) {
	unlock, err := s.locker.Lock(ctx, sessionID)
	if err != nil {
		return Reveal{}, err
	}
	defer func() { _ = unlock(ctx) }()

	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return Reveal{}, err
	}
	return s.revealLocked(ctx, sess, sess.RevealCount+1, actor)
}

// Reveal reveals the card at position. Exactly two positions are legal:
// revealCount+1 (the next card) and revealCount (an idempotent replay of the
// most recent successful reveal). Everything else is ErrInvalidSequence.
func (s *Service) Reveal(ctx context.Context, sessionID string, position int, actor Actor) (Reveal, error) {
	unlock, err := s.locker.Lock(ctx, sessionID)
	if err != nil {
		return Reveal{}, err
	}
	defer func() { _ = unlock(ctx) }()

	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return Reveal{}, err
	}

	// Replay of the last committed step is safe and emits no new audit entry.
	if position >= 1 && position == sess.RevealCount {
		rev, ok, err := s.repo.GetReveal(ctx, sessionID, position)
		if err != nil {
			return Reveal{}, err
		}
		if !ok {
			return Reveal{}, ErrInvalidSequence
		}
		return rev, nil
	}

	return s.revealLocked(ctx, sess, position, actor)
}

func (s *Service) revealLocked(ctx context.Context, sess Session, position int, actor Actor) (Reveal, error) {
	if sess.State() == StateComplete {
		return Reveal{}, ErrInvalidSequence
	}
	if position != sess.RevealCount+1 {
		return Reveal{}, ErrInvalidSequence
	}
	if position > sess.SpreadSize || position > len(sess.DrawOrder) {
		return Reveal{}, ErrInvalidSequence
	}

	cardRef, err := s.cardRefAt(ctx, sess, position)
	if err != nil {
		return Reveal{}, err
	}

	now := s.clock().UTC()
	_, rev, err := s.repo.AppendReveal(ctx, sess.ID, position, cardRef, now)
	if err != nil {
		return Reveal{}, err
	}

	// Audit is written before the reveal is observable to the caller.
	if err := s.auditor.LogCardRevealed(ctx, sess.ID, actor.UserID, actor.Role, position, cardRef); err != nil {
		return Reveal{}, err
	}
	return rev, nil
}

func (s *Service) cardRefAt(ctx context.Context, sess Session, position int) (string, error) {
	faces, err := s.decks.FaceCards(ctx, sess.DeckID)
	if err != nil {
		return "", err
	}
	deckPos := sess.DrawOrder[position-1]
	if deckPos < 1 || deckPos > len(faces) {
		return "", fmt.Errorf("reading: draw order references missing card %d", deckPos)
	}
	return faces[deckPos-1].AssetRef, nil
}

// Get returns the session (no lock; point-in-time read).
func (s *Service) Get(ctx context.Context, sessionID string) (Session, error) {
	return s.repo.GetSession(ctx, sessionID)
}

// Snapshot returns the session with its revealed cards. Used by the draft
// layer: only cards present in this list may ever reach the AI provider.
func (s *Service) Snapshot(ctx context.Context, sessionID string) (Session, []Reveal, error) {
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return Session{}, nil, err
	}
	revs, err := s.repo.ListReveals(ctx, sessionID)
	if err != nil {
		return Session{}, nil, err
	}
	return sess, revs, nil
}
