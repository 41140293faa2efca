package draft

import (
	"context"
	"errors"
	"time"

	"consultation-platform/internal/audit"
	"consultation-platform/internal/reading"

	"github.com/google/uuid"
)

var (
	// ErrInsufficientReveals means the session has no revealed cards yet;
	// there is nothing a generator is allowed to see.
	ErrInsufficientReveals = errors.New("draft: no cards revealed yet")

	// ErrAccessDenied means the caller is not the session's assigned reader.
	// Drafts have exactly one audience; roles do not widen it.
	ErrAccessDenied = errors.New("draft: access denied")

	ErrNotFound = errors.New("draft: not found")
)

// Repository persists drafts. There is deliberately no update operation.
type Repository interface {
	Insert(ctx context.Context, d Draft) error
	Get(ctx context.Context, id string) (Draft, error)
	ListBySession(ctx context.Context, sessionID string) ([]Draft, error)
}

type Service struct {
	repo     Repository
	readings *reading.Service
	auditor  *audit.Service
	locker   reading.SessionLocker
	gen      Generator

	clock func() time.Time
}

func NewService(repo Repository, readings *reading.Service, auditor *audit.Service, locker reading.SessionLocker, gen Generator) *Service {
	return &Service{
		repo:     repo,
		readings: readings,
		auditor:  auditor,
		locker:   locker,
		gen:      gen,
		clock:    time.Now,
	}
}

// Generate produces a draft from the session's revealed cards.
//
// The snapshot of revealed cards is taken under the session lock, then the
// lock is released before the generator call: generation can take seconds
// and must not block reveals. After generation the session is re-read; a
// session that revealed further in the meantime is fine (the draft is simply
// a point-in-time interpretation), a session that disappeared is not.
func (s *Service) Generate(ctx context.Context, sessionID string) (Draft, error) {
	cards, spreadSize, err := s.snapshotRevealed(ctx, sessionID)
	if err != nil {
		return Draft{}, err
	}

	gen, err := s.gen.Generate(ctx, Prompt{
		SessionID:  sessionID,
		SpreadSize: spreadSize,
		Cards:      cards,
	})
	if err != nil {
		return Draft{}, err
	}

	if _, err := s.readings.Get(ctx, sessionID); err != nil {
		return Draft{}, err
	}

	d := Draft{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		Model:       gen.Model,
		Content:     gen.Content,
		GeneratedAt: s.clock().UTC(),
	}
	if err := s.repo.Insert(ctx, d); err != nil {
		return Draft{}, err
	}
	return d, nil
}

func (s *Service) snapshotRevealed(ctx context.Context, sessionID string) ([]string, int, error) {
	unlock, err := s.locker.Lock(ctx, sessionID)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = unlock(ctx) }()

	sess, revs, err := s.readings.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, 0, err
	}
	if sess.RevealCount == 0 || len(revs) == 0 {
		return nil, 0, ErrInsufficientReveals
	}

	// Only committed reveals reach the generator. The draw order beyond
	// RevealCount never leaves this package boundary.
	cards := make([]string, 0, len(revs))
	for _, rev := range revs {
		cards = append(cards, rev.CardRef)
	}
	return cards, sess.SpreadSize, nil
}

// GetForReader returns a draft's content to the session's assigned reader.
// Any other identity is refused, whatever its role; there is no admin
// bypass. Every successful access is audited before the content is handed
// back.
func (s *Service) GetForReader(ctx context.Context, draftID, readerID string) (Draft, error) {
	d, err := s.repo.Get(ctx, draftID)
	if err != nil {
		return Draft{}, err
	}

	sess, err := s.readings.Get(ctx, d.SessionID)
	if err != nil {
		return Draft{}, err
	}
	if readerID == "" || readerID != sess.ReaderID {
		return Draft{}, ErrAccessDenied
	}

	if err := s.auditor.LogDraftAccessed(ctx, d.ID, d.SessionID, readerID); err != nil {
		return Draft{}, err
	}
	return d, nil
}

// ListForReader returns a session's drafts under the same access rule as
// GetForReader, without content access audit (ids and timestamps only are
// considered metadata; handlers must use GetForReader for content).
func (s *Service) ListForReader(ctx context.Context, sessionID, readerID string) ([]Draft, error) {
	sess, err := s.readings.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if readerID == "" || readerID != sess.ReaderID {
		return nil, ErrAccessDenied
	}

	drafts, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	// Strip content; listing is not an audited content access.
	out := make([]Draft, len(drafts))
	for i, d := range drafts {
		d.Content = ""
		out[i] = d
	}
	return out, nil
}
