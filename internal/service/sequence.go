package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"attendance/internal/clock"
	"attendance/internal/repository"

	"github.com/rs/zerolog/log"
)

// DocumentKind identifies a numbered document family.
type DocumentKind struct {
	Prefix string
	// Dashed selects {PREFIX}{YEAR}-{NNNN}; otherwise {PREFIX}{YEAR}{NNNN}.
	Dashed bool
}

var (
	KindJobOrder = DocumentKind{Prefix: "JO", Dashed: true}
	KindQuote    = DocumentKind{Prefix: "Q", Dashed: true}
	KindJob      = DocumentKind{Prefix: "JOB", Dashed: true}
	KindInvoice  = DocumentKind{Prefix: "INV", Dashed: true}
	KindEmployee = DocumentKind{Prefix: "EMP", Dashed: false}
)

const maxNumberAttempts = 3

// Stem is the part of the identifier shared by every number of the year.
func (k DocumentKind) Stem(year int) string {
	if k.Dashed {
		return fmt.Sprintf("%s%d-", k.Prefix, year)
	}
	return fmt.Sprintf("%s%d", k.Prefix, year)
}

// Format renders n zero-padded to four digits. Larger values keep all their digits.
func (k DocumentKind) Format(year, n int) string {
	return fmt.Sprintf("%s%04d", k.Stem(year), n)
}

// ParseSequence extracts the numeric suffix of id: the part after the last '-'
// for dashed kinds, after the stem otherwise. It returns 0 when id does not parse.
func (k DocumentKind) ParseSequence(year int, id string) int {
	var suffix string
	if k.Dashed {
		i := strings.LastIndex(id, "-")
		if i < 0 {
			return 0
		}
		suffix = id[i+1:]
	} else {
		stem := k.Stem(year)
		if !strings.HasPrefix(id, stem) {
			return 0
		}
		suffix = id[len(stem):]
	}
	n, err := strconv.Atoi(suffix)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// SequenceService issues human readable document numbers.
type SequenceService interface {
	Next(ctx context.Context, kind DocumentKind) (string, error)
	// Issue reserves a number and runs save with it inside a nested transaction.
	// A unique violation from save is treated as a collision: the counter is
	// resynchronised with the stored documents and save runs again with a fresh number.
	Issue(ctx context.Context, kind DocumentKind, save func(ctx context.Context, number string) error) error
}

type sequenceService struct {
	repo  repository.SequenceRepository
	tx    repository.TxManager
	clock clock.Clock
}

func NewSequenceService(repo repository.SequenceRepository, tx repository.TxManager, clk clock.Clock) SequenceService {
	return &sequenceService{repo: repo, tx: tx, clock: clk}
}

func (s *sequenceService) Next(ctx context.Context, kind DocumentKind) (string, error) {
	year := s.clock.Now().Year()
	n, err := s.repo.Increment(ctx, kind.Prefix, year)
	if err != nil {
		return "", fmt.Errorf("sequence %s: %w", kind.Prefix, err)
	}
	return kind.Format(year, n), nil
}

func (s *sequenceService) Issue(ctx context.Context, kind DocumentKind, save func(ctx context.Context, number string) error) error {
	for attempt := 1; ; attempt++ {
		number, err := s.Next(ctx, kind)
		if err != nil {
			return err
		}
		err = s.tx.WithinTx(ctx, func(ctx context.Context) error { return save(ctx, number) })
		if err == nil || !isDuplicate(err) {
			return err
		}
		if attempt == maxNumberAttempts {
			return conflict("could not allocate a unique %s number after %d attempts", kind.Prefix, attempt)
		}
		log.Warn().Str("number", number).Int("attempt", attempt).Msg("document number collision, resyncing counter")
		if err := s.resync(ctx, kind); err != nil {
			return errors.Join(ErrConflict, err)
		}
	}
}

// resync raises the counter to the highest number already stored for this year.
func (s *sequenceService) resync(ctx context.Context, kind DocumentKind) error {
	year := s.clock.Now().Year()
	latest, err := s.repo.LatestNumber(ctx, kind.Prefix, kind.Stem(year))
	if err != nil {
		return err
	}
	return s.repo.Raise(ctx, kind.Prefix, year, kind.ParseSequence(year, latest))
}
