package service

import (
	"context"
	"time"

	"attendance/internal/clock"
	"attendance/internal/dto"
	"attendance/internal/model"
	"attendance/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// StandardWorkday is the per-entry threshold above which hours count as overtime.
const StandardWorkday = 8 * time.Hour

// TimeReport aggregates a user's entries over a date range.
type TimeReport struct {
	User            *model.User
	From, To        time.Time
	TotalDaysWorked int
	TotalHours      time.Duration
	OvertimeHours   time.Duration
	Entries         []model.TimeEntry
}

type ClockInInput struct {
	Notes               *string
	Location            *string
	LocationCoordinates *string
	JobID               *int64
}

type TimeEntryService interface {
	ClockIn(ctx context.Context, userID uuid.UUID, in ClockInInput) (*model.TimeEntry, error)
	ClockOut(ctx context.Context, userID uuid.UUID, entryID int64, notes *string, breakTime time.Duration) (*model.TimeEntry, error)
	Active(ctx context.Context, userID uuid.UUID) (*model.TimeEntry, error)
	Entries(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]model.TimeEntry, error)
	// Report covers entries clocked in within [start, end+1 day).
	Report(ctx context.Context, userID uuid.UUID, start, end time.Time) (*TimeReport, error)
	ReportAll(ctx context.Context, start, end time.Time) ([]TimeReport, error)

	Create(ctx context.Context, req dto.ManualTimeEntryRequest) (*model.TimeEntry, error)
	Update(ctx context.Context, id int64, req dto.ManualTimeEntryRequest) (*model.TimeEntry, error)
	Cancel(ctx context.Context, id int64) error
}

type timeEntryService struct {
	repo  repository.TimeEntryRepository
	users repository.UserRepository
	jobs  repository.JobRepository
	tx    repository.TxManager
	clock clock.Clock
}

func NewTimeEntryService(
	repo repository.TimeEntryRepository,
	users repository.UserRepository,
	jobs repository.JobRepository,
	tx repository.TxManager,
	clk clock.Clock,
) TimeEntryService {
	return &timeEntryService{repo: repo, users: users, jobs: jobs, tx: tx, clock: clk}
}

// workedHours returns total and overtime for one session.
func workedHours(in, out time.Time, brk time.Duration) (total, overtime time.Duration) {
	total = out.Sub(in) - brk
	overtime = total - StandardWorkday
	if overtime < 0 {
		overtime = 0
	}
	return total, overtime
}

func appendNote(existing, more *string) *string {
	switch {
	case more == nil || *more == "":
		return existing
	case existing == nil || *existing == "":
		return more
	}
	joined := *existing + "; " + *more
	return &joined
}

func (s *timeEntryService) ClockIn(ctx context.Context, userID uuid.UUID, in ClockInInput) (*model.TimeEntry, error) {
	var entry *model.TimeEntry
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.FindActiveByUser(ctx, userID); err == nil {
			return ErrAlreadyClockedIn
		} else if !isNotFound(err) {
			return err
		}
		if in.JobID != nil {
			if _, err := s.jobs.FindByID(ctx, *in.JobID); err != nil {
				return lookup(err, "job", *in.JobID)
			}
		}
		entry = &model.TimeEntry{
			UserID:              userID,
			JobID:               in.JobID,
			ClockInTime:         s.clock.Now(),
			Status:              model.TimeEntryActive,
			Notes:               in.Notes,
			Location:            in.Location,
			LocationCoordinates: in.LocationCoordinates,
		}
		if err := s.repo.Create(ctx, entry); err != nil {
			if isDuplicate(err) {
				return ErrAlreadyClockedIn
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("user_id", userID.String()).Int64("entry_id", entry.ID).Msg("clocked in")
	return entry, nil
}

func (s *timeEntryService) ClockOut(ctx context.Context, userID uuid.UUID, entryID int64, notes *string, breakTime time.Duration) (*model.TimeEntry, error) {
	if breakTime < 0 {
		return nil, invalid("break time must not be negative")
	}
	var (
		entry *model.TimeEntry
		total time.Duration
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		e, err := s.repo.FindByID(ctx, entryID)
		if err != nil {
			if isNotFound(err) {
				return ErrNoActiveEntry
			}
			return err
		}
		if e.UserID != userID || e.Status != model.TimeEntryActive {
			return ErrNoActiveEntry
		}

		now := s.clock.Now()
		var overtime time.Duration
		total, overtime = workedHours(e.ClockInTime, now, breakTime)
		e.ClockOutTime = &now
		e.BreakTime = breakTime
		e.TotalHours = &total
		e.OvertimeHours = &overtime
		e.Status = model.TimeEntryCompleted
		e.Notes = appendNote(e.Notes, notes)
		e.UpdatedAt = now
		closed, err := s.repo.CloseActive(ctx, e)
		if err != nil {
			return err
		}
		if !closed {
			return ErrNoActiveEntry
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("user_id", userID.String()).Int64("entry_id", entry.ID).Dur("total", total).Msg("clocked out")
	return entry, nil
}

func (s *timeEntryService) Active(ctx context.Context, userID uuid.UUID) (*model.TimeEntry, error) {
	entry, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNoActiveEntry
		}
		return nil, err
	}
	return entry, nil
}

func (s *timeEntryService) Entries(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]model.TimeEntry, error) {
	from, to := reportWindow(start, end)
	return s.repo.ListByUser(ctx, userID, from, to)
}

// reportWindow turns an inclusive date range into [start, end+1 day).
func reportWindow(start, end time.Time) (time.Time, time.Time) {
	return start, end.AddDate(0, 0, 1)
}

func (s *timeEntryService) Report(ctx context.Context, userID uuid.UUID, start, end time.Time) (*TimeReport, error) {
	if end.Before(start) {
		return nil, invalid("end date must not be before start date")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, lookup(err, "user", userID)
	}
	return s.report(ctx, user, start, end)
}

func (s *timeEntryService) report(ctx context.Context, user *model.User, start, end time.Time) (*TimeReport, error) {
	from, to := reportWindow(start, end)
	entries, err := s.repo.ListByUser(ctx, user.ID, from, to)
	if err != nil {
		return nil, err
	}
	r := &TimeReport{User: user, From: start, To: end, Entries: make([]model.TimeEntry, 0, len(entries))}
	for _, e := range entries {
		if e.Status == model.TimeEntryCancelled {
			continue
		}
		r.Entries = append(r.Entries, e)
		if e.Status == model.TimeEntryCompleted {
			r.TotalDaysWorked++
		}
		if e.TotalHours != nil {
			r.TotalHours += *e.TotalHours
		}
		if e.OvertimeHours != nil {
			r.OvertimeHours += *e.OvertimeHours
		}
	}
	return r, nil
}

func (s *timeEntryService) ReportAll(ctx context.Context, start, end time.Time) ([]TimeReport, error) {
	if end.Before(start) {
		return nil, invalid("end date must not be before start date")
	}
	users, err := s.users.List(ctx, true)
	if err != nil {
		return nil, err
	}
	out := make([]TimeReport, 0, len(users))
	for i := range users {
		r, err := s.report(ctx, &users[i], start, end)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, nil
}

func (s *timeEntryService) Create(ctx context.Context, req dto.ManualTimeEntryRequest) (*model.TimeEntry, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, invalid("user_id: %v", err)
	}
	entry := &model.TimeEntry{UserID: userID}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.users.FindByID(ctx, userID); err != nil {
			return lookup(err, "user", userID)
		}
		if err := s.applyManual(ctx, entry, req); err != nil {
			return err
		}
		if entry.Status == model.TimeEntryActive {
			if _, err := s.repo.FindActiveByUser(ctx, userID); err == nil {
				return ErrAlreadyClockedIn
			} else if !isNotFound(err) {
				return err
			}
		}
		if err := s.repo.Create(ctx, entry); err != nil {
			if isDuplicate(err) {
				return ErrAlreadyClockedIn
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *timeEntryService) Update(ctx context.Context, id int64, req dto.ManualTimeEntryRequest) (*model.TimeEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "time entry", id)
	}
	if entry.Status == model.TimeEntryCancelled {
		return nil, precondition("time entry %d is cancelled", id)
	}
	if req.UserID != entry.UserID.String() {
		return nil, invalid("time entry %d belongs to another user", id)
	}
	wasActive := entry.Status == model.TimeEntryActive
	if err := s.applyManual(ctx, entry, req); err != nil {
		return nil, err
	}
	if !wasActive && entry.Status == model.TimeEntryActive {
		return nil, invalid("a completed entry cannot be reopened")
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// applyManual copies req onto entry and recomputes hours when it has a clock-out time.
func (s *timeEntryService) applyManual(ctx context.Context, entry *model.TimeEntry, req dto.ManualTimeEntryRequest) error {
	var brk time.Duration
	if req.BreakTime != nil {
		brk = req.BreakTime.Std()
	}
	if brk < 0 {
		return invalid("break time must not be negative")
	}
	if req.ClockInTime.After(s.clock.Now()) {
		return invalid("clock_in_time is in the future")
	}
	if req.JobID != nil {
		if _, err := s.jobs.FindByID(ctx, *req.JobID); err != nil {
			return lookup(err, "job", *req.JobID)
		}
	}
	entry.JobID = req.JobID
	entry.ClockInTime = req.ClockInTime.UTC()
	entry.BreakTime = brk
	entry.Notes = req.Notes
	entry.Location = req.Location
	entry.UpdatedAt = s.clock.Now()

	if req.ClockOutTime == nil {
		entry.ClockOutTime, entry.TotalHours, entry.OvertimeHours = nil, nil, nil
		entry.Status = model.TimeEntryActive
		return nil
	}
	out := req.ClockOutTime.UTC()
	if !out.After(entry.ClockInTime) {
		return invalid("clock_out_time must be after clock_in_time")
	}
	total, overtime := workedHours(entry.ClockInTime, out, brk)
	if total < 0 {
		return invalid("break time exceeds the session length")
	}
	entry.ClockOutTime = &out
	entry.TotalHours = &total
	entry.OvertimeHours = &overtime
	entry.Status = model.TimeEntryCompleted
	return nil
}

// Cancel voids the entry. Cancelled entries are left out of every report.
func (s *timeEntryService) Cancel(ctx context.Context, id int64) error {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return lookup(err, "time entry", id)
	}
	if entry.Status == model.TimeEntryCancelled {
		return nil
	}
	entry.Status = model.TimeEntryCancelled
	entry.UpdatedAt = s.clock.Now()
	return s.repo.Update(ctx, entry)
}
