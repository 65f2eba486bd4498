package service

import (
	"time"

	"github.com/campuslink/campuslink-backend/internal/domain"
	"github.com/campuslink/campuslink-backend/internal/repository"
	"github.com/campuslink/campuslink-backend/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sweepDispatchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sweep_dispatched_messages_total",
		Help: "Scheduled messages materialized by the dispatch sweep",
	})

	sweepDispatchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sweep_dispatch_failures_total",
		Help: "Scheduled rows that failed to dispatch",
	})

	sweepPurgedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sweep_purged_messages_total",
		Help: "Messages hard-deleted by the retention sweep",
	})
)

// SweepService runs the two time-triggered jobs: dispatching due
// scheduled messages and purging expired ones. Both process rows
// independently; one bad row never aborts a run.
type SweepService interface {
	DispatchDue(now time.Time) (int, error)
	SweepExpired(now time.Time) (map[uint64]int64, error)
}

type sweepService struct {
	scheduledRepo repository.ScheduledMessageRepository
	messageRepo   repository.MessageRepository
	channelRepo   repository.ChannelRepository
	settingsRepo  repository.ChannelSettingsRepository
}

// NewSweepService creates a new SweepService
func NewSweepService(
	scheduledRepo repository.ScheduledMessageRepository,
	messageRepo repository.MessageRepository,
	channelRepo repository.ChannelRepository,
	settingsRepo repository.ChannelSettingsRepository,
) SweepService {
	return &sweepService{
		scheduledRepo: scheduledRepo,
		messageRepo:   messageRepo,
		channelRepo:   channelRepo,
		settingsRepo:  settingsRepo,
	}
}

// DispatchDue materializes every due scheduled message. Each row is
// claimed (pending→sent) before its message is inserted, so overlapping
// sweep runs cannot double-dispatch. Returns the number of rows
// materialized in this run.
func (s *sweepService) DispatchDue(now time.Time) (int, error) {
	due, err := s.scheduledRepo.FindDue(now)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, row := range due {
		claimed, err := s.scheduledRepo.Claim(row.ID, now)
		if err != nil {
			sweepDispatchFailures.Inc()
			logger.GetLogger().Error().Err(err).
				Uint64("scheduled_id", row.ID).
				Msg("scheduled message claim failed")
			continue
		}
		if !claimed {
			// Another sweep got here first
			continue
		}

		msg := &domain.Message{
			ChannelID:       row.ChannelID,
			SenderKind:      row.SenderKind,
			SenderStudentID: row.SenderStudentID,
			SenderStaffID:   row.SenderStaffID,
			Body:            row.Body,
			Kind:            domain.KindText,
		}
		if err := s.messageRepo.Create(msg); err != nil {
			sweepDispatchFailures.Inc()
			logger.GetLogger().Error().Err(err).
				Uint64("scheduled_id", row.ID).
				Uint64("channel_id", row.ChannelID).
				Msg("scheduled message materialization failed")
			// The claim already flipped the row to sent. Move it to
			// failed so the lost send is not reported as delivered.
			if err := s.scheduledRepo.MarkFailed(row.ID); err != nil {
				logger.GetLogger().Error().Err(err).
					Uint64("scheduled_id", row.ID).
					Msg("failed to mark scheduled message as failed")
			}
			continue
		}

		sweepDispatchedTotal.Inc()
		processed++
	}

	if len(due) > 0 {
		logger.GetLogger().Info().
			Int("due", len(due)).
			Int("dispatched", processed).
			Msg("dispatch sweep finished")
	}
	return processed, nil
}

// SweepExpired hard-deletes messages older than each channel's
// retention window. Channels without a settings row use the default.
// Returns deleted counts per channel.
func (s *sweepService) SweepExpired(now time.Time) (map[uint64]int64, error) {
	channels, err := s.channelRepo.FindAll()
	if err != nil {
		return nil, err
	}

	settingsRows, err := s.settingsRepo.FindAll()
	if err != nil {
		return nil, err
	}
	retention := make(map[uint64]int, len(settingsRows))
	for _, row := range settingsRows {
		retention[row.ChannelID] = domain.ClampRetentionDays(row.AutoDeleteAfterDays)
	}

	result := make(map[uint64]int64, len(channels))
	var total int64
	for _, ch := range channels {
		days, ok := retention[ch.ID]
		if !ok {
			days = domain.DefaultRetentionDays
		}
		cutoff := now.AddDate(0, 0, -days)

		deleted, err := s.messageRepo.DeleteBefore(ch.ID, cutoff)
		if err != nil {
			// Channel deletes are independent and idempotent; the next
			// run retries whatever this one missed.
			logger.GetLogger().Error().Err(err).
				Uint64("channel_id", ch.ID).
				Msg("retention sweep failed for channel")
			continue
		}
		if deleted > 0 {
			result[ch.ID] = deleted
			total += deleted
			sweepPurgedTotal.Add(float64(deleted))
		}
	}

	if total > 0 {
		logger.GetLogger().Info().
			Int64("deleted", total).
			Msg("retention sweep finished")
	}
	return result, nil
}
