package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/example/learnpath/internal/database"
	"github.com/example/learnpath/internal/metrics"
	"github.com/example/learnpath/internal/notify"
	"github.com/example/learnpath/pkg/models"
	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// Default notification settings
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
	DefaultInactiveDays          = 3
	DefaultReminderInterval      = 24 * time.Hour
)

// Config controls when reminders are sent
type Config struct {
	// Reminders go out only between these hours (inclusive)
	StartHour int
	EndHour   int
	// Days without a login before a learner is reminded
	InactiveDays int
	// Minimum time between two reminders to the same learner
	ReminderInterval time.Duration
	Location         *time.Location
	// Now defaults to time.Now
	Now func() time.Time
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		StartHour:        DefaultNotificationStartHour,
		EndHour:          DefaultNotificationEndHour,
		InactiveDays:     DefaultInactiveDays,
		ReminderInterval: DefaultReminderInterval,
		Location:         time.UTC,
		Now:              time.Now,
	}
}

// Notifier interface for sending notifications
type Notifier interface {
	SendReminder(ctx context.Context, r notify.Reminder) error
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	cfg       Config
	log       zerolog.Logger
	metrics   *metrics.Registry

	userRepo     *database.UserRepository
	progressRepo *database.ProgressRepository
}

// New creates a new scheduler instance
func New(cfg Config, notifier Notifier, logger zerolog.Logger, reg *metrics.Registry) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.InactiveDays <= 0 {
		cfg.InactiveDays = DefaultInactiveDays
	}
	if cfg.ReminderInterval <= 0 {
		cfg.ReminderInterval = DefaultReminderInterval
	}

	return &Scheduler{
		scheduler:    gocron.NewScheduler(cfg.Location),
		notifier:     notifier,
		cfg:          cfg,
		log:          logger.With().Str("component", "scheduler").Logger(),
		metrics:      reg,
		userRepo:     database.NewUserRepository(),
		progressRepo: database.NewProgressRepository(),
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	// Schedule hourly check for users who need reminders
	_, err := s.scheduler.Every(1).Hour().Do(func() {
		if _, err := s.RunCheck(context.Background()); err != nil {
			s.log.Error().Err(err).Msg("reminder check failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	s.log.Info().
		Int("start_hour", s.cfg.StartHour).
		Int("end_hour", s.cfg.EndHour).
		Int("inactive_days", s.cfg.InactiveDays).
		Msg("reminder scheduler started")
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// InWindow reports whether t falls inside the notification hours
func (s *Scheduler) InWindow(t time.Time) bool {
	hour := t.In(s.cfg.Location).Hour()
	return hour >= s.cfg.StartHour && hour <= s.cfg.EndHour
}

// RunCheck reminds every inactive learner with unfinished courses and
// returns how many reminders were sent
func (s *Scheduler) RunCheck(ctx context.Context) (int, error) {
	now := s.cfg.Now()
	if !s.InWindow(now) {
		s.log.Debug().Int("hour", now.In(s.cfg.Location).Hour()).Msg("outside notification hours, skipping reminders")
		return 0, nil
	}

	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, user := range users {
		days := inactiveDays(user, now)
		if days < s.cfg.InactiveDays || s.recentlyReminded(user, now) {
			continue
		}

		unfinished, err := s.unfinishedCourses(ctx, user.ID)
		if err != nil {
			s.log.Error().Err(err).Int64("user_id", user.ID).Msg("failed to load progress")
			continue
		}
		if len(unfinished) == 0 {
			continue
		}

		r := notify.Reminder{User: user, Unfinished: unfinished, InactiveDays: days}
		if err := s.notifier.SendReminder(ctx, r); err != nil {
			s.log.Error().Err(err).Int64("user_id", user.ID).Msg("failed to send reminder")
			continue
		}
		s.metrics.ReminderSent()
		sent++
		if err := s.userRepo.MarkReminded(ctx, user.ID, now); err != nil {
			s.log.Error().Err(err).Int64("user_id", user.ID).Msg("failed to record reminder")
		}
	}

	s.log.Info().Int("sent", sent).Msg("reminder check finished")
	return sent, nil
}

// RunManualCheck forces a reminder for a specific user, ignoring the
// notification window and inactivity threshold
func (s *Scheduler) RunManualCheck(ctx context.Context, userID int64) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	unfinished, err := s.unfinishedCourses(ctx, userID)
	if err != nil {
		return err
	}
	if len(unfinished) == 0 {
		return nil
	}

	now := s.cfg.Now()
	err = s.notifier.SendReminder(ctx, notify.Reminder{
		User:         *user,
		Unfinished:   unfinished,
		InactiveDays: inactiveDays(*user, now),
	})
	if err != nil {
		return err
	}
	s.metrics.ReminderSent()
	return s.userRepo.MarkReminded(ctx, userID, now)
}

// recentlyReminded reports whether the learner got a reminder within the
// reminder interval
func (s *Scheduler) recentlyReminded(u models.User, now time.Time) bool {
	return u.LastRemindedAt != nil && now.Sub(*u.LastRemindedAt) < s.cfg.ReminderInterval
}

func (s *Scheduler) unfinishedCourses(ctx context.Context, userID int64) ([]models.UserCourse, error) {
	rows, err := s.progressRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	unfinished := rows[:0]
	for _, uc := range rows {
		if uc.Progress < models.MaxProgress {
			unfinished = append(unfinished, uc)
		}
	}
	sort.SliceStable(unfinished, func(i, j int) bool {
		return unfinished[i].Progress > unfinished[j].Progress
	})
	return unfinished, nil
}

// inactiveDays counts whole days since the last login, or since sign-up for
// users who never logged in
func inactiveDays(u models.User, now time.Time) int {
	last := u.CreatedAt
	if u.LastLogin != nil {
		last = *u.LastLogin
	}
	if last.IsZero() || now.Before(last) {
		return 0
	}
	return int(now.Sub(last).Hours() / 24)
}
