// Package notify delivers study reminders to learners.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/learnpath/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// ErrNoChat is returned when a user has no linked Telegram chat
var ErrNoChat = errors.New("user has no telegram chat")

// Reminder asks an inactive learner to come back to unfinished courses
type Reminder struct {
	User         models.User
	Unfinished   []models.UserCourse
	InactiveDays int
}

// Text renders the reminder message
func (r Reminder) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s! You haven't studied for %d %s.", r.User.Username, r.InactiveDays, plural(r.InactiveDays, "day", "days"))
	if len(r.Unfinished) > 0 {
		fmt.Fprintf(&b, " You still have %d unfinished %s:", len(r.Unfinished), plural(len(r.Unfinished), "course", "courses"))
		for i, uc := range r.Unfinished {
			if i > 0 {
				b.WriteString(",")
			}
			title := uc.CourseTitle
			if title == "" {
				title = fmt.Sprintf("course #%d", uc.CourseID)
			}
			fmt.Fprintf(&b, " %s (%.0f%%)", title, uc.Progress)
		}
		b.WriteString(".")
	}
	b.WriteString(" Keep going!")
	return b.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// LogNotifier writes reminders to the log instead of sending them
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier creates a notifier that only logs
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: logger}
}

// SendReminder logs the reminder
func (n *LogNotifier) SendReminder(_ context.Context, r Reminder) error {
	n.log.Info().
		Int64("user_id", r.User.ID).
		Int("inactive_days", r.InactiveDays).
		Str("text", r.Text()).
		Msg("study reminder")
	return nil
}

// sender is the part of the Telegram API used to deliver messages
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier sends reminders to users with a linked Telegram chat.
// Users without one are passed to the fallback notifier when it is set.
type TelegramNotifier struct {
	api      sender
	fallback reminderSender
	log      zerolog.Logger
}

type reminderSender interface {
	SendReminder(ctx context.Context, r Reminder) error
}

// NewTelegramNotifier authorizes the bot token against the Telegram API
func NewTelegramNotifier(token string, logger zerolog.Logger) (*TelegramNotifier, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	logger.Info().Str("account", botAPI.Self.UserName).Msg("telegram bot authorized")
	return &TelegramNotifier{api: botAPI, fallback: NewLogNotifier(logger), log: logger}, nil
}

// SendReminder implements the scheduler notifier
func (n *TelegramNotifier) SendReminder(ctx context.Context, r Reminder) error {
	if r.User.TelegramChatID == nil {
		if n.fallback != nil {
			return n.fallback.SendReminder(ctx, r)
		}
		return ErrNoChat
	}

	msg := tgbotapi.NewMessage(*r.User.TelegramChatID, r.Text())
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send reminder to user %d: %w", r.User.ID, err)
	}
	n.log.Debug().Int64("user_id", r.User.ID).Msg("reminder sent over telegram")
	return nil
}
