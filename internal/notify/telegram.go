// Package notify delivers staff notifications for engine mutations.
package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"

	"github.com/jinhajunho/luel-note-sub000/internal/service"
)

// TelegramNotifier posts mutation summaries to the staff chat. Delivery is
// best effort; a failed send is logged and forgotten.
type TelegramNotifier struct {
	bot    *bot.Bot
	chatID int64
	logger *zap.Logger
}

func NewTelegramNotifier(token string, chatID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramNotifier{
		bot:    b,
		chatID: chatID,
		logger: logger,
	}, nil
}

// Handle consumes a dispatcher event.
func (n *TelegramNotifier) Handle(ctx context.Context, e service.Event) {
	var text string
	switch e.Kind {
	case service.EventLessonBooked:
		text = fmt.Sprintf("📅 Lesson %d booked", e.LessonID)
	case service.EventAttendanceToggled:
		text = fmt.Sprintf("✏️ Attendance updated for lesson %d (member %d)", e.LessonID, e.MemberID)
	case service.EventLessonCompleted:
		text = fmt.Sprintf("✅ Lesson %d completed", e.LessonID)
	case service.EventLessonCancelled:
		text = fmt.Sprintf("🚫 Lesson %d cancelled", e.LessonID)
	default:
		return
	}

	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: n.chatID,
		Text:   text,
	})
	if err != nil {
		n.logger.Warn("Failed to send staff notification",
			zap.String("kind", string(e.Kind)),
			zap.Error(err),
		)
	}
}
