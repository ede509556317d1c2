package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"vvotes/config"
	"vvotes/logger"
	"vvotes/web/global"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

var (
	bot       *telego.Bot
	adminIds  []int64
	isRunning bool
)

// adminNotifier is the send-only face of the Telegram bot that the
// domain services depend on.
type adminNotifier interface {
	SendMsgToAdmins(msg string)
}

// Tgbot pushes operational notifications (draw winners, suspicious
// votes, settlement failures) to the configured admin chats. It is a
// one-way channel; the bot accepts no commands.
type Tgbot struct{}

func (t *Tgbot) Start() error {
	token := config.GetTgBotToken()
	if token == "" {
		logger.Info("Telegram notifications disabled (no token)")
		return nil
	}

	adminIds = adminIds[:0]
	for _, raw := range strings.Split(config.GetTgBotChatIds(), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			logger.Warning("Failed to parse Telegram admin chat id:", raw)
			continue
		}
		adminIds = append(adminIds, id)
	}
	if len(adminIds) == 0 {
		logger.Warning("Telegram token set but no admin chat ids, notifications disabled")
		return nil
	}

	var err error
	bot, err = telego.NewBot(token)
	if err != nil {
		logger.Error("Failed to initialize Telegram bot API:", err)
		return err
	}
	isRunning = true
	logger.Info("Telegram notifier started")
	return nil
}

func (t *Tgbot) IsRunning() bool {
	return isRunning
}

func (t *Tgbot) Stop() {
	isRunning = false
	bot = nil
}

// SendMsgToAdmins delivers msg to every configured admin chat.
// Best-effort: failures are logged only.
func (t *Tgbot) SendMsgToAdmins(msg string) {
	if !isRunning || msg == "" {
		return
	}
	// Sends abort with the server context so shutdown is not held up.
	parent := context.Background()
	if server := global.GetWebServer(); server != nil {
		parent = server.GetCtx()
	}
	for _, adminId := range adminIds {
		ctx, cancel := context.WithTimeout(parent, 10*time.Second)
		_, err := bot.SendMessage(ctx, &telego.SendMessageParams{
			ChatID:    tu.ID(adminId),
			Text:      msg,
			ParseMode: "HTML",
		})
		cancel()
		if err != nil {
			logger.Warning("Error sending telegram message:", err)
		}
	}
}
