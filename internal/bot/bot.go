package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"plansey/internal/checklist"
	"plansey/internal/model"
	"plansey/internal/repository"
	"plansey/internal/service"
)

const (
	menuLabelTasks    = "📋 Checklist"
	menuLabelProgress = "📊 Progress"
	menuLabelReport   = "⏰ Deadlines"
	menuLabelHelp     = "ℹ️ Help"
)

const helpText = "ℹ️ <b>Commands</b>\n" +
	"• /link &lt;token&gt; — connect this chat to your account (token from the web app login)\n" +
	"• /tasks — browse the checklist and tap tasks to change their status\n" +
	"• /progress — how much is done\n" +
	"• /report — upcoming deadlines and the wedding countdown\n" +
	"• /help — this message"

// client is the part of the Telegram API the bot uses.
type client interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// session is the checklist a chat is currently browsing.
type session struct {
	board    *checklist.Board
	chapters []model.Chapter
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api        client
	log        *zap.Logger
	users      *repository.UserRepository
	auth       *service.AuthService
	checklists *service.ChecklistService
	reminders  *service.ReminderService

	mu       sync.Mutex
	sessions map[int64]*session
	wg       sync.WaitGroup
}

func New(token string, log *zap.Logger, users *repository.UserRepository, auth *service.AuthService, checklists *service.ChecklistService, reminders *service.ReminderService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	log.Info("bot authorized", zap.String("account", api.Self.UserName))
	return newBot(api, log, users, auth, checklists, reminders), nil
}

func newBot(api client, log *zap.Logger, users *repository.UserRepository, auth *service.AuthService, checklists *service.ChecklistService, reminders *service.ReminderService) *Bot {
	return &Bot{
		api:        api,
		log:        log,
		users:      users,
		auth:       auth,
		checklists: checklists,
		reminders:  reminders,
		sessions:   make(map[int64]*session),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.log.Warn("handle callback", zap.Error(err))
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.log.Warn("handle message", zap.Error(err))
			}
		}
	}

	b.wg.Wait()
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if msg.IsCommand() {
		b.log.Debug("command", zap.Int64("from", msg.From.ID), zap.String("command", msg.Command()))
		return b.handleCommand(ctx, msg)
	}

	switch strings.TrimSpace(msg.Text) {
	case menuLabelTasks:
		return b.handleTasks(ctx, msg)
	case menuLabelProgress:
		return b.handleProgress(ctx, msg)
	case menuLabelReport:
		return b.handleReport(ctx, msg)
	case menuLabelHelp:
		return b.sendText(msg.Chat.ID, helpText)
	}
	return b.sendText(msg.Chat.ID, "I did not get that. Try /tasks or /help.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.sendText(msg.Chat.ID, helpText)
	case "link":
		return b.handleLink(ctx, msg)
	case "tasks":
		return b.handleTasks(ctx, msg)
	case "progress":
		return b.handleProgress(ctx, msg)
	case "report":
		return b.handleReport(ctx, msg)
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}
	text := fmt.Sprintf("👋 Hi, %s!\n<b>I keep your wedding checklist at hand.</b>\n\n%s", escape(name), helpText)

	if _, err := b.users.FindByTelegramID(ctx, msg.From.ID); errors.Is(err, gorm.ErrRecordNotFound) {
		text += "\n\n🔗 This chat is not linked yet. Log in to the web app and send /link with your token."
	} else if err != nil {
		return err
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleLink(ctx context.Context, msg *tgbotapi.Message) error {
	token := strings.TrimSpace(msg.CommandArguments())
	if token == "" {
		return b.sendText(msg.Chat.ID, "Send /link followed by the token you got on login.")
	}
	identity, err := b.auth.ParseToken(token)
	if err != nil {
		return b.sendText(msg.Chat.ID, "❌ This token is invalid or expired. Log in again and retry.")
	}
	if err := b.users.LinkTelegram(ctx, identity.UserID, msg.From.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(msg.Chat.ID, "❌ The account of this token no longer exists.")
		}
		return err
	}
	b.dropSession(msg.Chat.ID)
	b.log.Info("telegram linked", zap.Uint("user", identity.UserID), zap.Int64("telegram", msg.From.ID))
	return b.sendText(msg.Chat.ID, "✅ Linked! Try /tasks.")
}

// linkedUser resolves the account of a Telegram user and tells the chat how
// to link when there is none.
func (b *Bot) linkedUser(ctx context.Context, chatID int64, from *tgbotapi.User) (*model.User, error) {
	user, err := b.users.FindByTelegramID(ctx, from.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, b.sendText(chatID, "🔗 Link your account first: /link &lt;token&gt;")
		}
		return nil, err
	}
	return user, nil
}

func (b *Bot) handleTasks(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.linkedUser(ctx, msg.Chat.ID, msg.From)
	if user == nil {
		return err
	}
	cl, err := b.checklists.ForUser(ctx, user.ID)
	if err != nil {
		return err
	}
	if cl.WeddingID == nil {
		return b.sendText(msg.Chat.ID, "💍 Create your wedding in the web app first, then come back to tick off tasks.")
	}

	s := &session{
		board:    checklist.NewBoard(*cl.WeddingID, cl.Chapters, b.checklists.BoardUpdater(user.ID)),
		chapters: cl.Chapters,
	}
	b.mu.Lock()
	b.sessions[msg.Chat.ID] = s
	b.mu.Unlock()

	out := tgbotapi.NewMessage(msg.Chat.ID, chapterListText(s.board.Progress()))
	out.ParseMode = tgbotapi.ModeHTML
	out.ReplyMarkup = chapterListKeyboard(s.chapters, s.board)
	_, err = b.api.Send(out)
	return err
}

func (b *Bot) handleProgress(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.linkedUser(ctx, msg.Chat.ID, msg.From)
	if user == nil {
		return err
	}
	cl, err := b.checklists.ForUser(ctx, user.ID)
	if err != nil {
		return err
	}
	if cl.WeddingID == nil {
		return b.sendText(msg.Chat.ID, "💍 No wedding yet. Create one in the web app.")
	}
	return b.sendText(msg.Chat.ID, progressText(cl.Chapters, cl.Progress))
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.linkedUser(ctx, msg.Chat.ID, msg.From)
	if user == nil {
		return err
	}
	text, ok, err := b.reminders.SummaryForUser(ctx, user.ID, time.Now())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Could not build the report, please try again later.")
	}
	if !ok {
		return b.sendText(msg.Chat.ID, "💍 No wedding yet. Create one in the web app.")
	}
	return b.sendText(msg.Chat.ID, text)
}

// SendReminders delivers the deadline summary to every linked planner.
func (b *Bot) SendReminders(ctx context.Context) error {
	users, err := b.users.ListTelegramLinked(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		text, ok, err := b.reminders.SummaryForUser(ctx, user.ID, now)
		if err != nil {
			b.log.Warn("build summary", zap.Uint("user", user.ID), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		if err := b.sendText(*user.TelegramID, text); err != nil {
			b.log.Warn("send summary", zap.Uint("user", user.ID), zap.Error(err))
		}
	}
	return nil
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	chatID := cb.Message.Chat.ID

	s := b.session(chatID)
	if s == nil {
		b.ack(cb.ID, "This list is outdated, send /tasks again.")
		return nil
	}

	switch {
	case cb.Data == cbChapters:
		b.ack(cb.ID, "")
		return b.edit(chatID, cb.Message.MessageID, chapterListText(s.board.Progress()), chapterListKeyboard(s.chapters, s.board))
	case strings.HasPrefix(cb.Data, cbChapterPrefix):
		b.ack(cb.ID, "")
		id, err := parseID(cb.Data, cbChapterPrefix)
		if err != nil {
			return nil
		}
		chapter, ok := findChapter(s.chapters, id)
		if !ok {
			return nil
		}
		return b.showChapter(chatID, cb.Message.MessageID, s, chapter)
	case strings.HasPrefix(cb.Data, cbTaskPrefix):
		id, err := parseID(cb.Data, cbTaskPrefix)
		if err != nil {
			b.ack(cb.ID, "")
			return nil
		}
		return b.toggle(ctx, cb, s, id)
	default:
		b.ack(cb.ID, "")
		return nil
	}
}

// toggle shows the next status right away and persists it in the
// background. A failed write restores the previous status silently.
func (b *Bot) toggle(ctx context.Context, cb *tgbotapi.CallbackQuery, s *session, taskID uint) error {
	chapter, ok := chapterOfTask(s.chapters, taskID)
	if !ok {
		b.ack(cb.ID, "")
		return nil
	}
	pending, err := s.board.Begin(taskID)
	switch {
	case errors.Is(err, checklist.ErrTaskBusy):
		b.ack(cb.ID, "Still saving…")
		return nil
	case err != nil:
		b.ack(cb.ID, "")
		return nil
	}
	b.ack(cb.ID, "")

	chatID, messageID := cb.Message.Chat.ID, cb.Message.MessageID
	if err := b.showChapter(chatID, messageID, s, chapter); err != nil {
		b.log.Debug("render pending toggle", zap.Error(err))
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if _, err := s.board.Finish(ctx, pending); err != nil {
			b.log.Warn("toggle task",
				zap.Uint("wedding", s.board.WeddingID()),
				zap.Uint("task", taskID),
				zap.Error(err))
		}
		if err := b.showChapter(chatID, messageID, s, chapter); err != nil {
			b.log.Debug("render toggle result", zap.Error(err))
		}
	}()
	return nil
}

func (b *Bot) showChapter(chatID int64, messageID int, s *session, chapter model.Chapter) error {
	status := func(id uint) model.TaskStatus {
		st, _ := s.board.Status(id)
		return st
	}
	p := s.board.ProgressOf(taskIDs(chapter))
	return b.edit(chatID, messageID, chapterText(chapter, p), chapterKeyboard(chapter, status))
}

func (b *Bot) session(chatID int64) *session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessions[chatID]
}

func (b *Bot) dropSession(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, chatID)
}

func (b *Bot) ack(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.log.Debug("callback ack", zap.Error(err))
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelTasks),
			tgbotapi.NewKeyboardButton(menuLabelProgress),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelReport),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}
