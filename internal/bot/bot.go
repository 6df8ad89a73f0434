package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robalyx/igsheet/internal/bot/constants"
	"github.com/robalyx/igsheet/internal/classifier"
	"github.com/robalyx/igsheet/internal/converter"
	"github.com/robalyx/igsheet/internal/setup/config"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Client is the subset of the Telegram bot API used by the bot.
// *tgbotapi.BotAPI satisfies it.
type Client interface {
	FileURLResolver
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot receives JSON documents over Telegram and replies with converted spreadsheets.
// All state lives on the Bot value; each update is handled independently.
type Bot struct {
	client     Client
	converter  *converter.Service
	downloader *Downloader
	logger     *zap.Logger
	cfg        *config.Bot
}

// New connects to Telegram with the configured token and creates a bot.
func New(cfg *config.Bot, service *converter.Service, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram client: %w", err)
	}

	logger.Info("Authorized on Telegram", zap.String("username", api.Self.UserName))

	httpClient := &http.Client{Timeout: time.Duration(cfg.DownloadTimeout) * time.Millisecond}

	return NewWithClient(api, cfg, service, httpClient, logger), nil
}

// NewWithClient creates a bot on top of an existing Telegram client.
func NewWithClient(
	client Client, cfg *config.Bot, service *converter.Service, httpClient *http.Client, logger *zap.Logger,
) *Bot {
	return &Bot{
		client:     client,
		converter:  service,
		downloader: NewDownloader(client, httpClient, cfg.MaxFileSize, DefaultDownloadRetryOptions()),
		logger:     logger.Named("bot"),
		cfg:        cfg,
	}
}

// Run long-polls for updates and handles them on a bounded pool until ctx is done.
// Updates already in progress are allowed to finish before Run returns.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.PollTimeout

	updates := b.client.GetUpdatesChan(u)
	p := pool.New().WithMaxGoroutines(max(b.cfg.MaxConcurrent, 1))
	defer p.Wait()

	// Handlers keep running after shutdown starts so users still get their files
	handlerCtx := context.WithoutCancel(ctx)

	b.logger.Info("Bot is running", zap.Int("max_concurrent", b.cfg.MaxConcurrent))

	for {
		select {
		case <-ctx.Done():
			b.client.StopReceivingUpdates()
			b.logger.Info("Stopped receiving updates")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			p.Go(func() {
				b.HandleUpdate(handlerCtx, update)
			})
		}
	}
}

// HandleUpdate dispatches a single update by message shape.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic while handling update",
				zap.Int("update_id", update.UpdateID),
				zap.Any("panic", r))
			b.reply(msg, constants.UnexpectedErrorText, false)
		}
	}()

	switch {
	case msg.IsCommand() && msg.Command() == constants.StartCommandName:
		b.handleStart(msg)
	case msg.Document != nil:
		if !isJSONFile(msg.Document) {
			b.reply(msg, constants.NotJSONText, true)
			return
		}
		b.processDocument(ctx, msg, msg.Document)
	case msg.ReplyToMessage != nil && msg.ReplyToMessage.Document != nil:
		if !isJSONFile(msg.ReplyToMessage.Document) {
			b.reply(msg, constants.ReplyNotJSONText, false)
			return
		}
		b.processDocument(ctx, msg, msg.ReplyToMessage.Document)
	}
}

// handleStart sends the help text.
func (b *Bot) handleStart(msg *tgbotapi.Message) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, constants.StartText)
	reply.ParseMode = tgbotapi.ModeHTML

	if _, err := b.client.Send(reply); err != nil {
		b.logger.Error("Failed to send start message", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
	}
}

// processDocument downloads, converts and replies with the resulting files.
// The status message reports progress and, on failure, the reason.
func (b *Bot) processDocument(ctx context.Context, msg *tgbotapi.Message, doc *tgbotapi.Document) {
	chatID := msg.Chat.ID
	logger := b.logger.With(
		zap.Int64("chat_id", chatID),
		zap.String("file_name", doc.FileName),
	)

	statusMsg := tgbotapi.NewMessage(chatID, constants.ProcessingText)
	statusMsg.ParseMode = tgbotapi.ModeHTML

	status, err := b.client.Send(statusMsg)
	if err != nil {
		logger.Error("Failed to send status message", zap.Error(err))
		return
	}

	data, err := b.downloader.Download(ctx, doc)
	if err != nil {
		logger.Error("Failed to download document", zap.Error(err))

		if errors.Is(err, ErrFileTooLarge) {
			b.editStatus(chatID, status.MessageID, constants.FileTooLargeText)
		} else {
			b.editStatus(chatID, status.MessageID, fmt.Sprintf(constants.ErrorTextFormat, err))
		}
		return
	}

	documents, err := b.converter.Convert(ctx, data)
	switch {
	case errors.Is(err, classifier.ErrParse):
		logger.Debug("Document is not a JSON array", zap.Error(err))
		b.editStatus(chatID, status.MessageID, constants.InvalidDataText)
		return
	case err != nil:
		logger.Error("Failed to convert document", zap.Error(err))
		b.editStatus(chatID, status.MessageID, fmt.Sprintf(constants.ErrorTextFormat, err))
		return
	case len(documents) == 0:
		b.editStatus(chatID, status.MessageID, constants.InvalidDataText)
		return
	}

	if _, err := b.client.Request(tgbotapi.NewDeleteMessage(chatID, status.MessageID)); err != nil {
		logger.Warn("Failed to delete status message", zap.Error(err))
	}

	for _, document := range documents {
		file := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: document.Name, Bytes: document.Data})
		file.Caption = constants.FileCaption
		file.ParseMode = tgbotapi.ModeHTML
		file.ReplyToMessageID = msg.MessageID

		if _, err := b.client.Send(file); err != nil {
			logger.Error("Failed to send document", zap.String("document", document.Name), zap.Error(err))
			b.reply(msg, fmt.Sprintf(constants.ErrorTextFormat, err), false)
			return
		}
	}

	logger.Info("Delivered documents", zap.Int("documents", len(documents)))
}

// editStatus replaces the text of the status message.
func (b *Bot) editStatus(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := b.client.Request(edit); err != nil {
		b.logger.Error("Failed to edit status message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// reply sends text as a reply to msg.
func (b *Bot) reply(msg *tgbotapi.Message, text string, html bool) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ReplyToMessageID = msg.MessageID
	if html {
		reply.ParseMode = tgbotapi.ModeHTML
	}

	if _, err := b.client.Send(reply); err != nil {
		b.logger.Error("Failed to send reply", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
	}
}

// isJSONFile reports whether the document name ends in .json.
func isJSONFile(doc *tgbotapi.Document) bool {
	return doc.FileName != "" && strings.HasSuffix(doc.FileName, constants.JSONExtension)
}
