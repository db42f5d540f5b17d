package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/ytget/leech-bot/internal/config"
	"github.com/ytget/leech-bot/internal/download"
)

const (
	// UpdateTimeoutSeconds is the long-poll timeout passed to Telegram.
	UpdateTimeoutSeconds = 30

	// MaxDocumentBytes caps accepted uploads. URL lists are tiny; anything
	// bigger is not a link file.
	MaxDocumentBytes = 5 << 20
)

// Gateway specific reply texts. Flow prompts live in the session package;
// these only cover transport level rejections.
const (
	msgDocumentTooLarge   = "⚠️ That file is too large. Send a plain text file of URLs."
	msgDocumentUnreadable = "⚠️ Couldn't read that file. Please send it again."
)

// Flow is the slice of the session machine the gateway drives.
type Flow interface {
	Welcome(userID string)
	Begin(userID string)
	Cancel(userID string)
	HandleFile(userID string, data []byte, filename string)
	HandleText(userID, text string)
}

// sender is the outbound half of the Telegram client
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// fileResolver turns a Telegram file ID into a fetchable URL
type fileResolver interface {
	GetFileDirectURL(fileID string) (string, error)
}

// Gateway bridges the Telegram Bot API and the session machine. It owns the
// update loop, translates chat IDs to user IDs, and implements both the
// machine's reply sink and the dispatcher's deliverer.
type Gateway struct {
	api   *tgbotapi.BotAPI
	send  sender
	files fileResolver
	flow  Flow

	httpClient *http.Client
	log        zerolog.Logger
}

// NewGateway authenticates against the Bot API and returns a ready gateway.
// The flow is attached later with Attach because the machine needs the
// gateway as its reply sink first.
func NewGateway(cfg *config.Config, log zerolog.Logger) (*Gateway, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("authenticate bot: %w", err)
	}

	return &Gateway{
		api:        api,
		send:       api,
		files:      api,
		httpClient: &http.Client{Timeout: cfg.FetchTimeout},
		log:        log.With().Str("component", "gateway").Logger(),
	}, nil
}

// Attach wires the session machine into the gateway. Must be called before
// Run.
func (g *Gateway) Attach(flow Flow) {
	g.flow = flow
}

// Username returns the authenticated bot account name.
func (g *Gateway) Username() string {
	return g.api.Self.UserName
}

// Run consumes updates until the context is cancelled. Handlers run inline;
// the session machine already pushes long downloads onto their own
// goroutines, so the loop never blocks on a dispatch.
func (g *Gateway) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = UpdateTimeoutSeconds
	updates := g.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			g.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			g.handleMessage(ctx, update.Message)
		}
	}
}

func (g *Gateway) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := chatKey(msg.Chat.ID)

	if msg.IsCommand() {
		g.handleCommand(userID, msg.Command())
		return
	}
	if msg.Document != nil {
		g.handleDocument(ctx, userID, msg.Document)
		return
	}
	if msg.Text != "" {
		g.flow.HandleText(userID, msg.Text)
	}
}

func (g *Gateway) handleCommand(userID, command string) {
	switch command {
	case "start", "help":
		g.flow.Welcome(userID)
	case "pw":
		g.flow.Begin(userID)
	case "cancel":
		g.flow.Cancel(userID)
	default:
		g.flow.Welcome(userID)
	}
}

func (g *Gateway) handleDocument(ctx context.Context, userID string, doc *tgbotapi.Document) {
	if doc.FileSize > MaxDocumentBytes {
		g.notify(userID, msgDocumentTooLarge)
		return
	}

	data, err := g.fetchDocument(ctx, doc.FileID)
	if err != nil {
		g.log.Warn().Err(err).Str("user_id", userID).Str("filename", doc.FileName).Msg("document fetch failed")
		g.notify(userID, msgDocumentUnreadable)
		return
	}
	g.flow.HandleFile(userID, data, doc.FileName)
}

// fetchDocument pulls the raw bytes of an uploaded file from Telegram's file
// servers.
func (g *Gateway) fetchDocument(ctx context.Context, fileID string) ([]byte, error) {
	fileURL, err := g.files.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build file request: %w", err)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch file: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read file body: %w", err)
	}
	if len(data) > MaxDocumentBytes {
		return nil, fmt.Errorf("file exceeds %d bytes", MaxDocumentBytes)
	}
	return data, nil
}

// SendText implements session.ReplySink.
func (g *Gateway) SendText(userID, text string) error {
	chatID, err := parseChatKey(userID)
	if err != nil {
		return err
	}
	if _, err := g.send.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// Deliver implements download.Deliverer by uploading the finished file as a
// document with its caption.
func (g *Gateway) Deliver(ctx context.Context, userID string, file download.Delivered, caption string) error {
	chatID, err := parseChatKey(userID)
	if err != nil {
		return err
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(file.Path))
	doc.Caption = caption
	if _, err := g.send.Send(doc); err != nil {
		return fmt.Errorf("send document %q: %w", file.FileName, err)
	}
	return nil
}

// notify sends a transport level reply, logging rather than escalating
// failures.
func (g *Gateway) notify(userID, text string) {
	if err := g.SendText(userID, text); err != nil {
		g.log.Warn().Err(err).Str("user_id", userID).Msg("failed to send reply")
	}
}

func chatKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

func parseChatKey(userID string) (int64, error) {
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chat key %q: %w", userID, err)
	}
	return chatID, nil
}
