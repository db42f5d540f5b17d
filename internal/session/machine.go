package session

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytget/leech-bot/internal/classify"
	"github.com/ytget/leech-bot/internal/config"
	"github.com/ytget/leech-bot/internal/download"
	"github.com/ytget/leech-bot/internal/metrics"
	"github.com/ytget/leech-bot/internal/model"
	"github.com/ytget/leech-bot/internal/platform"
)

// ReplySink sends outbound text to a user. The transport gateway implements
// this; the machine never touches the wire protocol.
type ReplySink interface {
	SendText(userID, text string) error
}

// Machine sequences the per-user download flow: it looks up the session,
// applies the incoming message to the current state, and either re-prompts or
// hands off to the dispatcher. All transitions for one user run under that
// user's session lock.
type Machine struct {
	store      *Store
	dispatcher download.Dispatcher
	sink       ReplySink
	clock      Clock

	idleTimeout   time.Duration
	sweepInterval time.Duration

	log zerolog.Logger
}

// NewMachine creates the state machine on top of the given store
func NewMachine(cfg *config.Config, store *Store, dispatcher download.Dispatcher, sink ReplySink, clock Clock, log zerolog.Logger) *Machine {
	return &Machine{
		store:         store,
		dispatcher:    dispatcher,
		sink:          sink,
		clock:         clock,
		idleTimeout:   cfg.IdleTimeout,
		sweepInterval: cfg.SweepInterval,
		log:           log.With().Str("component", "session").Logger(),
	}
}

// Welcome handles /start and /help
func (m *Machine) Welcome(userID string) {
	m.reply(userID, MsgWelcome)
}

// Begin handles /pw: creates a session in the initial state. A user already
// mid-flow is rejected; one that is still waiting for a file is re-prompted.
func (m *Machine) Begin(userID string) {
	if _, err := m.store.Create(userID); err == nil {
		metrics.SessionsStartedTotal.Inc()
		m.log.Info().Str("user_id", userID).Msg("session started")
		m.reply(userID, MsgSendFile)
		return
	}

	sess, release, err := m.store.Acquire(userID)
	if err != nil {
		m.replyBusy(userID, err)
		return
	}
	defer release()

	if sess.State == model.StateAwaitingFile {
		sess.Touch(m.clock.Now())
		m.reply(userID, MsgSendFile)
		return
	}
	m.reply(userID, MsgSessionInProgress)
}

// HandleFile applies an uploaded file to the user's session. Only the
// AWAITING_FILE state consumes files.
func (m *Machine) HandleFile(userID string, data []byte, filename string) {
	sess, release, err := m.store.Acquire(userID)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			m.reply(userID, MsgUnexpectedFile)
			return
		}
		m.replyBusy(userID, err)
		return
	}
	defer release()

	if sess.State.IsDispatching() {
		m.reply(userID, MsgDispatchInProgress)
		return
	}
	if sess.State != model.StateAwaitingFile {
		m.reply(userID, MsgSessionInProgress)
		return
	}

	links := classify.All(string(data))
	if len(links) == 0 {
		// invalid file: stay in state, re-prompt
		m.reply(userID, MsgNoURLs)
		return
	}

	sess.Links = links
	sess.State = model.StateAwaitingSelection
	sess.Touch(m.clock.Now())

	summary := classify.Summarize(links)
	m.log.Info().
		Str("user_id", userID).
		Str("filename", filename).
		Int("links", len(links)).
		Str("summary", summary.String()).
		Msg("file classified")
	m.reply(userID, summaryMessage(links, summary))
}

// HandleText applies a plain text message to the user's session
func (m *Machine) HandleText(userID, text string) {
	text = strings.TrimSpace(text)

	sess, release, err := m.store.Acquire(userID)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			m.reply(userID, MsgNoSession)
			return
		}
		m.replyBusy(userID, err)
		return
	}
	defer release()

	switch sess.State {
	case model.StateAwaitingFile:
		m.reply(userID, MsgSendFile)
	case model.StateAwaitingSelection:
		m.handleSelection(sess, text)
	case model.StateAwaitingBatchName:
		m.handleBatchName(sess, text)
	case model.StateAwaitingQuality:
		m.handleQuality(sess, text)
	case model.StateAwaitingToken:
		m.handleToken(sess, text)
	case model.StateDispatching:
		m.reply(userID, MsgDispatchInProgress)
	default:
		m.reply(userID, MsgFlowHint)
	}
}

// Cancel removes the user's session from any state. A cancel during dispatch
// is bookkeeping only: the session goes away but the running download is not
// aborted.
func (m *Machine) Cancel(userID string) {
	sess, release, err := m.store.Acquire(userID)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			m.reply(userID, MsgNothingToCancel)
			return
		}
		m.replyBusy(userID, err)
		return
	}
	defer release()

	wasDispatching := sess.State.IsDispatching()
	m.store.Delete(userID)
	metrics.SessionsCancelledTotal.Inc()
	m.log.Info().Str("user_id", userID).Str("state", sess.State.String()).Msg("session cancelled")

	if wasDispatching {
		m.reply(userID, MsgCancelledWhileDispatching)
		return
	}
	m.reply(userID, MsgCancelled)
}

// RunSweep reclaims idle sessions until the context is cancelled. This is the
// only background-scheduled work in the core.
func (m *Machine) RunSweep(ctx context.Context) {
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, sess := range m.store.Sweep(m.idleTimeout) {
				metrics.SessionsExpiredTotal.Inc()
				m.log.Info().Str("user_id", sess.UserID).Str("state", sess.State.String()).Msg("session expired")
				m.reply(sess.UserID, MsgExpired)
			}
		}
	}
}

func (m *Machine) handleSelection(sess *model.Session, text string) {
	index, err := strconv.Atoi(text)
	if err != nil {
		m.reply(sess.UserID, MsgBadIndex)
		return
	}

	link, ok := sess.FindLink(index)
	if !ok {
		m.reply(sess.UserID, MsgIndexOutOfRange)
		return
	}

	sess.SelectedIndex = index
	sess.State = model.StateAwaitingBatchName
	sess.Touch(m.clock.Now())
	m.reply(sess.UserID, selectionMessage(link))
}

func (m *Machine) handleBatchName(sess *model.Session, text string) {
	name := platform.SanitizeName(text, config.MaxBatchNameLength)
	if name == "" {
		m.reply(sess.UserID, MsgEmptyBatchName)
		return
	}

	sess.BatchName = name
	sess.State = model.StateAwaitingQuality
	sess.Touch(m.clock.Now())
	m.reply(sess.UserID, qualityPrompt(config.QualityChoices()))
}

func (m *Machine) handleQuality(sess *model.Session, text string) {
	if !config.ValidQuality(text) {
		m.reply(sess.UserID, invalidQualityMessage(config.QualityChoices()))
		return
	}

	sess.Quality = text
	sess.Touch(m.clock.Now())

	link, ok := sess.Selected()
	if !ok {
		// selection is required to reach this state; treat as a broken
		// session rather than guessing
		m.store.Delete(sess.UserID)
		m.reply(sess.UserID, MsgFlowHint)
		return
	}

	// Tokens are only needed for the resolver; PDFs dispatch right away
	if link.Kind == model.LinkKindPDF {
		m.startDispatch(sess, link)
		return
	}
	sess.State = model.StateAwaitingToken
	m.reply(sess.UserID, MsgAskToken)
}

func (m *Machine) handleToken(sess *model.Session, text string) {
	if text == "" {
		m.reply(sess.UserID, MsgEmptyToken)
		return
	}

	sess.Token = text

	link, ok := sess.Selected()
	if !ok {
		m.store.Delete(sess.UserID)
		m.reply(sess.UserID, MsgFlowHint)
		return
	}
	m.startDispatch(sess, link)
}

// startDispatch flips the session into DISPATCHING and runs the dispatcher on
// its own goroutine. The caller holds the session lock; the goroutine must
// not, or every later message from this user would block behind the download
// instead of getting a busy reply.
func (m *Machine) startDispatch(sess *model.Session, link model.LinkRecord) {
	sess.State = model.StateDispatching
	sess.Touch(m.clock.Now())
	m.reply(sess.UserID, MsgDownloadStarted)

	userID := sess.UserID
	params := download.Params{
		BatchName: sess.BatchName,
		Quality:   sess.Quality,
		Token:     sess.Token,
	}

	m.log.Info().
		Str("user_id", userID).
		Int("index", link.Index).
		Str("kind", link.Kind.String()).
		Str("quality", params.Quality).
		Msg("dispatch starting")

	go func() {
		// The dispatch outlives the inbound message that triggered it.
		_, err := m.dispatcher.Dispatch(context.Background(), userID, link, params)
		m.finishDispatch(userID, err)
	}()
}

// finishDispatch removes the session and reports the outcome. The session may
// already be gone if the user cancelled mid-dispatch; the result is still
// reported.
func (m *Machine) finishDispatch(userID string, dispatchErr error) {
	_, release, err := m.store.AcquireWait(userID)
	if err == nil {
		m.store.Delete(userID)
		release()
	}

	if dispatchErr == nil {
		// the delivered document is the success reply
		return
	}

	var de *download.Error
	if errors.As(dispatchErr, &de) {
		m.reply(userID, failureMessage(string(de.Stage), de.Err))
		return
	}
	m.reply(userID, failureMessage("download", dispatchErr))
}

func (m *Machine) replyBusy(userID string, err error) {
	if errors.Is(err, ErrSessionBusy) {
		m.reply(userID, MsgBusy)
		return
	}
	m.reply(userID, MsgNoSession)
}

// reply sends without crashing the handler; a dead chat is the user's
// problem, not the event loop's
func (m *Machine) reply(userID, text string) {
	if err := m.sink.SendText(userID, text); err != nil {
		m.log.Warn().Err(err).Str("user_id", userID).Msg("failed to send reply")
	}
}
