package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"rsb-interview-lab/internal/audio"
	"rsb-interview-lab/internal/config"
	"rsb-interview-lab/internal/interview"
	"rsb-interview-lab/internal/logger"
	"rsb-interview-lab/internal/metrics"
	"rsb-interview-lab/internal/storage"

	"go.uber.org/zap"
)

// HandlerOptions configures the update handler.
type HandlerOptions struct {
	Questions *config.Config
	Telegram  config.TelegramConfig
	ExportDir string
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

type Handler struct {
	bot           *Bot
	config        *config.Config
	telegram      config.TelegramConfig
	exportDir     string
	metrics       *metrics.Metrics
	logger        *zap.Logger
	sessions      map[int64]*UserSession
	sessionsMutex sync.RWMutex
	rateLimiter   *RateLimiter
}

func NewHandler(bot *Bot, opts HandlerOptions) *Handler {
	cfg := opts.Questions
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Handler{
		bot:         bot,
		config:      cfg,
		telegram:    opts.Telegram,
		exportDir:   opts.ExportDir,
		metrics:     opts.Metrics,
		logger:      log,
		sessions:    make(map[int64]*UserSession),
		rateLimiter: NewRateLimiter(opts.Telegram.RateLimit, opts.Telegram.RateWindow),
	}
}

// StartSessionCleanup drops sessions idle for longer than the configured TTL.
func (h *Handler) StartSessionCleanup(ctx context.Context) {
	ttl := h.telegram.SessionTTL
	if ttl <= 0 {
		return
	}

	ticker := time.NewTicker(time.Hour)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.cleanupInactiveSessions(time.Now().Add(-ttl))
			}
		}
	}()
}

func (h *Handler) cleanupInactiveSessions(cutoff time.Time) {
	h.sessionsMutex.Lock()
	defer h.sessionsMutex.Unlock()

	for uid, us := range h.sessions {
		// a session busy with an update is active
		if !us.mu.TryLock() {
			continue
		}
		if us.LastActivity.Before(cutoff) {
			if err := us.Session.Close(); err != nil {
				h.logger.Warn("closing expired session", zap.Int64("user_id", uid), zap.Error(err))
			}
			us.expired = true
			delete(h.sessions, uid)
			h.logger.Debug("session expired", zap.Int64("user_id", uid))
		}
		us.mu.Unlock()
	}
}

// HandleUpdate routes one update.
func (h *Handler) HandleUpdate(update Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if !h.rateLimiter.IsAllowed(userID) {
		h.send(chatID, "⏳ Too many messages. Please wait a minute.")
		return
	}

	us, err := h.lockSession(userID)
	if err != nil {
		h.logger.Error("creating session", zap.Error(err))
		h.send(chatID, "❌ Could not start an interview session.")
		return
	}
	defer us.mu.Unlock()
	us.LastActivity = time.Now()

	text := strings.TrimSpace(msg.Text)
	switch {
	case strings.HasPrefix(text, "/"):
		h.handleCommand(chatID, text, us)
	case msg.Voice != nil:
		h.handleVoice(chatID, msg.Voice.FileID, msg.Voice.MimeType, msg.Voice.Duration, us)
	case msg.Audio != nil:
		h.handleVoice(chatID, msg.Audio.FileID, msg.Audio.MimeType, msg.Audio.Duration, us)
	case msg.Document != nil:
		h.handleDocument(chatID, msg.Document, us)
	case text != "":
		h.handleUserInput(chatID, text, us)
	default:
		h.send(chatID, "Send a text answer, a voice message or a document. /help lists the commands.")
	}
}

func (h *Handler) handleCommand(chatID int64, text string, us *UserSession) {
	command := strings.Fields(text)[0]
	if i := strings.Index(command, "@"); i > 0 {
		command = command[:i]
	}

	switch command {
	case "/start":
		h.handleStartCommand(chatID, us)
	case "/help":
		h.handleHelpCommand(chatID)
	case "/question":
		h.sendQuestion(chatID, us.Session)
	case "/submit":
		h.handleSubmitCommand(chatID, us)
	case "/log":
		h.handleLogCommand(chatID, us)
	case "/status":
		h.handleStatusCommand(chatID, us)
	case "/export":
		h.handleExportCommand(chatID, us)
	case "/reset":
		h.handleResetCommand(chatID, us)
	default:
		h.send(chatID, "Unknown command. Use /help to see the list of commands.")
	}
}

func (h *Handler) handleStartCommand(chatID int64, us *UserSession) {
	var b strings.Builder
	fmt.Fprintf(&b, "🎓 *%s*\n_%s_\n\n", escapeMarkdown(h.config.Title), escapeMarkdown(h.config.Subtitle))
	b.WriteString("Answer each question by typing or with a voice message, then send /submit.\n")
	b.WriteString("You can attach a supporting document at any time.\n")
	if h.config.Upsell.Enabled {
		fmt.Fprintf(&b, "\n_%s_\n", escapeMarkdown(h.config.Upsell.Text))
	}

	h.send(chatID, b.String())
	h.sendQuestion(chatID, us.Session)
}

func (h *Handler) handleHelpCommand(chatID int64) {
	helpText := `🤖 *Interview simulator*

*Commands:*
/question - Show the current question
/submit - Submit your answer
/log - Show the interview log
/status - Show progress and draft
/export - Save the transcript
/reset - Start a new interview
/help - Show this message

*Answering:*
• Type a message to set your answer (a new message replaces it)
• Hold the microphone button to record a voice answer
• Send a file to attach a supporting document
• There are %d questions; after the last one the interview starts over`

	h.sendFormatted(chatID, helpText, h.config.GetTotalQuestions())
}

func (h *Handler) handleUserInput(chatID int64, text string, us *UserSession) {
	us.Session.SetText(text)
	h.logger.Debug("draft updated",
		zap.Int64("user_id", us.UserID),
		zap.String("text", logger.TruncateForLog(text, 80)),
	)
	h.send(chatID, "📝 Answer saved as draft. Send /submit when ready.")
}

func (h *Handler) handleVoice(chatID int64, fileID, mimeType string, duration int, us *UserSession) {
	file, err := h.bot.GetFile(fileID)
	var data []byte
	if err == nil {
		data, err = h.bot.DownloadFile(file, h.telegram.MaxFileBytes)
	}
	if err != nil {
		h.metrics.IncrementRecordingsFailed()
		h.logger.Warn("fetching voice message", zap.Int64("user_id", us.UserID), zap.Error(err))
		h.send(chatID, "⚠️ Could not fetch your voice message. You can still answer by text.")
		return
	}

	if mimeType == "" {
		mimeType = audio.MIMEOgg
	}
	blob := interview.NewBlob(interview.Format{MIMEType: mimeType}, [][]byte{data})
	blob.Ref = fileID
	blob.Duration = float64(duration)

	us.Session.AttachAudio(blob)
	h.metrics.IncrementRecordingsCompleted()

	h.sendFormatted(chatID, "🎙 Voice answer attached (%ds). Send /submit when ready.", duration)
}

func (h *Handler) handleDocument(chatID int64, doc *Document, us *UserSession) {
	name := doc.FileName
	if name == "" {
		name = "document"
	}

	us.Session.SelectFile(interview.Document{
		Name:     name,
		Size:     doc.FileSize,
		MIMEType: doc.MimeType,
		Ref:      doc.FileID,
	})

	h.send(chatID, "📎 Uploaded: "+escapeMarkdown(name))
}

func (h *Handler) handleSubmitCommand(chatID int64, us *UserSession) {
	entry, err := us.Session.Submit()
	if errors.Is(err, interview.ErrEmptyDraft) {
		h.send(chatID, "✋ Type your answer or send a voice message first.")
		return
	}
	if err != nil {
		h.logger.Error("submitting answer", zap.Error(err))
		h.send(chatID, "❌ Could not submit the answer.")
		return
	}

	h.send(chatID, formatEntry(entry))
	h.sendQuestion(chatID, us.Session)
}

func (h *Handler) handleLogCommand(chatID int64, us *UserSession) {
	entries := us.Session.Entries()
	if len(entries) == 0 {
		h.send(chatID, "The interview log is empty.")
		return
	}

	h.send(chatID, "📋 *Interview log:*")
	for _, e := range entries {
		h.send(chatID, formatEntry(e))
		if e.Audio != nil && e.Audio.Ref != "" {
			if err := h.bot.SendVoice(chatID, e.Audio.Ref, fmt.Sprintf("Answer %d", e.Index+1)); err != nil {
				h.logger.Warn("re-sending voice", zap.Error(err))
			}
		}
	}
}

func (h *Handler) handleStatusCommand(chatID int64, us *UserSession) {
	snap := us.Session.Snapshot()

	draft := "empty"
	switch {
	case snap.Draft.Text != "" && snap.Draft.Audio != nil:
		draft = "text + voice"
	case snap.Draft.Text != "":
		draft = "text"
	case snap.Draft.Audio != nil:
		draft = "voice"
	}

	upload := "none"
	if snap.Upload != nil {
		upload = escapeMarkdown(snap.Upload.Name)
	}

	m := h.metrics.GetSnapshot()
	h.sendFormatted(chatID, "📊 *Progress*\n\n"+
		"🆔 ID: `%s`\n"+
		"❓ Question: %d/%d\n"+
		"📝 Draft: %s\n"+
		"📎 Document: %s\n"+
		"📋 Answers logged: %d\n\n"+
		"_Bot totals: %d sessions, %d answers, %d voice answers_",
		snap.ID, snap.Cursor+1, snap.Total, draft, upload, len(snap.Entries),
		m.SessionsStarted, m.AnswersSubmitted, m.VoiceAnswers)
}

func (h *Handler) handleExportCommand(chatID int64, us *UserSession) {
	if h.exportDir == "" {
		h.send(chatID, "Export is disabled.")
		return
	}

	path, err := storage.SaveTranscript(h.exportDir, us.Session.Snapshot())
	if err != nil {
		h.logger.Error("exporting transcript", zap.Error(err))
		h.send(chatID, "❌ Could not save the transcript.")
		return
	}

	h.logger.Info("transcript exported", zap.String("path", path))
	h.send(chatID, "💾 Transcript saved: `"+path+"`")
}

func (h *Handler) handleResetCommand(chatID int64, us *UserSession) {
	session, err := h.newSession()
	if err != nil {
		h.logger.Error("creating session", zap.Error(err))
		h.send(chatID, "❌ Could not reset the interview.")
		return
	}

	if err := us.Session.Close(); err != nil {
		h.logger.Warn("closing session", zap.Error(err))
	}
	us.Session = session

	h.send(chatID, "🔄 Interview reset.")
	h.sendQuestion(chatID, session)
}

func (h *Handler) sendQuestion(chatID int64, s *interview.Session) {
	cursor, total := s.Progress()
	h.sendFormatted(chatID, "❓ *Question %d/%d:*\n\n%s", cursor+1, total, escapeMarkdown(string(s.CurrentPrompt())))
}

func formatEntry(e interview.LogEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Q:* %s\n", escapeMarkdown(string(e.Question)))
	fmt.Fprintf(&b, "*A:* %s\n", escapeMarkdown(e.Answer))
	if e.Audio != nil {
		b.WriteString("🎙 _voice answer attached_\n")
	}
	fmt.Fprintf(&b, "_Feedback: %s_", escapeMarkdown(e.Feedback))
	return b.String()
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func (h *Handler) getOrCreateSession(userID int64) (*UserSession, error) {
	h.sessionsMutex.Lock()
	defer h.sessionsMutex.Unlock()

	if us, exists := h.sessions[userID]; exists {
		return us, nil
	}

	session, err := h.newSession()
	if err != nil {
		return nil, err
	}

	us := &UserSession{
		UserID:       userID,
		Session:      session,
		LastActivity: time.Now(),
	}
	h.sessions[userID] = us
	return us, nil
}

// lockSession returns the user's live session with mu held. A session that
// cleanup expired while we waited for the lock is replaced by a fresh one.
func (h *Handler) lockSession(userID int64) (*UserSession, error) {
	for {
		us, err := h.getOrCreateSession(userID)
		if err != nil {
			return nil, err
		}
		us.mu.Lock()
		if !us.expired {
			return us, nil
		}
		us.mu.Unlock()
	}
}

// Bot sessions have no microphone: voice arrives as recorded notes.
func (h *Handler) newSession() (*interview.Session, error) {
	return interview.NewSession(interview.Options{
		Prompts:  h.config.Prompts(),
		Feedback: h.config.Feedback,
		Metrics:  h.metrics,
		Logger:   h.logger,
	})
}

func (h *Handler) send(chatID int64, text string) {
	if err := h.bot.SendMessage(chatID, text); err != nil {
		h.logger.Warn("sending message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (h *Handler) sendFormatted(chatID int64, format string, args ...interface{}) {
	h.send(chatID, fmt.Sprintf(format, args...))
}
