// Package console runs an interview as a menu loop for terminals where the
// full-screen UI is not wanted.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"rsb-interview-lab/internal/config"
	"rsb-interview-lab/internal/interview"
	"rsb-interview-lab/internal/storage"

	"github.com/manifoldco/promptui"
	"go.uber.org/zap"
)

const (
	ItemType   = "Type answer"
	ItemRecord = "Record answer"
	ItemStop   = "Stop recording"
	ItemAttach = "Attach document"
	ItemSubmit = "Submit answer"
	ItemLog    = "Show log"
	ItemPlay   = "Play answer"
	ItemExport = "Export transcript"
	ItemQuit   = "Quit"
	ItemBack   = "back"
)

var errQuit = errors.New("quit requested")

// Prompter asks the user for a menu choice or a line of input.
type Prompter interface {
	Select(label string, items []string) (string, error)
	Input(label string, validate func(string) error) (string, error)
}

// Player plays back a recorded answer.
type Player interface {
	Play(ctx context.Context, blob *interview.Blob) error
}

type Config struct {
	Questions *config.Config
	Session   *interview.Session
	Player    Player
	ExportDir string
	Prompter  Prompter
	Out       io.Writer
	Logger    *zap.Logger
}

type Console struct {
	questions *config.Config
	session   *interview.Session
	player    Player
	exportDir string
	prompter  Prompter
	out       io.Writer
	logger    *zap.Logger
}

func New(cfg Config) *Console {
	c := &Console{
		questions: cfg.Questions,
		session:   cfg.Session,
		player:    cfg.Player,
		exportDir: cfg.ExportDir,
		prompter:  cfg.Prompter,
		out:       cfg.Out,
		logger:    cfg.Logger,
	}
	if c.questions == nil {
		c.questions = config.Default()
	}
	if c.prompter == nil {
		c.prompter = PromptUI{}
	}
	if c.out == nil {
		c.out = os.Stdout
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Run loops until the user quits or interrupts the prompt.
func (c *Console) Run(ctx context.Context) error {
	defer func() {
		if err := c.session.Close(); err != nil {
			c.logger.Warn("closing session", zap.Error(err))
		}
	}()

	fmt.Fprintf(c.out, "%s\n%s\n", c.questions.Title, c.questions.Subtitle)
	if c.questions.Upsell.Enabled {
		fmt.Fprintf(c.out, "%s\n", c.questions.Upsell.Text)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		c.printQuestion()

		choice, err := c.prompter.Select("Choose an action", c.menu())
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return fmt.Errorf("reading menu choice: %w", err)
		}

		if err := c.handle(ctx, choice); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				continue
			}
			return err
		}
	}
}

func (c *Console) menu() []string {
	record := ItemRecord
	if c.session.IsRecording() {
		record = ItemStop
	}
	return []string{ItemType, record, ItemAttach, ItemSubmit, ItemLog, ItemPlay, ItemExport, ItemQuit}
}

func (c *Console) handle(ctx context.Context, choice string) error {
	switch choice {
	case ItemType:
		text, err := c.prompter.Input("Your answer", nil)
		if err != nil {
			return err
		}
		c.session.SetText(text)

	case ItemRecord:
		err := c.session.StartRecording(ctx)
		switch {
		case errors.Is(err, interview.ErrPermissionDenied):
			c.notice("Microphone access was denied. You can still type your answer.")
		case interview.IsCaptureError(err):
			c.notice("No microphone available. You can still type your answer.")
		case err != nil:
			c.notice(err.Error())
		default:
			c.notice("Recording... choose \"" + ItemStop + "\" when done.")
		}

	case ItemStop:
		blob, err := c.session.StopRecording()
		if err != nil && blob == nil {
			c.notice(err.Error())
			return nil
		}
		c.notice(fmt.Sprintf("Recording attached (%d bytes).", blob.Size()))

	case ItemAttach:
		path, err := c.prompter.Input("Path to document", validatePath)
		if err != nil {
			return err
		}
		doc, err := interview.DocumentFromFile(strings.TrimSpace(path))
		if err != nil {
			c.notice(err.Error())
			return nil
		}
		c.session.SelectFile(doc)
		c.notice("Uploaded: " + doc.Name)

	case ItemSubmit:
		entry, err := c.session.Submit()
		if errors.Is(err, interview.ErrEmptyDraft) {
			c.notice("Type your answer or record audio first.")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Feedback: %s\n", entry.Feedback)

	case ItemLog:
		c.printLog()

	case ItemPlay:
		return c.play(ctx)

	case ItemExport:
		if c.exportDir == "" {
			c.notice("Export is disabled.")
			return nil
		}
		path, err := storage.SaveTranscript(c.exportDir, c.session.Snapshot())
		if err != nil {
			c.notice("Export failed: " + err.Error())
			return nil
		}
		c.notice("Transcript saved to " + path)

	case ItemQuit:
		return errQuit
	}

	return nil
}

func (c *Console) play(ctx context.Context) error {
	if c.player == nil {
		c.notice("Playback is not available.")
		return nil
	}

	var items []string
	var voiced []interview.LogEntry
	for _, e := range c.session.Entries() {
		if e.HasAudio() {
			items = append(items, fmt.Sprintf("%d. %s", e.Index+1, e.Question))
			voiced = append(voiced, e)
		}
	}
	if len(voiced) == 0 {
		c.notice("No recorded answers yet.")
		return nil
	}

	choice, err := c.prompter.Select("Choose an answer", append(items, ItemBack))
	if err != nil {
		return err
	}
	for i, item := range items {
		if item == choice {
			if err := c.player.Play(ctx, voiced[i].Audio); err != nil {
				c.notice("Playback failed: " + err.Error())
			}
			return nil
		}
	}
	return nil
}

func (c *Console) printQuestion() {
	cursor, total := c.session.Progress()
	fmt.Fprintf(c.out, "\nQuestion %d of %d: %s\n", cursor+1, total, c.session.CurrentPrompt())

	draft := c.session.Draft()
	var parts []string
	if draft.Text != "" {
		parts = append(parts, fmt.Sprintf("text %q", draft.Text))
	}
	if draft.Audio != nil {
		parts = append(parts, fmt.Sprintf("audio %d bytes", draft.Audio.Size()))
	}
	if c.session.IsRecording() {
		parts = append(parts, "recording")
	}
	if doc, ok := c.session.Upload(); ok {
		parts = append(parts, "document "+doc.Name)
	}
	if len(parts) > 0 {
		fmt.Fprintf(c.out, "Draft: %s\n", strings.Join(parts, ", "))
	}
}

func (c *Console) printLog() {
	entries := c.session.Entries()
	if len(entries) == 0 {
		c.notice("The interview log is empty.")
		return
	}

	for _, e := range entries {
		fmt.Fprintf(c.out, "\nQ%d: %s\n", e.Index+1, e.Question)
		fmt.Fprintf(c.out, "A: %s\n", e.Answer)
		if e.Audio != nil {
			fmt.Fprintf(c.out, "Audio: %d bytes\n", e.Audio.Size())
		}
		fmt.Fprintf(c.out, "Feedback: %s\n", e.Feedback)
	}
}

func (c *Console) notice(s string) {
	fmt.Fprintf(c.out, "» %s\n", s)
}

func validatePath(s string) error {
	info, err := os.Stat(strings.TrimSpace(s))
	if err != nil {
		return errors.New("file not found")
	}
	if info.IsDir() {
		return errors.New("path is a directory")
	}
	return nil
}

// PromptUI is the interactive Prompter.
type PromptUI struct{}

func (PromptUI) Select(label string, items []string) (string, error) {
	p := promptui.Select{
		Label: label,
		Items: items,
		Size:  len(items),
	}
	_, selected, err := p.Run()
	return selected, err
}

func (PromptUI) Input(label string, validate func(string) error) (string, error) {
	p := promptui.Prompt{
		Label:    label,
		Validate: validate,
	}
	return p.Run()
}
