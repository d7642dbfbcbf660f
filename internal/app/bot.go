package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/agalitsyn/todo/internal/model"
	"github.com/agalitsyn/todo/internal/view"
	"github.com/agalitsyn/todo/version"
)

const (
	DefaultExportPath   = "tasks.csv"
	defaultHistoryLimit = 10
	maxMessageLen       = 4096
)

type BotConfig struct {
	UpdateTimeout int
	// OwnerID is the only Telegram user the bot answers.
	OwnerID  int64
	Autosave bool
	// ExportPath is used by /export and /import when no path is given.
	ExportPath string
}

type Bot struct {
	api *tgbotapi.BotAPI
	cfg BotConfig
	log *slog.Logger

	*commands
}

func NewBot(
	cfg BotConfig,
	token string,
	shell *Shell,
	archive model.TaskArchive,
	logger *slog.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	if err := tgbotapi.SetLogger(BotLogger{log: logger}); err != nil {
		return nil, err
	}
	return &Bot{
		api:      api,
		cfg:      cfg,
		log:      logger,
		commands: newCommands(cfg, shell, archive, logger),
	}, nil
}

func (b *Bot) SetDebug(debug bool) {
	b.api.Debug = debug
}

func (b *Bot) GetSelf() tgbotapi.User {
	return b.api.Self
}

// Start handles updates one at a time until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case update := <-updates:
			if update.CallbackQuery != nil {
				if err := b.handleCallbackQuery(ctx, update); err != nil {
					b.log.Error("could not handle callback query", "err", err)
				}
				continue
			}

			if update.Message == nil { // ignore any non-Message updates
				continue
			}
			if !b.isOwner(update.Message.From) {
				b.log.Warn("ignored message from stranger", "chat", update.Message.Chat.ID)
				continue
			}

			command, args, ok := "", "", false
			if update.Message.IsCommand() {
				command, args, ok = update.Message.Command(), update.Message.CommandArguments(), true
			} else if text, mentioned := parseCommand(update.Message.Text, b.api.Self.UserName); mentioned {
				command, args = splitCommand(text)
				ok = true
			}
			if !ok {
				continue
			}

			if err := b.send(update.Message.Chat.ID, b.handle(ctx, command, args)); err != nil {
				b.log.Error("could not answer command", "command", command, "err", err)
			}

		case <-ctx.Done():
			b.log.Debug("stopped", "err", ctx.Err())
			return
		}
	}
}

func (b *Bot) isOwner(from *tgbotapi.User) bool {
	return from != nil && from.ID == b.cfg.OwnerID
}

func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) error {
	query := update.CallbackQuery
	if !b.isOwner(query.From) {
		b.log.Warn("ignored callback from stranger")
		return nil
	}

	callback := tgbotapi.NewCallback(query.ID, "")
	if _, err := b.api.Request(callback); err != nil {
		b.log.Error("could not answer callback query", "err", err)
	}
	if query.Message == nil {
		return nil
	}

	command, args, ok := callbackCommand(query.Data)
	if !ok {
		return nil
	}
	return b.send(query.Message.Chat.ID, b.handle(ctx, command, args))
}

func (b *Bot) send(chatID int64, r reply) error {
	msg := tgbotapi.NewMessage(chatID, limitText(r.text, maxMessageLen))
	if r.keyboard {
		msg.ReplyMarkup = viewKeyboard()
	}
	if _, err := b.api.Send(msg); err != nil {
		return err
	}

	if r.document != "" {
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(r.document))
		if _, err := b.api.Send(doc); err != nil {
			return fmt.Errorf("could not send %s: %w", r.document, err)
		}
	}
	return nil
}

func viewKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 All", "view_all"),
			tgbotapi.NewInlineKeyboardButtonData("⬜ Pending", "view_pending"),
			tgbotapi.NewInlineKeyboardButtonData("✅ Completed", "view_completed"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💾 Save", "cmd_save"),
			tgbotapi.NewInlineKeyboardButtonData("🗑 History", "cmd_history"),
			tgbotapi.NewInlineKeyboardButtonData("📊 Status", "cmd_status"),
		),
	)
}

func callbackCommand(data string) (command, args string, ok bool) {
	if v, found := strings.CutPrefix(data, "view_"); found {
		return "list", v, true
	}
	if c, found := strings.CutPrefix(data, "cmd_"); found && c != "" {
		return c, "", true
	}
	return "", "", false
}

// parseCommand extracts "cmd args" from "@bot /cmd args" messages sent in groups.
func parseCommand(text string, botUsername string) (string, bool) {
	prefix := "@" + botUsername + " /"
	if strings.HasPrefix(text, prefix) {
		return strings.TrimPrefix(text, prefix), true
	}
	return "", false
}

func splitCommand(text string) (command, args string) {
	command, args, _ = strings.Cut(strings.TrimSpace(text), " ")
	// "/list@bot" form
	command, _, _ = strings.Cut(command, "@")
	return strings.ToLower(command), strings.TrimSpace(args)
}

// limitText cuts s to at most max UTF-16 code units, the unit Telegram counts in.
func limitText(s string, max int) string {
	if utf16Len(s) <= max {
		return s
	}
	const ellipsis = '…'
	budget := max - utf16.RuneLen(ellipsis)
	var b strings.Builder
	for _, r := range s {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if budget-n < 0 {
			break
		}
		budget -= n
		b.WriteRune(r)
	}
	b.WriteRune(ellipsis)
	return b.String()
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

type reply struct {
	text     string
	keyboard bool
	// document is a local file sent after the text.
	document string
}

// commands turns chat commands into shell actions. It does not talk to Telegram.
type commands struct {
	cfg     BotConfig
	shell   *Shell
	archive model.TaskArchive
	log     *slog.Logger
	now     func() time.Time
}

func newCommands(cfg BotConfig, shell *Shell, archive model.TaskArchive, logger *slog.Logger) *commands {
	if cfg.ExportPath == "" {
		cfg.ExportPath = DefaultExportPath
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &commands{
		cfg:     cfg,
		shell:   shell,
		archive: archive,
		log:     logger,
		now:     time.Now,
	}
}

func (c *commands) handle(ctx context.Context, command, args string) reply {
	c.log.Debug("command", "name", command, "args", args)

	switch command {
	case "start", "help":
		return reply{text: helpText(), keyboard: true}
	case "list":
		return c.list(args)
	case "add":
		return c.add(args)
	case "edit":
		return c.edit(args)
	case "delete":
		return c.mutateRow(args, "Deleted", func(i int) (View, error) { return c.shell.Delete(ctx, i) })
	case "done":
		return c.mutateRow(args, "Completed", c.shell.Complete)
	case "save":
		return c.save()
	case "load":
		v, out := c.shell.Load()
		return c.listReply("Load: "+out.String(), v)
	case "export":
		return c.export(args)
	case "import":
		path := c.pathArg(args)
		v, out := c.shell.Import(path)
		header := fmt.Sprintf("Import from %s: %s", path, out)
		// rows read before a failure stay in the collection
		if out.Count > 0 {
			header = c.autosave(header)
		}
		return c.listReply(header, v)
	case "history":
		return c.history(ctx, args)
	case "status":
		return reply{text: c.status()}
	default:
		return reply{text: fmt.Sprintf("Unknown command /%s. Try /help.", command)}
	}
}

func helpText() string {
	return strings.Join([]string{
		"📝 To-do tracker, version " + version.String(),
		"",
		"/list [all|pending|completed] show tasks",
		"/add <description> [| days] add a task, optionally due in N days",
		"/edit <#> <description> [| days] change a task",
		"/done <#> mark a task completed",
		"/delete <#> delete a task",
		"/save, /load write or read the snapshot",
		"/export [path], /import [path] CSV interchange",
		"/history [N] recently deleted tasks",
		"/status bot status",
	}, "\n")
}

func (c *commands) list(args string) reply {
	f, err := model.ParseTaskFilter(args)
	if err != nil {
		return reply{text: err.Error() + ". Use all, pending or completed."}
	}
	return c.listReply("", c.shell.SetFilter(f))
}

func (c *commands) listReply(header string, v View) reply {
	var b strings.Builder
	if header != "" {
		b.WriteString(header)
		b.WriteString("\n\n")
	}
	b.WriteString(view.Caption(v.Filter, len(v.Rows), v.Total))
	b.WriteString("\n")
	b.WriteString(view.Plain(v.Rows, c.now()))
	return reply{text: strings.TrimRight(b.String(), "\n"), keyboard: true}
}

func (c *commands) add(args string) reply {
	desc, days := splitDays(args)
	deadline, err := DeadlineInDays(days, c.now())
	if err != nil {
		return reply{text: err.Error()}
	}
	v, err := c.shell.Add(desc, deadline)
	if err != nil {
		return reply{text: err.Error() + ". Usage: /add <description> [| days]"}
	}
	return c.listReply(c.autosave("Added."), v)
}

func (c *commands) edit(args string) reply {
	num, rest, _ := strings.Cut(strings.TrimSpace(args), " ")
	index, err := ParseRowNumber(num)
	if err != nil {
		return reply{text: err.Error() + ". Usage: /edit <#> <description> [| days]"}
	}

	desc, days := splitDays(rest)
	var deadline *time.Time
	if days != "" {
		d, err := DeadlineInDays(days, c.now())
		if err != nil {
			return reply{text: err.Error()}
		}
		deadline = &d
	}

	v, err := c.shell.Edit(index, desc, deadline)
	if err != nil {
		return reply{text: err.Error()}
	}
	return c.listReply(c.autosave("Updated."), v)
}

func (c *commands) mutateRow(args, done string, fn func(int) (View, error)) reply {
	index, err := ParseRowNumber(args)
	if err != nil {
		return reply{text: err.Error()}
	}
	v, err := fn(index)
	if err != nil {
		return reply{text: fmt.Sprintf("%s: row %d", err, index+1)}
	}
	return c.listReply(c.autosave(done+"."), v)
}

func (c *commands) autosave(text string) string {
	if !c.cfg.Autosave {
		return text
	}
	if err := c.shell.Save(); err != nil {
		c.log.Error("autosave failed", "err", err)
		return text + " Autosave failed: " + err.Error()
	}
	return text
}

func (c *commands) save() reply {
	if err := c.shell.Save(); err != nil {
		return reply{text: err.Error()}
	}
	m := c.shell.Manager()
	return reply{text: fmt.Sprintf("Saved %d tasks to %s.", m.Len(), m.SnapshotPath())}
}

func (c *commands) export(args string) reply {
	path, out := c.shell.Export(c.pathArg(args))
	r := reply{text: fmt.Sprintf("Export to %s: %s", path, out)}
	if out.OK() {
		r.document = path
	}
	return r
}

func (c *commands) pathArg(args string) string {
	if p := strings.TrimSpace(args); p != "" {
		return p
	}
	return c.cfg.ExportPath
}

func (c *commands) history(ctx context.Context, args string) reply {
	if c.archive == nil {
		return reply{text: "History is not enabled."}
	}
	limit := defaultHistoryLimit
	if s := strings.TrimSpace(args); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return reply{text: fmt.Sprintf("invalid limit %q", s)}
		}
		limit = n
	}
	states, err := c.archive.ListArchived(ctx, limit)
	if err != nil {
		c.log.Error("could not list archived tasks", "err", err)
		return reply{text: "Could not read history."}
	}
	return reply{text: strings.TrimRight(view.History(states, c.now()), "\n")}
}

func (c *commands) status() string {
	m := c.shell.Manager()
	return fmt.Sprintf(
		"🤖 Bot status\n\n✅ Running\n📊 Version: %s\n📝 Tasks: %d (%d pending)\n💾 Snapshot: %s\nAutosave: %t",
		version.String(), m.Len(), len(m.Incomplete()), m.SnapshotPath(), c.cfg.Autosave,
	)
}

// splitDays splits "description | days".
func splitDays(args string) (desc, days string) {
	desc, days, _ = strings.Cut(args, "|")
	return strings.TrimSpace(desc), strings.TrimSpace(days)
}

// BotLogger sends library output to slog at debug level.
type BotLogger struct {
	log *slog.Logger
}

func (l BotLogger) Printf(msg string, args ...interface{}) {
	l.logger().Debug(fmt.Sprintf(msg, args...))
}

func (l BotLogger) Println(v ...interface{}) {
	l.logger().Debug(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (l BotLogger) logger() *slog.Logger {
	if l.log == nil {
		return slog.Default()
	}
	return l.log
}
