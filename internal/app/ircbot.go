package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ergochat/irc-go/ircevent"
	"github.com/ergochat/irc-go/ircmsg"

	"minutes_linker/internal/config"
	"minutes_linker/internal/logging"
	"minutes_linker/internal/models"
	"minutes_linker/internal/ratelimit"
)

const (
	botName        = "minutes_linker"
	botVersion     = "0.3.0"
	botDescription = "a bot linking GitHub issues to the minutes where they were discussed"
	botHomepage    = "https://github.com/w3c/minutes_linker"
	actionPrefix   = "\x01ACTION "
)

// ChatClient is the part of an IRC connection the bot talks through.
type ChatClient interface {
	Privmsg(target, message string) error
	Action(target, message string) error
	Join(channel string) error
	Part(channel string) error
	CurrentNick() string
}

// Message is a PRIVMSG received by the bot.
type Message struct {
	Target string
	Sender string
	Text   string
	Action bool
}

// ResponseTarget is the channel the message was sent to, or its sender for private messages.
func (m Message) ResponseTarget() string {
	if isChannel(m.Target) {
		return m.Target
	}
	return m.Sender
}

func isChannel(name string) bool {
	return strings.HasPrefix(name, "#") || strings.HasPrefix(name, "&")
}

// Bot is the chat front end: it runs engines on request and narrates their outcomes.
type Bot struct {
	client   ChatClient
	cfg      *config.Config
	deps     Deps
	governor *ratelimit.Keyed
	logger   *slog.Logger
	wg       sync.WaitGroup
}

func NewBot(client ChatClient, cfg *config.Config, deps Deps) *Bot {
	delay := time.Duration(cfg.IRC.ResponseDelayMS) * time.Millisecond
	if delay <= 0 {
		delay = time.Second
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	return &Bot{
		client:   client,
		cfg:      cfg,
		deps:     deps,
		governor: ratelimit.NewKeyed(delay),
		logger:   deps.Logger,
	}
}

func NewIRCConnection(cfg config.IRCConfig) *ircevent.Connection {
	return &ircevent.Connection{
		Server:      net.JoinHostPort(cfg.Server, strconv.Itoa(cfg.Port)),
		Nick:        cfg.Nick,
		User:        cfg.Username,
		RealName:    cfg.RealName,
		Password:    cfg.Password,
		UseTLS:      cfg.UseTLS,
		QuitMessage: "bye",
	}
}

// Serve connects conn and handles IRC events until ctx is done or the connection ends.
// In-flight commands are cancelled in both cases.
func (b *Bot) Serve(ctx context.Context, conn *ircevent.Connection) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	conn.AddConnectCallback(func(ircmsg.Message) {
		b.logger.Info("identified", "nick", conn.CurrentNick())
		for _, channel := range b.cfg.IRC.Channels {
			if err := conn.Join(channel); err != nil {
				b.logger.Error("IRC error", "error", err)
			}
		}
	})
	conn.AddCallback("INVITE", func(e ircmsg.Message) {
		if len(e.Params) < 2 {
			return
		}
		b.spawn(func() { b.Invited(ctx, e.Params[1]) })
	})
	conn.AddCallback("KICK", func(e ircmsg.Message) {
		if len(e.Params) > 0 {
			b.logger.Info("leaving channel after being kicked", "channel", e.Params[0])
		}
	})
	conn.AddCallback("PRIVMSG", func(e ircmsg.Message) {
		b.dispatch(ctx, e, false)
	})
	conn.AddCallback("CTCP_ACTION", func(e ircmsg.Message) {
		b.dispatch(ctx, e, true)
	})

	b.logger.Info("connecting", "server", conn.Server)
	if err := conn.Connect(); err != nil {
		return fmt.Errorf("connect to %s: %w", conn.Server, err)
	}
	b.supervise(ctx, cancel, conn.Loop, conn.Quit)
	return nil
}

// supervise runs loop until it returns or ctx is done, then cancels the
// handlers still running and waits for them.
func (b *Bot) supervise(ctx context.Context, cancel context.CancelFunc, loop, quit func()) {
	done := make(chan struct{})
	go func() {
		loop()
		close(done)
	}()
	select {
	case <-ctx.Done():
		quit()
		<-done
	case <-done:
		b.logger.Warn("connection closed, stopping running commands")
	}
	cancel()
	b.wg.Wait()
}

func (b *Bot) spawn(f func()) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		f()
	}()
}

func (b *Bot) dispatch(ctx context.Context, e ircmsg.Message, action bool) {
	if len(e.Params) < 2 {
		return
	}
	text := e.Params[len(e.Params)-1]
	if strings.HasPrefix(text, actionPrefix) {
		action = true
		text = strings.TrimPrefix(text, actionPrefix)
	}
	msg := Message{
		Target: e.Params[0],
		Sender: e.Nick(),
		Text:   strings.TrimSuffix(text, "\x01"),
		Action: action,
	}
	// a long run must not block the IRC read loop
	b.spawn(func() { b.HandleMessage(ctx, msg) })
}

// Wait blocks until every spawned handler returned.
func (b *Bot) Wait() {
	b.wg.Wait()
}

// forMe returns the command of a message addressed to the bot as "<nick>, <command>".
func (b *Bot) forMe(text string) (string, bool) {
	content := strings.TrimSpace(text)
	rest, ok := strings.CutPrefix(content, b.client.CurrentNick())
	if !ok {
		return "", false
	}
	return strings.CutPrefix(rest, ", ")
}

func (b *Bot) Invited(ctx context.Context, channel string) {
	if err := b.governor.Wait(ctx, channel); err != nil {
		return
	}
	if err := b.client.Join(channel); err != nil {
		b.logger.Error("IRC error", "error", err)
		return
	}
	b.logger.Info("joining channel after being invited", "channel", channel)
}

// HandleMessage runs the command in msg, if it is addressed to the bot.
func (b *Bot) HandleMessage(ctx context.Context, msg Message) {
	cmdStr, ok := b.forMe(msg.Text)
	if !ok {
		return
	}
	cmd := ParseCommand(cmdStr)
	b.logger.Debug("got command", "target", msg.Target, "command", cmdStr)

	var err error
	switch cmd.Kind {
	case CommandBye:
		err = b.bye(ctx, msg)
	case CommandHelp:
		err = b.help(ctx, msg)
	case CommandLinkIssues:
		err = b.linkIssues(ctx, cmd, msg)
	case CommandDebug:
		err = b.debug(ctx, cmd, msg)
	default:
		err = b.respond(ctx, msg, fmt.Sprintf("sorry %s, I don't understand %q", nickOr(msg.Sender), cmdStr))
	}
	if err != nil {
		b.logger.Error("command failed", "command", cmdStr, "error", err)
		_ = b.respond(ctx, msg, fmt.Sprintf("Something wrong happened: %v", err))
	}
}

func nickOr(nick string) string {
	if nick == "" {
		return "people"
	}
	return nick
}

func (b *Bot) bye(ctx context.Context, msg Message) error {
	if !isChannel(msg.Target) {
		return nil
	}
	if err := b.governor.Wait(ctx, msg.Target); err != nil {
		return err
	}
	return b.client.Part(msg.Target)
}

func (b *Bot) help(ctx context.Context, msg Message) error {
	for _, line := range []string{
		fmt.Sprintf("%s, I am %s.", nickOr(msg.Sender), botDescription),
		fmt.Sprintf("... I am an instance of %s version %s.", botName, botVersion),
		fmt.Sprintf("... To know more, see %s", botHomepage),
	} {
		if err := b.respond(ctx, msg, line); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) linkIssues(ctx context.Context, cmd Command, msg Message) error {
	target := msg.ResponseTarget()
	b.logger.Info("linking issues", "channel", target)

	args := b.cfg.NewEngineArgs(target, config.Today())
	args.Transcript = cmd.Transcript
	args.Groups = cmd.Groups
	return b.run(ctx, msg, args)
}

func (b *Bot) debug(ctx context.Context, cmd Command, msg Message) error {
	target := msg.ResponseTarget()
	b.logger.Info("debug", "channel", target, "date", cmd.Date, "groups", cmd.Groups)

	date := config.Today()
	if cmd.Date != "" {
		var err error
		if date, err = config.ParseDate(cmd.Date); err != nil {
			return err
		}
	}
	args := b.cfg.NewEngineArgs(target, date)
	args.Transcript = true
	args.DryRun = true
	args.Groups = cmd.Groups
	return b.run(ctx, msg, args)
}

// run drains one engine sequentially, narrating each outcome in order.
func (b *Bot) run(ctx context.Context, msg Message, args config.EngineArgs) error {
	engine, err := NewEngine(ctx, args, b.deps)
	if err != nil {
		return err
	}
	count := 0
	for outcome := range engine.Run(ctx) {
		count++
		if err := b.respond(ctx, msg, narrate(outcome)); err != nil {
			return err
		}
	}
	if count == 0 {
		return b.respond(ctx, msg, "nothing to do (no issue in the (sub)topics)")
	}
	return nil
}

func narrate(o models.Outcome) string {
	switch o.Kind {
	case models.OutcomeCreated:
		return "comment created: " + o.Comment
	case models.OutcomeDuplicate:
		return "comment already there: " + o.Comment
	case models.OutcomeFaked:
		return "comment would have been created for: " + o.Issue
	case models.OutcomeNotOwned:
		return fmt.Sprintf("issue %s not owned by current group(s)", o.Issue)
	case models.OutcomeError:
		return fmt.Sprintf("a problem occurred when processing %s", o.Issue)
	default:
		panic(fmt.Sprintf("unexpected outcome kind %d", o.Kind))
	}
}

func (b *Bot) respond(ctx context.Context, msg Message, response string) error {
	target := msg.ResponseTarget()
	if err := b.governor.Wait(ctx, target); err != nil {
		return err
	}
	if msg.Action {
		return b.client.Action(target, response)
	}
	return b.client.Privmsg(target, response)
}
