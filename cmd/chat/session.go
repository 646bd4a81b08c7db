package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"livechat/internal/api"
	"livechat/internal/bus"
	"livechat/internal/protocol"
	"livechat/internal/realtime"
	"livechat/internal/typing"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// session sequences REST calls with the real-time client for one signed-in user.
type session struct {
	rest    *api.Client
	client  *realtime.Client
	tracker *typing.Tracker
	out     io.Writer

	mu       sync.Mutex
	userID   string
	username string
	current  string
	offs     []bus.Registration
}

func newSession(rest *api.Client, client *realtime.Client, out io.Writer) *session {
	return &session{rest: rest, client: client, out: out}
}

func (s *session) start(ctx context.Context, username, chatID string) error {
	login, err := s.rest.Login(ctx, username)
	if err != nil {
		return errors.Wrap(err, "login")
	}
	s.userID, s.username = login.UserID, login.Username
	s.printf("logged in as %s (%s)\n", login.Username, login.UserID)

	tracker, detach := s.client.NewTypingTracker()
	s.tracker = tracker
	s.offs = append(s.offs,
		detach,
		s.client.OnConnect(s.onConnect),
		s.client.OnDisconnect(func() { s.printf("* disconnected\n") }),
		s.client.OnMessage(s.onMessage),
		s.client.OnChatUpdate(s.onChatUpdate),
		s.client.OnError(func(n protocol.ErrorNotification) { s.printf("! %s: %s\n", n.Message, n.Details) }),
		tracker.OnChange(s.onTypingChange),
	)

	s.client.Connect(login.UserID)

	chats, err := s.listChats(ctx)
	if err != nil {
		return err
	}
	if chatID == "" && len(chats) > 0 {
		chatID = chats[0].ID
	}
	if chatID != "" {
		return s.open(ctx, chatID)
	}
	return nil
}

func (s *session) close(ctx context.Context) {
	for _, off := range s.offs {
		off()
	}
	if err := s.client.Shutdown(ctx); err != nil {
		logs.Errorf("session close: %+v", err)
		return
	}
	logs.Info("session closed")
}

func (s *session) onConnect() {
	s.printf("* connected\n")
	if s.client.ResubscribesOnReconnect() {
		return
	}
	if n := s.client.Resubscribe(); n > 0 {
		logs.Infof("resubscribed %d chats", n)
	}
}

func (s *session) onMessage(n protocol.NewMessage) {
	if n.ChatID != s.chat() || n.Message.IsOwnMessage {
		return
	}
	s.printf("[%s] %s: %s\n", n.ChatID, n.Message.Sender, n.Message.Text)
}

func (s *session) onChatUpdate(n protocol.ChatUpdate) {
	if n.ChatID == s.chat() {
		return
	}
	unread := 0
	if n.UnreadCount != nil {
		unread = *n.UnreadCount
	}
	s.printf("* chat %s: %q (%d unread)\n", n.ChatID, n.LastMessage, unread)
}

func (s *session) onTypingChange(topic string, names []string) {
	switch len(names) {
	case 0:
		s.printf("[%s] nobody is typing\n", topic)
	case 1:
		s.printf("[%s] %s is typing...\n", topic, names[0])
	default:
		s.printf("[%s] %s are typing...\n", topic, strings.Join(names, ", "))
	}
}

// handle processes one input line and reports whether the session should end.
func (s *session) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return false
	case line == "/quit":
		return true
	case line == "/chats":
		if _, err := s.listChats(ctx); err != nil {
			s.printf("! %v\n", err)
		}
	case strings.HasPrefix(line, "/open "):
		if err := s.open(ctx, strings.TrimSpace(strings.TrimPrefix(line, "/open "))); err != nil {
			s.printf("! %v\n", err)
		}
	default:
		if err := s.send(ctx, line); err != nil {
			s.printf("! %v\n", err)
		}
	}
	return false
}

func (s *session) listChats(ctx context.Context) ([]api.Chat, error) {
	resp, err := s.rest.ListChats(ctx, s.userID)
	if err != nil {
		return nil, errors.Wrap(err, "list chats")
	}
	for _, c := range resp.Chats {
		unread := 0
		if c.UnreadCount != nil {
			unread = *c.UnreadCount
		}
		s.printf("  %s\t%s\t%d unread\n", c.ID, c.Name, unread)
	}
	return resp.Chats, nil
}

func (s *session) open(ctx context.Context, chatID string) error {
	if chatID == "" {
		return errors.New("empty chat id")
	}
	detail, err := s.rest.GetChatDetail(ctx, chatID, s.userID)
	if err != nil {
		return errors.Wrapf(err, "open chat %s", chatID)
	}

	s.mu.Lock()
	prev := s.current
	s.current = chatID
	s.mu.Unlock()

	if prev != "" && prev != chatID {
		s.client.Typing().Stop(prev)
		s.client.Unsubscribe(prev)
	}
	s.client.Subscribe(chatID)
	s.tracker.Open(chatID)

	s.printf("== %s ==\n", detail.Chat.Name)
	for _, m := range detail.Messages {
		sender := m.Sender
		if m.IsOwnMessage {
			sender = s.username
		}
		s.printf("%s %s: %s\n", m.Timestamp.Format("15:04"), sender, m.Text)
	}
	return nil
}

func (s *session) send(ctx context.Context, text string) error {
	chatID := s.chat()
	if chatID == "" {
		return errors.New("no chat open, use /open <id>")
	}
	s.client.Typing().Keystroke(chatID)
	defer s.client.Typing().Stop(chatID)

	if _, err := s.rest.SendMessage(ctx, chatID, text, s.userID); err != nil {
		return errors.Wrap(err, "send message")
	}
	return nil
}

func (s *session) chat() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
