package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"Synergy_Link/internal/model"
	"Synergy_Link/internal/pkg"

	"go.uber.org/zap/zaptest"
)

type chatFixture struct {
	svc      *ChatService
	users    *fakeUsers
	matches  *fakeMatches
	messages *fakeMessages
	notifier *recordingNotifier
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	u1 := approvedUser("u1", "Aki")
	u1.Profile.ProfileImageURL = "https://cdn.test/u1.jpg"
	f := &chatFixture{
		users: newFakeUsers(u1, approvedUser("u2", "Ben"), approvedUser("u3", "Cho")),
		matches: newFakeMatches(
			model.NewMatch("u1", "u2", base),
			model.NewMatch("u3", "u1", base.Add(time.Hour)),
		),
		messages: &fakeMessages{},
		notifier: &recordingNotifier{},
	}
	f.svc = NewChatService(f.matches, f.messages, f.users, NewLocalThreadBus(), f.notifier, zaptest.NewLogger(t), nil)

	var mu sync.Mutex
	tick := base
	f.svc.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick = tick.Add(time.Second)
		return tick
	}
	return f
}

func TestListMatchesNewestFirst(t *testing.T) {
	f := newChatFixture(t)
	list, err := f.svc.ListMatches(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].MatchID != "u1:u3" || list[0].Partner.ID != "u3" {
		t.Fatalf("first = %+v, want u1:u3 with partner u3", list[0])
	}
	if list[1].MatchID != "u1:u2" || list[1].Partner.Profile.FullName != "Ben" {
		t.Fatalf("second = %+v", list[1])
	}
}

func TestListMatchesSkipsMissingPartner(t *testing.T) {
	f := newChatFixture(t)
	delete(f.users.users, "u3")

	list, err := f.svc.ListMatches(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].MatchID != "u1:u2" {
		t.Fatalf("list = %+v, want only u1:u2", list)
	}
}

func TestGetMatchAccess(t *testing.T) {
	f := newChatFixture(t)
	tests := []struct {
		name    string
		matchID string
		userID  string
		want    pkg.Kind
	}{
		{"participant", "u1:u2", "u2", ""},
		{"outsider", "u1:u2", "u3", pkg.KindForbidden},
		{"missing", "u2:u3", "u2", pkg.KindNotFound},
		{"anonymous", "u1:u2", "", pkg.KindUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.GetMatch(context.Background(), tt.matchID, tt.userID)
			if got := pkg.KindOf(err); got != tt.want {
				t.Fatalf("kind = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSendMessageValidation(t *testing.T) {
	f := newChatFixture(t)
	tests := []struct {
		name string
		text string
		want pkg.Kind
	}{
		{"empty", "", pkg.KindValidationFailed},
		{"whitespace", "  \n\t ", pkg.KindValidationFailed},
		{"markup only", "<b></b>", pkg.KindValidationFailed},
		{"too long", strings.Repeat("あ", MaxMessageLength+1), pkg.KindValidationFailed},
		{"at limit", strings.Repeat("あ", MaxMessageLength), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SendMessage(context.Background(), "u1:u2", "u1", tt.text)
			if got := pkg.KindOf(err); got != tt.want {
				t.Fatalf("kind = %q, want %q (err %v)", got, tt.want, err)
			}
		})
	}
}

func TestSendMessageByOutsiderIsForbidden(t *testing.T) {
	f := newChatFixture(t)
	_, err := f.svc.SendMessage(context.Background(), "u1:u2", "u3", "hi")
	if pkg.KindOf(err) != pkg.KindForbidden {
		t.Fatalf("err = %v, want forbidden", err)
	}
	if len(f.messages.rows) != 0 {
		t.Fatalf("message stored for outsider")
	}
}

func TestSendMessageStoresSenderAndNotifies(t *testing.T) {
	f := newChatFixture(t)
	msg, err := f.svc.SendMessage(context.Background(), "u1:u2", "u1", "  <i>hello</i> there ")
	if err != nil {
		t.Fatal(err)
	}
	if msg.Text != "hello there" {
		t.Fatalf("text = %q", msg.Text)
	}
	if msg.SenderName != "Aki" || msg.SenderAvatar != "https://cdn.test/u1.jpg" {
		t.Fatalf("sender fields = %q %q", msg.SenderName, msg.SenderAvatar)
	}
	if len(f.notifier.messages) != 1 || f.notifier.messages[0] != msg.ID {
		t.Fatalf("notified = %v", f.notifier.messages)
	}
}

func TestListMessagesNewestFirst(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	for _, text := range []string{"one", "two", "three"} {
		if _, err := f.svc.SendMessage(ctx, "u1:u2", "u1", text); err != nil {
			t.Fatal(err)
		}
	}
	list, err := f.svc.ListMessages(ctx, "u1:u2", "u2")
	if err != nil {
		t.Fatal(err)
	}
	got := []string{list[0].Text, list[1].Text, list[2].Text}
	if strings.Join(got, ",") != "three,two,one" {
		t.Fatalf("order = %v", got)
	}
	if _, err := f.svc.ListMessages(ctx, "u1:u2", "u3"); pkg.KindOf(err) != pkg.KindForbidden {
		t.Fatalf("outsider read err = %v", err)
	}
}

func TestSubscribeMessagesDeliversInitialAndUpdates(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	if _, err := f.svc.SendMessage(ctx, "u1:u2", "u2", "before"); err != nil {
		t.Fatal(err)
	}

	updates := make(chan []model.ChatMessage, 16)
	sub, err := f.svc.SubscribeMessages(ctx, "u1:u2", func(list []model.ChatMessage) {
		updates <- list
	})
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Cancel()

	first := waitUpdate(t, updates)
	if len(first) != 1 || first[0].Text != "before" {
		t.Fatalf("initial = %+v", first)
	}

	if _, err := f.svc.SendMessage(ctx, "u1:u2", "u1", "after"); err != nil {
		t.Fatal(err)
	}
	next := waitUpdate(t, updates)
	if len(next) != 2 || next[0].Text != "after" {
		t.Fatalf("update = %+v, want newest first", next)
	}
}

func TestSubscriptionCancelStopsDelivery(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	var mu sync.Mutex
	calls := 0
	sub, err := f.svc.SubscribeMessages(ctx, "u1:u2", func([]model.ChatMessage) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	if err != nil {
		t.Fatal(err)
	}
	sub.Cancel()
	sub.Cancel()

	select {
	case <-sub.Done():
	default:
		t.Fatalf("Done not closed after Cancel")
	}

	mu.Lock()
	before := calls
	mu.Unlock()
	for i := 0; i < 3; i++ {
		if _, err := f.svc.SendMessage(ctx, "u1:u2", "u1", "late"); err != nil {
			t.Fatal(err)
		}
	}
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if calls != before {
		t.Fatalf("callback ran %d times after Cancel", calls-before)
	}
}

func TestSubscriptionEndsWithContext(t *testing.T) {
	f := newChatFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	sub, err := f.svc.SubscribeMessages(ctx, "u1:u2", func([]model.ChatMessage) {})
	if err != nil {
		t.Fatal(err)
	}
	cancel()
	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatalf("subscription outlived its context")
	}
	sub.Cancel()
}

func waitUpdate(t *testing.T, ch <-chan []model.ChatMessage) []model.ChatMessage {
	t.Helper()
	select {
	case list := <-ch:
		return list
	case <-time.After(time.Second):
		t.Fatalf("no update delivered")
		return nil
	}
}
