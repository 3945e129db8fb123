package realtime

import (
	"encoding/json"
	"testing"
)

func TestBroadcastNoSubscribersIsNoop(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r)
	c := &fakeConn{userID: 1}
	r.Register(c)

	b.Broadcast("chat-1", ChatDeletedEvent("chat-1"))
	if c.sentCount() != 0 {
		t.Fatalf("expected nothing delivered to an unsubscribed connection")
	}
}

func TestBroadcastFansOutToSubscribersOnly(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r)
	a := &fakeConn{userID: 1}
	c := &fakeConn{userID: 2}
	outsider := &fakeConn{userID: 3}
	for _, fc := range []*fakeConn{a, c, outsider} {
		r.Register(fc)
	}
	r.Subscribe("chat-1", a)
	r.Subscribe("chat-1", c)
	r.Subscribe("chat-2", outsider)

	body := "hello"
	b.Broadcast("chat-1", NewMessageEvent("chat-1", MessageView{ID: "m1", Type: "text", Content: &body, SenderID: 1}))

	for _, fc := range []*fakeConn{a, c} {
		if fc.sentCount() != 1 {
			t.Fatalf("expected exactly one payload for user %d, got %d", fc.userID, fc.sentCount())
		}
	}
	if outsider.sentCount() != 0 {
		t.Fatalf("payload leaked to a different chat's subscriber")
	}

	var ev struct {
		Type    string `json:"type"`
		ChatID  string `json:"chatId"`
		Message struct {
			ID       string  `json:"id"`
			Content  *string `json:"content"`
			SenderID uint    `json:"senderId"`
		} `json:"message"`
	}
	if err := json.Unmarshal(a.sent[0], &ev); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if ev.Type != EventNewMessage || ev.ChatID != "chat-1" {
		t.Fatalf("unexpected envelope: type=%q chatId=%q", ev.Type, ev.ChatID)
	}
	if ev.Message.ID != "m1" || ev.Message.Content == nil || *ev.Message.Content != "hello" || ev.Message.SenderID != 1 {
		t.Fatalf("unexpected message body: %+v", ev.Message)
	}
}

func TestBroadcastDropsFailedConnection(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r)
	bad := &fakeConn{userID: 1, fail: true}
	good := &fakeConn{userID: 2}
	r.Register(bad)
	r.Register(good)
	r.Subscribe("chat-1", bad)
	r.Subscribe("chat-1", good)

	b.Broadcast("chat-1", ChatDeletedEvent("chat-1"))

	if good.sentCount() != 1 {
		t.Fatalf("a failing peer must not block delivery to the rest")
	}
	subs := r.Subscribers("chat-1")
	if len(subs) != 1 || subs[0] != good {
		t.Fatalf("expected failed connection deregistered, got %d subscribers", len(subs))
	}

	// subsequent broadcasts no longer attempt the dead connection
	b.Broadcast("chat-1", ChatDeletedEvent("chat-1"))
	if good.sentCount() != 2 {
		t.Fatalf("expected second delivery to surviving connection")
	}
}

func TestChatDeletedEventOmitsMessage(t *testing.T) {
	payload, err := json.Marshal(ChatDeletedEvent("chat-9"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := raw["message"]; ok {
		t.Fatalf("chat_deleted event must not carry a message body")
	}
	if string(raw["type"]) != `"chat_deleted"` || string(raw["chatId"]) != `"chat-9"` {
		t.Fatalf("unexpected event payload: %s", payload)
	}
}
