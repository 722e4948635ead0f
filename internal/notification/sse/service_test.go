package sse

import (
	"testing"

	"leadpipeline_backend/platform/logger"

	"github.com/google/uuid"
)

func TestPublishReachesEveryStreamOfTheUser(t *testing.T) {
	s := New(logger.NewNop())
	userID := uuid.New()
	first := &client{userID: userID, events: make(chan Event, 1)}
	second := &client{userID: userID, events: make(chan Event, 1)}
	other := &client{userID: uuid.New(), events: make(chan Event, 1)}
	s.addClient(first)
	s.addClient(second)
	s.addClient(other)

	delivered := s.Publish(userID, Event{Type: EventNotification, Message: "hello"})
	if delivered != 2 {
		t.Fatalf("expected 2 deliveries, got %d", delivered)
	}
	if got := (<-first.events).Message; got != "hello" {
		t.Fatalf("expected hello, got %q", got)
	}
	if len(other.events) != 0 {
		t.Fatalf("expected other user to receive nothing")
	}
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	s := New(logger.NewNop())
	userID := uuid.New()
	c := &client{userID: userID, events: make(chan Event, 1)}
	s.addClient(c)

	s.Publish(userID, Event{Type: EventNotification})
	if delivered := s.Publish(userID, Event{Type: EventNotification}); delivered != 0 {
		t.Fatalf("expected full buffer to drop, got %d deliveries", delivered)
	}
}

func TestRemoveClientForgetsUser(t *testing.T) {
	s := New(logger.NewNop())
	userID := uuid.New()
	c := &client{userID: userID, events: make(chan Event, 1)}
	s.addClient(c)
	s.removeClient(c)

	if n := s.Connected(userID); n != 0 {
		t.Fatalf("expected 0 connections, got %d", n)
	}
	if _, open := <-c.events; open {
		t.Fatalf("expected channel to be closed")
	}
}
