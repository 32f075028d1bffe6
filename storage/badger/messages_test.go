package badger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/civicsignal/civicsignal/core"
)

func TestMessageAppendAndRecent(t *testing.T) {
	_, msgRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	msg := &core.ChatMessage{
		Session: "s1",
		Role:    core.RoleUser,
		Content: "What did the board discuss?",
	}
	added, err := msgRepo.AppendMessages(ctx, msg)
	if err != nil {
		t.Fatalf("Failed to append message: %v", err)
	}
	if added[0].Id == 0 {
		t.Fatal("Expected non-zero ID")
	}
	if added[0].Timestamp.IsZero() {
		t.Fatal("Expected timestamp to be assigned")
	}

	recent, err := msgRepo.RecentMessages(ctx, "s1", 10)
	if err != nil {
		t.Fatalf("Failed to get recent messages: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(recent))
	}
	if recent[0].Content != "What did the board discuss?" {
		t.Fatalf("Unexpected content: %s", recent[0].Content)
	}
}

func TestRecentMessagesWindowAndOrder(t *testing.T) {
	_, msgRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 6; i++ {
		_, err := msgRepo.AppendMessages(ctx, &core.ChatMessage{
			Session:   "s1",
			Role:      core.RoleUser,
			Content:   fmt.Sprintf("message %d", i),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Failed to append message %d: %v", i, err)
		}
	}

	recent, err := msgRepo.RecentMessages(ctx, "s1", 4)
	if err != nil {
		t.Fatalf("Failed to get recent messages: %v", err)
	}
	if len(recent) != 4 {
		t.Fatalf("Expected 4 messages, got %d", len(recent))
	}
	// Last four messages, oldest of the window first
	for i, msg := range recent {
		want := fmt.Sprintf("message %d", i+2)
		if msg.Content != want {
			t.Fatalf("Position %d: expected %q, got %q", i, want, msg.Content)
		}
	}
}

func TestRecentMessagesSessionIsolation(t *testing.T) {
	_, msgRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	_, err = msgRepo.AppendMessages(ctx,
		&core.ChatMessage{Session: "alpha", Role: core.RoleUser, Content: "in alpha", Timestamp: now},
		&core.ChatMessage{Session: "beta", Role: core.RoleUser, Content: "in beta", Timestamp: now},
	)
	if err != nil {
		t.Fatalf("Failed to append messages: %v", err)
	}

	recent, err := msgRepo.RecentMessages(ctx, "alpha", 10)
	if err != nil {
		t.Fatalf("Failed to get recent messages: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("Expected 1 message in alpha, got %d", len(recent))
	}
	if recent[0].Content != "in alpha" {
		t.Fatalf("Unexpected content: %s", recent[0].Content)
	}

	empty, err := msgRepo.RecentMessages(ctx, "gamma", 10)
	if err != nil {
		t.Fatalf("Failed to get recent messages for empty session: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("Expected no messages in gamma, got %d", len(empty))
	}
}
