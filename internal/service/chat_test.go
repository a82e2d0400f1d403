package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propmap/internal/model"
)

func newTestChatService(completer Completer, sink TranscriptSink) (*ChatService, *MemorySessionStore) {
	dataset := newTestDataset()
	store := NewMemorySessionStore()
	svc := NewChatService(dataset, newTestResolver(dataset), completer, store, 10, sink)
	return svc, store
}

func TestConverseLocalTurn(t *testing.T) {
	svc, store := newTestChatService(nil, nil)

	resp, err := svc.Converse(context.Background(), &model.ChatRequest{
		SessionID: "s1",
		Message:   "how many properties are there?",
	})
	require.NoError(t, err)

	assert.Equal(t, "s1", resp.SessionID)
	assert.Contains(t, resp.Reply, "3 properties in total")
	assert.False(t, resp.AIMode)

	session, ok := store.Get("s1")
	require.True(t, ok)
	history := session.History()
	require.Len(t, history, 2)
	assert.Equal(t, model.RoleUser, history[0].Role)
	assert.Equal(t, "how many properties are there?", history[0].Text)
	assert.Equal(t, model.RoleAssistant, history[1].Role)
	assert.Equal(t, resp.Reply, history[1].Text)
}

func TestConverseGeneratesSessionID(t *testing.T) {
	svc, store := newTestChatService(nil, nil)

	resp, err := svc.Converse(context.Background(), &model.ChatRequest{Message: "hello"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.SessionID)
	_, ok := store.Get(resp.SessionID)
	assert.True(t, ok)
}

func TestConverseEmptyMessage(t *testing.T) {
	svc, _ := newTestChatService(nil, nil)

	_, err := svc.Converse(context.Background(), &model.ChatRequest{SessionID: "s1", Message: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestConverseActivePropertyCarriesAcrossTurns(t *testing.T) {
	svc, store := newTestChatService(nil, nil)

	_, err := svc.Converse(context.Background(), &model.ChatRequest{
		SessionID: "s1",
		Message:   "use property Harborview Lofts",
	})
	require.NoError(t, err)

	session, ok := store.Get("s1")
	require.True(t, ok)
	assert.Equal(t, "l-1", session.ActivePropertyID())

	resp, err := svc.Converse(context.Background(), &model.ChatRequest{
		SessionID: "s1",
		Message:   "find coffee shops near this property",
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Reply, "Blue Bottle Coffee")

	history := session.History()
	require.Len(t, history, 4)
	assert.Equal(t, []string{model.RoleUser, model.RoleAssistant, model.RoleUser, model.RoleAssistant},
		[]string{history[0].Role, history[1].Role, history[2].Role, history[3].Role})
}

func TestConverseAIModeFallsBackOnQuotaError(t *testing.T) {
	completer := &stubCompleter{err: &APIError{Kind: ErrQuotaExceeded, Status: 429, Message: "insufficient quota"}}
	svc, _ := newTestChatService(completer, nil)

	resp, err := svc.Converse(context.Background(), &model.ChatRequest{
		SessionID: "s1",
		Message:   "what is the average price of the properties?",
		AIMode:    true,
	})
	require.NoError(t, err)

	// Apology prefix plus the locally resolved answer
	assert.True(t, len(resp.Reply) > len(fallbackApology))
	assert.Equal(t, fallbackApology, resp.Reply[:len(fallbackApology)])
	assert.Contains(t, resp.Reply, "$866,666")
	assert.True(t, resp.AIMode)
}

func TestConverseAIModeFallsBackOnUnclassifiedError(t *testing.T) {
	completer := &stubCompleter{err: errors.New("connection refused")}
	svc, _ := newTestChatService(completer, nil)

	resp, err := svc.Converse(context.Background(), &model.ChatRequest{
		SessionID: "s1",
		Message:   "hello",
		AIMode:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, fallbackApology, resp.Reply[:len(fallbackApology)])
}

func TestConverseAIModeExtractsSideEffects(t *testing.T) {
	completer := &stubCompleter{reply: "Now looking at Harborview Lofts. I found 1 coffee shop near it."}
	svc, store := newTestChatService(completer, nil)

	resp, err := svc.Converse(context.Background(), &model.ChatRequest{
		SessionID: "s1",
		Message:   "pick something downtown with coffee nearby",
		AIMode:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, completer.reply, resp.Reply)
	require.Len(t, resp.SideEffects, 2)
	assert.Equal(t, model.SelectProperty("l-1"), resp.SideEffects[0])
	assert.Equal(t, model.ShowPOIs([]string{"p-2"}), resp.SideEffects[1])

	session, _ := store.Get("s1")
	assert.Equal(t, "l-1", session.ActivePropertyID())
}

func TestConverseStreamDeliversChunks(t *testing.T) {
	completer := &stubCompleter{reply: "The villa is the largest property."}
	svc, _ := newTestChatService(completer, nil)

	var chunks []*StreamChunk
	resp, err := svc.ConverseStream(context.Background(), &model.ChatRequest{
		SessionID: "s1",
		Message:   "which one is biggest?",
		AIMode:    true,
	}, func(chunk *StreamChunk) error {
		chunks = append(chunks, chunk)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, completer.reply, resp.Reply)
	require.Len(t, chunks, 2)
	assert.Equal(t, completer.reply, chunks[0].Content)
	assert.True(t, chunks[1].Done)
}

func TestConverseRejectsConcurrentTurn(t *testing.T) {
	completer := &blockingCompleter{entered: make(chan struct{}), release: make(chan struct{})}
	svc, _ := newTestChatService(completer, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.Converse(context.Background(), &model.ChatRequest{
			SessionID: "busy",
			Message:   "summarize the listings",
			AIMode:    true,
		})
	}()

	<-completer.entered
	_, err := svc.Converse(context.Background(), &model.ChatRequest{
		SessionID: "busy",
		Message:   "are you done yet?",
		AIMode:    true,
	})
	assert.ErrorIs(t, err, ErrSessionBusy)

	close(completer.release)
	<-done
}

func TestConverseForwardsTurnsToSink(t *testing.T) {
	logged := make(chan string, 4)
	sink := func(_ context.Context, sessionID, role, text string) error {
		logged <- role
		return nil
	}
	svc, _ := newTestChatService(nil, sink)

	_, err := svc.Converse(context.Background(), &model.ChatRequest{SessionID: "s1", Message: "hello"})
	require.NoError(t, err)

	assert.Equal(t, model.RoleUser, <-logged)
	assert.Equal(t, model.RoleAssistant, <-logged)
}

func TestReset(t *testing.T) {
	svc, store := newTestChatService(nil, nil)

	_, err := svc.Converse(context.Background(), &model.ChatRequest{
		SessionID: "s1",
		Message:   "use property Dockside Annex",
	})
	require.NoError(t, err)

	assert.True(t, svc.Reset("s1"))

	session, _ := store.Get("s1")
	assert.Empty(t, session.History())
	assert.Empty(t, session.ActivePropertyID())

	assert.False(t, svc.Reset("never-seen"))
}
