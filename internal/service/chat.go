package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"propmap/internal/model"
)

// fallbackApology prefixes the local answer when the external LLM call failed
const fallbackApology = "I'm having trouble reaching the AI service right now. "

var (
	// ErrSessionBusy is returned when a turn is submitted while another is
	// still resolving for the same session. Turns are strictly serialized;
	// a second submission is rejected, never interleaved.
	ErrSessionBusy = errors.New("session is already resolving a turn")

	// ErrEmptyMessage is returned for a blank utterance
	ErrEmptyMessage = errors.New("message is empty")
)

// Session holds one conversation: history (append-ordered by submission),
// the active property reference, and the AI-mode toggle. All mutation happens
// under mu inside a single resolution step.
type Session struct {
	ID string

	mu       sync.Mutex
	history  []model.ChatTurn
	activeID string
	aiMode   bool
	model    string
}

// History returns a copy of the conversation history
func (s *Session) History() []model.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ChatTurn, len(s.history))
	copy(out, s.history)
	return out
}

// ActivePropertyID returns the current active property id, or ""
func (s *Session) ActivePropertyID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// SessionStore is the injected capability holding live sessions; the core
// never keeps them in ambient globals
type SessionStore interface {
	Get(id string) (*Session, bool)
	Put(session *Session)
	Delete(id string)
}

// MemorySessionStore is the default in-process SessionStore
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemorySessionStore creates an empty in-memory session store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*Session)}
}

func (m *MemorySessionStore) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *MemorySessionStore) Put(session *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
}

func (m *MemorySessionStore) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// TranscriptSink receives resolved turns for best-effort logging
type TranscriptSink func(ctx context.Context, sessionID, role, text string) error

// ChatService orchestrates chat turns: it resolves each utterance (local
// cascade or external LLM with local fallback), appends to history, and
// returns side effects for the map layer.
type ChatService struct {
	dataset       *model.Dataset
	resolver      *Resolver
	completer     Completer
	store         SessionStore
	historyWindow int
	sink          TranscriptSink
}

// NewChatService creates a chat service. completer may be nil (AI mode then
// always resolves locally); sink may be nil.
func NewChatService(dataset *model.Dataset, resolver *Resolver, completer Completer, store SessionStore, historyWindow int, sink TranscriptSink) *ChatService {
	return &ChatService{
		dataset:       dataset,
		resolver:      resolver,
		completer:     completer,
		store:         store,
		historyWindow: historyWindow,
		sink:          sink,
	}
}

// session returns the existing session or creates a fresh one
func (c *ChatService) session(id string) *Session {
	if id != "" {
		if s, ok := c.store.Get(id); ok {
			return s
		}
	}
	s := &Session{ID: id}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	c.store.Put(s)
	return s
}

// Converse resolves one user turn for a session
func (c *ChatService) Converse(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	return c.converse(ctx, req, nil)
}

// ConverseStream resolves one user turn, streaming AI-mode thinking/content
// chunks through the callback. Local-mode turns produce no chunks, only the
// final response.
func (c *ChatService) ConverseStream(ctx context.Context, req *model.ChatRequest, callback StreamCallback) (*model.ChatResponse, error) {
	return c.converse(ctx, req, callback)
}

func (c *ChatService) converse(ctx context.Context, req *model.ChatRequest, callback StreamCallback) (*model.ChatResponse, error) {
	utterance := strings.TrimSpace(req.Message)
	if utterance == "" {
		return nil, ErrEmptyMessage
	}

	start := time.Now()
	session := c.session(req.SessionID)

	// One turn in flight per session. The lock is held for the whole
	// resolution (including the external call) so history stays ordered by
	// submission; a concurrent submission is rejected.
	if !session.mu.TryLock() {
		return nil, ErrSessionBusy
	}
	defer session.mu.Unlock()

	session.aiMode = req.AIMode
	if req.Model != "" {
		session.model = req.Model
	}

	result := c.resolveTurn(ctx, session, utterance, callback)

	now := time.Now()
	session.history = append(session.history,
		model.ChatTurn{Role: model.RoleUser, Text: utterance, Timestamp: now},
		model.ChatTurn{Role: model.RoleAssistant, Text: result.Reply, Timestamp: now},
	)
	c.logTurns(session.ID, utterance, result.Reply)

	return &model.ChatResponse{
		SessionID:   session.ID,
		Reply:       result.Reply,
		SideEffects: result.SideEffects,
		AIMode:      session.aiMode,
		Took:        time.Since(start).Milliseconds(),
	}, nil
}

// resolveTurn produces the turn's result and applies the active-property
// change. Caller holds the session lock.
func (c *ChatService) resolveTurn(ctx context.Context, session *Session, utterance string, callback StreamCallback) model.ChatResult {
	if session.aiMode && c.completer != nil && c.completer.IsEnabled() {
		result, err := c.resolveExternal(ctx, session, utterance, callback)
		if err == nil {
			return result
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) {
			log.Printf("LLM call failed (%s), falling back to local resolution: %v", apiErr.Kind, err)
		} else {
			log.Printf("LLM call failed, falling back to local resolution: %v", err)
		}

		local := c.resolveLocal(session, utterance)
		local.Reply = fallbackApology + local.Reply
		return local
	}

	return c.resolveLocal(session, utterance)
}

func (c *ChatService) resolveLocal(session *Session, utterance string) model.ChatResult {
	res := c.resolver.Resolve(utterance, session.activeID)
	if res.ActivePropertyID != nil {
		session.activeID = *res.ActivePropertyID
	}
	return res.Result
}

func (c *ChatService) resolveExternal(ctx context.Context, session *Session, utterance string, callback StreamCallback) (model.ChatResult, error) {
	active := c.dataset.ListingByID(session.activeID)
	messages := buildMessages(c.dataset, active, session.history, utterance, c.historyWindow)

	var reply string
	var err error
	if callback != nil {
		reply, err = c.completer.CompleteStream(ctx, messages, session.model, callback)
	} else {
		reply, err = c.completer.Complete(ctx, messages, session.model)
	}
	if err != nil {
		return model.ChatResult{}, err
	}

	// Keep the map in sync with what the model claims to have done
	effects, newActiveID := ExtractSideEffectsFromText(c.dataset, session.activeID, reply)
	if newActiveID != "" {
		session.activeID = newActiveID
	}

	return model.ChatResult{Reply: reply, SideEffects: effects}, nil
}

// Reset clears a session's history and active property
func (c *ChatService) Reset(sessionID string) bool {
	session, ok := c.store.Get(sessionID)
	if !ok {
		return false
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	session.history = nil
	session.activeID = ""
	return true
}

func (c *ChatService) logTurns(sessionID, userText, assistantText string) {
	if c.sink == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.sink(ctx, sessionID, model.RoleUser, userText); err != nil {
			log.Printf("Warning: failed to log user turn: %v", err)
			return
		}
		if err := c.sink(ctx, sessionID, model.RoleAssistant, assistantText); err != nil {
			log.Printf("Warning: failed to log assistant turn: %v", err)
		}
	}()
}
