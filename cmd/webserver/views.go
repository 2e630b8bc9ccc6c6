package main

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	studify "github.com/joaquimnetomagalhaes2011-lab/App-de-estudos"
)

const sessionName = "studify-session"

// viewState is one browser session's transient view state: the active quiz
// session, essay flow and chat transcript. The sessions themselves are not
// safe for concurrent use, so every handler access happens under mu. The
// busy set additionally rejects a second mutating operation for the same
// view instead of queueing it behind a slow upstream call.
type viewState struct {
	mu sync.Mutex

	busyMu sync.Mutex
	busy   map[string]bool

	quiz  *studify.QuizSession
	essay *studify.EssayFlow
	chat  *studify.ChatTranscript
}

// beginOp marks the named view busy. It returns false when a mutating
// operation for that view is already in flight.
func (v *viewState) beginOp(view string) bool {
	v.busyMu.Lock()
	defer v.busyMu.Unlock()
	if v.busy[view] {
		return false
	}
	v.busy[view] = true
	return true
}

func (v *viewState) endOp(view string) {
	v.busyMu.Lock()
	defer v.busyMu.Unlock()
	delete(v.busy, view)
}

// viewRegistry maps cookie session ids to their server-side view state.
type viewRegistry struct {
	mu     sync.Mutex
	states map[string]*viewState

	client *studify.CompletionClient
	store  *studify.Store
	log    *zap.Logger
}

func newViewRegistry(client *studify.CompletionClient, store *studify.Store, log *zap.Logger) *viewRegistry {
	return &viewRegistry{
		states: make(map[string]*viewState),
		client: client,
		store:  store,
		log:    log,
	}
}

func (r *viewRegistry) get(id string) *viewState {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[id]
	if !ok {
		state = &viewState{
			busy:  make(map[string]bool),
			quiz:  studify.NewQuizSession(r.client, r.store, r.log),
			essay: studify.NewEssayFlow(r.client, r.store, r.log),
			chat:  studify.NewChatTranscript(r.client.NewChatSession(), r.log),
		}
		r.states[id] = state
	}
	return state
}

// viewState resolves (creating if needed) the view state for the request's
// cookie session.
func (s *Server) viewState(w http.ResponseWriter, r *http.Request) *viewState {
	session, _ := s.cookies.Get(r, sessionName)

	id, ok := session.Values["vid"].(string)
	if !ok || id == "" {
		id = uuid.NewString()
		session.Values["vid"] = id
		if err := session.Save(r, w); err != nil {
			s.log.Warn("failed to save session cookie", zap.Error(err))
		}
	}
	return s.views.get(id)
}
