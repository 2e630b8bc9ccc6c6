package main

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	studify "github.com/joaquimnetomagalhaes2011-lab/App-de-estudos"
)

// Server holds the shared application dependencies. Per-browser view state
// lives in the views registry, keyed by the cookie session id.
type Server struct {
	cfg     *studify.Config
	log     *zap.Logger
	store   *studify.Store
	client  *studify.CompletionClient
	auth    *studify.AuthService
	cookies *sessions.CookieStore
	views   *viewRegistry
	limiter *rate.Limiter
}

func main() {
	cfg, err := studify.LoadConfig(".")
	if err != nil {
		panic(err)
	}

	log := studify.NewLogger(cfg)
	defer log.Sync()

	if cfg.OpenAI.APIKey == "" {
		log.Fatal("OPENAI_API_KEY is required")
	}

	store, err := studify.OpenStore(cfg.Database.Path, log)
	if err != nil {
		log.Fatal("failed to open store", zap.Error(err))
	}
	defer store.Close()

	client := studify.NewCompletionClient(cfg.OpenAI, log)
	if cfg.Log.CompletionLogs {
		llmLog, err := studify.NewCompletionLogger(uuid.NewString())
		if err != nil {
			log.Warn("completion logging disabled", zap.Error(err))
		} else {
			client.SetCompletionLogger(llmLog)
			defer llmLog.Close()
		}
	}

	server := &Server{
		cfg:     cfg,
		log:     log,
		store:   store,
		client:  client,
		auth:    studify.NewAuthService(store),
		cookies: sessions.NewCookieStore([]byte(cfg.Session.Secret)),
		views:   newViewRegistry(client, store, log),
		limiter: rate.NewLimiter(rate.Limit(50), 100),
	}

	handler := server.routes()

	log.Info("starting server", zap.String("port", cfg.Server.Port))
	if err := http.ListenAndServe(":"+cfg.Server.Port, handler); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

// routes builds the API handler tree.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/signin", s.handleSignIn)
	mux.HandleFunc("POST /api/auth/signup", s.handleSignUp)
	mux.HandleFunc("POST /api/auth/signout", s.handleSignOut)
	mux.HandleFunc("GET /api/auth/me", s.handleMe)

	mux.HandleFunc("POST /api/quiz/start", s.requireUser(s.handleQuizStart))
	mux.HandleFunc("POST /api/quiz/answer", s.requireUser(s.handleQuizAnswer))
	mux.HandleFunc("POST /api/quiz/next", s.requireUser(s.handleQuizNext))
	mux.HandleFunc("POST /api/quiz/reset", s.requireUser(s.handleQuizReset))
	mux.HandleFunc("GET /api/quiz/state", s.requireUser(s.handleQuizState))

	mux.HandleFunc("POST /api/essay/analyze", s.requireUser(s.handleEssayAnalyze))
	mux.HandleFunc("POST /api/essay/reset", s.requireUser(s.handleEssayReset))
	mux.HandleFunc("GET /api/essay/state", s.requireUser(s.handleEssayState))

	mux.HandleFunc("POST /api/chat/send", s.requireUser(s.handleChatSend))
	mux.HandleFunc("GET /api/chat/messages", s.requireUser(s.handleChatMessages))

	mux.HandleFunc("GET /api/history/quizzes", s.requireUser(s.handleQuizHistory))
	mux.HandleFunc("GET /api/history/essays", s.requireUser(s.handleEssayHistory))
	mux.HandleFunc("GET /api/dashboard", s.requireUser(s.handleDashboard))

	return s.rateLimit(mux)
}

// rateLimit applies a global request budget to the whole API.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			respondError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireUser rejects requests when nobody is signed in.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.auth.CurrentUser()
		if err != nil {
			s.log.Error("failed to load current user", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if user == nil {
			respondError(w, http.StatusUnauthorized, "sign in required")
			return
		}
		next(w, r)
	}
}
