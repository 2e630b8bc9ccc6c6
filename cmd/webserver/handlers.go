package main

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"go.uber.org/zap"

	studify "github.com/joaquimnetomagalhaes2011-lab/App-de-estudos"
)

// response is the JSON envelope for every API reply.
type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response{Success: false, Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// errorStatus maps core errors to HTTP statuses: state violations conflict,
// upstream completion failures are bad-gateway, the rest is a bad request.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, studify.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, studify.ErrGeneration), errors.Is(err, studify.ErrAnalysis):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

// --- auth ---

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := s.auth.SignIn(req.Email)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := s.auth.SignUp(req.Email, req.Name)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.SignOut(); err != nil {
		s.log.Error("sign out failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.auth.CurrentUser()
	if err != nil {
		s.log.Error("failed to load current user", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		respondError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// --- quiz ---

// questionView is the current question as shown to the player. The correct
// option and explanation are withheld until the question is answered.
type questionView struct {
	QuestionText       string   `json:"questionText"`
	Options            []string `json:"options"`
	Answered           bool     `json:"answered"`
	CorrectOptionIndex *int     `json:"correctOptionIndex,omitempty"`
	Explanation        string   `json:"explanation,omitempty"`
}

type quizStateView struct {
	Step            studify.QuizStep   `json:"step"`
	Subject         string             `json:"subject,omitempty"`
	Difficulty      studify.Difficulty `json:"difficulty,omitempty"`
	TotalQuestions  int                `json:"totalQuestions"`
	CurrentIndex    int                `json:"currentIndex"`
	Answers         []int              `json:"answers,omitempty"`
	ShowExplanation bool               `json:"showExplanation"`
	Question        *questionView      `json:"question,omitempty"`
	Score           *int               `json:"score,omitempty"`
	Percentage      *int               `json:"percentage,omitempty"`
}

func quizState(quiz *studify.QuizSession) quizStateView {
	view := quizStateView{
		Step:            quiz.Step(),
		Subject:         quiz.Subject(),
		Difficulty:      quiz.Difficulty(),
		TotalQuestions:  len(quiz.Questions()),
		CurrentIndex:    quiz.CurrentIndex(),
		Answers:         quiz.Answers(),
		ShowExplanation: quiz.ShowExplanation(),
	}

	if question, ok := quiz.CurrentQuestion(); ok {
		answered := quiz.Answers()[quiz.CurrentIndex()] != studify.Unanswered
		qv := &questionView{
			QuestionText: question.QuestionText,
			Options:      question.Options,
			Answered:     answered,
		}
		if answered {
			correct := question.CorrectOptionIndex
			qv.CorrectOptionIndex = &correct
			qv.Explanation = question.Explanation
		}
		view.Question = qv
	}

	if _, ok := quiz.Result(); ok {
		score := quiz.Score()
		percentage := quiz.Percentage()
		view.Score = &score
		view.Percentage = &percentage
	}
	return view
}

func (s *Server) handleQuizStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subject    string `json:"subject"`
		Difficulty string `json:"difficulty"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	state := s.viewState(w, r)
	if !state.beginOp("quiz") {
		respondError(w, http.StatusConflict, "a quiz operation is already in flight")
		return
	}
	defer state.endOp("quiz")

	state.mu.Lock()
	defer state.mu.Unlock()

	if err := state.quiz.Start(r.Context(), req.Subject, studify.ParseDifficulty(req.Difficulty)); err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, quizState(state.quiz))
}

func (s *Server) handleQuizAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OptionIndex int `json:"optionIndex"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	state := s.viewState(w, r)
	if !state.beginOp("quiz") {
		respondError(w, http.StatusConflict, "a quiz operation is already in flight")
		return
	}
	defer state.endOp("quiz")

	state.mu.Lock()
	defer state.mu.Unlock()

	if err := state.quiz.Answer(req.OptionIndex); err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, quizState(state.quiz))
}

func (s *Server) handleQuizNext(w http.ResponseWriter, r *http.Request) {
	state := s.viewState(w, r)
	if !state.beginOp("quiz") {
		respondError(w, http.StatusConflict, "a quiz operation is already in flight")
		return
	}
	defer state.endOp("quiz")

	state.mu.Lock()
	defer state.mu.Unlock()

	if err := state.quiz.Advance(); err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, quizState(state.quiz))
}

func (s *Server) handleQuizReset(w http.ResponseWriter, r *http.Request) {
	state := s.viewState(w, r)
	state.mu.Lock()
	defer state.mu.Unlock()
	state.quiz.Reset()
	respondJSON(w, http.StatusOK, quizState(state.quiz))
}

func (s *Server) handleQuizState(w http.ResponseWriter, r *http.Request) {
	state := s.viewState(w, r)
	state.mu.Lock()
	defer state.mu.Unlock()
	respondJSON(w, http.StatusOK, quizState(state.quiz))
}

// --- essay ---

type essayStateView struct {
	Step   studify.EssayStep `json:"step"`
	Result *essayResultView  `json:"result,omitempty"`
}

type essayResultView struct {
	studify.EssayResult
	Tier string `json:"tier"`
}

func essayState(essay *studify.EssayFlow) essayStateView {
	view := essayStateView{Step: essay.Step()}
	if result, ok := essay.Result(); ok {
		view.Result = &essayResultView{
			EssayResult: result,
			Tier:        studify.ScoreTier(result.Score),
		}
	}
	return view
}

func (s *Server) handleEssayAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic   string `json:"topic"`
		Content string `json:"content"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	state := s.viewState(w, r)
	if !state.beginOp("essay") {
		respondError(w, http.StatusConflict, "an essay analysis is already in flight")
		return
	}
	defer state.endOp("essay")

	state.mu.Lock()
	defer state.mu.Unlock()

	if err := state.essay.Analyze(r.Context(), req.Topic, req.Content); err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, essayState(state.essay))
}

func (s *Server) handleEssayReset(w http.ResponseWriter, r *http.Request) {
	state := s.viewState(w, r)
	state.mu.Lock()
	defer state.mu.Unlock()
	state.essay.Reset()
	respondJSON(w, http.StatusOK, essayState(state.essay))
}

func (s *Server) handleEssayState(w http.ResponseWriter, r *http.Request) {
	state := s.viewState(w, r)
	state.mu.Lock()
	defer state.mu.Unlock()
	respondJSON(w, http.StatusOK, essayState(state.essay))
}

// --- chat ---

func (s *Server) handleChatSend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	state := s.viewState(w, r)
	if !state.beginOp("chat") {
		respondError(w, http.StatusConflict, "a chat message is already in flight")
		return
	}
	defer state.endOp("chat")

	state.mu.Lock()
	defer state.mu.Unlock()

	if err := state.chat.Send(r.Context(), req.Text); err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, state.chat.Messages())
}

func (s *Server) handleChatMessages(w http.ResponseWriter, r *http.Request) {
	state := s.viewState(w, r)
	state.mu.Lock()
	defer state.mu.Unlock()
	respondJSON(w, http.StatusOK, state.chat.Messages())
}

// --- history & dashboard ---

func (s *Server) handleQuizHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.store.QuizHistory()
	if err != nil {
		s.log.Error("failed to load quiz history", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, history)
}

func (s *Server) handleEssayHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.store.EssayHistory()
	if err != nil {
		s.log.Error("failed to load essay history", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, history)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	quizzes, err := s.store.QuizHistory()
	if err != nil {
		s.log.Error("failed to load quiz history", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	essays, err := s.store.EssayHistory()
	if err != nil {
		s.log.Error("failed to load essay history", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	lastScorePercent := 0
	if len(quizzes) > 0 {
		lastScorePercent = scorePercent(quizzes[0].Score, quizzes[0].TotalQuestions)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"lastScorePercent": lastScorePercent,
		"totalQuizzes":     len(quizzes),
		"totalEssays":      len(essays),
	})
}

// scorePercent is the rounded score percentage, 0 for an empty quiz.
func scorePercent(score, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}
