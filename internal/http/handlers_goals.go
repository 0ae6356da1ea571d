package http

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"julius/internal/core"
)

type goalJSON struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	TargetAmount  moneyJSON `json:"target_amount"`
	CurrentAmount moneyJSON `json:"current_amount"`
	Monthly       bool      `json:"monthly"`
	Month         int       `json:"month,omitempty"`
	Year          int       `json:"year,omitempty"`
	Acknowledged  bool      `json:"acknowledged"`
}

type goalEvaluationJSON struct {
	Goal       goalJSON `json:"goal"`
	Percentage int      `json:"percentage"`
	Tier       string   `json:"tier,omitempty"`
	Completed  bool     `json:"completed"`
}

type createGoalRequest struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Target  string `json:"target"`
	Monthly bool   `json:"monthly"`
	Month   int    `json:"month"`
	Year    int    `json:"year"`
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListGoals(w, r)
	case http.MethodPost:
		s.handleCreateGoal(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		errorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleListGoals serves every goal evaluation for the requested period:
// all active goals plus the period's monthly goals.
func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := requestUserID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	year, month := parseYearMonth(r)
	evals, err := s.goals.Evaluations(ctx, userID, month, year)
	if err != nil {
		requestLogger(ctx).ErrorContext(ctx, "Goal evaluation failed", "error", err, "user_id", userID)
		errorJSON(w, http.StatusInternalServerError, "could not evaluate goals")
		return
	}

	out := make([]goalEvaluationJSON, 0, len(evals))
	for _, eval := range evals {
		out = append(out, goalEvaluationJSON{
			Goal: goalJSON{
				ID:            eval.Goal.ID,
				Name:          eval.Goal.Name,
				Type:          string(eval.Goal.Type),
				TargetAmount:  toMoneyJSON(eval.Goal.TargetAmount),
				CurrentAmount: toMoneyJSON(eval.Goal.CurrentAmount),
				Monthly:       eval.Goal.Monthly,
				Month:         eval.Goal.Month,
				Year:          eval.Goal.Year,
				Acknowledged:  eval.Goal.Acknowledged,
			},
			Percentage: eval.Percentage,
			Tier:       string(eval.Tier),
			Completed:  eval.Completed,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": out})
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := requestLogger(ctx)

	userID, err := requestUserID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	var req createGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	cents, err := core.ParseDecimalToCents(strings.TrimSpace(req.Target))
	if err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, "invalid target amount")
		return
	}

	goal := core.Goal{
		UserID:       userID,
		Name:         sanitizeInput(req.Name),
		Type:         core.TransactionType(req.Type),
		TargetAmount: core.Money{Cents: cents},
		Monthly:      req.Monthly,
		Month:        req.Month,
		Year:         req.Year,
	}
	if err := goal.Validate(); err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.storage.CreateGoal(ctx, goal)
	if err != nil {
		logger.ErrorContext(ctx, "Create goal failed", "error", err, "user_id", userID, "goal_name", goal.Name)
		errorJSON(w, http.StatusInternalServerError, "could not save goal")
		return
	}

	logger.InfoContext(ctx, "Goal created", "user_id", userID, "goal_id", id, "target_cents", cents)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

type goalProgressRequest struct {
	Amount string `json:"amount"`
}

// handleGoalAction dispatches /api/goals/{id}/{action} requests. ack
// publishes the acknowledgement and returns immediately (the worker applies
// it); progress adjusts the saved amount synchronously.
func (s *Server) handleGoalAction(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/goals/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || (parts[1] != "ack" && parts[1] != "progress") {
		errorJSON(w, http.StatusNotFound, "not found")
		return
	}
	goalID, action := parts[0], parts[1]

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		errorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()
	userID, err := requestUserID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	if action == "progress" {
		s.handleGoalProgress(w, r, userID, goalID)
		return
	}

	s.goals.Acknowledge(ctx, userID, goalID)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// handleGoalProgress moves a goal's current amount by a signed delta, e.g.
// {"amount": "-50,00"} takes R$ 50,00 back out of the goal. The amount parser
// only deals in positive values, so the sign is peeled off here.
func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request, userID, goalID string) {
	ctx := r.Context()

	var req goalProgressRequest
	if err := decodeJSON(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	amount := strings.TrimSpace(req.Amount)
	negative := strings.HasPrefix(amount, "-")
	cents, err := core.ParseDecimalToCents(strings.TrimPrefix(amount, "-"))
	if err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}
	if negative {
		cents = -cents
	}

	if err := s.storage.AddGoalProgress(ctx, userID, goalID, cents); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			errorJSON(w, http.StatusNotFound, "goal not found")
			return
		}
		requestLogger(ctx).ErrorContext(ctx, "Add goal progress failed",
			"error", err, "user_id", userID, "goal_id", goalID)
		errorJSON(w, http.StatusInternalServerError, "could not update goal")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"goal_id": goalID, "delta_cents": cents})
}
