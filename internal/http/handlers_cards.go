package http

import (
	"net/http"

	"julius/internal/core"
)

type cardJSON struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	DueDay int    `json:"due_day"`
	Color  string `json:"color,omitempty"`
	Icon   string `json:"icon,omitempty"`
}

type createCardRequest struct {
	Name   string `json:"name"`
	DueDay int    `json:"due_day"`
	Color  string `json:"color"`
	Icon   string `json:"icon"`
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListCards(w, r)
	case http.MethodPost:
		s.handleCreateCard(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		errorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := requestUserID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	cards, err := s.storage.CreditCards(ctx, userID)
	if err != nil {
		requestLogger(ctx).ErrorContext(ctx, "List cards failed", "error", err, "user_id", userID)
		errorJSON(w, http.StatusInternalServerError, "could not list cards")
		return
	}

	out := make([]cardJSON, 0, len(cards))
	for _, card := range cards {
		out = append(out, cardJSON{
			ID:     card.ID,
			Name:   card.Name,
			DueDay: card.DueDay,
			Color:  card.Color,
			Icon:   card.Icon,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"cards": out})
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := requestLogger(ctx)

	userID, err := requestUserID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	var req createCardRequest
	if err := decodeJSON(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	card := core.CreditCard{
		UserID: userID,
		Name:   sanitizeInput(req.Name),
		DueDay: req.DueDay,
		Color:  sanitizeInput(req.Color),
		Icon:   sanitizeInput(req.Icon),
	}
	if err := card.Validate(); err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.storage.CreateCreditCard(ctx, card)
	if err != nil {
		logger.ErrorContext(ctx, "Create card failed", "error", err, "user_id", userID, "card_name", card.Name)
		errorJSON(w, http.StatusInternalServerError, "could not save card")
		return
	}

	logger.InfoContext(ctx, "Card created", "user_id", userID, "card_id", id, "due_day", card.DueDay)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}
