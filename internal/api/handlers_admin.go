package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/hackerloum/mshikotap/internal/domain"
	"github.com/hackerloum/mshikotap/internal/service"
)

func (h *Handlers) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ledger.Stats(r.Context(), ActorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type taskRequestBody struct {
	Title        string                   `json:"title"`
	Description  string                   `json:"description"`
	Type         domain.TaskType          `json:"type"`
	Reward       decimal.Decimal          `json:"reward"`
	Status       domain.TaskStatus        `json:"status"`
	URL          string                   `json:"url"`
	ExpiresAt    *time.Time               `json:"expires_at"`
	Requirements *domain.TaskRequirements `json:"requirements"`
}

func (b taskRequestBody) toInput() service.TaskInput {
	return service.TaskInput{
		Title:        b.Title,
		Description:  b.Description,
		Type:         b.Type,
		Reward:       b.Reward,
		Status:       b.Status,
		URL:          b.URL,
		ExpiresAt:    b.ExpiresAt,
		Requirements: b.Requirements,
	}
}

func (h *Handlers) AdminListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.List(r.Context(), ActorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *Handlers) AdminCreateTask(w http.ResponseWriter, r *http.Request) {
	var body taskRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed body"})
		return
	}

	task, err := h.tasks.Create(r.Context(), ActorFrom(r.Context()), body.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *Handlers) AdminUpdateTask(w http.ResponseWriter, r *http.Request) {
	var body taskRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed body"})
		return
	}

	task, err := h.tasks.Update(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "id"), body.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handlers) AdminDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.tasks.Delete(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) AdminPendingWithdrawals(w http.ResponseWriter, r *http.Request) {
	out, err := h.ledger.PendingWithdrawals(r.Context(), ActorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type resolveRequestBody struct {
	Decision domain.WithdrawalDecision `json:"decision"`
}

type resolveResponse struct {
	Request *domain.WithdrawalRequest `json:"request"`
	Account *accountResponse          `json:"account,omitempty"`
}

func (h *Handlers) AdminResolveWithdrawal(w http.ResponseWriter, r *http.Request) {
	var body resolveRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed body"})
		return
	}

	wr, acct, err := h.ledger.ResolveWithdrawal(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "id"), body.Decision)
	if err != nil {
		writeError(w, err)
		return
	}

	h.notifier.WithdrawalResolved(wr)

	resp := resolveResponse{Request: wr}
	if acct != nil {
		a := toAccountResponse(acct)
		resp.Account = &a
	}
	writeJSON(w, http.StatusOK, resp)
}

type reviewRequestBody struct {
	Approve bool `json:"approve"`
}

func (h *Handlers) AdminReviewAssignment(w http.ResponseWriter, r *http.Request) {
	var body reviewRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed body"})
		return
	}

	a, err := h.assignments.Review(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "id"), body.Approve)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
