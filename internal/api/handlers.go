package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/hackerloum/mshikotap/internal/domain"
	"github.com/hackerloum/mshikotap/internal/notify"
	"github.com/hackerloum/mshikotap/internal/service"
)

type Handlers struct {
	accounts    *service.AccountService
	ledger      *service.LedgerService
	tasks       *service.TaskService
	assignments *service.AssignmentService
	notifier    *notify.Notifier
}

type Deps struct {
	Accounts    *service.AccountService
	Ledger      *service.LedgerService
	Tasks       *service.TaskService
	Assignments *service.AssignmentService
	Notifier    *notify.Notifier
}

func New(deps Deps) *Handlers {
	return &Handlers{
		accounts:    deps.Accounts,
		ledger:      deps.Ledger,
		tasks:       deps.Tasks,
		assignments: deps.Assignments,
		notifier:    deps.Notifier,
	}
}

type accountResponse struct {
	ID             string          `json:"id"`
	FullName       string          `json:"full_name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Role           domain.Role     `json:"role"`
	Balance        decimal.Decimal `json:"balance"`
	TotalEarnings  decimal.Decimal `json:"total_earnings"`
	CompletedTasks int             `json:"completed_tasks"`
	ReferralCode   string          `json:"referral_code"`
	ReferredBy     *string         `json:"referred_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

func toAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{
		ID:             a.ID,
		FullName:       a.FullName,
		Email:          a.Email,
		Phone:          a.Phone,
		Role:           a.Role,
		Balance:        a.Balance,
		TotalEarnings:  a.TotalEarnings,
		CompletedTasks: a.CompletedTasks,
		ReferralCode:   a.ReferralCode,
		ReferredBy:     a.ReferredBy,
		CreatedAt:      a.CreatedAt,
	}
}

type signupRequest struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	ReferredBy string `json:"referred_by"`
}

func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed body"})
		return
	}

	actor := ActorFrom(r.Context())
	acct, err := h.accounts.Register(r.Context(), service.RegisterInput{
		ID:         actor.AccountID,
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		ReferredBy: req.ReferredBy,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	h.notifier.Registration(acct)
	writeJSON(w, http.StatusCreated, toAccountResponse(acct))
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	acct, err := h.accounts.Get(r.Context(), ActorFrom(r.Context()).AccountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(acct))
}

func (h *Handlers) MyLedger(w http.ResponseWriter, r *http.Request) {
	entries, err := h.accounts.LedgerHistory(r.Context(), ActorFrom(r.Context()).AccountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

type referralsResponse struct {
	ReferralCode string            `json:"referral_code"`
	Referrals    []accountResponse `json:"referrals"`
}

func (h *Handlers) MyReferrals(w http.ResponseWriter, r *http.Request) {
	acct, refs, err := h.accounts.Referrals(r.Context(), ActorFrom(r.Context()).AccountID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := referralsResponse{ReferralCode: acct.ReferralCode, Referrals: []accountResponse{}}
	for i := range refs {
		out.Referrals = append(out.Referrals, toAccountResponse(&refs[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) AvailableTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.Available(r.Context(), ActorFrom(r.Context()).AccountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *Handlers) StartTask(w http.ResponseWriter, r *http.Request) {
	a, err := h.assignments.Start(r.Context(), ActorFrom(r.Context()).AccountID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *Handlers) MyAssignments(w http.ResponseWriter, r *http.Request) {
	out, err := h.assignments.ListMine(r.Context(), ActorFrom(r.Context()).AccountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type proofRequest struct {
	Proof string `json:"proof"`
}

func (h *Handlers) SubmitProof(w http.ResponseWriter, r *http.Request) {
	var req proofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed body"})
		return
	}

	a, err := h.assignments.SubmitProof(r.Context(), ActorFrom(r.Context()).AccountID, chi.URLParam(r, "id"), req.Proof)
	if err != nil {
		writeError(w, err)
		return
	}

	if a.Status == domain.AssignmentPending {
		h.notifier.ProofAwaitingReview(a)
	}
	writeJSON(w, http.StatusOK, a)
}

type withdrawalRequestBody struct {
	Amount decimal.Decimal      `json:"amount"`
	Method domain.PaymentMethod `json:"method"`
}

func (h *Handlers) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req withdrawalRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed body"})
		return
	}

	wr, err := h.ledger.ReserveForWithdrawal(r.Context(), ActorFrom(r.Context()).AccountID, req.Amount, req.Method)
	if err != nil {
		writeError(w, err)
		return
	}

	h.notifier.WithdrawalRequested(wr)
	writeJSON(w, http.StatusCreated, wr)
}

func (h *Handlers) MyWithdrawals(w http.ResponseWriter, r *http.Request) {
	out, err := h.ledger.Withdrawals(r.Context(), ActorFrom(r.Context()).AccountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
