package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/midulanmathi/reCurrency/internal/app/economy"
	"github.com/midulanmathi/reCurrency/internal/domain"
)

type ctxKey int

const accountIDKey ctxKey = iota

func withAccountID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, accountIDKey, id)
}

func accountID(ctx context.Context) string {
	id, _ := ctx.Value(accountIDKey).(string)
	return id
}

// ─── Auth Pages ─────────────────────────────────────────────────────────────

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	msg := ""
	if r.URL.Query().Get("error") == "invalid" {
		msg = "Invalid Credentials"
	}
	renderLogin(w, msg)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/login?error=invalid", http.StatusFound)
		return
	}
	id, err := s.engine.Login(r.FormValue("name"), r.FormValue("password"))
	if err != nil {
		http.Redirect(w, r, "/login?error=invalid", http.StatusFound)
		return
	}
	s.sessions.Start(w, id)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	msg := ""
	switch r.URL.Query().Get("error") {
	case "exists":
		msg = "Name taken"
	case "invalid":
		msg = "Invalid contract values"
	}
	renderSignup(w, msg)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/signup?error=invalid", http.StatusFound)
		return
	}
	params, err := parseContract(r)
	if err != nil {
		http.Redirect(w, r, "/signup?error=invalid", http.StatusFound)
		return
	}
	_, err = s.engine.Signup(r.FormValue("name"), r.FormValue("password"), params, time.Now())
	switch {
	case errors.Is(err, domain.ErrDuplicateName):
		http.Redirect(w, r, "/signup?error=exists", http.StatusFound)
		return
	case errors.Is(err, domain.ErrInvalidContract):
		http.Redirect(w, r, "/signup?error=invalid", http.StatusFound)
		return
	case err != nil:
		serverError(w, err)
		return
	}
	s.sessions.Start(w, domain.AccountID(r.FormValue("name")))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.End(w, r)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// ─── Dashboard ──────────────────────────────────────────────────────────────

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	id := accountID(r.Context())
	now := time.Now()

	accounts, err := s.engine.SnapshotAll(now)
	if err != nil {
		serverError(w, err)
		return
	}
	var me *domain.Account
	others := make([]domain.Account, 0, len(accounts))
	for i := range accounts {
		if accounts[i].ID == id {
			me = &accounts[i]
		} else {
			others = append(others, accounts[i])
		}
	}
	if me == nil {
		// Session for a deleted account.
		s.sessions.End(w, r)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	renderDashboard(w, dashboardView{
		Me:      *me,
		Others:  others,
		Feed:    s.engine.FeedSnapshot(),
		CanUndo: s.engine.CanUndo(id, now),
		Now:     now,
	})
}

// ─── Economy Actions ────────────────────────────────────────────────────────
// Mutating verbs mirror the original UI: links with a name guard, redirect
// back to the dashboard. Business-rule rejections are silent no-ops.

func (s *Server) handleVice(w http.ResponseWriter, r *http.Request) {
	id := accountID(r.Context())
	if r.URL.Query().Get("name") == id {
		if err := s.engine.Indulge(id, time.Now()); err != nil && !isBusinessErr(err) {
			serverError(w, err)
			return
		}
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleVirtue(w http.ResponseWriter, r *http.Request) {
	id := accountID(r.Context())
	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil || (slot != 1 && slot != 2) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if r.URL.Query().Get("name") == id {
		if err := s.engine.CompleteVirtue(id, slot, time.Now()); err != nil && !isBusinessErr(err) {
			serverError(w, err)
			return
		}
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id := accountID(r.Context())
	target := domain.AccountID(r.URL.Query().Get("name"))
	if target != "" {
		if err := s.engine.Reset(target, id, time.Now()); err != nil && !isBusinessErr(err) {
			serverError(w, err)
			return
		}
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	id := accountID(r.Context())
	if err := s.engine.Undo(id, time.Now()); err != nil && !isBusinessErr(err) {
		serverError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// ─── Contract Management ────────────────────────────────────────────────────

func (s *Server) handleEditPage(w http.ResponseWriter, r *http.Request) {
	id := accountID(r.Context())
	a, err := s.engine.Account(id, time.Now())
	if err != nil {
		serverError(w, err)
		return
	}
	renderEdit(w, a)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	id := accountID(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/edit", http.StatusFound)
		return
	}
	params, err := parseContract(r)
	if err != nil {
		http.Redirect(w, r, "/edit", http.StatusFound)
		return
	}
	if err := s.engine.EditContract(id, params, r.FormValue("new_password")); err != nil && !isBusinessErr(err) {
		serverError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := accountID(r.Context())
	if err := s.engine.DeleteAccount(id); err != nil && !isBusinessErr(err) {
		serverError(w, err)
		return
	}
	s.sessions.EndAllFor(id)
	s.sessions.End(w, r)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// parseContract folds the frequency/period form pairs into the canonical
// contract units: a target interval in days and per-week virtue promises.
// Any unparseable or non-positive numeric rejects the whole form before
// anything mutates.
func parseContract(r *http.Request) (economy.ContractParams, error) {
	viceFreq, err1 := strconv.ParseFloat(r.FormValue("vice_freq"), 64)
	vicePer, err2 := strconv.ParseFloat(r.FormValue("vice_per"), 64)
	v1Freq, err3 := strconv.ParseFloat(r.FormValue("v1_freq"), 64)
	v1Per, err4 := strconv.ParseFloat(r.FormValue("v1_per"), 64)
	v2Freq, err5 := strconv.ParseFloat(r.FormValue("v2_freq"), 64)
	v2Per, err6 := strconv.ParseFloat(r.FormValue("v2_per"), 64)
	for _, err := range []error{err1, err2, err3, err4, err5, err6} {
		if err != nil {
			return economy.ContractParams{}, domain.ErrInvalidContract
		}
	}
	for _, v := range []float64{viceFreq, vicePer, v1Freq, v1Per, v2Freq, v2Per} {
		if v <= 0 {
			return economy.ContractParams{}, domain.ErrInvalidContract
		}
	}
	return economy.ContractParams{
		Vice:               r.FormValue("vice"),
		TargetIntervalDays: vicePer / viceFreq,
		Virtue1Name:        r.FormValue("v1name"),
		PromisedV1Weekly:   v1Freq / v1Per * 7.0,
		Virtue2Name:        r.FormValue("v2name"),
		PromisedV2Weekly:   v2Freq / v2Per * 7.0,
	}, nil
}

// isBusinessErr reports whether err is an expected business-rule rejection
// rather than a failure. Rejections render as a no-op redirect.
func isBusinessErr(err error) bool {
	for _, sentinel := range []error{
		domain.ErrAccountNotFound,
		domain.ErrAccountLocked,
		domain.ErrNotLocked,
		domain.ErrCooldownActive,
		domain.ErrSelfReset,
		domain.ErrNothingToUndo,
		domain.ErrUndoWindowOver,
		domain.ErrUndoNotOwned,
		domain.ErrInvalidContract,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func serverError(w http.ResponseWriter, err error) {
	log.Printf("[api] internal error: %v", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
