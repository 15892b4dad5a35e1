package api

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/midulanmathi/reCurrency/internal/domain"
)

// ─── View Models ────────────────────────────────────────────────────────────
// Templates receive fully computed models; no economy math happens here.

type dashboardView struct {
	Me      domain.Account
	Others  []domain.Account
	Feed    []domain.LedgerEntry
	CanUndo bool
	Now     time.Time
}

type feedItem struct {
	User    string
	Message string
	Color   string
	Age     string
}

type memberCard struct {
	Name string
	ID   string
	// template.CSS so the hsl() value survives the style-attribute filter.
	Accent template.CSS
	Locked      bool
	DebtSeconds int64
	Streak      int
	Virtue1     string
	Virtue2     string
}

type calendarDay struct {
	Label   string
	Virtues int
	HasVice bool
}

type dashboardModel struct {
	Name          string
	ID            string
	Vice          string
	Virtue1       string
	Virtue2       string
	Locked        bool
	DebtSeconds   int64
	ProgressPct   float64
	ProgressColor string
	ShowLimit     bool
	LimitDays     string
	CostDays      string
	CanUndo       bool
	Feed          []feedItem
	Others        []memberCard
	Calendar      []calendarDay
}

func buildDashboardModel(v dashboardView) dashboardModel {
	me := v.Me
	m := dashboardModel{
		Name:        me.Name,
		ID:          me.ID,
		Vice:        me.Vice,
		Virtue1:     me.Virtue1Name,
		Virtue2:     me.Virtue2Name,
		Locked:      me.Locked,
		DebtSeconds: me.DebtSeconds,
		CanUndo:     v.CanUndo,
		CostDays:    fmt.Sprintf("%.1f", float64(me.IndulgenceCost())/float64(domain.DaySeconds)),
		LimitDays:   fmt.Sprintf("%.1f", float64(me.MaxThreshold)/float64(domain.DaySeconds)),
	}
	if me.MaxThreshold > 0 {
		m.ProgressPct = float64(me.DebtSeconds) / float64(me.MaxThreshold) * 100
		if m.ProgressPct > 100 {
			m.ProgressPct = 100
		}
	}
	m.ProgressColor = "#4CAF50"
	if me.DebtSeconds > me.BaseCost {
		m.ProgressColor = "#ff9800"
	}
	m.ShowLimit = m.ProgressPct > 50

	for _, e := range v.Feed {
		m.Feed = append(m.Feed, feedItem{
			User:    e.AccountName,
			Message: e.Message,
			Color:   e.Color,
			Age:     formatAge(v.Now.Unix() - e.Timestamp),
		})
	}
	for _, o := range v.Others {
		m.Others = append(m.Others, memberCard{
			Name:        o.Name,
			ID:          o.ID,
			Accent:      template.CSS(domain.UserColor(o.Name)),
			Locked:      o.Locked,
			DebtSeconds: o.DebtSeconds,
			Streak:      o.Streak,
			Virtue1:     o.Virtue1Name,
			Virtue2:     o.Virtue2Name,
		})
	}
	m.Calendar = buildCalendar(me.Name, v.Feed, v.Now)
	return m
}

// buildCalendar summarizes the last 7 local days of the account's feed
// entries into per-day vice/virtue markers, oldest first.
func buildCalendar(name string, feed []domain.LedgerEntry, now time.Time) []calendarDay {
	days := make([]calendarDay, 0, 7)
	for i := 6; i >= 0; i-- {
		dayTime := now.AddDate(0, 0, -i)
		d := calendarDay{Label: dayTime.Format("Mon")}
		if i == 0 {
			d.Label = "Today"
		}
		for _, e := range feed {
			if e.AccountName != name {
				continue
			}
			t := time.Unix(e.Timestamp, 0)
			if t.Year() != dayTime.Year() || t.YearDay() != dayTime.YearDay() {
				continue
			}
			switch e.Kind {
			case domain.KindVice:
				d.HasVice = true
			case domain.KindVirtue1, domain.KindVirtue2:
				d.Virtues++
			}
		}
		if d.Virtues > 4 {
			d.Virtues = 4
		}
		days = append(days, d)
	}
	return days
}

func formatAge(seconds int64) string {
	switch {
	case seconds < 60:
		return "Now"
	case seconds < 3600:
		return fmt.Sprintf("%dm", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%dh", seconds/3600)
	default:
		return fmt.Sprintf("%dd", seconds/86400)
	}
}

// ─── Renderers ──────────────────────────────────────────────────────────────

func renderLogin(w http.ResponseWriter, errMsg string) {
	renderPage(w, loginTmpl, map[string]string{"Error": errMsg})
}

func renderSignup(w http.ResponseWriter, errMsg string) {
	renderPage(w, signupTmpl, map[string]string{"Error": errMsg})
}

func renderEdit(w http.ResponseWriter, a domain.Account) {
	renderPage(w, editTmpl, a)
}

func renderDashboard(w http.ResponseWriter, v dashboardView) {
	renderPage(w, dashboardTmpl, buildDashboardModel(v))
}

func renderPage(w http.ResponseWriter, t *template.Template, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.Execute(w, data); err != nil {
		serverError(w, err)
	}
}
