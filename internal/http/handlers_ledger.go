package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"rentledger/internal/core"
	applog "rentledger/internal/log"
)

type dayView struct {
	Ledger  string           `json:"ledger"`
	Date    string           `json:"date"`
	Weekday string           `json:"weekday"`
	Entries []core.RentEntry `json:"entries"`
	Left    []core.RentEntry `json:"left"`
	Right   []core.RentEntry `json:"right"`
}

func newDayView(kind core.LedgerKind, date string, entries []core.RentEntry) dayView {
	day, _ := core.ParseDay(date)
	left, right := core.SplitColumns(entries)
	return dayView{
		Ledger:  string(kind),
		Date:    date,
		Weekday: core.WeekdayLabel(day),
		Entries: nonNil(entries),
		Left:    nonNil(left),
		Right:   nonNil(right),
	}
}

func nonNil(entries []core.RentEntry) []core.RentEntry {
	if entries == nil {
		return []core.RentEntry{}
	}
	return entries
}

func (s *Server) handleGetDay(w http.ResponseWriter, r *http.Request) {
	kind := core.LedgerKind(r.PathValue("ledger"))
	date := r.PathValue("date")
	entries, err := s.svc.Day(kind, date)
	if err != nil {
		s.writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, newDayView(kind, date, entries))
}

type commitDayRequest struct {
	Entries []core.RentEntry `json:"entries"`
}

// handleCommitDay replaces the whole day. An empty list clears it.
func (s *Server) handleCommitDay(w http.ResponseWriter, r *http.Request) {
	kind := core.LedgerKind(r.PathValue("ledger"))
	date := r.PathValue("date")

	var req commitDayRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, applog.OpCommit, err)
		return
	}
	if err := s.svc.CommitDay(r.Context(), kind, date, req.Entries); err != nil {
		s.writeError(w, r, applog.OpCommit, err)
		return
	}
	s.logger.LogLedgerChange(r.Context(), applog.OpCommit, string(kind), date, len(req.Entries), s.svc.Revision())

	entries, _ := s.svc.Day(kind, date)
	writeJSON(w, http.StatusOK, newDayView(kind, date, entries))
}

func (s *Server) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	kind := core.LedgerKind(r.PathValue("ledger"))
	date := r.PathValue("date")
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		s.writeError(w, r, applog.OpDelete, badRequest("entry index must be a non-negative number"))
		return
	}
	if err := s.svc.RemoveEntry(r.Context(), kind, date, index); err != nil {
		s.writeError(w, r, applog.OpDelete, err)
		return
	}
	s.logger.LogLedgerChange(r.Context(), applog.OpDelete, string(kind), date, 1, s.svc.Revision())
	w.WriteHeader(http.StatusNoContent)
}

type shiftMonthRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (s *Server) handleShiftMonth(w http.ResponseWriter, r *http.Request) {
	kind := core.LedgerKind(r.PathValue("ledger"))

	var req shiftMonthRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, applog.OpShift, err)
		return
	}
	n, err := s.svc.ShiftMonth(r.Context(), kind, req.Year, req.Month)
	if err != nil {
		s.writeError(w, r, applog.OpShift, err)
		return
	}
	if n > 0 {
		s.logger.LogLedgerChange(r.Context(), applog.OpShift, string(kind), "", n, s.svc.Revision())
	}
	writeJSON(w, http.StatusOK, map[string]int{"copied": n})
}

type fixedRentRequest struct {
	Weekdays []string `json:"weekdays"`
	Start    string   `json:"start"`
	End      string   `json:"end"`
	Market   string   `json:"market"`
	Rent     string   `json:"rent"`
	Owner    string   `json:"owner"`
	User     string   `json:"user"`
	Note     string   `json:"note"`
}

type fixedRentResponse struct {
	Added    int      `json:"added"`
	Weekdays []string `json:"weekdays"`
}

func (req fixedRentRequest) rule() (core.RecurrenceRule, error) {
	var days core.WeekdaySet
	for _, name := range req.Weekdays {
		d, ok := core.ParseWeekday(name)
		if !ok {
			return core.RecurrenceRule{}, badRequest("unknown weekday %q", name)
		}
		days = days.With(d)
	}
	if days.Empty() {
		return core.RecurrenceRule{}, badRequest("at least one weekday is required")
	}
	start, err := core.ParseDay(req.Start)
	if err != nil {
		return core.RecurrenceRule{}, err
	}
	end, err := core.ParseDay(req.End)
	if err != nil {
		return core.RecurrenceRule{}, err
	}
	return core.RecurrenceRule{Weekdays: days, Start: start, End: end}, nil
}

// handleAddFixedRent expands a weekly rule into the fixed ledger. A range
// whose start is after its end adds nothing and is not an error.
func (s *Server) handleAddFixedRent(w http.ResponseWriter, r *http.Request) {
	var req fixedRentRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, applog.OpExpand, err)
		return
	}
	rule, err := req.rule()
	if err != nil {
		s.writeError(w, r, applog.OpExpand, err)
		return
	}
	payload := core.RentEntry{
		Market: strings.TrimSpace(req.Market),
		Rent:   strings.TrimSpace(req.Rent),
		Owner:  strings.TrimSpace(req.Owner),
		User:   strings.TrimSpace(req.User),
		Note:   req.Note,
	}
	n, err := s.svc.AddFixedRent(r.Context(), rule, payload)
	if err != nil {
		s.writeError(w, r, applog.OpExpand, err)
		return
	}
	if n > 0 {
		s.logger.LogLedgerChange(r.Context(), applog.OpExpand, string(core.FixedLedger),
			rule.Start.Format(time.DateOnly), n, s.svc.Revision())
	}
	writeJSON(w, http.StatusCreated, fixedRentResponse{Added: n, Weekdays: rule.Weekdays.Labels()})
}
