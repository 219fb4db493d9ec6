package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"rentledger/internal/cache"
	"rentledger/internal/core"
	applog "rentledger/internal/log"
	"rentledger/internal/report"
	"rentledger/internal/services"
)

const (
	formatJSON = "json"
	formatXLSX = "xlsx"
)

func reportFormat(r *http.Request) (string, error) {
	switch f := r.URL.Query().Get("format"); f {
	case "", formatJSON:
		return formatJSON, nil
	case formatXLSX:
		return formatXLSX, nil
	default:
		return "", badRequest("unknown format %q", f)
	}
}

// serveCached answers from the report cache, rendering on a miss. The key
// carries the session revision, so any mutation retires earlier entries.
// A render that races a mutation is served but not cached.
func (s *Server) serveCached(w http.ResponseWriter, r *http.Request, op string, filename string, keyParts []string, render func() (cachedReport, error)) {
	rev := s.svc.Revision()
	key := cache.RevisionKey(rev, keyParts...)
	if hit, ok := s.reports.Get(key); ok {
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Report cache hit", "key", key)
		writeReport(w, hit, filename)
		return
	}

	out, err := render()
	if err != nil {
		s.writeError(w, r, op, err)
		return
	}
	if s.svc.Revision() == rev {
		s.reports.Set(key, out)
	}
	writeReport(w, out, filename)
}

func writeReport(w http.ResponseWriter, rep cachedReport, filename string) {
	w.Header().Set("Content-Type", rep.contentType)
	if rep.contentType == report.ContentType {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rep.body)
}

func jsonReport(v any) (cachedReport, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return cachedReport{}, fmt.Errorf("encode report: %w", err)
	}
	return cachedReport{contentType: "application/json; charset=utf-8", body: append(body, '\n')}, nil
}

func (s *Server) handleSettlement(w http.ResponseWriter, r *http.Request) {
	partyA, err := requiredQuery(r, "party_a")
	if err != nil {
		s.writeError(w, r, applog.OpSettle, err)
		return
	}
	partyB, err := requiredQuery(r, "party_b")
	if err != nil {
		s.writeError(w, r, applog.OpSettle, err)
		return
	}
	year, err := queryInt(r, "year")
	if err != nil {
		s.writeError(w, r, applog.OpSettle, err)
		return
	}
	month, err := queryInt(r, "month")
	if err != nil {
		s.writeError(w, r, applog.OpSettle, err)
		return
	}
	fee, err := core.ParseFee(r.URL.Query().Get("fee"))
	if err != nil {
		s.writeError(w, r, applog.OpSettle, err)
		return
	}
	format, err := reportFormat(r)
	if err != nil {
		s.writeError(w, r, applog.OpSettle, err)
		return
	}

	printed := s.now()
	key := []string{applog.OpSettle, format, partyA, partyB, strconv.Itoa(year), strconv.Itoa(month), fee.String()}
	if format == formatXLSX {
		key = append(key, printed.Format("2006-01-02"))
	}
	filename := fmt.Sprintf("settlement_%04d%02d.xlsx", year, month)

	s.serveCached(w, r, applog.OpSettle, filename, key, func() (cachedReport, error) {
		rep, err := s.svc.Settle(partyA, partyB, year, month, fee)
		if err != nil {
			return cachedReport{}, err
		}
		applog.FromContext(r.Context()).InfoContext(r.Context(), "Settlement computed",
			applog.NewFields().WithSettlement(rep.PartyA, rep.PartyB, year, month).ToSlice()...)
		if format == formatJSON {
			return jsonReport(rep)
		}
		var buf bytes.Buffer
		if err := report.WriteSettlementWorkbook(&buf, rep, printed); err != nil {
			return cachedReport{}, err
		}
		return cachedReport{contentType: report.ContentType, body: buf.Bytes()}, nil
	})
}

type summaryResponse struct {
	services.PersonSummary
	Net string `json:"net"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	person, err := requiredQuery(r, "person")
	if err != nil {
		s.writeError(w, r, applog.OpSummary, err)
		return
	}
	format, err := reportFormat(r)
	if err != nil {
		s.writeError(w, r, applog.OpSummary, err)
		return
	}

	s.serveCached(w, r, applog.OpSummary, "summary.xlsx", []string{applog.OpSummary, format, person}, func() (cachedReport, error) {
		sum := s.svc.Summarize(person)
		if format == formatJSON {
			return jsonReport(summaryResponse{PersonSummary: sum, Net: core.FormatAmount(sum.Net())})
		}
		var buf bytes.Buffer
		if err := report.WriteSummaryWorkbook(&buf, sum); err != nil {
			return cachedReport{}, err
		}
		return cachedReport{contentType: report.ContentType, body: buf.Bytes()}, nil
	})
}
