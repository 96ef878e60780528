// Package api serves the parser over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/money-manager/txnparse/internal/api/middleware"
	"github.com/money-manager/txnparse/internal/buildinfo"
	"github.com/money-manager/txnparse/internal/importer"
	"github.com/money-manager/txnparse/internal/ledger"
	"github.com/money-manager/txnparse/internal/logger"
	"github.com/money-manager/txnparse/internal/model"
	"github.com/money-manager/txnparse/internal/normalize"
	"github.com/money-manager/txnparse/internal/parselog"
	"github.com/money-manager/txnparse/internal/pipeline"
)

const maxBodyBytes = 1 << 20

// Recorder persists accepted transactions.
type Recorder interface {
	Record(txn model.ParsedTransaction, raw model.RawText) (model.Expense, error)
}

// AuditLog records parse attempts.
type AuditLog interface {
	Append(entries ...parselog.Entry) error
}

// Handler serves the parse, sync and health endpoints.
type Handler struct {
	parser *pipeline.Service
	ledger Recorder
	audit  AuditLog
	now    func() time.Time
}

// NewHandler creates a Handler. ledger and audit may be nil.
func NewHandler(parser *pipeline.Service, ledger Recorder, audit AuditLog) *Handler {
	return &Handler{parser: parser, ledger: ledger, audit: audit, now: time.Now}
}

type transactionJSON struct {
	Amount     json.Number `json:"amount"`
	Merchant   string      `json:"merchant"`
	Type       string      `json:"type"`
	Confidence int         `json:"confidence"`
	Category   string      `json:"category,omitempty"`
	Source     string      `json:"source,omitempty"`
	Method     string      `json:"method"`
}

func toTransactionJSON(txn model.ParsedTransaction) transactionJSON {
	return transactionJSON{
		Amount:     json.Number(txn.Amount.StringFixed(2)),
		Merchant:   txn.Merchant,
		Type:       string(txn.Direction),
		Confidence: txn.Confidence,
		Category:   txn.Category,
		Source:     txn.Source,
		Method:     string(txn.Method),
	}
}

type candidateJSON struct {
	Value string `json:"value"`
	Raw   string `json:"raw"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// ParseText handles POST /api/ocr/parse.
func (h *Handler) ParseText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text      string `json:"text"`
		SourceApp string `json:"source_app"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	raw := model.RawText{Text: req.Text, SourceApp: req.SourceApp, ReceivedAt: h.now()}
	txn, err := h.parser.Parse(r.Context(), raw)
	h.logAttempts(r, parselog.NewEntry(middleware.RequestIDFrom(r.Context()), normalize.AppLabel(req.SourceApp), txn, err))
	if err != nil {
		writeParseError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    toTransactionJSON(txn),
	})
}

func writeParseError(w http.ResponseWriter, r *http.Request, err error) {
	var pe *normalize.ParseError
	switch {
	case errors.As(err, &pe):
		status := http.StatusUnprocessableEntity
		if pe.Reason == normalize.ReasonEmptyInput {
			status = http.StatusBadRequest
		}
		body := map[string]any{
			"success": false,
			"error":   pe.Error(),
			"reason":  string(pe.Reason),
		}
		if len(pe.Candidates) > 0 {
			cands := make([]candidateJSON, len(pe.Candidates))
			for i, c := range pe.Candidates {
				cands[i] = candidateJSON{Value: c.Value, Raw: c.Raw, Start: c.Start, End: c.End}
			}
			body["candidates"] = cands
		}
		middleware.WriteJSON(w, status, body)
	case errors.Is(err, pipeline.ErrFallbackFailed):
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("fallback failed")
		middleware.WriteError(w, http.StatusBadGateway, "Transaction extraction service unavailable")
	default:
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("parse failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to parse text")
	}
}

type syncMessage struct {
	Body      string `json:"body"`
	Address   string `json:"address"`
	Date      string `json:"date"`
	SourceApp string `json:"source_app"`
}

// SyncExpenses handles POST /api/expenses/sync: parse a batch of SMS
// messages and record the accepted ones in the ledger.
func (h *Handler) SyncExpenses(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Ledger not configured")
		return
	}

	var req struct {
		Messages []syncMessage `json:"messages"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	raws := make([]model.RawText, len(req.Messages))
	for i, m := range req.Messages {
		raw := model.RawText{Text: m.Body, Sender: m.Address, SourceApp: m.SourceApp}
		if d := strings.TrimSpace(m.Date); d != "" {
			t, err := importer.ParseDate(d)
			if err != nil {
				middleware.WriteError(w, http.StatusBadRequest, "Invalid date in message "+strconv.Itoa(i))
				return
			}
			raw.ReceivedAt = t
		}
		raws[i] = raw
	}

	log := logger.FromContext(r.Context())
	batch, err := h.parser.ParseBatch(r.Context(), raws)
	if err != nil {
		log.Error().Err(err).Msg("batch parse aborted")
		middleware.WriteError(w, http.StatusServiceUnavailable, "Request canceled")
		return
	}

	requestID := middleware.RequestIDFrom(r.Context())
	entries := []string{}
	var audit []parselog.Entry
	for _, it := range batch.Items {
		e := parselog.NewEntry(requestID, normalize.AppLabel(it.Raw.SourceApp), it.Txn, it.Err)
		if it.Outcome == pipeline.OutcomeAccepted {
			exp, err := h.ledger.Record(it.Txn, it.Raw)
			switch {
			case err == nil:
				entries = append(entries, exp.EntryID)
				e.EntryID = exp.EntryID
			case errors.Is(err, ledger.ErrDuplicate):
			default:
				log.Error().Err(err).Int("recorded", len(entries)).Msg("recording expense")
				h.logAttempts(r, append(audit, e)...)
				middleware.WriteJSON(w, http.StatusInternalServerError, map[string]any{
					"success": false,
					"error":   "Failed to record expenses",
					"synced":  len(entries),
					"entries": entries,
				})
				return
			}
		}
		audit = append(audit, e)
	}
	h.logAttempts(r, audit...)

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"synced":  len(entries),
		"skipped": len(req.Messages) - len(entries),
		"entries": entries,
	})
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339),
		"version":   buildinfo.Version,
	})
}

func (h *Handler) logAttempts(r *http.Request, entries ...parselog.Entry) {
	if h.audit == nil {
		return
	}
	if err := h.audit.Append(entries...); err != nil {
		log := logger.FromContext(r.Context())
		log.Warn().Err(err).Msg("writing parse log")
	}
}

// NewRouter wires the endpoints and middleware.
func NewRouter(h *Handler, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/ocr/parse", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			h.ParseText(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/expenses/sync", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			h.SyncExpenses(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.Health(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	return middleware.Recovery(log)(
		middleware.RequestID(
			middleware.Logger(log)(
				middleware.CORS(mux),
			),
		),
	)
}
