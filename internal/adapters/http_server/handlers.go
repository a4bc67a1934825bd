// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/app"
	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/domain"
)

type Handlers struct {
	Payments *app.PaymentService
	Ingest   *app.IngestionService
	Q        *app.QueryService

	// default ingestion target for the admin endpoint
	Target app.Target
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// errorBody is the generic failure envelope for the gateway endpoints.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ingestSuccess always carries reviewsAdded, even when zero.
type ingestSuccess struct {
	Success      bool   `json:"success"`
	ReviewsAdded int    `json:"reviewsAdded"`
	Source       string `json:"source"`
}

type ingestFailure struct {
	Success        bool   `json:"success"`
	Error          string `json:"error"`
	ContentPreview string `json:"contentPreview,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers, admin func(http.Handler) http.Handler) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/payments/stk-push", h.stkPush)
	s.mux.With(admin).Post("/v1/admin/reviews/ingest", h.ingestReviews)
	s.mux.Get("/v1/reviews", h.listReviews)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorBody{Error: msg, Details: details})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// stkPush asks the mobile-money provider to push a payment prompt to the
// customer's phone. The provider's acknowledgment body is returned verbatim;
// its HTTP status is mirrored as 200 (accepted) or 400 (rejected).
func (h *Handlers) stkPush(w http.ResponseWriter, r *http.Request) {
	var req domain.STKRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", err.Error())
		return
	}

	res, err := h.Payments.InitiatePush(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "phoneNumber and amount are required", "")
		case errors.Is(err, domain.ErrMissingCredentials):
			writeError(w, http.StatusInternalServerError, "payment provider credentials not configured", "")
		case errors.Is(err, domain.ErrUnauthorized):
			writeError(w, http.StatusInternalServerError, "payment provider authentication failed", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "payment initiation failed", err.Error())
		}
		return
	}

	status := http.StatusOK
	if !res.Acknowledged {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, res.Body)
}

// ingestReviews refreshes the reviews store from the configured listing
// page. Gated by RequireAdmin.
func (h *Handlers) ingestReviews(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Ingest.Ingest(r.Context(), h.Target)
	if err != nil {
		var ce *app.ContentError
		switch {
		case errors.As(err, &ce):
			writeJSON(w, http.StatusUnprocessableEntity, ingestFailure{
				Success:        false,
				Error:          "could not retrieve reviews automatically; add them manually",
				ContentPreview: ce.Preview,
			})
		case errors.Is(err, domain.ErrMissingCredentials):
			writeJSON(w, http.StatusInternalServerError, ingestFailure{
				Success: false,
				Error:   "scraping provider credentials not configured",
			})
		default:
			writeJSON(w, http.StatusInternalServerError, ingestFailure{
				Success: false,
				Error:   err.Error(),
			})
		}
		return
	}

	writeJSON(w, http.StatusOK, ingestSuccess{
		Success:      true,
		ReviewsAdded: rep.Added,
		Source:       rep.Source,
	})
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		limit = l
	}

	// Newest first; aligns with DB index on (created_at, id)
	page := domain.PageQuery{Limit: limit, Cursor: nil, Sort: "-created_at"}
	out, err := h.Q.ListReviews(r.Context(), page)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not list reviews")
		return
	}

	etag, body := calcETagAndBody(out.Items)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write listReviews body")
	}
}
