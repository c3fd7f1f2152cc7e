// Package api exposes the membership operations over HTTP using chi.
//
// The caller identity is read from the X-Caller-Identity header. The host
// in front of this handler is trusted to authenticate the caller and set
// that header; the handler itself performs no authentication.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xraph/membership"
	"github.com/xraph/membership/id"
	"github.com/xraph/membership/payment"
	"github.com/xraph/membership/record"
	"github.com/xraph/membership/types"
)

// HeaderCallerIdentity carries the authenticated caller.
const HeaderCallerIdentity = "X-Caller-Identity"

// HeaderRequestID is echoed on every response.
const HeaderRequestID = "X-Request-ID"

// Service defines the membership operations the handler needs.
type Service interface {
	Join(ctx context.Context, caller types.Identity, fact payment.Fact, claimedMember types.Identity) (bool, error)
	Status(ctx context.Context, member types.Identity) (record.State, error)
	Expiration(ctx context.Context, member types.Identity) (types.Tick, bool, error)
}

// Handler wires membership endpoints to the membership service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a membership handler.
func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts membership endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.requestID)
		r.Post("/join", h.HandleJoin)
		r.Get("/members/{member}", h.HandleGetMember)
		r.Get("/members/{member}/expiration", h.HandleGetExpiration)
	})
}

// JoinRequest is the body of POST /join.
type JoinRequest struct {
	Payment payment.Fact   `json:"payment"`
	Member  types.Identity `json:"member"`
}

// JoinResponse is returned by a successful join.
type JoinResponse struct {
	Joined bool `json:"joined"`
}

// MemberResponse describes a member's state at the current tick.
type MemberResponse struct {
	Member         types.Identity `json:"member"`
	Active         bool           `json:"active"`
	ExpirationTick types.Tick     `json:"expiration_tick"`
	State          record.State   `json:"state"`
}

// ExpirationResponse carries the stored expiration tick, 0 if never joined.
type ExpirationResponse struct {
	Member         types.Identity `json:"member"`
	ExpirationTick types.Tick     `json:"expiration_tick"`
}

// HandleJoin handles POST /join requests.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestIDFrom(ctx)
	start := time.Now()

	caller := types.Identity(r.Header.Get(HeaderCallerIdentity))

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid join request",
			"request_id", requestID,
			"error", err.Error(),
		)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	joined, err := h.service.Join(ctx, caller, req.Payment, req.Member)
	if err != nil {
		h.writeError(ctx, w, requestID, err)
		return
	}

	h.logger.DebugContext(ctx, "join handled",
		"request_id", requestID,
		"member", req.Member.String(),
		"duration", time.Since(start),
	)
	writeJSON(w, http.StatusOK, JoinResponse{Joined: joined})
}

// HandleGetMember handles GET /members/{member} requests.
func (h *Handler) HandleGetMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	member := types.Identity(chi.URLParam(r, "member"))

	state, err := h.service.Status(ctx, member)
	if err != nil {
		h.writeError(ctx, w, requestIDFrom(ctx), err)
		return
	}

	exp, _, err := h.service.Expiration(ctx, member)
	if err != nil {
		h.writeError(ctx, w, requestIDFrom(ctx), err)
		return
	}

	writeJSON(w, http.StatusOK, MemberResponse{
		Member:         member,
		Active:         state == record.StateActive,
		ExpirationTick: exp,
		State:          state,
	})
}

// HandleGetExpiration handles GET /members/{member}/expiration requests.
func (h *Handler) HandleGetExpiration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	member := types.Identity(chi.URLParam(r, "member"))

	exp, _, err := h.service.Expiration(ctx, member)
	if err != nil {
		h.writeError(ctx, w, requestIDFrom(ctx), err)
		return
	}

	writeJSON(w, http.StatusOK, ExpirationResponse{Member: member, ExpirationTick: exp})
}

// ──────────────────────────────────────────────────
// Errors
// ──────────────────────────────────────────────────

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// writeError maps service errors to status codes. Internal error details
// are logged, not returned.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, requestID string, err error) {
	if reason, ok := membership.ReasonOf(err); ok {
		h.logger.InfoContext(ctx, "join rejected",
			"request_id", requestID,
			"reason", string(reason),
		)
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Reason: string(reason)})
		return
	}

	if errors.Is(err, membership.ErrInvalidInput) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	h.logger.ErrorContext(ctx, "membership request failed",
		"request_id", requestID,
		"error", err.Error(),
	)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}

// ──────────────────────────────────────────────────
// Request IDs
// ──────────────────────────────────────────────────

type requestIDKey struct{}

func (h *Handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(HeaderRequestID)
		if rid == "" {
			rid = id.NewRequestID().String()
		}
		w.Header().Set(HeaderRequestID, rid)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, rid)))
	})
}

func requestIDFrom(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDKey{}).(string)
	return rid
}
