package httpapi

import (
	"errors"
	"net/http"
	"time"

	"consultation-platform/internal/auth"
	"consultation-platform/internal/booking"
	"consultation-platform/internal/call"
	"consultation-platform/internal/consent"
	"consultation-platform/internal/deck"
	"consultation-platform/internal/draft"
	"consultation-platform/internal/extension"
	"consultation-platform/internal/reading"
	"consultation-platform/internal/reporting"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth       *auth.Manager
	Readings   *reading.Service
	Drafts     *draft.Service
	Consents   *consent.Service
	Calls      *call.Service
	Extensions *extension.Service
	Reports    *reporting.Service
}

// writeError maps domain errors onto HTTP statuses. Protocol violations are
// 4xx; ErrSessionBusy is the one retryable case and says so via Retry-After.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, reading.ErrSessionBusy):
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session busy, retry"})
	case errors.Is(err, reading.ErrInvalidSequence):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, draft.ErrInsufficientReveals), errors.Is(err, consent.ErrMissingOrigin):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, draft.ErrAccessDenied):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, consent.ErrConsentRequired), errors.Is(err, extension.ErrOriginalSessionNotActive):
		c.AbortWithStatusJSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
	case errors.Is(err, reading.ErrNotFound), errors.Is(err, draft.ErrNotFound),
		errors.Is(err, call.ErrNotFound), errors.Is(err, deck.ErrNotFound),
		errors.Is(err, booking.ErrNotFound), errors.Is(err, extension.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, reading.ErrInvalidRequest), errors.Is(err, consent.ErrInvalidRequest),
		errors.Is(err, extension.ErrInvalidRequest), errors.Is(err, booking.ErrNotConfirmed),
		errors.Is(err, deck.ErrDeckNotReady), errors.Is(err, call.ErrInvalidTransition),
		errors.Is(err, reporting.ErrInvalidRequest):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func actorFrom(c *gin.Context) reading.Actor {
	uid, _ := auth.UserID(c.Request.Context())
	role, _ := auth.Role(c.Request.Context())
	return reading.Actor{UserID: uid, Role: role, IP: c.ClientIP()}
}

// --- Auth ---

type loginRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: Skeleton-only endpoint. Real deployments must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id and role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Reading sessions ---

type createSessionRequest struct {
	BookingID  string `json:"booking_id"`
	DeckID     string `json:"deck_id"`
	SpreadSize int    `json:"spread_size"`
}

func (h Handlers) CreateReadingSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	sess, err := h.Readings.CreateSession(c.Request.Context(), reading.CreateSessionRequest{
		BookingID:  req.BookingID,
		DeckID:     req.DeckID,
		SpreadSize: req.SpreadSize,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionView(sess))
}

func (h Handlers) GetReadingSession(c *gin.Context) {
	sess, revs, err := h.Readings.Snapshot(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	v := sessionView(sess)
	v["reveals"] = revs
	c.JSON(http.StatusOK, v)
}

// sessionView hides the draw order: undrawn cards must never reach a client.
func sessionView(sess reading.Session) gin.H {
	return gin.H{
		"id":           sess.ID,
		"booking_id":   sess.BookingID,
		"deck_id":      sess.DeckID,
		"reader_id":    sess.ReaderID,
		"client_id":    sess.ClientID,
		"spread_size":  sess.SpreadSize,
		"reveal_count": sess.RevealCount,
		"state":        sess.State(),
		"created_at":   sess.CreatedAt,
	}
}

type revealRequest struct {
	// Position is optional; 0 means "next".
	Position int `json:"position"`
}

func (h Handlers) Reveal(c *gin.Context) {
	var req revealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	sessionID := c.Param("session_id")
	actor := actorFrom(c)

	var rev reading.Reveal
	var err error
	if req.Position == 0 {
		rev, err = h.Readings.RevealNext(c.Request.Context(), sessionID, actor)
	} else {
		rev, err = h.Readings.Reveal(c.Request.Context(), sessionID, req.Position, actor)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rev)
}

// --- AI drafts ---

func (h Handlers) GenerateDraft(c *gin.Context) {
	d, err := h.Drafts.Generate(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	// Generation returns metadata only; content comes through GetDraft with
	// its access check and audit entry.
	c.JSON(http.StatusCreated, gin.H{
		"id":           d.ID,
		"session_id":   d.SessionID,
		"model":        d.Model,
		"generated_at": d.GeneratedAt,
	})
}

func (h Handlers) GetDraft(c *gin.Context) {
	uid, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "identity required"})
		return
	}
	d, err := h.Drafts.GetForReader(c.Request.Context(), c.Param("draft_id"), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h Handlers) ListDrafts(c *gin.Context) {
	uid, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "identity required"})
		return
	}
	list, err := h.Drafts.ListForReader(c.Request.Context(), c.Param("session_id"), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"drafts": list})
}

// --- Calls, consent, capture ---

type scheduleCallRequest struct {
	BookingID string `json:"booking_id"`
}

func (h Handlers) ScheduleCall(c *gin.Context) {
	var req scheduleCallRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.BookingID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "booking_id required"})
		return
	}
	sess, err := h.Calls.Schedule(c.Request.Context(), req.BookingID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

type startCallRequest struct {
	ProviderCallID string `json:"provider_call_id"`
}

func (h Handlers) StartCall(c *gin.Context) {
	var req startCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	sess, err := h.Calls.Start(c.Request.Context(), c.Param("call_id"), req.ProviderCallID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

type consentRequest struct {
	PartyID string `json:"party_id"`
	Granted bool   `json:"granted"`

	// OriginAddr overrides the connection address; used when consent is
	// relayed by another internal service.
	OriginAddr string `json:"origin_addr,omitempty"`
}

func (h Handlers) RecordConsent(c *gin.Context) {
	var req consentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	origin := req.OriginAddr
	if origin == "" {
		origin = c.ClientIP()
	}
	e, err := h.Consents.Record(c.Request.Context(), c.Param("call_id"), req.PartyID, origin, req.Granted)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h Handlers) BeginCapture(c *gin.Context) {
	uid, _ := auth.UserID(c.Request.Context())
	sess, err := h.Calls.BeginCapture(c.Request.Context(), c.Param("call_id"), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h Handlers) EndCall(c *gin.Context) {
	sess, err := h.Calls.End(c.Request.Context(), c.Param("call_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// --- Extensions ---

type extensionRequest struct {
	OriginalBookingID string `json:"original_booking_id"`
	Minutes           int    `json:"minutes"`
}

func (h Handlers) RequestExtension(c *gin.Context) {
	var req extensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	uid, _ := auth.UserID(c.Request.Context())
	e, err := h.Extensions.Request(c.Request.Context(), req.OriginalBookingID, req.Minutes, uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// --- Reports ---

func (h Handlers) reportWindow(c *gin.Context) (reporting.Window, bool) {
	from, err1 := time.Parse(time.RFC3339, c.Query("from"))
	to, err2 := time.Parse(time.RFC3339, c.Query("to"))
	if err1 != nil || err2 != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from and to must be RFC3339"})
		return reporting.Window{}, false
	}
	return reporting.Window{From: from, To: to}, true
}

func (h Handlers) ConsentCoverageReport(c *gin.Context) {
	w, ok := h.reportWindow(c)
	if !ok {
		return
	}
	rep, err := h.Reports.ConsentCoverage(c.Request.Context(), w)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h Handlers) DraftAccessReport(c *gin.Context) {
	w, ok := h.reportWindow(c)
	if !ok {
		return
	}
	rep, err := h.Reports.DraftAccessByReader(c.Request.Context(), w)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"readers": rep})
}

func (h Handlers) RevealVolumeReport(c *gin.Context) {
	w, ok := h.reportWindow(c)
	if !ok {
		return
	}
	rep, err := h.Reports.RevealVolume(c.Request.Context(), w)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}
