package service

import (
	"context"
	"time"

	"github.com/yndnr/sesskeep-go/internal/core/domain"
	"github.com/yndnr/sesskeep-go/internal/core/websession"
	"github.com/yndnr/sesskeep-go/pkg/sessid"
)

// SessionService handles session lifecycle operations on top of the
// in-memory store.
type SessionService struct {
	store *websession.Store
}

// NewSessionService creates a new SessionService.
func NewSessionService(store *websession.Store) *SessionService {
	return &SessionService{store: store}
}

// SessionView is the transport-facing snapshot of a session.
type SessionView struct {
	ID             string         `json:"id"`
	State          string         `json:"state"`
	CreatedAt      time.Time      `json:"created_at"`
	LastAccessedAt time.Time      `json:"last_accessed_at"`
	MaxIdleSeconds int64          `json:"max_idle_seconds"`
	Attributes     map[string]any `json:"attributes,omitempty"`
}

func newSessionView(sess *websession.Session) *SessionView {
	return &SessionView{
		ID:             sess.ID(),
		State:          sess.State().String(),
		CreatedAt:      sess.CreationTime(),
		LastAccessedAt: sess.LastAccessTime(),
		MaxIdleSeconds: int64(sess.MaxIdleTime() / time.Second),
		Attributes:     sess.Attributes(),
	}
}

// ============================================================================
// Create
// ============================================================================

// CreateSessionRequest contains parameters for session creation.
type CreateSessionRequest struct {
	// Attributes seeds the session's attribute container. Optional.
	Attributes map[string]any

	// MaxIdleSeconds overrides the store default when non-zero. A
	// negative value disables idle expiry for this session.
	MaxIdleSeconds int64
}

// CreateSessionResponse contains the result of session creation.
type CreateSessionResponse struct {
	Session *SessionView
}

// Create constructs, starts, and saves a new session. Unlike the core
// store's create, a service-level create always registers the session:
// an API caller asking for a session wants a usable handle.
func (s *SessionService) Create(ctx context.Context, req *CreateSessionRequest) (*CreateSessionResponse, error) {
	sess := s.store.Create()

	if req.MaxIdleSeconds != 0 {
		sess.SetMaxIdleTime(time.Duration(req.MaxIdleSeconds) * time.Second)
	}
	for key, value := range req.Attributes {
		if key == "" {
			return nil, domain.ErrInvalidArgument.WithDetails("attribute key must not be empty")
		}
		sess.SetAttribute(key, value)
	}

	sess.Start()
	sess.Save()

	return &CreateSessionResponse{Session: newSessionView(sess)}, nil
}

// ============================================================================
// Query
// ============================================================================

// GetSessionRequest contains parameters for session retrieval.
type GetSessionRequest struct {
	SessionID string
}

// Get retrieves a session by id. The lookup itself refreshes the
// session's last access time.
func (s *SessionService) Get(ctx context.Context, req *GetSessionRequest) (*SessionView, error) {
	if err := validateID(req.SessionID); err != nil {
		return nil, err
	}

	sess, ok := s.store.Retrieve(req.SessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return newSessionView(sess), nil
}

// StatsResponse reports store-level statistics.
type StatsResponse struct {
	LiveSessions          int   `json:"live_sessions"`
	DefaultMaxIdleSeconds int64 `json:"default_max_idle_seconds"`
}

// Stats returns current store statistics.
func (s *SessionService) Stats(ctx context.Context) *StatsResponse {
	return &StatsResponse{
		LiveSessions:          s.store.Count(),
		DefaultMaxIdleSeconds: int64(websession.DefaultMaxIdleTime / time.Second),
	}
}

// ============================================================================
// Lifecycle
// ============================================================================

// RevokeSessionRequest contains parameters for session revocation.
type RevokeSessionRequest struct {
	SessionID string
}

// RevokeSessionResponse reports whether a live session was revoked.
type RevokeSessionResponse struct {
	Revoked bool
}

// Revoke invalidates a session. Revoking an unknown or already-revoked
// id succeeds with Revoked=false: revocation is idempotent.
func (s *SessionService) Revoke(ctx context.Context, req *RevokeSessionRequest) (*RevokeSessionResponse, error) {
	if err := validateID(req.SessionID); err != nil {
		return nil, err
	}

	sess, ok := s.store.Retrieve(req.SessionID)
	if !ok {
		return &RevokeSessionResponse{Revoked: false}, nil
	}
	sess.Invalidate()
	return &RevokeSessionResponse{Revoked: true}, nil
}

// TouchSessionRequest contains parameters for a keep-alive touch.
type TouchSessionRequest struct {
	SessionID string
}

// TouchSessionResponse reports the refreshed access time.
type TouchSessionResponse struct {
	LastAccessedAt time.Time
}

// Touch refreshes a session's last access time, restarting its idle
// window.
func (s *SessionService) Touch(ctx context.Context, req *TouchSessionRequest) (*TouchSessionResponse, error) {
	if err := validateID(req.SessionID); err != nil {
		return nil, err
	}

	sess, ok := s.store.Retrieve(req.SessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if err := s.store.Touch(sess); err != nil {
		return nil, err
	}
	return &TouchSessionResponse{LastAccessedAt: sess.LastAccessTime()}, nil
}

// RekeySessionRequest contains parameters for identifier rotation.
type RekeySessionRequest struct {
	SessionID string
}

// RekeySessionResponse reports the new identifier.
type RekeySessionResponse struct {
	OldSessionID string
	Session      *SessionView
}

// Rekey swaps the session's identifier for a freshly generated one,
// keeping state and attributes. The old id stops resolving.
func (s *SessionService) Rekey(ctx context.Context, req *RekeySessionRequest) (*RekeySessionResponse, error) {
	if err := validateID(req.SessionID); err != nil {
		return nil, err
	}

	sess, ok := s.store.Retrieve(req.SessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	old := sess.ID()
	sess.ChangeID()

	return &RekeySessionResponse{
		OldSessionID: old,
		Session:      newSessionView(sess),
	}, nil
}

// ============================================================================
// Attributes
// ============================================================================

// SetAttributeRequest contains parameters for an attribute write.
type SetAttributeRequest struct {
	SessionID string
	Key       string
	Value     any
}

// SetAttribute stores an attribute on a live session.
func (s *SessionService) SetAttribute(ctx context.Context, req *SetAttributeRequest) (*SessionView, error) {
	if err := validateID(req.SessionID); err != nil {
		return nil, err
	}
	if req.Key == "" {
		return nil, domain.ErrMissingArgument.WithDetails("attribute key is required")
	}

	sess, ok := s.store.Retrieve(req.SessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	sess.SetAttribute(req.Key, req.Value)
	return newSessionView(sess), nil
}

// DeleteAttributeRequest contains parameters for an attribute removal.
type DeleteAttributeRequest struct {
	SessionID string
	Key       string
}

// DeleteAttribute removes an attribute from a live session. Removing an
// absent key is a no-op.
func (s *SessionService) DeleteAttribute(ctx context.Context, req *DeleteAttributeRequest) (*SessionView, error) {
	if err := validateID(req.SessionID); err != nil {
		return nil, err
	}
	if req.Key == "" {
		return nil, domain.ErrMissingArgument.WithDetails("attribute key is required")
	}

	sess, ok := s.store.Retrieve(req.SessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	sess.DeleteAttribute(req.Key)
	return newSessionView(sess), nil
}

// validateID rejects missing or malformed session identifiers before
// they reach the store.
func validateID(id string) error {
	if id == "" {
		return domain.ErrMissingArgument.WithDetails("session_id is required")
	}
	if !sessid.IsValid(id) {
		return domain.ErrInvalidSessionID
	}
	return nil
}
