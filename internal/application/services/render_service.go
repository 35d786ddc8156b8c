// Package services provides application-level orchestration services
package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/fieldstack/widgethost-go/internal/application/bridge"
	"github.com/fieldstack/widgethost-go/internal/domain/entities/editor"
	"github.com/fieldstack/widgethost-go/internal/domain/entities/widget"
	domainservices "github.com/fieldstack/widgethost-go/internal/domain/services"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/messaging"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/logging"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/performance"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/security"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/space"
	"github.com/fieldstack/widgethost-go/pkg/config"
	"github.com/gorilla/websocket"
)

// RenderSession is one editor page rendering widgets: a frame hub every
// widget frame on the page attaches to, plus the renderers driving them.
type RenderSession struct {
	ID            string
	SpaceID       string
	EnvironmentID string
	User          editor.User
	Hub           *messaging.FrameHub

	mu        sync.Mutex
	renderers map[string]*bridge.Renderer
	createdAt time.Time
	lastSeen  time.Time
	closed    bool
}

// Touch marks the session as recently used
func (s *RenderSession) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// expired reports whether the session has been idle past the timeout
func (s *RenderSession) expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen) > config.RenderSessionTimeout
}

// close destroys every renderer and the hub
func (s *RenderSession) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	renderers := make([]*bridge.Renderer, 0, len(s.renderers))
	for _, r := range s.renderers {
		renderers = append(renderers, r)
	}
	s.renderers = make(map[string]*bridge.Renderer)
	s.mu.Unlock()

	for _, r := range renderers {
		r.Destroy()
	}
	s.Hub.Close()
}

// RenderService owns render session lifecycle: creation with a session
// token, frame attachment, widget renderer startup, and idle expiry.
type RenderService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker

	mu       sync.RWMutex
	sessions map[string]*RenderSession
	stop     chan struct{}
	stopOnce sync.Once
}

// NewRenderService creates the render service and starts its session janitor
func NewRenderService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *RenderService {
	svc := &RenderService{
		logger:      logger,
		perfTracker: perfTracker,
		sessions:    make(map[string]*RenderSession),
		stop:        make(chan struct{}),
	}
	go svc.janitor()
	return svc
}

// CreateSession opens a render session for one editor page and returns it
// together with the token frames use to connect.
func (r *RenderService) CreateSession(spaceCtx *space.Context, user editor.User) (*RenderSession, string, error) {
	marker := r.perfTracker.StartOperation("render_create_session", spaceCtx.SpaceID)
	defer marker.Complete()

	sessionID := security.GenerateULID()
	session := &RenderSession{
		ID:            sessionID,
		SpaceID:       spaceCtx.SpaceID,
		EnvironmentID: spaceCtx.EnvironmentID,
		User:          user,
		Hub:           messaging.NewFrameHub(sessionID, r.logger),
		renderers:     make(map[string]*bridge.Renderer),
		createdAt:     time.Now(),
		lastSeen:      time.Now(),
	}

	token, err := security.GenerateRenderToken(&security.RenderClaims{
		SessionID:     sessionID,
		SpaceID:       spaceCtx.SpaceID,
		EnvironmentID: spaceCtx.EnvironmentID,
		User:          user,
	}, spaceCtx.Config.JWTSecret)
	if err != nil {
		session.Hub.Close()
		return nil, "", fmt.Errorf("failed to issue render token: %w", err)
	}

	r.mu.Lock()
	r.sessions[sessionID] = session
	r.mu.Unlock()

	r.logger.Frame().Info("Render session created", "sessionId", sessionID, "spaceId", spaceCtx.SpaceID)
	return session, token, nil
}

// GetSession returns a live session by id, nil when absent or expired
func (r *RenderService) GetSession(sessionID string) *RenderSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[sessionID]
}

// ValidateToken checks a frame connection token against the space secret
func (r *RenderService) ValidateToken(tokenString string, spaceCtx *space.Context) (*security.RenderClaims, error) {
	claims, err := security.ValidateJWT(tokenString, spaceCtx.Config.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid render token: %w", err)
	}

	renderClaims := security.GetRenderClaims(claims)
	if renderClaims == nil {
		return nil, fmt.Errorf("token is not a render token")
	}
	if renderClaims.SpaceID != spaceCtx.SpaceID {
		return nil, fmt.Errorf("render token issued for another space")
	}
	return renderClaims, nil
}

// AttachFrame connects an upgraded websocket to the session's hub
func (r *RenderService) AttachFrame(sessionID string, conn *websocket.Conn) error {
	session := r.GetSession(sessionID)
	if session == nil {
		return fmt.Errorf("unknown render session: %s", sessionID)
	}

	session.Touch()
	session.Hub.Attach(conn)
	return nil
}

// StartWidget creates and initializes a renderer for one widget on the
// session's page. The renderer key doubles as the frame correlation id.
func (r *RenderService) StartWidget(session *RenderSession, w *widget.Widget, sdk *domainservices.HostSDK, location widget.LocationKind, frame bridge.Frame, opts bridge.RendererOptions) (*bridge.Renderer, error) {
	session.mu.Lock()
	if session.closed {
		session.mu.Unlock()
		return nil, fmt.Errorf("render session %s is closed", session.ID)
	}
	session.mu.Unlock()

	renderer := bridge.NewRenderer(w, sdk, location, frame, opts, r.logger)
	renderer.Initialize(session.Hub)

	key := opts.CorrelationID
	if key == "" {
		key = renderer.Channel().ID()
	}

	session.mu.Lock()
	session.renderers[key] = renderer
	session.lastSeen = time.Now()
	session.mu.Unlock()

	r.logger.Bridge().Debug("Widget renderer started",
		"sessionId", session.ID, "widget", w.ID, "location", string(location))
	return renderer, nil
}

// StopWidget destroys one widget renderer on the session
func (r *RenderService) StopWidget(session *RenderSession, key string) {
	session.mu.Lock()
	renderer, ok := session.renderers[key]
	delete(session.renderers, key)
	session.mu.Unlock()

	if ok {
		renderer.Destroy()
	}
}

// CloseSession tears down a session and everything attached to it
func (r *RenderService) CloseSession(sessionID string) {
	r.mu.Lock()
	session, ok := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	r.mu.Unlock()

	if ok {
		session.close()
		r.logger.Frame().Info("Render session closed", "sessionId", sessionID)
	}
}

// SessionCount returns the number of live sessions
func (r *RenderService) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close stops the janitor and tears down every session
func (r *RenderService) Close() {
	r.stopOnce.Do(func() { close(r.stop) })

	r.mu.Lock()
	sessions := make([]*RenderSession, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session)
	}
	r.sessions = make(map[string]*RenderSession)
	r.mu.Unlock()

	for _, session := range sessions {
		session.close()
	}
}

// janitor expires idle sessions on the configured interval
func (r *RenderService) janitor() {
	ticker := time.NewTicker(config.SessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case now := <-ticker.C:
			var expired []string
			r.mu.RLock()
			for id, session := range r.sessions {
				if session.expired(now) {
					expired = append(expired, id)
				}
			}
			r.mu.RUnlock()

			for _, id := range expired {
				r.logger.Frame().Info("Expiring idle render session", "sessionId", id)
				r.CloseSession(id)
			}
		}
	}
}
