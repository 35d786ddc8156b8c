package services

import (
	"log/slog"
	"testing"

	"github.com/fieldstack/widgethost-go/internal/application/bridge"
	"github.com/fieldstack/widgethost-go/internal/domain/entities/editor"
	"github.com/fieldstack/widgethost-go/internal/domain/entities/widget"
	"github.com/fieldstack/widgethost-go/internal/domain/events"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/logging"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/performance"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/security"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/space"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToConsole: true,
		DefaultLevel:    slog.LevelError,
	})
	require.NoError(t, err)
	return logger
}

func testSpaceContext() *space.Context {
	return &space.Context{
		SpaceID:       "space-1",
		EnvironmentID: "master",
		Config: &space.Config{
			SpaceID:   "space-1",
			JWTSecret: "render-test-secret",
			Locales: []space.LocaleConfig{
				{Code: "en-US", Name: "English (United States)", Default: true},
				{Code: "de-DE", Name: "German (Germany)"},
			},
		},
	}
}

type fakeFrame struct {
	src     string
	srcdoc  string
	sandbox string
	load    *events.Emitter
}

func newFakeFrame() *fakeFrame {
	return &fakeFrame{load: events.NewEmitter()}
}

func (f *fakeFrame) SetSrc(url string)            { f.src = url }
func (f *fakeFrame) SetSrcDoc(html string)        { f.srcdoc = html }
func (f *fakeFrame) SetHeight(px int)             {}
func (f *fakeFrame) SetSandbox(attributes string) { f.sandbox = attributes }
func (f *fakeFrame) OnLoad(fn func()) events.Disposable {
	return f.load.Subscribe(func(any) { fn() })
}

func testWidget() *widget.Widget {
	return &widget.Widget{
		Namespace: widget.NamespaceExtension,
		ID:        "color-picker",
		Name:      "Color Picker",
		Hosting:   widget.Hosting{Type: widget.HostingSrc, Value: "https://widgets.example.com/color-picker"},
		Locations: []widget.Location{{Location: widget.LocationEntryField}},
	}
}

func newTestRenderService(t *testing.T) *RenderService {
	t.Helper()
	svc := NewRenderService(testLogger(t), performance.NewTracker())
	t.Cleanup(svc.Close)
	return svc
}

func TestCreateSessionIssuesRenderToken(t *testing.T) {
	svc := newTestRenderService(t)
	spaceCtx := testSpaceContext()

	session, token, err := svc.CreateSession(spaceCtx, editor.User{ID: "user-1"})
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "space-1", session.SpaceID)
	assert.Equal(t, "master", session.EnvironmentID)
	assert.NotNil(t, session.Hub)

	claims, err := svc.ValidateToken(token, spaceCtx)
	require.NoError(t, err)
	assert.Equal(t, session.ID, claims.SessionID)
	assert.Equal(t, "user-1", claims.User.ID)
}

func TestValidateTokenRejectsOtherSpace(t *testing.T) {
	svc := newTestRenderService(t)
	spaceCtx := testSpaceContext()

	_, token, err := svc.CreateSession(spaceCtx, editor.User{ID: "user-1"})
	require.NoError(t, err)

	otherCtx := testSpaceContext()
	otherCtx.SpaceID = "space-2"

	_, err = svc.ValidateToken(token, otherCtx)
	assert.Error(t, err)
}

func TestValidateTokenRejectsAdminToken(t *testing.T) {
	svc := newTestRenderService(t)
	spaceCtx := testSpaceContext()

	token, err := security.GenerateAdminToken("space-1", spaceCtx.Config.JWTSecret)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token, spaceCtx)
	assert.Error(t, err)
}

func TestStartAndStopWidget(t *testing.T) {
	svc := newTestRenderService(t)
	spaceCtx := testSpaceContext()

	session, _, err := svc.CreateSession(spaceCtx, editor.User{ID: "user-1"})
	require.NoError(t, err)

	sdk := BuildSDK(spaceCtx, session, testWidget(), SDKCapabilities{})
	assert.Equal(t, "en-US", sdk.Locales.Default)
	assert.Len(t, sdk.Locales.Available, 2)
	assert.Equal(t, "space-1", sdk.IDs.Space)
	assert.Equal(t, "user-1", sdk.IDs.User)

	frame := newFakeFrame()
	renderer, err := svc.StartWidget(session, testWidget(), sdk, widget.LocationEntryField, frame, bridge.RendererOptions{CorrelationID: "corr-1"})
	require.NoError(t, err)
	require.NotNil(t, renderer)
	assert.Equal(t, "https://widgets.example.com/color-picker", frame.src)

	session.mu.Lock()
	_, tracked := session.renderers["corr-1"]
	session.mu.Unlock()
	assert.True(t, tracked)

	svc.StopWidget(session, "corr-1")
	session.mu.Lock()
	remaining := len(session.renderers)
	session.mu.Unlock()
	assert.Zero(t, remaining)
}

func TestStartWidgetOnClosedSessionFails(t *testing.T) {
	svc := newTestRenderService(t)
	spaceCtx := testSpaceContext()

	session, _, err := svc.CreateSession(spaceCtx, editor.User{ID: "user-1"})
	require.NoError(t, err)

	svc.CloseSession(session.ID)
	assert.Nil(t, svc.GetSession(session.ID))

	sdk := BuildSDK(spaceCtx, session, testWidget(), SDKCapabilities{})
	_, err = svc.StartWidget(session, testWidget(), sdk, widget.LocationEntryField, newFakeFrame(), bridge.RendererOptions{})
	assert.Error(t, err)
}

func TestCloseTearsDownAllSessions(t *testing.T) {
	svc := newTestRenderService(t)
	spaceCtx := testSpaceContext()

	_, _, err := svc.CreateSession(spaceCtx, editor.User{ID: "user-1"})
	require.NoError(t, err)
	_, _, err = svc.CreateSession(spaceCtx, editor.User{ID: "user-2"})
	require.NoError(t, err)
	assert.Equal(t, 2, svc.SessionCount())

	svc.Close()
	assert.Zero(t, svc.SessionCount())
}
