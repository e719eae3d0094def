package httpapi_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/an-gr-hh1/landslide-sync/internal/adapter/blob"
	"github.com/an-gr-hh1/landslide-sync/internal/adapter/httpapi"
	"github.com/an-gr-hh1/landslide-sync/internal/alertgate"
	"github.com/an-gr-hh1/landslide-sync/internal/app"
	"github.com/an-gr-hh1/landslide-sync/internal/domain"
	"github.com/an-gr-hh1/landslide-sync/internal/feed"
	"github.com/an-gr-hh1/landslide-sync/internal/location"
	"github.com/an-gr-hh1/landslide-sync/internal/observability"
	"github.com/an-gr-hh1/landslide-sync/internal/session"
)

type fakeService struct {
	mu     sync.Mutex
	sinks  map[string]feed.Sink
	values map[string]any
	nextID int
}

func newFakeService() *fakeService {
	return &fakeService{
		sinks:  make(map[string]feed.Sink),
		values: make(map[string]any),
	}
}

func (f *fakeService) Subscribe(_ context.Context, path string, sink feed.Sink) (func(), error) {
	f.mu.Lock()
	f.sinks[path] = sink
	f.mu.Unlock()
	return func() {}, nil
}

func (f *fakeService) Get(_ context.Context, path string) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[path], nil
}

func (f *fakeService) Set(_ context.Context, path string, value any) error {
	f.mu.Lock()
	f.values[path] = value
	f.mu.Unlock()
	return nil
}

func (f *fakeService) Push(context.Context, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return "id-" + strconv.Itoa(f.nextID), nil
}

func (f *fakeService) deliver(path string, value any) {
	f.mu.Lock()
	sink := f.sinks[path]
	f.mu.Unlock()
	sink.OnValue(value)
}

type stubPresenter struct{}

func (stubPresenter) Present(string) {}
func (stubPresenter) Update(string)  {}
func (stubPresenter) Dismiss()       {}

type stubEffect struct{}

func (stubEffect) Notify(context.Context, string, string) error { return nil }
func (stubEffect) Play(context.Context) error                   { return nil }

type stubWeather struct{ text string }

func (s stubWeather) DisplayTemp(context.Context, float64, float64) string { return s.text }

type fixture struct {
	svc    *fakeService
	clock  *clockwork.FakeClock
	app    *app.App
	server *httpapi.Server
}

func newFixture(t *testing.T, weather httpapi.WeatherSource, locator location.Locator, sess session.Session) *fixture {
	t.Helper()

	svc := newFakeService()
	clock := clockwork.NewFakeClock()
	metrics := observability.NewMetricsForTesting()
	logger := slog.Default()

	gate := alertgate.New(stubPresenter{}, stubEffect{}, stubEffect{}, clock, 5*time.Second, logger, metrics)
	a := app.New(svc, gate, nil, clock, logger, metrics)
	require.NoError(t, a.Start(context.Background()))
	t.Cleanup(a.Close)

	hazards := []domain.HazardPoint{{Latitude: 9.5, Longitude: 76.5, Probability: 0.8}}
	srv := httpapi.NewServer(":0", a, weather, locator, hazards, nil, sess, clock, logger)
	return &fixture{svc: svc, clock: clock, app: a, server: srv}
}

// newFixtureWithBlobs is newFixture plus a disk blob store for photo
// uploads.
func newFixtureWithBlobs(t *testing.T, locator location.Locator, sess session.Session) *fixture {
	t.Helper()

	svc := newFakeService()
	clock := clockwork.NewFakeClock()
	metrics := observability.NewMetricsForTesting()
	logger := slog.Default()

	gate := alertgate.New(stubPresenter{}, stubEffect{}, stubEffect{}, clock, 5*time.Second, logger, metrics)
	a := app.New(svc, gate, nil, clock, logger, metrics)
	require.NoError(t, a.Start(context.Background()))
	t.Cleanup(a.Close)

	blobs, err := blob.NewDiskStore(t.TempDir(), "http://localhost:8080/blobs")
	require.NoError(t, err)

	srv := httpapi.NewServer(":0", a, nil, locator, nil, blobs, sess, clock, logger)
	return &fixture{svc: svc, clock: clock, app: a, server: srv}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestServer_Health(t *testing.T) {
	f := newFixture(t, nil, location.Denied{}, session.Guest())

	rec := f.do(http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])
}

func TestServer_ReadyAfterFirstSnapshot(t *testing.T) {
	f := newFixture(t, nil, location.Denied{}, session.Guest())

	rec := f.do(http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	f.svc.deliver(app.PathSensorReadings, map[string]any{"rain_sensor": 12.5})

	rec = f.do(http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_AlertAckLifecycle(t *testing.T) {
	f := newFixture(t, nil, location.Denied{}, session.Guest())

	rec := f.do(http.MethodPost, "/v1/alert/ack", "")
	require.Equal(t, http.StatusNotFound, rec.Code, "nothing to acknowledge yet")

	f.svc.deliver(app.PathAlerts, "Evacuate zone A")
	f.svc.deliver(app.PathSensorReadings, map[string]any{"alert": true})

	rec = f.do(http.MethodPost, "/v1/alert/ack", "")
	require.Equal(t, http.StatusConflict, rec.Code, "lockout window still open")

	f.clock.Advance(5 * time.Second)

	rec = f.do(http.MethodPost, "/v1/alert/ack", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["acknowledged"])
	assert.Equal(t, "Evacuate zone A", body["message"])
}

func TestServer_AlertStateRendering(t *testing.T) {
	f := newFixture(t, nil, location.Denied{}, session.Guest())

	rec := f.do(http.MethodGet, "/v1/alert", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["active"])

	f.svc.deliver(app.PathSensorReadings, map[string]any{"alert": true})

	rec = f.do(http.MethodGet, "/v1/alert", "")
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["active"])
	assert.Equal(t, true, body["ackLocked"])
}

func TestServer_DashboardDefaults(t *testing.T) {
	f := newFixture(t, nil, location.Denied{}, session.Guest())

	rec := f.do(http.MethodGet, "/v1/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Guest", body["name"])
	assert.Equal(t, "N/A", body["rainfall"])
	assert.Equal(t, "N/A", body["soilMoisture"])
	assert.Equal(t, "No alerts", body["alert"])
}

func TestServer_DashboardWithWeatherAndTelemetry(t *testing.T) {
	locator := location.Static{Pos: domain.Geo{Lat: 9.5, Lon: 76.5}}
	f := newFixture(t, stubWeather{text: "27.3°C"}, locator, session.Guest())

	f.svc.deliver(app.PathSensorReadings, map[string]any{
		"rain_sensor":   42.5,
		"soil_moisture": 61.0,
	})

	body := decodeBody(t, f.do(http.MethodGet, "/v1/dashboard", ""))
	assert.Equal(t, "42.5", body["rainfall"])
	assert.Equal(t, "61", body["soilMoisture"])
	assert.Equal(t, "27.3°C", body["weather"])
}

func TestServer_DashboardLocationUnavailable(t *testing.T) {
	f := newFixture(t, stubWeather{text: "unused"}, location.Denied{}, session.Guest())

	body := decodeBody(t, f.do(http.MethodGet, "/v1/dashboard", ""))
	assert.Equal(t, "Location unavailable", body["weather"])
}

func TestServer_ForumPost(t *testing.T) {
	sess := session.Session{UID: "u1", DisplayName: "asha", Anonymous: false}
	f := newFixture(t, nil, location.Denied{}, sess)

	rec := f.do(http.MethodPost, "/v1/forum", `{"content":"   "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/v1/forum", `{"content":"Road blocked near the bridge"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "u1", body["uid"])
	assert.Equal(t, "Road blocked near the bridge", body["content"])
	assert.Equal(t, true, body["trusted"])
	assert.NotEmpty(t, body["id"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestServer_ForumPostMalformedBody(t *testing.T) {
	f := newFixture(t, nil, location.Denied{}, session.Guest())

	rec := f.do(http.MethodPost, "/v1/forum", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_IncidentPostNeedsCoordinates(t *testing.T) {
	f := newFixture(t, nil, location.Denied{}, session.Guest())

	rec := f.do(http.MethodPost, "/v1/incidents", `{"description":"Minor slide"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/v1/incidents",
		`{"description":"Minor slide","latitude":9.5,"longitude":76.5}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Minor slide", body["description"])
	assert.Equal(t, 9.5, body["latitude"])
}

func TestServer_IncidentPostUsesLocatorFallback(t *testing.T) {
	locator := location.Static{Pos: domain.Geo{Lat: 9.1, Lon: 76.9}}
	f := newFixture(t, nil, locator, session.Guest())

	rec := f.do(http.MethodPost, "/v1/incidents", `{"description":"Debris on road"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, 9.1, body["latitude"])
	assert.Equal(t, 76.9, body["longitude"])
}

func TestServer_ProfileRoundTrip(t *testing.T) {
	sess := session.Session{UID: "u1", DisplayName: "asha", Anonymous: false}
	f := newFixture(t, nil, location.Denied{}, sess)

	rec := f.do(http.MethodPut, "/v1/profile",
		`{"uid":"someone-else","name":"Asha","email":"asha@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", decodeBody(t, rec)["uid"], "profile writes are pinned to the session uid")

	saved, ok := f.svc.values["users/u1"].(domain.UserProfile)
	require.True(t, ok)
	assert.Equal(t, "Asha", saved.Name)
}

func TestServer_IncidentPhotoUsesInjectedClock(t *testing.T) {
	locator := location.Static{Pos: domain.Geo{Lat: 9.1, Lon: 76.9}}
	f := newFixtureWithBlobs(t, locator, session.Guest())

	image := base64.StdEncoding.EncodeToString([]byte("jpeg bytes"))
	rec := f.do(http.MethodPost, "/v1/incidents",
		`{"description":"Debris on road","imageBase64":"`+image+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	want := fmt.Sprintf("http://localhost:8080/blobs/incident_images_%d.jpg", f.clock.Now().UnixNano())
	assert.Equal(t, want, decodeBody(t, rec)["imageUrl"])
}

func TestServer_Preparedness(t *testing.T) {
	f := newFixture(t, nil, location.Denied{}, session.Guest())

	rec := f.do(http.MethodGet, "/v1/preparedness", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var guide domain.PreparednessGuide
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &guide))
	assert.NotEmpty(t, guide.Sections)
	require.NotEmpty(t, guide.Contacts)
	assert.Contains(t, guide.Contacts[0].Numbers, "112")
}

func TestServer_Hazards(t *testing.T) {
	f := newFixture(t, nil, location.Denied{}, session.Guest())

	rec := f.do(http.MethodGet, "/v1/hazards", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var hazards []domain.HazardPoint
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hazards))
	require.Len(t, hazards, 1)
	assert.Equal(t, 0.8, hazards[0].Probability)
}
