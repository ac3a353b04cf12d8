package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ranconf/enodebd-go/internal/config"
	"github.com/ranconf/enodebd-go/pkg/datamodel"
	"github.com/ranconf/enodebd-go/pkg/devices"
	"github.com/ranconf/enodebd-go/pkg/persistence"
	"github.com/ranconf/enodebd-go/pkg/service"
	"github.com/ranconf/enodebd-go/pkg/tr069"
)

const testSerial = "120200002618AGP0003"

type harness struct {
	store   *persistence.FileStore
	svc     *service.Service
	handler http.Handler
}

func newHarness(t *testing.T, start bool, mod func(*config.APIConfig)) *harness {
	t.Helper()
	store := persistence.NewFileStore(t.TempDir())

	cfg := service.DefaultConfig()
	cfg.Store = store
	cfg.IdleTimeout = 0
	svc, err := service.New(cfg)
	require.NoError(t, err)
	if start {
		require.NoError(t, svc.Start(context.Background()))
		t.Cleanup(svc.Stop)
	}

	apiCfg := config.Default().API
	if mod != nil {
		mod(&apiCfg)
	}
	srv, err := New(Deps{Config: apiCfg, Service: svc, Version: "test"})
	require.NoError(t, err)

	return &harness{store: store, svc: svc, handler: srv.Handler()}
}

func (h *harness) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) postCWMP(t *testing.T, session string, msg tr069.Message) *httptest.ResponseRecorder {
	t.Helper()
	var body []byte
	if msg != nil {
		var err error
		body, err = tr069.Encode(msg)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(http.MethodPost, "/cwmp", bytes.NewReader(body))
	if session != "" {
		req.Header.Set(SessionHeader, session)
	}
	return h.do(t, req)
}

func inform(serial string) *tr069.Inform {
	return &tr069.Inform{
		DeviceID: tr069.DeviceID{OUI: devices.CaviumOUI, ProductClass: "FAP", SerialNumber: serial},
		Events:   []string{tr069.EventPeriodic},
		Parameters: []tr069.ParameterValue{
			{Name: tr069.ParamSoftwareVersion, Value: "TEST3920@210901"},
		},
	}
}

func decodeReply(t *testing.T, rec *httptest.ResponseRecorder) tr069.Message {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, ContentTypeCBOR, rec.Header().Get("Content-Type"))
	msg, err := tr069.Decode(rec.Body.Bytes())
	require.NoError(t, err)
	return msg
}

func TestCWMPSession(t *testing.T) {
	h := newHarness(t, true, nil)

	rec := h.postCWMP(t, "", inform(testSerial))
	assert.IsType(t, &tr069.InformResponse{}, decodeReply(t, rec))
	session := rec.Header().Get(SessionHeader)
	require.NotEmpty(t, session)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "session cookie set")
	assert.Equal(t, session, cookie.Value)

	// The empty POST asks for the transient parameters.
	req := httptest.NewRequest(http.MethodPost, "/cwmp", nil)
	req.AddCookie(cookie)
	rec = h.do(t, req)
	assert.IsType(t, &tr069.GetParameterValues{}, decodeReply(t, rec))
	assert.Equal(t, session, rec.Header().Get(SessionHeader))
}

func TestCWMPUnknownSession(t *testing.T) {
	h := newHarness(t, true, nil)
	rec := h.postCWMP(t, "no-such-session", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCWMPBadBody(t *testing.T) {
	h := newHarness(t, true, nil)
	req := httptest.NewRequest(http.MethodPost, "/cwmp", strings.NewReader("not cbor"))
	rec := h.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCWMPRejectedInform(t *testing.T) {
	h := newHarness(t, true, nil)

	unknown := inform(testSerial)
	unknown.DeviceID.OUI = "ABCDEF"
	assert.Equal(t, http.StatusForbidden, h.postCWMP(t, "", unknown).Code)

	assert.Equal(t, http.StatusForbidden, h.postCWMP(t, "", inform("")).Code)
}

func TestCWMPServiceNotStarted(t *testing.T) {
	h := newHarness(t, false, nil)
	rec := h.postCWMP(t, "", inform(testSerial))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCWMPCustomPath(t *testing.T) {
	h := newHarness(t, true, func(c *config.APIConfig) { c.CWMPPath = "/acs" })
	body, err := tr069.Encode(inform(testSerial))
	require.NoError(t, err)

	rec := h.do(t, httptest.NewRequest(http.MethodPost, "/acs", bytes.NewReader(body)))
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(t, httptest.NewRequest(http.MethodPost, "/cwmp", bytes.NewReader(body)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeviceEndpoints(t *testing.T) {
	h := newHarness(t, true, nil)
	require.Equal(t, http.StatusOK, h.postCWMP(t, "", inform(testSerial)).Code)

	rec := h.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/devices", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Devices []DeviceView `json:"devices"`
		Count   int          `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, testSerial, list.Devices[0].Serial)
	assert.Equal(t, "cavium", list.Devices[0].DeviceType)
	assert.True(t, list.Devices[0].Connected)

	rec = h.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/devices/"+testSerial, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var view DeviceView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "TEST3920@210901", view.SoftwareVersion)
	assert.Equal(t, devices.CaviumOUI, view.Device.OUI)

	rec = h.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/devices/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRebootEndpoint(t *testing.T) {
	h := newHarness(t, true, nil)

	rec := h.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/devices/"+testSerial+"/reboot", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.Equal(t, http.StatusOK, h.postCWMP(t, "", inform(testSerial)).Code)
	rec = h.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/devices/"+testSerial+"/reboot", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "scheduled", got["outcome"])

	rec = h.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/devices/"+testSerial+"/reboot", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "already pending", got["outcome"])
}

func TestPutIntent(t *testing.T) {
	h := newHarness(t, true, nil)

	doc := `{"earfcndl": 39150, "pci": 260, "plmns": [{"plmnid": "00101"}]}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/devices/"+testSerial+"/intent", strings.NewReader(doc))
	rec := h.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	desired, err := h.store.LoadDesired(context.Background(), testSerial)
	require.NoError(t, err)
	v, ok := desired.Get(datamodel.K(datamodel.EARFCNDL))
	require.True(t, ok)
	assert.EqualValues(t, 39150, v)

	req = httptest.NewRequest(http.MethodPut, "/api/v1/devices/"+testSerial+"/intent", strings.NewReader(`{"pci": 900}`))
	rec = h.do(t, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestBasicAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	h := newHarness(t, true, func(c *config.APIConfig) {
		c.Auth.Username = "ops"
		c.Auth.PasswordHash = string(hash)
	})

	tests := []struct {
		name       string
		user, pass string
		setAuth    bool
		want       int
	}{
		{"no credentials", "", "", false, http.StatusUnauthorized},
		{"wrong password", "ops", "guess", true, http.StatusUnauthorized},
		{"wrong user", "root", "s3cret", true, http.StatusUnauthorized},
		{"valid", "ops", "s3cret", true, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/devices", nil)
			if tt.setAuth {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			rec := h.do(t, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
			}
		})
	}

	// Health and the CWMP ingress stay open.
	rec := h.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, h.postCWMP(t, "", inform(testSerial)).Code)
}

func TestRequestIDHeader(t *testing.T) {
	h := newHarness(t, true, nil)

	rec := h.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Len(t, rec.Header().Get("X-Request-ID"), 16)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec = h.do(t, req)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
}

func TestNewRequiresService(t *testing.T) {
	_, err := New(Deps{})
	assert.Error(t, err)
}
