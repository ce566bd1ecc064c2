package gateway

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"sportiify/internal/consul"
	"sportiify/internal/session"

	"github.com/gin-gonic/gin"
)

type mockDiscovery struct {
	instances map[string]*consul.ServiceInstance
}

func (m *mockDiscovery) Discover(serviceName string) ([]*consul.ServiceInstance, error) {
	inst, err := m.DiscoverOne(serviceName)
	if err != nil {
		return nil, err
	}
	return []*consul.ServiceInstance{inst}, nil
}

func (m *mockDiscovery) DiscoverOne(serviceName string) (*consul.ServiceInstance, error) {
	inst, ok := m.instances[serviceName]
	if !ok {
		return nil, errors.New("no healthy instances found for service: " + serviceName)
	}
	return inst, nil
}

// echoBackend answers with the request it received
func echoBackend(t *testing.T, name string) (*httptest.Server, *consul.ServiceInstance) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"service":    name,
			"path":       r.URL.Path,
			"query":      r.URL.RawQuery,
			"user":       r.Header.Get("X-User-ID"),
			"token":      r.Header.Get(session.TokenHeader),
			"request_id": r.Header.Get(RequestIDHeader),
		})
	}))
	t.Cleanup(srv.Close)

	host, portStr, _ := net.SplitHostPort(srv.Listener.Addr().String())
	port, _ := strconv.Atoi(portStr)
	return srv, &consul.ServiceInstance{ID: name + "-1", Name: name, Address: host, Port: port}
}

func setupGateway(t *testing.T, services ...string) (*gin.Engine, session.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	discovery := &mockDiscovery{instances: map[string]*consul.ServiceInstance{}}
	for _, name := range services {
		_, inst := echoBackend(t, name)
		discovery.instances[name] = inst
	}

	tokens, err := session.NewManager("gateway-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return SetupRouter(discovery, tokens, []string{"http://localhost:3000"}, discardLogger()), tokens
}

// closeNotifyRecorder lets gin's writer satisfy http.CloseNotifier, which
// httputil.ReverseProxy asks for on every proxied request
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
}

func (closeNotifyRecorder) CloseNotify() <-chan bool {
	return make(chan bool)
}

func serve(r http.Handler, method, path string, headers map[string]string) (*httptest.ResponseRecorder, map[string]string) {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(closeNotifyRecorder{w}, req)

	var body map[string]string
	json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestRouting(t *testing.T) {
	r, _ := setupGateway(t, consul.AuthService, consul.PredictionsService, consul.SportsService)

	tests := []struct {
		method  string
		path    string
		service string
	}{
		{http.MethodPost, "/api/auth/login", consul.AuthService},
		{http.MethodGet, "/api/auth/check-token", consul.AuthService},
		{http.MethodGet, "/match-predictions?page=2&league=Premier+League", consul.PredictionsService},
		{http.MethodGet, "/match-predictions/m1/narration", consul.PredictionsService},
		{http.MethodGet, "/videos/LaLiga", consul.PredictionsService},
		{http.MethodGet, "/api/sports/soccer/competitions", consul.SportsService},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w, body := serve(r, tt.method, tt.path, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if body["service"] != tt.service {
				t.Errorf("Expected %s, got %s", tt.service, body["service"])
			}
			if body["request_id"] == "" {
				t.Error("Expected request ID forwarded upstream")
			}
		})
	}

	_, body := serve(r, http.MethodGet, "/match-predictions?page=2&league=Premier+League", nil)
	if body["path"] != "/match-predictions" || body["query"] != "page=2&league=Premier+League" {
		t.Errorf("Expected path and query preserved, got %v", body)
	}
}

func TestPredictRoute_RequiresToken(t *testing.T) {
	r, tokens := setupGateway(t, consul.PredictionsService)

	w, body := serve(r, http.MethodGet, "/predict-match-outcome/m1", nil)
	if w.Code != http.StatusUnauthorized || body["msg"] != "No token, authorization denied" {
		t.Errorf("Expected 401 without token, got %d %v", w.Code, body)
	}

	w, body = serve(r, http.MethodGet, "/predict-match-outcome/m1", map[string]string{session.TokenHeader: "garbage"})
	if w.Code != http.StatusUnauthorized || body["msg"] != "Token is not valid" {
		t.Errorf("Expected 401 for bad token, got %d %v", w.Code, body)
	}

	token, _, _ := tokens.Issue(session.Identity{ID: "user-7", Email: "fan@example.com"})
	w, body = serve(r, http.MethodGet, "/predict-match-outcome/m1", map[string]string{session.TokenHeader: token})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if body["user"] != "user-7" || body["token"] != token {
		t.Errorf("Expected identity and token forwarded, got %v", body)
	}
}

func TestSpoofedIdentityNotForwarded(t *testing.T) {
	r, _ := setupGateway(t, consul.PredictionsService)

	_, body := serve(r, http.MethodGet, "/match-predictions", map[string]string{"X-User-ID": "admin"})
	if body["user"] != "" {
		t.Errorf("Expected spoofed X-User-ID dropped, got %q", body["user"])
	}
}

func TestDiscoveryFailure(t *testing.T) {
	r, _ := setupGateway(t)

	w, _ := serve(r, http.MethodGet, "/api/sports/soccer/matches", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
}

func TestProxyFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	_, inst := echoBackend(t, consul.SportsService)
	dead := httptest.NewServer(http.NotFoundHandler())
	host, portStr, _ := net.SplitHostPort(dead.Listener.Addr().String())
	dead.Close()
	port, _ := strconv.Atoi(portStr)
	inst.Address, inst.Port = host, port

	discovery := &mockDiscovery{instances: map[string]*consul.ServiceInstance{consul.SportsService: inst}}
	tokens, _ := session.NewManager("gateway-test-secret", time.Hour)
	r := SetupRouter(discovery, tokens, []string{"http://localhost:3000"}, discardLogger())

	w, body := serve(r, http.MethodGet, "/api/sports/soccer/matches", nil)
	if w.Code != http.StatusBadGateway || body["msg"] != "Bad gateway" {
		t.Errorf("Expected 502, got %d %v", w.Code, body)
	}
}

func TestHealth(t *testing.T) {
	r, _ := setupGateway(t)

	w, body := serve(r, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK || body["status"] != "healthy" {
		t.Errorf("Unexpected health response %d %v", w.Code, body)
	}
}
