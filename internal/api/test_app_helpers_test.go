package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/miffy/internal/db"
	"github.com/terraincognita07/miffy/internal/realtime"
)

const testSecretKey = "test-secret-key-with-enough-length-123"

type capturingLinkSender struct {
	mu    sync.Mutex
	links map[string]string
}

func (sender *capturingLinkSender) SendSignInLink(ctx context.Context, email string, link string) error {
	sender.mu.Lock()
	defer sender.mu.Unlock()
	if sender.links == nil {
		sender.links = make(map[string]string)
	}
	sender.links[email] = link
	return nil
}

func (sender *capturingLinkSender) link(email string) string {
	sender.mu.Lock()
	defer sender.mu.Unlock()
	return sender.links[email]
}

type testApp struct {
	app     *fiber.App
	handler *Handler
	sender  *capturingLinkSender
}

func newTestApp(t *testing.T, configure func(*Options)) testApp {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "miffy-api-test.db")
	database, err := db.OpenSQLite(databasePath, nil)
	if err != nil {
		t.Fatalf("init database: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("load sql database handle: %v", err)
	}

	broker := realtime.NewMemoryBroker(nil)
	t.Cleanup(func() {
		if err := broker.Close(); err != nil {
			t.Errorf("close broker: %v", err)
		}
		if err := sqlDB.Close(); err != nil {
			t.Errorf("close sqlite db: %v", err)
		}
	})

	options := Options{
		SecretKey:         testSecretKey,
		Location:          time.UTC,
		SiteURL:           "http://miffy.test",
		LinkRatePerMinute: 10,
	}
	if configure != nil {
		configure(&options)
	}

	sender := &capturingLinkSender{}
	handler, err := NewHandler(database, broker, sender, options)
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}
	t.Cleanup(handler.Drain)

	app := fiber.New()
	RegisterRoutes(app, handler)
	return testApp{app: app, handler: handler, sender: sender}
}

func (env testApp) do(t *testing.T, method string, target string, body any, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	request := httptest.NewRequest(method, target, reader)
	request.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if body != nil {
		request.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for _, cookie := range cookies {
		if cookie != nil {
			request.AddCookie(cookie)
		}
	}

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, target, err)
	}
	return response
}

// signIn walks the whole sign-in link flow and returns the session cookie.
func (env testApp) signIn(t *testing.T, email string) *http.Cookie {
	t.Helper()

	response := env.do(t, http.MethodPost, "/api/auth/link", map[string]string{"email": email})
	response.Body.Close()
	if response.StatusCode != http.StatusAccepted {
		t.Fatalf("expected link request status 202, got %d", response.StatusCode)
	}

	link := env.sender.link(strings.ToLower(strings.TrimSpace(email)))
	if link == "" {
		t.Fatalf("expected sign-in link for %s", email)
	}
	parsed, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse sign-in link: %v", err)
	}

	callback := env.do(t, http.MethodGet, parsed.RequestURI(), nil)
	callback.Body.Close()
	if callback.StatusCode != http.StatusOK {
		t.Fatalf("expected callback status 200, got %d", callback.StatusCode)
	}
	cookie := responseCookie(callback.Cookies(), authCookieName)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected auth cookie after callback")
	}
	return cookie
}

func uintString(value uint) string {
	return strconv.FormatUint(uint64(value), 10)
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func readAPIError(t *testing.T, body io.Reader) string {
	t.Helper()

	payload := map[string]any{}
	decodeJSON(t, body, &payload)
	message, _ := payload["error"].(string)
	return message
}

func decodeJSON(t *testing.T, body io.Reader, target any) {
	t.Helper()

	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		t.Fatalf("decode response body %q: %v", string(raw), err)
	}
}
