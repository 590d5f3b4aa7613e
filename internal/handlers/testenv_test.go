package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shopsmart/backend/internal/config"
	"github.com/shopsmart/backend/internal/hash"
	"github.com/shopsmart/backend/internal/models"
)

// fakePublisher records published events instead of talking to a broker.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	Topic string
	Key   string
	Event interface{}
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic, key string, event interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{Topic: topic, Key: key, Event: event})
	return nil
}

func (f *fakePublisher) byType(eventType string) []publishedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []publishedEvent
	for _, e := range f.events {
		if m, ok := e.Event.(map[string]any); ok && m["type"] == eventType {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	T        *testing.T
	E        *echo.Echo
	DB       *gorm.DB
	Producer *fakePublisher

	Auth   *AuthHandler
	Cart   *CartHandler
	Orders *OrderHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	prod := &fakePublisher{}
	env := &testEnv{
		T:        t,
		E:        echo.New(),
		DB:       db,
		Producer: prod,
	}
	env.Auth = &AuthHandler{
		DB:            db,
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		Producer:      prod,
	}
	env.Cart = &CartHandler{DB: db, Producer: prod}
	env.Orders = &OrderHandler{DB: db, Producer: prod}
	return env
}

// doJSONRequest builds an echo context the way the middleware would leave
// it after authentication: userID and role already set.
func (env *testEnv) doJSONRequest(method, path string, body interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) asPrincipal(c echo.Context, userID uint, role string) {
	c.Set("userID", userID)
	c.Set("role", role)
}

func (env *testEnv) createUser(name, role string) *models.User {
	env.T.Helper()
	pw, err := hash.HashPassword("test_password")
	require.NoError(env.T, err)
	u := &models.User{
		Name:               name,
		Email:              name + "@example.com",
		Phone:              "+1234567890",
		PasswordHash:       pw,
		Role:               role,
		ShopApprovalStatus: models.ShopApproved,
	}
	require.NoError(env.T, env.DB.Create(u).Error)
	return u
}

func (env *testEnv) createProduct(shopID *uint, name string, price float64) *models.Product {
	env.T.Helper()
	p := &models.Product{
		ShopID:      shopID,
		Name:        name,
		Description: "test product",
		Price:       price,
		Stock:       100,
		Category:    "test",
	}
	require.NoError(env.T, env.DB.Create(p).Error)
	return p
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func httpErrorCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he.Code
}
