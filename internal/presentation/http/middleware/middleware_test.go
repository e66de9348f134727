package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/optica-api/internal/config"
	"github.com/sangkips/optica-api/internal/domain/entity"
	infraRepo "github.com/sangkips/optica-api/internal/infrastructure/repository"
	"github.com/sangkips/optica-api/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockAccessChecker struct {
	mock.Mock
}

func (m *MockAccessChecker) IsActive(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type MockIdempotencyRepository struct {
	mock.Mock
}

func (m *MockIdempotencyRepository) GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	args := m.Called(ctx, key, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.IdempotencyKey), args.Error(1)
}

func (m *MockIdempotencyRepository) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	return m.Called(ctx, ikey).Error(0)
}

func (m *MockIdempotencyRepository) DeleteExpired(ctx context.Context, now time.Time) error {
	return m.Called(ctx, now).Error(0)
}

// asUser stands in for AuthMiddleware in tests that start after authentication
func asUser(userID uuid.UUID, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("user_roles", roles)
		c.Set("user_permissions", []string{"manage-receipts"})
		c.Next()
	}
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Message
}

func TestAuthMiddleware(t *testing.T) {
	jwtManager := utils.NewJWTManager("test-secret", time.Hour, time.Hour)
	userID := uuid.New()
	token, err := jwtManager.GenerateAccessToken(userID, "owner@shop.ma", []string{entity.RoleOwner}, nil)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/api", AuthMiddleware(jwtManager), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.MustGet("user_id")})
	})
	r.GET("/ws", WebSocketAuthMiddleware(jwtManager), okHandler)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing header", "/api", "", http.StatusUnauthorized},
		{"not bearer", "/api", "Token " + token, http.StatusUnauthorized},
		{"garbage token", "/api", "Bearer nope", http.StatusUnauthorized},
		{"valid", "/api", "Bearer " + token, http.StatusOK},
		{"query ignored outside websocket", "/api?token=" + token, "", http.StatusUnauthorized},
		{"websocket query token", "/ws?token=" + token, "", http.StatusOK},
		{"websocket without token", "/ws", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK && tt.path == "/api" {
				assert.Contains(t, w.Body.String(), userID.String())
			}
		})
	}
}

func TestRequirePermissionAndRole(t *testing.T) {
	userID := uuid.New()
	r := gin.New()
	r.GET("/receipts", asUser(userID, entity.RoleOwner), RequirePermission("manage-receipts"), okHandler)
	r.GET("/products", asUser(userID, entity.RoleOwner), RequirePermission("manage-products"), okHandler)
	r.GET("/admin", asUser(userID, entity.RoleOwner), RequireRole(entity.RoleSuperAdmin), okHandler)
	r.GET("/admin-ok", asUser(userID, entity.RoleSuperAdmin), RequireRole(entity.RoleSuperAdmin), okHandler)

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/receipts", nil)).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, httptest.NewRequest(http.MethodGet, "/products", nil)).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, httptest.NewRequest(http.MethodGet, "/admin", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/admin-ok", nil)).Code)
}

func TestSubscriptionGuard(t *testing.T) {
	userID := uuid.New()

	t.Run("expired subscription is refused", func(t *testing.T) {
		checker := new(MockAccessChecker)
		checker.On("IsActive", mock.Anything, userID).Return(false, nil).Once()

		r := gin.New()
		r.GET("/x", asUser(userID, entity.RoleOwner), SubscriptionGuard(checker), okHandler)
		w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Your subscription has expired. Please renew to continue.", message(t, w))
		checker.AssertExpectations(t)
	})

	t.Run("active subscription passes", func(t *testing.T) {
		checker := new(MockAccessChecker)
		checker.On("IsActive", mock.Anything, userID).Return(true, nil).Once()

		r := gin.New()
		r.GET("/x", asUser(userID, entity.RoleOwner), SubscriptionGuard(checker), okHandler)
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
		checker.AssertExpectations(t)
	})

	t.Run("super admin is not checked", func(t *testing.T) {
		checker := new(MockAccessChecker)

		r := gin.New()
		r.GET("/x", asUser(userID, entity.RoleSuperAdmin), SubscriptionGuard(checker), okHandler)
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
		checker.AssertNotCalled(t, "IsActive", mock.Anything, mock.Anything)
	})

	t.Run("lookup failure is a server error", func(t *testing.T) {
		checker := new(MockAccessChecker)
		checker.On("IsActive", mock.Anything, userID).Return(false, errors.New("db down")).Once()

		r := gin.New()
		r.GET("/x", asUser(userID, entity.RoleOwner), SubscriptionGuard(checker), okHandler)
		w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "db down")
	})
}

func TestOwnerMiddleware(t *testing.T) {
	userID := uuid.New()
	var scoped uuid.UUID

	r := gin.New()
	r.GET("/x", asUser(userID), OwnerMiddleware(), func(c *gin.Context) {
		scoped, _ = infraRepo.GetOwnerID(c.Request.Context())
		okHandler(c)
	})
	r.GET("/anon", OwnerMiddleware(), okHandler)

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
	assert.Equal(t, userID, scoped)
	assert.Equal(t, http.StatusUnauthorized, serve(r, httptest.NewRequest(http.MethodGet, "/anon", nil)).Code)
}

func TestIdempotency(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	body := `{"client_id":"c1"}`

	newRouter := func(repo *MockIdempotencyRepository, calls *int, status int) *gin.Engine {
		r := gin.New()
		r.POST("/receipts", asUser(userID), Idempotency(IdempotencyConfig{
			Repo: repo,
			Now:  func() time.Time { return now },
		}), func(c *gin.Context) {
			*calls++
			c.JSON(status, gin.H{"n": *calls})
		})
		return r
	}
	post := func(payload string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/receipts", strings.NewReader(payload))
		req.Header.Set(IdempotencyKeyHeader, "key-1")
		return req
	}

	t.Run("first request is stored", func(t *testing.T) {
		repo := new(MockIdempotencyRepository)
		repo.On("GetByKey", mock.Anything, "key-1", userID).Return(nil, nil).Once()
		repo.On("Create", mock.Anything, mock.MatchedBy(func(k *entity.IdempotencyKey) bool {
			return k.ResponseCode == http.StatusCreated &&
				k.ResponseBody == `{"n":1}` &&
				k.Endpoint == "POST /receipts" &&
				k.RequestHash != "" &&
				k.ExpiresAt.Equal(now.Add(IdempotencyKeyTTL))
		})).Return(nil).Once()

		calls := 0
		w := serve(newRouter(repo, &calls, http.StatusCreated), post(body))
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, calls)
		repo.AssertExpectations(t)
	})

	t.Run("retry replays the stored response", func(t *testing.T) {
		capture := new(MockIdempotencyRepository)
		var stored *entity.IdempotencyKey
		capture.On("GetByKey", mock.Anything, "key-1", userID).Return(nil, nil).Once()
		capture.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			stored = args.Get(1).(*entity.IdempotencyKey)
		}).Return(nil).Once()

		calls := 0
		serve(newRouter(capture, &calls, http.StatusCreated), post(body))
		require.NotNil(t, stored)

		repo := new(MockIdempotencyRepository)
		repo.On("GetByKey", mock.Anything, "key-1", userID).Return(stored, nil).Once()
		w := serve(newRouter(repo, &calls, http.StatusCreated), post(body))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "true", w.Header().Get("X-Idempotency-Replayed"))
		assert.JSONEq(t, `{"n":1}`, w.Body.String())
		assert.Equal(t, 1, calls)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("same key with another body conflicts", func(t *testing.T) {
		repo := new(MockIdempotencyRepository)
		repo.On("GetByKey", mock.Anything, "key-1", userID).Return(&entity.IdempotencyKey{
			RequestHash:  "something-else",
			ResponseCode: http.StatusCreated,
			ExpiresAt:    now.Add(time.Hour),
		}, nil).Once()

		calls := 0
		w := serve(newRouter(repo, &calls, http.StatusCreated), post(body))
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, 0, calls)
	})

	t.Run("failures are not stored", func(t *testing.T) {
		repo := new(MockIdempotencyRepository)
		repo.On("GetByKey", mock.Anything, "key-1", userID).Return(nil, nil).Once()

		calls := 0
		w := serve(newRouter(repo, &calls, http.StatusUnprocessableEntity), post(body))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("no header passes through", func(t *testing.T) {
		repo := new(MockIdempotencyRepository)

		calls := 0
		req := httptest.NewRequest(http.MethodPost, "/receipts", strings.NewReader(body))
		w := serve(newRouter(repo, &calls, http.StatusCreated), req)
		assert.Equal(t, http.StatusCreated, w.Code)
		repo.AssertNotCalled(t, "GetByKey", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Requests: 2, Window: time.Hour})
	alice, bob := uuid.New(), uuid.New()

	r := gin.New()
	r.GET("/alice", asUser(alice), rl.Middleware(), okHandler)
	r.GET("/bob", asUser(bob), rl.Middleware(), okHandler)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/alice", nil)).Code)
	}
	w := serve(r, httptest.NewRequest(http.MethodGet, "/alice", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/bob", nil)).Code)
	assert.Equal(t, 2, rl.Size())

	rl.Cleanup(time.Now().Add(time.Hour))
	assert.Equal(t, 0, rl.Size())
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(&config.CORSConfig{
		AllowedOrigins: []string{"https://shop.example.ma"},
		AllowedHeaders: []string{"x-custom", "authorization"},
	}))
	r.POST("/receipts", okHandler)

	t.Run("preflight allows idempotency and auth headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/receipts", nil)
		req.Header.Set("Origin", "https://shop.example.ma")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Idempotency-Key, Authorization")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Less(t, w.Code, 300)
		assert.Equal(t, "https://shop.example.ma", w.Header().Get("Access-Control-Allow-Origin"))
		allowed := strings.ToLower(w.Header().Get("Access-Control-Allow-Headers"))
		assert.Contains(t, allowed, "idempotency-key")
		assert.Contains(t, allowed, "authorization")
		assert.Contains(t, allowed, "x-custom")
		assert.Equal(t, 1, strings.Count(allowed, "authorization"))
		assert.NotContains(t, allowed, "x-csrf-token")
	})

	t.Run("replay and rate limit headers are exposed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/receipts", nil)
		req.Header.Set("Origin", "https://shop.example.ma")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		exposed := strings.ToLower(w.Header().Get("Access-Control-Expose-Headers"))
		assert.Contains(t, exposed, "x-idempotency-replayed")
		assert.Contains(t, exposed, "retry-after")
	})
}
