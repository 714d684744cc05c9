package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/meatmarket/internal/domain/models"
	"github.com/mamadbah2/meatmarket/internal/testutil"
)

const secret = "test-secret"

func TestAuthenticate(t *testing.T) {
	active := testutil.NewUser("admin", models.RoleAdmin)
	inactive := testutil.NewUser("retired", models.RoleUser)
	inactive.IsActive = false
	v := NewVerifier(secret, testutil.NewDirectory(active, inactive))

	good, err := v.Issue(active.ID, time.Hour)
	require.NoError(t, err)

	id, err := v.Authenticate(context.Background(), "Bearer "+good)
	require.NoError(t, err)
	assert.Equal(t, active.ID, id.ID)
	assert.Equal(t, models.RoleAdmin, id.Role)

	expired, err := v.Issue(active.ID, -time.Minute)
	require.NoError(t, err)
	retired, err := v.Issue(inactive.ID, time.Hour)
	require.NoError(t, err)
	unknown, err := v.Issue(primitive.NewObjectID(), time.Hour)
	require.NoError(t, err)
	forged, err := NewVerifier("other-secret", nil).Issue(active.ID, time.Hour)
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: active.ID.Hex()}).SignedString([]byte(secret))
	require.NoError(t, err)
	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "nope"}).SignedString([]byte(secret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   error
	}{
		{"missing", "", ErrNoToken},
		{"bare scheme", "Bearer ", ErrNoToken},
		{"garbage", "Bearer not.a.jwt", ErrInvalidToken},
		{"expired", "Bearer " + expired, ErrInvalidToken},
		{"inactive account", "Bearer " + retired, ErrInvalidToken},
		{"unknown account", "Bearer " + unknown, ErrInvalidToken},
		{"wrong secret", "Bearer " + forged, ErrInvalidToken},
		{"other algorithm", "Bearer " + hs512, ErrInvalidToken},
		{"bad subject", "Bearer " + badSubject, ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Authenticate(context.Background(), tt.header)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, models.ErrUnauthenticated)
		})
	}
}

func TestIdentityFromCtx(t *testing.T) {
	_, err := IdentityFromCtx(context.Background())
	assert.ErrorIs(t, err, ErrIdentityNotFound)

	_, err = IdentityFromCtx(WithIdentity(context.Background(), models.Identity{}))
	assert.ErrorIs(t, err, ErrIdentityNotFound)

	want := testutil.NewUser("rahim", models.RoleUser).Identity()
	got, err := IdentityFromCtx(WithIdentity(context.Background(), want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	user := testutil.NewUser("rahim", models.RoleUser)
	v := NewVerifier(secret, testutil.NewDirectory(user))
	token, err := v.Issue(user.ID, time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", RequireAuth(v, nil), func(c *gin.Context) {
		id, err := IdentityFromCtx(c.Request.Context())
		require.NoError(t, err)
		c.JSON(http.StatusOK, gin.H{"name": id.Name})
	})

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"no header", "", http.StatusUnauthorized, "No token provided, access denied"},
		{"invalid", "Bearer junk", http.StatusUnauthorized, "Token is not valid"},
		{"valid", "Bearer " + token, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.message != "" {
				assert.Equal(t, tt.message, body["message"])
			} else {
				assert.Equal(t, "rahim", body["name"])
			}
		})
	}
}
