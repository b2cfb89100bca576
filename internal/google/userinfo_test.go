package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestGetUserInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "userinfo")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Jane Doe","given_name":"Jane","email":"jane@example.com"}`))
	}))
	defer srv.Close()

	info, err := GetUserInfo(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", info.Name)
	assert.Equal(t, "jane@example.com", info.Email)
	assert.Equal(t, "Jane", info.DisplayName())
}

func TestGetUserInfo_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":401,"message":"invalid"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := GetUserInfo(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	assert.Error(t, err)
}

func TestDisplayName(t *testing.T) {
	var nilInfo *UserInfo
	assert.Equal(t, "User", nilInfo.DisplayName())
	assert.Equal(t, "User", (&UserInfo{}).DisplayName())
	assert.Equal(t, "Jane Doe", (&UserInfo{Name: "Jane Doe"}).DisplayName())
}
