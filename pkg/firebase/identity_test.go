package firebase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIdentityClient(serverURL string) *IdentityClient {
	c := NewIdentityClient("test-key")
	c.Endpoint = serverURL
	return c
}

func TestSignInWithPassword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/accounts:signInWithPassword", r.URL.Path)
		require.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "x@y.com", body["email"])
		assert.Equal(t, "pw", body["password"])
		assert.Equal(t, true, body["returnSecureToken"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"localId": "uid1", "email": "x@y.com", "idToken": "tok"}`))
	}))
	defer server.Close()

	c := newTestIdentityClient(server.URL)
	result, err := c.SignInWithPassword(context.Background(), "x@y.com", "pw")
	require.NoError(t, err)

	assert.Equal(t, "uid1", result.UID)
	assert.Equal(t, "x@y.com", result.Email)
	assert.Equal(t, "tok", result.IDToken)
}

func TestSignInWithPasswordRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "INVALID_LOGIN_CREDENTIALS"}}`))
	}))
	defer server.Close()

	c := newTestIdentityClient(server.URL)
	_, err := c.SignInWithPassword(context.Background(), "x@y.com", "wrong")

	var idErr *IdentityError
	require.ErrorAs(t, err, &idErr)
	assert.Equal(t, http.StatusBadRequest, idErr.StatusCode)
	assert.Contains(t, idErr.Error(), "INVALID_LOGIN_CREDENTIALS")
}

func TestSendPasswordResetEmail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/accounts:sendOobCode", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "PASSWORD_RESET", body["requestType"])
		assert.Equal(t, "x@y.com", body["email"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"email": "x@y.com"}`))
	}))
	defer server.Close()

	c := newTestIdentityClient(server.URL)
	assert.NoError(t, c.SendPasswordResetEmail(context.Background(), "x@y.com"))
}
