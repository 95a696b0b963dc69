package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPlaceCountry(t *testing.T) {
	structured := &Place{DisplayName: "Berlin, Deutschland"}
	structured.Address.Country = "Germany"
	assert.Equal(t, "Germany", structured.Country())

	fallback := &Place{DisplayName: "Berlin, 10117, Germany"}
	assert.Equal(t, "Germany", fallback.Country())

	var nilPlace *Place
	assert.Equal(t, "", nilPlace.Country())
}

func TestResolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "berlin", r.URL.Query().Get("q"))
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "1", r.URL.Query().Get("addressdetails"))
		assert.Equal(t, "shortlister-test", r.Header.Get("User-Agent"))
		fmt.Fprint(w, `[{
			"display_name": "Berlin, Deutschland",
			"address": {"country": "Germany", "country_code": "de"}
		}]`)
	}))
	defer server.Close()

	client := NewClient("shortlister-test", zap.NewNop())
	client.Endpoint = server.URL

	place, err := client.Resolve(context.Background(), "berlin")
	require.NoError(t, err)
	require.NotNil(t, place)
	assert.Equal(t, "Germany", place.Country())
}

func TestResolveNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	client := NewClient("shortlister-test", zap.NewNop())
	client.Endpoint = server.URL

	place, err := client.Resolve(context.Background(), "nowhere in particular")
	require.NoError(t, err)
	assert.Nil(t, place)
}

func TestResolveNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "blocked", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("shortlister-test", zap.NewNop())
	client.Endpoint = server.URL

	_, err := client.Resolve(context.Background(), "berlin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestResolveEmptyQuerySkipsRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected for an empty query")
	}))
	defer server.Close()

	client := NewClient("shortlister-test", zap.NewNop())
	client.Endpoint = server.URL

	place, err := client.Resolve(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, place)
}
