// internal/adapter/geocoding/nominatim_test.go

package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestForwardParsesSingleResult(t *testing.T) {
	var gotUA, gotLimit, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLimit = r.URL.Query().Get("limit")
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(`[{"lat":"-37.8183","lon":"144.9671","display_name":"Flinders Street Station, Melbourne"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "mempin-test/1.0", time.Second)
	result, err := client.Forward(context.Background(), "flinders street station, Australia")
	assert.NoError(t, err)

	if assert.NotNil(t, result) {
		assert.Equal(t, -37.8183, result.Lat)
		assert.Equal(t, 144.9671, result.Lng)
		assert.Equal(t, "Flinders Street Station, Melbourne", result.DisplayAddress)
	}
	assert.Equal(t, "mempin-test/1.0", gotUA, "client identifier required by the provider's usage policy")
	assert.Equal(t, "1", gotLimit, "at most one result requested")
	assert.Equal(t, "flinders street station, Australia", gotQuery)
}

func TestForwardEmptyResultIsNilNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "mempin-test/1.0", time.Second)
	result, err := client.Forward(context.Background(), "nowhere")
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestForwardPropagatesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "mempin-test/1.0", time.Second)
	_, err := client.Forward(context.Background(), "anything")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestReverseParsesDisplayName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "18", r.URL.Query().Get("zoom"))
		w.Write([]byte(`{"display_name":"1 Example Street, Melbourne"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "mempin-test/1.0", time.Second)
	address, err := client.Reverse(context.Background(), -37.81, 144.96)
	assert.NoError(t, err)
	assert.Equal(t, "1 Example Street, Melbourne", address)
}
