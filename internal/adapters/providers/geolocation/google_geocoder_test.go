package geolocation_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaayakalpa/healthfinder/internal/adapters/cache"
	"github.com/kaayakalpa/healthfinder/internal/adapters/providers/geolocation"
)

func TestGoogleGeocoder_GeocodeCaches(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "12 MG Road, Pune, MH", r.URL.Query().Get("address"))
		assert.Equal(t, "in", r.URL.Query().Get("region"))
		assert.Equal(t, "maps-key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"formatted_address":"MG Road, Pune","geometry":{"location":{"lat":18.5204,"lng":73.8567}}}]}`))
	}))
	defer server.Close()

	geocoder := geolocation.NewGoogleGeocoder("maps-key", "in", server.URL, cache.NewMemoryAdapter(time.Minute))

	coords, err := geocoder.Geocode(context.Background(), "12 MG Road, Pune, MH")
	require.NoError(t, err)
	assert.InDelta(t, 18.5204, coords.Latitude, 1e-9)
	assert.InDelta(t, 73.8567, coords.Longitude, 1e-9)

	again, err := geocoder.Geocode(context.Background(), "  12 mg road, pune, mh ")
	require.NoError(t, err)
	assert.Equal(t, coords, again)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGoogleGeocoder_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "zero results", status: http.StatusOK, body: `{"status":"ZERO_RESULTS","results":[]}`, wantErr: "no results"},
		{name: "denied", status: http.StatusOK, body: `{"status":"REQUEST_DENIED","error_message":"bad key"}`, wantErr: "REQUEST_DENIED - bad key"},
		{name: "http failure", status: http.StatusBadGateway, body: `{}`, wantErr: "status 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := geolocation.NewGoogleGeocoder("maps-key", "", server.URL, nil).Geocode(context.Background(), "Pune")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGoogleGeocoder_RequiresInput(t *testing.T) {
	_, err := geolocation.NewGoogleGeocoder("maps-key", "", "http://127.0.0.1:0", nil).Geocode(context.Background(), "  ")
	assert.Error(t, err)

	_, err = geolocation.NewGoogleGeocoder("", "", "http://127.0.0.1:0", nil).Geocode(context.Background(), "Pune")
	assert.Error(t, err)
}
