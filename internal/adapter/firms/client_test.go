package firms

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazewatch/hotspot-etl/internal/domain"
	"github.com/hazewatch/hotspot-etl/internal/observability"
)

const modisCSV = `latitude,longitude,brightness,scan,track,acq_date,acq_time,satellite,confidence,version,bright_t31,frp,daynight
-2.6041,102.3516,330.7,1.1,1.0,2026-08-24,47,Terra,84,6.1NRT,302.1,22.6,N
0.1213,101.0087,312.4,1.0,1.0,2026-08-24,1432,Aqua,low,6.1NRT,298.4,,D
5.5000,96.2000,341.9,1.2,1.1,2026-08-24,9999,Terra,96,6.1NRT,305.8,91.2,D
`

const viirsJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature",
     "geometry": {"type": "Point", "coordinates": [110.52, -1.84]},
     "properties": {"latitude": -1.84, "longitude": 110.52, "bright_ti4": 331.2,
                    "acq_date": "2026-08-24", "acq_time": 47, "confidence": "h", "frp": 12.3}},
    {"type": "Feature",
     "geometry": {"type": "Point", "coordinates": [113.02, 1.25]},
     "properties": {"latitude": 1.25, "longitude": 113.02, "bright_ti4": 302.0,
                    "acq_date": "2026-08-24", "acq_time": "1432", "confidence": "n"}}
  ]
}`

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return NewClient(baseURL, 0, 2*time.Second,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetricsForTesting())
}

func TestClient_Live_CSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pathMODIS24h, r.URL.Path)
		_, _ = w.Write([]byte(modisCSV))
	}))
	defer srv.Close()

	table, err := testClient(t, srv.URL).Live(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	for _, c := range []domain.Column{domain.ColLatitude, domain.ColLongitude,
		domain.ColBrightness, domain.ColConfidence, domain.ColFRP, domain.ColAcqTime} {
		assert.True(t, table.Columns.Has(c), "column %s", c)
	}

	first := table.Rows[0]
	assert.Equal(t, domain.SensorMODIS, first.Sensor)
	assert.Equal(t, -2.6041, first.Latitude)
	assert.Equal(t, 102.3516, first.Longitude)
	assert.Equal(t, 330.7, first.Brightness)
	assert.Equal(t, 84.0, first.Confidence)
	assert.Equal(t, 22.6, first.FRP)
	// acq_time "47" zero-pads to 00:47 UTC
	assert.Equal(t, time.Date(2026, 8, 24, 0, 47, 0, 0, time.UTC), first.AcqTime)
	assert.NotEmpty(t, first.ID)

	second := table.Rows[1]
	assert.Equal(t, 30.0, second.Confidence, "categorical confidence maps onto the numeric scale")
	assert.Equal(t, 0.0, second.FRP, "missing frp coerces to 0")

	// Unparseable acq_time nulls the timestamp but keeps the row.
	third := table.Rows[2]
	assert.True(t, third.AcqTime.IsZero())
	assert.Equal(t, 96.0, third.Confidence)
}

func TestClient_TrainingWindow_UsesSevenDayPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(modisCSV))
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).TrainingWindow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pathMODIS7d, gotPath)
}

func TestClient_CSV_ErrorsPropagate(t *testing.T) {
	t.Run("http error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := testClient(t, srv.URL).Live(context.Background())
		require.Error(t, err, "the primary feed is mandatory: failures must not be swallowed")
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		srv.Close() // immediately, so the port refuses connections

		_, err := testClient(t, srv.URL).Live(context.Background())
		assert.Error(t, err)
	})
}

func TestParseCSV_ColumnSetTracksHeader(t *testing.T) {
	body := []byte("latitude,longitude,confidence\n-2.5,102.3,80\n")

	table, err := parseCSV(body)
	require.NoError(t, err)

	assert.True(t, table.Columns.Has(domain.ColLatitude))
	assert.True(t, table.Columns.Has(domain.ColConfidence))
	assert.False(t, table.Columns.Has(domain.ColBrightness))
	assert.False(t, table.Columns.Has(domain.ColFRP))
	assert.False(t, table.Columns.Has(domain.ColAcqTime), "needs both acq_date and acq_time")
}

func TestVIIRSFeed_Live(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pathVIIRSSNPP, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(viirsJSON))
	}))
	defer srv.Close()

	result := testClient(t, srv.URL).VIIRSSNPP().Live(context.Background())
	require.True(t, result.Available())

	table := result.Table
	require.Equal(t, 2, table.Len())
	assert.False(t, table.Columns.Has(domain.ColBrightness), "VIIRS bands are not MODIS brightness")
	assert.True(t, table.Columns.Has(domain.ColAcqTime))

	first := table.Rows[0]
	assert.Equal(t, domain.SensorVIIRSSNPP, first.Sensor)
	assert.Equal(t, -1.84, first.Latitude)
	assert.Equal(t, 90.0, first.Confidence, "h maps to 90")
	assert.Equal(t, 12.3, first.FRP)
	// numeric acq_time 47 still zero-pads
	assert.Equal(t, time.Date(2026, 8, 24, 0, 47, 0, 0, time.UTC), first.AcqTime)

	second := table.Rows[1]
	assert.Equal(t, 60.0, second.Confidence)
	assert.Equal(t, 0.0, second.FRP, "absent frp property coerces to 0")
	assert.Equal(t, time.Date(2026, 8, 24, 14, 32, 0, 0, time.UTC), second.AcqTime)
}

func TestVIIRSFeed_DegradesToUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		close   bool
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}, false},
		{"malformed body", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("{not json"))
		}, false},
		{"connection refused", func(http.ResponseWriter, *http.Request) {}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			if tt.close {
				srv.Close()
			} else {
				defer srv.Close()
			}

			result := testClient(t, srv.URL).VIIRSNOAA20().Live(context.Background())
			assert.False(t, result.Available())
			assert.ErrorIs(t, result.Err, domain.ErrSourceUnavailable)
			assert.True(t, result.Table.Empty())
		})
	}
}

func TestVIIRSFeed_TimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(viirsJSON))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, 50*time.Millisecond,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetricsForTesting())

	result := c.VIIRSSNPP().Live(context.Background())
	assert.False(t, result.Available())
}

func TestClient_CSVTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(modisCSV))
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()

	// Bounded client: the slow CSV body surfaces as a fetch error.
	c := NewClient(srv.URL, 50*time.Millisecond, 2*time.Second, logger, metrics)
	_, err := c.Live(context.Background())
	require.Error(t, err)

	// Zero means unbounded; the same slow server succeeds.
	c = NewClient(srv.URL, 0, 2*time.Second, logger, metrics)
	table, err := c.Live(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
}
