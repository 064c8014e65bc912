package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazewatch/hotspot-etl/internal/domain"
)

var testAcq = time.Date(2026, 8, 24, 3, 15, 0, 0, time.UTC)

func modisTable(rows ...domain.Hotspot) domain.Table {
	return domain.Table{
		Columns: domain.NewColumnSet(domain.ColLatitude, domain.ColLongitude,
			domain.ColBrightness, domain.ColConfidence, domain.ColFRP, domain.ColAcqTime),
		Rows: rows,
	}
}

func viirsTable(rows ...domain.Hotspot) domain.Table {
	return domain.Table{
		Columns: domain.NewColumnSet(domain.ColLatitude, domain.ColLongitude,
			domain.ColConfidence, domain.ColFRP, domain.ColAcqTime),
		Rows: rows,
	}
}

func TestUnify_ColumnIntersection(t *testing.T) {
	primary := modisTable(domain.Hotspot{Latitude: 1, Longitude: 100, Brightness: 320, Confidence: 80, FRP: 10, AcqTime: testAcq})
	secondary := viirsTable(domain.Hotspot{Latitude: 2, Longitude: 101, Confidence: 60, FRP: 5, AcqTime: testAcq})

	out := Unify(primary, []domain.SourceResult{domain.OK(domain.SensorVIIRSSNPP, secondary)})

	// brightness is missing from the VIIRS table, so it must be gone.
	assert.False(t, out.Columns.Has(domain.ColBrightness))
	for _, c := range []domain.Column{domain.ColLatitude, domain.ColLongitude, domain.ColConfidence, domain.ColFRP, domain.ColAcqTime} {
		assert.True(t, out.Columns.Has(c), "column %s", c)
	}
	// adapter order preserved: primary rows first
	require.Equal(t, 2, out.Len())
	assert.Equal(t, 1.0, out.Rows[0].Latitude)
	assert.Equal(t, 2.0, out.Rows[1].Latitude)
}

func TestUnify_NoColumnOutsideEveryInput(t *testing.T) {
	primary := modisTable(domain.Hotspot{Latitude: 1, Longitude: 100})
	a := viirsTable(domain.Hotspot{Latitude: 2, Longitude: 101})
	b := domain.Table{
		Columns: domain.NewColumnSet(domain.ColLatitude, domain.ColLongitude, domain.ColFRP),
		Rows:    []domain.Hotspot{{Latitude: 3, Longitude: 102}},
	}

	out := Unify(primary, []domain.SourceResult{
		domain.OK(domain.SensorVIIRSSNPP, a),
		domain.OK(domain.SensorVIIRSNOAA20, b),
	})

	inputs := []domain.Table{primary, a, b}
	for col := range out.Columns {
		for i, in := range inputs {
			assert.True(t, in.Columns.Has(col), "output column %s missing from input %d", col, i)
		}
	}
	assert.Equal(t, 3, out.Len())
}

func TestUnify_RoundTripPrimaryOnly(t *testing.T) {
	primary := modisTable(
		domain.Hotspot{Latitude: 1, Longitude: 100, Brightness: 320, Confidence: 80, FRP: 10, AcqTime: testAcq},
		domain.Hotspot{Latitude: 2, Longitude: 101, Brightness: 310, Confidence: 40, FRP: 0, AcqTime: testAcq},
	)

	out := Unify(primary, nil)

	if diff := cmp.Diff(primary.Rows, out.Rows); diff != "" {
		t.Errorf("rows changed (-want +got):\n%s", diff)
	}
	assert.ElementsMatch(t, primary.Columns.Sorted(), out.Columns.Sorted())
}

func TestUnify_UnavailableAndEmptySourcesContributeNothing(t *testing.T) {
	primary := modisTable(domain.Hotspot{Latitude: 1, Longitude: 100, Brightness: 320, Confidence: 80, FRP: 10, AcqTime: testAcq})

	out := Unify(primary, []domain.SourceResult{
		domain.Unavailable(domain.SensorVIIRSSNPP, errors.New("connection refused")),
		domain.OK(domain.SensorVIIRSNOAA20, viirsTable()), // empty table
	})

	// Neither source narrows the columns nor adds rows.
	assert.Equal(t, 1, out.Len())
	assert.True(t, out.Columns.Has(domain.ColBrightness))
}

func TestFilterRegion(t *testing.T) {
	catalog := domain.DefaultCatalog()
	sumatra, _ := catalog.Lookup("Sumatra")

	in := modisTable(
		domain.Hotspot{Latitude: 0, Longitude: 100},  // inside Sumatra
		domain.Hotspot{Latitude: 0, Longitude: 120},  // outside
		domain.Hotspot{Latitude: 999, Longitude: 100}, // nonsense latitude
	)

	t.Run("subset with bounds inequalities", func(t *testing.T) {
		out := FilterRegion(in, sumatra)
		assert.LessOrEqual(t, out.Len(), in.Len())
		require.Equal(t, 1, out.Len())
		assert.Equal(t, 100.0, out.Rows[0].Longitude)
		for _, h := range out.Rows {
			assert.True(t, sumatra.Contains(h.Latitude, h.Longitude))
		}
	})

	t.Run("latitude 999 excluded by every region", func(t *testing.T) {
		for name := range catalog {
			b, _ := catalog.Lookup(name)
			out := FilterRegion(modisTable(domain.Hotspot{Latitude: 999, Longitude: 100}), b)
			assert.Zero(t, out.Len(), "region %s", name)
		}
	})

	t.Run("missing coordinate columns yields empty table", func(t *testing.T) {
		noCoords := domain.Table{
			Columns: domain.NewColumnSet(domain.ColConfidence, domain.ColFRP),
			Rows:    []domain.Hotspot{{Confidence: 80, FRP: 10}},
		}
		out := FilterRegion(noCoords, sumatra)
		assert.True(t, out.Empty())
	})
}

func TestFilterMinConfidence(t *testing.T) {
	in := modisTable(
		domain.Hotspot{Latitude: 1, Longitude: 100, Confidence: 80},
		domain.Hotspot{Latitude: 2, Longitude: 100, Confidence: 49.9},
		domain.Hotspot{Latitude: 3, Longitude: 100, Confidence: domain.Null()},
		domain.Hotspot{Latitude: 4, Longitude: 100, Confidence: 50},
	)

	out := FilterMinConfidence(in, 50)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, 1.0, out.Rows[0].Latitude)
	assert.Equal(t, 4.0, out.Rows[1].Latitude)
}

func TestRenameLatLon(t *testing.T) {
	in := modisTable(domain.Hotspot{Latitude: -2.5, Longitude: 102.3})

	out := RenameLatLon(in)

	assert.False(t, out.Columns.Has(domain.ColLatitude))
	assert.False(t, out.Columns.Has(domain.ColLongitude))
	assert.True(t, out.Columns.Has(domain.ColLat))
	assert.True(t, out.Columns.Has(domain.ColLon))

	// Data is unchanged and reachable under the alias.
	v, ok := out.Rows[0].Field(domain.ColLat)
	require.True(t, ok)
	assert.Equal(t, -2.5, v)

	// A second rename is a no-op.
	again := RenameLatLon(out)
	assert.ElementsMatch(t, out.Columns.Sorted(), again.Columns.Sorted())
}
