package pipeline

import (
	"github.com/hazewatch/hotspot-etl/internal/domain"
)

// Unify merges the mandatory primary table with zero or more optional
// source results into one table carrying exactly the column
// intersection of the non-empty inputs. Row order is adapter order:
// primary first, then secondaries in the order given. Unavailable or
// empty secondaries contribute zero rows and do not narrow the columns.
func Unify(primary domain.Table, secondaries []domain.SourceResult) domain.Table {
	cols := primary.Columns.Clone()
	tables := []domain.Table{primary}

	for _, r := range secondaries {
		if !r.Available() || r.Table.Empty() {
			continue
		}
		cols = cols.Intersect(r.Table.Columns)
		tables = append(tables, r.Table)
	}

	out := domain.Table{Columns: cols}
	for _, t := range tables {
		out.Rows = append(out.Rows, t.Project(cols).Rows...)
	}
	return out
}

// FilterRegion retains rows whose coordinates fall inside the bounds,
// both ends inclusive. A table lacking latitude or longitude columns
// signals upstream schema drift and yields an empty table rather than
// a crash.
func FilterRegion(t domain.Table, b domain.Bounds) domain.Table {
	if !t.Columns.Has(domain.ColLatitude) || !t.Columns.Has(domain.ColLongitude) {
		return domain.Table{}
	}

	out := domain.Table{Columns: t.Columns.Clone()}
	for _, h := range t.Rows {
		if b.Contains(h.Latitude, h.Longitude) {
			out.Rows = append(out.Rows, h)
		}
	}
	return out
}

// FilterMinConfidence drops rows below the confidence floor. Null
// confidence never passes a threshold comparison.
func FilterMinConfidence(t domain.Table, minConfidence float64) domain.Table {
	out := domain.Table{Columns: t.Columns.Clone()}
	for _, h := range t.Rows {
		if !domain.IsNull(h.Confidence) && h.Confidence >= minConfidence {
			out.Rows = append(out.Rows, h)
		}
	}
	return out
}

// RenameLatLon swaps the latitude/longitude columns for their short
// lat/lon aliases. Must run exactly once, after region filtering, so the
// filter and the bounds catalog agree on column names. A pure
// column-set operation; row storage is shared between both names.
func RenameLatLon(t domain.Table) domain.Table {
	if !t.Columns.Has(domain.ColLatitude) && !t.Columns.Has(domain.ColLongitude) {
		return t
	}
	cols := t.Columns.Clone()
	if cols.Has(domain.ColLatitude) {
		delete(cols, domain.ColLatitude)
		cols.Add(domain.ColLat)
	}
	if cols.Has(domain.ColLongitude) {
		delete(cols, domain.ColLongitude)
		cols.Add(domain.ColLon)
	}
	return domain.Table{Columns: cols, Rows: t.Rows}
}
