// Package stats exposes the one cardinality hook an external query
// optimizer needs from this engine. Selectivity histograms and cost
// models live outside this repository; this package only backs the
// cheap estimate that is squarely this repository's own data.
package stats

import (
	"coredb/catalog"
	"coredb/storage/page"
)

// Provider answers table-cardinality questions against a live catalog.
type Provider struct {
	cat *catalog.Catalog
}

// New builds a Provider reading through cat.
func New(cat *catalog.Catalog) *Provider {
	return &Provider{cat: cat}
}

// TableCardinality estimates the row count of tableID as
// numPages * averageRowsPerPage, where averageRowsPerPage is the maximum
// number of tuples a page of this table's width can hold. This is an
// upper bound, not a measured count — heap pages are rarely full — but it
// costs one NumPages() call and no page reads.
func (p *Provider) TableCardinality(tableID int64) (int, error) {
	file, err := p.cat.FileOf(tableID)
	if err != nil {
		return 0, err
	}
	numPages, err := file.NumPages()
	if err != nil {
		return 0, err
	}
	rowsPerPage := page.NumSlots(file.Schema().Size())
	return int(numPages) * rowsPerPage, nil
}
