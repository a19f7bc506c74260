package section

import (
	"fmt"

	"github.com/reflectsonar/reflectsonar/pkg/finding"
	"github.com/reflectsonar/reflectsonar/pkg/outline"
)

// Sink receives rows in table order. Place reports where the row will be
// drawn, moving to a new page first if the row does not fit. Commit draws
// it at that location.
type Sink interface {
	Place(row *Row) outline.Location
	Commit(row *Row) error
}

// Observer is told where each row lands before the row is committed.
// *outline.Indexer implements it.
type Observer interface {
	Observe(c finding.Category, s finding.Severity, loc outline.Location)
}

// Emit streams the rows into sink, reporting each placement to obs. It
// stops at the first commit error.
func (s *Section) Emit(sink Sink, obs Observer) error {
	for i := range s.Rows {
		row := &s.Rows[i]
		loc := sink.Place(row)
		obs.Observe(s.Category, row.Severity, loc)
		if err := sink.Commit(row); err != nil {
			return fmt.Errorf("section %s: row %d: %w", s.Category, i, err)
		}
	}
	return nil
}
