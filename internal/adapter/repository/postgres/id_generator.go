package postgres

import "github.com/oklog/ulid/v2"

// ULIDGenerator issues lexicographically sortable ids for entries, orders and
// outbox events. ulid.Make is monotonic within a process.
type ULIDGenerator struct{}

func NewULIDGenerator() *ULIDGenerator { return &ULIDGenerator{} }

func (ULIDGenerator) Generate() string {
	return ulid.Make().String()
}
