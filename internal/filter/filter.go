// Package filter turns untrusted listing parameters into a whitelisted item
// predicate. Only the fields and enumeration values named here ever reach the
// storage query; free text is matched as a literal substring.
package filter

import (
	"net/url"

	sq "github.com/Masterminds/squirrel"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

// Item columns a predicate may reference.
const (
	ColumnType        = "items.type"
	ColumnStatus      = "items.status"
	ColumnCategory    = "items.category"
	ColumnLocation    = "items.location"
	ColumnTitle       = "items.title"
	ColumnDescription = "items.description"
)

// Params are the raw listing query parameters.
type Params struct {
	Type     string
	Status   string
	Category string
	Location string
	Search   string
}

// ParamsFromQuery reads the recognized keys from a query string. Unknown keys
// are ignored.
func ParamsFromQuery(q url.Values) Params {
	return Params{
		Type:     q.Get("type"),
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Location: q.Get("location"),
		Search:   q.Get("search"),
	}
}

// Predicate is a request-scoped item filter. Empty fields are omitted.
type Predicate struct {
	Type     string
	Status   string
	Category string
	Location string
	Search   string
}

// Build applies the whitelist to p. Out-of-enumeration type and status values
// are dropped rather than rejected.
func Build(p Params) Predicate {
	var pred Predicate
	if model.ValidItemType(p.Type) {
		pred.Type = p.Type
	}
	if model.ValidItemStatus(p.Status) {
		pred.Status = p.Status
	}
	pred.Category = p.Category
	pred.Location = p.Location
	pred.Search = p.Search
	return pred
}

// IsEmpty reports whether the predicate matches every item.
func (p Predicate) IsEmpty() bool {
	return p == Predicate{}
}

// Sqlizer compiles the predicate into a conjunction of clauses. Present
// fields are AND'ed; search is an OR across title and description.
func (p Predicate) Sqlizer() sq.And {
	conds := sq.And{}
	if p.Type != "" {
		conds = append(conds, sq.Eq{ColumnType: p.Type})
	}
	if p.Status != "" {
		conds = append(conds, sq.Eq{ColumnStatus: p.Status})
	}
	if p.Category != "" {
		conds = append(conds, sq.Eq{ColumnCategory: p.Category})
	}
	if p.Location != "" {
		conds = append(conds, contains(ColumnLocation, p.Location))
	}
	if p.Search != "" {
		conds = append(conds, sq.Or{
			contains(ColumnTitle, p.Search),
			contains(ColumnDescription, p.Search),
		})
	}
	return conds
}

// contains matches column against s as a literal substring, ignoring
// Unicode case.
func contains(column, s string) sq.Sqlizer {
	return sq.Expr(db.ContainsFold+"("+column+", ?) = 1", s)
}
