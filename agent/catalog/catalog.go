// Package catalog is a read-only query layer over the car inventory.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

// Product is reference data owned elsewhere; never mutated here.
type Product struct {
	bun.BaseModel `bun:"table:products"`

	ID          int64    `bun:"id,pk"`
	Name        string   `bun:"name"`
	Description string   `bun:"description"`
	Price       float64  `bun:"price"`
	Color       *string  `bun:"color"`
	MaxSpeed    *float64 `bun:"max_speed"`
	Consumption *float64 `bun:"consumption"`
}

// Constraints narrows the catalog. Budget caps price; every preference and
// requirement term must match somewhere in name, description, or color.
type Constraints struct {
	Budget       *float64
	Preferences  []string
	Requirements []string
}

type Store interface {
	Match(ctx context.Context, c Constraints) ([]Product, error)
}

type PostgresStore struct {
	db *bun.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Match(ctx context.Context, c Constraints) ([]Product, error) {
	var products []Product
	if err := s.buildQuery(&products, c).Scan(ctx); err != nil {
		return nil, fmt.Errorf("match catalog: %w", err)
	}
	return products, nil
}

// buildQuery: terms are conjunctive across the list, disjunctive across the
// name/description/color columns for one term.
func (s *PostgresStore) buildQuery(products *[]Product, c Constraints) *bun.SelectQuery {
	q := s.db.NewSelect().Model(products)

	if c.Budget != nil {
		q = q.Where("price <= ?", *c.Budget)
	}

	terms := make([]string, 0, len(c.Preferences)+len(c.Requirements))
	terms = append(terms, c.Preferences...)
	terms = append(terms, c.Requirements...)
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		pattern := "%" + term + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				WhereOr("name ILIKE ?", pattern).
				WhereOr("description ILIKE ?", pattern).
				WhereOr("color ILIKE ?", pattern)
		})
	}

	return q.Order("id ASC")
}

// Summary renders one human-readable block per matched car for the generation
// prompt, or a fixed sentence when nothing matched yet.
func Summary(products []Product) string {
	if len(products) == 0 {
		return "No cars found yet"
	}

	blocks := make([]string, 0, len(products))
	for _, car := range products {
		blocks = append(blocks, fmt.Sprintf(
			"- **Product (car) Name: %s**\ndescription: %s\nprice: $%.2f\ncolors available: %s\nmax_speed: %s km/h\nconsumption: %s L/100km",
			car.Name,
			car.Description,
			car.Price,
			orNA(car.Color),
			orNAFloat(car.MaxSpeed),
			orNAFloat(car.Consumption),
		))
	}
	return strings.Join(blocks, "\n\n")
}

func orNA(s *string) string {
	if s == nil || *s == "" {
		return "N/A"
	}
	return *s
}

func orNAFloat(f *float64) string {
	if f == nil {
		return "N/A"
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", *f), "0"), ".")
}
