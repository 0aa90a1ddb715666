package catalog

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// testStore builds a store over a lazy connector; queries are rendered to
// SQL, never executed.
func testStore() *PostgresStore {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN("postgres://localhost:5432/test?sslmode=disable")))
	return NewPostgresStore(bun.NewDB(sqldb, pgdialect.New()))
}

func TestBuildQueryBudgetCap(t *testing.T) {
	t.Parallel()

	s := testStore()
	budget := 20000.0
	var products []Product
	got := s.buildQuery(&products, Constraints{Budget: &budget}).String()

	if !strings.Contains(got, "price <= 20000") {
		t.Fatalf("query missing budget cap:\n%s", got)
	}
	if !strings.Contains(got, `ORDER BY "id" ASC`) && !strings.Contains(got, "ORDER BY id ASC") {
		t.Fatalf("query missing stable ordering:\n%s", got)
	}
}

func TestBuildQueryTermGroups(t *testing.T) {
	t.Parallel()

	s := testStore()
	var products []Product
	got := s.buildQuery(&products, Constraints{
		Preferences:  []string{"red"},
		Requirements: []string{"suv", "  "},
	}).String()

	for _, want := range []string{
		"name ILIKE '%red%'",
		"description ILIKE '%red%'",
		"color ILIKE '%red%'",
		"name ILIKE '%suv%'",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("query missing %q:\n%s", want, got)
		}
	}
	// Blank terms contribute no clauses.
	if strings.Contains(got, "'%%'") || strings.Contains(got, "'%  %'") {
		t.Fatalf("query contains clause for blank term:\n%s", got)
	}
}

func TestBuildQueryNoConstraints(t *testing.T) {
	t.Parallel()

	s := testStore()
	var products []Product
	got := s.buildQuery(&products, Constraints{}).String()
	if strings.Contains(got, "ILIKE") || strings.Contains(got, "price <=") {
		t.Fatalf("unconstrained query has filters:\n%s", got)
	}
}

func TestSummary(t *testing.T) {
	t.Parallel()

	if got := Summary(nil); got != "No cars found yet" {
		t.Fatalf("empty summary = %q", got)
	}

	color := "red"
	speed := 180.0
	cars := []Product{
		{Name: "Roadster", Description: "fun", Price: 19999.5, Color: &color, MaxSpeed: &speed},
		{Name: "Box", Description: "practical", Price: 9000},
	}
	got := Summary(cars)

	for _, want := range []string{
		"**Product (car) Name: Roadster**",
		"price: $19999.50",
		"colors available: red",
		"max_speed: 180 km/h",
		"consumption: N/A L/100km",
		"**Product (car) Name: Box**",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("summary missing %q:\n%s", want, got)
		}
	}
}
