// Package report aggregates a day's canonical records and assembles the
// multi-sheet workbook.
package report

import "daybill/internal/domain"

// GrandTotalLabel names the synthetic row that closes the summary table.
const GrandTotalLabel = "รวมทั้งหมด"

// Aggregate groups records by category and sums the headcount and amount
// columns per group, appending one grand-total row. Categories keep the
// order they are first seen in, so identical input always yields the same
// table; the per-category detail sheets iterate the same order.
func Aggregate(records []domain.VisitRecord) []domain.CategorySummary {
	order := domain.Categories(records)
	byCategory := make(map[string]*domain.CategorySummary, len(order))
	rows := make([]domain.CategorySummary, 0, len(order)+1)

	for _, c := range order {
		rows = append(rows, domain.CategorySummary{Category: c})
	}
	for i := range rows {
		byCategory[rows[i].Category] = &rows[i]
	}

	total := domain.CategorySummary{Category: GrandTotalLabel, IsTotal: true}
	for _, r := range records {
		s := byCategory[r.Category]
		s.PersonCount += r.PersonCount
		s.Receivable += r.Receivable
		s.Claimable += r.Claimable
		s.Unclaimable += r.Unclaimable
		s.Gross += r.Gross

		total.PersonCount += r.PersonCount
		total.Receivable += r.Receivable
		total.Claimable += r.Claimable
		total.Unclaimable += r.Unclaimable
		total.Gross += r.Gross
	}
	return append(rows, total)
}
