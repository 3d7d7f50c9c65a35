package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"daybill/internal/domain"
)

var day = time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

func daySet(records ...domain.VisitRecord) *domain.RecordSet {
	return &domain.RecordSet{Records: records, Columns: domain.CanonicalColumns}
}

func detailed(category, payer string, gross float64, hn string) domain.VisitRecord {
	clock := domain.ClockTime{Hour: 9, Minute: 30}
	r := visit(category, payer, gross)
	r.EntryDate = day
	r.EntryTime = &clock
	r.HN = hn
	r.PatientName = "ผู้ป่วยทดสอบ"
	return r
}

func openWorkbook(t *testing.T, set *domain.RecordSet) *excelize.File {
	t.Helper()
	data, err := BuildWorkbook(set, day)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestBuildWorkbook_SheetSet(t *testing.T) {
	f := openWorkbook(t, daySet(
		detailed("A", domain.PayerSelfPay, 1000, "1"),
		detailed("B", "X", 500, "2"),
		detailed("A", "X", 250, "3"),
	))

	assert.Equal(t, []string{SummarySheet, AllRecordsSheet, "A", "B"}, f.GetSheetList())
}

func TestBuildWorkbook_SummarySheet(t *testing.T) {
	f := openWorkbook(t, daySet(
		detailed("A", domain.PayerSelfPay, 1000, "1"),
		detailed("A", "X", 500, "2"),
	))

	title, err := f.GetCellValue(SummarySheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "รายงานประจำวันที่ 2 มีนาคม 2567", title)

	head, err := f.GetCellValue(SummarySheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, domain.ColCategory, head)

	cat, _ := f.GetCellValue(SummarySheet, "A3")
	persons, _ := f.GetCellValue(SummarySheet, "B3")
	receivable, _ := f.GetCellValue(SummarySheet, "C3")
	claimable, _ := f.GetCellValue(SummarySheet, "D3")
	gross, _ := f.GetCellValue(SummarySheet, "F3")
	assert.Equal(t, "A", cat)
	assert.Equal(t, "2", persons)
	assert.Equal(t, "500", receivable)
	assert.Equal(t, "1000", claimable)
	assert.Equal(t, "1500", gross)

	totalLabel, _ := f.GetCellValue(SummarySheet, "A4")
	totalGross, _ := f.GetCellValue(SummarySheet, "F4")
	assert.Equal(t, GrandTotalLabel, totalLabel)
	assert.Equal(t, "1500", totalGross)
}

func TestBuildWorkbook_SummaryHyperlinks(t *testing.T) {
	f := openWorkbook(t, daySet(
		detailed("A", "X", 100, "1"),
		detailed("B", "X", 100, "2"),
	))

	ok, target, err := f.GetCellHyperLink(SummarySheet, "A3")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "'A'!A1", target)

	ok, target, err = f.GetCellHyperLink(SummarySheet, "A4")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "'B'!A1", target)

	// Grand-total row carries no link.
	ok, _, err = f.GetCellHyperLink(SummarySheet, "A5")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBuildWorkbook_SanitizedLinkRoundTrip(t *testing.T) {
	category := "กอง[ทุน]/ผู้'ป่วยนอก"
	f := openWorkbook(t, daySet(detailed(category, "X", 100, "1")))

	want := sanitizeSheetName(category)
	assert.Contains(t, f.GetSheetList(), want)

	ok, target, err := f.GetCellHyperLink(SummarySheet, "A3")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "'"+want+"'!A1", target)
}

func TestBuildWorkbook_AllRecordsSheet(t *testing.T) {
	f := openWorkbook(t, daySet(
		detailed("A", domain.PayerSelfPay, 1000, "0012345"),
		detailed("B", "X", 500, "2"),
	))

	rows, err := f.GetRows(AllRecordsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, domain.CanonicalColumns, rows[0][:len(domain.CanonicalColumns)])

	entryDate, err := f.GetCellValue(AllRecordsSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "02/03/2024", entryDate)

	entryTime, err := f.GetCellValue(AllRecordsSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "09:30:00", entryTime)

	hn, err := f.GetCellValue(AllRecordsSheet, "E2")
	require.NoError(t, err)
	assert.Equal(t, "0012345", hn)
}

func TestBuildWorkbook_DetailSheetTotalRow(t *testing.T) {
	f := openWorkbook(t, daySet(
		detailed("A", domain.PayerSelfPay, 1000, "1"),
		detailed("A", "X", 500, "2"),
		detailed("B", "X", 77, "3"),
	))

	rows, err := f.GetRows("A")
	require.NoError(t, err)
	// header + 2 records + total
	require.Len(t, rows, 4)

	catIdx := indexOf(domain.CanonicalColumns, domain.ColCategory)
	grossIdx := indexOf(domain.CanonicalColumns, domain.ColGross)
	personIdx := indexOf(domain.CanonicalColumns, domain.ColPersonCount)

	total := rows[3]
	assert.Equal(t, DetailTotalLabel, total[catIdx])
	assert.Equal(t, "1500", total[grossIdx])
	assert.Equal(t, "2", total[personIdx])
	// Identifier columns stay blank on the total row.
	hnIdx := indexOf(domain.CanonicalColumns, domain.ColHN)
	if hnIdx < len(total) {
		assert.Empty(t, total[hnIdx])
	}
}

func TestBuildWorkbook_EmptyDay(t *testing.T) {
	f := openWorkbook(t, daySet())

	assert.Equal(t, []string{SummarySheet, AllRecordsSheet}, f.GetSheetList())

	label, err := f.GetCellValue(SummarySheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, GrandTotalLabel, label)
}

func TestBuildWorkbook_MissingDateColumnTolerated(t *testing.T) {
	set := &domain.RecordSet{
		Records: []domain.VisitRecord{detailed("A", "X", 100, "1")},
		Columns: []string{domain.ColCategory, domain.ColPersonCount, domain.ColGross},
	}
	data, err := BuildWorkbook(set, day)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestBuildWorkbook_Deterministic(t *testing.T) {
	set := daySet(
		detailed("A", domain.PayerSelfPay, 1000, "1"),
		detailed("B", "X", 500, "2"),
	)

	first := openWorkbook(t, set)
	second := openWorkbook(t, set)
	require.Equal(t, first.GetSheetList(), second.GetSheetList())
	for _, sheet := range first.GetSheetList() {
		rows1, err := first.GetRows(sheet)
		require.NoError(t, err)
		rows2, err := second.GetRows(sheet)
		require.NoError(t, err)
		assert.Equal(t, rows1, rows2, "sheet %s", sheet)
	}
}

func indexOf(columns []string, name string) int {
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	return -1
}
