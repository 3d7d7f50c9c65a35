package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"daybill/internal/domain"
)

// Fixed sheet names; the per-category sheets are named from the data.
const (
	SummarySheet    = "สรุปยอด (Sheet1)"
	AllRecordsSheet = "ข้อมูลทั้งหมด (Sheet2)"
)

// DetailTotalLabel marks the synthetic total row on a per-category sheet.
const DetailTotalLabel = "รวม"

// summaryColumns is the header of the summary table on Sheet1.
var summaryColumns = []string{
	domain.ColCategory,
	domain.ColPersonCount,
	domain.ColReceivable,
	domain.ColClaimable,
	domain.ColUnclaimable,
	domain.ColGross,
}

var thaiMonths = [12]string{
	"มกราคม", "กุมภาพันธ์", "มีนาคม", "เมษายน", "พฤษภาคม", "มิถุนายน",
	"กรกฎาคม", "สิงหาคม", "กันยายน", "ตุลาคม", "พฤศจิกายน", "ธันวาคม",
}

// thaiLongDate renders a date the way the printed report heads it: day,
// Thai month name, Buddhist-era year.
func thaiLongDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), thaiMonths[t.Month()-1], t.Year()+543)
}

// BuildWorkbook assembles the report workbook for one day.
//
// The caller filters the set to the selected day before calling; the day
// argument is only used for labeling. The function is pure: identical
// input produces a structurally identical workbook.
func BuildWorkbook(set *domain.RecordSet, day time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	b := &builder{f: f}
	if err := b.initStyles(); err != nil {
		return nil, fmt.Errorf("workbook styles: %w", err)
	}

	summaries := Aggregate(set.Records)
	namer := newSheetNamer()

	if err := b.writeSummary(summaries, namer, day); err != nil {
		return nil, fmt.Errorf("summary sheet: %w", err)
	}
	if err := b.writeAllRecords(set); err != nil {
		return nil, fmt.Errorf("all-records sheet: %w", err)
	}
	for _, s := range summaries {
		if s.IsTotal {
			continue
		}
		if err := b.writeCategorySheet(set, s.Category, namer); err != nil {
			return nil, fmt.Errorf("detail sheet %q: %w", s.Category, err)
		}
	}

	idx, err := f.GetSheetIndex(SummarySheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type builder struct {
	f          *excelize.File
	titleStyle int
	headStyle  int
	linkStyle  int
	dateStyle  int
}

func (b *builder) initStyles() error {
	var err error
	b.titleStyle, err = b.f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	b.headStyle, err = b.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}
	b.linkStyle, err = b.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "0563C1", Underline: "single"},
	})
	if err != nil {
		return err
	}
	dateFmt := "dd/mm/yyyy"
	b.dateStyle, err = b.f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	return err
}

// writeSummary emits the title band, the aggregate table, and the internal
// hyperlinks from each category cell to its detail sheet. The grand-total
// row has no sheet of its own and is not linked.
func (b *builder) writeSummary(summaries []domain.CategorySummary, namer *sheetNamer, day time.Time) error {
	if err := b.f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return err
	}

	title := "รายงานประจำวันที่ " + thaiLongDate(day)
	if err := b.f.SetCellValue(SummarySheet, "A1", title); err != nil {
		return err
	}
	if err := b.f.MergeCell(SummarySheet, "A1", "F1"); err != nil {
		return err
	}
	if err := b.f.SetCellStyle(SummarySheet, "A1", "F1", b.titleStyle); err != nil {
		return err
	}

	for i, name := range summaryColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return err
		}
		if err := b.f.SetCellValue(SummarySheet, cell, name); err != nil {
			return err
		}
	}
	if err := b.f.SetCellStyle(SummarySheet, "A2", "F2", b.headStyle); err != nil {
		return err
	}

	for i, s := range summaries {
		row := i + 3
		values := []interface{}{
			s.Category, s.PersonCount, s.Receivable, s.Claimable, s.Unclaimable, s.Gross,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := b.f.SetCellValue(SummarySheet, cell, v); err != nil {
				return err
			}
		}
		if s.IsTotal {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		target := "'" + namer.Name(s.Category) + "'!A1"
		if err := b.f.SetCellHyperLink(SummarySheet, cell, target, "Location"); err != nil {
			return err
		}
		if err := b.f.SetCellStyle(SummarySheet, cell, cell, b.linkStyle); err != nil {
			return err
		}
	}

	if err := b.f.SetColWidth(SummarySheet, "A", "A", 32); err != nil {
		return err
	}
	return b.f.SetColWidth(SummarySheet, "B", "F", 14)
}

func (b *builder) writeAllRecords(set *domain.RecordSet) error {
	if _, err := b.f.NewSheet(AllRecordsSheet); err != nil {
		return err
	}
	rows, err := b.writeTable(AllRecordsSheet, set.Columns, set.Records, false)
	if err != nil {
		return err
	}
	return b.formatDateColumn(AllRecordsSheet, set.Columns, rows)
}

func (b *builder) writeCategorySheet(set *domain.RecordSet, category string, namer *sheetNamer) error {
	name := namer.Name(category)
	if _, err := b.f.NewSheet(name); err != nil {
		return err
	}
	var records []domain.VisitRecord
	for _, r := range set.Records {
		if r.Category == category {
			records = append(records, r)
		}
	}
	// A category with no rows still gets its sheet, headers only.
	rows, err := b.writeTable(name, set.Columns, records, len(records) > 0)
	if err != nil {
		return err
	}
	return b.formatDateColumn(name, set.Columns, rows)
}

// writeTable writes a header row plus one row per record in canonical
// column order, and optionally the detail total row. Returns the number of
// body rows written.
func (b *builder) writeTable(sheet string, columns []string, records []domain.VisitRecord, withTotal bool) (int, error) {
	for i, name := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return 0, err
		}
		if err := b.f.SetCellValue(sheet, cell, name); err != nil {
			return 0, err
		}
	}
	if len(columns) > 0 {
		last, err := excelize.CoordinatesToCellName(len(columns), 1)
		if err != nil {
			return 0, err
		}
		if err := b.f.SetCellStyle(sheet, "A1", last, b.headStyle); err != nil {
			return 0, err
		}
	}

	for i, rec := range records {
		row := i + 2
		for ci, col := range columns {
			v := cellValue(&rec, col)
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(ci+1, row)
			if err != nil {
				return 0, err
			}
			if err := b.f.SetCellValue(sheet, cell, v); err != nil {
				return 0, err
			}
		}
	}

	rows := len(records)
	if withTotal {
		rows++
		total := totalRow(records)
		row := len(records) + 2
		for ci, col := range columns {
			v, ok := total[col]
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(ci+1, row)
			if err != nil {
				return 0, err
			}
			if err := b.f.SetCellValue(sheet, cell, v); err != nil {
				return 0, err
			}
		}
	}
	return rows, nil
}

// totalRow sums the numeric columns of a detail table. The category column
// carries the total label; every other non-numeric column stays blank.
func totalRow(records []domain.VisitRecord) map[string]interface{} {
	var persons int
	var receivable, claimable, unclaimable, gross float64
	for _, r := range records {
		persons += r.PersonCount
		receivable += r.Receivable
		claimable += r.Claimable
		unclaimable += r.Unclaimable
		gross += r.Gross
	}
	return map[string]interface{}{
		domain.ColCategory:    DetailTotalLabel,
		domain.ColPersonCount: persons,
		domain.ColReceivable:  receivable,
		domain.ColClaimable:   claimable,
		domain.ColUnclaimable: unclaimable,
		domain.ColGross:       gross,
	}
}

// formatDateColumn applies the fixed dd/mm/yyyy display format and width
// to the entry-date column. Formatting is best effort: a table without the
// date column is left as is.
func (b *builder) formatDateColumn(sheet string, columns []string, bodyRows int) error {
	idx := -1
	for i, c := range columns {
		if c == domain.ColEntryDate {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	colName, err := excelize.ColumnNumberToName(idx + 1)
	if err != nil {
		return err
	}
	if err := b.f.SetColWidth(sheet, colName, colName, 12); err != nil {
		return err
	}
	if bodyRows == 0 {
		return nil
	}
	first, err := excelize.CoordinatesToCellName(idx+1, 2)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(idx+1, bodyRows+1)
	if err != nil {
		return err
	}
	return b.f.SetCellStyle(sheet, first, last, b.dateStyle)
}

// cellValue maps a canonical column to its cell value for one record. Nil
// means leave the cell empty.
func cellValue(r *domain.VisitRecord, col string) interface{} {
	switch col {
	case domain.ColEntryDate:
		return r.EntryDate
	case domain.ColEntryTime:
		if r.EntryTime == nil {
			return nil
		}
		return r.EntryTime.String()
	case domain.ColExitDate:
		if r.ExitDate == nil {
			return nil
		}
		return *r.ExitDate
	case domain.ColExitTime:
		if r.ExitTime == nil {
			return nil
		}
		return r.ExitTime.String()
	case domain.ColHN:
		return r.HN
	case domain.ColVN:
		return r.VN
	case domain.ColAN:
		return r.AN
	case domain.ColDocumentNo:
		return r.DocumentNo
	case domain.ColPatientName:
		return r.PatientName
	case domain.ColPID:
		return r.PID
	case domain.ColCategory:
		return r.Category
	case domain.ColPayerOffice:
		return r.PayerOffice
	case domain.ColPersonCount:
		return r.PersonCount
	case domain.ColReceivable:
		return r.Receivable
	case domain.ColClaimable:
		return r.Claimable
	case domain.ColUnclaimable:
		return r.Unclaimable
	case domain.ColGross:
		return r.Gross
	}
	return nil
}
