// Package ingest turns a raw HIS billing extract (TIS-620 CSV) into the
// canonical record set consumed by report assembly.
package ingest

import (
	"encoding/csv"
	"fmt"
	"strings"

	"daybill/internal/domain"
)

// Normalize decodes and normalizes one uploaded extract.
//
// Failure policy: an undecodable byte stream is fatal; a decoded stream
// with no usable structure yields an empty set and no error; individual
// malformed rows and fields degrade per-row or per-field without stopping
// the pass.
func Normalize(raw []byte) (*domain.RecordSet, error) {
	text, err := decode(raw)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil || len(rows) < 2 {
		return &domain.RecordSet{}, nil
	}

	header := resolveHeader(rows[0])
	idx := columnIndex(header)

	set := &domain.RecordSet{
		Columns:  presentColumns(idx),
		Warnings: shapeWarnings(idx),
	}
	for _, row := range rows[1:] {
		rec, ok := parseRow(row, idx)
		if !ok {
			continue
		}
		set.Records = append(set.Records, rec)
		if set.MinDate.IsZero() || rec.EntryDate.Before(set.MinDate) {
			set.MinDate = rec.EntryDate
		}
		if set.MaxDate.IsZero() || rec.EntryDate.After(set.MaxDate) {
			set.MaxDate = rec.EntryDate
		}
	}
	return set, nil
}

// resolveHeader names the export's two anonymous columns. The upstream
// system emits the paired time columns with blank headers; the first blank
// is the entry time and the second the exit time, by position.
func resolveHeader(raw []string) []string {
	anonymous := []string{domain.ColEntryTime, domain.ColExitTime}
	header := make([]string, len(raw))
	for i, cell := range raw {
		cell = strings.TrimSpace(cell)
		if cell == "" && len(anonymous) > 0 {
			cell = anonymous[0]
			anonymous = anonymous[1:]
		}
		header[i] = cell
	}
	return header
}

// columnIndex maps header names to field positions, first occurrence wins.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		if name == "" {
			continue
		}
		if _, ok := idx[name]; !ok {
			idx[name] = i
		}
	}
	return idx
}

// presentColumns projects the source schema onto the canonical column
// order. Columns absent upstream are omitted rather than emitted empty;
// สิทธิ and จำนวนคน always exist (sentinel-defaulted and constant), and the
// derived amount columns exist whenever the gross column does.
func presentColumns(idx map[string]int) []string {
	_, hasGross := idx[domain.ColGross]
	var cols []string
	for _, c := range domain.CanonicalColumns {
		switch c {
		case domain.ColCategory, domain.ColPersonCount:
			cols = append(cols, c)
		case domain.ColReceivable, domain.ColClaimable:
			if hasGross {
				cols = append(cols, c)
			}
		default:
			if _, ok := idx[c]; ok {
				cols = append(cols, c)
			}
		}
	}
	return cols
}

// shapeWarnings reports expected columns the source did not carry.
func shapeWarnings(idx map[string]int) []string {
	expected := []string{
		domain.ColGross,
		domain.ColClaimable,
		domain.ColUnclaimable,
		domain.ColPayerOffice,
	}
	var warnings []string
	for _, c := range expected {
		if _, ok := idx[c]; !ok {
			warnings = append(warnings, fmt.Sprintf("missing expected column %q", c))
		}
	}
	return warnings
}

// parseRow normalizes one data row. A row whose entry date cannot be
// parsed is dropped; every other anomaly degrades to a default.
func parseRow(row []string, idx map[string]int) (domain.VisitRecord, bool) {
	get := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	entryDate, entryTime, ok := parseDayFirst(get(domain.ColEntryDate), get(domain.ColEntryTime))
	if !ok {
		return domain.VisitRecord{}, false
	}

	rec := domain.VisitRecord{
		EntryDate:   entryDate,
		EntryTime:   entryTime,
		HN:          strings.TrimSpace(get(domain.ColHN)),
		VN:          strings.TrimSpace(get(domain.ColVN)),
		AN:          strings.TrimSpace(get(domain.ColAN)),
		DocumentNo:  strings.TrimSpace(get(domain.ColDocumentNo)),
		PatientName: strings.TrimSpace(get(domain.ColPatientName)),
		PID:         strings.TrimSpace(get(domain.ColPID)),
		PayerOffice: strings.TrimSpace(get(domain.ColPayerOffice)),
		PersonCount: 1,
		Gross:       parseAmount(get(domain.ColGross)),
		Unclaimable: parseAmount(get(domain.ColUnclaimable)),
	}

	if exitDate, exitTime, ok := parseDayFirst(get(domain.ColExitDate), get(domain.ColExitTime)); ok {
		rec.ExitDate = &exitDate
		rec.ExitTime = exitTime
	}

	// The raw เบิกได้ column is superseded here: the canonical claimable
	// and receivable amounts are the self-pay split of the gross amount.
	if rec.PayerOffice == domain.PayerSelfPay {
		rec.Claimable = rec.Gross
	} else {
		rec.Receivable = rec.Gross
	}

	rec.Category = strings.TrimSpace(get(domain.ColCategory))
	if rec.Category == "" {
		rec.Category = domain.CategoryNoInvoice
	}
	return rec, true
}
