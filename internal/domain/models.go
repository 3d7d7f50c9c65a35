package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sentinel values carried over from the upstream HIS export. The payer
// office marker selects the receivable/claimable split; the category
// sentinel replaces blank สิทธิ values.
const (
	PayerSelfPay      = "ชำระเงินเอง"
	CategoryNoInvoice = "ไม่มีใบแจ้งหนี้"
)

// Canonical column labels, in output order. These are the upstream export's
// own header names; the two time columns are blank in the source header and
// resolved positionally during ingestion.
const (
	ColEntryDate   = "วันเข้า"
	ColEntryTime   = "เวลาเข้า"
	ColExitDate    = "วันออก"
	ColExitTime    = "เวลาออก"
	ColHN          = "HN"
	ColVN          = "VN"
	ColAN          = "AN"
	ColDocumentNo  = "เลขที่เอกสาร"
	ColPatientName = "ชื่อผู้ป่วย"
	ColPID         = "PID"
	ColCategory    = "สิทธิ"
	ColPayerOffice = "Payer - Office"
	ColPersonCount = "จำนวนคน"
	ColReceivable  = "ลูกหนี้"
	ColClaimable   = "เบิกได้"
	ColUnclaimable = "เบิกไม่ได้"
	ColGross       = "รวม"
)

// CanonicalColumns is the fixed projection order of a normalized extract.
// A RecordSet's Columns field is always a subsequence of this list.
var CanonicalColumns = []string{
	ColEntryDate, ColEntryTime, ColExitDate, ColExitTime,
	ColHN, ColVN, ColAN, ColDocumentNo, ColPatientName, ColPID,
	ColCategory, ColPayerOffice,
	ColPersonCount, ColReceivable, ColClaimable, ColUnclaimable, ColGross,
}

// ClockTime is a wall-clock time of day with no date attached.
type ClockTime struct {
	Hour   int
	Minute int
	Second int
}

// ClockTimeOf extracts the time-of-day portion of t.
func ClockTimeOf(t time.Time) ClockTime {
	return ClockTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// MarshalJSON renders the time as "HH:MM:SS".
func (c ClockTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// VisitRecord is one normalized billing row. Entry date is always present;
// rows whose entry date-time failed to parse never reach this type. Exit
// fields are nil when the source text was unparseable. The four amounts are
// never nil: unparseable amount text normalizes to zero upstream.
type VisitRecord struct {
	EntryDate time.Time  `json:"entry_date"`
	EntryTime *ClockTime `json:"entry_time"`
	ExitDate  *time.Time `json:"exit_date"`
	ExitTime  *ClockTime `json:"exit_time"`

	HN          string `json:"hn"`
	VN          string `json:"vn"`
	AN          string `json:"an"`
	DocumentNo  string `json:"document_no"`
	PatientName string `json:"patient_name"`
	PID         string `json:"pid"`

	Category    string `json:"category"`
	PayerOffice string `json:"payer_office"`

	PersonCount int     `json:"person_count"`
	Receivable  float64 `json:"receivable"`
	Claimable   float64 `json:"claimable"`
	Unclaimable float64 `json:"unclaimable"`
	Gross       float64 `json:"gross"`
}

// RecordSet is the canonical result of normalizing one uploaded extract.
// It is immutable once produced; report assembly only reads it.
type RecordSet struct {
	Records []VisitRecord
	// Columns lists the canonical columns actually present in the source,
	// in canonical order. Columns missing upstream are omitted rather than
	// emitted empty.
	Columns []string
	// Warnings records non-fatal schema anomalies (expected columns that
	// were absent). Informational only.
	Warnings []string

	MinDate time.Time
	MaxDate time.Time
}

// Empty reports whether normalization yielded no usable rows.
func (s *RecordSet) Empty() bool {
	return s == nil || len(s.Records) == 0
}

// HasColumn reports whether the named canonical column survived ingestion.
func (s *RecordSet) HasColumn(name string) bool {
	for _, c := range s.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// ForDay returns the records whose entry date falls on day (date part only).
func (s *RecordSet) ForDay(day time.Time) []VisitRecord {
	y, m, d := day.Date()
	var out []VisitRecord
	for _, r := range s.Records {
		ry, rm, rd := r.EntryDate.Date()
		if ry == y && rm == m && rd == d {
			out = append(out, r)
		}
	}
	return out
}

// Categories returns the distinct categories across records in first-seen
// order.
func Categories(records []VisitRecord) []string {
	seen := make(map[string]struct{}, 8)
	var out []string
	for _, r := range records {
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		out = append(out, r.Category)
	}
	return out
}

// CategorySummary is one aggregate row of the summary sheet: totals for a
// single category, or the grand total when IsTotal is set.
type CategorySummary struct {
	Category    string  `json:"category"`
	PersonCount int     `json:"person_count"`
	Receivable  float64 `json:"receivable"`
	Claimable   float64 `json:"claimable"`
	Unclaimable float64 `json:"unclaimable"`
	Gross       float64 `json:"gross"`
	IsTotal     bool    `json:"is_total,omitempty"`
}

// ExtractInfo describes a normalized extract held by the registry.
type ExtractInfo struct {
	ID         uuid.UUID `json:"id"`
	FileName   string    `json:"file_name"`
	Checksum   string    `json:"checksum"`
	RowCount   int       `json:"row_count"`
	MinDate    time.Time `json:"min_date"`
	MaxDate    time.Time `json:"max_date"`
	Categories []string  `json:"categories"`
	Warnings   []string  `json:"warnings,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}
