package domain

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypeCSV FileType = "csv"
	FileTypeTXT FileType = "txt"
)

// AllowedExtensions maps file extensions (without dot) to FileType. The
// upstream HIS sometimes hands the extract over renamed to .txt; the
// contents are the same TIS-620 CSV either way.
var AllowedExtensions = map[string]FileType{
	"csv": FileTypeCSV,
	"txt": FileTypeTXT,
}
