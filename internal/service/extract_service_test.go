package service

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"daybill/internal/config"
	"daybill/internal/domain"
)

const testHeader = "วันเข้า,,วันออก,,HN,VN,AN,เลขที่เอกสาร,ชื่อผู้ป่วย,PID,สิทธิ,Payer - Office,รวม,เบิกได้,เบิกไม่ได้,ICD-10"

func testExtract(t *testing.T) []byte {
	t.Helper()
	rows := []string{
		testHeader,
		`01/03/2024,09:00,01/03/2024,10:00,1,,,,,,บัตรทอง,สปสช.,"1,000",,0,`,
		`01/03/2024,10:00,,,2,,,,,,ชำระเงินเอง,ชำระเงินเอง,500,,0,`,
		`02/03/2024,08:00,,,3,,,,,,บัตรทอง,สปสช.,250,,0,`,
	}
	raw, _, err := transform.Bytes(charmap.Windows874.NewEncoder(), []byte(strings.Join(rows, "\n")+"\n"))
	require.NoError(t, err)
	return raw
}

// uploadInput builds a real multipart file the way gin hands it to the
// service.
func uploadInput(t *testing.T, name string, data []byte) ExtractUploadInput {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	file, header, err := req.FormFile("file")
	require.NoError(t, err)
	return ExtractUploadInput{File: file, Header: header}
}

func newTestService() ExtractService {
	return NewExtractService(&config.UploadConfig{MaxFileSizeMB: 1}, zerolog.Nop())
}

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestUpload(t *testing.T) {
	svc := newTestService()

	info, err := svc.Upload(uploadInput(t, "extract.csv", testExtract(t)))
	require.NoError(t, err)
	assert.Equal(t, "extract.csv", info.FileName)
	assert.Equal(t, 3, info.RowCount)
	assert.Equal(t, "2024-03-01", info.MinDate.Format("2006-01-02"))
	assert.Equal(t, "2024-03-02", info.MaxDate.Format("2006-01-02"))
	assert.Equal(t, []string{"บัตรทอง", "ชำระเงินเอง"}, info.Categories)
	assert.NotEmpty(t, info.Checksum)
}

func TestUpload_IdenticalBytesHitCache(t *testing.T) {
	svc := newTestService()
	data := testExtract(t)

	first, err := svc.Upload(uploadInput(t, "a.csv", data))
	require.NoError(t, err)
	second, err := svc.Upload(uploadInput(t, "b.csv", data))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	// The cached extract keeps the original file name.
	assert.Equal(t, "a.csv", second.FileName)
}

func TestUpload_Rejections(t *testing.T) {
	svc := newTestService()

	_, err := svc.Upload(uploadInput(t, "extract.pdf", testExtract(t)))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)

	_, err = svc.Upload(uploadInput(t, "big.csv", bytes.Repeat([]byte("a"), 1024*1024+1)))
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)

	_, err = svc.Upload(uploadInput(t, "junk.csv", []byte{0x50, 0x4B, 0xDB, 0xFF}))
	assert.ErrorIs(t, err, domain.ErrBadEncoding)

	_, err = svc.Upload(uploadInput(t, "empty.csv", nil))
	assert.ErrorIs(t, err, domain.ErrEmptyExtract)
}

func TestRecordsAndSummary(t *testing.T) {
	svc := newTestService()
	info, err := svc.Upload(uploadInput(t, "extract.csv", testExtract(t)))
	require.NoError(t, err)

	records, err := svc.Records(info.ID, mustDay(t, "2024-03-01"))
	require.NoError(t, err)
	assert.Len(t, records, 2)

	rows, err := svc.Summary(info.ID, mustDay(t, "2024-03-01"))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "บัตรทอง", rows[0].Category)
	assert.Equal(t, 1500.0, rows[2].Gross)
	assert.True(t, rows[2].IsTotal)

	_, err = svc.Records(info.ID, mustDay(t, "2024-04-01"))
	assert.ErrorIs(t, err, domain.ErrDateOutOfRange)
}

func TestReport_Memoized(t *testing.T) {
	svc := newTestService()
	info, err := svc.Upload(uploadInput(t, "extract.csv", testExtract(t)))
	require.NoError(t, err)

	day := mustDay(t, "2024-03-02")
	first, name, err := svc.Report(info.ID, day)
	require.NoError(t, err)
	assert.Equal(t, "Report_20240302.xlsx", name)
	assert.NotEmpty(t, first)
	// xlsx is a zip container
	assert.Equal(t, []byte{0x50, 0x4B}, first[:2])

	second, _, err := svc.Report(info.ID, day)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, _, err = svc.Report(info.ID, mustDay(t, "2023-01-01"))
	assert.ErrorIs(t, err, domain.ErrDateOutOfRange)
}

func TestGetAndDelete(t *testing.T) {
	svc := newTestService()

	_, err := svc.Get(uuid.New())
	assert.ErrorIs(t, err, domain.ErrExtractNotFound)

	info, err := svc.Upload(uploadInput(t, "extract.csv", testExtract(t)))
	require.NoError(t, err)

	got, err := svc.Get(info.ID)
	require.NoError(t, err)
	assert.Equal(t, info.ID, got.ID)

	require.NoError(t, svc.Delete(info.ID))
	_, err = svc.Get(info.ID)
	assert.ErrorIs(t, err, domain.ErrExtractNotFound)
	assert.ErrorIs(t, svc.Delete(info.ID), domain.ErrExtractNotFound)

	// Deleting also clears the checksum cache: same bytes get a new ID.
	again, err := svc.Upload(uploadInput(t, "extract.csv", testExtract(t)))
	require.NoError(t, err)
	assert.NotEqual(t, info.ID, again.ID)
}
