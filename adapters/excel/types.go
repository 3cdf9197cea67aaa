package excel

import "strings"

// FileType identifies the container format of an upload.
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeXLSX FileType = "xlsx"
)

// DetectFileType infers the format from a file name, falling back to
// sniffing the zip signature every XLSX file starts with.
func DetectFileType(name string, head []byte) FileType {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".xlsx"), strings.HasSuffix(lower, ".xlsm"):
		return FileTypeXLSX
	case strings.HasSuffix(lower, ".csv"), strings.HasSuffix(lower, ".txt"):
		return FileTypeCSV
	}
	if len(head) >= 4 && head[0] == 'P' && head[1] == 'K' && head[2] == 0x03 && head[3] == 0x04 {
		return FileTypeXLSX
	}
	return FileTypeCSV
}
