package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

const (
	MimeImage = "image/"
	MimePDF   = "application/pdf"
	MimeJPEG  = "image/jpeg"
	MimeWord  = "application/msword"
	MimeWordX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	// CVContentTypes maps the accepted CV extensions to the content type
	// recorded on upload.
	CVContentTypes = map[string]string{
		".pdf":  MimePDF,
		".doc":  MimeWord,
		".docx": MimeWordX,
	}

	// Sniffed types a CV upload may present: .docx is a zip container and
	// legacy .doc sniffs as a generic binary stream.
	AllowedCVMimeTypes = []string{MimePDF, "application/zip", "application/octet-stream"}
)
