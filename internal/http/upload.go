package httpx

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sbobine/sbobine-api/config"
	apperrors "github.com/sbobine/sbobine-api/internal/errors"
)

// multipartMemoryBytes is held in memory while parsing; larger parts spill to temp files.
const multipartMemoryBytes = 32 << 20

//nolint:gochecknoglobals // static read-only allowlists
var (
	allowedAudioTypes      = []string{"audio/mpeg", "audio/wav", "audio/m4a", "audio/aac", "audio/ogg"}
	allowedAudioExtensions = []string{".mp3", ".wav", ".m4a", ".aac", ".ogg"}
)

// audioUpload is the parsed multipart body of /process and /transcribe.
type audioUpload struct {
	Data     []byte
	FileName string
	MIMEType string
	Size     int64
	Language string
	UserID   string
}

// readAudioUpload parses the multipart form and reads the "audio" part into memory.
// A missing audio part is not an error here; Data is simply empty.
func readAudioUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (*audioUpload, error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemoryBytes); err != nil {
		return nil, classifyFormError(err)
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	up := &audioUpload{
		Language: strings.TrimSpace(r.FormValue(fieldLanguage)),
		UserID:   strings.TrimSpace(r.FormValue(fieldUserID)),
	}

	file, header, err := r.FormFile(fieldAudio)
	if errors.Is(err, http.ErrMissingFile) {
		return up, nil
	}
	if err != nil {
		return nil, classifyFormError(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, classifyFormError(err)
	}
	up.Data = data
	up.FileName = header.Filename
	up.MIMEType = header.Header.Get("Content-Type")
	up.Size = header.Size
	if up.Size <= 0 {
		up.Size = int64(len(data))
	}
	return up, nil
}

func classifyFormError(err error) error {
	var tooLarge *http.MaxBytesError
	// The multipart reader does not always wrap the limit error.
	if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
		return apperrors.Wrap(err, apperrors.ErrCodeTooLarge, msgBodyTooLarge)
	}
	return apperrors.Wrap(err, apperrors.ErrCodeValidation, msgInvalidForm)
}

// validateStandaloneAudio enforces the /transcribe limits: 200 MiB and a known audio
// type, accepted by MIME type or by file extension.
func validateStandaloneAudio(up *audioUpload) error {
	if len(up.Data) == 0 {
		return apperrors.ValidationField(fieldAudio, msgAudioMissing)
	}
	if up.Size > config.MaxStandaloneAudioBytes {
		return apperrors.ValidationField(fieldAudio, msgAudioTooLarge)
	}
	if !isSupportedAudio(up.MIMEType, up.FileName) {
		return apperrors.ValidationField(fieldAudio, msgAudioUnsupported)
	}
	return nil
}

func isSupportedAudio(mimeType, fileName string) bool {
	if slices.Contains(allowedAudioTypes, strings.ToLower(strings.TrimSpace(mimeType))) {
		return true
	}
	return slices.Contains(allowedAudioExtensions, strings.ToLower(filepath.Ext(fileName)))
}

// describeUpload is used in log lines only.
func describeUpload(up *audioUpload) string {
	return fmt.Sprintf("%s (%d bytes, %s)", up.FileName, up.Size, up.MIMEType)
}
