package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/sbobine/sbobine-api/internal/gateway"
)

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	b, err := New(context.Background(), Config{APIKey: "key"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, b.model)
	assert.Equal(t, ProviderName, b.Name())
}

func TestKindFor(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		status  string
		message string
		want    gateway.ErrorKind
	}{
		{name: "rate limited", code: http.StatusTooManyRequests, want: gateway.KindQuota},
		{name: "exhausted", code: http.StatusBadRequest, status: "RESOURCE_EXHAUSTED", want: gateway.KindQuota},
		{name: "bad key", code: http.StatusBadRequest, status: "INVALID_ARGUMENT", message: "API key not valid. Please pass a valid API key.", want: gateway.KindAuth},
		{name: "forbidden", code: http.StatusForbidden, want: gateway.KindAuth},
		{name: "too many tokens", code: http.StatusBadRequest, message: "The input token count exceeds the maximum number of tokens allowed", want: gateway.KindContextLength},
		{name: "internal", code: http.StatusInternalServerError, status: "INTERNAL", want: gateway.KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kindFor(tt.code, tt.status, tt.message))
		})
	}
}

func TestClassify(t *testing.T) {
	err := classify(fmt.Errorf("generate: %w", genai.APIError{Code: http.StatusTooManyRequests, Message: "quota"}))
	assert.True(t, gateway.IsKind(err, gateway.KindQuota))

	assert.ErrorIs(t, classify(context.Canceled), context.Canceled)
	assert.True(t, gateway.IsKind(classify(errors.New("dial tcp: refused")), gateway.KindOther))
}

func TestTranscriptionInstruction(t *testing.T) {
	assert.Contains(t, transcriptionInstruction(""), `"it"`)
	assert.Contains(t, transcriptionInstruction("en"), `"en"`)
}

// fakeFiles scripts the Files API: each Get returns the next state.
type fakeFiles struct {
	uploaded  []byte
	uploadCfg *genai.UploadFileConfig
	states    []genai.FileState
	gets      int
	deleted   []string
}

func (f *fakeFiles) Upload(_ context.Context, r io.Reader, cfg *genai.UploadFileConfig) (*genai.File, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.uploaded = b
	f.uploadCfg = cfg
	return &genai.File{Name: "files/abc", URI: "https://files.example/abc", State: genai.FileStateProcessing}, nil
}

func (f *fakeFiles) Get(_ context.Context, name string, _ *genai.GetFileConfig) (*genai.File, error) {
	state := f.states[f.gets]
	f.gets++
	return &genai.File{Name: name, URI: "https://files.example/abc", State: state}, nil
}

func (f *fakeFiles) Delete(_ context.Context, name string, _ *genai.DeleteFileConfig) (*genai.DeleteFileResponse, error) {
	f.deleted = append(f.deleted, name)
	return &genai.DeleteFileResponse{}, nil
}

func TestAudioPart_SmallAudioInline(t *testing.T) {
	files := &fakeFiles{}
	b := &Backend{files: files, inlineLimit: 16, pollInterval: time.Millisecond}

	part, cleanup, err := b.audioPart(context.Background(), gateway.TranscriptionRequest{Data: []byte("short")})
	require.NoError(t, err)
	cleanup()

	require.NotNil(t, part.InlineData)
	assert.Equal(t, defaultAudioMIME, part.InlineData.MIMEType)
	assert.Nil(t, part.FileData)
	assert.Nil(t, files.uploaded)
	assert.Empty(t, files.deleted)
}

func TestAudioPart_LargeAudioUploaded(t *testing.T) {
	files := &fakeFiles{states: []genai.FileState{genai.FileStateProcessing, genai.FileStateActive}}
	b := &Backend{files: files, inlineLimit: 4, pollInterval: time.Millisecond}
	data := bytes.Repeat([]byte{0xFF}, 32)

	part, cleanup, err := b.audioPart(context.Background(), gateway.TranscriptionRequest{
		Data:     data,
		FileName: "lezione.wav",
		MIMEType: "audio/wav",
	})
	require.NoError(t, err)

	assert.Nil(t, part.InlineData)
	require.NotNil(t, part.FileData)
	assert.Equal(t, "https://files.example/abc", part.FileData.FileURI)
	assert.Equal(t, "audio/wav", part.FileData.MIMEType)
	assert.Equal(t, data, files.uploaded)
	assert.Equal(t, "lezione.wav", files.uploadCfg.DisplayName)
	assert.Equal(t, 2, files.gets)

	assert.Empty(t, files.deleted)
	cleanup()
	assert.Equal(t, []string{"files/abc"}, files.deleted)
}

func TestAudioPart_FailedProcessingCleansUp(t *testing.T) {
	files := &fakeFiles{states: []genai.FileState{genai.FileStateFailed}}
	b := &Backend{files: files, inlineLimit: 4, pollInterval: time.Millisecond}

	_, cleanup, err := b.audioPart(context.Background(), gateway.TranscriptionRequest{Data: make([]byte, 32)})
	require.Error(t, err)
	cleanup()

	assert.True(t, gateway.IsKind(err, gateway.KindOther))
	assert.Equal(t, []string{"files/abc"}, files.deleted)
}

func TestAudioPart_ContextCanceledWhileProcessing(t *testing.T) {
	files := &fakeFiles{states: []genai.FileState{genai.FileStateProcessing}}
	b := &Backend{files: files, inlineLimit: 4, pollInterval: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := b.audioPart(ctx, gateway.TranscriptionRequest{Data: make([]byte, 32)})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"files/abc"}, files.deleted)
}
