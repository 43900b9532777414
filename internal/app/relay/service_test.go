package relay

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"bitbucket.org/edsplore/callqa/internal/pkg/transcriber/api"
)

type testTranscriber struct {
	tr  *api.Transcript
	err error
	url string
}

func (t *testTranscriber) Transcribe(audioURL string) (*api.Transcript, error) {
	t.url = audioURL
	return t.tr, t.err
}

func newTestTranscript(text string) *api.Transcript {
	return &api.Transcript{Results: api.Results{Channels: []api.Channel{
		{DetectedLanguage: "en", Alternatives: []api.Alternative{
			{Transcript: text, Confidence: 0.9,
				Paragraphs: api.Paragraphs{Transcript: text}}}}}}}
}

func initTestData(t *testing.T) *ServiceData {
	t.Helper()
	return &ServiceData{Transcriber: &testTranscriber{tr: newTestTranscript("hello")}}
}

func testCode(t *testing.T, data *ServiceData, body string, code int) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/transcribe", strings.NewReader(body))
	resp := httptest.NewRecorder()
	NewRouter(data).ServeHTTP(resp, req)
	assert.Equal(t, code, resp.Code)
	return resp
}

func TestTranscribe(t *testing.T) {
	data := initTestData(t)

	resp := testCode(t, data, `{"audioUrl":"http://files.server/a.wav"}`, 200)

	var res transcribeResult
	assert.Nil(t, json.Unmarshal(resp.Body.Bytes(), &res))
	assert.NotNil(t, res.Transcript)
	txt, err := res.Transcript.Text()
	assert.Nil(t, err)
	assert.Equal(t, "hello", txt)
	assert.Equal(t, "http://files.server/a.wav", data.Transcriber.(*testTranscriber).url)
}

func TestTranscribe_NoURL(t *testing.T) {
	data := initTestData(t)

	resp := testCode(t, data, `{}`, 400)

	var res transcribeResult
	assert.Nil(t, json.Unmarshal(resp.Body.Bytes(), &res))
	assert.Equal(t, "audio URL is required", res.Error)
}

func TestTranscribe_WrongInput(t *testing.T) {
	data := initTestData(t)
	testCode(t, data, `olia`, 400)
}

func TestTranscribe_ProviderFails(t *testing.T) {
	data := initTestData(t)
	data.Transcriber = &testTranscriber{err: errors.New("provider down")}

	resp := testCode(t, data, `{"audioUrl":"http://files.server/a.wav"}`, 502)

	var res transcribeResult
	assert.Nil(t, json.Unmarshal(resp.Body.Bytes(), &res))
	assert.NotEmpty(t, res.Error)
	assert.Nil(t, res.Transcript)
}

func TestNotFound(t *testing.T) {
	data := initTestData(t)
	req := httptest.NewRequest("GET", "/transcribe", nil)
	resp := httptest.NewRecorder()
	NewRouter(data).ServeHTTP(resp, req)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)
}
