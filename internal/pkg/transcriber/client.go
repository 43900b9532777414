package transcriberapi

import (
	"bytes"
	"encoding/json"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/transcriber/api"
	"bitbucket.org/edsplore/callqa/internal/pkg/utils"
	"github.com/pkg/errors"

	"github.com/hashicorp/go-retryablehttp"
)

// Client comunicates with the transcription relay service
type Client struct {
	httpclient    *retryablehttp.Client
	transcribeURL string
}

// NewClient creates a transcriber client
func NewClient() (*Client, error) {
	res := Client{}
	urlStr, err := utils.GetURLFromConfig("transcriber.url")
	if err != nil {
		return nil, err
	}
	res.transcribeURL = utils.URLJoin(urlStr, "transcribe")
	res.httpclient = retryablehttp.NewClient()
	res.httpclient.RetryMax = 3
	res.httpclient.Logger = nil

	return &res, nil
}

type transcribeRequest struct {
	AudioURL string `json:"audioUrl"`
}

type transcribeResponse struct {
	Transcript *api.Transcript `json:"transcript"`
	Error      string          `json:"error,omitempty"`
}

// Transcribe sends the signed audio URL and returns the provider transcript
func (sp *Client) Transcribe(audioURL string) (*api.Transcript, error) {
	if audioURL == "" {
		return nil, errors.New("No audio URL")
	}
	cmdapp.Log.Infof("Transcribing: %s", utils.HidePass(audioURL))

	bytesData, err := json.Marshal(transcribeRequest{AudioURL: audioURL})
	if err != nil {
		return nil, errors.Wrap(err, "Can't marshal request")
	}
	resp, err := sp.httpclient.Post(sp.transcribeURL, "application/json", bytes.NewBuffer(bytesData))
	if err != nil {
		return nil, errors.Wrap(err, "Can't call transcription relay")
	}
	defer resp.Body.Close()
	err = utils.ValidateResponse(resp)
	if err != nil {
		return nil, errors.Wrap(err, "Can't transcribe")
	}

	var result transcribeResponse
	err = json.NewDecoder(resp.Body).Decode(&result)
	if err != nil {
		return nil, errors.Wrap(err, "Can't decode response")
	}
	if result.Error != "" {
		return nil, errors.New("Transcription failed: " + result.Error)
	}
	if result.Transcript == nil {
		return nil, errors.New("No transcript in response")
	}
	return result.Transcript, nil
}
