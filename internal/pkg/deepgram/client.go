package deepgram

import (
	"bytes"
	"encoding/json"
	"net/url"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/transcriber/api"
	"bitbucket.org/edsplore/callqa/internal/pkg/utils"
	"github.com/pkg/errors"

	"github.com/hashicorp/go-retryablehttp"
)

// Client invokes the speech to text provider with a prerecorded audio URL
type Client struct {
	httpclient *retryablehttp.Client
	listenURL  string
	key        string
	model      string
}

// NewClient creates a speech provider client
func NewClient() (*Client, error) {
	res := Client{}
	urlStr, err := utils.GetURLFromConfig("deepgram.url")
	if err != nil {
		return nil, err
	}
	res.key = cmdapp.Config.GetString("deepgram.key")
	if res.key == "" {
		return nil, errors.New("No deepgram.key provided")
	}
	res.model = cmdapp.Config.GetString("deepgram.model")
	if res.model == "" {
		res.model = "nova-2"
	}
	res.listenURL = utils.URLJoin(urlStr, "v1", "listen")
	res.httpclient = retryablehttp.NewClient()
	res.httpclient.RetryMax = 3
	res.httpclient.Logger = nil

	return &res, nil
}

type listenRequest struct {
	URL string `json:"url"`
}

// Transcribe sends the audio URL for recognition and returns the raw transcript
func (sp *Client) Transcribe(audioURL string) (*api.Transcript, error) {
	if audioURL == "" {
		return nil, errors.New("No audio URL")
	}
	cmdapp.Log.Infof("Sending to recognizer: %s", utils.HidePass(audioURL))

	bytesData, err := json.Marshal(listenRequest{URL: audioURL})
	if err != nil {
		return nil, errors.Wrap(err, "Can't marshal request")
	}
	req, err := retryablehttp.NewRequest("POST", sp.requestURL(), bytes.NewBuffer(bytesData))
	if err != nil {
		return nil, errors.Wrap(err, "Can't prepare request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+sp.key)

	resp, err := sp.httpclient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "Can't call recognizer")
	}
	defer resp.Body.Close()
	err = utils.ValidateResponse(resp)
	if err != nil {
		return nil, errors.Wrap(err, "Can't recognize")
	}

	var result api.Transcript
	err = json.NewDecoder(resp.Body).Decode(&result)
	if err != nil {
		return nil, errors.Wrap(err, "Can't decode response")
	}
	return &result, nil
}

func (sp *Client) requestURL() string {
	params := url.Values{}
	params.Set("model", sp.model)
	params.Set("smart_format", "true")
	params.Set("detect_language", "true")
	params.Set("diarize", "true")
	params.Set("punctuate", "true")
	return sp.listenURL + "?" + params.Encode()
}
