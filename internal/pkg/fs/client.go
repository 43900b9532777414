package fs

import (
	"bytes"
	"encoding/json"
	"time"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/utils"
	"github.com/pkg/errors"

	"github.com/hashicorp/go-retryablehttp"
)

// Client comunicates with the audio file storage server
type Client struct {
	httpclient *retryablehttp.Client
	signURL    string
}

// NewClient creates a fs client
func NewClient() (*Client, error) {
	res := Client{}
	urlStr, err := utils.GetURLFromConfig("fs.url")
	if err != nil {
		return nil, err
	}
	res.signURL = utils.URLJoin(urlStr, "sign")
	res.httpclient = retryablehttp.NewClient()
	res.httpclient.RetryMax = 3
	res.httpclient.Logger = nil

	return &res, nil
}

type signRequest struct {
	Path      string `json:"path"`
	ExpiresIn int64  `json:"expiresIn"`
}

type signResponse struct {
	URL string `json:"url"`
}

// SignURL asks storage for a time limited read URL for the audio object
func (sp *Client) SignURL(filePath string, expiry time.Duration) (string, error) {
	cmdapp.Log.Infof("Sign url for: %s", filePath)

	bytesData, err := json.Marshal(signRequest{Path: filePath, ExpiresIn: int64(expiry.Seconds())})
	if err != nil {
		return "", errors.Wrap(err, "Can't marshal request")
	}
	resp, err := sp.httpclient.Post(sp.signURL, "application/json", bytes.NewBuffer(bytesData))
	if err != nil {
		return "", errors.Wrap(err, "Can't call storage server")
	}
	defer resp.Body.Close()
	err = utils.ValidateResponse(resp)
	if err != nil {
		return "", errors.Wrap(err, "Can't sign url")
	}

	var result signResponse
	err = json.NewDecoder(resp.Body).Decode(&result)
	if err != nil {
		return "", errors.Wrap(err, "Can't decode response")
	}
	if result.URL == "" {
		return "", errors.New("Empty signed url in response")
	}
	return result.URL, nil
}
