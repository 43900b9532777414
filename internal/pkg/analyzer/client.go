package analyzer

import (
	"bytes"
	"encoding/json"

	"bitbucket.org/edsplore/callqa/internal/pkg/analyzer/api"
	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/persistence"
	"bitbucket.org/edsplore/callqa/internal/pkg/utils"
	"github.com/pkg/errors"

	"github.com/hashicorp/go-retryablehttp"
)

// Client invokes the chat completion provider and maps its answer to CallAnalysis
type Client struct {
	httpclient  *retryablehttp.Client
	completeURL string
	key         string
	model       string
	temperature float64
}

// NewClient creates an analyzer client
func NewClient() (*Client, error) {
	res := Client{}
	urlStr, err := utils.GetURLFromConfig("analyzer.url")
	if err != nil {
		return nil, err
	}
	res.key = cmdapp.Config.GetString("analyzer.key")
	if res.key == "" {
		return nil, errors.New("No analyzer.key provided")
	}
	res.model = cmdapp.Config.GetString("analyzer.model")
	if res.model == "" {
		return nil, errors.New("No analyzer.model provided")
	}
	res.temperature = 0.3
	res.completeURL = utils.URLJoin(urlStr, "chat", "completions")
	res.httpclient = retryablehttp.NewClient()
	res.httpclient.RetryMax = 3
	res.httpclient.Logger = nil

	return &res, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze evaluates the transcript against the metric set
func (sp *Client) Analyze(text string, metrics []persistence.MetricDefinition) (*api.CallAnalysis, error) {
	if text == "" {
		return nil, errors.New("No transcript text")
	}
	if len(metrics) == 0 {
		return nil, errors.New("No metrics")
	}
	cmdapp.Log.Infof("Analyzing transcript, %d metrics", len(metrics))

	rd := chatRequest{Model: sp.model, Temperature: sp.temperature,
		ResponseFormat: responseFormat{Type: "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: buildSystemPrompt(metrics)},
			{Role: "user", Content: text},
		}}
	bytesData, err := json.Marshal(rd)
	if err != nil {
		return nil, errors.Wrap(err, "Can't marshal request")
	}
	req, err := retryablehttp.NewRequest("POST", sp.completeURL, bytes.NewBuffer(bytesData))
	if err != nil {
		return nil, errors.Wrap(err, "Can't prepare request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", sp.key)

	resp, err := sp.httpclient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "Can't call analyzer")
	}
	defer resp.Body.Close()
	err = utils.ValidateResponse(resp)
	if err != nil {
		return nil, errors.Wrap(err, "Can't analyze")
	}

	var result chatResponse
	err = json.NewDecoder(resp.Body).Decode(&result)
	if err != nil {
		return nil, errors.Wrap(err, "Can't decode response")
	}
	if len(result.Choices) == 0 {
		return nil, errors.New("No choices in response")
	}

	var res api.CallAnalysis
	err = json.Unmarshal([]byte(result.Choices[0].Message.Content), &res)
	if err != nil {
		return nil, errors.Wrap(err, "Can't parse analysis content")
	}
	err = Validate(&res, metrics)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
