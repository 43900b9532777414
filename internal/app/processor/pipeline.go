package processor

import (
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"

	aapi "bitbucket.org/edsplore/callqa/internal/pkg/analyzer/api"
	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/errc"
	"bitbucket.org/edsplore/callqa/internal/pkg/messages"
	mng "bitbucket.org/edsplore/callqa/internal/pkg/mongo"
	"bitbucket.org/edsplore/callqa/internal/pkg/persistence"
	"bitbucket.org/edsplore/callqa/internal/pkg/status"
)

const processLockKey = "processCall"

// errWrongStatus marks a message for a call whose status does not allow a run.
// Such messages are dropped without touching the call record
var errWrongStatus = errors.New("call status does not allow processing")

// ProcessCall runs the pipeline for one call: transcribe, analyze, persist.
// A pipeline failure is recorded as call status failed with an error code.
// The returned error is non nil only when the failure itself can't be saved,
// so the queue loop can move to the next delivery
func ProcessCall(data *ServiceData, id string, file string) error {
	if id == "" {
		return errors.New("No call ID")
	}
	cmdapp.Log.Infof("Processing call %s", id)
	if err := data.Locker.Lock(id, processLockKey); err != nil {
		return errors.Wrapf(err, "Can't lock call %s", id)
	}
	unlocked := 0
	defer func() {
		cmdapp.LogIf(data.Locker.UnLock(id, processLockKey, &unlocked))
	}()

	err := runPipeline(data, id, file)
	if err != nil {
		if errors.Cause(err) == errWrongStatus {
			cmdapp.Log.Warn(err)
			return nil
		}
		cmdapp.Log.Error(err)
		code := errc.CodeExtractor{}.Get(err.Error())
		countFailure(data, code)
		if errS := data.StatusSaver.SaveError(id, code, err.Error()); errS != nil {
			return errors.Wrap(errS, "Can't save failure status")
		}
		publishStatus(data, id)
		sendInform(data, id, messages.InformTypeFailed)
	}
	return nil
}

func runPipeline(data *ServiceData, id string, file string) error {
	call, err := data.Calls.Get(id)
	if err != nil {
		if errors.Cause(err) == mng.ErrCallNotFound {
			return errors.Wrap(err, errc.Mark(errc.Input, "Unknown call "+id))
		}
		return wrapCode(err, errc.Persistence, "Can't load call")
	}
	if !status.CanAdvance(status.From(call.Status), status.Transcribing) {
		return errors.Wrapf(errWrongStatus, "call %s is %s", id, call.Status)
	}
	if file == "" {
		file = call.FilePath
	}
	if file == "" {
		return errors.New(errc.Mark(errc.Input, "No audio file for call"))
	}

	if err := advance(data, id, status.Transcribing, "Starting transcription"); err != nil {
		return err
	}

	text, lang, conf, err := transcribe(data, file)
	if err != nil {
		return err
	}
	err = saveWithRetry(data, func() error {
		return data.TranscriptionSaver.Save(&persistence.Transcription{CallID: id,
			Content: text, Language: lang, Confidence: conf})
	}, "Can't save transcription")
	if err != nil {
		return err
	}

	if err := advance(data, id, status.Analyzing, "Starting analysis"); err != nil {
		return err
	}

	metricDefs, err := loadMetrics(data, call)
	if err != nil {
		return err
	}
	an, err := analyze(data, text, metricDefs)
	if err != nil {
		return err
	}
	parent, issues, recommendations, err := mapAnalysis(id, an)
	if err != nil {
		return wrapCode(err, errc.Schema, "Can't map analysis")
	}
	err = saveWithRetry(data, func() error {
		return data.AnalysisSaver.Save(parent, issues, recommendations)
	}, "Can't save analysis")
	if err != nil {
		return err
	}

	if err := advance(data, id, status.Completed, "Processing completed"); err != nil {
		return err
	}
	sendInform(data, id, messages.InformTypeFinished)
	cmdapp.Log.Infof("Call %s processed", id)
	return nil
}

// advance persists the new status with its progress phase and fires the status event
func advance(data *ServiceData, id string, to status.Status, detail string) error {
	if err := data.StatusSaver.Save(id, to); err != nil {
		return wrapCode(err, errc.Persistence, "Can't save status "+status.Name(to))
	}
	if err := data.StatusSaver.SaveDetail(id, detail); err != nil {
		cmdapp.Log.Error(err)
	}
	publishStatus(data, id)
	return nil
}

func transcribe(data *ServiceData, file string) (string, string, float64, error) {
	start := time.Now()
	defer observe(data, "transcribe", start)

	url, err := data.Signer.SignURL(file, data.SignExpiry)
	if err != nil {
		return "", "", 0, wrapCode(err, errc.Provider, "Can't sign audio url")
	}
	tr, err := data.Transcriber.Transcribe(url)
	if err != nil {
		return "", "", 0, wrapCode(err, errc.Provider, "Can't transcribe")
	}
	text, err := tr.Text()
	if err != nil {
		return "", "", 0, wrapCode(err, errc.Provider, "Wrong transcription result")
	}
	if strings.TrimSpace(text) == "" {
		return "", "", 0, errors.New(errc.Mark(errc.Provider, "Empty transcript"))
	}
	lang, err := tr.Language()
	if err != nil || lang == "" {
		cmdapp.Log.Infof("No detected language, using %s", data.DefaultLanguage)
		lang = data.DefaultLanguage
	}
	conf, err := tr.Confidence()
	if err != nil {
		conf = data.DefaultConfidence
	}
	return text, lang, conf, nil
}

func analyze(data *ServiceData, text string, metricDefs []persistence.MetricDefinition) (*aapi.CallAnalysis, error) {
	start := time.Now()
	defer observe(data, "analyze", start)

	res, err := data.Analyzer.Analyze(text, metricDefs)
	if err != nil {
		return nil, wrapCode(err, errc.Provider, "Can't analyze")
	}
	return res, nil
}

// loadMetrics takes the call owner's metric definitions,
// an empty or unavailable set degrades to the default one
func loadMetrics(data *ServiceData, call *persistence.Call) ([]persistence.MetricDefinition, error) {
	var res []persistence.MetricDefinition
	if call.AgentID != "" {
		agent, err := data.Agents.Get(call.AgentID)
		if err != nil {
			cmdapp.Log.Warnf("Can't load agent %s: %v", call.AgentID, err)
		} else if agent.UserID != "" {
			res, err = data.Metrics.LoadByUser(agent.UserID)
			if err != nil {
				cmdapp.Log.Warnf("Can't load metrics for user %s: %v", agent.UserID, err)
			}
		}
	}
	if len(res) > 0 {
		return res, nil
	}
	cmdapp.Log.Info("Using default metric set")
	res, err := data.DefaultMetrics.Get()
	if err != nil {
		return nil, errors.Wrap(err, "Can't load default metrics")
	}
	return res, nil
}

func mapAnalysis(callID string, ca *aapi.CallAnalysis) (*persistence.Analysis,
	[]persistence.Issue, []persistence.Recommendation, error) {
	ma, err := persistence.MarshalMetricResults(ca.MetricAnalysis)
	if err != nil {
		return nil, nil, nil, err
	}
	mas, err := persistence.MarshalMetricResults(ca.MetricAnalysisSpanish)
	if err != nil {
		return nil, nil, nil, err
	}
	res := &persistence.Analysis{CallID: callID, PerformanceScore: ca.PerformanceScore,
		Rating: strings.ToLower(ca.Rating), Summary: ca.Summary, SummarySpanish: ca.SummarySpanish,
		MetricAnalysis: ma, MetricAnalysisSpanish: mas}
	issues := make([]persistence.Issue, 0, len(ca.Issues))
	for _, is := range ca.Issues {
		issues = append(issues, persistence.Issue{Category: is.Category,
			CategorySpanish: is.CategorySpanish, Description: is.Description,
			DescriptionSpanish: is.DescriptionSpanish, Severity: is.Severity})
	}
	recommendations := make([]persistence.Recommendation, 0, len(ca.Recommendations))
	for _, r := range ca.Recommendations {
		recommendations = append(recommendations, persistence.Recommendation{Content: r.Content,
			ContentSpanish: r.ContentSpanish, Priority: r.Priority})
	}
	return res, issues, recommendations, nil
}

func saveWithRetry(data *ServiceData, op func() error, msg string) error {
	err := backoff.Retry(func() error {
		err := op()
		if err != nil {
			cmdapp.Log.Error(err)
		}
		return err
	}, data.bp.Get())
	if err != nil {
		return wrapCode(err, errc.Persistence, msg)
	}
	return nil
}

// wrapCode wraps the error and marks it with the code unless one is already embedded
func wrapCode(err error, code string, msg string) error {
	if (errc.CodeExtractor{}).Get(err.Error()) != errc.DefaultCode {
		return errors.Wrap(err, msg)
	}
	return errors.Wrap(err, errc.Mark(code, msg))
}

func publishStatus(data *ServiceData, id string) {
	if data.Publisher != nil {
		cmdapp.LogIf(data.Publisher.Publish(id, messages.StatusChange))
	}
}

func sendInform(data *ServiceData, id string, informType string) {
	if data.InformSender == nil {
		return
	}
	cmdapp.LogIf(data.InformSender.Send(messages.NewInformMessage(id, informType, time.Now()),
		messages.Inform, ""))
}
