package processor

import (
	"time"

	"github.com/cenkalti/backoff"
	"github.com/heptiolabs/healthcheck"
	"github.com/spf13/cobra"
	"github.com/streadway/amqp"

	"bitbucket.org/edsplore/callqa/internal/pkg/analyzer"
	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/config"
	"bitbucket.org/edsplore/callqa/internal/pkg/fs"
	"bitbucket.org/edsplore/callqa/internal/pkg/messages"
	"bitbucket.org/edsplore/callqa/internal/pkg/mongo"
	"bitbucket.org/edsplore/callqa/internal/pkg/rabbit"
	transcriberapi "bitbucket.org/edsplore/callqa/internal/pkg/transcriber"
)

var appName = "CallQA Processor Service"

var rootCmd = &cobra.Command{
	Use:   "processorService",
	Short: appName,
	Long:  `Service runs the call processing pipeline: transcription, analysis, persistence`,
	Run:   run,
}

func init() {
	cmdapp.InitApplication(rootCmd)
	rootCmd.PersistentFlags().Int32P("port", "", 8082, "Default service port")
	cmdapp.Config.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
	cmdapp.Config.SetDefault("port", 8082)
	cmdapp.Config.SetDefault("processor.lockTTL", "10m")
	cmdapp.Config.SetDefault("processor.signExpiry", "300s")
	cmdapp.Config.SetDefault("transcription.defaultLanguage", "en")
	cmdapp.Config.SetDefault("transcription.defaultConfidence", 0.0)
	cmdapp.Config.SetDefault("metricsConfig.path", "config")
}

// Execute starts the server
func Execute() {
	cmdapp.Execute(rootCmd)
}

func run(cmd *cobra.Command, args []string) {
	cmdapp.Log.Info("Starting " + appName)
	data := ServiceData{}
	data.health = healthcheck.NewHandler()
	data.bp = &expBackOffProvider{}
	data.SignExpiry = cmdapp.Config.GetDuration("processor.signExpiry")
	data.DefaultLanguage = cmdapp.Config.GetString("transcription.defaultLanguage")
	data.DefaultConfidence = cmdapp.Config.GetFloat64("transcription.defaultConfidence")
	data.Port = cmdapp.Config.GetInt("port")

	err := initMetrics(&data)
	cmdapp.CheckOrPanic(err, "Can't init metrics")

	mongoSessionProvider, err := mongo.NewSessionProvider()
	cmdapp.CheckOrPanic(err, "Can't init mongo")
	defer mongoSessionProvider.Close()
	data.health.AddLivenessCheck("mongo", healthcheck.Async(mongoSessionProvider.Healthy, 10*time.Second))

	data.StatusSaver, err = mongo.NewStatusSaver(mongoSessionProvider)
	cmdapp.CheckOrPanic(err, "Can't init status saver")
	data.TranscriptionSaver, err = mongo.NewTranscriptionSaver(mongoSessionProvider)
	cmdapp.CheckOrPanic(err, "Can't init transcription saver")
	data.AnalysisSaver, err = mongo.NewAnalysisSaver(mongoSessionProvider)
	cmdapp.CheckOrPanic(err, "Can't init analysis saver")
	data.Calls, err = mongo.NewCallProvider(mongoSessionProvider)
	cmdapp.CheckOrPanic(err, "Can't init call provider")
	data.Agents, err = mongo.NewAgentProvider(mongoSessionProvider)
	cmdapp.CheckOrPanic(err, "Can't init agent provider")
	data.Metrics, err = mongo.NewMetricProvider(mongoSessionProvider)
	cmdapp.CheckOrPanic(err, "Can't init metric provider")
	data.Locker, err = mongo.NewLocker(mongoSessionProvider, cmdapp.Config.GetDuration("processor.lockTTL"))
	cmdapp.CheckOrPanic(err, "Can't init locker")

	data.DefaultMetrics, err = config.NewFileMetricSet(cmdapp.Config.GetString("metricsConfig.path"))
	cmdapp.CheckOrPanic(err, "Can't init default metric set")

	msgChannelProvider, err := rabbit.NewChannelProvider()
	cmdapp.CheckOrPanic(err, "Can't init rabbit channel provider")
	defer msgChannelProvider.Close()
	data.health.AddLivenessCheck("rabbit", healthcheck.Async(msgChannelProvider.Healthy, 10*time.Second))

	ch, err := msgChannelProvider.Channel()
	cmdapp.CheckOrPanic(err, "Can't open channel")
	err = ch.Qos(1, 0, false)
	cmdapp.CheckOrPanic(err, "Can't set Qos")

	err = initQueues(msgChannelProvider)
	cmdapp.CheckOrPanic(err, "Can't init queues")

	data.ProcessCh, err = rabbit.Consume(ch, msgChannelProvider.QueueName(messages.ProcessCall), false)
	cmdapp.CheckOrPanic(err, "Can't listen to "+messages.ProcessCall+" queue")

	data.MessageSender = rabbit.NewSender(msgChannelProvider)
	data.InformSender = data.MessageSender
	data.Publisher = rabbit.NewPublisher(msgChannelProvider)

	data.Signer, err = fs.NewClient()
	cmdapp.CheckOrPanic(err, "Can't init file storage client")
	data.Transcriber, err = transcriberapi.NewClient()
	cmdapp.CheckOrPanic(err, "Can't init transcriber client")
	data.Analyzer, err = analyzer.NewClient()
	cmdapp.CheckOrPanic(err, "Can't init analyzer client")

	err = StartWorkerService(&data)
	cmdapp.CheckOrPanic(err, "Can't start worker service")

	err = StartWebServer(&data)
	cmdapp.CheckOrPanic(err, "Can't start web server")
}

func initQueues(prv *rabbit.ChannelProvider) error {
	cmdapp.Log.Info("Initializing queues")
	return prv.RunOnChannelWithRetry(func(ch *amqp.Channel) error {
		if _, err := rabbit.DeclareQueue(ch, prv.QueueName(messages.ProcessCall)); err != nil {
			return err
		}
		if _, err := rabbit.DeclareQueue(ch, prv.QueueName(messages.Inform)); err != nil {
			return err
		}
		return rabbit.DeclareExchange(ch, prv.QueueName(messages.StatusChange))
	})
}

type expBackOffProvider struct {
}

func (bp *expBackOffProvider) Get() backoff.BackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     backoff.DefaultInitialInterval,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         backoff.DefaultMaxInterval,
		MaxElapsedTime:      45 * time.Second,
		Clock:               backoff.SystemClock,
	}
	b.Reset()
	return b
}
