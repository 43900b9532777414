package status

import (
	"os"
	"time"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/messages"
	"bitbucket.org/edsplore/callqa/internal/pkg/mongo"
	"bitbucket.org/edsplore/callqa/internal/pkg/rabbit"
	"github.com/heptiolabs/healthcheck"
	"github.com/spf13/cobra"
	"github.com/streadway/amqp"
)

var appName = "CallQA Status Provider Service"

var rootCmd = &cobra.Command{
	Use:   "statusProviderService",
	Short: appName,
	Long:  `HTTP server to provide call processing status, metric statistics and analysis settings`,
	Run:   run,
}

func init() {
	cmdapp.InitApplication(rootCmd)
	rootCmd.PersistentFlags().Int32P("port", "", 8000, "Default service port")
	cmdapp.Config.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
	cmdapp.Config.SetDefault("port", 8083)
}

func logPanic() {
	if r := recover(); r != nil {
		cmdapp.Log.Error(r)
		os.Exit(1)
	}
}

// Execute starts the server
func Execute() {
	defer logPanic()
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}

func run(cmd *cobra.Command, args []string) {
	cmdapp.Log.Info("Starting " + appName)
	data := &ServiceData{}
	data.health = healthcheck.NewHandler()
	data.Port = cmdapp.Config.GetInt("port")

	mongoSessionProvider, err := mongo.NewSessionProvider()
	if err != nil {
		panic(err)
	}
	defer mongoSessionProvider.Close()
	data.health.AddLivenessCheck("mongo", healthcheck.Async(mongoSessionProvider.Healthy, 10*time.Second))

	statusProvider, err := mongo.NewStatusProvider(mongoSessionProvider)
	if err != nil {
		panic(err)
	}
	data.StatusProvider = statusProvider

	analysisProvider, err := mongo.NewAnalysisProvider(mongoSessionProvider)
	if err != nil {
		panic(err)
	}
	data.AnalysisProvider = analysisProvider

	agentSaver, err := mongo.NewAgentSaver(mongoSessionProvider)
	if err != nil {
		panic(err)
	}
	data.AgentSaver = agentSaver

	agentProvider, err := mongo.NewAgentProvider(mongoSessionProvider)
	if err != nil {
		panic(err)
	}
	data.Agents = agentProvider

	metricSaver, err := mongo.NewMetricSaver(mongoSessionProvider)
	if err != nil {
		panic(err)
	}
	data.MetricSaver = metricSaver

	metricProvider, err := mongo.NewMetricProvider(mongoSessionProvider)
	if err != nil {
		panic(err)
	}
	data.Metrics = metricProvider

	msgChannelProvider, err := rabbit.NewChannelProvider()
	if err != nil {
		panic(err)
	}
	defer msgChannelProvider.Close()
	data.health.AddLivenessCheck("rabbit", healthcheck.Async(msgChannelProvider.Healthy, 10*time.Second))

	data.EventChannelFunc = func() (<-chan amqp.Delivery, error) {
		var res <-chan amqp.Delivery
		err := msgChannelProvider.RunOnChannelWithRetry(func(ch *amqp.Channel) error {
			var chErr error
			res, chErr = rabbit.NewChannel(ch, msgChannelProvider.QueueName(messages.StatusChange))
			return chErr
		})
		return res, err
	}

	err = StartWebServer(data)
	if err != nil {
		panic(err)
	}
}
