package upload

import (
	"time"

	"github.com/streadway/amqp"

	"bitbucket.org/edsplore/callqa/internal/pkg/messages"

	"bitbucket.org/edsplore/callqa/internal/pkg/mongo"
	"bitbucket.org/edsplore/callqa/internal/pkg/rabbit"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/saver"
	"github.com/spf13/cobra"

	"github.com/heptiolabs/healthcheck"
)

var rootCmd = &cobra.Command{
	Use:   "uploadService",
	Short: "CallQA Upload Audio File Service",
	Long:  `HTTP server to listen and upload call recordings for processing`,
	Run:   run,
}

func init() {
	cmdapp.InitApplication(rootCmd)
	rootCmd.PersistentFlags().Int32P("port", "", 8080, "Default service port")
	cmdapp.Config.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
	cmdapp.Config.SetDefault("port", 8080)
	cmdapp.Config.SetDefault("fileStorage.path", "/data/audio.in/")
}

// Execute starts the server
func Execute() {
	cmdapp.Execute(rootCmd)
}

func run(cmd *cobra.Command, args []string) {
	cmdapp.Log.Info("Starting uploadService")
	var data ServiceData
	var err error
	data.health = healthcheck.NewHandler()

	err = initMetrics(&data)
	cmdapp.CheckOrPanic(err, "Can't init metrics")

	fs, err := saver.NewLocalFileSaver(cmdapp.Config.GetString("fileStorage.path"))
	cmdapp.CheckOrPanic(err, "Can't init file storage")
	data.FileSaver = fs
	data.health.AddLivenessCheck("fs", fs.HealthyFunc(50))

	msgChannelProvider, err := rabbit.NewChannelProvider()
	cmdapp.CheckOrPanic(err, "Can't init rabbit channel")
	defer msgChannelProvider.Close()
	data.health.AddLivenessCheck("rabbit", healthcheck.Async(msgChannelProvider.Healthy, 10*time.Second))

	err = initQueues(msgChannelProvider)
	cmdapp.CheckOrPanic(err, "Can't init queues")

	data.MessageSender = rabbit.NewSender(msgChannelProvider)

	mongoSessionProvider, err := mongo.NewSessionProvider()
	cmdapp.CheckOrPanic(err, "Can't init mongo")
	defer mongoSessionProvider.Close()
	data.health.AddLivenessCheck("mongo", healthcheck.Async(mongoSessionProvider.Healthy, 10*time.Second))

	data.CallSaver, err = mongo.NewCallSaver(mongoSessionProvider)
	cmdapp.CheckOrPanic(err, "Can't init call saver")

	data.Agents, err = mongo.NewAgentProvider(mongoSessionProvider)
	cmdapp.CheckOrPanic(err, "Can't init agent provider")
	data.Port = cmdapp.Config.GetInt("port")

	err = StartWebServer(&data)
	cmdapp.CheckOrPanic(err, "Can't start web server")
}

func initQueues(prv *rabbit.ChannelProvider) error {
	cmdapp.Log.Info("Initializing queues")
	return prv.RunOnChannelWithRetry(func(ch *amqp.Channel) error {
		_, err := rabbit.DeclareQueue(ch, prv.QueueName(messages.ProcessCall))
		return err
	})
}
