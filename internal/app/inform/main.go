package inform

import (
	"time"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/messages"
	"bitbucket.org/edsplore/callqa/internal/pkg/mongo"
	"bitbucket.org/edsplore/callqa/internal/pkg/rabbit"
	"bitbucket.org/edsplore/callqa/internal/pkg/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/streadway/amqp"
)

var appName = "CallQA Inform Service"

var rootCmd = &cobra.Command{
	Use:   "informService",
	Short: appName,
	Long:  `Service listens for call processing events from the queue and informs the uploader by email`,
	Run:   run,
}

func init() {
	cmdapp.InitApplication(rootCmd)
	cmdapp.Config.SetDefault("mail.lockTTL", "24h")
}

// Execute starts the server
func Execute() {
	cmdapp.Execute(rootCmd)
}

func run(cmd *cobra.Command, args []string) {
	cmdapp.Log.Info("Starting " + appName)
	data := ServiceData{}
	data.fc = utils.NewSignalChannel()

	msgChannelProvider, err := rabbit.NewChannelProvider()
	cmdapp.CheckOrPanic(err, "Can't init rabbit provider")
	defer msgChannelProvider.Close()

	err = initQueue(msgChannelProvider)
	cmdapp.CheckOrPanic(err, "Can't init queues")

	ch, err := msgChannelProvider.Channel()
	cmdapp.CheckOrPanic(err, "Can't open channel")
	err = ch.Qos(1, 0, false)
	cmdapp.CheckOrPanic(err, "Can't set Qos")

	data.workCh, err = rabbit.Consume(ch, msgChannelProvider.QueueName(messages.Inform), false)
	cmdapp.CheckOrPanic(err, "Can't listen to "+messages.Inform+" queue")

	data.emailMaker, err = newSimpleEmailMaker(cmdapp.Config)
	cmdapp.CheckOrPanic(err, "Can't init email maker")

	location := cmdapp.Config.GetString("mail.location")
	if location != "" {
		data.location, err = time.LoadLocation(location)
		cmdapp.CheckOrPanic(err, "Can't init location")
	}

	data.emailSender, err = newSimpleEmailSender()
	cmdapp.CheckOrPanic(err, "Can't init email sender")

	mongoSessionProvider, err := mongo.NewSessionProvider()
	cmdapp.CheckOrPanic(err, "Can't init mongo provider")
	defer mongoSessionProvider.Close()

	data.locker, err = mongo.NewLocker(mongoSessionProvider, cmdapp.Config.GetDuration("mail.lockTTL"))
	cmdapp.CheckOrPanic(err, "Can't init mongo locker")

	data.emailRetriever, err = mongo.NewEmailRetriever(mongoSessionProvider)
	cmdapp.CheckOrPanic(err, "Can't init mongo email retriever")

	err = StartWorkerService(&data)
	cmdapp.CheckOrPanic(err, "Can't start worker service")

	<-data.fc.C
	cmdapp.Log.Infof("Exiting service")
}

func initQueue(prv *rabbit.ChannelProvider) error {
	cmdapp.Log.Info("Initializing queues")
	return prv.RunOnChannelWithRetry(func(ch *amqp.Channel) error {
		_, err := rabbit.DeclareQueue(ch, prv.QueueName(messages.Inform))
		return errors.Wrap(err, "Can't declare queue")
	})
}
