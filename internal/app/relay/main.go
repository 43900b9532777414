package relay

import (
	"github.com/heptiolabs/healthcheck"
	"github.com/spf13/cobra"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/deepgram"
)

var appName = "CallQA Transcription Relay Service"

var rootCmd = &cobra.Command{
	Use:   "relayService",
	Short: appName,
	Long:  `HTTP server relaying audio URLs to the speech to text provider`,
	Run:   run,
}

func init() {
	cmdapp.InitApplication(rootCmd)
	rootCmd.PersistentFlags().Int32P("port", "", 8081, "Default service port")
	cmdapp.Config.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
	cmdapp.Config.SetDefault("port", 8081)
}

// Execute starts the server
func Execute() {
	cmdapp.Execute(rootCmd)
}

func run(cmd *cobra.Command, args []string) {
	cmdapp.Log.Info("Starting " + appName)
	data := ServiceData{}
	data.health = healthcheck.NewHandler()
	data.Port = cmdapp.Config.GetInt("port")

	err := initMetrics(&data)
	cmdapp.CheckOrPanic(err, "Can't init metrics")

	data.Transcriber, err = deepgram.NewClient()
	cmdapp.CheckOrPanic(err, "Can't init speech provider client")

	err = StartWebServer(&data)
	cmdapp.CheckOrPanic(err, "Can't start web server")
}
