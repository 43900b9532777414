package main

import (
	"bitbucket.org/edsplore/callqa/internal/app/relay"
	"github.com/labstack/gommon/color"
)

func main() {
	printBanner()
	relay.Execute()
}

var (
	version string
)

func printBanner() {
	banner := `
            ____
  _________ _/ / /___ _____ _
 / ___/ __ ` + "`" + `/ / / / __ ` + "`" + `/ __ ` + "`" + `/
/ /__/ /_/ / / / / /_/ / /_/ /
\___/\__,_/_/_/\__, /\__,_/  v: %s
                 /_/
  transcription relay service
%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("bitbucket.org/edsplore/callqa"))
}
