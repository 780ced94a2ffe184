package main

import (
	"log"
	"os"

	"github.com/mitchellh/cli"
	"github.com/yusufsyaifudin/cyberhook/assets"
	"github.com/yusufsyaifudin/cyberhook/cmd/configure"
	"github.com/yusufsyaifudin/cyberhook/cmd/gen/genapidoc"
	"github.com/yusufsyaifudin/cyberhook/cmd/history"
	"github.com/yusufsyaifudin/cyberhook/cmd/send"
	"github.com/yusufsyaifudin/cyberhook/cmd/serve"
)

func main() {
	serveCmd := serve.NewCmd()

	c := cli.NewCLI(assets.ServiceName, assets.Version)
	c.Args = os.Args[1:]
	c.Autocomplete = true
	c.Commands = map[string]cli.CommandFactory{
		"":          serveCmd, // default command if no subcommand defined
		"serve":     serveCmd,
		"send":      send.NewCmd(),
		"configure": configure.NewCmd(),
		"history":   history.NewCmd(),
		"apidoc": func() (cli.Command, error) {
			return genapidoc.NewApiDocCmd(genapidoc.ApiDocCfg{})
		},
	}

	exitStatus, err := c.Run()
	if err != nil {
		log.Println(err)
	}

	os.Exit(exitStatus)
}
