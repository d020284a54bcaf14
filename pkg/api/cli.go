package api

import (
	"github.com/fleetwatch/fleetwatch/pkg/database"
	"github.com/fleetwatch/fleetwatch/pkg/redis_client"
	"github.com/fleetwatch/fleetwatch/pkg/tracker"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the core web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := redis_client.Connect(); err != nil {
						return err
					}

					return SetupServer(c.String("listen"), tracker.NewDefaultService())
				},
			},
		},
	}
}
