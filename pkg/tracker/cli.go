package tracker

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/fleetwatch/fleetwatch/pkg/database"
	"github.com/fleetwatch/fleetwatch/pkg/redis_client"
	"github.com/fleetwatch/fleetwatch/pkg/routing"
	"github.com/fleetwatch/fleetwatch/pkg/store"
	"github.com/fleetwatch/fleetwatch/pkg/util"
	"github.com/urfave/cli/v2"
)

const defaultOSRMBaseURL = "https://router.project-osrm.org"

// NewDefaultService wires the production service: Mongo-backed vehicle store,
// redis-cached stop lookups and the OSRM routing oracle.
func NewDefaultService() *Service {
	env := util.GetEnvironmentVariables()

	osrmBaseURL := defaultOSRMBaseURL
	if env["FLEETWATCH_OSRM_URL"] != "" {
		osrmBaseURL = env["FLEETWATCH_OSRM_URL"]
	}

	oracle := routing.NewOSRMClient(osrmBaseURL)
	stops := store.NewCachedStopStore(store.MongoStopStore{})

	return NewService(store.MongoVehicleStore{}, NewEstimator(oracle, stops))
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "tracker",
		Usage: "Tracking engine ingests position reports and derives route progress",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run an instance of the tracking engine",
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := redis_client.Connect(); err != nil {
						return err
					}

					StartConsumers(NewDefaultService())

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT)
					defer signal.Stop(signals)

					<-signals // wait for signal
					go func() {
						<-signals // hard exit on second signal (in case shutdown gets stuck)
						os.Exit(1)
					}()

					<-redis_client.QueueConnection.StopAllConsuming() // wait for all Consume() calls to finish

					return nil
				},
			},
		},
	}
}
