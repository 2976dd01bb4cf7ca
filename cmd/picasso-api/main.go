package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"

	"github.com/longhornrumble/picasso-config-builder/pkg/cmd"
	"github.com/longhornrumble/picasso-config-builder/pkg/log"
)

const defaultPort = 8085

func main() {
	_ = godotenv.Load()

	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "picasso-api",
		Usage:                 "Edit and deploy tenant chatbot configurations",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "storage-url",
				Usage:    "Storage connection URL (file://, postgres:// or redis://)",
				Required: true,
				Sources:  cli.EnvVars("STORAGE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Picasso Config API")

			st, err := cmd.NewStorage(ctx, logger, command.String("storage-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := st.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close storage", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			api := NewAPI(logger, st, eventBus)

			if err := api.registerEventHandlers(ctx); err != nil {
				return err
			}

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
