package main

import (
	"github.com/spf13/cobra"

	"github.com/shuffleraid/raid-api/internal/host"
)

var hostCode string

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Run the host loop for an existing session",
	Long:  `Attach to an existing session as its single writer, resolving enemy phases and drawing encounters.`,
	RunE:  runHost,
}

func init() {
	hostCmd.Flags().StringVar(&hostCode, "code", "", "share code of the session to host")
	_ = hostCmd.MarkFlagRequired("code")
}

func runHost(cmd *cobra.Command, _ []string) error {
	application, err := buildApp()
	if err != nil {
		return err
	}

	runner, err := host.NewRunner(&host.Config{
		Service: application.service,
		Feed:    application.feed,
		Code:    hostCode,
	})
	if err != nil {
		return err
	}
	return runner.Run(cmd.Context())
}
