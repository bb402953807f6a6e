package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shuffleraid/raid-api/internal/entities"
	"github.com/shuffleraid/raid-api/internal/host"
	"github.com/shuffleraid/raid-api/internal/identity"
	"github.com/shuffleraid/raid-api/internal/orchestrators/raid"
	"github.com/shuffleraid/raid-api/internal/pkg/idgen"
)

var (
	createName       string
	createClass      string
	createMode       string
	createDifficulty string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a raid session and host it",
	Long:  `Create a new raid session, print its share code, and run the host loop until the process stops.`,
	RunE:  runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createName, "name", "", "display name of the host player")
	createCmd.Flags().StringVar(&createClass, "class", "Warrior", "hero class of the host player")
	createCmd.Flags().StringVar(&createMode, "mode", string(entities.ModeMulti), "game mode (campaign, individual, multi)")
	createCmd.Flags().StringVar(&createDifficulty, "difficulty", "normal", "difficulty (easy, normal, hard, endless)")
	_ = createCmd.MarkFlagRequired("name")
}

func runCreate(cmd *cobra.Command, _ []string) error {
	application, err := buildApp()
	if err != nil {
		return err
	}

	provider, err := identity.NewStaticProvider(&identity.Config{
		DisplayName: createName,
		Generator:   idgen.NewUUID("player"),
	})
	if err != nil {
		return err
	}
	me := provider.Identity()

	out, err := application.service.CreateSession(cmd.Context(), &raid.CreateSessionInput{
		HostUID:    me.UID,
		HostName:   me.DisplayName,
		ClassName:  createClass,
		Mode:       entities.Mode(createMode),
		Difficulty: createDifficulty,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Session created. Share code: %s\n", out.Session.Code)

	runner, err := host.NewRunner(&host.Config{
		Service: application.service,
		Feed:    application.feed,
		Code:    out.Session.Code,
	})
	if err != nil {
		return err
	}
	return runner.Run(cmd.Context())
}
