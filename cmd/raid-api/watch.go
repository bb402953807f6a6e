package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shuffleraid/raid-api/internal/orchestrators/raid"
)

var watchCode string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow a session's combat log",
	Long:  `Subscribe to a session and print new combat log lines as they land.`,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchCode, "code", "", "share code of the session to watch")
	_ = watchCmd.MarkFlagRequired("code")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	application, err := buildApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	updates, err := application.feed.Subscribe(ctx, watchCode)
	if err != nil {
		return err
	}

	printed := 0
	printNew := func() error {
		out, err := application.service.GetSession(ctx, &raid.GetSessionInput{Code: watchCode})
		if err != nil {
			return err
		}
		for ; printed < len(out.Session.Log); printed++ {
			fmt.Println(out.Session.Log[printed])
		}
		return nil
	}

	if err := printNew(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-updates:
			if !ok {
				return nil
			}
			if err := printNew(); err != nil {
				return err
			}
		}
	}
}
