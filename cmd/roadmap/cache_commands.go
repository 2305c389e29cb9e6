package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Esma3in/SkillMatch-fe-sub000/internal/cache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the on-device progress cache",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List cached roadmaps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(ctx.logger(cmd.ErrOrStderr()), func(store *cache.Store) error {
				entries, err := store.List()
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Cache is empty")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					progress := "-"
					status := "unreadable"
					if entry.Valid {
						progress = strconv.Itoa(entry.ProgressPercent) + "%"
						status = string(entry.TerminalStatus)
						if status == "" {
							status = "in progress"
						}
					}
					rows = append(rows, []string{
						entry.RoadmapID,
						entry.CandidateID,
						progress,
						status,
						entry.UpdatedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Roadmap", "Candidate", "Progress", "Status", "Updated"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear <roadmap>",
		Short: "Drop the cached record for a roadmap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(ctx.logger(cmd.ErrOrStderr()), func(store *cache.Store) error {
				removed, err := store.Delete(args[0])
				if err != nil {
					return err
				}
				if removed {
					fmt.Fprintf(cmd.OutOrStdout(), "Removed cached progress for %s\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Nothing cached for %s\n", args[0])
				}
				return nil
			})
		},
	}

	cacheCmd.AddCommand(listCmd, clearCmd)
	return cacheCmd
}
