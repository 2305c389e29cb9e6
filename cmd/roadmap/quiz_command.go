package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newQuizCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "quiz <roadmap> <score>",
		Short: "Record a quiz score (0-100) for the candidate",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := strconv.Atoi(args[1])
			if err != nil || score < 0 || score > 100 {
				return fmt.Errorf("score must be a whole number between 0 and 100, got %q", args[1])
			}
			candidateID, err := ctx.candidateID()
			if err != nil {
				return err
			}
			client, err := ctx.remoteClient(ctx.logger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			result, err := client.RecordQuizResult(cmd.Context(), args[0], candidateID, score)
			if err != nil {
				return fmt.Errorf("record quiz result: %w", err)
			}
			verdict := "not passed"
			if result.Passed {
				verdict = "passed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Quiz score %d recorded (%s); roadmap status: %s\n", result.Score, verdict, result.Status)
			return nil
		},
	}
}
