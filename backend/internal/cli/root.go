package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the osint command tree
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "osint",
		Short: "Analyse who a Telegram user talks to",
		Long: `osint reads per-chat message archives collected for a subject and reports
the handles they mention most, who they reply to and who replies to them,
and when they are active.

Each subject lives in its own folder under the data directory. Results are
written next to the archive as mentions.json, replies.json and activity.json.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("data-dir", "", "Folder holding one sub-folder per subject (default $DATA_DIR)")
	rootCmd.PersistentFlags().Int("top", 0, "Rows to print per ranking (default $TOP_MENTIONS / $TOP_REPLIES)")

	subjectsCmd := &cobra.Command{
		Use:   "subjects",
		Short: "List subject folders in the data directory",
		Args:  cobra.NoArgs,
		RunE:  RunSubjects,
	}

	mentionsCmd := &cobra.Command{
		Use:   "mentions <subject>",
		Short: "Rank the @handles mentioned in a subject's archive",
		Args:  cobra.ExactArgs(1),
		RunE:  RunMentions,
	}

	repliesCmd := &cobra.Command{
		Use:   "replies <subject>",
		Short: "Rank who replied to whom in a subject's archive",
		Args:  cobra.ExactArgs(1),
		RunE:  RunReplies,
	}

	activityCmd := &cobra.Command{
		Use:   "activity <subject>",
		Short: "Show messages per hour of day and per weekday",
		Args:  cobra.ExactArgs(1),
		RunE:  RunActivity,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze <subject>",
		Short: "Run mentions, replies and activity over one read of the archive",
		Args:  cobra.ExactArgs(1),
		RunE:  RunAnalyze,
	}
	analyzeCmd.Flags().Bool("json", false, "Print the full machine-readable report")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "osint %s\n", version)
		},
	}

	rootCmd.AddCommand(
		subjectsCmd,
		mentionsCmd,
		repliesCmd,
		activityCmd,
		analyzeCmd,
		versionCmd,
	)

	return rootCmd
}
