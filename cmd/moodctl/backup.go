package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AnshRaj112/serenify-mood/internal/models"
	"github.com/AnshRaj112/serenify-mood/internal/services"
)

func newExportCmd(open storeOpener, opts *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a user's moods and emotions as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRecords(open, opts, func(records *services.RecordStore, sess models.Session) error {
				doc := records.ExportData(cmd.Context(), sess)
				b, err := json.MarshalIndent(doc, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal export json: %w", err)
				}
				if strings.TrimSpace(out) == "" || out == "-" {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
					return err
				}
				if err := os.WriteFile(out, b, 0o600); err != nil {
					return fmt.Errorf("write export file: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d moods and %d emotions to %s\n", len(doc.Moods), len(doc.Emotions), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output file (default stdout)")
	return cmd
}

func newImportCmd(open storeOpener, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace a user's records with an exported backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			defer f.Close()
			doc, err := services.ParseExportDocument(f)
			if err != nil {
				return err
			}
			return withRecords(open, opts, func(records *services.RecordStore, sess models.Session) error {
				n, err := records.ImportData(cmd.Context(), sess, doc)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records for %s\n", n, sess.Owner())
				return nil
			})
		},
	}
}

func newClearCmd(open storeOpener, opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all of a user's moods and emotions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear data without --yes")
			}
			return withRecords(open, opts, func(records *services.RecordStore, sess models.Session) error {
				if err := records.ClearAllData(cmd.Context(), sess); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared data for %s\n", sess.Owner())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}

func newStatsCmd(open storeOpener, opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print mood statistics for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRecords(open, opts, func(records *services.RecordStore, sess models.Session) error {
				stats := services.ComputeStats(records.GetMoods(cmd.Context(), sess, limit))
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "Entries: %d\n", stats.Total)
				fmt.Fprintf(w, "Average intensity: %.1f\n", stats.AvgIntensity)
				for _, mc := range stats.Distribution {
					if mc.Count > 0 {
						fmt.Fprintf(w, "  %-8s %d\n", mc.Mood, mc.Count)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", services.DefaultMoodLimit, "Number of most recent entries to include")
	return cmd
}
