package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AnshRaj112/serenify-mood/internal/database"
	"github.com/AnshRaj112/serenify-mood/internal/models"
	"github.com/AnshRaj112/serenify-mood/internal/services"
)

type storeOpener func(backend string) (database.Store, func() error, error)

type rootOptions struct {
	backend string
	userID  string
	special bool
}

func newRootCmd(open storeOpener) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "moodctl",
		Short:         "moodctl backs up and restores mood tracker data",
		Long:          "moodctl exports, imports and clears one user's moods and emotions straight from the key-value store, bypassing the HTTP API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.backend, "backend", "", "Store backend: redis, postgres, mongo or memory (default from STORE_BACKEND)")
	root.PersistentFlags().StringVar(&opts.userID, "user", "", "User id whose records are read or written")
	root.PersistentFlags().BoolVar(&opts.special, "special", false, "Treat the user as the demo account (sample data overlay)")

	root.AddCommand(
		newExportCmd(open, opts),
		newImportCmd(open, opts),
		newClearCmd(open, opts),
		newStatsCmd(open, opts),
	)
	return root
}

func (o *rootOptions) session() (models.Session, error) {
	id := strings.TrimSpace(o.userID)
	if id == "" {
		return models.Session{}, fmt.Errorf("--user is required")
	}
	return models.Session{UserID: id, SpecialAccess: o.special || id == services.SpecialUserID}, nil
}

// withRecords opens the store, runs fn and closes the store again.
func withRecords(open storeOpener, opts *rootOptions, fn func(*services.RecordStore, models.Session) error) error {
	sess, err := opts.session()
	if err != nil {
		return err
	}
	store, closeStore, err := open(opts.backend)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(services.NewRecordStore(store), sess)
}
