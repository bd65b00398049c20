package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/BerylCAtieno/docvault-api/internal/models"
	"github.com/BerylCAtieno/docvault-api/internal/repository"
	"github.com/BerylCAtieno/docvault-api/internal/services"
	"github.com/BerylCAtieno/docvault-api/internal/utils"
)

func (a *app) documentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "Inspect stored documents",
	}

	var (
		owner  string
		filter models.DocumentFilter
	)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List documents of one owner, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if owner == "" {
				return errors.New("--owner is required")
			}

			database, err := a.open()
			if err != nil {
				return err
			}
			defer database.Close()

			// Listing never touches blobs or the upload pipeline.
			svc := services.NewDocumentService(
				repository.NewRepository(database),
				repository.NewCategoryRepository(database),
				nil, nil, 0, utils.NopLogger(),
			)

			docs, err := svc.List(cmd.Context(), owner, filter)
			if err != nil {
				return err
			}

			if a.asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(models.ListResponse{Documents: docs, Count: len(docs)})
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tVENDOR\tAMOUNT\tCATEGORY\tREVIEW")
			for _, d := range docs {
				review := ""
				if d.ExtractionFailed {
					review = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", d.ID, orDash(d.Date), d.Vendor, orDash(d.Amount), d.Category, review)
			}
			return tw.Flush()
		},
	}

	listCmd.Flags().StringVar(&owner, "owner", "", "Owner (user) id")
	listCmd.Flags().StringVar(&filter.Query, "q", "", "Vendor or amount substring")
	listCmd.Flags().StringVar(&filter.Type, "type", "", "Document type")
	listCmd.Flags().StringVar(&filter.From, "from", "", "Earliest document date (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&filter.To, "to", "", "Latest document date (YYYY-MM-DD)")
	listCmd.Flags().IntVarP(&filter.Limit, "limit", "n", repository.DefaultListLimit, "Maximum results")

	cmd.AddCommand(listCmd)
	return cmd
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
