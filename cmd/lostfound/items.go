package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/erazemk/lostfound/internal/client"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/view"
)

func newItemsCmd(serverURL *string) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "items",
		Short: "List items on the board, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := newSession(*serverURL)
			if err := s.Refresh(cmd.Context()); err != nil {
				return err
			}

			items := s.View.Items()
			if status != "" {
				if !model.ValidStatus(status) {
					return fmt.Errorf("unknown status %q", status)
				}
				s.View.SetFilter(status)
				items = s.View.Visible()
			}
			return printItems(cmd.OutOrStdout(), items)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only show lost or found items")
	return cmd
}

func newSubmitCmd(serverURL *string) *cobra.Command {
	var sub client.Submission
	var imagePath string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Post a lost or found item with a photo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(imagePath)
			if err != nil {
				return fmt.Errorf("opening photo: %w", err)
			}
			defer f.Close()

			sub.Image = f
			sub.Filename = filepath.Base(imagePath)

			s := newSession(*serverURL)
			if err := s.Submit(cmd.Context(), sub); err != nil {
				return err
			}
			return printItems(cmd.OutOrStdout(), s.View.Items()[:1])
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&sub.Title, "title", "", "short name of the item")
	flags.StringVar(&sub.Description, "description", "", "what it looks like")
	flags.StringVar(&sub.Status, "status", model.StatusLost, "lost or found")
	flags.StringVar(&sub.Location, "location", "", "where it was lost or found")
	flags.StringVar(&sub.SecretDetail, "secret", "", "a detail only the owner knows")
	flags.StringVar(&imagePath, "image", "", "path to a JPEG or PNG photo")
	for _, name := range []string{"title", "description", "location", "secret", "image"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newFoundCmd(serverURL *string) *cobra.Command {
	var report client.FoundReport
	var imagePath string

	cmd := &cobra.Command{
		Use:   "found",
		Short: "Tell the owner of a lost item that you found it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(imagePath)
			if err != nil {
				return fmt.Errorf("opening photo: %w", err)
			}
			defer f.Close()

			report.Image = f
			report.Filename = filepath.Base(imagePath)

			msg, err := client.New(*serverURL, nil).ReportFound(cmd.Context(), report)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().Int64Var(&report.ItemID, "item", 0, "id of the lost item")
	cmd.Flags().StringVar(&report.Phone, "phone", "", "your phone number")
	cmd.Flags().StringVar(&imagePath, "image", "", "path to a JPEG or PNG photo of the item")
	for _, name := range []string{"item", "phone", "image"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newVerifyCmd(serverURL *string) *cobra.Command {
	var (
		itemID int64
		secret string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a claimed secret detail against an item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ok, err := client.New(*serverURL, nil).VerifySecret(cmd.Context(), itemID, secret)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("secret detail does not match item %d", itemID)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "secret detail matches item %d\n", itemID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&itemID, "item", 0, "item id")
	cmd.Flags().StringVar(&secret, "secret", "", "claimed secret detail")
	_ = cmd.MarkFlagRequired("item")
	_ = cmd.MarkFlagRequired("secret")
	return cmd
}

func newSession(serverURL string) *client.Session {
	return client.NewSession(client.New(serverURL, nil), view.New(slog.Default()))
}

func printItems(w io.Writer, items []model.Item) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTITLE\tLOCATION\tCREATED\tIMAGE")
	for _, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			it.ID, it.Status, it.Title, it.Location, it.CreatedAt.Format("2006-01-02 15:04"), it.ImageURL)
	}
	return tw.Flush()
}
