package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pders01/shelf/internal/catalog"
	"github.com/pders01/shelf/internal/debuglog"
	"github.com/pders01/shelf/internal/media"
	"github.com/pders01/shelf/internal/session"
	"github.com/pders01/shelf/internal/storage"
	"github.com/pders01/shelf/internal/validation"
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var (
		interests []string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "search [terms...]",
		Short: "Search the catalog once and print the results",
		Long:  "Search the catalog with free text and interest tags. Without terms or interests the popular books are listed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(opts)
			if err != nil {
				return err
			}
			defer debuglog.Close()

			client, err := catalog.NewClient(cfg)
			if err != nil {
				return err
			}

			var criteria session.Criteria
			criteria.SetText(validation.SanitizeQuery(strings.Join(args, " ")))
			for _, in := range interests {
				criteria.ToggleInterest(in)
			}

			query := criteria.Query()
			debuglog.WithFields(map[string]interface{}{"query": query, "format": format}).Infof("one-shot search")

			books, err := client.Search(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("searching %q: %w", query, err)
			}
			return printBooks(cmd.OutOrStdout(), books, format, cfg.Catalog.WorksURL)
		},
	}

	cmd.Flags().StringArrayVarP(&interests, "interest", "i", nil, "Interest tag to add to the query (repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json or yaml")

	return cmd
}

func printBooks(w io.Writer, books []catalog.BookSummary, format, worksURL string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(books)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(books); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		if len(books) == 0 {
			fmt.Fprintln(w, "No books found.")
			return nil
		}
		for i, b := range books {
			fmt.Fprintf(w, "%d. %s by %s (%s)  %.1f/5\n", i+1, b.Title, b.Author, b.Year, b.Rating)
			if len(b.Genres) > 0 {
				fmt.Fprintf(w, "   %s\n", strings.Join(b.Genres, ", "))
			}
			fmt.Fprintf(w, "   %s\n", media.BookURL(worksURL, b.ID))
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func newFavoritesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Work with persisted favorites",
	}

	var (
		output string
		format string
	)
	export := &cobra.Command{
		Use:   "export",
		Short: "Export persisted favorites to YAML or JSON",
		Long:  "Export the favorites kept in the favorites store. Requires favorites.persist to be enabled.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup(opts)
			if err != nil {
				return err
			}
			defer debuglog.Close()

			if !cfg.Favorites.Persist {
				return fmt.Errorf("favorites are not persisted; set favorites.persist = true")
			}

			store, err := storage.NewStore(cfg.Favorites.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			books, err := store.ListFavorites()
			if err != nil {
				return err
			}
			favorites := session.NewFavorites()
			for _, b := range books {
				favorites.Add(b)
			}

			if format == "" {
				format = cfg.Favorites.ExportFormat
			}
			if output == "-" {
				return favorites.Export(cmd.OutOrStdout(), format)
			}
			if output == "" {
				output = cfg.Favorites.ExportPath
			}
			if err := favorites.ExportFile(output, format); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d favorites to %s\n", favorites.Len(), output)
			return nil
		},
	}
	export.Flags().StringVarP(&output, "output", "o", "", "Output path, - for stdout (default favorites.export_path)")
	export.Flags().StringVarP(&format, "format", "f", "", "yaml or json (default favorites.export_format)")

	cmd.AddCommand(export)
	return cmd
}
