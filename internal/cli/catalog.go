package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/iliyamo/oxbridge-lms/internal/catalog"
	"github.com/iliyamo/oxbridge-lms/internal/model"
)

// NewCatalogCommand prints the course catalog, validating a custom file on
// the way.
func NewCatalogCommand(root *RootOptions) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the course catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = os.Getenv("CATALOG_PATH")
			}
			c, err := catalog.Load(path)
			if err != nil {
				return WrapExitError(ExitCommandError, "load catalog", err)
			}
			return writeCatalog(cmd.OutOrStdout(), root.Format, c.Courses())
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "", "catalog YAML file (defaults to CATALOG_PATH, then the built-in catalog)")
	return cmd
}

func writeCatalog(w io.Writer, format string, courses []model.Course) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"courses": courses})
	}
	for _, c := range courses {
		fmt.Fprintln(w, c.Title)
		if len(c.Documents) == 0 {
			fmt.Fprintln(w, "  (coming soon)")
		}
		for i, d := range c.Documents {
			path := d.Path
			if !d.Resolvable() {
				path = "coming soon"
			}
			fmt.Fprintf(w, "  [%d] %s (%s) %s\n", i, d.Name, d.Category, path)
		}
	}
	return nil
}
