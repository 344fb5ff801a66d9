package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"qms-console/internal/api"
	"qms-console/internal/resource"
)

// newResourceCommand builds the command family for one resource descriptor:
// list (default), create and delete. All screens share the same list
// machinery; only the field schema differs.
func newResourceCommand(opts *RootOptions, descriptor resource.Descriptor) *cobra.Command {
	cmd := &cobra.Command{
		Use:   descriptor.Key,
		Short: "Manage " + strings.ToLower(descriptor.Title),
	}

	cmd.AddCommand(newResourceListCommand(opts, descriptor))
	cmd.AddCommand(newResourceCreateCommand(opts, descriptor))
	cmd.AddCommand(newResourceDeleteCommand(opts, descriptor))
	return cmd
}

func newResourceListCommand(opts *RootOptions, descriptor resource.Descriptor) *cobra.Command {
	var (
		query   string
		page    int
		filters []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + strings.ToLower(descriptor.Title),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, err := opts.Runtime()
			if err != nil {
				return err
			}
			if err := runtime.Session.EnsureProfile(cmd.Context()); err != nil {
				return errors.New(api.UserMessage(err, "could not load profile"))
			}

			list := resource.NewList(runtime.Client, descriptor, runtime.Config.PageSize)
			if err := list.Load(cmd.Context()); err != nil {
				return errors.New(api.UserMessage(err, "could not load "+descriptor.Key))
			}

			list.SetQuery(query)
			for _, pair := range filters {
				key, value, ok := strings.Cut(pair, "=")
				if !ok {
					return fmt.Errorf("invalid filter %q: expected key=value", pair)
				}
				list.SetFilter(key, value)
			}
			list.SetPage(page)

			rows, current, totalPages := list.Rows()
			formatter := &Formatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			if formatter.IsJSON() {
				return formatter.JSON(map[string]any{
					"rows":       rows,
					"page":       current,
					"totalPages": totalPages,
					"total":      list.Total(),
				})
			}

			headers := []string{"id"}
			for _, field := range descriptor.Fields {
				headers = append(headers, field.Label)
			}
			tableRows := make([][]string, 0, len(rows))
			for _, row := range rows {
				cells := []string{list.Value(row, resource.Field{Key: "id"})}
				for _, field := range descriptor.Fields {
					cells = append(cells, list.Value(row, field))
				}
				tableRows = append(tableRows, cells)
			}
			formatter.Table(headers, tableRows)
			formatter.Line("page %d/%d (%d records)", current, totalPages, list.Total())
			return nil
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "substring filter over all fields")
	cmd.Flags().IntVar(&page, "page", 1, "page number (clamped to the valid range)")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "exact field filter, key=value (repeatable)")
	return cmd
}

func newResourceCreateCommand(opts *RootOptions, descriptor resource.Descriptor) *cobra.Command {
	var values []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create one record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, err := opts.Runtime()
			if err != nil {
				return err
			}
			if err := runtime.Session.EnsureProfile(cmd.Context()); err != nil {
				return errors.New(api.UserMessage(err, "could not load profile"))
			}

			row := resource.Row{}
			for _, pair := range values {
				key, value, ok := strings.Cut(pair, "=")
				if !ok {
					return fmt.Errorf("invalid value %q: expected key=value", pair)
				}
				row[key] = value
			}

			var missing []string
			for _, field := range descriptor.Fields {
				if field.Required {
					if _, ok := row[field.Key]; !ok {
						missing = append(missing, field.Key)
					}
				}
			}
			if len(missing) > 0 {
				return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
			}

			list := resource.NewList(runtime.Client, descriptor, runtime.Config.PageSize)
			created, err := list.Create(cmd.Context(), row)
			if err != nil {
				return errors.New(api.UserMessage(err, "could not create record"))
			}

			formatter := &Formatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			if formatter.IsJSON() {
				return formatter.JSON(created)
			}
			formatter.Line("created %s", list.Value(created, resource.Field{Key: "id"}))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&values, "set", nil, "field value, key=value (repeatable)")
	return cmd
}

func newResourceDeleteCommand(opts *RootOptions, descriptor resource.Descriptor) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, err := opts.Runtime()
			if err != nil {
				return err
			}
			if err := runtime.Session.EnsureProfile(cmd.Context()); err != nil {
				return errors.New(api.UserMessage(err, "could not load profile"))
			}

			list := resource.NewList(runtime.Client, descriptor, runtime.Config.PageSize)
			if err := list.Delete(cmd.Context(), args[0]); err != nil {
				return errors.New(api.UserMessage(err, "could not delete record"))
			}

			formatter := &Formatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			if formatter.IsJSON() {
				return formatter.JSON(map[string]string{"status": "deleted", "id": args[0]})
			}
			formatter.Line("deleted %s", args[0])
			return nil
		},
	}
}
