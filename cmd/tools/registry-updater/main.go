// cmd/tools/registry-updater/main.go
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"govsupport-chatbot/pkg/registry"
)

var (
	registryPath string
	now          = time.Now
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "registry-updater",
		Short:        "Maintain the activity registry served by the worker manager",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&registryPath, "path", "p", "configs/activity-registry.json", "path to registry file")

	root.AddCommand(newAddCmd(), newUpdateCmd(), newValidateCmd(), newListCmd())
	return root
}

func newAddCmd() *cobra.Command {
	var a registry.Activity
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a new activity to the registry",
		Example: `  registry-updater add --id search-policies --displayName "Search Policies" --description "Full-text policy search" --category policy --taskType search-policies`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.ID == "" || a.DisplayName == "" || a.Description == "" || a.Category == "" || a.TaskType == "" {
				return fmt.Errorf("id, displayName, description, category and taskType are required")
			}
			a.InputSchema = registry.FieldTypes{}
			a.OutputSchema = registry.FieldTypes{}
			a.ErrorCodes = []string{}
			a.Tags = []string{}

			reg, err := registry.LoadOrNew(registryPath)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Add(a, now()); err != nil {
				return err
			}
			if err := registry.Save(reg, registryPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added activity: %s\n", a.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&a.ID, "id", "", "activity ID (e.g. search-policies)")
	f.StringVar(&a.DisplayName, "displayName", "", "display name")
	f.StringVar(&a.Description, "description", "", "description")
	f.StringVar((*string)(&a.Category), "category", "", "category ("+joinNames(registry.Categories)+")")
	f.StringVar(&a.TaskType, "taskType", "", "Zeebe task type")
	f.StringVar(&a.Version, "version", "1.0.0", "version")
	f.StringVar((*string)(&a.ImplementationStatus), "status", string(registry.StatusPlanned), "implementation status ("+joinNames(registry.Statuses)+")")
	f.StringVar(&a.Timeout, "timeout", "10s", "job timeout")
	f.IntVar(&a.Retries, "retries", 0, "retry count")
	return cmd
}

func newUpdateCmd() *cobra.Command {
	var id, field, value string
	cmd := &cobra.Command{
		Use:     "update",
		Short:   "Update a field of an existing activity",
		Example: `  registry-updater update --id search-policies --field status --value verified`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if id == "" || field == "" || value == "" {
				return fmt.Errorf("id, field and value are required")
			}
			reg, err := registry.Load(registryPath)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Update(id, field, value, now()); err != nil {
				return err
			}
			if err := registry.Save(reg, registryPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, field %s to %s\n", id, field, value)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "activity ID to update")
	cmd.Flags().StringVar(&field, "field", "", "field to update (status, version, timeout, retries, ...)")
	cmd.Flags().StringVar(&value, "value", "", "new value")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var served []string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the registry file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.Load(registryPath)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Validate(served); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&served, "served", nil, "task types that must be documented")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered activities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.Load(registryPath)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			printActivities(cmd.OutOrStdout(), reg)
			return nil
		},
	}
}

func printActivities(out io.Writer, reg *registry.ActivityRegistry) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TASK TYPE\tCATEGORY\tSTATUS\tTIMEOUT\tRETRIES")
	for _, a := range reg.Activities {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", a.TaskType, a.Category, a.ImplementationStatus, a.Timeout, a.Retries)
	}
	w.Flush()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func joinNames[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
