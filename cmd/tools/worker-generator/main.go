// cmd/tools/worker-generator/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"govsupport-chatbot/pkg/registry"
)

func newRootCmd() *cobra.Command {
	var (
		registryPath string
		outputDir    string
		force        bool
	)

	cmd := &cobra.Command{
		Use:          "worker-generator <activity-id>",
		Short:        "Scaffold a Zeebe worker package from its activity registry entry",
		Example:      "  worker-generator search-policies --output ./internal/workers",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.Load(registryPath)
			if err != nil {
				return fmt.Errorf("load registry %s: %w", registryPath, err)
			}

			var activity *registry.Activity
			for i := range reg.Activities {
				if reg.Activities[i].ID == args[0] {
					activity = &reg.Activities[i]
					break
				}
			}
			if activity == nil {
				return fmt.Errorf("activity %q not found in %s", args[0], registryPath)
			}

			files, err := Generate(*activity, outputDir, force)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, f := range files {
				fmt.Fprintf(out, "generated %s\n", f)
			}
			fmt.Fprintln(out, "\nNext: implement execute in handler.go and register the worker in cmd/worker-manager/main.go")
			return nil
		},
	}

	cmd.Flags().StringVar(&registryPath, "registry", "configs/activity-registry.json", "path to the activity registry")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "./internal/workers", "workers root directory")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
