// Command releasectl is the operator CLI: it scores ideas, previews
// template schedules, exports workbooks and manages the local cache.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:           "releasectl",
		Short:         "Release planner operator CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	v.SetEnvPrefix("RELEASECTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root.PersistentFlags().String("cache", "release-cache.db", "local cache file")
	root.PersistentFlags().Bool("local", false, "use the local cache only, never the remote store")
	root.PersistentFlags().Bool("json", false, "output JSON")
	_ = v.BindPFlag("cache", root.PersistentFlags().Lookup("cache"))
	_ = v.BindPFlag("local", root.PersistentFlags().Lookup("local"))
	_ = v.BindPFlag("json", root.PersistentFlags().Lookup("json"))

	root.AddCommand(scoreCmd(v))
	root.AddCommand(templatesCmd(v))
	root.AddCommand(scheduleCmd(v))
	root.AddCommand(exportCmd(v))
	root.AddCommand(cacheCmd(v))
	return root
}
