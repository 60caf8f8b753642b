package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// resolveVersion prefers the linker-set values and falls back to the build
// info the Go toolchain embeds for module-mode installs (go install ...@vN).
func resolveVersion() (v, rev string) {
	v, rev = version, commit
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return v, rev
	}
	if v == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		v = bi.Main.Version
	}
	if rev == "none" {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 12 {
				rev = s.Value[:12]
			}
		}
	}
	return v, rev
}

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			v, rev := resolveVersion()
			if short {
				fmt.Println(v)
				return
			}
			fmt.Printf("loom %s (%s, built %s)\n", v, rev, date)
			fmt.Printf("%s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")

	return cmd
}
