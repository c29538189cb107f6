package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/nerdneilsfield/go-selection-translator/internal/cli"
)

// Version information
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	rootCmd := cli.NewRootCommand(Version, Commit, BuildDate)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("错误: %v", err))
		os.Exit(1)
	}
}
