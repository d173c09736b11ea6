package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.3.0"

var rootCmd = &cobra.Command{
	Use:     "subimg <image>",
	Short:   "A tool to hide sub-images in the image",
	Long:    "subimg stores a sub-image in the fully transparent pixels of an image and extracts it again.",
	Example: "  subimg input.png -i subimage.png -o output.png\n  subimg output.png -O subimage.png",
	Version: version,

	SilenceErrors: true,
	SilenceUsage:  true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
