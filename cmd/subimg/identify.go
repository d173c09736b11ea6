package main

import (
	"fmt"

	"github.com/pic16f877ccs/subimg/internal/ir"
	"github.com/pic16f877ccs/subimg/internal/pipeline"
	"github.com/spf13/cobra"
)

var identifyCmd = &cobra.Command{
	Use:   "identify [file]",
	Short: "Inspect an image, its free space and any stored sub-image",
	Args:  cobra.ExactArgs(1),
	RunE:  runIdentify,
}

func init() {
	identifyCmd.Flags().String("format", "rgb", "Pixel format of the stored sub-image (rgb, rgba)")
	rootCmd.AddCommand(identifyCmd)
}

func runIdentify(cmd *cobra.Command, args []string) error {
	path := args[0]
	formatStr, _ := cmd.Flags().GetString("format")
	format, err := ir.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	rep, err := pipeline.Identify(path, format)
	if err != nil {
		return err
	}

	info := rep.Info
	fmt.Printf("File:        %s\n", path)
	fmt.Printf("Format:      %s\n", info.Format)
	fmt.Printf("Dimensions:  %d x %d\n", info.Width, info.Height)
	fmt.Printf("Color model: %s\n", info.ColorModel)
	fmt.Printf("File size:   %d bytes (%.1f MB)\n", info.FileSize, float64(info.FileSize)/(1024*1024))
	if !info.HasAlpha {
		fmt.Println("Alpha:       none (cannot carry a sub-image)")
		return nil
	}
	fmt.Printf("Available:   %d pixels (%d bytes)\n", rep.Capacity.Pixels, rep.Capacity.Bytes)

	switch {
	case rep.Header == nil:
		fmt.Printf("Sub-image:   none (%v)\n", rep.HeaderErr)
	case rep.HeaderErr != nil:
		fmt.Printf("Sub-image:   %d x %d %s announced, unreadable: %v\n",
			rep.Header.Width, rep.Header.Height, format, rep.HeaderErr)
	default:
		fmt.Printf("Sub-image:   %d x %d %s, %d bytes\n", rep.Header.Width, rep.Header.Height, format, rep.Header.Len)
		fmt.Printf("  xxhash64:  %016x\n", rep.Digest)
	}
	return nil
}
