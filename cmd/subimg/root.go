package main

import (
	"fmt"

	"github.com/pic16f877ccs/subimg/internal/ir"
	"github.com/pic16f877ccs/subimg/internal/pipeline"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.Args = cobra.ExactArgs(1)
	rootCmd.RunE = runRoot

	f := rootCmd.Flags()
	f.StringP("input", "i", "", "Path to sub image file")
	f.StringP("output", "o", "", "Output path for the final image")
	f.StringP("output-subimage", "O", "", "Output path for the sub-image file")
	f.BoolP("pixels", "p", false, "Check the available pixels in the image")
	f.BoolP("fill", "f", false, "Fill the transparent area with another image")
	f.BoolP("no-alpha", "r", false, "Save the image in PNG or TIFF format without an alpha channel")
	f.BoolP("opaque", "a", false, "Make every pixel of the final image opaque")
	f.String("format", "rgb", "Pixel format of the stored sub-image (rgb, rgba)")
	rootCmd.MarkFlagsMutuallyExclusive("output-subimage", "output")
	rootCmd.MarkFlagsMutuallyExclusive("output-subimage", "input")
}

func runRoot(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	subOutputPath, _ := cmd.Flags().GetString("output-subimage")
	pixels, _ := cmd.Flags().GetBool("pixels")
	fill, _ := cmd.Flags().GetBool("fill")
	noAlpha, _ := cmd.Flags().GetBool("no-alpha")
	opaque, _ := cmd.Flags().GetBool("opaque")
	formatStr, _ := cmd.Flags().GetString("format")

	format, err := ir.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		CarrierPath:        args[0],
		SubImagePath:       inputPath,
		OutputPath:         outputPath,
		SubImageOutputPath: subOutputPath,
		Format:             format,
		Fill:               fill,
		ReportCapacity:     pixels,
		DropAlpha:          noAlpha,
		ForceOpaque:        opaque,
	}

	result, err := pipeline.Run(opts)
	if err != nil {
		return err
	}

	if result.Capacity != nil {
		fmt.Printf("%d pixels available in the image\n", result.Capacity.Pixels)
	}
	if result.Embedded != nil && !fill {
		fmt.Printf("Embedded %dx%d %s sub-image (%d bytes)\n",
			result.Embedded.Width, result.Embedded.Height, format, result.Embedded.Len)
	}
	if result.Extracted != nil {
		fmt.Printf("Extracted %dx%d %s sub-image → %s (xxhash %016x)\n",
			result.Extracted.Width, result.Extracted.Height, format, subOutputPath, result.Digest)
	}
	if outputPath != "" {
		fmt.Printf("Output: %s (%dx%d)\n", outputPath, result.Width, result.Height)
	}
	return nil
}
