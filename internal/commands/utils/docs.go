package utils

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	"github.com/spf13/viper"

	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/internal/shared"
)

// docsCmd represents the docs command
var docsCmd = &cobra.Command{
	Use:     "docs",
	Short:   "Generate markdown or man page documentation for every stairs command",
	Aliases: []string{"markdown", "md"},
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		outDir := viper.GetString("utils.docs.dir")
		if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
			shared.Exitf("Error creating directory: %s\n", err)
		}
		root := cmd.Root()
		disableTag(root)

		var err error
		switch format := viper.GetString("utils.docs.format"); format {
		case "markdown", "md":
			err = doc.GenMarkdownTree(root, outDir)
		case "man":
			err = doc.GenManTree(root, &doc.GenManHeader{
				Title:   "STAIRS",
				Section: "1",
				Source:  "Stalking Stairs Mod Manager",
			}, outDir)
		default:
			shared.Exitf("Unknown format %q, must be markdown or man\n", format)
		}
		if err != nil {
			shared.Exitf("Error generating docs: %s\n", err)
		}
		fmt.Printf("Generated docs in %s\n", outDir)
	},
}

func disableTag(cmd *cobra.Command) {
	cmd.DisableAutoGenTag = true
	for _, v := range cmd.Commands() {
		disableTag(v)
	}
}

func init() {
	utilsCmd.AddCommand(docsCmd)

	docsCmd.Flags().String("dir", ".", "The destination directory to save docs in")
	_ = viper.BindPFlag("utils.docs.dir", docsCmd.Flags().Lookup("dir"))
	docsCmd.Flags().String("format", "markdown", "Output format: markdown or man")
	_ = viper.BindPFlag("utils.docs.format", docsCmd.Flags().Lookup("format"))
}
