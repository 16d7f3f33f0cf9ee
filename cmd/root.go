package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "medrag",
	Short: "Retrieval augmented question answering over a medical document corpus",
	Long: `medrag indexes health documents into vector and keyword indexes and
answers questions by retrieving the most relevant passages and feeding
them to a local language model.

Run "medrag serve" for the HTTP API and web chat page, "medrag chat"
for an interactive terminal session, "medrag ingest" to index a
directory of documents, and "medrag worker" for the background
ingestion worker.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	settingDefaultConfig()
}
