package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	weaviateClient "github.com/weaviate/weaviate-go-client/v4/weaviate"

	"medrag/src/core/assistant"
	"medrag/src/infrastructure/integrations/ollama"
	"medrag/src/storage/elastic"
	"medrag/src/storage/weaviate"
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Measure retrieval recall against a golden query set",
	Long: `The evaluate command runs each query from a JSON Lines file against the
index and reports how often the expected source document appears in the
top k retrieved passages.

Each input line must be an object of the form:

  {"query": "what are the symptoms of anemia", "source": "anemia.txt"}`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringP("input", "i", "", "Golden query JSONL file path")
	evaluateCmd.MarkFlagRequired("input")
	evaluateCmd.Flags().IntP("top-k", "k", 0, "Number of passages to retrieve per query")
	evaluateCmd.Flags().StringP("mode", "m", "", "Search mode: vector, keyword or hybrid")
}

type goldenQuery struct {
	Query  string `json:"query"`
	Source string `json:"source"`
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	inputPath, _ := cmd.Flags().GetString("input")
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %v", err)
	}
	defer file.Close()

	modeFlag, _ := cmd.Flags().GetString("mode")
	if modeFlag == "" {
		modeFlag = viper.GetString("rag.search_mode")
	}
	mode, err := assistant.ParseSearchMode(modeFlag)
	if err != nil {
		return fmt.Errorf("invalid search mode %q", modeFlag)
	}

	topK, _ := cmd.Flags().GetInt("top-k")
	if topK <= 0 {
		topK = viper.GetInt("rag.top_k")
	}

	oc := ollama.NewClient(viper.GetString("ollama.url"), &http.Client{
		Timeout: 5 * time.Minute,
	})

	wc := weaviateClient.New(weaviateClient.Config{
		Host:   viper.GetString("weaviate.url"),
		Scheme: "http",
	})
	wsdk := weaviate.NewSDK(wc)

	esIndex, err := elastic.NewIndex([]string{viper.GetString("elastic.url")}, viper.GetString("elastic.index"))
	if err != nil {
		return fmt.Errorf("failed to create elasticsearch index client: %v", err)
	}

	retriever := assistant.NewRetriever(wsdk, esIndex, oc, viper.GetString("ollama.embed_model"))

	indexed, err := wsdk.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count indexed passages: %v", err)
	}
	fmt.Printf("Indexed passages: %d\n", indexed)

	total := 0
	hits := 0
	var misses []goldenQuery

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var golden goldenQuery
		if err := json.Unmarshal(line, &golden); err != nil {
			return fmt.Errorf("failed to parse golden query line: %v", err)
		}

		passages, err := retriever.Retrieve(ctx, golden.Query, mode, topK)
		if err != nil {
			return fmt.Errorf("failed to retrieve for query %q: %v", golden.Query, err)
		}

		total++
		found := false
		for _, p := range passages {
			if p.Source == golden.Source {
				found = true
				break
			}
		}
		if found {
			hits++
		} else {
			misses = append(misses, golden)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input file: %v", err)
	}

	if total == 0 {
		fmt.Println("No queries in input file")
		return nil
	}

	fmt.Printf("Recall@%d (%s): %.2f%% (%d/%d)\n", topK, mode, float64(hits)/float64(total)*100, hits, total)
	for _, miss := range misses {
		fmt.Printf("  miss: %q expected %s\n", miss.Query, miss.Source)
	}

	return nil
}
