package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	weaviateClient "github.com/weaviate/weaviate-go-client/v4/weaviate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"medrag/src/core/assistant"
	"medrag/src/infrastructure/integrations/ollama"
	"medrag/src/storage/elastic"
	"medrag/src/storage/postgres/chatctrl"
	"medrag/src/storage/weaviate"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions interactively from the terminal",
	Long:  `The chat command starts an interactive session that answers each question using passages retrieved from the indexed corpus`,
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().IntP("top-k", "k", 0, "Number of passages to retrieve per question")
	chatCmd.Flags().StringP("mode", "m", "", "Search mode: vector, keyword or hybrid")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	host := viper.GetString("postgres.host")
	user := viper.GetString("postgres.user")
	password := viper.GetString("postgres.password")
	dbname := viper.GetString("postgres.db")
	port := viper.GetString("postgres.port")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, user, password, dbname, port)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&chatctrl.ChatMessage{}); err != nil {
		return fmt.Errorf("failed to migrate database schema: %v", err)
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

	retriever := assistant.NewRetriever(wsdk, esIndex, oc, viper.GetString("ollama.embed_model"))
	chain := assistant.NewChain(
		retriever,
		oc,
		chatctrl.NewChatService(db),
		viper.GetString("ollama.chat_model"),
		assistant.WithTopK(topK),
		assistant.WithSearchMode(mode),
	)

	fmt.Println("Health assistant ready. This tool provides general health information")
	fmt.Println("for educational purposes only and is not a substitute for professional")
	fmt.Println("medical advice. Type 'exit' or 'quit' to leave.")
	fmt.Println()

	sessionID := ""
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		answer, err := chain.Answer(ctx, sessionID, question)
		if err != nil {
			if errors.Is(err, assistant.ErrEmptyQuestion) {
				continue
			}
			fmt.Printf("Error: %v\n\n", err)
			continue
		}
		sessionID = answer.SessionID

		fmt.Printf("\nAssistant: %s\n", answer.Text)
		if len(answer.Sources) > 0 {
			fmt.Println("\nSources:")
			seen := make(map[string]bool)
			for _, src := range answer.Sources {
				if !seen[src.Source] {
					seen[src.Source] = true
					fmt.Printf("  - %s\n", src.Source)
				}
			}
		}
		fmt.Println(strings.Repeat("-", 60))
	}

	return scanner.Err()
}
