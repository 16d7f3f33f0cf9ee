package cmd

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	weaviateClient "github.com/weaviate/weaviate-go-client/v4/weaviate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"medrag/src/core/ingest"
	"medrag/src/fsutil"
	"medrag/src/infrastructure/integrations/ollama"
	jobctrl "medrag/src/infrastructure/job"
	"medrag/src/storage/elastic"
	"medrag/src/storage/minioctrl"
	"medrag/src/storage/postgres/chatctrl"
	"medrag/src/storage/postgres/chunkctrl"
	"medrag/src/storage/postgres/documentctrl"
	"medrag/src/storage/weaviate"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [directory]",
	Short: "Index a directory of documents",
	Long:  `The ingest command splits every text document under a directory into chunks, embeds them, and writes them to the vector and keyword indexes`,
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringSlice("ext", []string{".txt", ".md"}, "File extensions to ingest")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	root := args[0]

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

	if err := db.AutoMigrate(
		&documentctrl.Document{},
		&chunkctrl.Chunk{},
		&chatctrl.ChatMessage{},
		&jobctrl.Job{},
	); err != nil {
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

	minioService, err := minioctrl.NewMinioService(
		viper.GetString("minio.endpoint"),
		viper.GetString("minio.access_key"),
		viper.GetString("minio.secret_key"),
		viper.GetBool("minio.use_ssl"),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize minio service: %v", err)
	}

	documentService, err := documentctrl.NewDocumentService(db)
	if err != nil {
		return fmt.Errorf("failed to initialize document service: %v", err)
	}

	chunkService, err := chunkctrl.NewChunkService(db)
	if err != nil {
		return fmt.Errorf("failed to initialize chunk service: %v", err)
	}

	pipeline := ingest.NewPipeline(
		documentService,
		chunkService,
		minioService,
		wsdk,
		esIndex,
		oc,
		viper.GetString("ollama.embed_model"),
		viper.GetInt("rag.chunk_tokens"),
		viper.GetInt("rag.chunk_overlap"),
	)
	if err := pipeline.EnsureTargets(ctx); err != nil {
		return fmt.Errorf("failed to prepare storage targets: %v", err)
	}

	extensions, _ := cmd.Flags().GetStringSlice("ext")
	fs := fsutil.NewLocalFileStore()
	files, err := fs.ListFiles(root, extensions...)
	if err != nil {
		return fmt.Errorf("failed to list files under %s: %v", root, err)
	}
	if len(files) == 0 {
		fmt.Printf("No matching files under %s\n", root)
		return nil
	}

	// Pre-count chunks so the progress bar tracks real work
	contents := make(map[string][]byte, len(files))
	totalChunks := 0
	for _, path := range files {
		content, err := fs.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %v", path, err)
		}
		count, err := pipeline.CountChunks(content)
		if err != nil {
			return fmt.Errorf("failed to split %s: %v", path, err)
		}
		contents[path] = content
		totalChunks += count
	}

	bar := progressbar.Default(int64(totalChunks), "indexing chunks")
	pipeline.OnChunk = func() {
		bar.Add(1)
	}

	for _, path := range files {
		document, count, err := pipeline.IngestFile(ctx, filepath.Base(path), contents[path])
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %v", path, err)
		}
		fmt.Printf("\n%s: document %d, %d chunks\n", path, document.ID, count)
	}

	fmt.Printf("\nIngested %d files, %d chunks\n", len(files), totalChunks)
	return nil
}
