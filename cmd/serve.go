package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/pkg/amqp"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	weaviateClient "github.com/weaviate/weaviate-go-client/v4/weaviate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	handlers "medrag/handler/http"
	"medrag/src/core/assistant"
	"medrag/src/core/ingest"
	"medrag/src/infrastructure/integrations/ollama"
	jobctrl "medrag/src/infrastructure/job"
	"medrag/src/infrastructure/log"
	"medrag/src/storage/elastic"
	"medrag/src/storage/minioctrl"
	"medrag/src/storage/postgres/chatctrl"
	"medrag/src/storage/postgres/chunkctrl"
	"medrag/src/storage/postgres/documentctrl"
	"medrag/src/storage/weaviate"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the question answering HTTP server",
	Long:  `The serve command starts an HTTP server exposing the chat, search, and document APIs plus the built-in web chat page`,
	Run:   RunServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	// Initialize PostgreSQL connection
	host := viper.GetString("postgres.host")
	user := viper.GetString("postgres.user")
	password := viper.GetString("postgres.password")
	dbname := viper.GetString("postgres.db")
	port := viper.GetString("postgres.port")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, user, password, dbname, port)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Error(err, "Failed to connect to database")
		return
	}

	if err := db.AutoMigrate(
		&documentctrl.Document{},
		&chunkctrl.Chunk{},
		&chatctrl.ChatMessage{},
		&jobctrl.Job{},
	); err != nil {
		log.Error(err, "Failed to migrate database schema")
		return
	}

	// Initialize Ollama client
	oc := ollama.NewClient(viper.GetString("ollama.url"), &http.Client{
		Timeout: 5 * time.Minute,
	})

	// Initialize Weaviate client
	wc := weaviateClient.New(weaviateClient.Config{
		Host:   viper.GetString("weaviate.url"),
		Scheme: "http",
	})
	wsdk := weaviate.NewSDK(wc)

	// Initialize Elasticsearch index
	esIndex, err := elastic.NewIndex([]string{viper.GetString("elastic.url")}, viper.GetString("elastic.index"))
	if err != nil {
		log.Error(err, "Failed to create elasticsearch index client")
		return
	}

	// Initialize MinioService
	minioService, err := minioctrl.NewMinioService(
		viper.GetString("minio.endpoint"),
		viper.GetString("minio.access_key"),
		viper.GetString("minio.secret_key"),
		viper.GetBool("minio.use_ssl"),
	)
	if err != nil {
		log.Error(err, "Failed to initialize minio service")
		return
	}

	documentService, err := documentctrl.NewDocumentService(db)
	if err != nil {
		log.Error(err, "Failed to initialize document service")
		return
	}

	chunkService, err := chunkctrl.NewChunkService(db)
	if err != nil {
		log.Error(err, "Failed to initialize chunk service")
		return
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
		log.Error(err, "Failed to prepare storage targets")
		return
	}

	// Initialize AMQP publisher so uploads can enqueue ingestion jobs
	wmLogger := watermill.NewStdLogger(false, false)
	amqpPublisher, err := amqp.NewPublisher(
		amqp.NewDurableQueueConfig(viper.GetString("amqp.url")),
		wmLogger,
	)
	if err != nil {
		log.Error(err, "Failed to create amqp publisher")
		return
	}
	defer amqpPublisher.Close()

	jobRepo := jobctrl.NewPostgresJobRepository(db)
	ingestTask := jobctrl.NewIngestTask(documentService, minioService, pipeline)
	jobService := jobctrl.NewJobService(amqpPublisher, jobRepo, wmLogger, ingestTask)

	mode, err := assistant.ParseSearchMode(viper.GetString("rag.search_mode"))
	if err != nil {
		log.Error(err, "Invalid search mode", "mode", viper.GetString("rag.search_mode"))
		return
	}

	retriever := assistant.NewRetriever(wsdk, esIndex, oc, viper.GetString("ollama.embed_model"))
	chain := assistant.NewChain(
		retriever,
		oc,
		chatctrl.NewChatService(db),
		viper.GetString("ollama.chat_model"),
		assistant.WithTopK(viper.GetInt("rag.top_k")),
		assistant.WithSearchMode(mode),
	)

	sqlDB, err := db.DB()
	if err != nil {
		log.Error(err, "Failed to get underlying *sql.DB")
		return
	}
	sysService := assistant.NewSystemService(sqlDB, wsdk, esIndex, oc)

	handler := handlers.NewHandler(chain, sysService, documentService, minioService, jobService, pipeline)

	// Setup gin router
	r := gin.Default()
	handler.RegisterRoutes(r)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + viper.GetString("server.port"),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "Failed to start server")
			return
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Parse shutdown timeout
	timeout, err := time.ParseDuration(viper.GetString("server.shutdown_timeout"))
	if err != nil {
		log.Error(err, "Invalid shutdown timeout, using default 5s")
		timeout = 5 * time.Second
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := sqlDB.Close(); err != nil {
		log.Error(err, "Error closing database connection")
	}

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "Server forced to shutdown")
	}

	log.Info("Server exited")
}
