package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"pdf-rag/internal/config"
	"pdf-rag/internal/embedding"
	"pdf-rag/internal/helper"
	"pdf-rag/internal/llmservice"
	"pdf-rag/internal/parser"
	"pdf-rag/internal/rag"
	"pdf-rag/internal/tui"
)

const configFilePath = "./configs/config.yaml"

func main() {
	_ = godotenv.Load()

	var cfgPath string
	rootCmd := &cobra.Command{
		Use:   "ragchat",
		Short: "Chat with a folder of PDF files",
		Long:  "Builds an in-memory vector index from the PDF files in a folder and answers questions with a hosted language model.",
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", configFilePath, "Path to the YAML config file")

	chatCmd := createChatCommand(&cfgPath)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(createAskCommand(&cfgPath))
	rootCmd.RunE = chatCmd.RunE

	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}

func createChatCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start the interactive chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*cfgPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			// the terminal belongs to the TUI, log to a file instead
			logFile, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			defer logFile.Close()
			helper.SetupLogger(cfg.Log.Level, logFile)

			ctx := cmd.Context()
			pipeline, err := newPipeline(ctx, cfg)
			if err != nil {
				return err
			}

			_, err = tea.NewProgram(tui.New(ctx, pipeline), tea.WithAltScreen()).Run()
			return err
		},
	}
}

func createAskCommand(cfgPath *string) *cobra.Command {
	var folder, query string
	var showSources bool

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Build the index for a folder and answer one question",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*cfgPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			helper.SetupLogger(cfg.Log.Level, os.Stderr)
			log.Debug().Interface("config", cfg.RAG).Msg("Loaded config")

			ctx := cmd.Context()
			pipeline, err := newPipeline(ctx, cfg)
			if err != nil {
				return err
			}

			idx, err := pipeline.BuildIndex(ctx, folder)
			if err != nil {
				return fmt.Errorf("failed to build index: %w", err)
			}

			response, err := pipeline.Answer(ctx, idx, query)
			if err != nil {
				return fmt.Errorf("failed to answer: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", response.Content)
			if showSources {
				helper.PrettyPrint(out, response.Sources)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&folder, "folder", "f", "test/", "Folder containing the PDF files")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Question to answer")
	cmd.Flags().BoolVar(&showSources, "sources", false, "Print the retrieved passages")
	cmd.MarkFlagRequired("query")

	return cmd
}

func newPipeline(ctx context.Context, cfg *config.Config) (*rag.Pipeline, error) {
	embedder, err := embedding.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	client, err := llmservice.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to model service: %w", err)
	}

	splitter, err := parser.NewSplitter(cfg.RAG)
	if err != nil {
		return nil, err
	}

	builder := rag.NewBuilder(parser.NewLoader(), splitter, embedder, cfg.RAG.Collection)
	return rag.NewPipeline(builder, rag.NewRAG(embedder, client, cfg)), nil
}
