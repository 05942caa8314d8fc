// Command seed provisions a demo user and one canned workflow per diagram
// type so a fresh environment has something to render immediately.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"prdflow/internal/auth"
	"prdflow/internal/config"
	"prdflow/internal/logging"
	"prdflow/internal/repository"
	"prdflow/internal/services"
	"prdflow/pkg/models"
)

const (
	demoEmail    = "demo@prdflow.dev"
	demoName     = "Demo User"
	demoPassword = "demo-password"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "prdflow-seed",
		Short:         "Seed the database with a demo user and sample workflows",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), envFile)
		},
	}
	cmd.Flags().StringVar(&envFile, "env", "", "path to .env file")
	return cmd
}

func run(ctx context.Context, envFile string) error {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.NewLogger(&logging.Config{Level: cfg.Server.LogLevel})

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	defer client.Disconnect(context.Background())
	if err := client.Ping(connectCtx, nil); err != nil {
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}

	store := repository.NewMongoStore(client, cfg.Mongo.Database)
	if err := store.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to ensure indexes: %w", err)
	}

	// 1. Ensure the demo user exists
	user, err := ensureDemoUser(ctx, store, logger)
	if err != nil {
		return err
	}

	// 2. Check for existing workflows to prevent duplicates
	existing, err := store.ListWorkflows(ctx, &user.ID, 0)
	if err != nil {
		return fmt.Errorf("failed to list existing workflows: %w", err)
	}
	existingTypes := make(map[models.WorkflowType]bool)
	for _, w := range existing {
		existingTypes[w.Type] = true
	}

	// 3. Create one canned workflow per diagram type. The documents are
	// phrased so the keyword matcher picks the richest sample graph.
	samples := []struct {
		Type     models.WorkflowType
		Document string
	}{
		{models.WorkflowTypeUserJourney, "Shopping cart and checkout journey for the e-commerce storefront."},
		{models.WorkflowTypeServiceBlueprint, "Customer support ticket lifecycle from intake to resolution."},
		{models.WorkflowTypeFeatureFlow, "Partner API integration for inbound order webhooks."},
	}

	for _, sample := range samples {
		if existingTypes[sample.Type] {
			logger.Info("skipping existing workflow", "type", sample.Type)
			continue
		}

		workflow := &models.Workflow{
			ID:              uuid.NewString(),
			Type:            sample.Type,
			Nodes:           services.FallbackWorkflow(sample.Document, sample.Type),
			DocumentContent: sample.Document,
			DocumentLength:  len(sample.Document),
			CreatedAt:       time.Now().UTC(),
			UserID:          &user.ID,
		}
		if err := store.InsertWorkflow(ctx, workflow); err != nil {
			logger.Error("failed to seed workflow", "type", sample.Type, "error", err)
			continue
		}
		logger.Info("seeded workflow", "type", sample.Type, "id", workflow.ID, "nodes", len(workflow.Nodes))
	}

	logger.Info("seeding complete", "demo_email", demoEmail)
	return nil
}

func ensureDemoUser(ctx context.Context, store repository.Store, logger logging.Logger) (*models.User, error) {
	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:             uuid.NewString(),
		Email:          demoEmail,
		Name:           demoName,
		HashedPassword: hash,
		CreatedAt:      time.Now().UTC(),
		IsActive:       true,
	}
	err = store.CreateUser(ctx, user)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		existing, err := store.GetUserByEmail(ctx, demoEmail)
		if err != nil {
			return nil, fmt.Errorf("failed to load existing demo user: %w", err)
		}
		logger.Info("found existing demo user", "id", existing.ID)
		return existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create demo user: %w", err)
	}
	logger.Info("created demo user", "id", user.ID, "email", demoEmail)
	return user, nil
}
