package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"prdflow/pkg/models"
)

// MongoStore is the MongoDB implementation of the Store interface.
type MongoStore struct {
	client    *mongo.Client
	users     *mongo.Collection
	analyses  *mongo.Collection
	workflows *mongo.Collection
	status    *mongo.Collection
}

// NewMongoStore creates a MongoStore over an established client connection.
func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	db := client.Database(database)
	return &MongoStore{
		client:    client,
		users:     db.Collection("users"),
		analyses:  db.Collection("analyses"),
		workflows: db.Collection("workflows"),
		status:    db.Collection("status_checks"),
	}
}

// EnsureIndexes creates the unique email index and the created_at sort
// indexes the list queries rely on. Safe to call on every startup.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("repository: create users email index: %w", err)
	}
	for _, coll := range []*mongo.Collection{s.analyses, s.workflows, s.status} {
		_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		})
		if err != nil {
			return fmt.Errorf("repository: create %s created_at index: %w", coll.Name(), err)
		}
	}
	return nil
}

// Ping verifies the primary is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// CreateUser inserts a new user. Returns ErrDuplicateEmail when the email
// is already registered.
func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("repository: insert user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by email.
func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, mapFindErr(err, "find user by email")
	}
	return &user, nil
}

// GetUserByID retrieves a user by id.
func (s *MongoStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, mapFindErr(err, "find user by id")
	}
	return &user, nil
}

// InsertAnalysis stores a completed document analysis.
func (s *MongoStore) InsertAnalysis(ctx context.Context, analysis *models.DocumentAnalysis) error {
	if _, err := s.analyses.InsertOne(ctx, analysis); err != nil {
		return fmt.Errorf("repository: insert analysis: %w", err)
	}
	return nil
}

// ListAnalyses returns analyses newest first, at most limit of them.
func (s *MongoStore) ListAnalyses(ctx context.Context, userID *string, limit int64) ([]*models.DocumentAnalysis, error) {
	cur, err := s.analyses.Find(ctx, scopeFilter(userID), listOptions(limit))
	if err != nil {
		return nil, fmt.Errorf("repository: list analyses: %w", err)
	}
	analyses := make([]*models.DocumentAnalysis, 0)
	if err := cur.All(ctx, &analyses); err != nil {
		return nil, fmt.Errorf("repository: decode analyses: %w", err)
	}
	return analyses, nil
}

// GetAnalysis retrieves one analysis by id.
func (s *MongoStore) GetAnalysis(ctx context.Context, id string, userID *string) (*models.DocumentAnalysis, error) {
	filter := scopeFilter(userID)
	filter["_id"] = id
	var analysis models.DocumentAnalysis
	if err := s.analyses.FindOne(ctx, filter).Decode(&analysis); err != nil {
		return nil, mapFindErr(err, "find analysis")
	}
	return &analysis, nil
}

// InsertWorkflow stores a generated workflow.
func (s *MongoStore) InsertWorkflow(ctx context.Context, workflow *models.Workflow) error {
	if _, err := s.workflows.InsertOne(ctx, workflow); err != nil {
		return fmt.Errorf("repository: insert workflow: %w", err)
	}
	return nil
}

// ListWorkflows returns workflows newest first, at most limit of them.
func (s *MongoStore) ListWorkflows(ctx context.Context, userID *string, limit int64) ([]*models.Workflow, error) {
	cur, err := s.workflows.Find(ctx, scopeFilter(userID), listOptions(limit))
	if err != nil {
		return nil, fmt.Errorf("repository: list workflows: %w", err)
	}
	workflows := make([]*models.Workflow, 0)
	if err := cur.All(ctx, &workflows); err != nil {
		return nil, fmt.Errorf("repository: decode workflows: %w", err)
	}
	return workflows, nil
}

// GetWorkflow retrieves one workflow by id.
func (s *MongoStore) GetWorkflow(ctx context.Context, id string, userID *string) (*models.Workflow, error) {
	filter := scopeFilter(userID)
	filter["_id"] = id
	var workflow models.Workflow
	if err := s.workflows.FindOne(ctx, filter).Decode(&workflow); err != nil {
		return nil, mapFindErr(err, "find workflow")
	}
	return &workflow, nil
}

// DeleteWorkflow removes a workflow the caller owns. Returns ErrNotFound
// when the id does not exist or belongs to someone else.
func (s *MongoStore) DeleteWorkflow(ctx context.Context, id string, userID *string) error {
	filter := ownerFilter(userID)
	filter["_id"] = id
	res, err := s.workflows.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("repository: delete workflow: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertStatusCheck records a client status ping.
func (s *MongoStore) InsertStatusCheck(ctx context.Context, check *models.StatusCheck) error {
	if _, err := s.status.InsertOne(ctx, check); err != nil {
		return fmt.Errorf("repository: insert status check: %w", err)
	}
	return nil
}

// ListStatusChecks returns status checks newest first, at most limit.
func (s *MongoStore) ListStatusChecks(ctx context.Context, limit int64) ([]*models.StatusCheck, error) {
	cur, err := s.status.Find(ctx, bson.M{}, listOptions(limit))
	if err != nil {
		return nil, fmt.Errorf("repository: list status checks: %w", err)
	}
	checks := make([]*models.StatusCheck, 0)
	if err := cur.All(ctx, &checks); err != nil {
		return nil, fmt.Errorf("repository: decode status checks: %w", err)
	}
	return checks, nil
}

// scopeFilter narrows reads for authenticated callers to their own records.
// Anonymous reads are unscoped.
func scopeFilter(userID *string) bson.M {
	if userID == nil {
		return bson.M{}
	}
	return bson.M{"user_id": *userID}
}

// ownerFilter matches only records the caller owns. A nil user id owns the
// ownerless records, so anonymous callers cannot touch anyone's data.
func ownerFilter(userID *string) bson.M {
	if userID == nil {
		return bson.M{"user_id": nil}
	}
	return bson.M{"user_id": *userID}
}

func listOptions(limit int64) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return opts
}

func mapFindErr(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return fmt.Errorf("repository: %s: %w", op, err)
}
