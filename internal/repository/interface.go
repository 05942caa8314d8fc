package repository

import (
	"context"
	"errors"

	"prdflow/pkg/models"
)

var (
	// ErrNotFound reports a lookup that matched no record, including
	// records hidden from the caller by ownership scoping.
	ErrNotFound = errors.New("repository: not found")

	// ErrDuplicateEmail reports a user insert that collided with an
	// existing account.
	ErrDuplicateEmail = errors.New("repository: email already registered")
)

// Store is the persistence boundary for users, analyses, workflows, and
// status checks.
//
// Read methods take an optional user id: authenticated callers see only
// their own records, anonymous callers see everything. DeleteWorkflow is
// stricter and only matches records the caller owns, where anonymous
// callers own the ownerless records.
type Store interface {
	// CreateUser inserts a new user. Returns ErrDuplicateEmail when the
	// email is already registered.
	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID retrieves a user by id.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// InsertAnalysis stores a completed document analysis.
	InsertAnalysis(ctx context.Context, analysis *models.DocumentAnalysis) error
	// ListAnalyses returns analyses newest first, at most limit of them.
	ListAnalyses(ctx context.Context, userID *string, limit int64) ([]*models.DocumentAnalysis, error)
	// GetAnalysis retrieves one analysis by id.
	GetAnalysis(ctx context.Context, id string, userID *string) (*models.DocumentAnalysis, error)

	// InsertWorkflow stores a generated workflow.
	InsertWorkflow(ctx context.Context, workflow *models.Workflow) error
	// ListWorkflows returns workflows newest first, at most limit of them.
	ListWorkflows(ctx context.Context, userID *string, limit int64) ([]*models.Workflow, error)
	// GetWorkflow retrieves one workflow by id.
	GetWorkflow(ctx context.Context, id string, userID *string) (*models.Workflow, error)
	// DeleteWorkflow removes a workflow the caller owns.
	DeleteWorkflow(ctx context.Context, id string, userID *string) error

	// InsertStatusCheck records a client status ping.
	InsertStatusCheck(ctx context.Context, check *models.StatusCheck) error
	// ListStatusChecks returns status checks newest first, at most limit.
	ListStatusChecks(ctx context.Context, limit int64) ([]*models.StatusCheck, error)

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
}
