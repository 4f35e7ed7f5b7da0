package neoupload

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// DBRunner defines the interface for a generic query executor.
// It abstracts the execution of a Cypher query, allowing for different
// implementations or mocking in tests.
type DBRunner interface {
	// Run executes a given Cypher query with parameters and returns the
	// fully-buffered result records.
	Run(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error)
}

// URI builds the connection URI for a Neo4j instance. Encryption is on
// by default; disabling it falls back to the plain bolt routing scheme.
func URI(host string, port int, encrypted bool) string {
	scheme := "neo4j+s"
	if !encrypted {
		scheme = "neo4j"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, host, port)
}

// Neo4jExecutor is a concrete implementation of the DBRunner interface
// that uses the official Neo4j Go driver. One executor owns one driver
// and, after Connect, exactly one session that serves every statement
// of a run.
type Neo4jExecutor struct {
	Driver neo4j.DriverWithContext
	DBName string

	session neo4j.SessionWithContext
}

// NewNeo4jExecutor creates and initializes a new Neo4jExecutor.
// It establishes a connection driver with the provided credentials; no
// network traffic happens until Connect.
//
// Parameters:
//   - uri: The connection URI for the Neo4j instance (e.g., "neo4j://localhost:7687").
//   - username: The username for authentication.
//   - password: The password for authentication.
//   - dbName: The name of the database to connect to (e.g., "neo4j").
//
// Returns:
//
//	A pointer to the newly created Neo4jExecutor or an error if the driver creation fails.
func NewNeo4jExecutor(uri, username, password, dbName string) (*Neo4jExecutor, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("could not create Neo4j driver: %w", err)
	}
	return &Neo4jExecutor{Driver: driver, DBName: dbName}, nil
}

// Connect verifies connectivity to the database and opens the session
// used for the rest of the run. A connection or authentication failure
// surfaces as a *DatabaseError.
func (e *Neo4jExecutor) Connect(ctx context.Context) error {
	if err := e.Driver.VerifyConnectivity(ctx); err != nil {
		return &DatabaseError{Op: "connect", Err: err}
	}
	e.session = e.Driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: e.DBName})
	return nil
}

// Run executes a Cypher query on the open session and buffers all
// result records before returning.
//
// Parameters:
//   - ctx: The context for the query execution.
//   - query: The Cypher query string to execute.
//   - params: A map of parameters to be used in the query.
//
// Returns:
//
//	All records produced by the query, or a *DatabaseError if the
//	execution fails.
func (e *Neo4jExecutor) Run(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	if e.session == nil {
		return nil, &DatabaseError{Op: "run", Err: fmt.Errorf("executor is not connected")}
	}

	result, err := e.session.Run(ctx, query, params)
	if err != nil {
		return nil, &DatabaseError{Op: "run", Err: err}
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, &DatabaseError{Op: "run", Err: err}
	}
	return records, nil
}

// Close releases the session, if one was opened, and then the driver.
// It is safe to call on every exit path, including after a failed
// Connect.
func (e *Neo4jExecutor) Close(ctx context.Context) error {
	if e.session != nil {
		if err := e.session.Close(ctx); err != nil {
			_ = e.Driver.Close(ctx)
			return fmt.Errorf("could not close session: %w", err)
		}
		e.session = nil
	}
	if err := e.Driver.Close(ctx); err != nil {
		return fmt.Errorf("could not close driver: %w", err)
	}
	return nil
}
