package mongo

import (
	"context"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/persistence"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrAgentNotFound is returned when no agent profile exists for ID
var ErrAgentNotFound = errors.New("Agent not found")

// AgentProvider retrieves agent profiles from mongo db
type AgentProvider struct {
	SessionProvider *SessionProvider
}

// NewAgentProvider creates AgentProvider instance
func NewAgentProvider(sessionProvider *SessionProvider) (*AgentProvider, error) {
	f := AgentProvider{SessionProvider: sessionProvider}
	return &f, nil
}

// Get retrieves agent by ID
func (ap *AgentProvider) Get(id string) (*persistence.Agent, error) {
	cmdapp.Log.Infof("Retrieving agent %s", id)

	ctx, cancel := mongoContext()
	defer cancel()

	session, err := ap.SessionProvider.NewSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(context.Background())

	c := session.Client().Database(store).Collection(agentTable)

	var res persistence.Agent
	err = c.FindOne(ctx, bson.M{"ID": sanitize(id)}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrAgentNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "Can't get agent "+id)
	}
	return &res, nil
}
