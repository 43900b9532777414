package mongo

import (
	"context"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/persistence"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AgentSaver saves agent profiles to mongo db
type AgentSaver struct {
	SessionProvider *SessionProvider
}

// NewAgentSaver creates AgentSaver instance
func NewAgentSaver(sessionProvider *SessionProvider) (*AgentSaver, error) {
	f := AgentSaver{SessionProvider: sessionProvider}
	return &f, nil
}

// Save saves agent to DB
func (as *AgentSaver) Save(data *persistence.Agent) error {
	cmdapp.Log.Infof("Saving agent %s", data.ID)

	ctx, cancel := mongoContext()
	defer cancel()

	session, err := as.SessionProvider.NewSession()
	if err != nil {
		return err
	}
	defer session.EndSession(context.Background())

	c := session.Client().Database(store).Collection(agentTable)

	_, err = c.UpdateOne(ctx, bson.M{"ID": sanitize(data.ID)},
		bson.M{"$set": agentUpdateFields(data)},
		options.Update().SetUpsert(true))
	return err
}

func agentUpdateFields(data *persistence.Agent) bson.M {
	return bson.M{"userID": data.UserID, "name": data.Name,
		"employeeID": data.EmployeeID}
}
