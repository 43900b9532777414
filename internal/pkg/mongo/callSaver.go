package mongo

import (
	"context"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/persistence"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CallSaver saves the uploaded call record to mongo db
type CallSaver struct {
	SessionProvider *SessionProvider
}

// NewCallSaver creates CallSaver instance
func NewCallSaver(sessionProvider *SessionProvider) (*CallSaver, error) {
	f := CallSaver{SessionProvider: sessionProvider}
	return &f, nil
}

// Save saves call to DB
func (cs *CallSaver) Save(data *persistence.Call) error {
	cmdapp.Log.Infof("Saving call %s", data.ID)

	ctx, cancel := mongoContext()
	defer cancel()

	session, err := cs.SessionProvider.NewSession()
	if err != nil {
		return err
	}
	defer session.EndSession(context.Background())

	c := session.Client().Database(store).Collection(callTable)

	_, err = c.UpdateOne(ctx, bson.M{"ID": sanitize(data.ID)},
		bson.M{"$set": callUpdateFields(data)},
		options.Update().SetUpsert(true))
	return err
}

func callUpdateFields(data *persistence.Call) bson.M {
	return bson.M{"agentID": data.AgentID, "filePath": data.FilePath,
		"email": data.Email, "externalID": data.ExternalID,
		"callDate": data.CallDate, "status": data.Status}
}
