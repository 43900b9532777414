package mongo

import (
	"context"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/persistence"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrCallNotFound is returned when no call exists for ID
var ErrCallNotFound = errors.New("Call not found")

// CallProvider retrieves call records from mongo db
type CallProvider struct {
	SessionProvider *SessionProvider
}

// NewCallProvider creates CallProvider instance
func NewCallProvider(sessionProvider *SessionProvider) (*CallProvider, error) {
	f := CallProvider{SessionProvider: sessionProvider}
	return &f, nil
}

// Get retrieves call by ID
func (cp *CallProvider) Get(id string) (*persistence.Call, error) {
	cmdapp.Log.Infof("Retrieving call %s", id)

	ctx, cancel := mongoContext()
	defer cancel()

	session, err := cp.SessionProvider.NewSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(context.Background())

	c := session.Client().Database(store).Collection(callTable)

	var res persistence.Call
	err = c.FindOne(ctx, bson.M{"ID": sanitize(id)}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrCallNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "Can't get call "+id)
	}
	return &res, nil
}
