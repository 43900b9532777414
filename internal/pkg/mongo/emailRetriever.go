package mongo

import (
	"context"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// EmailRetriever returns uploader email by call ID
type EmailRetriever struct {
	SessionProvider *SessionProvider
}

// NewEmailRetriever creates EmailRetriever instance
func NewEmailRetriever(sessionProvider *SessionProvider) (*EmailRetriever, error) {
	f := EmailRetriever{SessionProvider: sessionProvider}
	return &f, nil
}

// Get returns email by ID
func (ss *EmailRetriever) Get(id string) (string, error) {
	cmdapp.Log.Infof("Getting email by ID %s", id)

	ctx, cancel := mongoContext()
	defer cancel()

	session, err := ss.SessionProvider.NewSession()
	if err != nil {
		return "", err
	}
	defer session.EndSession(context.Background())

	c := session.Client().Database(store).Collection(callTable)
	var m bson.M
	err = c.FindOne(ctx, bson.M{"ID": sanitize(id)}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		cmdapp.Log.Infof("ID not found %s", id)
		return "", nil
	}
	if err != nil {
		return "", err
	}
	email, _ := m["email"].(string)
	return email, nil
}
