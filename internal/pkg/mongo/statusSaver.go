package mongo

import (
	"context"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/status"
	"go.mongodb.org/mongo-driver/bson"
)

// StatusSaver saves call processing status to mongo db
type StatusSaver struct {
	SessionProvider *SessionProvider
}

// NewStatusSaver creates StatusSaver instance
func NewStatusSaver(sessionProvider *SessionProvider) (*StatusSaver, error) {
	f := StatusSaver{SessionProvider: sessionProvider}
	return &f, nil
}

// Save saves status to DB
func (ss *StatusSaver) Save(id string, st status.Status) error {
	cmdapp.Log.Infof("Saving status %s: %s", id, status.Name(st))
	return ss.update(id, bson.M{"status": status.Name(st),
		"processingDetails": status.Name(st)}, bson.M{"errorCode": 1, "error": 1})
}

// SaveError marks the call failed with error code and message
func (ss *StatusSaver) SaveError(id string, errorCode string, errorStr string) error {
	cmdapp.Log.Infof("Saving error %s: %s", id, errorCode)
	return ss.update(id, bson.M{"status": status.Name(status.Failed),
		"errorCode": errorCode, "error": errorStr}, nil)
}

// SaveDetail updates the free text processing detail only
func (ss *StatusSaver) SaveDetail(id string, detail string) error {
	return ss.update(id, bson.M{"processingDetails": detail}, nil)
}

func (ss *StatusSaver) update(id string, set bson.M, unset bson.M) error {
	ctx, cancel := mongoContext()
	defer cancel()

	session, err := ss.SessionProvider.NewSession()
	if err != nil {
		return err
	}
	defer session.EndSession(context.Background())

	c := session.Client().Database(store).Collection(callTable)

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	_, err = c.UpdateOne(ctx, bson.M{"ID": sanitize(id)}, update)
	return err
}
