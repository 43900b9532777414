package mongo

import (
	"context"

	"bitbucket.org/edsplore/callqa/internal/app/status/api"
	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/errc"
	"bitbucket.org/edsplore/callqa/internal/pkg/progress"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// StatusProvider provides call processing status from mongo db
type StatusProvider struct {
	SessionProvider *SessionProvider
}

// NewStatusProvider creates StatusProvider instance
func NewStatusProvider(sessionProvider *SessionProvider) (*StatusProvider, error) {
	f := StatusProvider{SessionProvider: sessionProvider}
	return &f, nil
}

// Get retrieves status from DB
func (fs *StatusProvider) Get(id string) (*api.CallStatus, error) {
	cmdapp.Log.Infof("Retrieving status %s", id)

	ctx, cancel := mongoContext()
	defer cancel()

	session, err := fs.SessionProvider.NewSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(context.Background())

	c := session.Client().Database(store).Collection(callTable)

	var m bson.M
	err = c.FindOne(ctx, bson.M{"ID": sanitize(id)}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		cmdapp.Log.Infof("ID not found %s", id)
		return newNotFoundResult(id), nil
	}
	if err != nil {
		return nil, err
	}

	result := api.CallStatus{ID: id}
	if st, ok := m["status"].(string); ok {
		result.Status = st
	}
	if details, ok := m["processingDetails"].(string); ok {
		result.ProcessingDetails = details
	}
	if errorCodeStr, ok := m["errorCode"].(string); ok {
		result.ErrorCode = errorCodeStr
	}
	if errorStr, ok := m["error"].(string); ok {
		result.Error = errorStr
	}
	result.Progress = progress.Convert(result.Status)
	return &result, nil
}

func newNotFoundResult(id string) *api.CallStatus {
	result := api.CallStatus{ID: id}
	result.Status = "NOT_FOUND"
	result.ErrorCode = errc.NotFoundCode
	result.Error = "Unknown ID: " + id
	return &result
}
