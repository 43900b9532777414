package mongo

import (
	"context"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/persistence"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TranscriptionSaver saves the transcript for a call to mongo db.
// One authoritative row per call - rerunning the pipeline replaces it
type TranscriptionSaver struct {
	SessionProvider *SessionProvider
}

// NewTranscriptionSaver creates TranscriptionSaver instance
func NewTranscriptionSaver(sessionProvider *SessionProvider) (*TranscriptionSaver, error) {
	f := TranscriptionSaver{SessionProvider: sessionProvider}
	return &f, nil
}

// Save saves transcription to DB
func (ts *TranscriptionSaver) Save(data *persistence.Transcription) error {
	cmdapp.Log.Infof("Saving transcription for %s", data.CallID)

	ctx, cancel := mongoContext()
	defer cancel()

	session, err := ts.SessionProvider.NewSession()
	if err != nil {
		return err
	}
	defer session.EndSession(context.Background())

	c := session.Client().Database(store).Collection(transcriptionTable)

	_, err = c.UpdateOne(ctx, bson.M{"callID": sanitize(data.CallID)},
		bson.M{"$set": bson.M{"content": data.Content, "language": data.Language,
			"confidence": data.Confidence},
			"$setOnInsert": bson.M{"ID": uuid.New().String()}},
		options.Update().SetUpsert(true))
	return err
}
