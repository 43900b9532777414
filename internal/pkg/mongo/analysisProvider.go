package mongo

import (
	"context"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/persistence"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
)

// AnalysisProvider loads persisted analyses for aggregation
type AnalysisProvider struct {
	SessionProvider *SessionProvider
}

// NewAnalysisProvider creates AnalysisProvider instance
func NewAnalysisProvider(sessionProvider *SessionProvider) (*AnalysisProvider, error) {
	f := AnalysisProvider{SessionProvider: sessionProvider}
	return &f, nil
}

// GetAll returns all persisted analyses
func (ap *AnalysisProvider) GetAll() ([]persistence.Analysis, error) {
	cmdapp.Log.Info("Loading analyses")

	ctx, cancel := mongoContext()
	defer cancel()

	session, err := ap.SessionProvider.NewSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(context.Background())

	c := session.Client().Database(store).Collection(analysisTable)

	cursor, err := c.Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "Can't load analyses")
	}
	defer cursor.Close(ctx)
	var res []persistence.Analysis
	if err := cursor.All(ctx, &res); err != nil {
		return nil, errors.Wrap(err, "Can't decode analyses")
	}
	return res, nil
}
