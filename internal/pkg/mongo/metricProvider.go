package mongo

import (
	"context"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/persistence"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MetricProvider loads user defined analysis metric definitions from mongo db
type MetricProvider struct {
	SessionProvider *SessionProvider
}

// NewMetricProvider creates MetricProvider instance
func NewMetricProvider(sessionProvider *SessionProvider) (*MetricProvider, error) {
	f := MetricProvider{SessionProvider: sessionProvider}
	return &f, nil
}

// LoadByUser returns metric definitions for user, oldest first
func (mp *MetricProvider) LoadByUser(userID string) ([]persistence.MetricDefinition, error) {
	cmdapp.Log.Infof("Loading metric definitions for user %s", userID)

	ctx, cancel := mongoContext()
	defer cancel()

	session, err := mp.SessionProvider.NewSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(context.Background())

	c := session.Client().Database(store).Collection(metricTable)

	cursor, err := c.Find(ctx, bson.M{"userID": sanitize(userID)},
		options.Find().SetSort(bson.M{"createdAt": 1}))
	if err != nil {
		return nil, errors.Wrap(err, "Can't load metric definitions")
	}
	defer cursor.Close(ctx)
	var res []persistence.MetricDefinition
	if err := cursor.All(ctx, &res); err != nil {
		return nil, errors.Wrap(err, "Can't decode metric definitions")
	}
	return res, nil
}
