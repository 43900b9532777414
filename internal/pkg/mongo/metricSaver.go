package mongo

import (
	"context"
	"time"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/persistence"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrMetricNotFound is returned when no metric definition exists for ID
var ErrMetricNotFound = errors.New("Metric definition not found")

// MetricSaver saves user defined metric definitions to mongo db
type MetricSaver struct {
	SessionProvider *SessionProvider
}

// NewMetricSaver creates MetricSaver instance
func NewMetricSaver(sessionProvider *SessionProvider) (*MetricSaver, error) {
	f := MetricSaver{SessionProvider: sessionProvider}
	return &f, nil
}

// Save upserts the metric definition by ID
func (ms *MetricSaver) Save(data *persistence.MetricDefinition) error {
	cmdapp.Log.Infof("Saving metric definition %s", data.ID)

	ctx, cancel := mongoContext()
	defer cancel()

	session, err := ms.SessionProvider.NewSession()
	if err != nil {
		return err
	}
	defer session.EndSession(context.Background())

	c := session.Client().Database(store).Collection(metricTable)

	_, err = c.UpdateOne(ctx, bson.M{"ID": sanitize(data.ID)},
		bson.M{"$set": metricUpdateFields(data, time.Now()),
			"$setOnInsert": bson.M{"createdAt": time.Now()}},
		options.Update().SetUpsert(true))
	return err
}

// Delete removes the metric definition by ID
func (ms *MetricSaver) Delete(id string) error {
	cmdapp.Log.Infof("Deleting metric definition %s", id)

	ctx, cancel := mongoContext()
	defer cancel()

	session, err := ms.SessionProvider.NewSession()
	if err != nil {
		return err
	}
	defer session.EndSession(context.Background())

	c := session.Client().Database(store).Collection(metricTable)

	res, err := c.DeleteOne(ctx, bson.M{"ID": sanitize(id)})
	if err != nil {
		return errors.Wrap(err, "Can't delete metric definition "+id)
	}
	if res.DeletedCount == 0 {
		return ErrMetricNotFound
	}
	return nil
}

func metricUpdateFields(data *persistence.MetricDefinition, at time.Time) bson.M {
	return bson.M{"userID": data.UserID, "title": data.Title,
		"description": data.Description, "editedAt": at}
}
