package mongo

import (
	"context"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/persistence"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AnalysisSaver saves the structured analysis with its issue and
// recommendation children to mongo db. The parent row goes first, children
// follow. A child insert failure triggers a compensating delete of the whole
// analysis so no half written record survives
type AnalysisSaver struct {
	SessionProvider *SessionProvider
}

// NewAnalysisSaver creates AnalysisSaver instance
func NewAnalysisSaver(sessionProvider *SessionProvider) (*AnalysisSaver, error) {
	f := AnalysisSaver{SessionProvider: sessionProvider}
	return &f, nil
}

// Save saves analysis and children to DB
func (as *AnalysisSaver) Save(data *persistence.Analysis, issues []persistence.Issue,
	recommendations []persistence.Recommendation) error {
	cmdapp.Log.Infof("Saving analysis for %s", data.CallID)

	ctx, cancel := mongoContext()
	defer cancel()

	session, err := as.SessionProvider.NewSession()
	if err != nil {
		return err
	}
	defer session.EndSession(context.Background())

	db := session.Client().Database(store)
	analysisID, err := as.saveParent(ctx, db, data)
	if err != nil {
		return errors.Wrap(err, "Can't save analysis")
	}

	err = as.replaceChildren(ctx, db, analysisID, issues, recommendations)
	if err != nil {
		as.compensate(db, analysisID)
		return errors.Wrap(err, "Can't save analysis children")
	}
	return nil
}

func (as *AnalysisSaver) saveParent(ctx context.Context, db *mongo.Database,
	data *persistence.Analysis) (string, error) {
	c := db.Collection(analysisTable)
	var saved persistence.Analysis
	err := c.FindOneAndUpdate(ctx, bson.M{"callID": sanitize(data.CallID)},
		bson.M{"$set": bson.M{"performanceScore": data.PerformanceScore, "rating": data.Rating,
			"summary": data.Summary, "summarySpanish": data.SummarySpanish,
			"metricAnalysis": data.MetricAnalysis, "metricAnalysisSpanish": data.MetricAnalysisSpanish},
			"$setOnInsert": bson.M{"ID": uuid.New().String()}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)).Decode(&saved)
	if err != nil {
		return "", err
	}
	return saved.ID, nil
}

func (as *AnalysisSaver) replaceChildren(ctx context.Context, db *mongo.Database,
	analysisID string, issues []persistence.Issue, recommendations []persistence.Recommendation) error {
	for _, table := range []string{issueTable, recommendationTable} {
		_, err := db.Collection(table).DeleteMany(ctx, bson.M{"analysisID": analysisID})
		if err != nil {
			return err
		}
	}
	if len(issues) > 0 {
		docs := make([]interface{}, 0, len(issues))
		for _, issue := range issues {
			issue.ID = uuid.New().String()
			issue.AnalysisID = analysisID
			docs = append(docs, issue)
		}
		if _, err := db.Collection(issueTable).InsertMany(ctx, docs); err != nil {
			return err
		}
	}
	if len(recommendations) > 0 {
		docs := make([]interface{}, 0, len(recommendations))
		for _, rec := range recommendations {
			rec.ID = uuid.New().String()
			rec.AnalysisID = analysisID
			docs = append(docs, rec)
		}
		if _, err := db.Collection(recommendationTable).InsertMany(ctx, docs); err != nil {
			return err
		}
	}
	return nil
}

func (as *AnalysisSaver) compensate(db *mongo.Database, analysisID string) {
	ctx, cancel := mongoContext()
	defer cancel()
	for _, table := range []string{issueTable, recommendationTable} {
		_, err := db.Collection(table).DeleteMany(ctx, bson.M{"analysisID": analysisID})
		cmdapp.LogIf(err)
	}
	_, err := db.Collection(analysisTable).DeleteOne(ctx, bson.M{"ID": analysisID})
	cmdapp.LogIf(err)
}
