package mongo

import (
	"context"
	"net/url"
	"regexp"
	"sync"
	"time"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/bsonx"
)

// IndexData keeps index creation data
type IndexData struct {
	Table  string
	Field  string
	Unique bool
}

func newIndexData(table string, field string, unique bool) IndexData {
	return IndexData{Table: table, Field: field, Unique: unique}
}

// SessionProvider connects and provides sessions for mongo DB
type SessionProvider struct {
	client  *mongo.Client
	URL     string
	indexes []IndexData
	m       sync.Mutex // struct field mutex
}

// NewSessionProvider creates Mongo session provider
func NewSessionProvider() (*SessionProvider, error) {
	url := cmdapp.Config.GetString("mongo.url")
	if url == "" {
		return nil, errors.New("No Mongo url provided")
	}
	return &SessionProvider{URL: url, indexes: indexData}, nil
}

// Close closes mongo client
func (sp *SessionProvider) Close() {
	if sp.client != nil {
		ctx, cancel := mongoContext()
		defer cancel()
		cmdapp.LogIf(sp.client.Disconnect(ctx))
	}
}

// Healthy checks the connection, used by healthcheck
func (sp *SessionProvider) Healthy() error {
	session, err := sp.NewSession()
	if err != nil {
		return err
	}
	defer session.EndSession(context.Background())
	ctx, cancel := mongoContext()
	defer cancel()
	return session.Client().Ping(ctx, nil)
}

// NewSession creates mongo session
func (sp *SessionProvider) NewSession() (mongo.Session, error) {
	sp.m.Lock()
	defer sp.m.Unlock()

	if sp.client == nil {
		cmdapp.Log.Info("Dial mongo: " + hidePass(sp.URL))
		ctx, cancel := mongoContext()
		defer cancel()
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(sp.URL))
		if err != nil {
			return nil, errors.Wrap(err, "Can't dial to mongo")
		}
		err = checkIndexes(client, sp.indexes)
		if err != nil {
			return nil, errors.Wrap(err, "Can't create indexes")
		}
		sp.client = client
	}
	return sp.client.StartSession()
}

func checkIndexes(c *mongo.Client, indexes []IndexData) error {
	for _, index := range indexes {
		err := checkIndex(c, index)
		if err != nil {
			return errors.Wrap(err, "Can't create index: "+index.Table+":"+index.Field)
		}
	}
	return nil
}

func checkIndex(c *mongo.Client, indexData IndexData) error {
	ctx, cancel := mongoContext()
	defer cancel()
	_, err := c.Database(store).Collection(indexData.Table).Indexes().CreateOne(ctx,
		mongo.IndexModel{
			Keys:    bsonx.Doc{{Key: indexData.Field, Value: bsonx.Int32(1)}},
			Options: options.Index().SetUnique(indexData.Unique).SetSparse(true).SetBackground(true),
		})
	return err
}

func mongoContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

var sanitizeRegexp = regexp.MustCompile(`[${}()]`)

func sanitize(s string) string {
	return sanitizeRegexp.ReplaceAllString(s, "")
}

func hidePass(s string) string {
	u, err := url.Parse(s)
	if err != nil {
		cmdapp.Log.Warn("Can't parse mongo url.")
		return ""
	}
	_, ps := u.User.Password()
	if ps {
		u.User = url.UserPassword(u.User.Username(), "----")
	}
	return u.String()
}
