package mongo

import (
	"context"
	"time"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrLocked is returned when the record is already claimed by another run
var ErrLocked = errors.New("Record is locked")

// Locker acquires advisory lock in db. A lock older than TTL is treated as
// abandoned and may be taken over
type Locker struct {
	SessionProvider *SessionProvider
	TTL             time.Duration
}

// NewLocker creates Locker instance
func NewLocker(sessionProvider *SessionProvider, ttl time.Duration) (*Locker, error) {
	if ttl <= 0 {
		return nil, errors.New("No lock TTL provided")
	}
	f := Locker{SessionProvider: sessionProvider, TTL: ttl}
	return &f, nil
}

// Lock locks record for processing
func (ss *Locker) Lock(id string, lockKey string) error {
	cmdapp.Log.Infof("Locking %s: %s", id, lockKey)

	ctx, cancel := mongoContext()
	defer cancel()

	session, err := ss.SessionProvider.NewSession()
	if err != nil {
		return err
	}
	defer session.EndSession(context.Background())

	c := session.Client().Database(store).Collection(lockTable)

	// make sure we have the record
	_, err = c.UpdateOne(ctx, bson.M{"ID": sanitize(id), "key": lockKey},
		bson.M{"$setOnInsert": bson.M{"status": 0}}, options.Update().SetUpsert(true))
	if err != nil {
		return err
	}

	leaseEdge := time.Now().Add(-ss.TTL)
	err = c.FindOneAndUpdate(ctx,
		bson.M{"ID": sanitize(id), "key": lockKey, "$or": []bson.M{
			{"status": 0},
			{"status": 1, "lockedAt": bson.M{"$lt": leaseEdge}}}},
		bson.M{"$set": bson.M{"status": 1, "lockedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Err()
	if err == mongo.ErrNoDocuments {
		return ErrLocked
	}
	return err
}

// UnLock marks record with specific value
func (ss *Locker) UnLock(id string, lockKey string, value *int) error {
	cmdapp.Log.Infof("Unlocking %s: %s", id, lockKey)

	ctx, cancel := mongoContext()
	defer cancel()

	session, err := ss.SessionProvider.NewSession()
	if err != nil {
		return err
	}
	defer session.EndSession(context.Background())

	c := session.Client().Database(store).Collection(lockTable)

	_, err = c.UpdateOne(ctx, bson.M{"ID": sanitize(id), "key": lockKey, "status": 1},
		bson.M{"$set": bson.M{"status": *value}})
	cmdapp.LogIf(err)
	return err
}
