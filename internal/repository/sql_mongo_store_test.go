package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type fakeCollection struct {
	mu      sync.Mutex
	docs    map[string]bson.M
	upserts []bool
}

func newFakeCollection() *fakeCollection {
	return &fakeCollection{docs: map[string]bson.M{}}
}

func (f *fakeCollection) FindOne(_ context.Context, filter any, _ ...options.Lister[options.FindOneOptions]) *mongo.SingleResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[filter.(bson.M)["_id"].(string)]
	if !ok {
		return mongo.NewSingleResultFromDocument(bson.M{}, mongo.ErrNoDocuments, nil)
	}
	return mongo.NewSingleResultFromDocument(doc, nil, nil)
}

func (f *fakeCollection) UpdateOne(_ context.Context, filter any, update any, opts ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error) {
	var args options.UpdateOneOptions
	for _, o := range opts {
		for _, set := range o.List() {
			if err := set(&args); err != nil {
				return nil, err
			}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, args.Upsert != nil && *args.Upsert)

	key := filter.(bson.M)["_id"].(string)
	set := update.(bson.M)["$set"].(bson.M)
	f.docs[key] = bson.M{"_id": key, "value": set["value"], "updatedAt": set["updatedAt"]}
	return &mongo.UpdateResult{UpsertedCount: 1}, nil
}

func (f *fakeCollection) DeleteOne(_ context.Context, filter any, _ ...options.Lister[options.DeleteOneOptions]) (*mongo.DeleteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := filter.(bson.M)["_id"].(string)
	_, ok := f.docs[key]
	delete(f.docs, key)
	if !ok {
		return &mongo.DeleteResult{}, nil
	}
	return &mongo.DeleteResult{DeletedCount: 1}, nil
}

func TestMongoStore(t *testing.T) {
	col := newFakeCollection()
	exerciseStore(t, &MongoStore{col: col})

	require.NotEmpty(t, col.upserts)
	for _, upsert := range col.upserts {
		assert.True(t, upsert, "writes must upsert")
	}
}

func TestMongoStore_DocumentLayout(t *testing.T) {
	col := newFakeCollection()
	s := &MongoStore{col: col}
	require.NoError(t, s.Put(context.Background(), "abc:grindctrl_orders", []byte(`[]`)))

	doc := col.docs["abc:grindctrl_orders"]
	assert.Equal(t, []byte(`[]`), doc["value"])
	assert.IsType(t, time.Time{}, doc["updatedAt"])
}

func newDryRunPostgres(t *testing.T) *PostgresStore {
	t.Helper()
	db, err := gorm.Open(postgres.Open("host=localhost user=grindctrl dbname=grindctrl sslmode=disable"), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return &PostgresStore{db: db}
}

func TestPostgresStore_UpsertStatement(t *testing.T) {
	s := newDryRunPostgres(t)
	entry := StateEntry{Key: "abc:grindctrl_cart", Value: []byte(`[]`), UpdatedAt: time.Now().UTC()}

	stmt := s.upsert(context.Background(), &entry).Statement
	sql := stmt.SQL.String()

	assert.Contains(t, sql, `INSERT INTO "storefront_state"`)
	assert.Contains(t, sql, `ON CONFLICT ("state_key") DO UPDATE SET`)
	assert.Contains(t, sql, `"value"="excluded"."value"`)
	assert.Contains(t, sql, `"updated_at"="excluded"."updated_at"`)
	assert.Contains(t, stmt.Vars, "abc:grindctrl_cart")

	assert.NoError(t, s.Put(context.Background(), "abc:grindctrl_cart", []byte(`[]`)))
}

func TestPostgresStore_DeleteStatement(t *testing.T) {
	s := newDryRunPostgres(t)

	stmt := s.remove(context.Background(), "abc:grindctrl_cart").Statement
	assert.Contains(t, stmt.SQL.String(), `DELETE FROM "storefront_state" WHERE state_key = $1`)
	assert.Equal(t, []any{"abc:grindctrl_cart"}, stmt.Vars)

	assert.NoError(t, s.Delete(context.Background(), "abc:grindctrl_cart"))
}
