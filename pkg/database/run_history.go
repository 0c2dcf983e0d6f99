package database

import (
	"context"
	"time"

	"github.com/travigo/railenrich/pkg/ctdf"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RunHistory stores the progress of each composition run in MongoDB
type RunHistory struct{}

func (h RunHistory) Record(ctx context.Context, run ctdf.EnrichmentRun) error {
	collection := GetCollection(EnrichmentRunsCollection)

	update, err := runUpdate(run, time.Now())
	if err != nil {
		return err
	}

	opts := options.Update().SetUpsert(true)
	_, err = collection.UpdateOne(ctx, bson.M{"identifier": run.Identifier}, update, opts)

	return err
}

// runUpdate sets every field of the run except its creation time, which is only written on insert
func runUpdate(run ctdf.EnrichmentRun, now time.Time) (bson.M, error) {
	run.ModificationDateTime = now
	if run.CreationDateTime.IsZero() {
		run.CreationDateTime = now
	}

	encoded, err := bson.Marshal(run)
	if err != nil {
		return nil, err
	}

	var fields bson.M
	if err := bson.Unmarshal(encoded, &fields); err != nil {
		return nil, err
	}
	delete(fields, "creationdatetime")

	return bson.M{
		"$set":         fields,
		"$setOnInsert": bson.M{"creationdatetime": run.CreationDateTime},
	}, nil
}
