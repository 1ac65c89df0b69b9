package backup

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-cms/internal/database"
)

type SettingRepository interface {
	Get(ctx context.Context) (*SyncConfiguration, error)
	Save(ctx context.Context, cfg *SyncConfiguration) error
}

type RunRepository interface {
	Last(ctx context.Context) (*SyncRun, error)
	Save(ctx context.Context, run *SyncRun) error
}

type SettingRepositoryImpl struct {
	collection *mongo.Collection
}

func NewSettingRepository(db *database.MongodbDB) SettingRepository {
	return &SettingRepositoryImpl{
		collection: db.DB.Collection("backup_settings"),
	}
}

// Get loads the single sync configuration document. A missing document is
// not an error: a fresh, disabled configuration is returned instead.
func (r *SettingRepositoryImpl) Get(ctx context.Context) (*SyncConfiguration, error) {
	var cfg SyncConfiguration
	err := r.collection.FindOne(ctx, bson.M{}).Decode(&cfg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &SyncConfiguration{}, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *SettingRepositoryImpl) Save(ctx context.Context, cfg *SyncConfiguration) error {
	now := time.Now()
	if cfg.ID.IsZero() {
		cfg.ID = primitive.NewObjectID()
		cfg.CreatedAt = now
	}
	cfg.UpdatedAt = now

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": cfg.ID}, cfg, opts)
	return err
}

const lastRunDocID = "last_run"

type lastRunDoc struct {
	ID  string  `bson:"_id"`
	Run SyncRun `bson:"run"`
}

type RunRepositoryImpl struct {
	collection *mongo.Collection
}

func NewRunRepository(db *database.MongodbDB) RunRepository {
	return &RunRepositoryImpl{
		collection: db.DB.Collection("backup_status"),
	}
}

func (r *RunRepositoryImpl) Last(ctx context.Context) (*SyncRun, error) {
	var doc lastRunDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": lastRunDocID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &doc.Run, nil
}

// Save overwrites the single last-run record. History is not retained; the
// most recent outcome is all the status surface needs.
func (r *RunRepositoryImpl) Save(ctx context.Context, run *SyncRun) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": lastRunDocID},
		lastRunDoc{ID: lastRunDocID, Run: *run},
		opts)
	return err
}
