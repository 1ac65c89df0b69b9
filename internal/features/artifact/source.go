package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-cms/internal/database"
)

// Source enumerates the artifacts to export. The returned list is
// authoritative for what should exist in the working copy.
type Source interface {
	Artifacts(ctx context.Context) ([]Artifact, error)
}

type MongoSource struct {
	contents *mongo.Collection
	settings *mongo.Collection
}

// NewMongoSource reads generated content and platform-state snapshots from
// the dashboard's collections.
func NewMongoSource(db *database.MongodbDB) Source {
	return &MongoSource{
		contents: db.DB.Collection("contents"),
		settings: db.DB.Collection("platform_settings"),
	}
}

// Artifacts renders every content item plus a platform-state snapshot into a
// deterministic, path-sorted artifact list.
func (s *MongoSource) Artifacts(ctx context.Context) ([]Artifact, error) {
	opts := options.Find().SetSort(bson.D{{Key: "section", Value: 1}, {Key: "slug", Value: 1}})
	cursor, err := s.contents.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list contents: %w", err)
	}
	defer cursor.Close(ctx)

	var items []ContentItem
	if err = cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode contents: %w", err)
	}

	artifacts := make([]Artifact, 0, len(items)+1)
	for _, item := range items {
		artifacts = append(artifacts, Artifact{
			ID:           item.ID.Hex(),
			RelativePath: path.Join("content", item.Section, item.Slug+".md"),
			Body:         renderContent(item),
		})
	}

	snapshot, err := s.stateSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snapshot != nil {
		artifacts = append(artifacts, *snapshot)
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].RelativePath < artifacts[j].RelativePath
	})
	return artifacts, nil
}

func renderContent(item ContentItem) []byte {
	return []byte(fmt.Sprintf("# %s\n\n%s\n", item.Title, item.Body))
}

// stateSnapshot dumps the platform settings documents into a single JSON
// artifact so configuration state is backed up alongside the content.
func (s *MongoSource) stateSnapshot(ctx context.Context) (*Artifact, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.settings.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list platform settings: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode platform settings: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	body, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode state snapshot: %w", err)
	}

	return &Artifact{
		ID:           "platform-state",
		RelativePath: "state/platform.json",
		Body:         body,
	}, nil
}
