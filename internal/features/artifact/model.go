package artifact

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Artifact is an opaque named payload produced by the content generators.
// RelativePath is unique within one export; artifacts are fully regenerated
// each cycle so no identity beyond the path is tracked.
type Artifact struct {
	ID           string `json:"id"`
	RelativePath string `json:"relative_path"`
	Body         []byte `json:"-"`
}

// ContentItem is a generated piece of authored content as stored by the
// dashboard.
type ContentItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Slug      string             `bson:"slug" json:"slug"`
	Section   string             `bson:"section" json:"section"`
	Title     string             `bson:"title" json:"title"`
	Body      string             `bson:"body" json:"body"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
