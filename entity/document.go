package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DocumentChunk is one retrieval unit of an ingested document. Chunks from
// the same source share Filename but carry no cross-chunk linkage.
type DocumentChunk struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Filename  string             `json:"filename" bson:"filename"`
	Content   string             `json:"content" bson:"content"`
	Embedding []float64          `json:"-" bson:"embedding"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
