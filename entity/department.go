package entity

import "go.mongodb.org/mongo-driver/bson/primitive"

// Department types.
const (
	DeptTypeAI     = "ai"
	DeptTypeHuman  = "human"
	DeptTypeHybrid = "hybrid"
)

// Department is a routing destination. Name is the routing key stored in
// session state and matched against user-facing menu selections.
type Department struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Icon         string             `json:"icon" bson:"icon"`
	Type         string             `json:"type" bson:"type"`
	Phone        string             `json:"phone" bson:"phone"`
	Prompt       string             `json:"prompt" bson:"prompt"`
	DisplayOrder int                `json:"display_order" bson:"display_order"`
}
