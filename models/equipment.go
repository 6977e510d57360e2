package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EquipmentCondition is the closed set of condition grades recorded at
// assignment and return.
type EquipmentCondition string

// Condition grades.
const (
	ConditionNew  EquipmentCondition = "new"
	ConditionGood EquipmentCondition = "good"
	ConditionFair EquipmentCondition = "fair"
	ConditionPoor EquipmentCondition = "poor"
)

// ParseEquipmentCondition returns the typed condition for s, or false when unknown.
func ParseEquipmentCondition(s string) (EquipmentCondition, bool) {
	switch EquipmentCondition(s) {
	case ConditionNew, ConditionGood, ConditionFair, ConditionPoor:
		return EquipmentCondition(s), true
	}
	return "", false
}

// Equipment holds the structure for the equipment collection in mongo.
// IsOut is true iff an open assignment exists for this item; the ledger flips it
// with a compare-and-set so it can never disagree with the assignment rows.
type Equipment struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details EquipmentDetails   `json:"equipment" bson:"equipment"`
	Version int32              `json:"__v" bson:"__v"`
}

// EquipmentDetails holds the structure for the inner equipment structure as
// defined in the equipment collection in mongo
type EquipmentDetails struct {
	Model        string             `json:"model" bson:"model"`
	SerialNumber string             `json:"serialNumber" bson:"serialNumber"`
	Description  string             `json:"description" bson:"description"`
	Condition    EquipmentCondition `json:"condition" bson:"condition"`
	IsOut        bool               `json:"isOut" bson:"isOut"`
	CompanyID    string             `json:"companyID" bson:"companyID"`
	PhotoURLs    []string           `json:"photoURLs,omitempty" bson:"photoURLs,omitempty"`
	CreatedAt    primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt    primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}
