package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EquipmentAssignment holds the structure for the equipmentAssignments collection
// in mongo. It relates one equipment item to one inspector for one interval and
// references both sides by id only. A row with ReturnedDate == nil is an open
// assignment; rows are closed on return, never deleted.
type EquipmentAssignment struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details AssignmentDetails  `json:"assignment" bson:"assignment"`
	Version int32              `json:"__v" bson:"__v"`
}

// AssignmentDetails holds the structure for the inner assignment structure as
// defined in the equipmentAssignments collection in mongo
type AssignmentDetails struct {
	EquipmentID       string              `json:"equipmentID" bson:"equipmentID"`
	InspectorID       string              `json:"inspectorID" bson:"inspectorID"`
	AssignedCondition EquipmentCondition  `json:"assignedCondition" bson:"assignedCondition"`
	AssignedDate      primitive.DateTime  `json:"assignedDate" bson:"assignedDate"`
	ReturnedCondition EquipmentCondition  `json:"returnedCondition,omitempty" bson:"returnedCondition,omitempty"`
	ReturnedDate      *primitive.DateTime `json:"returnedDate" bson:"returnedDate"`
	CreatedAt         primitive.DateTime  `json:"createdAt" bson:"createdAt"`
	UpdatedAt         primitive.DateTime  `json:"updatedAt" bson:"updatedAt"`
}

// Open reports whether the assignment has not been returned yet.
func (d AssignmentDetails) Open() bool {
	return d.ReturnedDate == nil
}
