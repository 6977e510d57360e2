package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminUser represents a back-office administrator able to mint JWT sessions and
// manage operator accounts.
type AdminUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Active       bool               `bson:"active" json:"active"`
	Roles        []string           `bson:"roles" json:"roles"`
	CreatedAt    primitive.DateTime `bson:"createdAt" json:"createdAt"`
	UpdatedAt    primitive.DateTime `bson:"updatedAt" json:"updatedAt"`
}

// ZipCode is a row in the zipcodes centroid table used to geocode search
// origins. Location is indexed 2dsphere alongside inspector locations.
type ZipCode struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Zip      string             `bson:"zip" json:"zip"`
	City     string             `bson:"city" json:"city"`
	State    string             `bson:"state" json:"state"`
	Location GeoPoint           `bson:"location" json:"location"`
}

// SchedulerLock is a mongo-backed mutual exclusion row so periodic jobs run on
// exactly one instance.
type SchedulerLock struct {
	ID         string             `bson:"_id" json:"id"`
	InstanceID string             `bson:"instanceId" json:"instanceId"`
	ExpiresAt  primitive.DateTime `bson:"expiresAt" json:"expiresAt"`
	AcquiredAt primitive.DateTime `bson:"acquiredAt" json:"acquiredAt"`
}
