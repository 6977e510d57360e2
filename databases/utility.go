package databases

import "go.mongodb.org/mongo-driver/mongo/options"

// pageFindOptions builds the Find options selecting the given zero-based page.
func pageFindOptions(limit, page int) *options.FindOptions {
	l := int64(limit)
	skip := int64(page) * l
	return options.Find().SetLimit(l).SetSkip(skip)
}
