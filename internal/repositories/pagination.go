package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// Page is the paginated result of an aggregation pipeline.
type Page struct {
	Docs        []bson.M `json:"docs"`
	TotalDocs   int64    `json:"totalDocs"`
	Limit       int64    `json:"limit"`
	Page        int64    `json:"page"`
	TotalPages  int64    `json:"totalPages"`
	HasNextPage bool     `json:"hasNextPage"`
	HasPrevPage bool     `json:"hasPrevPage"`
}

// normalizePageLimit coerces page and limit to positive integers, falling
// back to the defaults.
func normalizePageLimit(page, limit int64) (int64, int64) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}

// newPage assembles page metadata. A page past the end yields empty docs with
// the totals intact.
func newPage(docs []bson.M, totalDocs, page, limit int64) *Page {
	if docs == nil {
		docs = []bson.M{}
	}
	totalPages := totalDocs / limit
	if totalDocs%limit != 0 {
		totalPages++
	}
	return &Page{
		Docs:        docs,
		TotalDocs:   totalDocs,
		Limit:       limit,
		Page:        page,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1 && totalDocs > 0,
	}
}

type facetResult struct {
	Docs  []bson.M `bson:"docs"`
	Total []struct {
		Count int64 `bson:"count"`
	} `bson:"total"`
}

// paginate appends a $facet stage to the prepared pipeline so the documents
// and the total count come back in a single round trip.
func paginate(ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline, page, limit int64) (*Page, error) {
	page, limit = normalizePageLimit(page, limit)

	pipeline = append(pipeline, bson.D{{Key: "$facet", Value: bson.M{
		"docs": []bson.M{
			{"$skip": (page - 1) * limit},
			{"$limit": limit},
		},
		"total": []bson.M{
			{"$count": "count"},
		},
	}}})

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []facetResult
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return newPage(nil, 0, page, limit), nil
	}

	var totalDocs int64
	if len(results[0].Total) > 0 {
		totalDocs = results[0].Total[0].Count
	}
	return newPage(results[0].Docs, totalDocs, page, limit), nil
}
