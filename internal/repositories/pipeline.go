package repositories

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ownerProjection is the owner shape exposed by every joined view.
var ownerProjection = bson.M{
	"username": 1,
	"fullName": 1,
	"avatar":   1,
}

// pipelineBuilder accumulates aggregation stages in a fixed, explicit order.
// Optional stages are skipped entirely when their input is absent, and sort
// fields only pass through a per-collection allow-list, so no raw client
// input ever reaches the pipeline.
type pipelineBuilder struct {
	stages mongo.Pipeline
}

func newPipeline() *pipelineBuilder {
	return &pipelineBuilder{}
}

// Search adds a $search stage over the given paths. Skipped when query is
// empty.
func (b *pipelineBuilder) Search(index string, query string, paths ...string) *pipelineBuilder {
	if query == "" {
		return b
	}
	b.stages = append(b.stages, bson.D{{Key: "$search", Value: bson.M{
		"index": index,
		"text": bson.M{
			"query": query,
			"path":  paths,
		},
	}}})
	return b
}

// MatchOwner adds an owner-equality $match only when an owner id is supplied.
func (b *pipelineBuilder) MatchOwner(field string, owner *primitive.ObjectID) *pipelineBuilder {
	if owner == nil {
		return b
	}
	return b.Match(bson.M{field: *owner})
}

func (b *pipelineBuilder) Match(filter bson.M) *pipelineBuilder {
	b.stages = append(b.stages, bson.D{{Key: "$match", Value: filter}})
	return b
}

// Sort adds a $sort stage when field is allow-listed, otherwise it falls back
// to creation time descending.
func (b *pipelineBuilder) Sort(allowed map[string]bool, field string, ascending bool) *pipelineBuilder {
	if !allowed[field] {
		field = "createdAt"
		ascending = false
	}
	order := -1
	if ascending {
		order = 1
	}
	b.stages = append(b.stages, bson.D{{Key: "$sort", Value: bson.D{{Key: field, Value: order}}}})
	return b
}

// LookupOwner joins the users collection on the given local field and
// projects the public owner shape.
func (b *pipelineBuilder) LookupOwner(localField, as string) *pipelineBuilder {
	b.stages = append(b.stages, bson.D{{Key: "$lookup", Value: bson.M{
		"from":         "users",
		"localField":   localField,
		"foreignField": "_id",
		"as":           as,
		"pipeline": []bson.M{
			{"$project": ownerProjection},
		},
	}}})
	return b
}

func (b *pipelineBuilder) Unwind(path string) *pipelineBuilder {
	b.stages = append(b.stages, bson.D{{Key: "$unwind", Value: path}})
	return b
}

func (b *pipelineBuilder) AddFields(fields bson.M) *pipelineBuilder {
	b.stages = append(b.stages, bson.D{{Key: "$addFields", Value: fields}})
	return b
}

func (b *pipelineBuilder) Project(projection bson.M) *pipelineBuilder {
	b.stages = append(b.stages, bson.D{{Key: "$project", Value: projection}})
	return b
}

func (b *pipelineBuilder) Build() mongo.Pipeline {
	return b.stages
}
