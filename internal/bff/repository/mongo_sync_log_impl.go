package repository

import (
	"context"
	"time"

	"schoolbff/internal/bff/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSyncLogRepository implements SyncLogRepository using MongoDB
type MongoSyncLogRepository struct {
	Collection *mongo.Collection
}

func NewMongoSyncLogRepository(db *mongo.Database, collectionName string) *MongoSyncLogRepository {
	return &MongoSyncLogRepository{
		Collection: db.Collection(collectionName),
	}
}

func (r *MongoSyncLogRepository) EnsureSyncLogIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// Tenant listing: tenant_id + created_at
		{
			Keys: bson.D{
				{Key: "tenant_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_tenant_created_at"),
		},
		// Per academic year: tenant_id + academic_year_id + created_at
		{
			Keys: bson.D{
				{Key: "tenant_id", Value: 1},
				{Key: "academic_year_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_tenant_year_query"),
		},
	}

	_, err := r.Collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *MongoSyncLogRepository) CreateSyncLog(ctx context.Context, log *model.SyncLog) error {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	_, err := r.Collection.InsertOne(ctx, log)
	return err
}

func (r *MongoSyncLogRepository) FindSyncLogs(ctx context.Context, req model.GetSyncLogsReq) ([]*model.SyncLog, int64, error) {
	filter := syncLogFilter(req)

	total, err := r.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := r.Collection.Find(ctx, filter, syncLogFindOptions(req))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	results := []*model.SyncLog{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

// syncLogFilter always scopes to the tenant.
func syncLogFilter(req model.GetSyncLogsReq) bson.M {
	filter := bson.M{"tenant_id": req.TenantID}
	if req.AcademicYearID != "" {
		filter["academic_year_id"] = req.AcademicYearID
	}
	if req.Mode != "" {
		filter["mode"] = req.Mode
	}

	if req.StartTime != nil || req.EndTime != nil {
		timeFilter := bson.M{}
		if req.StartTime != nil {
			timeFilter["$gte"] = *req.StartTime
		}
		if req.EndTime != nil {
			timeFilter["$lte"] = *req.EndTime
		}
		filter["created_at"] = timeFilter
	}
	return filter
}

func syncLogFindOptions(req model.GetSyncLogsReq) *options.FindOptions {
	skip := int64((req.Page - 1) * req.Size)
	return options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(req.Size))
}
