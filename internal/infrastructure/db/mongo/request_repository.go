package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fixitnow/fixitnow/internal/core/domain"
	"github.com/fixitnow/fixitnow/internal/core/ports"
)

const collectionRequests = "service_requests"

// RequestRepository implements ports.RequestBackend on MongoDB.
type RequestRepository struct {
	col *mongo.Collection
}

func NewRequestRepository(db *mongo.Database) *RequestRepository {
	return &RequestRepository{col: db.Collection(collectionRequests)}
}

// Create inserts a new request document. A duplicate service_id fails with
// domain.ErrRequestExists.
func (r *RequestRepository) Create(ctx context.Context, req *domain.ServiceRequest) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toDoc(req)
	if err != nil {
		return err
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrRequestExists
		}
		return err
	}
	return nil
}

func (r *RequestRepository) Get(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc requestDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	return fromDoc(&doc)
}

// Query translates ports.RequestFilter into a native Mongo filter with the
// same semantics as RequestFilter.Matches: every supplied field-equality
// constraint must hold, and a provider constraint also matches unassigned
// pending requests.
func (r *RequestRepository) Query(ctx context.Context, filter ports.RequestFilter) ([]*domain.ServiceRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := bson.M{}
	if filter.Homeowner != "" {
		q["homeowner"] = filter.Homeowner
	}
	if filter.Provider != "" {
		q["$or"] = bson.A{
			bson.M{"service_provider": filter.Provider},
			bson.M{"status": string(domain.StatusPending), "service_provider": bson.M{"$in": bson.A{nil, ""}}},
		}
	}
	if filter.Status != "" {
		q["status"] = string(filter.Status)
	}

	cur, err := r.col.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.ServiceRequest
	for cur.Next(ctx) {
		var doc requestDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		req, err := fromDoc(&doc)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, cur.Err()
}

// UpdateFields performs a partial merge conditioned on expect. A matched-zero
// update on an existing document means the precondition no longer holds and
// yields domain.ErrConflict, which is what serialises racing accepts.
func (r *RequestRepository) UpdateFields(ctx context.Context, id string, patch ports.RequestPatch, expect ports.UpdateExpect) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}
	if patch.ServiceProvider != nil {
		set["service_provider"] = *patch.ServiceProvider
	}
	if patch.StartDate != nil {
		set["start_date"] = formatTime(*patch.StartDate)
	}
	if patch.Cost != nil {
		dec, err := decimalFromFloat(*patch.Cost)
		if err != nil {
			return err
		}
		set["cost"] = dec
	}
	if patch.Duration != nil {
		dec, err := decimalFromFloat(*patch.Duration)
		if err != nil {
			return err
		}
		set["duration"] = dec
	}
	if patch.Rating != nil {
		set["rating"] = *patch.Rating
	}
	if !patch.UpdatedAt.IsZero() {
		set["updated_at"] = formatTime(patch.UpdatedAt)
	}

	filter := bson.M{"_id": id}
	if expect.Status != "" {
		filter["status"] = string(expect.Status)
	}
	if expect.Unassigned {
		filter["service_provider"] = bson.M{"$in": bson.A{nil, ""}}
	}

	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		n, err := r.col.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrConflict
		}
		return domain.ErrRequestNotFound
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the service_requests collection.
func (r *RequestRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "homeowner", Value: 1}}},
		{Keys: bson.D{{Key: "service_provider", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// requestDoc is the persisted shape of a service request. Monetary and
// duration values are Decimal128 so they round-trip without float drift, and
// timestamps are ISO-8601 strings, matching the store's wire contract.
type requestDoc struct {
	ID              string                `bson:"_id"`
	Homeowner       string                `bson:"homeowner"`
	ServiceProvider string                `bson:"service_provider,omitempty"`
	ServiceType     string                `bson:"service_type"`
	Priority        string                `bson:"priority"`
	Description     string                `bson:"description"`
	PreferredDate   string                `bson:"preferred_date,omitempty"`
	StartDate       string                `bson:"start_date,omitempty"`
	Cost            *primitive.Decimal128 `bson:"cost,omitempty"`
	Status          string                `bson:"status"`
	Duration        *primitive.Decimal128 `bson:"duration,omitempty"`
	Rating          *int                  `bson:"rating,omitempty"`
	CreatedAt       string                `bson:"created_at"`
	UpdatedAt       string                `bson:"updated_at"`
}

func toDoc(req *domain.ServiceRequest) (*requestDoc, error) {
	doc := &requestDoc{
		ID:              req.ID,
		Homeowner:       req.Homeowner,
		ServiceProvider: req.ServiceProvider,
		ServiceType:     req.ServiceType,
		Priority:        req.Priority,
		Description:     req.Description,
		Status:          string(req.Status),
		Rating:          req.Rating,
		CreatedAt:       formatTime(req.CreatedAt),
		UpdatedAt:       formatTime(req.UpdatedAt),
	}
	if req.PreferredDate != nil {
		doc.PreferredDate = formatTime(*req.PreferredDate)
	}
	if req.StartDate != nil {
		doc.StartDate = formatTime(*req.StartDate)
	}
	if req.Cost != nil {
		dec, err := decimalFromFloat(*req.Cost)
		if err != nil {
			return nil, err
		}
		doc.Cost = &dec
	}
	if req.Duration != nil {
		dec, err := decimalFromFloat(*req.Duration)
		if err != nil {
			return nil, err
		}
		doc.Duration = &dec
	}
	return doc, nil
}

func fromDoc(doc *requestDoc) (*domain.ServiceRequest, error) {
	req := &domain.ServiceRequest{
		ID:              doc.ID,
		Homeowner:       doc.Homeowner,
		ServiceProvider: doc.ServiceProvider,
		ServiceType:     doc.ServiceType,
		Priority:        doc.Priority,
		Description:     doc.Description,
		Status:          domain.RequestStatus(doc.Status),
		Rating:          doc.Rating,
	}

	var err error
	if req.CreatedAt, err = parseTime(doc.CreatedAt); err != nil {
		return nil, fmt.Errorf("decode created_at: %w", err)
	}
	if req.UpdatedAt, err = parseTime(doc.UpdatedAt); err != nil {
		return nil, fmt.Errorf("decode updated_at: %w", err)
	}
	if doc.PreferredDate != "" {
		t, err := parseTime(doc.PreferredDate)
		if err != nil {
			return nil, fmt.Errorf("decode preferred_date: %w", err)
		}
		req.PreferredDate = &t
	}
	if doc.StartDate != "" {
		t, err := parseTime(doc.StartDate)
		if err != nil {
			return nil, fmt.Errorf("decode start_date: %w", err)
		}
		req.StartDate = &t
	}
	if doc.Cost != nil {
		v, err := floatFromDecimal(*doc.Cost)
		if err != nil {
			return nil, fmt.Errorf("decode cost: %w", err)
		}
		req.Cost = &v
	}
	if doc.Duration != nil {
		v, err := floatFromDecimal(*doc.Duration)
		if err != nil {
			return nil, fmt.Errorf("decode duration: %w", err)
		}
		req.Duration = &v
	}
	return req, nil
}
