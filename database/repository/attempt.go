package repository

import (
	"context"
	"time"

	"medibook/database"
	"medibook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AttemptRepository journals checkout attempts for operators: pipeline
// progress, verification outcome, and which amount source was shown.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.CheckoutAttempt) error
	GetByAttemptID(ctx context.Context, attemptID string) (*models.CheckoutAttempt, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*models.CheckoutAttempt, error)
	UpdateStatus(ctx context.Context, attemptID, status string, fields bson.M) error
	// StuckAfterOrder returns attempts that opened an order before the cutoff
	// but never reached a terminal status. The reconciliation worker sweeps
	// these against the core backend.
	StuckAfterOrder(ctx context.Context, cutoff time.Time) ([]models.CheckoutAttempt, error)
	CountFallbackResolutions(ctx context.Context, since time.Time) (int64, error)
}

// MongoAttemptRepo implements AttemptRepository on MongoDB.
type MongoAttemptRepo struct {
	coll *mongo.Collection
}

func NewMongoAttemptRepo() *MongoAttemptRepo {
	return &MongoAttemptRepo{coll: database.Collection("checkout_attempts")}
}

func (r *MongoAttemptRepo) Create(ctx context.Context, attempt *models.CheckoutAttempt) error {
	now := time.Now()
	attempt.CreatedAt = now
	attempt.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, attempt)
	return err
}

func (r *MongoAttemptRepo) GetByAttemptID(ctx context.Context, attemptID string) (*models.CheckoutAttempt, error) {
	var attempt models.CheckoutAttempt
	err := r.coll.FindOne(ctx, bson.M{"attempt_id": attemptID}).Decode(&attempt)
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *MongoAttemptRepo) GetByPaymentID(ctx context.Context, paymentID string) (*models.CheckoutAttempt, error) {
	var attempt models.CheckoutAttempt
	err := r.coll.FindOne(ctx, bson.M{"payment_id": paymentID}).Decode(&attempt)
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *MongoAttemptRepo) UpdateStatus(ctx context.Context, attemptID, status string, fields bson.M) error {
	set := bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}
	for k, v := range fields {
		set[k] = v
	}
	_, err := r.coll.UpdateOne(ctx, bson.M{"attempt_id": attemptID}, bson.M{"$set": set})
	return err
}

func (r *MongoAttemptRepo) StuckAfterOrder(ctx context.Context, cutoff time.Time) ([]models.CheckoutAttempt, error) {
	filter := bson.M{
		"status":     bson.M{"$in": []string{models.AttemptOrderOpened, models.AttemptVerified}},
		"updated_at": bson.M{"$lt": cutoff},
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.M{"updated_at": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var attempts []models.CheckoutAttempt
	if err := cursor.All(ctx, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

func (r *MongoAttemptRepo) CountFallbackResolutions(ctx context.Context, since time.Time) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{
		"amount_source": string(models.AmountSourceFallback),
		"updated_at":    bson.M{"$gte": since},
	})
}
