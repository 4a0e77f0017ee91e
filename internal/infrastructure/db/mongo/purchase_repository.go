package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/coursehub/marketplace/internal/core/domain"
)

const collectionPurchases = "purchases"

// PurchaseRepository is the purchase ledger. The unique (user_id, course_id)
// index is what rejects a repeat purchase.
type PurchaseRepository struct {
	col *mongo.Collection
}

func NewPurchaseRepository(db *mongo.Database) *PurchaseRepository {
	return &PurchaseRepository{col: db.Collection(collectionPurchases)}
}

type mongoPurchase struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id"`
	CourseID  primitive.ObjectID `bson:"course_id"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (m mongoPurchase) toDomain() *domain.Purchase {
	return &domain.Purchase{
		ID:        m.ID.Hex(),
		UserID:    m.UserID.Hex(),
		CourseID:  m.CourseID.Hex(),
		CreatedAt: m.CreatedAt,
	}
}

func (r *PurchaseRepository) Create(ctx context.Context, p *domain.Purchase) (*domain.Purchase, error) {
	userID, err := primitive.ObjectIDFromHex(p.UserID)
	if err != nil {
		return nil, fmt.Errorf("insert purchase: invalid user id %q", p.UserID)
	}
	courseID, err := primitive.ObjectIDFromHex(p.CourseID)
	if err != nil {
		return nil, domain.ErrCourseNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoPurchase{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		CourseID:  courseID,
		CreatedAt: p.CreatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAlreadyPurchased
		}
		return nil, fmt.Errorf("insert purchase: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PurchaseRepository) FindByUser(ctx context.Context, userID string) ([]*domain.Purchase, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []*domain.Purchase{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": oid}, opts)
	if err != nil {
		return nil, fmt.Errorf("find purchases: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoPurchase
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode purchases: %w", err)
	}

	out := make([]*domain.Purchase, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *PurchaseRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "course_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
