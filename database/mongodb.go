package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/biosecret/go-tasks/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore là Store dùng MongoDB, email được bảo vệ bởi unique index
type MongoStore struct {
	client *mongo.Client
	users  *mongo.Collection
	tasks  *mongo.Collection
}

// OpenMongoDB kết nối MongoDB và tạo index nếu chưa có
func OpenMongoDB(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("you must set your 'MONGODB_URI' environmental variable")
	}
	if database == "" {
		database = "taskapp"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("cannot connect to MongoDB: %w", err)
	}
	log.Println("Connected to MongoDB successfully")

	db := client.Database(database)
	s := &MongoStore{
		client: client,
		users:  db.Collection("users"),
		tasks:  db.Collection("tasks"),
	}
	if err := s.createIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	return s, nil
}

func (s *MongoStore) createIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = s.tasks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "due_date", Value: 1}},
	})
	return err
}

// Close ngắt kết nối
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

// mongo lưu thời gian ở độ chính xác millisecond
func (s *MongoStore) CreateUser(ctx context.Context, u models.User) error {
	u.CreatedAt = u.CreatedAt.UTC().Truncate(time.Millisecond)
	u.UpdatedAt = u.UpdatedAt.UTC().Truncate(time.Millisecond)
	if _, err := s.users.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return models.User{}, notFound(err)
	}
	return u, nil
}

func (s *MongoStore) GetUserByID(ctx context.Context, id string) (models.User, error) {
	var u models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return models.User{}, notFound(err)
	}
	return u, nil
}

func (s *MongoStore) UpdateUserProfile(ctx context.Context, id string, patch models.ProfilePatch, updatedAt time.Time) (models.User, error) {
	set := bson.M{"updated_at": updatedAt.UTC()}
	if patch.DisplayName != nil {
		set["username"] = *patch.DisplayName
	}
	if patch.Address != nil {
		set["address"] = *patch.Address
	}
	if patch.PhoneNumber != nil {
		set["phone_number"] = *patch.PhoneNumber
	}

	var u models.User
	err := s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return models.User{}, notFound(err)
	}
	return u, nil
}

func (s *MongoStore) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	cursor, err := s.tasks.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}, {Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	for i := range tasks {
		tasks[i] = tasks[i].Normalize()
	}
	return tasks, nil
}

func (s *MongoStore) CreateTask(ctx context.Context, t models.Task) error {
	t.CreatedAt = t.CreatedAt.UTC().Truncate(time.Millisecond)
	t.UpdatedAt = t.UpdatedAt.UTC().Truncate(time.Millisecond)
	if _, err := s.tasks.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// UpdateTask dùng FindOneAndUpdate với filter {_id, user_id}
func (s *MongoStore) UpdateTask(ctx context.Context, userID, taskID string, ch models.TaskChanges, updatedAt time.Time) (models.Task, error) {
	set := bson.M{"updated_at": updatedAt.UTC()}
	if ch.Name != nil {
		set["name"] = *ch.Name
	}
	if ch.Description != nil {
		set["description"] = *ch.Description
	}
	if ch.DueDate != nil {
		set["due_date"] = *ch.DueDate
	}
	if ch.Status != nil {
		set["status"] = *ch.Status
	}
	if ch.Priority != nil {
		set["priority"] = *ch.Priority
	}

	var t models.Task
	err := s.tasks.FindOneAndUpdate(ctx,
		bson.M{"_id": taskID, "user_id": userID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&t)
	if err != nil {
		return models.Task{}, notFound(err)
	}
	return t.Normalize(), nil
}

func (s *MongoStore) DeleteTask(ctx context.Context, userID, taskID string) error {
	res, err := s.tasks.DeleteOne(ctx, bson.M{"_id": taskID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) NormalizeLegacyTasks(ctx context.Context) (int64, error) {
	var total int64
	replace := func(field, canonical string, aliases []string) error {
		if len(aliases) == 0 {
			return nil
		}
		res, err := s.tasks.UpdateMany(ctx,
			bson.M{field: bson.M{"$in": aliases}},
			bson.M{"$set": bson.M{field: canonical}},
		)
		if err != nil {
			return fmt.Errorf("normalize %s: %w", field, err)
		}
		total += res.ModifiedCount
		return nil
	}
	for _, st := range models.Statuses() {
		if err := replace("status", string(st), models.StatusAliases(st)); err != nil {
			return total, err
		}
	}
	for _, p := range models.Priorities() {
		if err := replace("priority", string(p), models.PriorityAliases(p)); err != nil {
			return total, err
		}
	}
	return total, nil
}
