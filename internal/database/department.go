package repository

import (
	"AtendeBot/entity"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetDepartment returns the department with the given name, or (nil, nil).
func (m *MongoDB) GetDepartment(ctx context.Context, name string) (*entity.Department, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(departmentsCollection)
	filter := bson.D{{Key: "name", Value: name}}

	var dept entity.Department
	err = collection.FindOne(ctx, filter).Decode(&dept)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, m.findError(err)
	}
	return &dept, nil
}

// ListDepartments returns all departments ordered by display_order.
func (m *MongoDB) ListDepartments(ctx context.Context) ([]entity.Department, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(departmentsCollection)
	opts := options.Find().SetSort(bson.D{{Key: "display_order", Value: 1}})

	cursor, err := collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find departments: %w", err)
	}
	defer cursor.Close(ctx)

	var depts []entity.Department
	if err = cursor.All(ctx, &depts); err != nil {
		return nil, fmt.Errorf("mongodb decode departments: %w", err)
	}
	return depts, nil
}

// CreateDepartment inserts a new routing destination.
func (m *MongoDB) CreateDepartment(ctx context.Context, dept *entity.Department) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(departmentsCollection)
	_, err = collection.InsertOne(ctx, dept)
	if err != nil {
		return fmt.Errorf("mongodb insert department: %w", err)
	}
	return nil
}

// UpdateDepartment replaces the mutable fields of a department by id.
func (m *MongoDB) UpdateDepartment(ctx context.Context, id string, dept *entity.Department) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid department id: %w", err)
	}

	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(departmentsCollection)
	filter := bson.D{{Key: "_id", Value: oid}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: dept.Name},
		{Key: "icon", Value: dept.Icon},
		{Key: "type", Value: dept.Type},
		{Key: "phone", Value: dept.Phone},
		{Key: "prompt", Value: dept.Prompt},
		{Key: "display_order", Value: dept.DisplayOrder},
	}}}

	res, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongodb update department: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteDepartment removes a department by id.
func (m *MongoDB) DeleteDepartment(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid department id: %w", err)
	}

	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(departmentsCollection)
	_, err = collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("mongodb delete department: %w", err)
	}
	return nil
}

// SeedDepartments inserts the default routing destinations when the
// collection is empty.
func (m *MongoDB) SeedDepartments() error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(departmentsCollection)

	count, err := collection.CountDocuments(m.ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("mongodb count departments: %w", err)
	}
	if count > 0 {
		return nil
	}

	defaults := []interface{}{
		entity.Department{Name: "Vendas", Icon: "🛒", Type: entity.DeptTypeAI, DisplayOrder: 1},
		entity.Department{Name: "Suporte Técnico", Icon: "🔧", Type: entity.DeptTypeAI, DisplayOrder: 2},
		entity.Department{Name: "Financeiro", Icon: "💰", Type: entity.DeptTypeAI, DisplayOrder: 3},
		entity.Department{Name: "Projetos Customizados", Icon: "⚙️", Type: entity.DeptTypeHuman, DisplayOrder: 4},
	}

	_, err = collection.InsertMany(m.ctx, defaults)
	if err != nil {
		return fmt.Errorf("mongodb seed departments: %w", err)
	}

	// Department name is the routing key; enforce uniqueness.
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, err = collection.Indexes().CreateOne(m.ctx, index)
	if err != nil {
		return fmt.Errorf("mongodb create department index: %w", err)
	}
	return nil
}
