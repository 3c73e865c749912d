package postgres

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// idScanner reads a CHAR(24) column into an ObjectID
type idScanner struct {
	dst *primitive.ObjectID
}

func scanID(dst *primitive.ObjectID) idScanner {
	return idScanner{dst: dst}
}

func (s idScanner) Scan(src any) error {
	raw, ok := src.(string)
	if !ok {
		return fmt.Errorf("unexpected id type %T", src)
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return err
	}
	*s.dst = id
	return nil
}

// nullableIDScanner reads a nullable CHAR(24) column
type nullableIDScanner struct {
	dst **primitive.ObjectID
}

func scanNullableID(dst **primitive.ObjectID) nullableIDScanner {
	return nullableIDScanner{dst: dst}
}

func (s nullableIDScanner) Scan(src any) error {
	if src == nil {
		*s.dst = nil
		return nil
	}
	var id primitive.ObjectID
	if err := scanID(&id).Scan(src); err != nil {
		return err
	}
	*s.dst = &id
	return nil
}

func nullableHex(id *primitive.ObjectID) any {
	if id == nil {
		return nil
	}
	return id.Hex()
}

func hexList(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}
