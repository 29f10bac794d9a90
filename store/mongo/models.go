package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/xraph/grove"

	"github.com/xraph/festival/store"
)

// recordModel is one keyed record document.
type recordModel struct {
	grove.BaseModel `grove:"table:festival_records"`

	Key       string    `grove:"id,pk"      bson:"_id"`
	Kind      string    `grove:"kind"       bson:"kind"`
	Value     string    `grove:"value"      bson:"value"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
}

// toRecordDoc builds the replacement document for a staged write.
func toRecordDoc(w store.Write, at time.Time) bson.M {
	return bson.M{
		"_id":        w.Key,
		"kind":       store.KindOf(w.Key),
		"value":      string(w.Value),
		"updated_at": at,
	}
}
