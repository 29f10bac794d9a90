package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/festival/store"
)

// recordModel is one keyed record. An empty Value is a tombstone: the
// record reads as absent.
type recordModel struct {
	grove.BaseModel `grove:"table:festival_records"`

	Key       string    `grove:"record_key,pk"`
	Kind      string    `grove:"kind"`
	Value     string    `grove:"value"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toRecordModels(writes []store.Write, at time.Time) []recordModel {
	models := make([]recordModel, len(writes))
	for i, w := range writes {
		models[i] = recordModel{
			Key:       w.Key,
			Kind:      store.KindOf(w.Key),
			Value:     string(w.Value),
			UpdatedAt: at,
		}
	}
	return models
}
