package mongo

import (
	"fmt"
	"strconv"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/membership/record"
	"github.com/xraph/membership/types"
)

// ==================== Record models ====================

// recordModel keys documents by member. BSON has no unsigned 64-bit type, so
// the tick is kept as decimal text.
type recordModel struct {
	grove.BaseModel `grove:"table:membership_records"`

	Member         string    `grove:"member,pk"       bson:"_id"`
	ExpirationTick string    `grove:"expiration_tick" bson:"expiration_tick"`
	CreatedAt      time.Time `grove:"created_at"      bson:"created_at"`
	UpdatedAt      time.Time `grove:"updated_at"      bson:"updated_at"`
}

func toRecordModel(r *record.Record) *recordModel {
	return &recordModel{
		Member:         r.Member.String(),
		ExpirationTick: strconv.FormatUint(r.ExpirationTick.Uint64(), 10),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func fromRecordModel(m *recordModel) (*record.Record, error) {
	exp, err := strconv.ParseUint(m.ExpirationTick, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("membership/mongo: decode expiration tick %q: %w", m.ExpirationTick, err)
	}
	return &record.Record{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Member:         types.Identity(m.Member),
		ExpirationTick: types.Tick(exp),
	}, nil
}
