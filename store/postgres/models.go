package postgres

import (
	"fmt"
	"strconv"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/membership/record"
	"github.com/xraph/membership/types"
)

// ==================== Record models ====================

// recordModel stores the tick as decimal text since Postgres has no unsigned
// 64-bit integer type.
type recordModel struct {
	grove.BaseModel `grove:"table:membership_records"`

	Member         string    `grove:"member,pk"`
	ExpirationTick string    `grove:"expiration_tick"`
	CreatedAt      time.Time `grove:"created_at"`
	UpdatedAt      time.Time `grove:"updated_at"`
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
		return nil, fmt.Errorf("membership/postgres: decode expiration tick %q: %w", m.ExpirationTick, err)
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
