package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareit/internal/domains/booking/model"
	gDto "shareit/shared/dto"
)

var testSubject = gDto.Filter{
	Field:    model.FieldBookerID,
	Value:    "booker-1",
	Operator: gDto.FilterOperatorEq,
	Table:    model.TableName,
}

// evalTemporal applies every temporal predicate in the group to a booking
// with the given start and end, mirroring how postgres would evaluate the
// generated comparisons.
func evalTemporal(t *testing.T, group gDto.FilterGroup, start, end time.Time) bool {
	t.Helper()

	for _, raw := range group.Filters {
		f, ok := raw.(gDto.Filter)
		require.True(t, ok)

		if f.Field != model.FieldStartDate && f.Field != model.FieldEndDate {
			continue
		}

		column := start
		if f.Field == model.FieldEndDate {
			column = end
		}

		bound, ok := f.Value.(time.Time)
		require.True(t, ok)

		var holds bool

		switch f.Operator {
		case gDto.FilterOperatorLess:
			holds = column.Before(bound)
		case gDto.FilterOperatorGreater:
			holds = column.After(bound)
		case gDto.FilterOperatorLessEq:
			holds = !column.After(bound)
		case gDto.FilterOperatorGreaterEq:
			holds = !column.Before(bound)
		default:
			t.Fatalf("unexpected operator %q on temporal filter", f.Operator)
		}

		if !holds {
			return false
		}
	}

	return true
}

func TestStateFilter_TemporalPartition(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		wantState model.State
	}{
		{
			name:      "ended before now is past",
			start:     now.Add(-2 * time.Hour),
			end:       now.Add(-time.Hour),
			wantState: model.StatePast,
		},
		{
			name:      "ending exactly now is still current",
			start:     now.Add(-time.Hour),
			end:       now,
			wantState: model.StateCurrent,
		},
		{
			name:      "spanning now is current",
			start:     now.Add(-time.Hour),
			end:       now.Add(time.Hour),
			wantState: model.StateCurrent,
		},
		{
			name:      "starting exactly now is already current",
			start:     now,
			end:       now.Add(time.Hour),
			wantState: model.StateCurrent,
		},
		{
			name:      "zero-length booking at now is current",
			start:     now,
			end:       now,
			wantState: model.StateCurrent,
		},
		{
			name:      "starting after now is future",
			start:     now.Add(time.Hour),
			end:       now.Add(2 * time.Hour),
			wantState: model.StateFuture,
		},
	}

	temporal := []model.State{model.StateCurrent, model.StatePast, model.StateFuture}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched := []model.State{}

			for _, state := range temporal {
				group := stateFilter(testSubject, state, now)
				if evalTemporal(t, group, tt.start, tt.end) {
					matched = append(matched, state)
				}
			}

			require.Len(t, matched, 1, "exactly one temporal state must hold")
			assert.Equal(t, tt.wantState, matched[0])
		})
	}
}

func TestStateFilter_GetWhereClause(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		state      model.State
		wantClause string
		wantArgs   map[string]any
	}{
		{
			name:       "all keeps only the subject",
			state:      model.StateAll,
			wantClause: "(bookings.booker_id = :booker_id)",
			wantArgs:   map[string]any{"booker_id": "booker-1"},
		},
		{
			name:       "current bounds are inclusive on both sides",
			state:      model.StateCurrent,
			wantClause: "(bookings.booker_id = :booker_id AND bookings.start_date <= :now_start AND bookings.end_date >= :now_end)",
			wantArgs:   map[string]any{"booker_id": "booker-1", "now_start": now, "now_end": now},
		},
		{
			name:       "past is strictly before now",
			state:      model.StatePast,
			wantClause: "(bookings.booker_id = :booker_id AND bookings.end_date < :now)",
			wantArgs:   map[string]any{"booker_id": "booker-1", "now": now},
		},
		{
			name:       "future is strictly after now",
			state:      model.StateFuture,
			wantClause: "(bookings.booker_id = :booker_id AND bookings.start_date > :now)",
			wantArgs:   map[string]any{"booker_id": "booker-1", "now": now},
		},
		{
			name:       "waiting filters by status",
			state:      model.StateWaiting,
			wantClause: "(bookings.booker_id = :booker_id AND bookings.status = :status)",
			wantArgs:   map[string]any{"booker_id": "booker-1", "status": model.StatusWaiting},
		},
		{
			name:       "rejected filters by status",
			state:      model.StateRejected,
			wantClause: "(bookings.booker_id = :booker_id AND bookings.status = :status)",
			wantArgs:   map[string]any{"booker_id": "booker-1", "status": model.StatusRejected},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			group := stateFilter(testSubject, tt.state, now)

			clause, args := group.GetWhereClause()

			assert.Equal(t, tt.wantClause, clause)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
