package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewRepositories(t *testing.T) {
	pool := &pgxpool.Pool{}

	assert.NotNil(t, NewScheduleRepository(pool))
	assert.NotNil(t, NewTicketRepository(pool))
	assert.NotNil(t, NewProofRepository(pool))
	assert.NotNil(t, NewCoinRepository(pool))
	assert.NotNil(t, NewDocumentRepository(pool))
	assert.NotNil(t, NewReferenceRepository(pool))
	assert.NotNil(t, NewTxManager(pool))
}

func TestTxFrom_emptyContext(t *testing.T) {
	assert.Nil(t, TxFrom(context.Background()))
}

func TestDailySequence(t *testing.T) {
	cases := []struct {
		name   string
		number string
		want   int
	}{
		{"no numbers issued yet", "", 0},
		{"first of the day", "TKT-20260830-00001", 1},
		{"survives gaps from deletes", "PAY-20260830-00017", 17},
		{"malformed suffix", "DOC-20260830-", 0},
		{"not a number at all", "garbage", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, dailySequence(tc.number))
		})
	}
}
