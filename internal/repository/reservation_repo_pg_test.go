package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewPGRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewPGRepository(pool)
	assert.NotNil(t, repo)
}
