//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"kinship/pkg/testutil/containers"
)

func TestPostgresStore(t *testing.T) {
	pg := containers.GetManager().GetPostgres(t)
	st := NewPostgresStore(pg.DB)
	require.NoError(t, st.EnsureSchema(context.Background()))

	suite.Run(t, &StoreSuite{newStore: func(t *testing.T) Store {
		require.NoError(t, pg.TruncateTables(context.Background(),
			"relationships", "person_religions", "person_addresses", "persons"))
		return st
	}})
}
