package invites

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/capstone/internal/common"
	"github.com/dmitrijs2005/capstone/internal/server/models"
	"github.com/dmitrijs2005/capstone/internal/server/registry"
	"github.com/dmitrijs2005/capstone/internal/server/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvite_Roundtrip(t *testing.T) {
	ctx := context.Background()
	r := NewSQLRepository(testdb.Tx(t, testdb.New(t, 1)), registry.Default())

	exp := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	in := &models.Invite{ID: "inv-1", Expiration: exp, Company: "Acme", ManagerFName: "Wile", ManagerLName: "Coyote", ManagerEmail: "wile@acme.test"}
	ok, err := r.InsertInvite(ctx, in)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := r.LoadInvite(ctx, "inv-1")
	require.NoError(t, err)
	assert.True(t, exp.Equal(got.Expiration))
	got.Expiration = exp
	assert.Equal(t, in, got)

	ok, err = r.DeleteInvite(ctx, "inv-1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = r.LoadInvite(ctx, "inv-1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
