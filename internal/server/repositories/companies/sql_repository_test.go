package companies

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/capstone/internal/server/models"
	"github.com/dmitrijs2005/capstone/internal/server/registry"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/entities"
	"github.com/dmitrijs2005/capstone/internal/server/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompany_Roundtrip(t *testing.T) {
	ctx := context.Background()
	tx := testdb.Tx(t, testdb.New(t, 1))
	reg := registry.Default()
	r := NewSQLRepository(tx, reg)
	e := entities.NewRepository(tx, reg)

	logo := "acme.png"
	ok, err := r.InsertCompany(ctx, &models.Company{Name: "Acme", Logo: &logo})
	require.NoError(t, err)
	require.True(t, ok)

	_, err = e.Insert(ctx, registry.User, 7, entities.Attrs{"email": "m@acme.test"})
	require.NoError(t, err)
	_, err = e.Insert(ctx, registry.Employee, 7, entities.Attrs{"works_at": "Acme"})
	require.NoError(t, err)

	ok, err = r.AlterCompany(ctx, "Acme", entities.Attrs{"manager": int64(7)})
	require.NoError(t, err)
	require.True(t, ok)

	c, err := r.LoadCompany(ctx, "Acme")
	require.NoError(t, err)
	mgr := int64(7)
	assert.Equal(t, &models.Company{Name: "Acme", Logo: &logo, Manager: &mgr}, c)

	staff, err := r.FindEmployees(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, staff)
}
