package projects

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/capstone/internal/common"
	"github.com/dmitrijs2005/capstone/internal/server/models"
	"github.com/dmitrijs2005/capstone/internal/server/registry"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/entities"
	"github.com/dmitrijs2005/capstone/internal/server/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*SQLRepository, *entities.Repository) {
	t.Helper()
	tx := testdb.Tx(t, testdb.New(t, 1))
	reg := registry.Default()
	e := entities.NewRepository(tx, reg)

	ctx := context.Background()
	for _, id := range []int64{1, 2} {
		_, err := e.Insert(ctx, registry.User, id, entities.Attrs{"email": string(rune('a'+id)) + "@x.test"})
		require.NoError(t, err)
	}
	_, err := e.Insert(ctx, registry.Company, "Acme", nil)
	require.NoError(t, err)
	return NewSQLRepository(tx, reg), e
}

func TestProject_InsertLoad(t *testing.T) {
	ctx := context.Background()
	r, _ := setup(t)

	mentor := int64(1)
	desc := "build a rover"
	ok, err := r.InsertProject(ctx, &models.Project{
		ID: 10, Name: "Rover", Company: "Acme", Description: &desc, Mentor: &mentor,
		Visible: true, SkillsReq: []string{"c", "ros"},
	})
	require.NoError(t, err)
	require.True(t, ok)

	p, err := r.LoadProject(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, &models.Project{
		ID: 10, Name: "Rover", Company: "Acme", Description: &desc, Mentor: &mentor,
		Status: models.StatusSubmitted, Visible: true, SkillsReq: []string{"c", "ros"},
	}, p)

	ok, err = r.InsertProject(ctx, &models.Project{ID: 10, Company: "Acme"})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = r.AlterProject(ctx, 10, entities.Attrs{"status": "lost"})
	assert.Error(t, err)

	ok, err = r.AlterProject(ctx, 10, entities.Attrs{"status": string(models.StatusNeedsRevision)})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.AlterProject(ctx, 10, entities.Attrs{"status": models.StatusAccepted})
	require.NoError(t, err)
	assert.True(t, ok)
	p, err = r.LoadProject(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, p.Status)

	_, err = r.AlterProject(ctx, 10, entities.Attrs{"status": 3})
	assert.Error(t, err)
}

func TestProject_Finders(t *testing.T) {
	ctx := context.Background()
	r, e := setup(t)

	one, two := int64(1), int64(2)
	for _, p := range []*models.Project{
		{ID: 3, Company: "Acme", Sponsor: &one},
		{ID: 1, Company: "Acme", Mentor: &two},
		{ID: 2, Company: "Acme", Mentor: &one},
	} {
		_, err := r.InsertProject(ctx, p)
		require.NoError(t, err)
	}

	all, err := r.FindAllProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, all)

	managed, err := r.FindManagesProject(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, managed)

	_, err = r.FindProjectAssignedTeam(ctx, 2)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	for _, tid := range []int64{8, 5} {
		_, err := e.Insert(ctx, registry.Team, tid, entities.Attrs{"assigned_proj": 2})
		require.NoError(t, err)
	}
	tid, err := r.FindProjectAssignedTeam(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), tid)
}

func TestFindManagesProject_Query(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT proj_id FROM projects\s+WHERE mentor = \$1 OR sponsor = \$1 OR advisor = \$1`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"proj_id"}).AddRow(int64(7)))

	ids, err := NewSQLRepository(db, registry.Default()).FindManagesProject(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}
