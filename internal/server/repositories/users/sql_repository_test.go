package users

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/capstone/internal/common"
	"github.com/dmitrijs2005/capstone/internal/server/models"
	"github.com/dmitrijs2005/capstone/internal/server/registry"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/entities"
	"github.com/dmitrijs2005/capstone/internal/server/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (*SQLRepository, *entities.Repository) {
	t.Helper()
	tx := testdb.Tx(t, testdb.New(t, 1))
	reg := registry.Default()
	return NewSQLRepository(tx, reg), entities.NewRepository(tx, reg)
}

func insertUser(t *testing.T, r *SQLRepository, id int64, email string) {
	t.Helper()
	ok, err := r.InsertUser(context.Background(), &models.User{ID: id, FName: "F", LName: "L", Email: email})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestUser_InsertLoadAlter(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)

	addr := "800 W Campbell Rd"
	ok, err := r.InsertUser(ctx, &models.User{ID: 1, FName: "Ada", LName: "Lovelace", Email: "ada@utd.edu", Address: &addr, IsUtd: true})
	require.NoError(t, err)
	require.True(t, ok)

	u, err := r.LoadUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, &models.User{ID: 1, FName: "Ada", LName: "Lovelace", Email: "ada@utd.edu", Address: &addr}, u)

	ok, err = r.AlterUser(ctx, 1, entities.Attrs{"fname": "Augusta", "is_employee": true})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.SetIsEmployee(ctx, 1, true)
	require.NoError(t, err)
	assert.True(t, ok)

	u, err = r.LoadUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Augusta", u.FName)
	assert.True(t, u.IsEmployee)
	assert.False(t, u.IsUtd)
}

func TestSearchUserByEmail(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)
	insertUser(t, r, 5, "five@utd.edu")

	id, err := r.SearchUserByEmail(ctx, "five@utd.edu")
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)

	_, err = r.SearchUserByEmail(ctx, "nobody@utd.edu")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestStudent_SkillsAndMembership(t *testing.T) {
	ctx := context.Background()
	r, e := newRepo(t)

	for _, id := range []int64{1, 2, 3} {
		insertUser(t, r, id, string(rune('a'+id))+"@utd.edu")
		ok, err := r.InsertUTDPersonnel(ctx, &models.UTDPersonnel{UID: id, UType: models.UTypeStudent})
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, err := e.Insert(ctx, registry.Team, 9, entities.Attrs{"name": "Nine"})
	require.NoError(t, err)
	require.True(t, ok)

	tid := int64(9)
	for _, id := range []int64{3, 1} {
		ok, err := r.InsertStudent(ctx, &models.Student{SUID: id, Major: "CS", MemberOf: &tid, Skills: []string{"sql", "go", "go"}})
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, err = r.InsertStudent(ctx, &models.Student{SUID: 2, Major: "EE"})
	require.NoError(t, err)
	require.True(t, ok)

	s, err := r.LoadStudent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sql"}, s.Skills)
	require.NotNil(t, s.MemberOf)
	assert.Equal(t, tid, *s.MemberOf)

	members, err := r.FindMembersOfTeam(ctx, tid)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, members)

	require.NoError(t, r.SetSkills(ctx, 1, []string{"rust"}))
	s, err = r.LoadStudent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"rust"}, s.Skills)

	none, err := r.FindMembersOfTeam(ctx, 404)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInsertUTDPersonnel_BadType(t *testing.T) {
	r, _ := newRepo(t)
	_, err := r.InsertUTDPersonnel(context.Background(), &models.UTDPersonnel{UID: 1, UType: "ADMIN"})
	assert.Error(t, err)
}

func TestEmployee_Roundtrip(t *testing.T) {
	ctx := context.Background()
	r, e := newRepo(t)

	insertUser(t, r, 1, "boss@acme.test")
	_, err := e.Insert(ctx, registry.Company, "Acme", nil)
	require.NoError(t, err)

	ok, err := r.InsertEmployee(ctx, &models.Employee{EUID: 1, WorksAt: "Acme", Password: "hash", OneTimePass: true})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.AlterEmployee(ctx, 1, entities.Attrs{"one_time_pass": false})
	require.NoError(t, err)
	require.True(t, ok)

	emp, err := r.LoadEmployee(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, &models.Employee{EUID: 1, WorksAt: "Acme", Password: "hash"}, emp)

	_, err = r.LoadFaculty(ctx, 1)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
