package erp

import (
	"context"
	"errors"
	"testing"

	"salesrep_sync/internal/salesrep"
	"salesrep_sync/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDirectory() StaticDirectory {
	return StaticDirectory{
		"101": {Email: "jane@example.com", FirstName: "Jane", LastName: "Doe", IsActive: true},
		"102": {Email: "nick@example.com", FirstName: "Nick", LastName: "Ramirez", IsActive: true},
		"103": {Email: "", FirstName: "Amazon", LastName: "Store", IsActive: true},
		"104": {Email: "gone@example.com", FirstName: "Old", LastName: "Rep", IsActive: false},
	}
}

func TestTextSource(t *testing.T) {
	src := NewTextSource(nil)

	a, err := src.OnChange(context.Background(), ChangeEvent{CustomerEmail: " a@b.com ", OldValue: "Jane Doe", NewValue: "Nick Ramirez"})
	require.NoError(t, err)
	assert.Equal(t, &salesrep.Assignment{CustomerEmail: "a@b.com", SalesRep: "Nick Ramirez"}, a)

	a, err = src.OnChange(context.Background(), ChangeEvent{CustomerEmail: "a@b.com", OldValue: "Jane Doe", NewValue: "Jane Doe "})
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestDirectoryChangeSource_ForwardsEmployeeEmail(t *testing.T) {
	filter, err := NewRepFilter("none", nil)
	require.NoError(t, err)
	src := NewDirectoryChangeSource(testDirectory(), filter, nil)

	a, err := src.OnChange(context.Background(), ChangeEvent{CustomerEmail: "a@b.com", OldValue: "101", NewValue: "102"})
	require.NoError(t, err)
	assert.Equal(t, &salesrep.Assignment{CustomerEmail: "a@b.com", SalesRep: "nick@example.com"}, a)
}

func TestDirectoryChangeSource_Skips(t *testing.T) {
	deny, err := NewRepFilter("deny", []string{"nick ramirez"})
	require.NoError(t, err)
	src := NewDirectoryChangeSource(testDirectory(), deny, nil)

	cases := map[string]ChangeEvent{
		"unchanged":        {CustomerEmail: "a@b.com", OldValue: "101", NewValue: "101"},
		"cleared":          {CustomerEmail: "a@b.com", OldValue: "101", NewValue: ""},
		"unknown id":       {CustomerEmail: "a@b.com", OldValue: "101", NewValue: "999"},
		"no email":         {CustomerEmail: "a@b.com", OldValue: "101", NewValue: "103"},
		"inactive":         {CustomerEmail: "a@b.com", OldValue: "101", NewValue: "104"},
		"excluded by name": {CustomerEmail: "a@b.com", OldValue: "101", NewValue: "102"},
	}
	for name, event := range cases {
		t.Run(name, func(t *testing.T) {
			a, err := src.OnChange(context.Background(), event)
			require.NoError(t, err)
			assert.Nil(t, a)
		})
	}
}

type failingDirectory struct{}

func (failingDirectory) LookupRep(context.Context, string) (*Employee, error) {
	return nil, apperr.Internal("db down")
}

func TestDirectoryChangeSource_PropagatesLookupErrors(t *testing.T) {
	src := NewDirectoryChangeSource(failingDirectory{}, RepFilter{strategy: FilterNone}, nil)

	_, err := src.OnChange(context.Background(), ChangeEvent{CustomerEmail: "a@b.com", NewValue: "101"})
	assert.True(t, apperr.Is(err, apperr.KindInternal))
}

func TestRepFilter(t *testing.T) {
	jane := Employee{ID: "101", Email: "jane@example.com", FirstName: "Jane", LastName: "Doe", IsActive: true}

	allow, err := NewRepFilter("allow", []string{"JANE@example.com"})
	require.NoError(t, err)
	ok, _ := allow.Allows(jane)
	assert.True(t, ok)
	ok, reason := allow.Allows(Employee{ID: "7", Email: "x@example.com", IsActive: true})
	assert.False(t, ok)
	assert.Equal(t, "not_allowed", reason)

	allowByID, err := NewRepFilter("allow", []string{"101"})
	require.NoError(t, err)
	ok, _ = allowByID.Allows(jane)
	assert.True(t, ok)

	deny, err := NewRepFilter("deny", []string{"On-Boarding", "Jane Doe"})
	require.NoError(t, err)
	ok, reason = deny.Allows(jane)
	assert.False(t, ok)
	assert.Equal(t, "excluded", reason)

	none, err := NewRepFilter("", nil)
	require.NoError(t, err)
	assert.Equal(t, FilterNone, none.Strategy())
	ok, reason = none.Allows(Employee{IsActive: false})
	assert.False(t, ok)
	assert.Equal(t, "inactive", reason)

	_, err = NewRepFilter("sometimes", nil)
	assert.True(t, apperr.Is(err, apperr.KindConfiguration))
}

type fakeRow struct {
	emp Employee
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*string) = r.emp.ID
	*dest[1].(*string) = r.emp.Email
	*dest[2].(*string) = r.emp.FirstName
	*dest[3].(*string) = r.emp.LastName
	*dest[4].(*bool) = r.emp.IsActive
	return nil
}

type fakeQuerier struct {
	row  fakeRow
	args []any
}

func (q *fakeQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	q.args = args
	return q.row
}

func TestPostgresDirectory(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{emp: Employee{ID: "101", Email: "jane@example.com", FirstName: "Jane", LastName: "Doe", IsActive: true}}}
	emp, err := NewPostgresDirectory(q).LookupRep(context.Background(), "101")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", emp.DisplayName())
	assert.Equal(t, []any{"101"}, q.args)

	_, err = NewPostgresDirectory(&fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}}).LookupRep(context.Background(), "9")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = NewPostgresDirectory(&fakeQuerier{row: fakeRow{err: errors.New("conn reset")}}).LookupRep(context.Background(), "9")
	assert.True(t, apperr.Is(err, apperr.KindInternal))
}

func TestNewSource(t *testing.T) {
	src, err := NewSource(erpConfig{source: "text"}, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &TextSource{}, src)

	_, err = NewSource(erpConfig{source: "directory"}, nil, nil)
	assert.True(t, apperr.Is(err, apperr.KindConfiguration))

	src, err = NewSource(erpConfig{source: "directory"}, testDirectory(), nil)
	require.NoError(t, err)
	assert.IsType(t, &DirectoryChangeSource{}, src)
}
