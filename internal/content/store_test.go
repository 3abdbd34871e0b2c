package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedPortfolio(t *testing.T) {
	t.Parallel()

	store, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Creative Technologist", store.Personal().Role)
	assert.Equal(t, "Musthak", store.Personal().ShortName)
	require.Len(t, store.Skills(), 3)
	assert.Equal(t, "Design", store.Skills()[0].Category)
	require.Len(t, store.Projects(), 5)
	assert.Equal(t, "p1", store.Projects()[0].ID)
	assert.Contains(t, store.Assistant().Greeting, "AI Assistant")
}

func TestProjectLookupReturnsCopy(t *testing.T) {
	t.Parallel()

	store, err := Load("")
	require.NoError(t, err)

	p, ok := store.Project("p4")
	require.True(t, ok)
	assert.Equal(t, "HR AI Agent", p.Title)
	require.NotNil(t, p.Details)
	assert.Equal(t, "code", p.Details.Type)

	p.Technologies[0] = "mutated"
	again, _ := store.Project("p4")
	assert.Equal(t, "Python", again.Technologies[0])

	_, ok = store.Project("missing")
	assert.False(t, ok)
}

func TestParseRejectsInvalidContent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "personal: {role: x}",
			wantErr: "personal.name is required",
		},
		{
			name: "duplicate project id",
			yaml: `personal: {name: A B}
projects:
  - {id: p1, category: UX/UI Design}
  - {id: p1, category: UX/UI Design}`,
			wantErr: "duplicate project id",
		},
		{
			name: "unknown category",
			yaml: `personal: {name: A B}
projects:
  - {id: p1, category: Cooking}`,
			wantErr: "unknown category",
		},
		{
			name:    "malformed yaml",
			yaml:    "personal: [",
			wantErr: "failed to parse content",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tc.yaml))
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestParseDerivesShortName(t *testing.T) {
	t.Parallel()

	store, err := Parse([]byte("personal: {name: Ada Lovelace}"))
	require.NoError(t, err)
	assert.Equal(t, "Ada", store.Personal().ShortName)
}
