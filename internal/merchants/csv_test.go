package merchants

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/money-manager/txnparse/internal/model"
)

func TestRoundTrip(t *testing.T) {
	merchants := []model.Merchant{
		{Name: "Zomato", Category: "Food & Dining"},
		{Name: "Domino's", Category: "Food & Dining", Aliases: []string{"dominos", "dominos pizza"}},
	}

	var buf bytes.Buffer
	err := WriteCatalog(&buf, merchants)
	require.NoError(t, err)

	got, err := ReadCatalog(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, merchants[0].Name, got[0].Name)
	assert.Nil(t, got[0].Aliases)
	assert.Equal(t, merchants[1], got[1])
}

func TestDefaultCatalogRoundTrip(t *testing.T) {
	catalog := DefaultCatalog()

	var buf bytes.Buffer
	require.NoError(t, WriteCatalog(&buf, catalog))

	got, err := ReadCatalog(&buf)
	require.NoError(t, err)
	assert.Equal(t, catalog, got)
}

func TestReadCatalog_Empty(t *testing.T) {
	got, err := ReadCatalog(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadCatalog_BadRow(t *testing.T) {
	_, err := ReadCatalog(strings.NewReader("name,category,aliases\n,Food,\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")

	_, err = ReadCatalog(strings.NewReader("name,category,aliases\nZomato,Food\n"))
	require.Error(t, err)
}

func TestDefaultCatalog(t *testing.T) {
	for _, m := range DefaultCatalog() {
		assert.NotEmpty(t, m.Name)
		assert.NotEmpty(t, m.Category, "merchant %s missing category", m.Name)
	}
}
