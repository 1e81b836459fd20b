package services_test

import (
	"bytes"
	"context"
	"testing"

	"lager/internal/models"
	"lager/internal/repositories"
	"lager/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportService_WriteCSV(t *testing.T) {
	repo := repositories.NewMemoryArticleRepository()
	ctx := context.Background()
	for _, a := range []models.Article{
		{EANCode: "3", Name: "Zucchini", Quantity: 4, Price: decPtr("1.5")},
		{EANCode: "1", Name: "Apple", Description: strPtr("Red, crisp"), Quantity: 10, Price: decPtr("0.99")},
		{EANCode: "2", Name: "Banana", Quantity: 0, Price: decPtr("2")},
		{EANCode: "4", Name: "Melon", Quantity: 1},
	} {
		a := a
		require.NoError(t, repo.Create(ctx, &a))
	}

	var buf bytes.Buffer
	require.NoError(t, services.NewExportService(repo).WriteCSV(ctx, &buf))

	expected := "EAN Code,Name,Description,Quantity,Price\n" +
		"1,Apple,\"Red, crisp\",10,0.99\n" +
		"4,Melon,,1,\n" +
		"3,Zucchini,,4,1.50\n"
	assert.Equal(t, expected, buf.String())
}

func TestExportService_EmptyInventory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, services.NewExportService(repositories.NewMemoryArticleRepository()).WriteCSV(context.Background(), &buf))
	assert.Equal(t, "EAN Code,Name,Description,Quantity,Price\n", buf.String())
}

func TestExportService_StoreUnavailable(t *testing.T) {
	var buf bytes.Buffer
	err := services.NewExportService(repositories.NewGORMArticleRepository(nil)).WriteCSV(context.Background(), &buf)
	assert.ErrorIs(t, err, services.ErrStoreUnavailable)
	assert.Empty(t, buf.String())
}
