package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanvivo/price-dashboard/internal/types"
)

func testView() priceView {
	return priceView{
		Timestamp: "2024-05-01 10:00:00",
		Total:     3,
		Rows: []types.PriceRow{
			{ID: "p1", Sorte: "Pink | Kush", Kultivar: "K1", PharmacyID: "Apo", Price: decimal.RequireFromString("9.5"), Trend: "↑ +0.50€"},
			{ID: "p2", Sorte: "Amnesia", Kultivar: "K2", PharmacyID: "Apo", Price: decimal.RequireFromString("0.005"), Trend: types.TrendNewProduct},
		},
	}
}

func TestEUR(t *testing.T) {
	assert.Equal(t, "€9.50", eur(decimal.RequireFromString("9.5")))
	assert.Equal(t, "€12.34", eur(decimal.RequireFromString("12.335")))
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(&buf, outputTable, testView(), true))

	out := buf.String()
	assert.Contains(t, out, "Snapshot: 2024-05-01 10:00:00 (2 of 3 rows)")
	assert.Contains(t, out, "RECOMMENDED")
	assert.Contains(t, out, "€9.49")
	assert.Contains(t, out, "+0.50€")
}

func TestRenderTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(&buf, outputTable, priceView{Total: 3}, true))
	assert.Contains(t, buf.String(), "No products match")
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(&buf, outputJSON, testView(), true))

	var got jsonView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 3, got.Total)
	require.Len(t, got.Data, 2)
	assert.Equal(t, "p1", got.Data[0].ID)
	assert.Contains(t, buf.String(), `"Price (€/g)": 9.5`)
}

func TestPriceMarkdown(t *testing.T) {
	md, err := priceMarkdown(testView())
	require.NoError(t, err)

	assert.Contains(t, md, "# Prices on 2024-05-01 10:00:00")
	assert.Contains(t, md, "Showing **2** of 3 products.")
	assert.Contains(t, md, `| Pink \| Kush | K1 | Apo | €9.50 | €9.49 |`)
	assert.Contains(t, md, "| €0.01 | €0.00 | New |")
}

func TestRenderUnknownFormat(t *testing.T) {
	assert.Error(t, render(&bytes.Buffer{}, "yaml", testView(), true))
}
