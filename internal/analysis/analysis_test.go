package analysis

import (
	"errors"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/vendor-price-comparison/internal/config"
	"github.com/ginjaninja78/vendor-price-comparison/internal/supplier"
	"github.com/ginjaninja78/vendor-price-comparison/internal/table"
	"github.com/ginjaninja78/vendor-price-comparison/internal/types"
)

func csvQuotation(source string, grid [][]string) supplier.Quotation {
	return supplier.Quotation{Source: source, Sheets: []*table.Table{table.FromStrings(source, grid)}}
}

func scenario() []supplier.Quotation {
	return []supplier.Quotation{
		csvQuotation("A.csv", [][]string{{"序号", "品名", "单价", "数量"}, {"1", "Widget", "10", "2"}}),
		csvQuotation("B.csv", [][]string{{"序号", "品名", "单价", "数量"}, {"1", "Widget", "9", "1"}}),
		csvQuotation("C.csv", [][]string{{"序号", "品名", "单价", "数量"}, {"2", "Gadget", "5", "1"}}),
	}
}

func TestRunScenario(t *testing.T) {
	res, err := Run(scenario(), DefaultOptions())
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, []string{"A", "B", "C"}, res.Vendors)
	require.Len(t, res.Items, 2)

	assert.Equal(t, "Widget", res.Items[0].DisplayItem)
	assert.Equal(t, 9.0, res.Items[0].MinPrice)
	assert.Equal(t, "B", res.Items[0].WinningVendor)
	assert.Equal(t, 9.0, res.Items[0].Subtotal)

	assert.Equal(t, "Gadget", res.Items[1].DisplayItem)
	assert.Equal(t, "C", res.Items[1].WinningVendor)
	assert.Equal(t, 5.0, res.Items[1].Subtotal)

	a, ok := res.Wins.For("A")
	require.True(t, ok)
	assert.Empty(t, a.Items)
	assert.Equal(t, 14.0, res.Total())
	assert.Len(t, res.Reports, 3)
	assert.Empty(t, res.Warnings)
}

func TestRunIDsAreUnique(t *testing.T) {
	first, err := Run(scenario(), DefaultOptions())
	require.NoError(t, err)
	second, err := Run(scenario(), DefaultOptions())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestRunInsufficientVendors(t *testing.T) {
	res, err := Run(scenario()[:2], DefaultOptions())

	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientVendors))
	assert.True(t, eris.Is(err, ErrInsufficientVendors))
	assert.False(t, errors.Is(err, ErrNoVendorsParsed))

	var runErr *RunError
	require.True(t, errors.As(err, &runErr))
	assert.Equal(t, 2, runErr.Parsed)
	assert.Equal(t, 3, runErr.Required)
}

func TestRunRejectedVendorsDoNotCount(t *testing.T) {
	quotes := append(scenario()[:2], csvQuotation("bad.csv", [][]string{{"Color"}, {"red"}}))

	_, err := Run(quotes, DefaultOptions())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientVendors))
	var runErr *RunError
	require.True(t, errors.As(err, &runErr))
	require.Len(t, runErr.Warnings, 1)
	assert.Equal(t, types.WarnVendorRejected, runErr.Warnings[0].Kind)
	assert.Equal(t, "bad.csv", runErr.Warnings[0].Source)
}

func TestRunNoVendorsParsed(t *testing.T) {
	quotes := []supplier.Quotation{
		csvQuotation("x.csv", [][]string{{"Color"}, {"red"}}),
		csvQuotation("y.csv", [][]string{{"品名", "单价"}, {"Bolt", "0"}}),
	}

	_, err := Run(quotes, DefaultOptions())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoVendorsParsed))
	assert.False(t, errors.Is(err, ErrInsufficientVendors))
}

func TestRunPartialFailure(t *testing.T) {
	a := New(DefaultOptions())
	inputs := []Input{
		{Quotation: scenario()[0]},
		{Quotation: supplier.Quotation{Source: "broken.xlsx"}, Err: eris.New("xlsxparser: not a workbook")},
		{Quotation: scenario()[1]},
		{Quotation: csvQuotation("headers.csv", [][]string{{"foo", "bar"}, {"1", "2"}})},
		{Quotation: scenario()[2]},
	}

	res, err := a.Run(inputs)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, res.Vendors)
	require.Len(t, res.Reports, 5)
	assert.False(t, res.Reports[1].OK())
	assert.Contains(t, res.Reports[1].Error, "not a workbook")
	assert.Contains(t, res.Reports[3].Error, "required columns not found")
	assert.Len(t, res.Warnings, 2)
}

func TestRunRenamesDuplicateVendors(t *testing.T) {
	grid := [][]string{{"供应商：Acme"}, {"品名", "单价"}, {"Bolt", "3"}}
	quotes := []supplier.Quotation{
		csvQuotation("one.csv", grid),
		csvQuotation("two.csv", grid),
		csvQuotation("three.csv", grid),
	}

	res, err := Run(quotes, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"Acme", "Acme (2)", "Acme (3)"}, res.Vendors)
	assert.Equal(t, "Acme", res.Items[0].WinningVendor)
	require.Len(t, res.Warnings, 2)
	assert.Equal(t, types.WarnDuplicateVendor, res.Warnings[0].Kind)
}

func TestRunMinVendorsOption(t *testing.T) {
	opts := DefaultOptions()
	opts.MinVendors = 2

	res, err := Run(scenario()[:2], opts)
	require.NoError(t, err)
	assert.Len(t, res.Vendors, 2)
}

func TestRunDuplicatePolicyOption(t *testing.T) {
	quotes := scenario()
	quotes[0] = csvQuotation("A.csv", [][]string{
		{"序号", "品名", "单价"},
		{"1", "Widget", "1"},
		{"2", "widget", "20"},
	})

	opts := DefaultOptions()
	opts.DuplicatePolicy = supplier.KeepFirst
	res, err := Run(quotes, opts)
	require.NoError(t, err)
	assert.Equal(t, "A", res.Items[0].WinningVendor)

	opts.DuplicatePolicy = supplier.KeepLast
	res, err = Run(quotes, opts)
	require.NoError(t, err)
	assert.Equal(t, "B", res.Items[0].WinningVendor)
}

func TestRunKeepsFirstDuplicateByDefault(t *testing.T) {
	quotes := scenario()
	quotes[0] = csvQuotation("A.csv", [][]string{
		{"序号", "品名", "单价"},
		{"1", "Widget", "10"},
		{"2", "widget", "8"},
	})

	res, err := Run(quotes, DefaultOptions())
	require.NoError(t, err)

	price, ok := res.Items[0].PriceFor("A")
	require.True(t, ok)
	assert.Equal(t, 10.0, price)
	assert.Equal(t, "B", res.Items[0].WinningVendor)
	assert.Equal(t, 1, res.Reports[0].Stats.Duplicates)
}

func TestOptionsFromConfig(t *testing.T) {
	opts, err := OptionsFromConfig(config.AnalysisConfig{
		MinVendors:      2,
		DuplicatePolicy: "KEEP_FIRST",
		SampleRows:      8,
		NumericRatio:    0.7,
		VendorScanRows:  4,
		ExtraSynonyms:   map[string][]string{"item": {"规格型号"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, opts.MinVendors)
	assert.Equal(t, supplier.KeepFirst, opts.DuplicatePolicy)
	assert.Equal(t, 8, opts.Classifier.SampleRows)
	assert.InDelta(t, 0.7, opts.Classifier.NumericRatio, 1e-9)
	assert.Equal(t, 4, opts.VendorScanRows)
	assert.Equal(t, []string{"规格型号"}, opts.Classifier.ExtraSynonyms["item"])

	_, err = OptionsFromConfig(config.AnalysisConfig{DuplicatePolicy: "merge"})
	assert.Error(t, err)
}
