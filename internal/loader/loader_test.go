package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/vendor-price-comparison/internal/config"
)

func TestLoadKeepsInputOrder(t *testing.T) {
	var files []File
	for i := 0; i < 12; i++ {
		files = append(files, File{
			Name: fmt.Sprintf("v%02d.csv", i),
			Data: []byte(fmt.Sprintf("品名,单价\nitem%d,%d\n", i, i+1)),
		})
	}

	inputs, err := New(config.CSVSettings{}, 3).Load(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, inputs, 12)

	for i, in := range inputs {
		require.NoError(t, in.Err)
		assert.Equal(t, fmt.Sprintf("v%02d.csv", i), in.Quotation.Source)
		require.Len(t, in.Quotation.Sheets, 1)
		assert.Equal(t, fmt.Sprintf("item%d", i), in.Quotation.Sheets[0].Cell(0, 0).String())
	}
}

func TestLoadReportsPerFileErrors(t *testing.T) {
	files := []File{
		{Name: "ok.csv", Data: []byte("品名,单价\nA,1\n")},
		{Name: "notes.pdf", Data: []byte("%PDF")},
		{Name: "empty.csv", Data: []byte("")},
		{Name: "broken.xlsx", Data: []byte("not a zip")},
	}

	inputs, err := New(config.CSVSettings{}, 2).Load(context.Background(), files)
	require.NoError(t, err)

	assert.NoError(t, inputs[0].Err)
	assert.ErrorContains(t, inputs[1].Err, "unsupported file type")
	assert.Error(t, inputs[2].Err)
	assert.Error(t, inputs[3].Err)
	assert.Equal(t, "notes.pdf", inputs[1].Quotation.Source)
}

func TestLoadFromDisk(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "a.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("品名,单价\nA,1\n"), 0o644))

	xlsxPath := filepath.Join(dir, "b.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"品名", "单价"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"B", 2}))
	require.NoError(t, f.SaveAs(xlsxPath))
	require.NoError(t, f.Close())

	inputs, err := New(config.CSVSettings{}, 0).Load(context.Background(), FromPaths([]string{csvPath, xlsxPath, filepath.Join(dir, "gone.csv")}))
	require.NoError(t, err)

	require.NoError(t, inputs[0].Err)
	require.NoError(t, inputs[1].Err)
	assert.Equal(t, "b.xlsx", inputs[1].Quotation.Source)
	assert.Equal(t, "B", inputs[1].Quotation.Sheets[0].Cell(0, 0).String())
	assert.Error(t, inputs[2].Err)
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(config.CSVSettings{}, 1).Load(ctx, []File{{Name: "a.csv", Data: []byte("a,b\n")}})
	assert.Error(t, err)
}
