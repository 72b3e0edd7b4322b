package batch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/redemptions/internal/core"
	"github.com/JonMunkholm/redemptions/internal/tabular"
)

// panicky panics on any table whose first header is "boom".
type panicky struct {
	next Normalizer
}

func (p panicky) Run(raw core.RawTable) (*core.CanonicalTable, *core.Report) {
	if len(raw.Headers) > 0 && raw.Headers[0] == "boom" {
		panic("exploded")
	}
	return p.next.Run(raw)
}

func newTestRunner(t *testing.T, in string) *Runner {
	t.Helper()
	return NewRunner(
		tabular.NewReader(0, []string{"N/A"}),
		panicky{next: core.New(core.DefaultOptions())},
		Options{OutputDir: filepath.Join(in, "check_headers_output"), Prefix: "corrected_"},
	)
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRunner_Discover(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"b.csv":           "x\n",
		"a.xlsx":          "",
		"notes.txt":       "",
		".hidden.csv":     "",
		"~$a.xlsx":        "",
		"corrected_c.csv": "x\n",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	writeFiles(t, filepath.Join(dir, "nested"), map[string]string{"deep.csv": "x\n"})

	r := newTestRunner(t, dir)
	got, err := r.Discover(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.xlsx"),
		filepath.Join(dir, "b.csv"),
		filepath.Join(dir, "corrected_c.csv"),
	}, got, "prefixed files are only skipped when input and output share a directory")

	same := NewRunner(nil, nil, Options{OutputDir: dir, Prefix: "corrected_"})
	got, err = same.Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.xlsx"), filepath.Join(dir, "b.csv")}, got)
}

func TestRunner_OutputPath(t *testing.T) {
	r := NewRunner(nil, nil, Options{OutputDir: "out", Prefix: "corrected_"})

	assert.Equal(t, filepath.Join("out", "corrected_march.csv"), r.OutputPath("in/march.csv"))
	assert.Equal(t, filepath.Join("out", "corrected_april.csv"), r.OutputPath("in/april.xlsx"))
}

func TestRunner_ProcessDir(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"1_good.csv":  "Promo Code,Qty,Sales Value,Date\nA,2,3,13/02/2023\nB,1,1.5,01/02/2023\n,,,05/02/2023\n",
		"2_empty.csv": "",
		"3_boom.csv":  "boom\n1\n",
		"4_good.csv":  "quantity,promotion_code,date\n1,C,01/02/2023\n2,D,03/04/2023\n",
	})

	r := newTestRunner(t, dir)
	summary, err := r.ProcessDir(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, summary.Files, 4)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 2, summary.Failed)

	empty := summary.Files[1]
	assert.ErrorContains(t, empty.Err, "empty file")
	assert.Equal(t, "FILE005", core.MapError(empty.Err).Code)
	require.NotNil(t, empty.UserError())
	assert.Equal(t, "FILE005", empty.UserError().User.Code)
	assert.ErrorIs(t, empty.UserError(), empty.Err)

	boom := summary.Files[2]
	assert.ErrorContains(t, boom.Err, "internal error: exploded")
	assert.Equal(t, "RUN002", core.MapError(boom.Err).Code)
	assert.Empty(t, boom.Output)

	first := summary.Files[0]
	require.True(t, first.OK())
	assert.Nil(t, first.UserError())
	assert.NotEmpty(t, first.RunID)
	assert.Equal(t, 1, first.Report.RowsRemoved)
	assert.Equal(t,
		"promotion_code,product_sku,product_ean,redemption_date,quantity,sales_value,currency,Qty\n"+
			"A,,,2023-02-13,,3.0,,2\n"+
			"B,,,2023-02-01,,1.5,,1\n",
		readFile(t, first.Output))

	// The second good file resolves its own dates; the first file's
	// convention is not carried over.
	last := summary.Files[3]
	require.True(t, last.OK())
	assert.Equal(t, core.ReasonDefault, last.Report.Dates[0].Reason)
	assert.Contains(t, readFile(t, last.Output), "C,,,2023-02-01,1,,")

	assert.NotEqual(t, first.RunID, last.RunID)
	assert.Error(t, summary.Err())
}

func TestRunner_ProcessDir_NoInput(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"readme.txt": "hi"})

	_, err := newTestRunner(t, dir).ProcessDir(context.Background(), dir)
	assert.ErrorContains(t, err, "no input files")
	assert.Equal(t, "FILE004", core.MapError(err).Code)
}

func TestRunner_ProcessFiles_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.csv": "promotion_code\nA\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := newTestRunner(t, dir).ProcessFiles(ctx, []string{filepath.Join(dir, "a.csv")})
	require.NoError(t, err)

	require.Len(t, summary.Files, 1)
	assert.ErrorIs(t, summary.Files[0].Err, context.Canceled)
	assert.Equal(t, "RUN001", core.MapError(summary.Files[0].Err).Code)

	_, statErr := os.Stat(filepath.Join(dir, "check_headers_output", "corrected_a.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunner_OutputIsStableUnderRerun(t *testing.T) {
	in := t.TempDir()
	writeFiles(t, in, map[string]string{
		"export.csv": "Promo Code,EAN,Order Date,Quantity,Value,Store\n" +
			"A,0040,01/02/2023,2.5,3,north\n" +
			"B,,13/02/2023,1,1.10,\n",
	})

	r := newTestRunner(t, in)
	first, err := r.ProcessDir(context.Background(), in)
	require.NoError(t, err)
	require.NoError(t, first.Err())
	firstOut := readFile(t, first.Files[0].Output)

	// Feed the normalized output back in as a new export.
	again := t.TempDir()
	writeFiles(t, again, map[string]string{"export.csv": firstOut})

	second, err := newTestRunner(t, again).ProcessDir(context.Background(), again)
	require.NoError(t, err)
	require.NoError(t, second.Err())

	assert.Equal(t, firstOut, readFile(t, second.Files[0].Output))
	assert.True(t, strings.HasPrefix(firstOut, "promotion_code,product_sku,product_ean,redemption_date,"))
}
