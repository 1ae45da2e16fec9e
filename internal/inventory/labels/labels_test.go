package labels

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"

	"SIMAPRO-backend/internal/platform/apierr"
)

type fakeStore struct {
	rows []Row
	got  Filter
	err  error
}

func (f *fakeStore) Rows(_ context.Context, flt Filter) ([]Row, error) {
	f.got = flt
	return f.rows, f.err
}

var sample = []Row{
	{AssetCode: "AST000001", Name: "Projector, Epson", Category: "Elektronik", Location: "Ruang Rapat", Status: "available"},
	{AssetCode: "AST000002", Name: "Kursi \"Ergo\"", Category: "Furnitur", Location: "Gudang", Status: "under_repair"},
}

func TestExportUTF8WithBOM(t *testing.T) {
	svc := NewService(&fakeStore{rows: sample})
	var buf bytes.Buffer
	n, err := svc.Export(context.Background(), Filter{}, EncodingUTF8, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	out := buf.Bytes()
	require.True(t, bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}), "missing BOM")
	want := "asset_code,name,category,location,status\n" +
		"AST000001,\"Projector, Epson\",Elektronik,Ruang Rapat,available\n" +
		"AST000002,\"Kursi \"\"Ergo\"\"\",Furnitur,Gudang,under_repair\n"
	assert.Equal(t, want, string(out[3:]))
}

func TestExportShiftJIS(t *testing.T) {
	svc := NewService(&fakeStore{rows: []Row{{AssetCode: "AST000003", Name: "備品", Category: "事務", Location: "倉庫", Status: "available"}}})
	var buf bytes.Buffer
	_, err := svc.Export(context.Background(), Filter{}, EncodingSJIS, &buf)
	require.NoError(t, err)

	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(buf.Bytes())
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "AST000003,備品,事務,倉庫,available")
	assert.False(t, bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
}

func TestExportErrors(t *testing.T) {
	_, err := NewService(&fakeStore{}).Export(context.Background(), Filter{}, "latin1", &bytes.Buffer{})
	assert.True(t, apierr.Is(err, apierr.CodeInvalidArgument))

	_, err = NewService(&fakeStore{err: errors.New("db down")}).Export(context.Background(), Filter{}, "", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := &fakeStore{rows: sample}
	r := gin.New()
	NewHandler(NewService(st)).RegisterRoutes(r.Group("/staff"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/staff/assets/labels.csv?category=2&location=x", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "asset-labels.csv")
	require.NotNil(t, st.got.CategoryID)
	assert.Equal(t, uint64(2), *st.got.CategoryID)
	assert.Nil(t, st.got.LocationID)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/staff/assets/labels.csv?encoding=ebcdic", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
