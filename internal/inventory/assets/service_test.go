package assets

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SIMAPRO-backend/internal/platform/apierr"
	"SIMAPRO-backend/internal/platform/db"
)

// memStore は Browse の絞り込みを SQL と同じ意味で再現する
type memStore struct {
	assets     map[uint64]*Asset
	categories []Ref
	locations  []Ref
	nextID     uint64
	createErr  error
}

func newMemStore() *memStore {
	return &memStore{
		assets:     map[uint64]*Asset{},
		categories: []Ref{{ID: 1, Name: "Electronics"}, {ID: 2, Name: "Furniture"}},
		locations:  []Ref{{ID: 1, Name: "HQ"}, {ID: 2, Name: "Warehouse"}},
		nextID:     1,
	}
}

func (m *memStore) put(name, brand string, cat, loc uint64, st Status) *Asset {
	id := m.nextID
	m.nextID++
	a := &Asset{
		ID: id, AssetCode: fmt.Sprintf("AST%06d", id), Name: name, CategoryID: cat, LocationID: loc, Status: st,
		Category: &m.categories[cat-1], Location: &m.locations[loc-1],
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if brand != "" {
		a.Brand = &brand
	}
	m.assets[id] = a
	return a
}

func unescapeLike(s string) string {
	return strings.NewReplacer(`\\`, `\`, `\%`, `%`, `\_`, `_`).Replace(s)
}

func (m *memStore) Browse(_ context.Context, f BrowseFilters, limit, offset int) ([]Asset, int64, error) {
	needle := unescapeLike(f.Search)
	var hits []Asset
	for _, a := range m.assets {
		if a.Status != StatusAvailable {
			continue
		}
		if needle != "" {
			brand := ""
			if a.Brand != nil {
				brand = *a.Brand
			}
			if !strings.Contains(strings.ToLower(a.Name), needle) &&
				!strings.Contains(strings.ToLower(a.AssetCode), needle) &&
				!strings.Contains(strings.ToLower(brand), needle) {
				continue
			}
		}
		if f.CategoryID != nil && a.CategoryID != *f.CategoryID {
			continue
		}
		if f.LocationID != nil && a.LocationID != *f.LocationID {
			continue
		}
		hits = append(hits, *a)
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Name != hits[j].Name {
			return hits[i].Name < hits[j].Name
		}
		return hits[i].ID < hits[j].ID
	})
	total := int64(len(hits))
	if offset >= len(hits) {
		return []Asset{}, total, nil
	}
	end := offset + limit
	if end > len(hits) {
		end = len(hits)
	}
	return hits[offset:end], total, nil
}

func (m *memStore) GetByID(_ context.Context, id uint64) (*Asset, error) {
	a, ok := m.assets[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) Categories(context.Context) ([]Ref, error) { return m.categories, nil }
func (m *memStore) Locations(context.Context) ([]Ref, error)  { return m.locations, nil }

func (m *memStore) Create(_ context.Context, in CreateAssetRequest) (uint64, error) {
	if m.createErr != nil {
		return 0, m.createErr
	}
	st := in.Status
	if st == "" {
		st = StatusAvailable
	}
	a := m.put(in.Name, "", in.CategoryID, in.LocationID, st)
	a.Description = in.Description
	return a.ID, nil
}

func (m *memStore) ChangeStatus(_ context.Context, id uint64, to Status, fn func(Status) error) error {
	a, ok := m.assets[id]
	if !ok {
		return sql.ErrNoRows
	}
	if err := fn(a.Status); err != nil {
		return err
	}
	a.Status = to
	return nil
}

func TestBrowseFiltersAvailableAndSearches(t *testing.T) {
	m := newMemStore()
	m.put("Projector", "Epson", 1, 1, StatusAvailable)
	m.put("Laptop", "Lenovo", 1, 2, StatusAvailable)
	m.put("Projector Screen", "", 2, 1, StatusBorrowed)
	m.put("Chair", "IKEA", 2, 2, StatusDamaged)
	svc := NewService(m)

	res, err := svc.Browse(context.Background(), BrowseQuery{Search: "PROJ"})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Projector", res.Data[0].Name)
	assert.Equal(t, "PROJ", res.Filters.Search)
	assert.Len(t, res.Categories, 2)
	assert.Len(t, res.Locations, 2)

	// brand と asset_code でも一致する
	res, err = svc.Browse(context.Background(), BrowseQuery{Search: "lenovo"})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	res, err = svc.Browse(context.Background(), BrowseQuery{Search: "ast000001"})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)

	loc := uint64(2)
	res, err = svc.Browse(context.Background(), BrowseQuery{LocationID: &loc})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Laptop", res.Data[0].Name)
}

func TestBrowseWildcardIsLiteral(t *testing.T) {
	m := newMemStore()
	m.put("Cable 100% copper", "", 1, 1, StatusAvailable)
	m.put("Cable", "", 1, 1, StatusAvailable)
	svc := NewService(m)

	res, err := svc.Browse(context.Background(), BrowseQuery{Search: "%"})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Cable 100% copper", res.Data[0].Name)
}

func TestBrowsePagination(t *testing.T) {
	m := newMemStore()
	for i := 0; i < 26; i++ {
		m.put("Item "+string(rune('A'+i)), "", 1, 1, StatusAvailable)
	}
	svc := NewService(m)

	res, err := svc.Browse(context.Background(), BrowseQuery{Page: 3})
	require.NoError(t, err)
	assert.Len(t, res.Data, 2)
	assert.Equal(t, Meta{CurrentPage: 3, LastPage: 3, Total: 26, PerPage: 12}, res.Meta)
	assert.Equal(t, "Item Y", res.Data[0].Name)

	res, err = svc.Browse(context.Background(), BrowseQuery{Page: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Meta.CurrentPage)
	assert.Len(t, res.Data, 12)
}

func TestBrowseHugePageIsEmpty(t *testing.T) {
	m := newMemStore()
	m.put("Projector", "Epson", 1, 1, StatusAvailable)
	svc := NewService(m)

	res, err := svc.Browse(context.Background(), BrowseQuery{Page: 800000000000000000})
	require.NoError(t, err)
	assert.Empty(t, res.Data)
	assert.Equal(t, int64(1), res.Meta.Total)
	assert.Positive(t, res.Meta.CurrentPage)
}

func TestNewMetaEmpty(t *testing.T) {
	assert.Equal(t, Meta{CurrentPage: 1, LastPage: 1, Total: 0, PerPage: 12}, NewMeta(1, 0, 12))
}

func TestShowAnyStatusAndNotFound(t *testing.T) {
	m := newMemStore()
	a := m.put("Old Printer", "", 1, 1, StatusDeleted)
	svc := NewService(m)

	got, err := svc.Show(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDeleted, got.Status)

	_, err = svc.Show(context.Background(), 404)
	assert.True(t, apierr.Is(err, apierr.CodeNotFound))
}

func TestCreateValidatesAndSanitizes(t *testing.T) {
	m := newMemStore()
	svc := NewService(m)

	_, err := svc.Create(context.Background(), CreateAssetRequest{Status: StatusBorrowed})
	var api *apierr.APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, apierr.CodeValidation, api.Code)
	assert.Contains(t, api.Fields, "name")
	assert.Contains(t, api.Fields, "category_id")
	assert.Contains(t, api.Fields, "location_id")
	assert.Contains(t, api.Fields, "status")

	desc := "<b>4K</b> projector"
	got, err := svc.Create(context.Background(), CreateAssetRequest{Name: "Projector", CategoryID: 1, LocationID: 1, Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, got.Status)
	assert.Equal(t, "4K projector", *got.Description)

	m.createErr = &mysql.MySQLError{Number: db.ErNoReferenced}
	_, err = svc.Create(context.Background(), CreateAssetRequest{Name: "X", CategoryID: 9, LocationID: 1})
	assert.True(t, apierr.Is(err, apierr.CodeInvalidArgument))
}

func TestUpdateStatusGuardsLoans(t *testing.T) {
	m := newMemStore()
	onLoan := m.put("Camera", "", 1, 1, StatusBorrowed)
	idle := m.put("Tripod", "", 1, 1, StatusAvailable)
	svc := NewService(m)

	_, err := svc.UpdateStatus(context.Background(), idle.ID, StatusBorrowed)
	assert.True(t, apierr.Is(err, apierr.CodeInvalidTransition))

	_, err = svc.UpdateStatus(context.Background(), onLoan.ID, StatusDeleted)
	assert.True(t, apierr.Is(err, apierr.CodeInvalidTransition))
	assert.Equal(t, StatusBorrowed, m.assets[onLoan.ID].Status)

	got, err := svc.UpdateStatus(context.Background(), idle.ID, StatusDamaged)
	require.NoError(t, err)
	assert.Equal(t, StatusDamaged, got.Status)

	_, err = svc.UpdateStatus(context.Background(), idle.ID, Status("lost"))
	assert.True(t, apierr.Is(err, apierr.CodeValidation))

	_, err = svc.UpdateStatus(context.Background(), 99, StatusDamaged)
	assert.True(t, apierr.Is(err, apierr.CodeNotFound))
}

func TestHandlerBrowseAndShow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newMemStore()
	a := m.put("Projector", "Epson", 1, 1, StatusAvailable)

	r := gin.New()
	NewHandler(NewService(m)).RegisterPortalRoutes(r.Group("/portal"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/portal/assets?search=epson&category=abc", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"asset_code":"AST000001"`)
	assert.Contains(t, w.Body.String(), `"per_page":12`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/portal/assets/"+strconv.FormatUint(a.ID, 10), nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/portal/assets/77", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"NOT_FOUND"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/portal/assets/x", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
