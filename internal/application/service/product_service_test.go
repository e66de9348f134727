package service

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sangkips/optica-api/internal/domain/entity"
)

func TestMove(t *testing.T) {
	base := []string{"a", "b", "c", "d"}
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"first to last", 0, 3, []string{"b", "c", "d", "a"}},
		{"last to first", 3, 0, []string{"d", "a", "b", "c"}},
		{"one step down", 1, 2, []string{"a", "c", "b", "d"}},
		{"one step up", 2, 1, []string{"a", "c", "b", "d"}},
		{"same index", 2, 2, []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Move(base, tt.from, tt.to)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Move() mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, []string{"a", "b", "c", "d"}, base, "input must not change")
		})
	}
}

func catalog(names ...string) []entity.Product {
	out := make([]entity.Product, len(names))
	for i, n := range names {
		out[i] = entity.Product{ID: uuid.New(), UserID: testOwner, Name: n, Position: i + 1}
	}
	return out
}

func TestProductService_Reorder(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo, newMemCache())
	products := catalog("Frame", "Lens", "Case", "Cloth")

	want := []uuid.UUID{products[1].ID, products[2].ID, products[3].ID, products[0].ID}
	repo.On("ListOrdered", mock.Anything).Return(products, nil).Once()
	repo.On("UpdatePositions", mock.Anything, want).Return(nil).Once()

	got, err := svc.Reorder(ownerCtx(), 0, 3)
	require.NoError(t, err)

	names := make([]string, len(got))
	for i, p := range got {
		names[i] = p.Name
		assert.Equal(t, i+1, p.Position)
	}
	assert.Equal(t, []string{"Lens", "Case", "Cloth", "Frame"}, names)
	repo.AssertExpectations(t)
}

func TestProductService_Reorder_OutOfRange(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo, newMemCache())

	repo.On("ListOrdered", mock.Anything).Return(catalog("Frame", "Lens"), nil).Once()

	_, err := svc.Reorder(ownerCtx(), 0, 2)
	requireStatus(t, err, http.StatusBadRequest)
	repo.AssertExpectations(t)
}

func TestProductService_Reorder_PersistFailure(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo, newMemCache())
	boom := errors.New("tx aborted")

	repo.On("ListOrdered", mock.Anything).Return(catalog("Frame", "Lens"), nil).Once()
	repo.On("UpdatePositions", mock.Anything, mock.Anything).Return(boom).Once()

	_, err := svc.Reorder(ownerCtx(), 1, 0)
	require.ErrorIs(t, err, boom)
	repo.AssertExpectations(t)
}

func TestProductService_CreateProduct_AppendsPosition(t *testing.T) {
	repo := new(MockProductRepository)
	cache := newMemCache()
	svc := NewProductService(repo, cache)

	repo.On("MaxPosition", mock.Anything).Return(7, nil).Once()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *entity.Product) bool {
		return p.Position == 8 && p.Name == "Frame" && p.UserID == testOwner
	})).Return(nil).Once()

	product, err := svc.CreateProduct(ownerCtx(), &CreateProductInput{Name: "  Frame ", Price: dec("450")})
	require.NoError(t, err)
	assert.Equal(t, 8, product.Position)
	assert.Equal(t, []string{dashboardPrefix(testOwner)}, cache.deleted)
	repo.AssertExpectations(t)
}

func TestProductService_CreateProduct_Validation(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo, newMemCache())

	_, err := svc.CreateProduct(ownerCtx(), &CreateProductInput{Name: " ", Price: dec("-1")})
	appErr := requireStatus(t, err, http.StatusUnprocessableEntity)
	assert.Len(t, appErr.Errors, 2)
	repo.AssertExpectations(t)
}

func TestDetectLayout(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want sheetLayout
	}{
		{
			name: "header on first row",
			rows: [][]string{{"Name", "Price"}, {"Frame", "450"}},
			want: sheetLayout{headerRow: 0, nameCol: 0, priceCol: 1},
		},
		{
			name: "french header below a title",
			rows: [][]string{{"Catalogue 2024"}, {"", "Prix", "Nom"}},
			want: sheetLayout{headerRow: 1, nameCol: 2, priceCol: 1},
		},
		{
			name: "no header",
			rows: [][]string{{"Frame", "450"}},
			want: sheetLayout{headerRow: -1, nameCol: 0, priceCol: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectLayout(tt.rows))
		})
	}
}

func TestProductService_ImportProducts(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Catalogue"},
		{"Nom", "Prix"},
		{"Frame", 450},
		{},
		{"Lens", "abc"},
		{"", "20"},
		{"Case", "12,5"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	repo := new(MockProductRepository)
	cache := newMemCache()
	svc := NewProductService(repo, cache)

	var created []entity.Product
	repo.On("MaxPosition", mock.Anything).Return(3, nil).Once()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Product")).
		Run(func(args mock.Arguments) {
			created = append(created, *args.Get(1).(*entity.Product))
		}).
		Return(nil).Twice()

	result, err := svc.ImportProducts(ownerCtx(), buf)
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalRows)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, []ImportRowError{
		{Row: 5, Field: "price", Message: `Invalid price "abc"`},
		{Row: 6, Field: "name", Message: "Name is required"},
	}, result.Errors)

	require.Len(t, created, 2)
	assert.Equal(t, "Frame", created[0].Name)
	assert.True(t, created[0].Price.Equal(dec("450")))
	assert.Equal(t, 4, created[0].Position)
	assert.Equal(t, "Case", created[1].Name)
	assert.True(t, created[1].Price.Equal(dec("12.5")))
	assert.Equal(t, 5, created[1].Position)

	assert.Equal(t, []string{dashboardPrefix(testOwner)}, cache.deleted)
	repo.AssertExpectations(t)
}

func TestProductService_ImportProducts_NotAWorkbook(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo, newMemCache())

	_, err := svc.ImportProducts(ownerCtx(), strings.NewReader("not a zip"))
	requireStatus(t, err, http.StatusBadRequest)
	repo.AssertExpectations(t)
}
