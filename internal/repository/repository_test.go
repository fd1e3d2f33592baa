package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Aidin1998/pricecatalog/internal/database/dbtest"
	"github.com/Aidin1998/pricecatalog/internal/models"
)

type RepositoryTestSuite struct {
	suite.Suite
	ctx        context.Context
	db         *gorm.DB
	brands     *BrandRepository
	categories *CategoryRepository
	products   *ProductRepository
}

func (s *RepositoryTestSuite) SetupTest() {
	logger := zaptest.NewLogger(s.T())
	s.ctx = context.Background()
	s.db = dbtest.Open(s.T(), true)
	s.brands = NewBrandRepository(s.db, logger)
	s.categories = NewCategoryRepository(s.db, logger)
	s.products = NewProductRepository(s.db, logger)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func (s *RepositoryTestSuite) category(name string) *models.Category {
	c, err := s.categories.FindByName(s.ctx, name)
	s.Require().NoError(err)
	return c
}

func (s *RepositoryTestSuite) TestCategoriesOrderedByID() {
	categories, err := s.categories.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(categories, 8)
	s.Equal("상의", categories[0].Name)
	s.Equal("액세서리", categories[7].Name)

	count, err := s.categories.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(8), count)
}

func (s *RepositoryTestSuite) TestFindByNameNotFound() {
	_, err := s.categories.FindByName(s.ctx, "신발")
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *RepositoryTestSuite) TestBrandExistsByName() {
	brands, err := s.brands.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(brands, 9)
	a := brands[0]

	exists, err := s.brands.ExistsByName(s.ctx, "A", 0)
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.brands.ExistsByName(s.ctx, "A", a.ID)
	s.Require().NoError(err)
	s.False(exists)
}

func (s *RepositoryTestSuite) TestMinPricesByCategories() {
	tops := s.category("상의")
	bags := s.category("가방")

	rows, err := s.products.MinPricesByCategories(s.ctx, []int64{tops.ID, bags.ID})
	s.Require().NoError(err)
	s.Require().Len(rows, 2)

	got := map[int64]decimal.Decimal{}
	for _, r := range rows {
		got[r.CategoryID] = r.MinPrice
	}
	s.True(decimal.NewFromInt(10000).Equal(got[tops.ID]))
	s.True(decimal.NewFromInt(2000).Equal(got[bags.ID]))

	rows, err = s.products.MinPricesByCategories(s.ctx, nil)
	s.Require().NoError(err)
	s.Empty(rows)
}

func (s *RepositoryTestSuite) TestFindByCategoryIDAndPriceNewestFirst() {
	sneakers := s.category("스니커즈")

	products, err := s.products.FindByCategoryIDAndPrice(s.ctx, sneakers.ID, decimal.NewFromInt(9000))
	s.Require().NoError(err)
	s.Require().Len(products, 2)
	s.Equal("G", products[0].Brand.Name)
	s.Equal("A", products[1].Brand.Name)
	s.Equal("스니커즈", products[0].Category.Name)
}

func (s *RepositoryTestSuite) TestCheapestPerBrandAndCategory() {
	rows, err := s.products.CheapestPerBrandAndCategory(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rows, 72)
	s.Equal("A", rows[0].BrandName)
	s.Equal("상의", rows[0].CategoryName)
	s.True(decimal.NewFromInt(11200).Equal(rows[0].Price))
	s.Equal("I", rows[71].BrandName)

	total := decimal.Zero
	for _, r := range rows {
		if r.BrandName == "D" {
			total = total.Add(r.Price)
		}
	}
	s.True(decimal.NewFromInt(36100).Equal(total))
}

func (s *RepositoryTestSuite) TestMinMaxByCategoryName() {
	minPrice, err := s.products.MinPriceByCategoryName(s.ctx, "상의")
	s.Require().NoError(err)
	s.True(minPrice.Valid)
	s.True(decimal.NewFromInt(10000).Equal(minPrice.Decimal))

	maxPrice, err := s.products.MaxPriceByCategoryName(s.ctx, "상의")
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(11400).Equal(maxPrice.Decimal))

	missing, err := s.products.MinPriceByCategoryName(s.ctx, "신발")
	s.Require().NoError(err)
	s.False(missing.Valid)
}

func (s *RepositoryTestSuite) TestFindByCategoryNameAndPriceOrderedByBrand() {
	products, err := s.products.FindByCategoryNameAndPrice(s.ctx, "상의", decimal.NewFromInt(11200))
	s.Require().NoError(err)
	s.Require().Len(products, 2)
	s.Equal("A", products[0].Brand.Name)
	s.Equal("F", products[1].Brand.Name)
}

func (s *RepositoryTestSuite) TestProductLifecycle() {
	brand := &models.Brand{Name: "Z"}
	s.Require().NoError(s.brands.Create(s.ctx, brand))
	hats := s.category("모자")

	product := &models.Product{BrandID: brand.ID, CategoryID: hats.ID, Price: decimal.NewFromInt(1200)}
	s.Require().NoError(s.products.Create(s.ctx, product))
	s.NotZero(product.ID)

	loaded, err := s.products.FindByIDForUpdate(s.ctx, product.ID)
	s.Require().NoError(err)
	s.Equal("Z", loaded.Brand.Name)
	s.Equal("모자", loaded.Category.Name)

	loaded.Price = decimal.NewFromInt(900)
	s.Require().NoError(s.products.Save(s.ctx, loaded))

	cheapest, err := s.products.MinPriceByCategoryName(s.ctx, "모자")
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(900).Equal(cheapest.Decimal))

	deleted, err := s.products.DeleteByBrand(s.ctx, brand.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), deleted)
	_, err = s.products.FindByID(s.ctx, product.ID)
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *RepositoryTestSuite) TestDeleteBrandCascadesProducts() {
	brands, err := s.brands.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(s.brands.Delete(s.ctx, &brands[0]))

	rows, err := s.products.CheapestPerBrandAndCategory(s.ctx)
	s.Require().NoError(err)
	s.Len(rows, 64)
	for _, r := range rows {
		s.NotEqual(brands[0].ID, r.BrandID)
	}
}

func (s *RepositoryTestSuite) TestWithTxRollsBack() {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.brands.WithTx(tx).Create(s.ctx, &models.Brand{Name: "Y"}); err != nil {
			return err
		}
		return gorm.ErrInvalidTransaction
	})
	s.Require().ErrorIs(err, gorm.ErrInvalidTransaction)

	exists, err := s.brands.ExistsByName(s.ctx, "Y", 0)
	s.Require().NoError(err)
	s.False(exists)
}

func setupPostgresMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestFindByIDForUpdateLocksRowOnPostgres(t *testing.T) {
	db, mock := setupPostgresMock(t)
	repo := NewProductRepository(db, zap.NewNop())
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE "products"."id" = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "price", "brand_id", "category_id"}).
			AddRow(7, "1500", 3, 4))
	mock.ExpectQuery(`SELECT \* FROM "brands"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(3, "C"))
	mock.ExpectQuery(`SELECT \* FROM "categories"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(4, "스니커즈"))

	product, err := repo.FindByIDForUpdate(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "C", product.Brand.Name)
	assert.Equal(t, "스니커즈", product.Category.Name)
	assert.True(t, decimal.NewFromInt(1500).Equal(product.Price))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBrandFindByIDForUpdateLocksRowOnPostgres(t *testing.T) {
	db, mock := setupPostgresMock(t)
	repo := NewBrandRepository(db, zap.NewNop())

	mock.ExpectQuery(`SELECT \* FROM "brands" WHERE "brands"."id" = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(3, "C"))

	brand, err := repo.FindByIDForUpdate(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "C", brand.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDForShareLocksRowOnPostgres(t *testing.T) {
	db, mock := setupPostgresMock(t)
	repo := NewBrandRepository(db, zap.NewNop())

	mock.ExpectQuery(`SELECT \* FROM "brands" WHERE "brands"."id" = \$1 .*FOR SHARE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(3, "C"))

	brand, err := repo.FindByIDForShare(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "C", brand.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
