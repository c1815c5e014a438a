//go:build integration
// +build integration

package db_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/adapters/db"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/domain"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/internal/core/ports"
	"github.com/WOLFIEEEE/MYDV-Preview-sub012/test/helpers"
)

type StockRepositorySuite struct {
	suite.Suite
	testDB *helpers.TestDB
	repo   ports.StockRepository
	ctx    context.Context
}

func (s *StockRepositorySuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.repo = db.NewStockRepository(s.testDB.Database, helpers.TestLogger())
	s.ctx = context.Background()
}

func (s *StockRepositorySuite) SetupTest() {
	// Clear data before each test
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
}

func (s *StockRepositorySuite) TestSave() {
	item := helpers.CreateTestStockItem()

	err := s.repo.Save(s.ctx, item)
	s.NoError(err)
	s.NotZero(item.CreatedAt)

	saved, err := s.repo.FindByID(s.ctx, item.StockID, item.DealerID)
	s.NoError(err)
	s.Require().NotNil(saved)
	helpers.CompareStockItems(s.T(), item, saved)
	s.Equal(item.Registration, saved.Registration)
	s.Equal(item.Year, saved.Year)
	s.Equal(item.Mileage, saved.Mileage)
}

func (s *StockRepositorySuite) TestSave_UpsertsOnConflict() {
	item := helpers.CreateTestStockItem()
	s.NoError(s.repo.Save(s.ctx, item))

	// A second save with the same key must update, not duplicate
	item.ForecourtPrice = decimal.NewFromInt(16995)
	item.Mileage = 35000
	s.NoError(s.repo.Save(s.ctx, item))

	count, err := s.repo.Count(s.ctx, item.DealerID)
	s.NoError(err)
	s.Equal(int64(1), count)

	saved, err := s.repo.FindByID(s.ctx, item.StockID, item.DealerID)
	s.NoError(err)
	s.Require().NotNil(saved)
	s.True(decimal.NewFromInt(16995).Equal(saved.ForecourtPrice))
	s.Equal(35000, saved.Mileage)
}

func (s *StockRepositorySuite) TestSaveBatch() {
	items := helpers.CreateTestStockItems(5)

	err := s.repo.SaveBatch(s.ctx, items)
	s.NoError(err)

	for _, item := range items {
		saved, err := s.repo.FindByID(s.ctx, item.StockID, item.DealerID)
		s.NoError(err)
		s.Require().NotNil(saved)
		s.Equal(item.Make, saved.Make)
	}

	count, err := s.repo.Count(s.ctx, items[0].DealerID)
	s.NoError(err)
	s.Equal(int64(5), count)
}

func (s *StockRepositorySuite) TestUpdate() {
	item := helpers.CreateTestStockItem()
	s.NoError(s.repo.Save(s.ctx, item))

	item.Colour = "Deep Black Pearl"
	item.ForecourtPrice = decimal.NewFromInt(17495)
	item.Notes = "price reduced"

	err := s.repo.Update(s.ctx, item)
	s.NoError(err)

	updated, err := s.repo.FindByID(s.ctx, item.StockID, item.DealerID)
	s.NoError(err)
	s.Require().NotNil(updated)
	s.Equal("Deep Black Pearl", updated.Colour)
	s.True(decimal.NewFromInt(17495).Equal(updated.ForecourtPrice))
	s.Equal("price reduced", updated.Notes)
	s.True(updated.UpdatedAt.After(updated.CreatedAt))
}

func (s *StockRepositorySuite) TestUpdate_NotFound() {
	item := helpers.CreateTestStockItem(func(i *domain.StockItem) {
		i.StockID = "STK-MISSING"
	})

	err := s.repo.Update(s.ctx, item)
	s.Error(err)
	s.Contains(err.Error(), "stock item not found")
}

func (s *StockRepositorySuite) TestFindByID() {
	s.Run("existing_item", func() {
		item := helpers.CreateTestStockItem()
		s.NoError(s.repo.Save(s.ctx, item))

		found, err := s.repo.FindByID(s.ctx, item.StockID, item.DealerID)
		s.NoError(err)
		s.Require().NotNil(found)
		s.Equal(item.StockID, found.StockID)
		s.Equal(item.DealerID, found.DealerID)
	})

	s.Run("non_existent_item", func() {
		found, err := s.repo.FindByID(s.ctx, "STK-NOPE", "dealer-1")
		s.NoError(err)
		s.Nil(found)
	})

	s.Run("wrong_dealer", func() {
		item := helpers.CreateTestStockItem(func(i *domain.StockItem) {
			i.StockID = "STK-SCOPED"
		})
		s.NoError(s.repo.Save(s.ctx, item))

		found, err := s.repo.FindByID(s.ctx, "STK-SCOPED", "dealer-2")
		s.NoError(err)
		s.Nil(found)
	})

	s.Run("soft_deleted_item", func() {
		item := helpers.CreateTestStockItem(func(i *domain.StockItem) {
			i.StockID = "STK-GONE"
		})
		s.NoError(s.repo.Save(s.ctx, item))
		s.NoError(s.repo.SoftDelete(s.ctx, item.StockID, item.DealerID))

		found, err := s.repo.FindByID(s.ctx, item.StockID, item.DealerID)
		s.NoError(err)
		s.Nil(found)
	})
}

func (s *StockRepositorySuite) TestDelete() {
	item := helpers.CreateTestStockItem()
	s.NoError(s.repo.Save(s.ctx, item))

	exists, err := s.repo.Exists(s.ctx, item.StockID, item.DealerID)
	s.NoError(err)
	s.True(exists)

	err = s.repo.Delete(s.ctx, item.StockID, item.DealerID)
	s.NoError(err)

	exists, err = s.repo.Exists(s.ctx, item.StockID, item.DealerID)
	s.NoError(err)
	s.False(exists)

	// Deleting again reports not found
	err = s.repo.Delete(s.ctx, item.StockID, item.DealerID)
	s.Error(err)
	s.Contains(err.Error(), "stock item not found")
}

func (s *StockRepositorySuite) TestSoftDelete() {
	item := helpers.CreateTestStockItem()
	s.NoError(s.repo.Save(s.ctx, item))

	s.NoError(s.repo.SoftDelete(s.ctx, item.StockID, item.DealerID))

	exists, err := s.repo.Exists(s.ctx, item.StockID, item.DealerID)
	s.NoError(err)
	s.False(exists)

	// Already soft-deleted rows are not matched a second time
	err = s.repo.SoftDelete(s.ctx, item.StockID, item.DealerID)
	s.Error(err)
	s.Contains(err.Error(), "stock item not found")
}

func (s *StockRepositorySuite) TestCount_ScopedByDealer() {
	for i := 0; i < 3; i++ {
		item := helpers.CreateTestStockItem(func(it *domain.StockItem) {
			it.StockID = fmt.Sprintf("STK-A%d", i)
		})
		s.NoError(s.repo.Save(s.ctx, item))
	}
	other := helpers.CreateTestStockItem(func(it *domain.StockItem) {
		it.StockID = "STK-B1"
		it.DealerID = "dealer-2"
	})
	s.NoError(s.repo.Save(s.ctx, other))

	count, err := s.repo.Count(s.ctx, "dealer-1")
	s.NoError(err)
	s.Equal(int64(3), count)

	total, err := s.repo.Count(s.ctx, "")
	s.NoError(err)
	s.Equal(int64(4), total)
}

func TestStockRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(StockRepositorySuite))
}
