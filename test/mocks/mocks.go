// test/mocks/mocks.go

// Package mocks contains generated mocks for the application's interfaces.
// To regenerate mocks, run `make mocks` from the root directory.
package mocks

//go:generate mockgen -source=../../internal/core/ports/stock_repository.go -destination=stock_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/stock_service.go -destination=stock_service_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/customer_repository.go -destination=customer_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/sale_details_repository.go -destination=sale_details_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/invoice_sync.go -destination=invoice_sync_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/postcode.go -destination=postcode_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/cache.go -destination=cache_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/database.go -destination=database_mock.go -package=mocks
