package domain

import "github.com/shopspring/decimal"

// Symbol — криптовалюта из каталога провайдера
type Symbol struct {
	Name   string `json:"name"`   // Bitcoin
	Ticker string `json:"symbol"` // BTC
}

// Quote — текущая цена монеты в базовой валюте
type Quote struct {
	Ticker string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// ExchangeRate — курс одной единицы базовой валюты в целевой валюте
type ExchangeRate struct {
	Currency string          `json:"currency"` // USD, BRL
	Rate     decimal.Decimal `json:"rate"`
}

// Price — цена монеты в конкретной валюте
type Price struct {
	Currency string          `json:"currency"`
	Value    decimal.Decimal `json:"price"`
}

// PricedResult — цены одной монеты во всех валютах.
// Первая запись всегда в базовой валюте, дальше в порядке курсов.
type PricedResult struct {
	Symbol *Symbol `json:"crypto_symbol"`
	Prices []Price `json:"prices"`
}
