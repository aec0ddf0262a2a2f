//go:generate go run go.uber.org/mock/mockgen -source=coin.go -destination=../mocks/mock_coin_repository.go -package=mocks
package repositories

import (
	"coin-chat/domain"
	"coin-chat/errors"
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
)

// AllCoins is the search term listing the whole catalog by id.
const AllCoins = "@All"

// CoinPageSize is the number of coins per search page.
const CoinPageSize = 25

type ICoinRepository interface {
	PutCoin(coin domain.Coin) error
	GetCoin(id domain.CoinID) (domain.Coin, error)
	GetBySymbol(symbol string) (domain.Coin, error)
	GetByName(name string) (domain.Coin, error)
	Search(ctx context.Context, term string, page int) ([]domain.Coin, int, error)
}

// CoinRepository keeps coins in Badger and mirrors them in a Bluge index
// used for catalog search.
type CoinRepository struct {
	db    *badger.DB
	index *bluge.Writer
	log   *slog.Logger
}

func NewCoinRepository(db *badger.DB, index *bluge.Writer, log *slog.Logger) *CoinRepository {
	return &CoinRepository{db: db, index: index, log: log}
}

type DiskCoin struct {
	ID       int    `json:"id"`
	Symbol   string `json:"coin_symbol"`
	Name     string `json:"coin_name"`
	ImageURL string `json:"image_url"`
}

func coinKey(id domain.CoinID) []byte {
	return []byte(fmt.Sprintf("coin:%010d", id))
}

func coinSymbolKey(symbol string) []byte {
	return []byte("idx:coin:symbol:" + strings.ToLower(symbol))
}

func coinNameKey(name string) []byte {
	return []byte("idx:coin:name:" + strings.ToLower(name))
}

// PutCoin inserts or replaces a coin and its search document.
func (c *CoinRepository) PutCoin(coin domain.Coin) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		if err := setJSON(txn, coinKey(coin.ID), fromCoin(coin)); err != nil {
			return err
		}
		id := []byte(strconv.Itoa(int(coin.ID)))
		if err := txn.Set(coinSymbolKey(coin.Symbol), id); err != nil {
			return err
		}
		return txn.Set(coinNameKey(coin.Name), id)
	})
	if err != nil {
		return err
	}
	return c.indexCoin(coin)
}

// Reindex rebuilds the search documents from Badger, for instance when the
// index directory was wiped.
func (c *CoinRepository) Reindex() (int, error) {
	var coins []DiskCoin
	err := c.db.View(func(txn *badger.Txn) error {
		var err error
		coins, err = scanJSON[DiskCoin](txn, []byte("coin:"))
		return err
	})
	if err != nil {
		return 0, err
	}
	for _, coin := range coins {
		if err = c.indexCoin(toCoin(coin)); err != nil {
			return 0, err
		}
	}
	return len(coins), nil
}

func (c *CoinRepository) indexCoin(coin domain.Coin) error {
	doc := bluge.NewDocument(strconv.Itoa(int(coin.ID))).
		AddField(bluge.NewKeywordField("id", fmt.Sprintf("%010d", coin.ID)).Sortable()).
		AddField(bluge.NewKeywordField("symbol", strings.ToLower(coin.Symbol))).
		AddField(bluge.NewKeywordField("name", strings.ToLower(coin.Name)).Sortable())
	return c.index.Update(doc.ID(), doc)
}

func (c *CoinRepository) GetCoin(id domain.CoinID) (domain.Coin, error) {
	var disk DiskCoin
	err := c.db.View(func(txn *badger.Txn) error {
		found, err := getJSON(txn, coinKey(id), &disk)
		if err != nil {
			return err
		}
		if !found {
			return errors.ErrCoinNotFound
		}
		return nil
	})
	if err != nil {
		return domain.Coin{}, err
	}
	return toCoin(disk), nil
}

// GetBySymbol accepts "btc", "BTC" or "BTCUSDT".
func (c *CoinRepository) GetBySymbol(symbol string) (domain.Coin, error) {
	return c.getByIndex(coinSymbolKey(domain.NormalizeSymbol(symbol)))
}

// GetByName matches the display name case-insensitively.
func (c *CoinRepository) GetByName(name string) (domain.Coin, error) {
	return c.getByIndex(coinNameKey(domain.NormalizeSymbol(name)))
}

func (c *CoinRepository) getByIndex(key []byte) (domain.Coin, error) {
	var id int
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return errors.ErrCoinNotFound
		}
		return item.Value(func(val []byte) error {
			id, err = strconv.Atoi(string(val))
			return err
		})
	})
	if err != nil {
		return domain.Coin{}, err
	}
	return c.GetCoin(domain.CoinID(id))
}

// Search returns one page of coins whose symbol or name contains term, and
// the total number of pages. Pages start at 1.
func (c *CoinRepository) Search(ctx context.Context, term string, page int) ([]domain.Coin, int, error) {
	page = max(page, 1)
	reader, err := c.index.Reader()
	if err != nil {
		return nil, 0, fmt.Errorf("open search reader: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	var query bluge.Query
	order := []string{"name"}
	switch term {
	case AllCoins, "":
		query = bluge.NewMatchAllQuery()
		order = []string{"id"}
	default:
		pattern := "*" + strings.ToLower(term) + "*"
		query = bluge.NewBooleanQuery().
			AddShould(bluge.NewWildcardQuery(pattern).SetField("symbol")).
			AddShould(bluge.NewWildcardQuery(pattern).SetField("name")).
			SetMinShould(1)
	}

	request := bluge.NewTopNSearch(CoinPageSize, query).
		SetFrom((page - 1) * CoinPageSize).
		SortBy(order).
		WithStandardAggregations()
	matches, err := reader.Search(ctx, request)
	if err != nil {
		return nil, 0, fmt.Errorf("search coins: %w", err)
	}

	var ids []string
	match, err := matches.Next()
	for err == nil && match != nil {
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				ids = append(ids, string(value))
			}
			return true
		})
		if err != nil {
			break
		}
		match, err = matches.Next()
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read search results: %w", err)
	}

	coins := make([]domain.Coin, 0, len(ids))
	for _, raw := range ids {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, 0, err
		}
		coin, err := c.GetCoin(domain.CoinID(id))
		if err != nil {
			c.log.Warn("Indexed coin missing from store", "coin_id", id, "error", err)
			continue
		}
		coins = append(coins, coin)
	}

	total := matches.Aggregations().Count()
	totalPages := int(math.Ceil(float64(total) / float64(CoinPageSize)))
	return coins, totalPages, nil
}

func fromCoin(coin domain.Coin) DiskCoin {
	return DiskCoin{
		ID:       int(coin.ID),
		Symbol:   coin.Symbol,
		Name:     coin.Name,
		ImageURL: coin.ImageURL,
	}
}

func toCoin(d DiskCoin) domain.Coin {
	return domain.Coin{
		ID:       domain.CoinID(d.ID),
		Symbol:   d.Symbol,
		Name:     d.Name,
		ImageURL: d.ImageURL,
	}
}
