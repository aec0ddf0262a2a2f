package internal

import (
	"coin-chat/domain"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CatalogFile lists the coins loaded into the catalog at boot.
//
//	coins:
//	  - id: 1
//	    symbol: btc
//	    name: Bitcoin
//	    image_url: https://...
type CatalogFile struct {
	Coins []struct {
		ID       int    `yaml:"id"`
		Symbol   string `yaml:"symbol"`
		Name     string `yaml:"name"`
		ImageURL string `yaml:"image_url"`
	} `yaml:"coins"`
}

// LoadCatalog reads a catalog file. Ids must be positive and unique.
func LoadCatalog(path string) ([]domain.Coin, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var file CatalogFile
	if err = yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	seen := make(map[int]struct{}, len(file.Coins))
	coins := make([]domain.Coin, 0, len(file.Coins))
	for _, c := range file.Coins {
		if c.ID <= 0 || c.Symbol == "" || c.Name == "" {
			return nil, fmt.Errorf("catalog entry %+v: id, symbol and name are required", c)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("catalog entry %d declared twice", c.ID)
		}
		seen[c.ID] = struct{}{}
		coins = append(coins, domain.Coin{
			ID:       domain.CoinID(c.ID),
			Symbol:   c.Symbol,
			Name:     c.Name,
			ImageURL: c.ImageURL,
		})
	}
	return coins, nil
}
