package main

import (
	"coin-chat/repositories"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

// Config of the read-only store dump.
type Config struct {
	BadgerPath string `envconfig:"BADGER_FILEPATH"`
	// INSPECT_PREFIX picks the table: ledger:, user:, chat: or coin:
	Prefix  string `envconfig:"INSPECT_PREFIX" default:"ledger:"`
	Colours bool   `envconfig:"INSPECT_COLOURS" default:"true"`
}

// view renders one stored value as a table row.
type view struct {
	header []string
	row    func(key string, val []byte) ([]string, error)
}

var views = map[string]view{
	"ledger:": {
		header: []string{"Key", "User", "Coin", "Quantity", "Updated"},
		row: func(key string, val []byte) ([]string, error) {
			var h repositories.DiskHolding
			if err := json.Unmarshal(val, &h); err != nil {
				return nil, err
			}
			return []string{key, h.Username, fmt.Sprint(h.CoinID), h.Quantity.String(), formatUnix(h.UpdatedAt)}, nil
		},
	},
	"user:": {
		header: []string{"Key", "Username", "Email", "Created"},
		row: func(key string, val []byte) ([]string, error) {
			var u repositories.DiskUser
			if err := json.Unmarshal(val, &u); err != nil {
				return nil, err
			}
			return []string{key, u.Username, u.Email, formatUnix(u.CreatedAt)}, nil
		},
	},
	"chat:": {
		header: []string{"Key", "From", "To", "Message", "At"},
		row: func(key string, val []byte) ([]string, error) {
			var m repositories.DiskMessage
			if err := json.Unmarshal(val, &m); err != nil {
				return nil, err
			}
			return []string{key, m.From, m.To, m.Body, formatUnix(m.Timestamp)}, nil
		},
	},
	"coin:": {
		header: []string{"Key", "ID", "Symbol", "Name"},
		row: func(key string, val []byte) ([]string, error) {
			var c repositories.DiskCoin
			if err := json.Unmarshal(val, &c); err != nil {
				return nil, err
			}
			return []string{key, fmt.Sprint(c.ID), c.Symbol, c.Name}, nil
		},
	},
}

func main() {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal("Config error: ", err)
	}
	if cfg.BadgerPath == "" {
		cfg.BadgerPath = database.DefaultPath
	}

	db, err := badger.Open(badger.DefaultOptions(cfg.BadgerPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLogger(nil))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	title := fmt.Sprintf("  ====== %s %s ======", cfg.BadgerPath, cfg.Prefix)
	if cfg.Colours {
		title = color.New(color.BgBlack, color.FgGreen).Render(title)
	}
	fmt.Println(title)

	count, err := dump(db, cfg.Prefix, os.Stdout)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%d rows\n", count)
}

// dump prints every record under prefix. Secondary indexes are skipped,
// undecodable values are reported in place.
func dump(db *badger.DB, prefix string, out io.Writer) (int, error) {
	v, ok := views[prefix]
	if !ok {
		return 0, fmt.Errorf("unknown prefix %q", prefix)
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader(v.header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	count := 0
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())
			if strings.HasPrefix(key, "idx:") {
				continue
			}
			err := item.Value(func(val []byte) error {
				row, err := v.row(key, val)
				if err != nil {
					row = make([]string, len(v.header))
					row[0] = key
					row[1] = "undecodable: " + err.Error()
				}
				table.Append(row)
				count++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	table.Render()
	return count, nil
}

func formatUnix(sec int64) string {
	if sec == 0 {
		return "-"
	}
	return time.Unix(sec, 0).UTC().Format(time.DateTime)
}
