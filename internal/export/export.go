// Package export writes stored cards and ownership records as CSV or JSON,
// and reads the ownership CSV back for import.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cardhub/pkg/models"
)

var cardHeader = []string{
	"id", "name", "category", "hp", "types", "rarity",
	"set_id", "set_name", "set_series", "set_total", "number", "artist",
	"language", "source", "image_small", "image_large", "market_price",
}

var collectionHeader = []string{
	"card_id", "name", "owned", "condition", "graded", "grading_company", "grade",
	"purchase_price", "current_price", "updated_at",
}

// ToFile creates path (and its directory) and hands it to write.
func ToFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func CardsCSV(out io.Writer, cs []models.Card) error {
	w := csv.NewWriter(out)
	if err := w.Write(cardHeader); err != nil {
		return err
	}
	for _, c := range cs {
		price := ""
		if p, ok := c.MarketPrice(); ok {
			price = formatFloat(p)
		}
		if err := w.Write([]string{
			c.ID,
			c.Name,
			c.Category,
			c.HP,
			strings.Join(c.Types, "|"),
			c.Rarity,
			c.Set.ID,
			c.Set.Name,
			c.Set.Series,
			strconv.Itoa(c.Set.Total),
			c.Number,
			c.Artist,
			c.Language,
			c.Source,
			c.Images.Small,
			c.Images.Large,
			price,
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func CollectionCSV(out io.Writer, entries []models.CollectionEntry) error {
	w := csv.NewWriter(out)
	if err := w.Write(collectionHeader); err != nil {
		return err
	}
	for _, e := range entries {
		name := ""
		if e.Card != nil {
			name = e.Card.Name
		}
		updated := ""
		if !e.UpdatedAt.IsZero() {
			updated = e.UpdatedAt.UTC().Format(time.RFC3339)
		}
		if err := w.Write([]string{
			e.CardID,
			name,
			strconv.FormatBool(e.Owned),
			string(e.Condition),
			strconv.FormatBool(e.Graded),
			e.GradingCompany,
			e.Grade,
			formatPrice(e.PurchasePrice),
			formatPrice(e.CurrentPrice),
			updated,
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// CardsJSON writes cards as an indented JSON array.
func CardsJSON(out io.Writer, cs []models.Card) error {
	if cs == nil {
		cs = []models.Card{}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(cs)
}

// ReadCollectionCSV parses what CollectionCSV writes. Records are returned
// without a user; the caller assigns one. Columns are matched by header
// name, so extra or reordered columns are fine.
func ReadCollectionCSV(in io.Reader) ([]models.OwnershipRecord, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.ToLower(h))] = i
	}
	if _, ok := col["card_id"]; !ok {
		return nil, fmt.Errorf("missing card_id column")
	}
	get := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var out []models.OwnershipRecord
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		cardID := get(rec, "card_id")
		if cardID == "" {
			continue
		}
		owned := true
		if v := get(rec, "owned"); v != "" {
			if owned, err = strconv.ParseBool(v); err != nil {
				return nil, fmt.Errorf("line %d: owned: %w", line, err)
			}
		}
		graded, _ := strconv.ParseBool(get(rec, "graded"))
		purchase, err := parsePrice(get(rec, "purchase_price"))
		if err != nil {
			return nil, fmt.Errorf("line %d: purchase_price: %w", line, err)
		}
		current, err := parsePrice(get(rec, "current_price"))
		if err != nil {
			return nil, fmt.Errorf("line %d: current_price: %w", line, err)
		}

		out = append(out, models.OwnershipRecord{
			CardID:         cardID,
			Owned:          owned,
			Condition:      models.ParseCondition(get(rec, "condition")),
			Graded:         graded,
			GradingCompany: get(rec, "grading_company"),
			Grade:          get(rec, "grade"),
			PurchasePrice:  purchase,
			CurrentPrice:   current,
		})
	}
	return out, nil
}

func formatPrice(p *float64) string {
	if p == nil {
		return ""
	}
	return formatFloat(*p)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func parsePrice(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
