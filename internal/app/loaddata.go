package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/GoArmGo/Foodgram/internal/domain"
	"github.com/GoArmGo/Foodgram/internal/usecase"
)

// runLoadData загружает справочники из CSV-файлов с заголовком.
// Уже существующие записи пропускаются.
func runLoadData(ctx context.Context, catalog usecase.CatalogUseCase, opts RunOptions, logger *slog.Logger) error {
	if opts.IngredientsCSV == "" && opts.TagsCSV == "" {
		return errors.New("укажите -ingredients и/или -tags")
	}

	if opts.IngredientsCSV != "" {
		ingredients, err := readCSVFile(opts.IngredientsCSV, parseIngredients)
		if err != nil {
			return err
		}
		n, err := catalog.LoadIngredients(ctx, ingredients)
		if err != nil {
			return fmt.Errorf("%s: %w", opts.IngredientsCSV, err)
		}
		logger.Info("ingredients loaded", "file", opts.IngredientsCSV, "rows", len(ingredients), "inserted", n)
	}

	if opts.TagsCSV != "" {
		tags, err := readCSVFile(opts.TagsCSV, parseTags)
		if err != nil {
			return err
		}
		n, err := catalog.LoadTags(ctx, tags)
		if err != nil {
			return fmt.Errorf("%s: %w", opts.TagsCSV, err)
		}
		logger.Info("tags loaded", "file", opts.TagsCSV, "rows", len(tags), "inserted", n)
	}
	return nil
}

func readCSVFile[T any](path string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть %s: %w", path, err)
	}
	defer f.Close()

	rows, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// readRecords читает CSV и возвращает строки как словари по именам колонок заголовка.
func readRecords(r io.Reader, required ...string) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("пустой файл")
		}
		return nil, fmt.Errorf("ошибка чтения заголовка: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("в заголовке нет колонки %q", name)
		}
	}

	var records []map[string]string
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("строка %d: %w", line, err)
		}
		rec := make(map[string]string, len(required))
		for _, name := range required {
			rec[name] = strings.TrimSpace(row[index[name]])
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseIngredients(r io.Reader) ([]domain.Ingredient, error) {
	records, err := readRecords(r, "name", "measurement_unit")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Ingredient, 0, len(records))
	for _, rec := range records {
		out = append(out, domain.Ingredient{Name: rec["name"], MeasurementUnit: rec["measurement_unit"]})
	}
	return out, nil
}

func parseTags(r io.Reader) ([]domain.Tag, error) {
	records, err := readRecords(r, "name", "color", "slug")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Tag, 0, len(records))
	for _, rec := range records {
		out = append(out, domain.Tag{Name: rec["name"], Color: rec["color"], Slug: rec["slug"]})
	}
	return out, nil
}
