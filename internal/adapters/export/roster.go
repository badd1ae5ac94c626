package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/okian/courtside/internal/domain/model"
)

// ReadRoster reads players from the first sheet of an xlsx file. The first
// row is a header with a "name" column and optional "number" (or "#") and
// "id" columns. Rows without a name are skipped; missing ids are generated.
func ReadRoster(r io.Reader) ([]model.Player, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open roster workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyRoster
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyRoster
	}

	nameCol, numberCol, idCol := -1, -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name", "player":
			nameCol = i
		case "number", "#", "no":
			numberCol = i
		case "id":
			idCol = i
		}
	}
	if nameCol < 0 {
		return nil, ErrRosterHeader
	}

	players := make([]model.Player, 0, len(rows)-1)
	for _, row := range rows[1:] {
		name := strings.TrimSpace(cellAt(row, nameCol))
		if name == "" {
			continue
		}
		p := model.Player{ID: strings.TrimSpace(cellAt(row, idCol)), Name: name}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if n, err := strconv.Atoi(strings.TrimSpace(cellAt(row, numberCol))); err == nil {
			p.Number = n
		}
		players = append(players, p)
	}
	if len(players) == 0 {
		return nil, ErrEmptyRoster
	}
	return players, nil
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
