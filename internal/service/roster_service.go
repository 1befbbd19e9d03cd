package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/AdamBeresnev/bracket-master/internal/bracket"
	"github.com/xuri/excelize/v2"
)

const templateSheet = "Players"

// Header cells people put above the names column
var headerWords = map[string]bool{
	"nombre":  true,
	"nombres": true,
	"name":    true,
	"jugador": true,
	"player":  true,
}

type RosterService struct {
	tournaments *TournamentService
}

func NewRosterService(tournaments *TournamentService) *RosterService {
	return &RosterService{tournaments: tournaments}
}

// ParseXLSX reads player names from the first column of the first sheet
func ParseXLSX(data []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRosterFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrRosterEmpty
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	cells := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 {
			cells = append(cells, row[0])
		}
	}
	return cleanNames(cells)
}

// ParseText reads one player name per line
func ParseText(input string) ([]string, error) {
	return cleanNames(strings.Split(input, "\n"))
}

// cleanNames trims names and drops blanks, header words and repeated names
func cleanNames(raw []string) ([]string, error) {
	seen := make(map[string]bool, len(raw))
	names := make([]string, 0, len(raw))
	for _, name := range raw {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || headerWords[key] || seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, ErrRosterEmpty
	}
	return names, nil
}

// WriteTemplate writes an empty roster spreadsheet with a Name header and a few sample rows
func WriteTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), templateSheet); err != nil {
		return err
	}
	rows := []string{"Name", "Player 1", "Player 2", "Player 3"}
	for i, value := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(templateSheet, cell, value); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(templateSheet, "A", "A", 30); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}

func (s *RosterService) ImportXLSX(ctx context.Context, tournamentID string, data []byte) (*bracket.Tournament, int, error) {
	names, err := ParseXLSX(data)
	if err != nil {
		return nil, 0, err
	}
	return s.add(ctx, tournamentID, names)
}

func (s *RosterService) ImportText(ctx context.Context, tournamentID, input string) (*bracket.Tournament, int, error) {
	names, err := ParseText(input)
	if err != nil {
		return nil, 0, err
	}
	return s.add(ctx, tournamentID, names)
}

func (s *RosterService) add(ctx context.Context, tournamentID string, names []string) (*bracket.Tournament, int, error) {
	tournament, err := s.tournaments.AddPlayers(ctx, tournamentID, names)
	if err != nil {
		return nil, 0, err
	}
	return tournament, len(names), nil
}
