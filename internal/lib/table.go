// Copyright 2026 Bjørn Erik Pedersen
// SPDX-License-Identifier: Apache-2.0

package lib

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

type Column struct {
	Label      string
	RightAlign bool
	Fields     []string
}

// TableColumns returns the repo table columns. IDs are one-based and
// assigned in list order.
func TableColumns(repos []Repo) []Column {
	cols := []Column{
		{Label: "ID", RightAlign: true},
		{Label: "Repo Name"},
		{Label: "Repo Dir"},
		{Label: "VC"},
		{Label: "Repo URL"},
		{Label: "Category"},
	}
	for i, repo := range repos {
		for j, field := range []string{strconv.Itoa(i + 1), repo.Name, repo.Dir, repo.VCType, repo.URL, repo.Category} {
			cols[j].Fields = append(cols[j].Fields, field)
		}
	}
	return cols
}

// ColumnWidths returns the display width of the widest cell, header
// included, of each column.
func ColumnWidths(cols []Column) []int {
	widths := make([]int, len(cols))
	for i, col := range cols {
		widths[i] = runewidth.StringWidth(col.Label)
		for _, field := range col.Fields {
			if w := runewidth.StringWidth(field); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// FormatTable formats cols as an ASCII table:
//
//	---------------------------
//	| ID | Repo Name  | ...   |
//	|----|------------|-------|
//	|  1 | ExtraRepo1 | ...   |
//	---------------------------
func FormatTable(cols []Column) string {
	widths := ColumnWidths(cols)

	rows := 0
	for _, col := range cols {
		rows = max(rows, len(col.Fields))
	}

	row := func(cell func(i int) string) string {
		cells := make([]string, len(cols))
		for i, col := range cols {
			if col.RightAlign {
				cells[i] = runewidth.FillLeft(cell(i), widths[i])
			} else {
				cells[i] = runewidth.FillRight(cell(i), widths[i])
			}
		}
		return "| " + strings.Join(cells, " | ") + " |\n"
	}

	dashes := make([]string, len(cols))
	lineWidth := 1
	for i, w := range widths {
		dashes[i] = strings.Repeat("-", w+2)
		lineWidth += w + 3
	}
	rule := strings.Repeat("-", lineWidth) + "\n"

	var sb strings.Builder
	sb.WriteString(rule)
	sb.WriteString(row(func(i int) string { return cols[i].Label }))
	sb.WriteString("|" + strings.Join(dashes, "|") + "|\n")
	for r := 0; r < rows; r++ {
		sb.WriteString(row(func(i int) string {
			if r < len(cols[i].Fields) {
				return cols[i].Fields[r]
			}
			return ""
		}))
	}
	sb.WriteString(rule)
	return sb.String()
}

// RepoTable formats repos as the repo table.
func RepoTable(repos []Repo) string {
	return FormatTable(TableColumns(repos))
}
