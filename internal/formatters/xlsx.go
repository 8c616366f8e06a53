package formatters

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/StealthPanther/ai-career-navigator/internal/types"

	"github.com/xuri/excelize/v2"
)

const (
	planSheet      = "Weekly Plan"
	resourcesSheet = "Resources"
)

var planHeaders = []string{"Week", "Topic", "Goal", "What to learn", "Why", "How to learn", "Mini project", "Estimated hours"}

// RoadmapXLSX renders a roadmap as a spreadsheet with a plan sheet and a resources sheet
func RoadmapXLSX(title string, roadmap types.Roadmap) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", planSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(resourcesSheet); err != nil {
		return nil, fmt.Errorf("failed to create resources sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writePlanSheet(f, title, roadmap, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to write plan sheet: %w", err)
	}
	if err := writeResourcesSheet(f, roadmap, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to write resources sheet: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writePlanSheet(f *excelize.File, title string, roadmap types.Roadmap, headerStyle int) error {
	if strings.TrimSpace(title) == "" {
		title = "Learning Roadmap"
	}
	if err := f.SetCellValue(planSheet, "A1", title); err != nil {
		return err
	}
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(planSheet, "A1", "A1", titleStyle); err != nil {
		return err
	}

	if err := f.SetSheetRow(planSheet, "A3", &planHeaders); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(planHeaders))
	if err := f.SetCellStyle(planSheet, "A3", lastCol+"3", headerStyle); err != nil {
		return err
	}

	for i, w := range roadmap.WeeklyPlan {
		row := []any{w.Week, w.Topic, w.Goal, w.WhatToLearn, w.WhyLearnThis, w.HowToLearn, w.MiniProject.Title, w.EstimatedHours}
		cell, _ := excelize.CoordinatesToCellName(1, i+4)
		if err := f.SetSheetRow(planSheet, cell, &row); err != nil {
			return err
		}
	}

	widths := map[string]float64{"A": 8, "B": 28, "C": 40, "D": 40, "E": 40, "F": 40, "G": 30, "H": 16}
	for col, width := range widths {
		if err := f.SetColWidth(planSheet, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

func writeResourcesSheet(f *excelize.File, roadmap types.Roadmap, headerStyle int) error {
	headers := []string{"Week", "Title", "Type", "Platform", "URL"}
	if err := f.SetSheetRow(resourcesSheet, "A1", &headers); err != nil {
		return err
	}
	if err := f.SetCellStyle(resourcesSheet, "A1", "E1", headerStyle); err != nil {
		return err
	}

	row := 2
	for _, w := range roadmap.WeeklyPlan {
		for _, res := range w.Resources {
			values := []any{w.Week, res.Title, res.Type, res.Platform, res.URL}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(resourcesSheet, cell, &values); err != nil {
				return err
			}
			if res.URL != "" {
				link, _ := excelize.CoordinatesToCellName(5, row)
				if err := f.SetCellHyperLink(resourcesSheet, link, res.URL, "External"); err != nil {
					return err
				}
			}
			row++
		}
	}
	return f.SetColWidth(resourcesSheet, "B", "E", 36)
}
