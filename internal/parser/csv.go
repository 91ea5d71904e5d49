package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ThiagoRGoveia/plan-fact/internal/models"
)

const maxProjectNameLength = 100

// ParseProjectsCSV reads a ';' separated file with a "code;name" header.
func ParseProjectsCSV(filePath string) ([]models.Project, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	return readProjects(file, filePath)
}

func readProjects(r io.Reader, name string) ([]models.Project, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	// Skip header
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("file %s is empty", name)
		}
		return nil, fmt.Errorf("failed to read header from %s: %w", name, err)
	}

	var projects []models.Project
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record from %s: %w", name, err)
		}
		line, _ := reader.FieldPos(0)

		code, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: invalid project code %q", name, line, record[0])
		}

		projectName := strings.TrimSpace(record[1])
		if projectName == "" || utf8.RuneCountInString(projectName) > maxProjectNameLength {
			return nil, fmt.Errorf("%s line %d: project name must have 1 to %d characters", name, line, maxProjectNameLength)
		}

		projects = append(projects, models.Project{Code: code, Name: projectName})
	}

	return projects, nil
}
